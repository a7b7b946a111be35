package entity

// QatarID holds the extracted fields of a Qatar national identity card.
// Every field defaults to "" when the source text does not contain it;
// absence is a valid terminal value, not an error.
type QatarID struct {
	IDNo           string `json:"id_no"`
	Name           string `json:"name"`
	ExpiryDate     string `json:"expiry_date"`
	DOB            string `json:"dob"`
	Occupation     string `json:"occupation"`
	Nationality    string `json:"nationality"`
	PassportNumber string `json:"passport_number"`
	PassportExpiry string `json:"passport_expiry"`
	SerialNo       string `json:"serial_no"`
	Employer       string `json:"employer"`
}
