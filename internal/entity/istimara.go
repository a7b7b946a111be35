package entity

// Istimara holds the extracted fields of a Qatari vehicle registration
// certificate: vehicle identity, ownership, registration dates, physical
// attributes and insurance. Same empty-string convention as QatarID.
type Istimara struct {
	VehicleNumber           string `json:"vehicle_number"`
	VehicleType             string `json:"vehicle_type"`
	OwnerAr                 string `json:"owner_ar"`
	OwnerEn                 string `json:"owner_en"`
	OwnerQID                string `json:"owner_qid"`
	Nationality             string `json:"nationality"`
	VehicleExpiryDate       string `json:"vehicle_expiry_date"`
	VehicleRenewalDate      string `json:"vehicle_renewal_date"`
	VehicleRegistrationDate string `json:"vehicle_registration_date"`
	VehicleMake             string `json:"vehicle_make"`
	VehicleModel            string `json:"vehicle_model"`
	VehicleBodyType         string `json:"vehicle_body_type"`
	VehicleYear             string `json:"vehicle_year"`
	VehicleShape            string `json:"vehicle_shape"`
	VehicleCylinder         string `json:"vehicle_cylinder"`
	VehicleSeat             string `json:"vehicle_seat"`
	VehicleWeight           string `json:"vehicle_weight"`
	VehicleNetWeight        string `json:"vehicle_net_weight"`
	VehicleColor            string `json:"vehicle_color"`
	VehicleChassisNo        string `json:"vehicle_chassis_no"`
	VehicleEngineNo         string `json:"vehicle_engine_no"`
	VehicleInsuranceCompany string `json:"vehicle_insurance_company"`
	VehiclePolicyNumber     string `json:"vehicle_policy_number"`
	VehicleExpiry           string `json:"vehicle_expiry"`
	VehiclePolicyType       string `json:"vehicle_policy_type"`
}
