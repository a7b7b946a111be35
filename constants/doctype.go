package constants

// Collection names in the document store.
const (
	CollectionQatarID  = "qatar_ids"
	CollectionIstimara = "istimaras"
)

// DocType identifies one of the two supported Qatari document types.
type DocType string

const (
	DocTypeQatarID  DocType = "QATAR_ID"
	DocTypeIstimara DocType = "ISTIMARA"
)

// FieldDef pairs a record's JSON key with its human-readable label.
// Order of the slices below is the canonical field order used by the
// notification formatter and the XLSX export.
type FieldDef struct {
	Key   string
	Label string
}

// QatarIDFields lists the ten Qatar ID fields in definition order.
var QatarIDFields = []FieldDef{
	{"id_no", "ID Number"},
	{"name", "Name"},
	{"expiry_date", "Expiry Date"},
	{"dob", "Date of Birth"},
	{"occupation", "Occupation"},
	{"nationality", "Nationality"},
	{"passport_number", "Passport Number"},
	{"passport_expiry", "Passport Expiry"},
	{"serial_no", "Serial Number"},
	{"employer", "Employer"},
}

// IstimaraFields lists the twenty-four Istimara fields in definition order.
var IstimaraFields = []FieldDef{
	{"vehicle_number", "Vehicle Number"},
	{"vehicle_type", "Vehicle Type"},
	{"owner_ar", "Owner (Arabic)"},
	{"owner_en", "Owner (English)"},
	{"owner_qid", "Owner QID"},
	{"nationality", "Nationality"},
	{"vehicle_expiry_date", "Registration Expiry"},
	{"vehicle_renewal_date", "Renewal Date"},
	{"vehicle_registration_date", "Registration Date"},
	{"vehicle_make", "Make"},
	{"vehicle_model", "Model"},
	{"vehicle_body_type", "Body Type"},
	{"vehicle_year", "Year"},
	{"vehicle_shape", "Shape"},
	{"vehicle_cylinder", "Cylinders"},
	{"vehicle_seat", "Seats"},
	{"vehicle_weight", "Weight"},
	{"vehicle_net_weight", "Net Weight"},
	{"vehicle_color", "Color"},
	{"vehicle_chassis_no", "Chassis Number"},
	{"vehicle_engine_no", "Engine Number"},
	{"vehicle_insurance_company", "Insurance Company"},
	{"vehicle_policy_number", "Policy Number"},
	{"vehicle_expiry", "Insurance Expiry"},
	{"vehicle_policy_type", "Policy Type"},
}

// FieldsForCollection returns the canonical field order for a known
// collection, or nil for an unknown one.
func FieldsForCollection(name string) []FieldDef {
	switch name {
	case CollectionQatarID:
		return QatarIDFields
	case CollectionIstimara:
		return IstimaraFields
	default:
		return nil
	}
}

// KnownCollection reports whether name is one of the two record collections.
func KnownCollection(name string) bool {
	return name == CollectionQatarID || name == CollectionIstimara
}
