package llm

import "github.com/alkhaleej/docextract/constants"

// BuildDocumentJSONSchema returns the fixed two-record output schema
// (draft 2020-12 subset) as a generic map. We pass it to the model as a
// structured-output constraint and also use it locally to validate.
//
// Only the two top-level record keys are required: a field the model omits
// decodes to "" downstream, which the contract treats as a valid value, not
// a missing-key error.
func BuildDocumentJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"qatar_id", "istimara"},
		"properties": map[string]any{
			"qatar_id": recordSchema(constants.QatarIDFields),
			"istimara": recordSchema(constants.IstimaraFields),
		},
	}
}

func recordSchema(fields []constants.FieldDef) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f.Key] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
