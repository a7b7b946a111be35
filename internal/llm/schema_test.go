package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkhaleej/docextract/constants"
	"github.com/alkhaleej/docextract/internal/entity"
)

func TestSchemaCoversAllRecordFields(t *testing.T) {
	schema := BuildDocumentJSONSchema()

	props := schema["properties"].(map[string]any)
	qid := props["qatar_id"].(map[string]any)["properties"].(map[string]any)
	ist := props["istimara"].(map[string]any)["properties"].(map[string]any)

	assert.Len(t, qid, 10)
	assert.Len(t, ist, 24)
	for _, f := range constants.QatarIDFields {
		assert.Contains(t, qid, f.Key)
	}
	for _, f := range constants.IstimaraFields {
		assert.Contains(t, ist, f.Key)
	}
}

func TestValidateAcceptsPartialRecords(t *testing.T) {
	schema := BuildDocumentJSONSchema()
	doc := []byte(`{"qatar_id":{"id_no":"12345678901"},"istimara":{}}`)
	require.NoError(t, ValidateJSONAgainstSchema(schema, doc))
}

func TestValidateRejectsUnknownKeys(t *testing.T) {
	schema := BuildDocumentJSONSchema()
	doc := []byte(`{"qatar_id":{"shoe_size":"44"},"istimara":{}}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, doc))
}

func TestValidateRejectsMissingRecord(t *testing.T) {
	schema := BuildDocumentJSONSchema()
	doc := []byte(`{"qatar_id":{}}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, doc))
}

func TestRecordJSONTagsMatchFieldDefs(t *testing.T) {
	// The entity structs and the constants field lists must agree: the
	// formatter, export and schema all key off the same names.
	b, err := json.Marshal(entity.QatarID{})
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	require.Len(t, m, len(constants.QatarIDFields))
	for _, f := range constants.QatarIDFields {
		assert.Contains(t, m, f.Key)
	}

	b, err = json.Marshal(entity.Istimara{})
	require.NoError(t, err)
	m = nil
	require.NoError(t, json.Unmarshal(b, &m))
	require.Len(t, m, len(constants.IstimaraFields))
	for _, f := range constants.IstimaraFields {
		assert.Contains(t, m, f.Key)
	}
}
