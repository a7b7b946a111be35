package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkhaleej/docextract/internal/common"
)

func chatResponse(content, refusal string) string {
	msg := map[string]any{"content": content}
	if refusal != "" {
		msg["refusal"] = refusal
	}
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": msg}},
	})
	return string(b)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
}

func TestExtractDocumentsFillsMissingFields(t *testing.T) {
	content := `{"qatar_id":{"id_no":"28512345678","name":"Ahmed Al-Kuwari"},"istimara":{"vehicle_number":"12345","owner_en":"Ahmed Al-Kuwari"}}`
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		rf := body["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", rf["type"])
		_, _ = w.Write([]byte(chatResponse(content, "")))
	})

	out, err := c.ExtractDocuments(context.Background(), "some ocr text")
	require.NoError(t, err)
	require.NotNil(t, out.Response)
	assert.False(t, out.Refused())

	assert.Equal(t, "28512345678", out.Response.QatarID.IDNo)
	assert.Equal(t, "", out.Response.QatarID.Occupation, "omitted field decodes to empty string")
	assert.Equal(t, "12345", out.Response.Istimara.VehicleNumber)
	assert.Equal(t, "", out.Response.Istimara.VehicleMake)
}

func TestExtractDocumentsRefusal(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse("", "I can't help with extracting personal identity documents.")))
	})

	out, err := c.ExtractDocuments(context.Background(), "some ocr text")
	require.NoError(t, err, "a refusal is a result, not an error")
	require.True(t, out.Refused())
	assert.Nil(t, out.Response)
	assert.Equal(t, "Request was refused", out.Refusal.Error)
	assert.Contains(t, out.Refusal.RefusalMessage, "can't help")
}

func TestExtractDocumentsTransportFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	})

	_, err := c.ExtractDocuments(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionService)
}

func TestExtractDocumentsMalformedContent(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(`{"qatar_id":{"unexpected_key":"x"},"istimara":{}}`, "")))
	})

	_, err := c.ExtractDocuments(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionService)
}

func TestExtractDocumentsNoChoices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.ExtractDocuments(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionService)
}
