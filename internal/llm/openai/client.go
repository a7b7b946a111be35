package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/entity"
	"github.com/alkhaleej/docextract/internal/llm"
)

// ExtractDocuments implements llm.FieldExtractor using a single structured
// chat/completions call per request. The output is constrained to the fixed
// two-record schema; a model refusal comes back as a normal Outcome, never
// as an error.
func (c *Client) ExtractDocuments(ctx context.Context, text string) (llm.Outcome, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	schema := llm.BuildDocumentJSONSchema()
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "document_extraction",
				"strict": false,
				"schema": schema,
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(text)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{}, fmt.Errorf("%w: %v", common.ErrExtractionService, httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{}, fmt.Errorf("%w: decode response: %v", common.ErrExtractionService, err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{}, fmt.Errorf("%w: no choices in response", common.ErrExtractionService)
	}

	msg := cc.Choices[0].Message
	if msg.Refusal != "" {
		c.log.Warn("llm.extract.refused",
			"req_id", rid, "refusal", msg.Refusal,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{Refusal: &entity.Refusal{
			Error:          "Request was refused",
			RefusalMessage: msg.Refusal,
		}}, nil
	}

	content := []byte(strings.TrimSpace(msg.Content))
	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{}, fmt.Errorf("%w: %v", common.ErrExtractionService, err)
	}

	// Fields the model omitted decode to "", which is the valid
	// "not found" terminal value.
	var out entity.DocumentExtractionResponse
	if err := json.Unmarshal(content, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{}, fmt.Errorf("%w: unmarshal fields: %v", common.ErrExtractionService, err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"qatar_id_no", out.QatarID.IDNo,
		"vehicle_number", out.Istimara.VehicleNumber,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Outcome{Response: &out}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
