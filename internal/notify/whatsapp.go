package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Result captures a dispatch attempt. Dispatch failures never propagate as
// errors: the pipeline embeds the outcome in its response instead of
// failing the request.
type Result struct {
	Sent  bool
	Error string
}

// Config for the WhatsApp (Meta Graph API) client.
type Config struct {
	Token         string
	PhoneNumberID string
	BaseURL       string // default https://graph.facebook.com/v18.0
	Timeout       time.Duration
}

// Dispatcher sends notification texts.
type Dispatcher interface {
	SendText(ctx context.Context, phoneNumber, body string) Result
}

// WhatsAppClient implements Dispatcher against the Graph API send-message
// endpoint. Safe for concurrent use.
type WhatsAppClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewWhatsAppClient(cfg Config, logger *slog.Logger) *WhatsAppClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v18.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WhatsAppClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// SendText posts a text message to the recipient. All failure detail goes
// into Result.Error; the method never returns a Go error.
func (c *WhatsAppClient) SendText(ctx context.Context, phoneNumber, body string) Result {
	if phoneNumber == "" {
		return Result{Sent: false, Error: "no recipient phone number"}
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                phoneNumber,
		"type":              "text",
		"text": map[string]any{
			"preview_url": false,
			"body":        body,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Result{Sent: false, Error: fmt.Sprintf("marshal payload: %v", err)}
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.PhoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Result{Sent: false, Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("whatsapp.send.failed", "to", phoneNumber, "error", err)
		return Result{Sent: false, Error: err.Error()}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("whatsapp response body close error", "error", err)
		}
	}()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("whatsapp.send.rejected",
			"to", phoneNumber,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return Result{Sent: false, Error: fmt.Sprintf("whatsapp status %d: %s", resp.StatusCode, string(respBody))}
	}

	c.logger.Info("whatsapp.send.ok", "to", phoneNumber, "body_len", len(body))
	return Result{Sent: true}
}
