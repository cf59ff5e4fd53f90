// Package whatsapp sends lead notifications through a GOWA WhatsApp gateway
// to the operator's own number.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"terrasite_backend/internal/notification/message"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/phone"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

type Client struct {
	baseURL  string
	apiKey   string
	deviceID string
	to       string
	http     *http.Client
}

type gowaRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		apiKey:   cfg.GetWhatsAppKey(),
		deviceID: cfg.GetWhatsAppDeviceID(),
		to:       strings.TrimPrefix(phone.NormalizeE164(cfg.GetWhatsAppNotifyPhone()), "+"),
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Channel names this notifier in logs.
func (c *Client) Channel() string { return "whatsapp" }

// Send delivers the plain-text summary to the operator number.
func (c *Client) Send(ctx context.Context, msg message.Message) error {
	body, err := json.Marshal(gowaRequest{Phone: c.to, Message: msg.Text()})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/send/message", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", formatAuthHeader(c.apiKey))
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("whatsapp service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

func formatAuthHeader(apiKey string) string {
	if strings.HasPrefix(strings.ToLower(apiKey), "basic ") {
		return apiKey
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(apiKey))
	return "Basic " + encoded
}
