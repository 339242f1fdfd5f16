package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carebridge/caretriage/pkg/config"
)

// SMSGatewaySender sends text messages through an HTTP SMS gateway. It is
// used by the alerting layer when a regenerated prompt carries an alert flag.
type SMSGatewaySender struct {
	apiKey     string
	senderID   string
	baseURL    string
	httpClient *http.Client
}

// NewSMSGatewaySender creates a new SMS gateway sender
func NewSMSGatewaySender(cfg *config.SMSConfig) (*SMSGatewaySender, error) {
	if cfg == nil || cfg.APIKey == "" || cfg.BaseURL == "" {
		return nil, fmt.Errorf("SMS_API_KEY and SMS_BASE_URL must be set")
	}

	return &SMSGatewaySender{
		apiKey:   cfg.APIKey,
		senderID: cfg.SenderID,
		baseURL:  cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// smsMessage is the gateway's send payload
type smsMessage struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// smsResponse is the gateway's send response
type smsResponse struct {
	Messages []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"messages"`
}

// Send sends a text message and returns the gateway delivery id
func (s *SMSGatewaySender) Send(ctx context.Context, toNumber, body string) (string, error) {
	message := smsMessage{
		From: s.senderID,
		To:   toNumber,
		Body: body,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("SMS gateway error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gatewayResp smsResponse
	if err := json.Unmarshal(respBody, &gatewayResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(gatewayResp.Messages) > 0 {
		return gatewayResp.Messages[0].ID, nil
	}

	return "", fmt.Errorf("no delivery ID in response")
}
