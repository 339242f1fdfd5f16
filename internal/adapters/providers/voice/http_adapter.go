package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/carebridge/caretriage/pkg/errors"

	"github.com/carebridge/caretriage/internal/domain/providers"
)

// HTTPAdapter dispatches outbound triage calls through a hosted voice-agent API.
type HTTPAdapter struct {
	baseURL    string
	apiKey     string
	agentID    string
	httpClient *http.Client
}

// NewHTTPAdapter creates a voice provider backed by an HTTP voice-agent gateway.
func NewHTTPAdapter(baseURL, apiKey, agentID string) *HTTPAdapter {
	return &HTTPAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		agentID: agentID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type outboundCallPayload struct {
	AgentID      string `json:"agent_id"`
	ToNumber     string `json:"to_number"`
	SystemPrompt string `json:"system_prompt"`
	FirstMessage string `json:"first_message,omitempty"`
	Metadata     struct {
		PatientID string `json:"patient_id"`
	} `json:"metadata"`
}

type outboundCallResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

// PlaceCall starts an outbound call with the patient-specific prompts attached.
func (a *HTTPAdapter) PlaceCall(ctx context.Context, req *providers.VoiceCallRequest) (string, error) {
	if req.PhoneNumber == "" {
		return "", apperrors.NewValidationError("phone number is required")
	}

	payload := outboundCallPayload{
		AgentID:      a.agentID,
		ToNumber:     req.PhoneNumber,
		SystemPrompt: req.SystemPrompt,
		FirstMessage: req.TriagePrompt,
	}
	payload.Metadata.PatientID = req.PatientID

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.NewInternalError("failed to marshal call request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/calls", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build call request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.NewExternalError("voice gateway request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewExternalError("failed to read voice gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewExternalError(
			fmt.Sprintf("voice gateway returned status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var callResp outboundCallResponse
	if err := json.Unmarshal(respBody, &callResp); err != nil {
		return "", apperrors.NewExternalError("failed to decode voice gateway response", err)
	}
	if callResp.CallID == "" {
		return "", apperrors.NewExternalError("voice gateway response missing call id", nil)
	}

	return callResp.CallID, nil
}
