package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/carebridge/caretriage/internal/application/services"
	"github.com/carebridge/caretriage/internal/domain/entities"
)

// CallWebhookHandler receives call-completion callbacks from the voice
// provider and turns them into call history entries.
type CallWebhookHandler struct {
	history *services.CallHistoryService
}

// NewCallWebhookHandler creates a new call webhook handler
func NewCallWebhookHandler(history *services.CallHistoryService) *CallWebhookHandler {
	return &CallWebhookHandler{
		history: history,
	}
}

type callCompletedPayload struct {
	CallID          string   `json:"call_id"`
	PatientID       string   `json:"patient_id"`
	PatientName     string   `json:"patient_name"`
	PhoneNumber     string   `json:"phone_number"`
	DurationSeconds int      `json:"duration_seconds"`
	Status          string   `json:"status"`
	Transcript      *string  `json:"transcript,omitempty"`
	Summary         *string  `json:"summary,omitempty"`
	KeyPoints       []string `json:"key_points,omitempty"`
	HealthConcerns  []string `json:"health_concerns,omitempty"`
	FollowUpItems   []string `json:"follow_up_items,omitempty"`
}

var validCallStatuses = map[entities.CallStatus]bool{
	entities.CallStatusCompleted:  true,
	entities.CallStatusFailed:     true,
	entities.CallStatusNoAnswer:   true,
	entities.CallStatusInProgress: true,
}

// HandleCallCompleted handles POST /webhooks/calls
func (h *CallWebhookHandler) HandleCallCompleted(w http.ResponseWriter, r *http.Request) {
	var payload callCompletedPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.PatientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	status := entities.CallStatus(payload.Status)
	if !validCallStatuses[status] {
		respondWithError(w, http.StatusBadRequest, "unknown call status: "+payload.Status)
		return
	}

	entry := &entities.CallHistoryEntry{
		ID:              payload.CallID,
		PatientID:       payload.PatientID,
		PatientName:     payload.PatientName,
		PhoneNumber:     payload.PhoneNumber,
		DurationSeconds: payload.DurationSeconds,
		Status:          status,
		Transcript:      payload.Transcript,
		Summary:         payload.Summary,
		KeyPoints:       payload.KeyPoints,
		HealthConcerns:  payload.HealthConcerns,
		FollowUpItems:   payload.FollowUpItems,
		CreatedAt:       time.Now().UTC(),
	}

	if err := h.history.RecordCall(r.Context(), entry); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"call_id": entry.ID,
		"status":  "recorded",
	})
}

// ListPatientCalls handles GET /api/patients/{id}/calls
func (h *CallWebhookHandler) ListPatientCalls(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	calls, err := h.history.ListByPatient(r.Context(), patientID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list call history")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patient_id": patientID,
		"calls":      calls,
		"count":      len(calls),
	})
}

// GetCallContext handles GET /api/patients/{id}/call-context
func (h *CallWebhookHandler) GetCallContext(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	agg, err := h.history.Aggregate(r.Context(), patientID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to aggregate call history")
		return
	}

	respondWithJSON(w, http.StatusOK, agg)
}
