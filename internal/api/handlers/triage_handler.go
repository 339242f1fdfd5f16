package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge/caretriage/internal/application/services"
)

// TriageHandler handles triage briefing and call dispatch HTTP requests
type TriageHandler struct {
	triage *services.TriageService
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(triage *services.TriageService) *TriageHandler {
	return &TriageHandler{
		triage: triage,
	}
}

// GetTriageContext handles GET /api/patients/{id}/triage-context
func (h *TriageHandler) GetTriageContext(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	triageCtx, err := h.triage.Build(r.Context(), patientID, r.URL.Query().Get("batch_id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, triageCtx)
}

type startCallRequest struct {
	PatientID   string `json:"patient_id"`
	PhoneNumber string `json:"phone_number"`
	BatchID     string `json:"batch_id,omitempty"`
}

// StartCall handles POST /api/triage/calls
func (h *TriageHandler) StartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PatientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	callID, err := h.triage.StartTriageCall(r.Context(), req.PatientID, req.PhoneNumber, req.BatchID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"call_id":    callID,
		"patient_id": req.PatientID,
	})
}
