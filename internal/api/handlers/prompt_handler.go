package handlers

import (
	"net/http"

	"github.com/carebridge/caretriage/internal/application/services"
	"github.com/carebridge/caretriage/internal/domain/providers"
)

// regenerationLockTTLSeconds bounds how long a crashed regeneration can hold
// its advisory lock.
const regenerationLockTTLSeconds = 120

// PromptHandler handles prompt regeneration HTTP requests. Regeneration
// itself is last-write-wins; the handler serializes concurrent requests for
// the same patient with a short-lived cache lock so clients get an explicit
// conflict instead of silently racing.
type PromptHandler struct {
	generator *services.PromptGenerationService
	alerts    *services.AlertService
	cache     providers.CacheProvider
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(generator *services.PromptGenerationService, alerts *services.AlertService, cache providers.CacheProvider) *PromptHandler {
	return &PromptHandler{
		generator: generator,
		alerts:    alerts,
		cache:     cache,
	}
}

// RegeneratePatient handles POST /api/batches/{id}/patients/{patientId}/regenerate
func (h *PromptHandler) RegeneratePatient(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	patientID := r.PathValue("patientId")
	if batchID == "" || patientID == "" {
		respondWithError(w, http.StatusBadRequest, "batch ID and patient ID are required")
		return
	}

	lockKey := "regen:" + batchID + ":" + patientID
	if !h.acquireLock(r, lockKey) {
		respondWithError(w, http.StatusConflict, "a regeneration for this patient is already in flight")
		return
	}
	defer h.releaseLock(r, lockKey)

	result, err := h.generator.RegenerateOne(r.Context(), batchID, patientID)
	if err != nil && result == nil {
		respondWithAppError(w, err)
		return
	}

	h.alerts.NotifyIfAlert(r.Context(), result)

	if !result.Success {
		// The capability failed; the stored prompt is untouched.
		respondWithJSON(w, http.StatusBadGateway, result)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// RegenerateBatch handles POST /api/batches/{id}/regenerate
func (h *PromptHandler) RegenerateBatch(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	if batchID == "" {
		respondWithError(w, http.StatusBadRequest, "batch ID is required")
		return
	}

	lockKey := "regen:" + batchID
	if !h.acquireLock(r, lockKey) {
		respondWithError(w, http.StatusConflict, "a regeneration for this batch is already in flight")
		return
	}
	defer h.releaseLock(r, lockKey)

	results, err := h.generator.RegenerateBatch(r.Context(), batchID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	h.alerts.NotifyIfAlert(r.Context(), results...)

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id":  batchID,
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
		"results":   results,
	})
}

// acquireLock takes the advisory regeneration lock. A missing cache degrades
// to no locking rather than blocking regeneration.
func (h *PromptHandler) acquireLock(r *http.Request, key string) bool {
	if h.cache == nil {
		return true
	}
	acquired, err := h.cache.SetNX(r.Context(), key, []byte("1"), regenerationLockTTLSeconds)
	if err != nil {
		return true
	}
	return acquired
}

func (h *PromptHandler) releaseLock(r *http.Request, key string) {
	if h.cache == nil {
		return
	}
	_ = h.cache.Delete(r.Context(), key)
}
