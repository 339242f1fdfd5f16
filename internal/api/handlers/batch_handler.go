package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/carebridge/caretriage/internal/application/services"
	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/repositories"
)

// BatchHandler handles batch upload and resolution HTTP requests
type BatchHandler struct {
	batchRepo  repositories.BatchRepository
	promptRepo repositories.PatientPromptRepository
	resolver   *services.BatchResolverService
	ingestion  *services.IngestionService
	search     *services.PatientSearchService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(
	batchRepo repositories.BatchRepository,
	promptRepo repositories.PatientPromptRepository,
	resolver *services.BatchResolverService,
	ingestion *services.IngestionService,
	search *services.PatientSearchService,
) *BatchHandler {
	return &BatchHandler{
		batchRepo:  batchRepo,
		promptRepo: promptRepo,
		resolver:   resolver,
		ingestion:  ingestion,
		search:     search,
	}
}

type ingestRequest struct {
	Label    string                 `json:"label"`
	Patients []*entities.PatientRow `json:"patients"`
}

// IngestBatch handles POST /api/batches
func (h *BatchHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.ingestion.IngestBatch(r.Context(), req.Label, req.Patients)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, summary)
}

// ListBatches handles GET /api/batches
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batchRepo.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"batches": batches,
		"count":   len(batches),
	})
}

// GetEffectiveBatch handles GET /api/batches/effective
func (h *BatchHandler) GetEffectiveBatch(w http.ResponseWriter, r *http.Request) {
	batch, records, err := h.resolver.ResolveEffectiveBatch(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"batch":   batch,
		"records": records,
		"count":   len(records),
	})
}

// GetBatchRecords handles GET /api/batches/{id}/records
func (h *BatchHandler) GetBatchRecords(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	if batchID == "" {
		respondWithError(w, http.StatusBadRequest, "batch ID is required")
		return
	}

	if _, err := h.batchRepo.GetByID(r.Context(), batchID); err != nil {
		respondWithAppError(w, err)
		return
	}

	records, err := h.promptRepo.ListByBatch(r.Context(), batchID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list batch records")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": batchID,
		"records":  records,
		"count":    len(records),
	})
}

// SearchPatients handles GET /api/patients/search
func (h *BatchHandler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.search.Search(r.Context(), query.Get("q"), query.Get("batch_id"), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}
