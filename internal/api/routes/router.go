package routes

import (
	"net/http"

	"github.com/carebridge/caretriage/internal/api/handlers"
	"github.com/carebridge/caretriage/internal/api/middleware"
	"github.com/carebridge/caretriage/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	batchHandler       *handlers.BatchHandler
	promptHandler      *handlers.PromptHandler
	triageHandler      *handlers.TriageHandler
	callWebhookHandler *handlers.CallWebhookHandler
	sseHandler         *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	batchHandler *handlers.BatchHandler,
	promptHandler *handlers.PromptHandler,
	triageHandler *handlers.TriageHandler,
	callWebhookHandler *handlers.CallWebhookHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		batchHandler:       batchHandler,
		promptHandler:      promptHandler,
		triageHandler:      triageHandler,
		callWebhookHandler: callWebhookHandler,
		sseHandler:         sseHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Batch endpoints
	r.mux.HandleFunc("POST /api/batches", r.batchHandler.IngestBatch)
	r.mux.HandleFunc("GET /api/batches", r.batchHandler.ListBatches)
	r.mux.HandleFunc("GET /api/batches/effective", r.batchHandler.GetEffectiveBatch)
	r.mux.HandleFunc("GET /api/batches/{id}/records", r.batchHandler.GetBatchRecords)

	// Prompt regeneration endpoints
	r.mux.HandleFunc("POST /api/batches/{id}/regenerate", r.promptHandler.RegenerateBatch)
	r.mux.HandleFunc("POST /api/batches/{id}/patients/{patientId}/regenerate", r.promptHandler.RegeneratePatient)

	// Patient endpoints
	r.mux.HandleFunc("GET /api/patients/search", r.batchHandler.SearchPatients)
	r.mux.HandleFunc("GET /api/patients/{id}/calls", r.callWebhookHandler.ListPatientCalls)
	r.mux.HandleFunc("GET /api/patients/{id}/call-context", r.callWebhookHandler.GetCallContext)
	r.mux.HandleFunc("GET /api/patients/{id}/triage-context", r.triageHandler.GetTriageContext)

	// Triage call dispatch
	r.mux.HandleFunc("POST /api/triage/calls", r.triageHandler.StartCall)

	// Voice provider webhook
	r.mux.HandleFunc("POST /webhooks/calls", r.callWebhookHandler.HandleCallCompleted)

	// SSE streaming endpoints
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/records", r.sseHandler.StreamRecordUpdates)
		r.mux.HandleFunc("GET /api/stream/batches/{id}", r.sseHandler.StreamBatchUpdates)
		r.mux.HandleFunc("GET /api/stream/patients/{id}", r.sseHandler.StreamPatientUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
