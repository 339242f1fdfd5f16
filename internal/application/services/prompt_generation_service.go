package services

import (
	"context"
	"log"
	"time"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	"github.com/carebridge/caretriage/pkg/utils"
)

// GenerateOptions controls how a patient's prompt is generated.
type GenerateOptions struct {
	// TriageAware enriches the generation input with the patient's
	// aggregated call context.
	TriageAware bool
}

// PromptGenerationService turns patient records into caretaker prompts via
// the text-generation capability. Per-record upserts are the unit of
// atomicity: there is no batch-wide transaction, so a reader may observe a
// batch mid-regeneration with a mix of old and new prompts. Concurrent
// regeneration of the same record is last-write-wins; callers wanting
// one-in-flight-per-patient serialize with the handler-layer lock.
type PromptGenerationService struct {
	promptRepo repositories.PatientPromptRepository
	batchRepo  repositories.BatchRepository
	provider   providers.PromptGenerationProvider
	history    *CallHistoryService
	searchRepo repositories.PatientSearchRepository
	eventBus   providers.EventBus
}

// NewPromptGenerationService creates a new prompt generation service
func NewPromptGenerationService(
	promptRepo repositories.PatientPromptRepository,
	batchRepo repositories.BatchRepository,
	provider providers.PromptGenerationProvider,
	history *CallHistoryService,
	searchRepo repositories.PatientSearchRepository,
	eventBus providers.EventBus,
) *PromptGenerationService {
	return &PromptGenerationService{
		promptRepo: promptRepo,
		batchRepo:  batchRepo,
		provider:   provider,
		history:    history,
		searchRepo: searchRepo,
		eventBus:   eventBus,
	}
}

// Generate produces a prompt for one record and persists it on success. On
// failure the stored record is left untouched; the previous prompt text is
// never overwritten with a partial or empty result. The returned error is the
// underlying capability or store error, nil when the result succeeded.
func (s *PromptGenerationService) Generate(ctx context.Context, record *entities.PatientPromptRecord, opts GenerateOptions) (*entities.PromptResult, error) {
	result := &entities.PromptResult{
		BatchID:   record.BatchID,
		PatientID: record.PatientID,
	}

	input := &entities.PromptInput{
		Name:       record.Name,
		Age:        record.Age,
		Conditions: utils.SplitConditions(record.Condition),
		RawFields:  record.RawFields,
	}
	if opts.TriageAware && s.history != nil {
		callContext, err := s.history.Aggregate(ctx, record.PatientID)
		if err != nil {
			result.Error = err.Error()
			return result, err
		}
		input.CallContext = callContext.ContextText
	}

	generated, err := s.provider.GeneratePrompt(ctx, input)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	record.Prompt = generated.Prompt
	record.Reasoning = generated.Reasoning
	record.IsAlert = generated.IsAlert
	record.HealthStatus = generated.HealthStatus
	record.Status = entities.PromptStatusReady
	record.UpdatedAt = time.Now().UTC()

	if err := s.promptRepo.Upsert(ctx, record); err != nil {
		result.Error = err.Error()
		return result, err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, record); err != nil {
			// Log error but don't fail the request (eventual consistency)
			log.Printf("Warning: Failed to index patient record %s: %v", record.ID, err)
		}
	}

	result.Success = true
	result.Prompt = record.Prompt
	result.Reasoning = record.Reasoning
	result.IsAlert = record.IsAlert
	result.HealthStatus = record.HealthStatus
	return result, nil
}

// RegenerateOne regenerates a single patient's prompt in a batch,
// triage-aware. A missing record is returned as a NotFound error; a
// capability failure is surfaced to the caller alongside the failed result,
// with the stored prompt unchanged.
func (s *PromptGenerationService) RegenerateOne(ctx context.Context, batchID, patientID string) (*entities.PromptResult, error) {
	record, err := s.promptRepo.GetByBatchAndPatient(ctx, batchID, patientID)
	if err != nil {
		return nil, err
	}

	result, err := s.Generate(ctx, record, GenerateOptions{TriageAware: true})
	if err != nil {
		return result, err
	}

	s.publishRegenerated(ctx, batchID, patientID)
	return result, nil
}

// RegenerateBatch regenerates every record in a batch with partial-success
// semantics: one patient's capability failure is recorded in that patient's
// result and the remaining patients still run.
func (s *PromptGenerationService) RegenerateBatch(ctx context.Context, batchID string) ([]*entities.PromptResult, error) {
	if _, err := s.batchRepo.GetByID(ctx, batchID); err != nil {
		return nil, err
	}

	records, err := s.promptRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	results := make([]*entities.PromptResult, 0, len(records))
	for _, record := range records {
		result, err := s.Generate(ctx, record, GenerateOptions{TriageAware: true})
		if err != nil {
			log.Printf("Warning: Prompt regeneration failed for patient %s in batch %s: %v", record.PatientID, batchID, err)
		}
		results = append(results, result)
	}

	s.publishRegenerated(ctx, batchID, "")
	return results, nil
}

func (s *PromptGenerationService) publishRegenerated(ctx context.Context, batchID, patientID string) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewRecordEvent(entities.EventPromptRegenerated, batchID, patientID, nil)
	if err := s.eventBus.Publish(ctx, providers.GetBatchChannel(batchID), event); err != nil {
		log.Printf("Warning: Failed to publish regeneration event for batch %s: %v", batchID, err)
	}
}
