package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
	"github.com/carebridge/caretriage/pkg/utils"
)

// IngestionSummary reports the outcome of one batch upload.
type IngestionSummary struct {
	BatchID   string                   `json:"batch_id"`
	Total     int                      `json:"total"`
	Generated int                      `json:"generated"`
	Failed    int                      `json:"failed"`
	Results   []*entities.PromptResult `json:"results"`
}

// IngestionService writes one upload's worth of patient rows as a new batch
// and generates their prompts. The batch row is written before its records,
// so readers racing an ingestion may briefly see an empty batch; the batch
// resolver walks past it.
type IngestionService struct {
	batchRepo  repositories.BatchRepository
	promptRepo repositories.PatientPromptRepository
	generator  *PromptGenerationService
	eventBus   providers.EventBus
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	batchRepo repositories.BatchRepository,
	promptRepo repositories.PatientPromptRepository,
	generator *PromptGenerationService,
	eventBus providers.EventBus,
) *IngestionService {
	return &IngestionService{
		batchRepo:  batchRepo,
		promptRepo: promptRepo,
		generator:  generator,
		eventBus:   eventBus,
	}
}

// IngestBatch creates a batch from raw patient rows and generates a prompt
// for each. Generation runs with partial-success semantics: a failed patient
// stays pending while the rest of the batch completes.
func (s *IngestionService) IngestBatch(ctx context.Context, label string, rows []*entities.PatientRow) (*IngestionSummary, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("at least one patient row is required")
	}

	now := time.Now().UTC()
	batch := &entities.Batch{
		ID:        uuid.New().String(),
		Label:     label,
		CreatedAt: now,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	summary := &IngestionSummary{
		BatchID: batch.ID,
		Total:   len(rows),
		Results: make([]*entities.PromptResult, 0, len(rows)),
	}

	for _, row := range rows {
		record := &entities.PatientPromptRecord{
			ID:        uuid.New().String(),
			BatchID:   batch.ID,
			PatientID: row.PatientID,
			Name:      row.Name,
			Age:       row.Age,
			Condition: utils.JoinConditions(row.Conditions),
			RawFields: row.RawFields,
			Status:    entities.PromptStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.promptRepo.Upsert(ctx, record); err != nil {
			summary.Failed++
			summary.Results = append(summary.Results, &entities.PromptResult{
				BatchID:   batch.ID,
				PatientID: row.PatientID,
				Error:     err.Error(),
			})
			continue
		}

		result, err := s.generator.Generate(ctx, record, GenerateOptions{})
		if err != nil {
			log.Printf("Warning: Prompt generation failed for patient %s in batch %s: %v", row.PatientID, batch.ID, err)
			summary.Failed++
		} else {
			summary.Generated++
		}
		summary.Results = append(summary.Results, result)
	}

	if s.eventBus != nil {
		event := entities.NewRecordEvent(entities.EventBatchIngested, batch.ID, "", map[string]interface{}{
			"total":     summary.Total,
			"generated": summary.Generated,
		})
		if err := s.eventBus.Publish(ctx, providers.EventChannelRecordUpdates, event); err != nil {
			log.Printf("Warning: Failed to publish batch-ingested event for batch %s: %v", batch.ID, err)
		}
	}

	return summary, nil
}
