package services

import (
	"context"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

// BatchResolverService picks the batch a read or generation operation should
// operate against. Batch creation and batch population are separate store
// writes, so the most recently created batch may transiently hold zero
// records while an ingestion is in flight; the resolver walks past such
// batches instead of handing callers an empty head.
type BatchResolverService struct {
	batchRepo  repositories.BatchRepository
	promptRepo repositories.PatientPromptRepository
}

// NewBatchResolverService creates a new batch resolver service
func NewBatchResolverService(batchRepo repositories.BatchRepository, promptRepo repositories.PatientPromptRepository) *BatchResolverService {
	return &BatchResolverService{
		batchRepo:  batchRepo,
		promptRepo: promptRepo,
	}
}

// ResolveEffectiveBatch returns the effective batch together with its patient
// records, both read in the same pass so one caller never sees a mixed view.
// It performs no writes and is safe to call concurrently; two callers racing
// an ingestion may get different answers, each internally consistent.
//
// Resolution order: the newest batch wins when populated (the common case,
// verified with a single record fetch); otherwise the remaining batches are
// walked most-recent-first and the first populated one wins; when every batch
// is empty the newest is returned with an empty record set, which callers
// treat as "no prompts yet" rather than an error.
func (s *BatchResolverService) ResolveEffectiveBatch(ctx context.Context) (*entities.Batch, []*entities.PatientPromptRecord, error) {
	batches, err := s.batchRepo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(batches) == 0 {
		return nil, nil, apperrors.NewNotFoundError("no batches exist")
	}

	// List returns batches newest-first.
	newest := batches[0]
	records, err := s.promptRepo.ListByBatch(ctx, newest.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(records) > 0 {
		return newest, records, nil
	}

	// The newest batch has no records: either its ingestion has not finished
	// populating, or the batch was deleted between the two reads. The latter
	// must be surfaced, never silently substituted.
	if _, err := s.batchRepo.GetByID(ctx, newest.ID); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, nil, apperrors.NewInconsistentReadError("batch " + newest.ID + " disappeared during resolution")
		}
		return nil, nil, err
	}

	for _, batch := range batches[1:] {
		records, err := s.promptRepo.ListByBatch(ctx, batch.ID)
		if err != nil {
			return nil, nil, err
		}
		if len(records) > 0 {
			return batch, records, nil
		}
	}

	// Every batch is empty. Report the newest with no records so callers see
	// "no prompts yet" instead of a failure.
	return newest, []*entities.PatientPromptRecord{}, nil
}
