package services

import (
	"context"
	"strings"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/repositories"
)

// PatientSearchService looks up prompt records for the dashboard, using the
// search engine when available and falling back to the database.
type PatientSearchService struct {
	searchRepo repositories.PatientSearchRepository
	promptRepo repositories.PatientPromptRepository
	resolver   *BatchResolverService
}

// NewPatientSearchService creates a new patient search service
func NewPatientSearchService(
	searchRepo repositories.PatientSearchRepository,
	promptRepo repositories.PatientPromptRepository,
	resolver *BatchResolverService,
) *PatientSearchService {
	return &PatientSearchService{
		searchRepo: searchRepo,
		promptRepo: promptRepo,
		resolver:   resolver,
	}
}

// Search finds prompt records matching the query. An empty batch id scopes
// the fallback path to the effective batch; the search engine searches across
// batches when none is given.
func (s *PatientSearchService) Search(ctx context.Context, query, batchID string, limit int) ([]*entities.PatientPromptRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	if s.searchRepo != nil {
		return s.searchRepo.Search(ctx, repositories.PatientSearchParams{
			Query:   query,
			BatchID: batchID,
			Limit:   limit,
		})
	}

	// Fallback: substring match over the batch's records.
	var records []*entities.PatientPromptRecord
	var err error
	if batchID != "" {
		records, err = s.promptRepo.ListByBatch(ctx, batchID)
	} else {
		_, records, err = s.resolver.ResolveEffectiveBatch(ctx)
	}
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matches := make([]*entities.PatientPromptRecord, 0, limit)
	for _, record := range records {
		if needle == "" ||
			strings.Contains(strings.ToLower(record.Name), needle) ||
			strings.Contains(strings.ToLower(record.Condition), needle) {
			matches = append(matches, record)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}
