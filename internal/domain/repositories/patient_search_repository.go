package repositories

import (
	"context"

	"github.com/carebridge/caretriage/internal/domain/entities"
)

// PatientSearchParams filters a dashboard patient lookup
type PatientSearchParams struct {
	Query   string
	BatchID string
	Limit   int
}

// PatientSearchRepository defines the search index over ready prompt records
type PatientSearchRepository interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, record *entities.PatientPromptRecord) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, params PatientSearchParams) ([]*entities.PatientPromptRecord, error)
}
