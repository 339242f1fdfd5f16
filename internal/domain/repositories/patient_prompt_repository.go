package repositories

import (
	"context"

	"github.com/carebridge/caretriage/internal/domain/entities"
)

// PatientPromptRepository defines the interface for patient prompt storage.
// Upsert is keyed on (batch_id, patient_id); the per-record write is the unit
// of atomicity for regeneration.
type PatientPromptRepository interface {
	Upsert(ctx context.Context, record *entities.PatientPromptRecord) error
	GetByBatchAndPatient(ctx context.Context, batchID, patientID string) (*entities.PatientPromptRecord, error)
	ListByBatch(ctx context.Context, batchID string) ([]*entities.PatientPromptRecord, error)
	CountByBatch(ctx context.Context, batchID string) (int, error)
}
