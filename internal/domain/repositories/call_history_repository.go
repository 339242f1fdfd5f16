package repositories

import (
	"context"

	"github.com/carebridge/caretriage/internal/domain/entities"
)

// CallHistoryRepository defines the interface for call history storage.
// Entries are append-only; ListByPatient returns them ordered by creation
// timestamp ascending.
type CallHistoryRepository interface {
	Append(ctx context.Context, entry *entities.CallHistoryEntry) error
	GetByID(ctx context.Context, id string) (*entities.CallHistoryEntry, error)
	ListByPatient(ctx context.Context, patientID string) ([]*entities.CallHistoryEntry, error)
}
