package repositories

import (
	"context"

	"github.com/carebridge/caretriage/internal/domain/entities"
)

// BatchRepository defines the interface for batch storage
type BatchRepository interface {
	Create(ctx context.Context, batch *entities.Batch) error
	GetByID(ctx context.Context, id string) (*entities.Batch, error)
	List(ctx context.Context) ([]*entities.Batch, error)
	Delete(ctx context.Context, id string) error
}
