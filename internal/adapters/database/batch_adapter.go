package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/postgres"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

// BatchAdapter implements BatchRepository
type BatchAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBatchAdapter creates a new batch adapter
func NewBatchAdapter(client *postgres.Client) repositories.BatchRepository {
	return &BatchAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new batch
func (a *BatchAdapter) Create(ctx context.Context, batch *entities.Batch) error {
	record := goqu.Record{
		"id":         batch.ID,
		"label":      sql.NullString{String: batch.Label, Valid: batch.Label != ""},
		"created_at": batch.CreatedAt,
	}

	query, args, err := a.db.Insert("batches").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create batch", err)
	}

	return nil
}

// GetByID retrieves a batch by ID
func (a *BatchAdapter) GetByID(ctx context.Context, id string) (*entities.Batch, error) {
	query, args, err := a.db.Select("id", "label", "created_at").
		From("batches").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	batch := &entities.Batch{}
	var label sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&batch.ID,
		&label,
		&batch.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("batch with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get batch", err)
	}

	batch.Label = label.String
	return batch, nil
}

// List retrieves all batches ordered by creation timestamp descending
func (a *BatchAdapter) List(ctx context.Context) ([]*entities.Batch, error) {
	query, args, err := a.db.Select("id", "label", "created_at").
		From("batches").
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list batches", err)
	}
	defer rows.Close()

	var batches []*entities.Batch
	for rows.Next() {
		batch := &entities.Batch{}
		var label sql.NullString

		if err := rows.Scan(&batch.ID, &label, &batch.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan batch", err)
		}

		batch.Label = label.String
		batches = append(batches, batch)
	}

	return batches, nil
}

// Delete deletes a batch and, via cascade, its patient prompt records
func (a *BatchAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("batches").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete batch", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("batch with id %s not found", id))
	}

	return nil
}
