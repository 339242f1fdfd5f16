package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/postgres"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

// CallHistoryAdapter implements CallHistoryRepository
type CallHistoryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCallHistoryAdapter creates a new call history adapter
func NewCallHistoryAdapter(client *postgres.Client) repositories.CallHistoryRepository {
	return &CallHistoryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var callHistoryColumns = []interface{}{
	"id", "patient_id", "patient_name", "phone_number", "duration_seconds",
	"status", "transcript", "summary", "key_points", "health_concerns",
	"follow_up_items", "created_at",
}

// Append inserts a call history entry. Entries are never updated afterwards.
func (a *CallHistoryAdapter) Append(ctx context.Context, entry *entities.CallHistoryEntry) error {
	record := goqu.Record{
		"id":               entry.ID,
		"patient_id":       entry.PatientID,
		"patient_name":     entry.PatientName,
		"phone_number":     entry.PhoneNumber,
		"duration_seconds": entry.DurationSeconds,
		"status":           string(entry.Status),
		"transcript":       nullableString(entry.Transcript),
		"summary":          nullableString(entry.Summary),
		"key_points":       pq.Array(entry.KeyPoints),
		"health_concerns":  pq.Array(entry.HealthConcerns),
		"follow_up_items":  pq.Array(entry.FollowUpItems),
		"created_at":       entry.CreatedAt,
	}

	query, args, err := a.db.Insert("call_history").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to append call history entry", err)
	}

	return nil
}

// GetByID retrieves a call history entry by its globally unique id
func (a *CallHistoryAdapter) GetByID(ctx context.Context, id string) (*entities.CallHistoryEntry, error) {
	query, args, err := a.db.Select(callHistoryColumns...).
		From("call_history").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	entry, err := scanCallHistoryEntry(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("call history entry %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get call history entry", err)
	}

	return entry, nil
}

// ListByPatient retrieves a patient's call history ordered oldest first
func (a *CallHistoryAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.CallHistoryEntry, error) {
	query, args, err := a.db.Select(callHistoryColumns...).
		From("call_history").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list call history", err)
	}
	defer rows.Close()

	var entries []*entities.CallHistoryEntry
	for rows.Next() {
		entry, err := scanCallHistoryEntry(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan call history entry", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func scanCallHistoryEntry(row rowScanner) (*entities.CallHistoryEntry, error) {
	entry := &entities.CallHistoryEntry{}
	var transcript, summary sql.NullString
	var status string

	err := row.Scan(
		&entry.ID,
		&entry.PatientID,
		&entry.PatientName,
		&entry.PhoneNumber,
		&entry.DurationSeconds,
		&status,
		&transcript,
		&summary,
		pq.Array(&entry.KeyPoints),
		pq.Array(&entry.HealthConcerns),
		pq.Array(&entry.FollowUpItems),
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if transcript.Valid {
		entry.Transcript = &transcript.String
	}
	if summary.Valid {
		entry.Summary = &summary.String
	}
	entry.Status = entities.CallStatus(status)

	return entry, nil
}
