package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/postgres"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

// PatientPromptAdapter implements PatientPromptRepository
type PatientPromptAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPatientPromptAdapter creates a new patient prompt adapter
func NewPatientPromptAdapter(client *postgres.Client) repositories.PatientPromptRepository {
	return &PatientPromptAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var patientPromptColumns = []interface{}{
	"id", "batch_id", "patient_id", "name", "age", "condition",
	"prompt", "reasoning", "is_alert", "health_status", "template_name",
	"raw_fields", "status", "created_at", "updated_at",
}

// Upsert writes a patient prompt record, keyed on (batch_id, patient_id).
// The single row is the unit of atomicity for regeneration.
func (a *PatientPromptAdapter) Upsert(ctx context.Context, record *entities.PatientPromptRecord) error {
	rawFields, err := marshalRawFields(record.RawFields)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal raw fields", err)
	}

	row := goqu.Record{
		"id":            record.ID,
		"batch_id":      record.BatchID,
		"patient_id":    record.PatientID,
		"name":          record.Name,
		"age":           record.Age,
		"condition":     record.Condition,
		"prompt":        record.Prompt,
		"reasoning":     nullableString(record.Reasoning),
		"is_alert":      nullableBool(record.IsAlert),
		"health_status": nullableString(record.HealthStatus),
		"template_name": nullableString(record.TemplateName),
		"raw_fields":    rawFields,
		"status":        string(record.Status),
		"created_at":    record.CreatedAt,
		"updated_at":    record.UpdatedAt,
	}

	query, args, err := a.db.Insert("patient_prompts").
		Rows(row).
		OnConflict(goqu.DoUpdate("batch_id, patient_id", goqu.Record{
			"name":          record.Name,
			"age":           record.Age,
			"condition":     record.Condition,
			"prompt":        record.Prompt,
			"reasoning":     nullableString(record.Reasoning),
			"is_alert":      nullableBool(record.IsAlert),
			"health_status": nullableString(record.HealthStatus),
			"template_name": nullableString(record.TemplateName),
			"raw_fields":    rawFields,
			"status":        string(record.Status),
			"updated_at":    record.UpdatedAt,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert patient prompt", err)
	}

	return nil
}

// GetByBatchAndPatient retrieves one patient's record in a batch
func (a *PatientPromptAdapter) GetByBatchAndPatient(ctx context.Context, batchID, patientID string) (*entities.PatientPromptRecord, error) {
	query, args, err := a.db.Select(patientPromptColumns...).
		From("patient_prompts").
		Where(goqu.Ex{"batch_id": batchID, "patient_id": patientID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	record, err := a.scanOne(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found in batch %s", patientID, batchID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get patient prompt", err)
	}

	return record, nil
}

// ListByBatch retrieves all patient records in a batch
func (a *PatientPromptAdapter) ListByBatch(ctx context.Context, batchID string) ([]*entities.PatientPromptRecord, error) {
	query, args, err := a.db.Select(patientPromptColumns...).
		From("patient_prompts").
		Where(goqu.Ex{"batch_id": batchID}).
		Order(goqu.I("patient_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list patient prompts", err)
	}
	defer rows.Close()

	var records []*entities.PatientPromptRecord
	for rows.Next() {
		record, err := a.scanOne(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan patient prompt", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// CountByBatch counts patient records in a batch
func (a *PatientPromptAdapter) CountByBatch(ctx context.Context, batchID string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("patient_prompts").
		Where(goqu.Ex{"batch_id": batchID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count patient prompts", err)
	}

	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *PatientPromptAdapter) scanOne(row rowScanner) (*entities.PatientPromptRecord, error) {
	record := &entities.PatientPromptRecord{}
	var reasoning, healthStatus, templateName sql.NullString
	var isAlert sql.NullBool
	var rawFields []byte
	var status string

	err := row.Scan(
		&record.ID,
		&record.BatchID,
		&record.PatientID,
		&record.Name,
		&record.Age,
		&record.Condition,
		&record.Prompt,
		&reasoning,
		&isAlert,
		&healthStatus,
		&templateName,
		&rawFields,
		&status,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reasoning.Valid {
		record.Reasoning = &reasoning.String
	}
	if isAlert.Valid {
		record.IsAlert = &isAlert.Bool
	}
	if healthStatus.Valid {
		record.HealthStatus = &healthStatus.String
	}
	if templateName.Valid {
		record.TemplateName = &templateName.String
	}
	if len(rawFields) > 0 {
		if err := json.Unmarshal(rawFields, &record.RawFields); err != nil {
			return nil, err
		}
	}
	record.Status = entities.PromptStatus(status)

	return record, nil
}

func marshalRawFields(fields map[string]interface{}) ([]byte, error) {
	if len(fields) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(fields)
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
