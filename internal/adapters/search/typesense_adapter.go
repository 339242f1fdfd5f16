package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	tsclient "github.com/carebridge/caretriage/internal/infrastructure/clients/typesense"
	"github.com/carebridge/caretriage/pkg/utils"
)

const collectionName = tsclient.PatientsCollection

// TypesenseAdapter implements patient lookup using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements PatientSearchRepository
var _ repositories.PatientSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	// Check if collection exists
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "batch_id", Type: "string", Facet: pointer.True()},
			{Name: "patient_id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "age", Type: "int32"},
			{Name: "conditions", Type: "string[]"},
			{Name: "health_status", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "is_alert", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index indexes a ready patient prompt record
func (a *TypesenseAdapter) Index(ctx context.Context, record *entities.PatientPromptRecord) error {
	document := map[string]interface{}{
		"id":         record.ID,
		"batch_id":   record.BatchID,
		"patient_id": record.PatientID,
		"name":       record.Name,
		"age":        record.Age,
		"conditions": buildConditionTags(record),
		"is_alert":   record.IsAlert != nil && *record.IsAlert,
		"created_at": record.CreatedAt.Unix(),
	}
	if record.HealthStatus != nil {
		document["health_status"] = *record.HealthStatus
	}

	if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document); err != nil {
		return fmt.Errorf("failed to index patient record: %w", err)
	}

	return nil
}

// Delete removes a record from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	if _, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete patient record from index: %w", err)
	}
	return nil
}

// Search looks up patient records by name or condition
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.PatientSearchParams) ([]*entities.PatientPromptRecord, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(params.Query),
		QueryBy: pointer.String("name,conditions"),
		PerPage: pointer.Int(limit),
	}
	if params.BatchID != "" {
		searchParams.FilterBy = pointer.String(fmt.Sprintf("batch_id:=%s", params.BatchID))
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}

	records := []*entities.PatientPromptRecord{}
	if result.Hits == nil {
		return records, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		record := &entities.PatientPromptRecord{
			ID:        docString(doc, "id"),
			BatchID:   docString(doc, "batch_id"),
			PatientID: docString(doc, "patient_id"),
			Name:      docString(doc, "name"),
		}
		if age, ok := doc["age"].(float64); ok {
			record.Age = int(age)
		}
		if conditions, ok := doc["conditions"].([]interface{}); ok {
			labels := make([]string, 0, len(conditions))
			for _, c := range conditions {
				if s, ok := c.(string); ok {
					labels = append(labels, s)
				}
			}
			record.Condition = strings.Join(labels, ", ")
		}
		if status, ok := doc["health_status"].(string); ok {
			record.HealthStatus = &status
		}
		if isAlert, ok := doc["is_alert"].(bool); ok {
			record.IsAlert = &isAlert
		}
		if createdAt, ok := doc["created_at"].(float64); ok {
			record.CreatedAt = time.Unix(int64(createdAt), 0)
		}

		records = append(records, record)
	}

	return records, nil
}

// buildConditionTags normalizes condition labels for the search index
func buildConditionTags(record *entities.PatientPromptRecord) []string {
	if record == nil {
		return nil
	}

	var tags []string
	for _, label := range utils.SplitConditions(record.Condition) {
		if normalized := utils.NormalizeTerm(label); normalized != "" {
			tags = append(tags, normalized)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return utils.DedupeTerms(tags)
}

func docString(doc map[string]interface{}, key string) string {
	if value, ok := doc[key].(string); ok {
		return value
	}
	return ""
}
