package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/caretriage/internal/adapters/database"
	"github.com/carebridge/caretriage/internal/adapters/search"
	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/postgres"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/typesense"
	"github.com/carebridge/caretriage/pkg/config"
)

// Seeds a demo batch with ready prompts and some call history so the
// dashboard has data to show in local environments.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	var searchRepo *search.TypesenseAdapter
	if err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
		if err := searchRepo.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
	}

	batchRepo := database.NewBatchAdapter(pgClient)
	promptRepo := database.NewPatientPromptAdapter(pgClient)
	callRepo := database.NewCallHistoryAdapter(pgClient)

	ctx := context.Background()
	now := time.Now().UTC()

	batch := &entities.Batch{
		ID:        uuid.New().String(),
		Label:     "seed batch",
		CreatedAt: now,
	}
	if err := batchRepo.Create(ctx, batch); err != nil {
		log.Fatalf("Failed to create batch: %v", err)
	}

	needsAttention := "needs_attention"
	stable := "stable"
	alert := true
	patients := []*entities.PatientPromptRecord{
		{
			ID: uuid.New().String(), BatchID: batch.ID, PatientID: "p1",
			Name: "Adaeze Obi", Age: 68, Condition: "hypertension, arthritis",
			Prompt:       "Check that Adaeze takes her blood pressure medication every morning and watch for joint stiffness.",
			HealthStatus: &needsAttention, IsAlert: &alert,
			Status: entities.PromptStatusReady, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), BatchID: batch.ID, PatientID: "p2",
			Name: "Femi Ade", Age: 75, Condition: "diabetes",
			Prompt:       "Confirm Femi's blood sugar readings twice a day and keep his evening meals light.",
			HealthStatus: &stable,
			Status:       entities.PromptStatusReady, CreatedAt: now, UpdatedAt: now,
		},
	}
	for _, record := range patients {
		if err := promptRepo.Upsert(ctx, record); err != nil {
			log.Fatalf("Failed to seed patient %s: %v", record.PatientID, err)
		}
		if searchRepo != nil {
			if err := searchRepo.Index(ctx, record); err != nil {
				log.Printf("Warning: Failed to index patient %s: %v", record.PatientID, err)
			}
		}
	}

	summary := "Adaeze reported mild dizziness in the mornings; agreed to take readings before breakfast."
	call := &entities.CallHistoryEntry{
		ID:              uuid.New().String(),
		PatientID:       "p1",
		PatientName:     "Adaeze Obi",
		PhoneNumber:     "+2348012345678",
		DurationSeconds: 184,
		Status:          entities.CallStatusCompleted,
		Summary:         &summary,
		KeyPoints:       []string{"morning dizziness", "readings before breakfast"},
		HealthConcerns:  []string{"possible low blood pressure episodes"},
		FollowUpItems:   []string{"review readings next week"},
		CreatedAt:       now.Add(-48 * time.Hour),
	}
	if err := callRepo.Append(ctx, call); err != nil {
		log.Fatalf("Failed to seed call history: %v", err)
	}

	log.Printf("Seeded batch %s with %d patients and 1 call history entry", batch.ID, len(patients))
}
