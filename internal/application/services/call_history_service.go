package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
	"github.com/carebridge/caretriage/pkg/utils"
)

// CallHistoryService folds a patient's unbounded call history into one
// bounded context object. The bounded view is recomputed from the full
// ordered history on every request; entries are append-only and immutable,
// so recomputation is both correct and cheap.
type CallHistoryService struct {
	callRepo        repositories.CallHistoryRepository
	eventBus        providers.EventBus
	recentCallLimit int
	contextMaxChars int
}

// NewCallHistoryService creates a new call history service
func NewCallHistoryService(callRepo repositories.CallHistoryRepository, eventBus providers.EventBus, recentCallLimit, contextMaxChars int) *CallHistoryService {
	if recentCallLimit <= 0 {
		recentCallLimit = 5
	}
	if contextMaxChars <= 0 {
		contextMaxChars = 4000
	}
	return &CallHistoryService{
		callRepo:        callRepo,
		eventBus:        eventBus,
		recentCallLimit: recentCallLimit,
		contextMaxChars: contextMaxChars,
	}
}

// Aggregate builds the bounded call context for one patient. An empty history
// is a normal outcome: HasHistory=false, empty lists, empty context string.
func (s *CallHistoryService) Aggregate(ctx context.Context, patientID string) (*entities.AggregatedCallContext, error) {
	entries, err := s.callRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &entities.AggregatedCallContext{}, nil
	}

	// Entries arrive ordered by creation timestamp ascending. The most
	// recent calls get full summaries; older calls contribute only to the
	// total count.
	recent := entries
	if len(entries) > s.recentCallLimit {
		recent = entries[len(entries)-s.recentCallLimit:]
	}

	var keyPoints, healthConcerns, followUpItems []string
	for _, call := range recent {
		keyPoints = append(keyPoints, call.KeyPoints...)
		healthConcerns = append(healthConcerns, call.HealthConcerns...)
		followUpItems = append(followUpItems, call.FollowUpItems...)
	}
	keyPoints = utils.DedupeTerms(keyPoints)
	healthConcerns = utils.DedupeTerms(healthConcerns)
	followUpItems = utils.DedupeTerms(followUpItems)

	result := &entities.AggregatedCallContext{
		HasHistory:       true,
		TotalCalls:       len(entries),
		RecentCallsCount: len(recent),
		KeyPoints:        keyPoints,
		HealthConcerns:   healthConcerns,
		FollowUpItems:    followUpItems,
	}
	result.ContextText = s.renderContext(recent, result)
	return result, nil
}

// renderContext builds the prose context string within the character budget.
// When the full rendering is too long, whole calls are dropped oldest-first;
// a hard cut happens only once no whole-call drop remains.
func (s *CallHistoryService) renderContext(recent []*entities.CallHistoryEntry, agg *entities.AggregatedCallContext) string {
	for drop := 0; drop <= len(recent); drop++ {
		text := renderCallContext(recent[drop:], agg)
		if len(text) <= s.contextMaxChars {
			return text
		}
	}
	text := renderCallContext(nil, agg)
	if len(text) > s.contextMaxChars {
		text = text[:s.contextMaxChars]
	}
	return text
}

func renderCallContext(calls []*entities.CallHistoryEntry, agg *entities.AggregatedCallContext) string {
	var b strings.Builder

	// The header counts the calls actually rendered, which can be fewer
	// than RecentCallsCount after budget-driven drops.
	fmt.Fprintf(&b, "Previous call history: %d call(s) on record, %d most recent summarized below.\n",
		agg.TotalCalls, len(calls))

	for _, call := range calls {
		if call.Summary == nil || *call.Summary == "" {
			continue
		}
		fmt.Fprintf(&b, "\nCall on %s (%s, %ds): %s\n",
			call.CreatedAt.Format("2006-01-02"), call.Status, call.DurationSeconds, *call.Summary)
	}

	writeTermSection(&b, "Key points from recent calls", agg.KeyPoints)
	writeTermSection(&b, "Health concerns raised", agg.HealthConcerns)
	writeTermSection(&b, "Open follow-up items", agg.FollowUpItems)

	return b.String()
}

func writeTermSection(b *strings.Builder, heading string, terms []string) {
	if len(terms) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, term := range terms {
		fmt.Fprintf(b, "- %s\n", term)
	}
}

// RecordCall appends a completed call's outcome to the patient's history and
// publishes a call-completed event. Entries are never edited afterwards.
func (s *CallHistoryService) RecordCall(ctx context.Context, entry *entities.CallHistoryEntry) error {
	if entry.PatientID == "" {
		return apperrors.NewValidationError("patient id is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.callRepo.Append(ctx, entry); err != nil {
		return err
	}

	if s.eventBus != nil {
		event := entities.NewRecordEvent(entities.EventCallCompleted, "", entry.PatientID, map[string]interface{}{
			"call_id": entry.ID,
			"status":  string(entry.Status),
		})
		if err := s.eventBus.Publish(ctx, providers.GetPatientChannel(entry.PatientID), event); err != nil {
			// Event delivery is best-effort; the entry is already stored.
			log.Printf("Warning: Failed to publish call-completed event for patient %s: %v", entry.PatientID, err)
		}
	}
	return nil
}

// ListByPatient returns the patient's full call history, oldest first.
func (s *CallHistoryService) ListByPatient(ctx context.Context, patientID string) ([]*entities.CallHistoryEntry, error) {
	return s.callRepo.ListByPatient(ctx, patientID)
}
