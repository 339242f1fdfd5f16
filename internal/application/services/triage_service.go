package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

// TriageService composes a patient's stored prompt with their aggregated
// call history into the briefing material for an outbound voice call.
type TriageService struct {
	resolver   *BatchResolverService
	promptRepo repositories.PatientPromptRepository
	history    *CallHistoryService
	voice      providers.VoiceCallProvider
}

// NewTriageService creates a new triage service
func NewTriageService(
	resolver *BatchResolverService,
	promptRepo repositories.PatientPromptRepository,
	history *CallHistoryService,
	voice providers.VoiceCallProvider,
) *TriageService {
	return &TriageService{
		resolver:   resolver,
		promptRepo: promptRepo,
		history:    history,
		voice:      voice,
	}
}

// Build assembles the triage context for one patient. When batchID is empty
// the effective batch is resolved first. A patient with no ready prompt gets
// HasContext=false, not an error; callers decide whether to proceed from the
// reported metadata without re-deriving the aggregation.
func (s *TriageService) Build(ctx context.Context, patientID, batchID string) (*entities.TriageContext, error) {
	record, err := s.lookupRecord(ctx, patientID, batchID)
	if err != nil {
		return nil, err
	}

	callContext, err := s.history.Aggregate(ctx, patientID)
	if err != nil {
		return nil, err
	}

	result := &entities.TriageContext{
		HasCallHistory: callContext.HasHistory,
	}
	if record == nil || !record.IsReady() {
		return result, nil
	}

	result.HasContext = true
	result.SystemPrompt = buildSystemPrompt(record, callContext)
	result.TriagePrompt = buildTriagePrompt(record)
	result.SystemPromptLength = len(result.SystemPrompt)
	result.TriagePromptLength = len(result.TriagePrompt)
	return result, nil
}

// StartTriageCall builds the triage context and dispatches an outbound call.
// The call is asynchronous; its outcome arrives later through the call
// webhook that appends a history entry.
func (s *TriageService) StartTriageCall(ctx context.Context, patientID, phoneNumber, batchID string) (string, error) {
	if phoneNumber == "" {
		return "", apperrors.NewValidationError("phone number is required")
	}

	triageCtx, err := s.Build(ctx, patientID, batchID)
	if err != nil {
		return "", err
	}
	if !triageCtx.HasContext {
		return "", apperrors.NewValidationError("patient has no ready prompt to brief the call")
	}

	return s.voice.PlaceCall(ctx, &providers.VoiceCallRequest{
		PatientID:    patientID,
		PhoneNumber:  phoneNumber,
		SystemPrompt: triageCtx.SystemPrompt,
		TriagePrompt: triageCtx.TriagePrompt,
	})
}

// lookupRecord finds the patient's prompt record, resolving the effective
// batch when none is specified. A missing record means "no context yet" and
// is reported as nil, not an error.
func (s *TriageService) lookupRecord(ctx context.Context, patientID, batchID string) (*entities.PatientPromptRecord, error) {
	if batchID != "" {
		record, err := s.promptRepo.GetByBatchAndPatient(ctx, batchID, patientID)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return record, nil
	}

	_, records, err := s.resolver.ResolveEffectiveBatch(ctx)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	for _, record := range records {
		if record.PatientID == patientID {
			return record, nil
		}
	}
	return nil, nil
}

func buildSystemPrompt(record *entities.PatientPromptRecord, callContext *entities.AggregatedCallContext) string {
	var b strings.Builder

	b.WriteString(record.Prompt)

	fmt.Fprintf(&b, "\n\nPatient: %s, age %d.", record.Name, record.Age)
	if record.Condition != "" {
		fmt.Fprintf(&b, " Known conditions: %s.", record.Condition)
	}
	if record.HealthStatus != nil {
		fmt.Fprintf(&b, " Current health status: %s.", *record.HealthStatus)
	}

	if callContext.HasHistory {
		b.WriteString("\n\n")
		b.WriteString(callContext.ContextText)
	}

	return b.String()
}

func buildTriagePrompt(record *entities.PatientPromptRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Place a short care check-in call to %s.", record.Name)
	if record.Condition != "" {
		fmt.Fprintf(&b, " Focus on how they are managing: %s.", record.Condition)
	}
	b.WriteString(" Ask about current symptoms, medication adherence and any new concerns, then close with clear next steps.")

	return b.String()
}
