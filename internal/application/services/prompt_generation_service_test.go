package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/caretriage/internal/application/services"
	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

func readyRecord(batchID, patientID, prompt string) *entities.PatientPromptRecord {
	updated := time.Now().Add(-time.Hour)
	return &entities.PatientPromptRecord{
		ID:        batchID + "-" + patientID,
		BatchID:   batchID,
		PatientID: patientID,
		Name:      "Patient " + patientID,
		Age:       70,
		Condition: "hypertension, diabetes",
		Prompt:    prompt,
		Status:    entities.PromptStatusReady,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func newGenerationService(
	promptRepo *MockPatientPromptRepository,
	batchRepo *MockBatchRepository,
	provider *MockPromptProvider,
	callRepo *MockCallHistoryRepository,
) *services.PromptGenerationService {
	history := services.NewCallHistoryService(callRepo, nil, 5, 4000)
	return services.NewPromptGenerationService(promptRepo, batchRepo, provider, history, nil, nil)
}

func TestPromptGenerationService_RegenerateOne(t *testing.T) {
	t.Run("success persists the new prompt and touches updatedAt", func(t *testing.T) {
		promptRepo := new(MockPatientPromptRepository)
		batchRepo := new(MockBatchRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		service := newGenerationService(promptRepo, batchRepo, provider, callRepo)

		record := readyRecord("b1", "p2", "old prompt")
		previousUpdatedAt := record.UpdatedAt

		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p2").Return(record, nil)
		callRepo.On("ListByPatient", mock.Anything, "p2").
			Return([]*entities.CallHistoryEntry{}, nil)
		provider.On("GeneratePrompt", mock.Anything, mock.Anything).
			Return(&entities.GeneratedPrompt{Prompt: "new prompt", Reasoning: strPtr("stable week")}, nil)
		promptRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(r *entities.PatientPromptRecord) bool {
			return r.Prompt == "new prompt" && r.UpdatedAt.After(previousUpdatedAt)
		})).Return(nil)

		result, err := service.RegenerateOne(context.Background(), "b1", "p2")

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "new prompt", result.Prompt)
		promptRepo.AssertExpectations(t)
	})

	t.Run("capability failure leaves the stored prompt untouched", func(t *testing.T) {
		promptRepo := new(MockPatientPromptRepository)
		batchRepo := new(MockBatchRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		service := newGenerationService(promptRepo, batchRepo, provider, callRepo)

		record := readyRecord("b1", "p2", "old prompt")
		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p2").Return(record, nil)
		callRepo.On("ListByPatient", mock.Anything, "p2").
			Return([]*entities.CallHistoryEntry{}, nil)
		provider.On("GeneratePrompt", mock.Anything, mock.Anything).
			Return(nil, providers.ErrPromptGenerationQuota)

		result, err := service.RegenerateOne(context.Background(), "b1", "p2")

		require.Error(t, err)
		assert.ErrorIs(t, err, providers.ErrPromptGenerationQuota)
		assert.False(t, result.Success)
		assert.Equal(t, "p2", result.PatientID)
		// No write happened, so P2's stored prompt is byte-identical to
		// before, and no other patient in the batch was touched.
		promptRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("unknown patient surfaces not found", func(t *testing.T) {
		promptRepo := new(MockPatientPromptRepository)
		batchRepo := new(MockBatchRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		service := newGenerationService(promptRepo, batchRepo, provider, callRepo)

		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p404").
			Return(nil, apperrors.NewNotFoundError("patient prompt not found"))

		_, err := service.RegenerateOne(context.Background(), "b1", "p404")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		provider.AssertNotCalled(t, "GeneratePrompt", mock.Anything, mock.Anything)
	})

	t.Run("triage-aware input carries the aggregated call context", func(t *testing.T) {
		promptRepo := new(MockPatientPromptRepository)
		batchRepo := new(MockBatchRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		service := newGenerationService(promptRepo, batchRepo, provider, callRepo)

		record := readyRecord("b1", "p2", "old prompt")
		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p2").Return(record, nil)
		callRepo.On("ListByPatient", mock.Anything, "p2").
			Return([]*entities.CallHistoryEntry{makeCall("p2", time.Hour, "reported mild dizziness")}, nil)
		provider.On("GeneratePrompt", mock.Anything, mock.MatchedBy(func(input *entities.PromptInput) bool {
			return input.CallContext != "" && input.Name == "Patient p2"
		})).Return(&entities.GeneratedPrompt{Prompt: "new prompt"}, nil)
		promptRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		_, err := service.RegenerateOne(context.Background(), "b1", "p2")

		require.NoError(t, err)
		provider.AssertExpectations(t)
	})
}

func TestPromptGenerationService_RegenerateBatch(t *testing.T) {
	t.Run("one failing patient does not abort the rest", func(t *testing.T) {
		promptRepo := new(MockPatientPromptRepository)
		batchRepo := new(MockBatchRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		service := newGenerationService(promptRepo, batchRepo, provider, callRepo)

		batchRepo.On("GetByID", mock.Anything, "b1").
			Return(&entities.Batch{ID: "b1", CreatedAt: time.Now()}, nil)
		promptRepo.On("ListByBatch", mock.Anything, "b1").Return([]*entities.PatientPromptRecord{
			readyRecord("b1", "p1", "prompt one"),
			readyRecord("b1", "p2", "prompt two"),
			readyRecord("b1", "p3", "prompt three"),
		}, nil)
		callRepo.On("ListByPatient", mock.Anything, mock.Anything).
			Return([]*entities.CallHistoryEntry{}, nil)

		provider.On("GeneratePrompt", mock.Anything, mock.MatchedBy(func(input *entities.PromptInput) bool {
			return input.Name == "Patient p2"
		})).Return(nil, providers.ErrPromptGenerationMalformed)
		provider.On("GeneratePrompt", mock.Anything, mock.Anything).
			Return(&entities.GeneratedPrompt{Prompt: "regenerated"}, nil)
		promptRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		results, err := service.RegenerateBatch(context.Background(), "b1")

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.True(t, results[0].Success)
		assert.False(t, results[1].Success)
		assert.NotEmpty(t, results[1].Error)
		assert.True(t, results[2].Success)
		// Only the two successful patients were written.
		promptRepo.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("unknown batch surfaces not found", func(t *testing.T) {
		promptRepo := new(MockPatientPromptRepository)
		batchRepo := new(MockBatchRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		service := newGenerationService(promptRepo, batchRepo, provider, callRepo)

		batchRepo.On("GetByID", mock.Anything, "b404").
			Return(nil, apperrors.NewNotFoundError("batch not found"))

		_, err := service.RegenerateBatch(context.Background(), "b404")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
