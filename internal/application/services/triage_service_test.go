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

func newTriageService(
	batchRepo *MockBatchRepository,
	promptRepo *MockPatientPromptRepository,
	callRepo *MockCallHistoryRepository,
	voice *MockVoiceProvider,
) *services.TriageService {
	resolver := services.NewBatchResolverService(batchRepo, promptRepo)
	history := services.NewCallHistoryService(callRepo, nil, 5, 4000)
	return services.NewTriageService(resolver, promptRepo, history, voice)
}

func TestTriageService_Build(t *testing.T) {
	t.Run("composes prompt and call history with lengths reported", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		callRepo := new(MockCallHistoryRepository)
		service := newTriageService(batchRepo, promptRepo, callRepo, nil)

		record := readyRecord("b1", "p1", "Check blood pressure daily.")
		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p1").Return(record, nil)
		callRepo.On("ListByPatient", mock.Anything, "p1").
			Return([]*entities.CallHistoryEntry{makeCall("p1", time.Hour, "felt dizzy after lunch")}, nil)

		triageCtx, err := service.Build(context.Background(), "p1", "b1")

		require.NoError(t, err)
		assert.True(t, triageCtx.HasContext)
		assert.True(t, triageCtx.HasCallHistory)
		assert.Contains(t, triageCtx.SystemPrompt, "Check blood pressure daily.")
		assert.Contains(t, triageCtx.SystemPrompt, "felt dizzy after lunch")
		assert.Contains(t, triageCtx.TriagePrompt, record.Name)
		assert.Equal(t, len(triageCtx.SystemPrompt), triageCtx.SystemPromptLength)
		assert.Equal(t, len(triageCtx.TriagePrompt), triageCtx.TriagePromptLength)
	})

	t.Run("patient without a ready prompt reports hasContext false", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		callRepo := new(MockCallHistoryRepository)
		service := newTriageService(batchRepo, promptRepo, callRepo, nil)

		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p404").
			Return(nil, apperrors.NewNotFoundError("patient prompt not found"))
		callRepo.On("ListByPatient", mock.Anything, "p404").
			Return([]*entities.CallHistoryEntry{}, nil)

		triageCtx, err := service.Build(context.Background(), "p404", "b1")

		require.NoError(t, err)
		assert.False(t, triageCtx.HasContext)
		assert.False(t, triageCtx.HasCallHistory)
		assert.Empty(t, triageCtx.SystemPrompt)
	})

	t.Run("resolves the effective batch when none is given", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		callRepo := new(MockCallHistoryRepository)
		service := newTriageService(batchRepo, promptRepo, callRepo, nil)

		batch := &entities.Batch{ID: "b2", CreatedAt: time.Now()}
		record := readyRecord("b2", "p1", "Daily check-in prompt.")
		batchRepo.On("List", mock.Anything).Return([]*entities.Batch{batch}, nil)
		promptRepo.On("ListByBatch", mock.Anything, "b2").
			Return([]*entities.PatientPromptRecord{record}, nil)
		callRepo.On("ListByPatient", mock.Anything, "p1").
			Return([]*entities.CallHistoryEntry{}, nil)

		triageCtx, err := service.Build(context.Background(), "p1", "")

		require.NoError(t, err)
		assert.True(t, triageCtx.HasContext)
		assert.False(t, triageCtx.HasCallHistory)
		promptRepo.AssertNotCalled(t, "GetByBatchAndPatient", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTriageService_StartTriageCall(t *testing.T) {
	t.Run("dispatches the call with the built briefing", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		callRepo := new(MockCallHistoryRepository)
		voice := new(MockVoiceProvider)
		service := newTriageService(batchRepo, promptRepo, callRepo, voice)

		record := readyRecord("b1", "p1", "Check blood pressure daily.")
		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p1").Return(record, nil)
		callRepo.On("ListByPatient", mock.Anything, "p1").
			Return([]*entities.CallHistoryEntry{}, nil)
		voice.On("PlaceCall", mock.Anything, mock.MatchedBy(func(req *providers.VoiceCallRequest) bool {
			return req.PatientID == "p1" && req.SystemPrompt != "" && req.TriagePrompt != ""
		})).Return("call-1", nil)

		callID, err := service.StartTriageCall(context.Background(), "p1", "+2348012345678", "b1")

		require.NoError(t, err)
		assert.Equal(t, "call-1", callID)
		voice.AssertExpectations(t)
	})

	t.Run("refuses to call a patient without context", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		callRepo := new(MockCallHistoryRepository)
		voice := new(MockVoiceProvider)
		service := newTriageService(batchRepo, promptRepo, callRepo, voice)

		promptRepo.On("GetByBatchAndPatient", mock.Anything, "b1", "p404").
			Return(nil, apperrors.NewNotFoundError("patient prompt not found"))
		callRepo.On("ListByPatient", mock.Anything, "p404").
			Return([]*entities.CallHistoryEntry{}, nil)

		_, err := service.StartTriageCall(context.Background(), "p404", "+2348012345678", "b1")

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		voice.AssertNotCalled(t, "PlaceCall", mock.Anything, mock.Anything)
	})
}
