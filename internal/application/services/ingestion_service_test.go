package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/caretriage/internal/application/services"
	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

func newIngestionService(
	batchRepo *MockBatchRepository,
	promptRepo *MockPatientPromptRepository,
	provider *MockPromptProvider,
	callRepo *MockCallHistoryRepository,
	eventBus *MockEventBus,
) *services.IngestionService {
	generator := newGenerationService(promptRepo, batchRepo, provider, callRepo)
	return services.NewIngestionService(batchRepo, promptRepo, generator, eventBus)
}

func TestIngestionService_IngestBatch(t *testing.T) {
	rows := []*entities.PatientRow{
		{PatientID: "p1", Name: "Adaeze Obi", Age: 68, Conditions: []string{"hypertension"}},
		{PatientID: "p2", Name: "Femi Ade", Age: 75, Conditions: []string{"diabetes", "arthritis"}},
	}

	t.Run("creates the batch and generates every prompt", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		eventBus := new(MockEventBus)
		service := newIngestionService(batchRepo, promptRepo, provider, callRepo, eventBus)

		batchRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Batch) bool {
			return b.ID != "" && b.Label == "august upload"
		})).Return(nil)
		promptRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		provider.On("GeneratePrompt", mock.Anything, mock.Anything).
			Return(&entities.GeneratedPrompt{Prompt: "generated"}, nil)
		eventBus.On("Publish", mock.Anything, providers.EventChannelRecordUpdates, mock.Anything).Return(nil)

		summary, err := service.IngestBatch(context.Background(), "august upload", rows)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 2, summary.Generated)
		assert.Zero(t, summary.Failed)
		assert.NotEmpty(t, summary.BatchID)
		// One pending write plus one ready write per patient.
		promptRepo.AssertNumberOfCalls(t, "Upsert", 4)
		eventBus.AssertExpectations(t)
	})

	t.Run("a failed generation leaves that patient pending and continues", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		eventBus := new(MockEventBus)
		service := newIngestionService(batchRepo, promptRepo, provider, callRepo, eventBus)

		batchRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		promptRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		provider.On("GeneratePrompt", mock.Anything, mock.MatchedBy(func(input *entities.PromptInput) bool {
			return input.Name == "Adaeze Obi"
		})).Return(nil, providers.ErrPromptGenerationQuota)
		provider.On("GeneratePrompt", mock.Anything, mock.Anything).
			Return(&entities.GeneratedPrompt{Prompt: "generated"}, nil)
		eventBus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		summary, err := service.IngestBatch(context.Background(), "august upload", rows)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Generated)
		assert.Equal(t, 1, summary.Failed)
		require.Len(t, summary.Results, 2)
		assert.False(t, summary.Results[0].Success)
		assert.True(t, summary.Results[1].Success)
	})

	t.Run("rejects an empty upload", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		promptRepo := new(MockPatientPromptRepository)
		provider := new(MockPromptProvider)
		callRepo := new(MockCallHistoryRepository)
		service := newIngestionService(batchRepo, promptRepo, provider, callRepo, new(MockEventBus))

		_, err := service.IngestBatch(context.Background(), "empty", nil)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		batchRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
