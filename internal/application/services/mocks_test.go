package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/internal/domain/repositories"
)

// Mocks shared by the service tests.

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, batch *entities.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id string) (*entities.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Batch), args.Error(1)
}

func (m *MockBatchRepository) List(ctx context.Context) ([]*entities.Batch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Batch), args.Error(1)
}

func (m *MockBatchRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPatientPromptRepository struct {
	mock.Mock
}

func (m *MockPatientPromptRepository) Upsert(ctx context.Context, record *entities.PatientPromptRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPatientPromptRepository) GetByBatchAndPatient(ctx context.Context, batchID, patientID string) (*entities.PatientPromptRecord, error) {
	args := m.Called(ctx, batchID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PatientPromptRecord), args.Error(1)
}

func (m *MockPatientPromptRepository) ListByBatch(ctx context.Context, batchID string) ([]*entities.PatientPromptRecord, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PatientPromptRecord), args.Error(1)
}

func (m *MockPatientPromptRepository) CountByBatch(ctx context.Context, batchID string) (int, error) {
	args := m.Called(ctx, batchID)
	return args.Int(0), args.Error(1)
}

type MockCallHistoryRepository struct {
	mock.Mock
}

func (m *MockCallHistoryRepository) Append(ctx context.Context, entry *entities.CallHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCallHistoryRepository) GetByID(ctx context.Context, id string) (*entities.CallHistoryEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CallHistoryEntry), args.Error(1)
}

func (m *MockCallHistoryRepository) ListByPatient(ctx context.Context, patientID string) ([]*entities.CallHistoryEntry, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CallHistoryEntry), args.Error(1)
}

type MockPatientSearchRepository struct {
	mock.Mock
}

func (m *MockPatientSearchRepository) InitSchema(ctx context.Context) error {
	return nil
}

func (m *MockPatientSearchRepository) Index(ctx context.Context, record *entities.PatientPromptRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPatientSearchRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *MockPatientSearchRepository) Search(ctx context.Context, params repositories.PatientSearchParams) ([]*entities.PatientPromptRecord, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PatientPromptRecord), args.Error(1)
}

type MockPromptProvider struct {
	mock.Mock
}

func (m *MockPromptProvider) GeneratePrompt(ctx context.Context, input *entities.PromptInput) (*entities.GeneratedPrompt, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GeneratedPrompt), args.Error(1)
}

type MockVoiceProvider struct {
	mock.Mock
}

func (m *MockVoiceProvider) PlaceCall(ctx context.Context, req *providers.VoiceCallRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockSMSProvider struct {
	mock.Mock
}

func (m *MockSMSProvider) Send(ctx context.Context, toNumber, body string) (string, error) {
	args := m.Called(ctx, toNumber, body)
	return args.String(0), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.RecordEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.RecordEvent, error) {
	return nil, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return nil
}

func (m *MockEventBus) Close() error {
	return nil
}
