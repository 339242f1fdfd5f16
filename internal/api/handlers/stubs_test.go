package handlers_test

import (
	"context"
	"sync"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	apperrors "github.com/carebridge/caretriage/pkg/errors"
)

// In-memory stubs backing the handler tests.

type stubBatchRepo struct {
	mu      sync.Mutex
	batches []*entities.Batch
}

func (s *stubBatchRepo) Create(ctx context.Context, batch *entities.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append([]*entities.Batch{batch}, s.batches...)
	return nil
}

func (s *stubBatchRepo) GetByID(ctx context.Context, id string) (*entities.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, batch := range s.batches {
		if batch.ID == id {
			return batch, nil
		}
	}
	return nil, apperrors.NewNotFoundError("batch not found")
}

func (s *stubBatchRepo) List(ctx context.Context) ([]*entities.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.Batch, len(s.batches))
	copy(out, s.batches)
	return out, nil
}

func (s *stubBatchRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type stubPromptRepo struct {
	mu      sync.Mutex
	records map[string]*entities.PatientPromptRecord
	upserts int
}

func newStubPromptRepo() *stubPromptRepo {
	return &stubPromptRepo{records: make(map[string]*entities.PatientPromptRecord)}
}

func promptKey(batchID, patientID string) string {
	return batchID + "/" + patientID
}

func (s *stubPromptRepo) Upsert(ctx context.Context, record *entities.PatientPromptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[promptKey(record.BatchID, record.PatientID)] = &copied
	s.upserts++
	return nil
}

func (s *stubPromptRepo) GetByBatchAndPatient(ctx context.Context, batchID, patientID string) (*entities.PatientPromptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[promptKey(batchID, patientID)]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, apperrors.NewNotFoundError("patient prompt not found")
}

func (s *stubPromptRepo) ListByBatch(ctx context.Context, batchID string) ([]*entities.PatientPromptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.PatientPromptRecord
	for _, record := range s.records {
		if record.BatchID == batchID {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *stubPromptRepo) CountByBatch(ctx context.Context, batchID string) (int, error) {
	records, _ := s.ListByBatch(ctx, batchID)
	return len(records), nil
}

type stubCallRepo struct {
	mu      sync.Mutex
	entries []*entities.CallHistoryEntry
}

func (s *stubCallRepo) Append(ctx context.Context, entry *entities.CallHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubCallRepo) GetByID(ctx context.Context, id string) (*entities.CallHistoryEntry, error) {
	return nil, apperrors.NewNotFoundError("call not found")
}

func (s *stubCallRepo) ListByPatient(ctx context.Context, patientID string) ([]*entities.CallHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.CallHistoryEntry
	for _, entry := range s.entries {
		if entry.PatientID == patientID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type stubPromptProvider struct {
	err   error
	calls int
}

func (s *stubPromptProvider) GeneratePrompt(ctx context.Context, input *entities.PromptInput) (*entities.GeneratedPrompt, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &entities.GeneratedPrompt{Prompt: "generated prompt for " + input.Name}, nil
}

type stubVoiceProvider struct {
	requests []*providers.VoiceCallRequest
}

func (s *stubVoiceProvider) PlaceCall(ctx context.Context, req *providers.VoiceCallRequest) (string, error) {
	s.requests = append(s.requests, req)
	return "call-stub-1", nil
}

// stubCache implements just enough of the cache contract for lock tests.
type stubCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (s *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return nil, apperrors.NewNotFoundError("cache miss")
}

func (s *stubCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *stubCache) SetNX(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func (s *stubCache) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubCache) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok, nil
}

var _ repositories.BatchRepository = (*stubBatchRepo)(nil)
var _ repositories.PatientPromptRepository = (*stubPromptRepo)(nil)
var _ repositories.CallHistoryRepository = (*stubCallRepo)(nil)
var _ providers.PromptGenerationProvider = (*stubPromptProvider)(nil)
var _ providers.VoiceCallProvider = (*stubVoiceProvider)(nil)
var _ providers.CacheProvider = (*stubCache)(nil)
