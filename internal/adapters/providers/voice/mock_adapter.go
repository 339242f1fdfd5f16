package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carebridge/caretriage/internal/domain/providers"
)

// MockAdapter implements a mock voice call provider for development and tests.
type MockAdapter struct {
	mu    sync.Mutex
	calls []providers.VoiceCallRequest
}

// NewMockAdapter creates a new mock voice provider.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// PlaceCall records the request and returns a synthetic call ID.
func (m *MockAdapter) PlaceCall(ctx context.Context, req *providers.VoiceCallRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, *req)
	return fmt.Sprintf("mock-call-%s-%d", req.PatientID, time.Now().UnixNano()), nil
}

// PlacedCalls returns a copy of the requests seen so far.
func (m *MockAdapter) PlacedCalls() []providers.VoiceCallRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]providers.VoiceCallRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
