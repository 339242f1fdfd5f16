package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carebridge/caretriage/internal/api/handlers"
	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
)

// stubEventBus mirrors the Redis bus contract: each subscriber is removed
// individually when its context ends, while Unsubscribe tears down the whole
// channel.
type stubEventBus struct {
	mu               sync.RWMutex
	subscribers      map[string][]chan *entities.RecordEvent
	unsubscribeCalls int
}

func newStubEventBus() *stubEventBus {
	return &stubEventBus{
		subscribers: make(map[string][]chan *entities.RecordEvent),
	}
}

func (b *stubEventBus) Publish(ctx context.Context, channel string, event *entities.RecordEvent) error {
	b.mu.RLock()
	channels := append([]chan *entities.RecordEvent(nil), b.subscribers[channel]...)
	b.mu.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *stubEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.RecordEvent, error) {
	b.mu.Lock()
	ch := make(chan *entities.RecordEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		remaining := b.subscribers[channel][:0]
		for _, sub := range b.subscribers[channel] {
			if sub != ch {
				remaining = append(remaining, sub)
			}
		}
		b.subscribers[channel] = remaining
		close(ch)
	}()

	return ch, nil
}

func (b *stubEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unsubscribeCalls++
	for _, ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *stubEventBus) Close() error {
	return nil
}

func (b *stubEventBus) UnsubscribeCalls() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.unsubscribeCalls
}

var _ providers.EventBus = (*stubEventBus)(nil)

func TestSSEHandler_StreamRecordUpdates(t *testing.T) {
	t.Run("establishes SSE connection", func(t *testing.T) {
		eventBus := newStubEventBus()
		handler := handlers.NewSSEHandler(eventBus)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/records", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamRecordUpdates(w, req)
			close(done)
		}()

		time.Sleep(100 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		if result.Header.Get("Content-Type") != "text/event-stream" {
			t.Errorf("Expected Content-Type text/event-stream, got %s", result.Header.Get("Content-Type"))
		}
		if result.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("Expected Cache-Control no-cache, got %s", result.Header.Get("Cache-Control"))
		}
	})

	t.Run("one client disconnecting leaves other clients streaming", func(t *testing.T) {
		eventBus := newStubEventBus()
		handler := handlers.NewSSEHandler(eventBus)

		ctxA, cancelA := context.WithCancel(context.Background())
		ctxB, cancelB := context.WithCancel(context.Background())
		defer cancelB()

		doneA := make(chan struct{})
		go func() {
			req := httptest.NewRequest("GET", "/api/stream/records", nil).WithContext(ctxA)
			handler.StreamRecordUpdates(httptest.NewRecorder(), req)
			close(doneA)
		}()

		wB := httptest.NewRecorder()
		doneB := make(chan struct{})
		go func() {
			req := httptest.NewRequest("GET", "/api/stream/records", nil).WithContext(ctxB)
			handler.StreamRecordUpdates(wB, req)
			close(doneB)
		}()

		time.Sleep(100 * time.Millisecond)

		cancelA()
		select {
		case <-doneA:
		case <-time.After(2 * time.Second):
			t.Fatal("first client did not exit after cancel")
		}

		// The second client must still receive events published after the
		// first client is gone.
		event := entities.NewRecordEvent(entities.EventBatchIngested, "b1", "", map[string]interface{}{
			"total": 2,
		})
		eventBus.Publish(context.Background(), providers.EventChannelRecordUpdates, event)

		time.Sleep(200 * time.Millisecond)

		select {
		case <-doneB:
			t.Fatal("second client stream ended after first client disconnected")
		default:
		}

		cancelB()
		select {
		case <-doneB:
		case <-time.After(2 * time.Second):
			t.Fatal("second client did not exit after cancel")
		}

		if calls := eventBus.UnsubscribeCalls(); calls != 0 {
			t.Errorf("Expected no channel-wide unsubscribes, got %d", calls)
		}
		body := wB.Body.String()
		if !strings.Contains(body, "batch.ingested") {
			t.Errorf("Expected second client to receive the event, body: %s", body)
		}
	})

	t.Run("missing batch ID is rejected", func(t *testing.T) {
		eventBus := newStubEventBus()
		handler := handlers.NewSSEHandler(eventBus)

		req := httptest.NewRequest("GET", "/api/stream/batches/", nil)
		w := httptest.NewRecorder()

		handler.StreamBatchUpdates(w, req)

		if w.Result().StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Result().StatusCode)
		}
	})
}
