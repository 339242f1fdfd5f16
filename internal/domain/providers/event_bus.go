package providers

import (
	"context"

	"github.com/carebridge/caretriage/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to record
// change events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.RecordEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.RecordEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event scopes
const (
	// EventChannelRecordUpdates is the channel for all record updates
	EventChannelRecordUpdates = "records:updates"

	// EventChannelBatchPrefix is the prefix for batch-specific channels
	EventChannelBatchPrefix = "batch:"

	// EventChannelPatientPrefix is the prefix for patient-specific channels
	EventChannelPatientPrefix = "patient:"
)

// GetBatchChannel returns the channel name for a specific batch
func GetBatchChannel(batchID string) string {
	return EventChannelBatchPrefix + batchID
}

// GetPatientChannel returns the channel name for a specific patient
func GetPatientChannel(patientID string) string {
	return EventChannelPatientPrefix + patientID
}
