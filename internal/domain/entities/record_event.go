package entities

import (
	"time"

	"github.com/google/uuid"
)

// RecordEventType identifies the kind of change an event describes
type RecordEventType string

const (
	EventBatchIngested     RecordEventType = "batch.ingested"
	EventPromptRegenerated RecordEventType = "prompt.regenerated"
	EventCallCompleted     RecordEventType = "call.completed"
)

// RecordEvent is the pub/sub envelope published when batches, prompts or call
// history change, so dashboard clients can refresh without polling.
type RecordEvent struct {
	ID        string                 `json:"id"`
	Type      RecordEventType        `json:"type"`
	BatchID   string                 `json:"batch_id,omitempty"`
	PatientID string                 `json:"patient_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewRecordEvent builds an event envelope with a fresh id and timestamp
func NewRecordEvent(eventType RecordEventType, batchID, patientID string, payload map[string]interface{}) *RecordEvent {
	return &RecordEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		BatchID:   batchID,
		PatientID: patientID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
