package entities

import "time"

// CallStatus represents the outcome of a voice call
type CallStatus string

const (
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusInProgress CallStatus = "in_progress"
)

// CallHistoryEntry is a persisted record of one attempted voice call to a
// patient. Entries are append-only and scoped to the patient, not the batch,
// since a patient may appear in multiple uploads. The ID is globally unique.
type CallHistoryEntry struct {
	ID              string     `json:"id" db:"id"`
	PatientID       string     `json:"patient_id" db:"patient_id"`
	PatientName     string     `json:"patient_name" db:"patient_name"`
	PhoneNumber     string     `json:"phone_number" db:"phone_number"`
	DurationSeconds int        `json:"duration_seconds" db:"duration_seconds"`
	Status          CallStatus `json:"status" db:"status"`
	Transcript      *string    `json:"transcript,omitempty" db:"transcript"`
	Summary         *string    `json:"summary,omitempty" db:"summary"`
	KeyPoints       []string   `json:"key_points" db:"key_points"`
	HealthConcerns  []string   `json:"health_concerns" db:"health_concerns"`
	FollowUpItems   []string   `json:"follow_up_items" db:"follow_up_items"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// AggregatedCallContext is the bounded view derived from a patient's full
// call history. It is computed fresh per request and never persisted.
type AggregatedCallContext struct {
	HasHistory       bool     `json:"has_history"`
	TotalCalls       int      `json:"total_calls"`
	RecentCallsCount int      `json:"recent_calls_count"`
	KeyPoints        []string `json:"key_points"`
	HealthConcerns   []string `json:"health_concerns"`
	FollowUpItems    []string `json:"follow_up_items"`
	ContextText      string   `json:"context_text"`
}
