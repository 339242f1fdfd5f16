package entities

import "time"

// PromptStatus represents the lifecycle state of a generated prompt
type PromptStatus string

const (
	PromptStatusPending PromptStatus = "pending"
	PromptStatusReady   PromptStatus = "ready"
	PromptStatusFailed  PromptStatus = "failed"
)

// PatientPromptRecord stores one patient's AI-generated caretaker prompt.
// Records are keyed by (BatchID, PatientID); PatientID is unique within a
// batch, not globally. UpdatedAt is touched only by regeneration, and Prompt
// is never emptied once the record is ready.
type PatientPromptRecord struct {
	ID           string                 `json:"id" db:"id"`
	BatchID      string                 `json:"batch_id" db:"batch_id"`
	PatientID    string                 `json:"patient_id" db:"patient_id"`
	Name         string                 `json:"name" db:"name"`
	Age          int                    `json:"age" db:"age"`
	Condition    string                 `json:"condition" db:"condition"`
	Prompt       string                 `json:"prompt" db:"prompt"`
	Reasoning    *string                `json:"reasoning,omitempty" db:"reasoning"`
	IsAlert      *bool                  `json:"is_alert,omitempty" db:"is_alert"`
	HealthStatus *string                `json:"health_status,omitempty" db:"health_status"`
	TemplateName *string                `json:"template_name,omitempty" db:"template_name"`
	RawFields    map[string]interface{} `json:"raw_fields,omitempty" db:"raw_fields"`
	Status       PromptStatus           `json:"status" db:"status"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at" db:"updated_at"`
}

// IsReady reports whether the record carries a usable prompt
func (r *PatientPromptRecord) IsReady() bool {
	return r.Status == PromptStatusReady && r.Prompt != ""
}

// PatientRow is one raw patient row from an upload, before prompt generation
type PatientRow struct {
	PatientID  string                 `json:"patient_id"`
	Name       string                 `json:"name"`
	Age        int                    `json:"age"`
	Conditions []string               `json:"conditions"`
	RawFields  map[string]interface{} `json:"raw_fields,omitempty"`
}
