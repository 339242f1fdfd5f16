package entities

// TriageContext is the combined prompt material handed to the voice-call
// capability before placing a call. Lengths are reported so callers can decide
// whether to proceed without re-deriving the aggregation.
type TriageContext struct {
	HasContext         bool   `json:"has_context"`
	HasCallHistory     bool   `json:"has_call_history"`
	SystemPrompt       string `json:"system_prompt"`
	TriagePrompt       string `json:"triage_prompt"`
	SystemPromptLength int    `json:"system_prompt_length"`
	TriagePromptLength int    `json:"triage_prompt_length"`
}

// PromptResult reports the outcome of one patient's prompt generation
type PromptResult struct {
	BatchID      string  `json:"batch_id"`
	PatientID    string  `json:"patient_id"`
	Success      bool    `json:"success"`
	Prompt       string  `json:"prompt,omitempty"`
	Reasoning    *string `json:"reasoning,omitempty"`
	IsAlert      *bool   `json:"is_alert,omitempty"`
	HealthStatus *string `json:"health_status,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// PromptInput is the generation input handed to the text-generation
// capability for one patient.
type PromptInput struct {
	Name        string                 `json:"name"`
	Age         int                    `json:"age"`
	Conditions  []string               `json:"conditions"`
	RawFields   map[string]interface{} `json:"raw_fields,omitempty"`
	CallContext string                 `json:"call_context,omitempty"`
}

// GeneratedPrompt is the validated response of the text-generation
// capability. Optional fields stay nil when the capability omits them.
type GeneratedPrompt struct {
	Prompt       string  `json:"prompt"`
	Reasoning    *string `json:"reasoning,omitempty"`
	IsAlert      *bool   `json:"is_alert,omitempty"`
	HealthStatus *string `json:"health_status,omitempty"`
}
