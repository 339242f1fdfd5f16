package providers

import "context"

// VoiceCallRequest carries the briefing material for one outbound triage call
type VoiceCallRequest struct {
	PatientID    string
	PhoneNumber  string
	SystemPrompt string
	TriagePrompt string
}

// VoiceCallProvider defines the outbound voice-call capability. PlaceCall is
// asynchronous; completion arrives later through the call webhook, which
// appends a call history entry.
type VoiceCallProvider interface {
	PlaceCall(ctx context.Context, req *VoiceCallRequest) (string, error)
}
