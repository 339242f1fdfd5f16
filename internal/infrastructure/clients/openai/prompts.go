package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carebridge/caretriage/internal/domain/entities"
	"github.com/carebridge/caretriage/internal/domain/providers"
)

const caretakerSystemPrompt = `You are a clinical content assistant writing briefing prompts for caretakers of elderly and chronically ill patients. Return ONLY valid JSON with this schema:
{
  "prompt": string (the caretaker briefing: what to watch for, how to speak with this patient, 3-6 short sentences),
  "reasoning": string (1-2 sentences on why these points matter for this patient),
  "is_alert": boolean (true only when the conditions suggest urgent clinical attention),
  "health_status": string (one of: "stable", "needs_attention", "critical")
}
Keep language simple and non-alarmist. Do not include diagnosis or medication advice. Never invent conditions not present in the input.`

const triageAwareSystemPrompt = caretakerSystemPrompt + `
The input includes a summary of this patient's previous triage calls. Weigh recent concerns and follow-up items from those calls when writing the briefing, and mention unresolved follow-ups explicitly.`

func buildPatientUserPrompt(input *entities.PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient name: %s\nAge: %d\nConditions: %s\n",
		input.Name, input.Age, strings.Join(input.Conditions, ", "))

	if len(input.RawFields) > 0 {
		if raw, err := json.Marshal(input.RawFields); err == nil {
			fmt.Fprintf(&b, "Source fields: %s\n", raw)
		}
	}

	if input.CallContext != "" {
		fmt.Fprintf(&b, "\nPrevious call history:\n%s\n", input.CallContext)
	}

	return b.String()
}

type generatedPayload struct {
	Prompt       string  `json:"prompt"`
	Reasoning    *string `json:"reasoning,omitempty"`
	IsAlert      *bool   `json:"is_alert,omitempty"`
	HealthStatus *string `json:"health_status,omitempty"`
}

// parseGeneratedPayload validates the capability's JSON at the boundary. A
// payload without a non-empty prompt is malformed; optional fields stay nil.
func parseGeneratedPayload(data []byte) (*entities.GeneratedPrompt, error) {
	var payload generatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrPromptGenerationMalformed, err)
	}

	if strings.TrimSpace(payload.Prompt) == "" {
		return nil, fmt.Errorf("%w: empty prompt", providers.ErrPromptGenerationMalformed)
	}

	return &entities.GeneratedPrompt{
		Prompt:       strings.TrimSpace(payload.Prompt),
		Reasoning:    payload.Reasoning,
		IsAlert:      payload.IsAlert,
		HealthStatus: payload.HealthStatus,
	}, nil
}
