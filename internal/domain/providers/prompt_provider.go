package providers

import (
	"context"
	"errors"

	"github.com/carebridge/caretriage/internal/domain/entities"
)

// Capability error sentinels, matched with errors.Is at the service layer.
var (
	// ErrPromptGenerationUnauthorized indicates rejected credentials
	ErrPromptGenerationUnauthorized = errors.New("prompt generation unauthorized")

	// ErrPromptGenerationQuota indicates the capability's quota or rate
	// limit was exhausted
	ErrPromptGenerationQuota = errors.New("prompt generation quota exhausted")

	// ErrPromptGenerationMalformed indicates the capability returned output
	// that failed boundary validation
	ErrPromptGenerationMalformed = errors.New("prompt generation returned malformed output")
)

// PromptGenerationProvider defines the text-generation capability that turns
// one patient's data into a caretaker prompt.
type PromptGenerationProvider interface {
	GeneratePrompt(ctx context.Context, input *entities.PromptInput) (*entities.GeneratedPrompt, error)
}
