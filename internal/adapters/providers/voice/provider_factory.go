package voice

import (
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/pkg/config"
)

// NewVoiceProvider selects a voice provider from configuration.
// Falls back to the mock provider when no gateway is configured so local
// environments can exercise the full triage flow without placing real calls.
func NewVoiceProvider(cfg config.VoiceConfig) providers.VoiceCallProvider {
	if cfg.Provider == "mock" || cfg.BaseURL == "" || cfg.APIKey == "" {
		return NewMockAdapter()
	}
	return NewHTTPAdapter(cfg.BaseURL, cfg.APIKey, cfg.AgentID)
}
