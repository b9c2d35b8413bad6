package assess

import (
	"fmt"

	"github.com/claimpilot/claimpilot/internal/model"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	ollamaBaseURL = "http://localhost:11434/v1"
)

// NewAdapter creates the vision adapter for the configured provider,
// mirroring the extraction factory: every supported provider speaks the
// OpenAI wire protocol.
func NewAdapter(cfg model.LLMConfig) (Adapter, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIAdapter("openai", cfg)
	case "groq":
		if cfg.BaseURL == "" {
			cfg.BaseURL = groqBaseURL
		}
		return NewOpenAIAdapter("groq", cfg)
	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = ollamaBaseURL
		}
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama"
		}
		return NewOpenAIAdapter("ollama", cfg)
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
