package extract

import (
	"fmt"

	"github.com/claimpilot/claimpilot/internal/model"
)

// Endpoint defaults for OpenAI-compatible providers.
const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	ollamaBaseURL = "http://localhost:11434/v1"
)

// NewAdapter creates the extraction adapter for the configured provider.
// Groq and Ollama speak the OpenAI wire protocol, so all providers share
// one client with different endpoints.
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
			cfg.APIKey = "ollama" // endpoint ignores it, client requires one
		}
		return NewOpenAIAdapter("ollama", cfg)
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
