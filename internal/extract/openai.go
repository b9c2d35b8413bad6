package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/util"
)

// OpenAIAdapter implements Adapter against any OpenAI-compatible chat
// completions endpoint (OpenAI, Groq, Ollama).
type OpenAIAdapter struct {
	client   *openai.Client
	provider string
	cfg      model.LLMConfig
}

// NewOpenAIAdapter creates an adapter from the LLM configuration.
func NewOpenAIAdapter(provider string, cfg model.LLMConfig) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
	}

	return &OpenAIAdapter{
		client:   openai.NewClientWithConfig(clientConfig),
		provider: provider,
		cfg:      cfg,
	}, nil
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() string {
	return a.provider
}

// extractionResponse is the JSON shape the prompt asks for.
type extractionResponse struct {
	Fields map[string]struct {
		Value      json.RawMessage `json:"value"`
		Confidence float64         `json:"confidence"`
	} `json:"fields"`
}

// Extract sends the artifact as an inline image and parses the field map.
func (a *OpenAIAdapter) Extract(ctx context.Context, artifact []byte, contentType string, docType model.DocumentType) (map[string]FieldValue, error) {
	if contentType == "" {
		contentType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(artifact))

	req := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Temperature: 0.1,
		MaxTokens:   a.cfg.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildPrompt(docType),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf("Extract the %s fields from this document.", docType),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s extraction: %w", a.provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s extraction: empty response", a.provider)
	}

	return parseExtraction(resp.Choices[0].Message.Content)
}

func parseExtraction(content string) (map[string]FieldValue, error) {
	var parsed extractionResponse
	if err := json.Unmarshal([]byte(util.StripCodeFence(content)), &parsed); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	fields := make(map[string]FieldValue, len(parsed.Fields))
	for name, f := range parsed.Fields {
		raw := rawValueString(f.Value)
		if raw == "" {
			continue
		}
		fields[name] = FieldValue{
			Raw:        raw,
			Confidence: ClampConfidence(f.Confidence),
		}
	}
	return fields, nil
}

// rawValueString renders a JSON value as the raw field string. Providers
// return numbers for amounts and occasionally null for absent fields.
func rawValueString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
