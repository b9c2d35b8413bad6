package assess

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/claimpilot/claimpilot/internal/model"
	"github.com/claimpilot/claimpilot/internal/util"
)

// OpenAIAdapter assesses damage photos through any OpenAI-compatible
// chat-completions endpoint with vision support.
type OpenAIAdapter struct {
	client   *openai.Client
	provider string
	cfg      model.LLMConfig
}

// NewOpenAIAdapter builds a vision adapter for the configured provider.
func NewOpenAIAdapter(provider string, cfg model.LLMConfig) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("assess: %s adapter requires an API key", provider)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
	}

	return &OpenAIAdapter{
		client:   openai.NewClientWithConfig(clientCfg),
		provider: provider,
		cfg:      cfg,
	}, nil
}

func (a *OpenAIAdapter) Name() string { return a.provider }

// Assess sends the image alongside the declared damage and parses the
// model's JSON verdict into a DamageSignal.
func (a *OpenAIAdapter) Assess(ctx context.Context, image []byte, contentType string, declared DeclaredDamage) (*model.DamageSignal, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("assess: empty image")
	}

	visionModel := a.cfg.VisionModel
	if visionModel == "" {
		visionModel = a.cfg.Model
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model:       visionModel,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: buildVisionPrompt(declared)},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
					},
				},
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("assess: %s request failed: %w", a.provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("assess: %s returned no choices", a.provider)
	}

	return parseSignal(resp.Choices[0].Message.Content)
}

func buildVisionPrompt(declared DeclaredDamage) string {
	var b strings.Builder
	b.WriteString("You are an automotive damage assessor reviewing a photograph ")
	b.WriteString("submitted with a motor insurance claim.\n\n")
	if declared.Description != "" {
		fmt.Fprintf(&b, "Declared damage: %s\n", declared.Description)
	}
	if declared.Location != "" {
		fmt.Fprintf(&b, "Declared location: %s\n", declared.Location)
	}
	if declared.Parts != "" {
		fmt.Fprintf(&b, "Parts on the repair estimate: %s\n", declared.Parts)
	}
	b.WriteString("\nJudge whether the visible damage is consistent with the declaration. ")
	b.WriteString("Respond with JSON only:\n")
	b.WriteString(`{"score": <0.0-1.0 consistency score>, "rationale": "<one sentence>", ` +
		`"tags": ["<damage kind, e.g. dent, scratch, shattered_glass>"], ` +
		`"regions": ["<vehicle region, e.g. front, rear, left, right>"]}` + "\n")
	b.WriteString("Score 1.0 means the photo clearly shows the declared damage; ")
	b.WriteString("0.0 means the photo contradicts it or shows an unrelated vehicle. ")
	b.WriteString("If the image is not a vehicle photograph, score 0.0 and say so in the rationale.")
	return b.String()
}

type visionResponse struct {
	Score     float64  `json:"score"`
	Rationale string   `json:"rationale"`
	Tags      []string `json:"tags"`
	Regions   []string `json:"regions"`
}

func parseSignal(content string) (*model.DamageSignal, error) {
	content = util.StripCodeFence(content)

	var vr visionResponse
	if err := json.Unmarshal([]byte(content), &vr); err != nil {
		return nil, fmt.Errorf("assess: unparseable response: %w", err)
	}

	sig := &model.DamageSignal{
		Score:     clampScore(vr.Score),
		Rationale: strings.TrimSpace(vr.Rationale),
		Tags:      dedupeSorted(vr.Tags),
		Regions:   dedupeSorted(vr.Regions),
	}
	return sig, nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
