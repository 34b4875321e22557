package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider calls Google Gemini through langchaingo.
type GeminiProvider struct {
	llm       llms.Model
	model     string
	maxTokens int
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("explain: gemini: %w", err)
	}
	return &GeminiProvider{llm: llm, model: model, maxTokens: cfg.MaxTokens}, nil
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete sends the prompts and returns the first choice.
func (p *GeminiProvider) Complete(ctx context.Context, system, user string) (string, error) {
	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, user))

	resp, err := p.llm.GenerateContent(ctx, messages, llms.WithMaxTokens(p.maxTokens))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gemini: no response choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
