package explain

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider calls the OpenAI Chat Completions API. Explanations use
// strict JSON-schema structured output.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIProvider{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: cfg.MaxTokens,
	}
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string { return "openai" }

// Complete sends the prompts and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	return p.complete(ctx, p.params(system, user))
}

// CompleteJSON constrains the answer to schema.
func (p *OpenAIProvider) CompleteJSON(ctx context.Context, system, user, schemaName string, schema any) (string, error) {
	params := p.params(system, user)
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   schemaName,
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}
	return p.complete(ctx, params)
}

func (p *OpenAIProvider) params(system, user string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: openai.Int(int64(p.maxTokens)),
	}
}

func (p *OpenAIProvider) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
