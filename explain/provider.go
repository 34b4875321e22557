package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoProvider is returned when no AI provider is configured.
var ErrNoProvider = errors.New("explain: no AI provider configured")

// ErrNoAPIKey is returned when a provider is selected without a key.
var ErrNoAPIKey = errors.New("explain: missing API key")

// Provider is a text-completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// StructuredProvider can constrain its answer to a JSON schema.
type StructuredProvider interface {
	Provider
	CompleteJSON(ctx context.Context, system, user, schemaName string, schema any) (string, error)
}

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	// Provider is gemini, anthropic, openai or offline.
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// NewProvider builds the configured Provider. It returns ErrNoProvider for
// "offline" and ErrNoAPIKey when the selected provider has no key.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" || name == "offline" || name == "none" {
		return nil, ErrNoProvider
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoAPIKey, name)
	}
	switch name {
	case "gemini", "google":
		return NewGeminiProvider(ctx, cfg)
	case "anthropic", "claude":
		return NewAnthropicProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg), nil
	}
	return nil, fmt.Errorf("explain: unknown provider %q", cfg.Provider)
}
