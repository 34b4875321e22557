package a11y

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hazyhaar/aodacheck/explain"
)

// NewAI builds the explanation and narration services from cfg.AI. A
// missing provider or API key yields the offline implementation, so
// analyses still complete with fallback text.
func NewAI(ctx context.Context, cfg *Config, logger *slog.Logger) (explain.Explainer, explain.Narrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p, err := explain.NewProvider(ctx, explain.ProviderConfig{
		Provider:  cfg.AI.Provider,
		Model:     cfg.AI.Model,
		APIKey:    cfg.AI.APIKey,
		MaxTokens: cfg.AI.MaxTokens,
	})
	switch {
	case errors.Is(err, explain.ErrNoProvider), errors.Is(err, explain.ErrNoAPIKey):
		logger.Warn("a11y: AI explanations disabled, using fallback text", "provider", cfg.AI.Provider, "reason", err)
		return explain.Offline{}, explain.Offline{}, nil
	case err != nil:
		return nil, nil, err
	}

	client := explain.NewClient(p, logger)
	resilient := explain.Resilient(client, explain.ResilienceConfig{
		CallTimeout:      cfg.AI.CallTimeout,
		Retries:          cfg.AI.Retries,
		BreakerThreshold: cfg.AI.BreakerThreshold,
		BreakerReset:     cfg.AI.BreakerReset,
		Service:          p.Name(),
		Logger:           logger,
	})
	logger.Info("a11y: AI explanations enabled", "provider", p.Name(), "model", cfg.AI.Model)
	return resilient, client, nil
}
