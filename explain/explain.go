// Package explain turns raw accessibility violations into bilingual,
// plain-language explanations using a generative AI provider.
//
// The Client builds the prompt, calls the Provider, extracts the first JSON
// object from the answer and validates it against the Explanation contract.
// Resilience (timeouts, retries, circuit breaking) is layered on top with
// Middleware. Callers that must never fail substitute Fallback on error.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/aodacheck/report"
)

// Request describes one violation to explain.
type Request struct {
	URL         string
	RuleID      string
	Description string
	HTML        string
}

// Explainer produces an Explanation for one violation.
type Explainer interface {
	Explain(ctx context.Context, req Request) (report.Explanation, error)
}

// ExplainerFunc adapts a function to Explainer.
type ExplainerFunc func(ctx context.Context, req Request) (report.Explanation, error)

// Explain calls f.
func (f ExplainerFunc) Explain(ctx context.Context, req Request) (report.Explanation, error) {
	return f(ctx, req)
}

// Narrator renders page content the way a screen reader would speak it.
type Narrator interface {
	Narrate(ctx context.Context, pageTitle, content string) (string, error)
}

// Client is the provider-backed Explainer and Narrator.
type Client struct {
	provider  Provider
	sanitizer *Sanitizer
	logger    *slog.Logger
}

// NewClient wraps a Provider. A nil logger uses slog.Default().
func NewClient(p Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{provider: p, sanitizer: NewSanitizer(), logger: logger}
}

// Explain asks the provider for an explanation and validates the answer.
// Provider failures and schema mismatches are returned as errors.
func (c *Client) Explain(ctx context.Context, req Request) (report.Explanation, error) {
	start := time.Now()
	user := ExplanationPrompt(req)

	var (
		text string
		err  error
	)
	if sp, ok := c.provider.(StructuredProvider); ok {
		text, err = sp.CompleteJSON(ctx, systemPrompt, user, "accessibility_explanation", ExplanationSchema())
	} else {
		text, err = c.provider.Complete(ctx, systemPrompt, user)
	}
	if err != nil {
		return report.Explanation{}, fmt.Errorf("explain: %s: %w", c.provider.Name(), err)
	}

	exp, err := Parse(text)
	if err != nil {
		return report.Explanation{}, err
	}
	c.logger.DebugContext(ctx, "explain: ok",
		"rule", req.RuleID, "provider", c.provider.Name(), "duration_ms", time.Since(start).Milliseconds())
	return c.sanitizer.Explanation(exp), nil
}

// Narrate asks the provider for a screen-reader narration of content.
func (c *Client) Narrate(ctx context.Context, pageTitle, content string) (string, error) {
	text, err := c.provider.Complete(ctx, narrationSystemPrompt, NarrationPrompt(pageTitle, content))
	if err != nil {
		return "", fmt.Errorf("explain: narrate: %s: %w", c.provider.Name(), err)
	}
	text = strings.TrimSpace(c.sanitizer.Text(text))
	if text == "" {
		return "", fmt.Errorf("explain: narrate: empty answer")
	}
	return text, nil
}

// Fallback is the deterministic explanation used when the AI service fails
// or answers with an unusable payload.
func Fallback(description string) report.Explanation {
	return report.Explanation{
		Explanation:           "WCAG 2.0 AA Issue: " + description + ". This affects accessibility for users with disabilities and may violate Ontario's AODA requirements.",
		ExplanationFr:         "Problème WCAG 2.0 AA: " + description + ". Ceci affecte l'accessibilité pour les utilisateurs avec des handicaps et peut violer les exigences AODA de l'Ontario.",
		FixSample:             "Manual review required - API unavailable",
		ScreenReaderNarration: "Content accessibility needs verification",
		WCAGCriteria:          "Manual review needed",
		AODAImpact:            "Potential AODA compliance risk - manual review recommended",
		Priority:              report.PriorityHigh,
		BusinessImpact:        "May affect website accessibility compliance for Canadian businesses",
	}
}

// FallbackNarration is returned when narration cannot be produced.
const FallbackNarration = "Screen reader narration unavailable - manual review needed"

// Offline is the Explainer and Narrator used when no provider is
// configured. Every call fails with ErrNoProvider so callers fall back.
type Offline struct{}

// Explain always fails.
func (Offline) Explain(context.Context, Request) (report.Explanation, error) {
	return report.Explanation{}, ErrNoProvider
}

// Narrate always fails.
func (Offline) Narrate(context.Context, string, string) (string, error) {
	return "", ErrNoProvider
}
