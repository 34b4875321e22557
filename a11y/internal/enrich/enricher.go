// Package enrich merges raw rule violations with AI explanations.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/aodacheck/explain"
	"github.com/hazyhaar/aodacheck/report"
)

// SnippetUnavailable replaces the HTML of violations without nodes.
const SnippetUnavailable = "HTML snippet not available"

// Config configures an Enricher.
type Config struct {
	Explainer explain.Explainer
	// Max bounds how many violations are enriched. Default: 10.
	Max int
	// Timeout bounds each explanation call. Default: 30s.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.Explainer == nil {
		c.Explainer = explain.Offline{}
	}
	if c.Max <= 0 {
		c.Max = 10
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Enricher explains violations one at a time, in rule-engine order.
type Enricher struct {
	cfg Config
}

// New creates an Enricher.
func New(cfg Config) *Enricher {
	cfg.defaults()
	return &Enricher{cfg: cfg}
}

// Enrich explains the first Max violations. It never fails: an explanation
// that cannot be obtained is replaced by explain.Fallback.
func (e *Enricher) Enrich(ctx context.Context, pageURL string, violations []report.RawViolation) []report.EnrichedViolation {
	if len(violations) > e.cfg.Max {
		violations = violations[:e.cfg.Max]
	}
	out := make([]report.EnrichedViolation, 0, len(violations))
	fallbacks := 0
	for _, v := range violations {
		ev := e.enrichOne(ctx, pageURL, v)
		if ev.Fallback {
			fallbacks++
		}
		out = append(out, ev)
	}
	if fallbacks > 0 {
		e.cfg.Logger.WarnContext(ctx, "enrich: fallback explanations used",
			"url", pageURL, "fallbacks", fallbacks, "total", len(out))
	}
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, pageURL string, v report.RawViolation) report.EnrichedViolation {
	snippet := SnippetUnavailable
	target := []string{}
	if len(v.Nodes) > 0 {
		if v.Nodes[0].HTML != "" {
			snippet = v.Nodes[0].HTML
		}
		if v.Nodes[0].Target != nil {
			target = v.Nodes[0].Target
		}
	}

	ev := report.EnrichedViolation{
		ID:          v.ID,
		Impact:      v.Impact,
		Description: v.Description,
		Help:        v.Help,
		HelpURL:     v.HelpURL,
		Tags:        v.Tags,
		HTML:        snippet,
		Target:      target,
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()
	exp, err := e.cfg.Explainer.Explain(callCtx, explain.Request{
		URL:         pageURL,
		RuleID:      v.ID,
		Description: v.Description,
		HTML:        CondenseSnippet(snippet),
	})
	if err != nil {
		e.cfg.Logger.DebugContext(ctx, "enrich: explanation failed", "rule", v.ID, "error", err)
		ev.Explanation = explain.Fallback(v.Description)
		ev.Fallback = true
		return ev
	}
	ev.Explanation = exp
	return ev
}
