// Package axe injects the axe-core rule engine into a loaded page, runs it
// against a WCAG tag set and decodes the results at the boundary.
//
// Any failure inside the page degrades to empty result sets: one page that
// breaks the engine never aborts an analysis.
package axe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/hazyhaar/aodacheck/a11y/internal/browser"
	"github.com/hazyhaar/aodacheck/report"
)

// DefaultTags is WCAG 2.0 A/AA plus WCAG 2.1 AA.
var DefaultTags = []string{"wcag2a", "wcag2aa", "wcag21aa"}

// Config configures a Runner.
type Config struct {
	// ScriptURL is where the page fetches axe.min.js from.
	ScriptURL string
	// ScriptPath, when set, is read on first use and injected inline instead.
	ScriptPath string
	Tags       []string
	Logger     *slog.Logger
}

func (c *Config) defaults() {
	if len(c.Tags) == 0 {
		c.Tags = DefaultTags
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Results are the decoded engine outcomes.
type Results struct {
	Violations []report.RawViolation `json:"violations"`
	Passes     []report.RuleResult   `json:"passes"`
	Incomplete []report.RuleResult   `json:"incomplete"`
	// Degraded is set when the engine could not run; the sets are empty.
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Runner runs axe-core inside pages.
type Runner struct {
	cfg Config

	mu     sync.Mutex
	script string
}

// New creates a Runner.
func New(cfg Config) *Runner {
	cfg.defaults()
	return &Runner{cfg: cfg}
}

const runJS = `(tags) => new Promise((resolve) => {
	if (typeof axe === 'undefined') {
		resolve(JSON.stringify({error: 'axe-core not loaded'}));
		return;
	}
	const project = (r, withNodes) => ({
		id: r.id,
		impact: r.impact || '',
		description: r.description,
		help: r.help,
		helpUrl: r.helpUrl,
		tags: r.tags || [],
		nodes: withNodes ? (r.nodes || []).slice(0, 5).map(n => ({
			html: n.html || '',
			target: (n.target || []).map(String),
			failureSummary: n.failureSummary || ''
		})) : []
	});
	axe.run(document, {runOnly: {type: 'tag', values: tags}}, (err, res) => {
		if (err) {
			resolve(JSON.stringify({error: String((err && err.message) || err)}));
			return;
		}
		resolve(JSON.stringify({
			violations: res.violations.map(r => project(r, true)),
			passes: res.passes.map(r => project(r, false)),
			incomplete: res.incomplete.map(r => project(r, false))
		}));
	});
})`

// Run injects the engine and executes it. It never returns an error;
// failures come back as Degraded results.
func (r *Runner) Run(ctx context.Context, page browser.Page) Results {
	log := r.cfg.Logger

	if err := r.inject(ctx, page); err != nil {
		log.Warn("axe: inject failed", "error", err)
		return degraded(err)
	}

	raw, err := page.Eval(ctx, runJS, r.cfg.Tags)
	if err != nil {
		log.Warn("axe: run failed", "error", err)
		return degraded(err)
	}

	res, err := Decode([]byte(raw))
	if err != nil {
		log.Warn("axe: decode failed", "error", err)
		return degraded(err)
	}
	if res.Degraded {
		log.Warn("axe: engine error", "error", res.Error)
		return res
	}
	log.Debug("axe: run complete",
		"violations", len(res.Violations), "passes", len(res.Passes), "incomplete", len(res.Incomplete))
	return res
}

func (r *Runner) inject(ctx context.Context, page browser.Page) error {
	if r.cfg.ScriptPath == "" {
		if r.cfg.ScriptURL == "" {
			return fmt.Errorf("axe: no script source configured")
		}
		return page.AddScript(ctx, r.cfg.ScriptURL, "")
	}
	script, err := r.loadScript()
	if err != nil {
		return err
	}
	return page.AddScript(ctx, "", script)
}

// loadScript reads ScriptPath on first success and caches it. A failed read
// is not cached, so the next run retries.
func (r *Runner) loadScript() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.script != "" {
		return r.script, nil
	}
	b, err := os.ReadFile(r.cfg.ScriptPath)
	if err != nil {
		return "", fmt.Errorf("axe: read script: %w", err)
	}
	r.script = string(b)
	return r.script, nil
}

func degraded(err error) Results {
	return Results{
		Violations: []report.RawViolation{},
		Passes:     []report.RuleResult{},
		Incomplete: []report.RuleResult{},
		Degraded:   true,
		Error:      err.Error(),
	}
}

type rawRule struct {
	ID          string        `json:"id"`
	Impact      string        `json:"impact"`
	Description string        `json:"description"`
	Help        string        `json:"help"`
	HelpURL     string        `json:"helpUrl"`
	Tags        []string      `json:"tags"`
	Nodes       []report.Node `json:"nodes"`
}

type rawResults struct {
	Violations []rawRule `json:"violations"`
	Passes     []rawRule `json:"passes"`
	Incomplete []rawRule `json:"incomplete"`
	Error      string    `json:"error"`
}

// Decode parses the in-page payload into typed results. Rules without an
// id are dropped; violation impacts outside the known set become minor.
func Decode(b []byte) (Results, error) {
	var raw rawResults
	if err := json.Unmarshal(b, &raw); err != nil {
		return Results{}, fmt.Errorf("axe: decode: %w", err)
	}
	if raw.Error != "" {
		return degraded(fmt.Errorf("axe: %s", raw.Error)), nil
	}
	return Results{
		Violations: convert(raw.Violations, true),
		Passes:     convert(raw.Passes, false),
		Incomplete: convert(raw.Incomplete, false),
	}, nil
}

func convert(in []rawRule, violation bool) []report.RuleResult {
	out := make([]report.RuleResult, 0, len(in))
	for _, r := range in {
		if r.ID == "" {
			continue
		}
		impact := report.Impact(r.Impact)
		if violation {
			impact = report.ParseImpact(r.Impact)
		} else if !impact.Valid() {
			impact = ""
		}
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		rr := report.RuleResult{
			ID:          r.ID,
			Impact:      impact,
			Description: r.Description,
			Help:        r.Help,
			HelpURL:     r.HelpURL,
			Tags:        tags,
		}
		if violation {
			rr.Nodes = r.Nodes
		}
		out = append(out, rr)
	}
	return out
}
