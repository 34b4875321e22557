// Package a11y orchestrates accessibility analyses: one browser session per
// request driven through navigation, rule execution and screenshot capture,
// then AI enrichment and report assembly.
package a11y

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hazyhaar/aodacheck/a11y/internal/axe"
	"github.com/hazyhaar/aodacheck/a11y/internal/browser"
	"github.com/hazyhaar/aodacheck/a11y/internal/enrich"
	"github.com/hazyhaar/aodacheck/a11y/internal/narrate"
	"github.com/hazyhaar/aodacheck/a11y/internal/summary"
	"github.com/hazyhaar/aodacheck/a11y/internal/urlguard"
	"github.com/hazyhaar/aodacheck/a11y/internal/vision"
	"github.com/hazyhaar/aodacheck/explain"
	"github.com/hazyhaar/aodacheck/idgen"
	"github.com/hazyhaar/aodacheck/report"
)

var tracer = otel.Tracer("github.com/hazyhaar/aodacheck/a11y")

// Options configures an Analyzer. Only Launcher is required.
type Options struct {
	Config    *Config
	Launcher  Launcher
	Explainer explain.Explainer
	Narrator  explain.Narrator
	IDGen     idgen.Generator
	Now       func() time.Time
	// Sleep replaces every settle wait; tests pass a no-op.
	Sleep func(context.Context, time.Duration) error
	// LookupHost resolves target hosts for browser.block_private. Nil uses
	// the system resolver.
	LookupHost func(ctx context.Context, host string) ([]netip.Addr, error)
	Logger     *slog.Logger
}

// Analyzer runs analyses, vision simulations and narrations.
type Analyzer struct {
	cfg      *Config
	session  *browser.Session
	rules    *axe.Runner
	enricher *enrich.Enricher
	narrator *narrate.Service
	guard    *urlguard.Guard
	ids      idgen.Generator
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
	logger   *slog.Logger
}

// New creates an Analyzer.
func New(opts Options) (*Analyzer, error) {
	if opts.Launcher == nil {
		return nil, errors.New("a11y: launcher is required")
	}
	if opts.Config == nil {
		opts.Config = DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IDGen == nil {
		opts.IDGen = idgen.Prefixed("rpt_", idgen.Default)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = browser.Sleep
	}
	cfg := opts.Config

	var guard *urlguard.Guard
	if cfg.Browser.BlockPrivate {
		guard = &urlguard.Guard{Lookup: opts.LookupHost}
	}

	return &Analyzer{
		cfg:     cfg,
		session: browser.NewSession(opts.Launcher, opts.Logger),
		rules: axe.New(axe.Config{
			ScriptURL:  cfg.Rules.ScriptURL,
			ScriptPath: cfg.Rules.ScriptPath,
			Tags:       cfg.Rules.Tags,
			Logger:     opts.Logger,
		}),
		enricher: enrich.New(enrich.Config{
			Explainer: opts.Explainer,
			Max:       cfg.Analysis.MaxEnriched,
			Logger:    opts.Logger,
		}),
		narrator: narrate.New(narrate.Config{
			Narrator: opts.Narrator,
			Now:      opts.Now,
			Logger:   opts.Logger,
		}),
		guard:  guard,
		ids:    opts.IDGen,
		now:    opts.Now,
		sleep:  opts.Sleep,
		logger: opts.Logger,
	}, nil
}

type analysis struct {
	info  report.PageInfo
	rules axe.Results
	shots report.Screenshots
}

// Analyze produces the full accessibility report for rawURL. Only input
// validation, navigation and browser acquisition failures are returned;
// every other failure degrades in-band.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (report.Report, error) {
	target, err := a.target(ctx, rawURL)
	if err != nil {
		return report.Report{}, err
	}

	ctx, span := tracer.Start(ctx, "a11y.Analyze", trace.WithAttributes(attribute.String("url.full", target)))
	defer span.End()
	start := a.now()

	res, err := browser.RunWith(ctx, a.session, func(ctx context.Context, page browser.Page) (analysis, error) {
		var out analysis
		info, err := a.load(ctx, page, target, a.cfg.Analysis.ViewportWidth, a.cfg.Analysis.ViewportHeight, a.cfg.Analysis.Settle)
		if err != nil {
			return out, err
		}
		out.info = info

		_, rspan := tracer.Start(ctx, "a11y.rules")
		out.rules = a.rules.Run(ctx, page)
		rspan.SetAttributes(attribute.Int("violations", len(out.rules.Violations)), attribute.Bool("degraded", out.rules.Degraded))
		rspan.End()

		_, cspan := tracer.Start(ctx, "a11y.capture")
		out.shots = vision.CaptureReportViews(ctx, page, vision.CaptureOptions{
			Settle: a.cfg.Analysis.ViewSettle,
			Now:    a.now,
			Sleep:  a.sleep,
			Logger: a.logger,
		})
		cspan.End()
		return out, nil
	})
	if err != nil {
		err = a.classify(target, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.WarnContext(ctx, "a11y: analysis aborted", "url", target, "error", err)
		return report.Report{}, err
	}

	var warnings []string
	if res.rules.Degraded {
		a.logger.WarnContext(ctx, "a11y: rule engine degraded, reporting no violations", "url", target, "error", res.rules.Error)
		warnings = append(warnings, "Accessibility rule engine failed to run; violations may be under-reported: "+res.rules.Error)
	}
	for view, msg := range res.shots.Errors {
		a.logger.WarnContext(ctx, "a11y: report view capture failed", "url", target, "profile", view, "error", msg)
	}

	_, espan := tracer.Start(ctx, "a11y.enrich")
	enriched := a.enricher.Enrich(ctx, target, res.rules.Violations)
	espan.End()

	fallbacks := 0
	for _, v := range enriched {
		if v.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 0 {
		warnings = append(warnings, fmt.Sprintf("%d of %d explanations use fallback text", fallbacks, len(enriched)))
	}

	sum := summary.Summarize(res.rules.Violations, res.info)
	rep := report.Assemble(report.Parts{
		ID:          a.ids(),
		URL:         target,
		At:          a.now(),
		PageInfo:    res.info,
		Summary:     sum,
		Screenshots: res.shots,
		Violations:  enriched,
		Warnings:    warnings,
	})

	span.SetAttributes(
		attribute.Int("violations.total", sum.TotalViolations),
		attribute.Int("violations.critical", sum.CriticalIssues),
	)
	a.logger.InfoContext(ctx, "a11y: analysis complete",
		"url", target, "report_id", rep.ID,
		"violations", sum.TotalViolations, "enriched", len(enriched),
		"elapsed", a.now().Sub(start))
	return rep, nil
}

// Simulate renders rawURL through the requested vision profiles, all of
// them when types is empty.
func (a *Analyzer) Simulate(ctx context.Context, rawURL string, types []string) (report.SimulationReport, error) {
	target, err := a.target(ctx, rawURL)
	if err != nil {
		return report.SimulationReport{}, err
	}
	if len(types) == 0 {
		types = vision.IDs()
	}

	ctx, span := tracer.Start(ctx, "a11y.Simulate", trace.WithAttributes(
		attribute.String("url.full", target),
		attribute.Int("profiles", len(types)),
	))
	defer span.End()

	sims, err := browser.RunWith(ctx, a.session, func(ctx context.Context, page browser.Page) ([]report.VisionSimulationResult, error) {
		sc := a.cfg.Simulation
		if _, err := a.load(ctx, page, target, sc.ViewportWidth, sc.ViewportHeight, sc.LoadSettle); err != nil {
			return nil, err
		}
		return vision.Capture(ctx, page, types, vision.CaptureOptions{
			Settle: sc.FilterSettle,
			Now:    a.now,
			Sleep:  a.sleep,
			Logger: a.logger,
		}), nil
	})
	if err != nil {
		err = a.classify(target, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report.SimulationReport{}, err
	}

	sr := report.SimulationReport{
		URL:              target,
		Simulations:      sims,
		GeneratedAt:      report.Timestamp(a.now()),
		TotalSimulations: len(sims),
		Summary:          report.Summarize(sims),
		Recommendations:  summary.VisionRecommendations(),
	}
	a.logger.InfoContext(ctx, "a11y: simulation complete", "url", target,
		"captured", sr.Summary.SuccessfulSimulations, "failed", sr.Summary.FailedSimulations)
	return sr, nil
}

// Narrate returns a screen-reader narration of the page's main content.
func (a *Analyzer) Narrate(ctx context.Context, rawURL string) (report.Narration, error) {
	target, err := a.target(ctx, rawURL)
	if err != nil {
		return report.Narration{}, err
	}

	ctx, span := tracer.Start(ctx, "a11y.Narrate", trace.WithAttributes(attribute.String("url.full", target)))
	defer span.End()

	type page struct {
		title, html string
	}
	p, err := browser.RunWith(ctx, a.session, func(ctx context.Context, pg browser.Page) (page, error) {
		info, err := a.load(ctx, pg, target, a.cfg.Analysis.ViewportWidth, a.cfg.Analysis.ViewportHeight, a.cfg.Analysis.Settle)
		if err != nil {
			return page{}, err
		}
		html, err := browser.Content(ctx, pg)
		if err != nil {
			a.logger.WarnContext(ctx, "a11y: content extraction failed", "url", target, "error", err)
		}
		return page{title: info.Title, html: html}, nil
	})
	if err != nil {
		err = a.classify(target, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report.Narration{}, err
	}
	return a.narrator.Narrate(ctx, target, p.title, p.html), nil
}

// VisionTypes lists the public vision profiles in catalog order.
func (a *Analyzer) VisionTypes() []report.VisionType {
	return vision.Types()
}

// target validates rawURL and, when enabled, refuses private hosts. Both
// happen before a browser is acquired.
func (a *Analyzer) target(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	target := strings.TrimSpace(rawURL)
	if a.guard != nil {
		if err := a.guard.Check(ctx, target); err != nil {
			return "", &InputValidationError{URL: rawURL, Reason: "URL targets a private or loopback address"}
		}
	}
	return target, nil
}

func (a *Analyzer) load(ctx context.Context, page browser.Page, target string, w, h int, settle time.Duration) (report.PageInfo, error) {
	ctx, span := tracer.Start(ctx, "a11y.navigate")
	defer span.End()
	return browser.Load(ctx, page, target, browser.NavigateOptions{
		Width:      w,
		Height:     h,
		UserAgent:  a.cfg.Browser.UserAgent,
		Timeout:    a.cfg.Browser.NavTimeout,
		IdleWindow: a.cfg.Browser.IdleWindow,
		Settle:     settle,
		Sleep:      a.sleep,
	})
}

// classify maps session errors onto the abort taxonomy.
func (a *Analyzer) classify(target string, err error) error {
	switch {
	case errors.Is(err, browser.ErrLaunch):
		return &ResourceAcquisitionError{Err: err}
	case errors.Is(err, browser.ErrNavigate):
		return &NavigationError{URL: target, Err: err}
	default:
		return fmt.Errorf("a11y: %s: %w", target, err)
	}
}
