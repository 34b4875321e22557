package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/aodacheck/a11y/internal/browser"
	"github.com/hazyhaar/aodacheck/report"
)

// ErrUnknownProfile is recorded for ids absent from the catalog.
var ErrUnknownProfile = errors.New("unknown vision type")

// CaptureOptions controls a capture batch.
type CaptureOptions struct {
	// Settle is the wait between injecting a filter and the screenshot.
	Settle   time.Duration
	FullPage bool
	Now      func() time.Time
	Sleep    func(context.Context, time.Duration) error
	Logger   *slog.Logger
}

func (o *CaptureOptions) defaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = browser.Sleep
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

const styleAttr = "data-aodacheck-sim"

const resetJS = `(attr) => {
	document.querySelectorAll('style[' + attr + ']').forEach(e => e.remove());
	return 'ok';
}`

const injectJS = `(attr, css) => {
	const s = document.createElement('style');
	s.setAttribute(attr, '');
	s.textContent = css;
	(document.head || document.documentElement).appendChild(s);
	return 'ok';
}`

// Capture renders the page through each requested profile in order. It
// always returns exactly one result per id: failures are recorded on the
// entry and the batch moves on.
func Capture(ctx context.Context, page browser.Page, ids []string, opts CaptureOptions) []report.VisionSimulationResult {
	opts.defaults()
	out := make([]report.VisionSimulationResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, captureOne(ctx, page, id, opts))
	}
	if _, err := page.Eval(ctx, resetJS, styleAttr); err != nil {
		opts.Logger.Debug("vision: final reset failed", "error", err)
	}
	return out
}

func captureOne(ctx context.Context, page browser.Page, id string, opts CaptureOptions) report.VisionSimulationResult {
	res := report.VisionSimulationResult{Type: id, Name: id}
	p, ok := Lookup(id)
	if ok {
		res.Name = p.Name
		res.Description = p.Description
		res.Explanation = p.Explanation
	}

	shot, err := func() ([]byte, error) {
		if !ok {
			return nil, ErrUnknownProfile
		}
		if _, err := page.Eval(ctx, resetJS, styleAttr); err != nil {
			return nil, fmt.Errorf("reset: %w", err)
		}
		if css := p.CSS(); css != "" {
			if _, err := page.Eval(ctx, injectJS, styleAttr, css); err != nil {
				return nil, fmt.Errorf("inject: %w", err)
			}
		}
		if err := opts.Sleep(ctx, opts.Settle); err != nil {
			return nil, err
		}
		return page.Screenshot(ctx, opts.FullPage)
	}()

	res.Timestamp = report.Timestamp(opts.Now())
	if err != nil {
		opts.Logger.Warn("vision: capture failed", "profile", id, "error", err)
		res.Status = report.StatusFailed
		res.Error = "Failed to capture screenshot: " + err.Error()
		return res
	}
	res.Status = report.StatusCaptured
	res.Screenshot = base64.StdEncoding.EncodeToString(shot)
	return res
}

// ReportViews are the baseline views embedded in every analysis report.
var ReportViews = []string{Original, ColorBlind, BlurryVision}

// CaptureReportViews captures the baseline views as full-page screenshots.
// A failed view stays empty and is listed in Screenshots.Errors.
func CaptureReportViews(ctx context.Context, page browser.Page, opts CaptureOptions) report.Screenshots {
	opts.FullPage = true
	var s report.Screenshots
	for _, r := range Capture(ctx, page, ReportViews, opts) {
		if !r.Captured() {
			if s.Errors == nil {
				s.Errors = make(map[string]string)
			}
			s.Errors[r.Type] = r.Error
			continue
		}
		switch r.Type {
		case Original:
			s.Original = r.Screenshot
		case ColorBlind:
			s.ColorBlind = r.Screenshot
		case BlurryVision:
			s.BlurryVision = r.Screenshot
		}
	}
	return s
}
