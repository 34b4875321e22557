package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazyhaar/aodacheck/report"
)

// NavigateOptions controls how Load drives a page.
type NavigateOptions struct {
	Width, Height int
	UserAgent     string
	// Timeout bounds navigation, load and network idle. Default: 30s.
	Timeout time.Duration
	// IdleWindow is how long the network must stay quiet. Default: 500ms.
	IdleWindow time.Duration
	// Settle is an extra wait after idle, for late client rendering.
	Settle time.Duration
	// Sleep replaces the settle wait in tests.
	Sleep func(context.Context, time.Duration) error
}

func (o *NavigateOptions) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.IdleWindow <= 0 {
		o.IdleWindow = 500 * time.Millisecond
	}
	if o.Sleep == nil {
		o.Sleep = Sleep
	}
}

const pageInfoJS = `() => JSON.stringify({
	title: document.title,
	lang: document.documentElement.lang || 'not-specified',
	url: location.href,
	hasH1: document.querySelector('h1') !== null,
	imageCount: document.querySelectorAll('img').length,
	linkCount: document.querySelectorAll('a').length,
	formCount: document.querySelectorAll('form').length
})`

// Load sets viewport and user agent, navigates to url under the timeout,
// waits for the network to settle and extracts PageInfo. Every failure
// is wrapped with ErrNavigate.
func Load(ctx context.Context, page Page, url string, opts NavigateOptions) (report.PageInfo, error) {
	opts.defaults()
	var info report.PageInfo

	if opts.Width > 0 && opts.Height > 0 {
		if err := page.SetViewport(ctx, opts.Width, opts.Height); err != nil {
			return info, fmt.Errorf("%w: viewport: %w", ErrNavigate, err)
		}
	}
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(ctx, opts.UserAgent); err != nil {
			return info, fmt.Errorf("%w: user agent: %w", ErrNavigate, err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if err := page.Navigate(navCtx, url, opts.IdleWindow); err != nil {
		return info, fmt.Errorf("%w: %s: %w", ErrNavigate, url, err)
	}
	if err := opts.Sleep(ctx, opts.Settle); err != nil {
		return info, fmt.Errorf("%w: settle: %w", ErrNavigate, err)
	}

	raw, err := page.Eval(ctx, pageInfoJS)
	if err != nil {
		return info, fmt.Errorf("%w: page info: %w", ErrNavigate, err)
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return info, fmt.Errorf("%w: decode page info: %w", ErrNavigate, err)
	}
	if info.Lang == "" {
		info.Lang = report.NotSpecified
	}
	return info, nil
}

const contentJS = `() => {
	const root = document.querySelector('main') || document.querySelector('[role=main]') || document.body;
	return root ? root.outerHTML : '';
}`

// Content returns the outer HTML of the page's main region, or of the body
// when the page declares no main landmark.
func Content(ctx context.Context, page Page) (string, error) {
	html, err := page.Eval(ctx, contentJS)
	if err != nil {
		return "", fmt.Errorf("browser: content: %w", err)
	}
	return html, nil
}
