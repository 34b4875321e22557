// Package browsertest provides in-memory browser fakes with call counters
// and injectable failures.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hazyhaar/aodacheck/a11y/internal/browser"
)

// PNG is a minimal payload returned by Page.Screenshot by default.
var PNG = []byte("\x89PNG\r\n\x1a\nfake")

// EvalCall records one Page.Eval invocation.
type EvalCall struct {
	JS   string
	Args []any
}

// Page is a scriptable browser.Page.
type Page struct {
	mu sync.Mutex

	// NavigateFunc replaces the default navigation, which succeeds.
	NavigateFunc func(ctx context.Context, url string) error
	// EvalFunc answers Eval calls. Nil returns "".
	EvalFunc func(js string, args []any) (string, error)
	// ScreenshotFunc answers the n-th screenshot (0-based). Nil returns PNG.
	ScreenshotFunc func(n int, fullPage bool) ([]byte, error)
	// AddScriptErr fails every AddScript call.
	AddScriptErr error
	// ViewportErr fails SetViewport.
	ViewportErr error

	Viewports   [][2]int
	UserAgent   string
	Navigated   []string
	Evals       []EvalCall
	Scripts     []string
	Screenshots int
	Closed      int
	Calls       []string
}

var _ browser.Page = (*Page)(nil)

func (p *Page) record(name string) {
	p.Calls = append(p.Calls, name)
}

func (p *Page) SetViewport(_ context.Context, w, h int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("viewport")
	if p.ViewportErr != nil {
		return p.ViewportErr
	}
	p.Viewports = append(p.Viewports, [2]int{w, h})
	return nil
}

func (p *Page) SetUserAgent(_ context.Context, ua string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("useragent")
	p.UserAgent = ua
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string, _ time.Duration) error {
	p.mu.Lock()
	p.record("navigate")
	p.Navigated = append(p.Navigated, url)
	fn := p.NavigateFunc
	p.mu.Unlock()
	if fn != nil {
		return fn(ctx, url)
	}
	return ctx.Err()
}

func (p *Page) Eval(_ context.Context, js string, args ...any) (string, error) {
	p.mu.Lock()
	p.record("eval")
	p.Evals = append(p.Evals, EvalCall{JS: js, Args: args})
	fn := p.EvalFunc
	p.mu.Unlock()
	if fn != nil {
		return fn(js, args)
	}
	return "", nil
}

func (p *Page) AddScript(_ context.Context, url, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("script")
	if p.AddScriptErr != nil {
		return p.AddScriptErr
	}
	if url != "" {
		p.Scripts = append(p.Scripts, url)
	} else {
		p.Scripts = append(p.Scripts, content)
	}
	return nil
}

func (p *Page) Screenshot(_ context.Context, fullPage bool) ([]byte, error) {
	p.mu.Lock()
	p.record("screenshot")
	n := p.Screenshots
	p.Screenshots++
	fn := p.ScreenshotFunc
	p.mu.Unlock()
	if fn != nil {
		return fn(n, fullPage)
	}
	return PNG, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed++
	return nil
}

// Launcher hands out one Browser per Launch and counts acquisitions.
type Launcher struct {
	mu sync.Mutex

	// LaunchErr fails every Launch.
	LaunchErr error
	// PageErr fails NewPage.
	PageErr error
	// NewPage builds the page for each launch. Nil returns a fresh *Page.
	NewPage func() *Page

	Launches int
	Closes   int
	Pages    []*Page
}

var _ browser.Launcher = (*Launcher)(nil)

// Launch returns a fake browser or LaunchErr.
func (l *Launcher) Launch(ctx context.Context) (browser.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Launches++
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	return &fakeBrowser{l: l}, nil
}

// Balanced reports whether every launched browser has been closed once.
func (l *Launcher) Balanced() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	okLaunches := l.Launches
	if l.LaunchErr != nil {
		okLaunches = 0
	}
	return okLaunches == l.Closes
}

// String summarises the counters for test failure messages.
func (l *Launcher) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprintf("launches=%d closes=%d pages=%d", l.Launches, l.Closes, len(l.Pages))
}

type fakeBrowser struct {
	l      *Launcher
	closed bool
}

func (b *fakeBrowser) NewPage(ctx context.Context) (browser.Page, error) {
	b.l.mu.Lock()
	defer b.l.mu.Unlock()
	if b.l.PageErr != nil {
		return nil, b.l.PageErr
	}
	var p *Page
	if b.l.NewPage != nil {
		p = b.l.NewPage()
	} else {
		p = &Page{}
	}
	b.l.Pages = append(b.l.Pages, p)
	return p, nil
}

func (b *fakeBrowser) Close() error {
	b.l.mu.Lock()
	defer b.l.mu.Unlock()
	if b.closed {
		return fmt.Errorf("browsertest: browser closed twice")
	}
	b.closed = true
	b.l.Closes++
	return nil
}
