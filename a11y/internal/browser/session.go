// Package browser owns the headless Chrome lifecycle of one analysis: launch
// (or connect to a remote instance), open exactly one page, run the work,
// and release everything on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrLaunch marks failures to acquire a browser or its page.
var ErrLaunch = errors.New("browser: acquire")

// ErrNavigate marks failures to load the target page.
var ErrNavigate = errors.New("browser: navigate")

// Page is the subset of a browser tab the analysis pipeline drives.
type Page interface {
	SetViewport(ctx context.Context, width, height int) error
	SetUserAgent(ctx context.Context, ua string) error
	// Navigate loads url and waits for the load event followed by a
	// network-idle window of the given length.
	Navigate(ctx context.Context, url string, idle time.Duration) error
	// Eval runs a JS function expression with args and returns its result
	// as a string. Promises are awaited.
	Eval(ctx context.Context, js string, args ...any) (string, error)
	// AddScript injects a script tag from url, or with inline content when
	// url is empty.
	AddScript(ctx context.Context, url, content string) error
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	Close() error
}

// Browser is one acquired browser (or incognito context).
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Launcher acquires browsers.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Session brackets work with browser acquire and release.
type Session struct {
	launcher Launcher
	logger   *slog.Logger
}

// NewSession creates a Session. A nil logger uses slog.Default().
func NewSession(l Launcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{launcher: l, logger: logger}
}

// Run launches a browser, opens one page, and invokes work with it. The
// browser is closed exactly once whether work returns, fails or panics.
// Acquisition failures are wrapped with ErrLaunch; work errors are
// returned as-is after cleanup.
func (s *Session) Run(ctx context.Context, work func(context.Context, Page) error) error {
	start := time.Now()
	b, err := s.launcher.Launch(ctx)
	if err != nil {
		return fmt.Errorf("%w: launch: %w", ErrLaunch, err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			s.logger.Warn("browser: close failed", "error", err)
		}
		s.logger.Debug("browser: session released", "elapsed", time.Since(start))
	}()

	page, err := b.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("%w: new page: %w", ErrLaunch, err)
	}
	defer page.Close()

	return work(ctx, page)
}

// RunWith is Run for work that produces a value.
func RunWith[R any](ctx context.Context, s *Session, work func(context.Context, Page) (R, error)) (R, error) {
	var out R
	err := s.Run(ctx, func(ctx context.Context, p Page) error {
		var err error
		out, err = work(ctx, p)
		return err
	})
	return out, err
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
