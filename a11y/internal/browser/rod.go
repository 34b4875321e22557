package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultFlags are the Chrome switches for containerised headless runs.
var DefaultFlags = []string{
	"no-sandbox",
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-accelerated-2d-canvas",
	"no-first-run",
	"no-zygote",
	"single-process",
	"disable-gpu",
	"disable-web-security",
	"disable-features=VizDisplayCompositor",
}

// Config configures the rod launcher.
type Config struct {
	// Remote is the DevTools WebSocket URL of an external Chrome. Each
	// session then gets its own incognito context instead of a process.
	Remote string

	// Bin overrides the Chrome binary. Empty lets rod locate or download one.
	Bin string

	// Flags are appended to DefaultFlags. "name=value" sets a value.
	Flags []string

	// Stealth creates pages through go-rod/stealth.
	Stealth bool

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// RodLauncher launches Chrome through go-rod.
type RodLauncher struct {
	cfg Config
}

// NewRodLauncher returns a Launcher backed by go-rod.
func NewRodLauncher(cfg Config) *RodLauncher {
	cfg.defaults()
	return &RodLauncher{cfg: cfg}
}

// Launch starts a local Chrome, or opens an incognito context on the
// remote one.
func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	log := l.cfg.Logger

	if l.cfg.Remote != "" {
		b := rod.New().ControlURL(l.cfg.Remote)
		if err := b.Connect(); err != nil {
			return nil, fmt.Errorf("browser: connect %s: %w", l.cfg.Remote, err)
		}
		inc, err := b.Incognito()
		if err != nil {
			return nil, fmt.Errorf("browser: incognito: %w", err)
		}
		log.Debug("browser: remote context opened", "url", l.cfg.Remote)
		return &rodBrowser{b: inc, cfg: &l.cfg}, nil
	}

	lch := launcher.New().Headless(true)
	if l.cfg.Bin != "" {
		lch = lch.Bin(l.cfg.Bin)
	}
	for _, f := range append(append([]string{}, DefaultFlags...), l.cfg.Flags...) {
		name, val, ok := strings.Cut(strings.TrimPrefix(f, "--"), "=")
		if ok {
			lch = lch.Set(flags.Flag(name), val)
		} else {
			lch = lch.Set(flags.Flag(name))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := lch.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		lch.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}
	log.Debug("browser: launched local chrome", "url", u)
	return &rodBrowser{b: b, lch: lch, cfg: &l.cfg}, nil
}

type rodBrowser struct {
	b   *rod.Browser
	lch *launcher.Launcher
	cfg *Config
}

func (rb *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if rb.cfg.Stealth {
		page, err = stealth.Page(rb.b)
	} else {
		page, err = rb.b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}

	rp := &rodPage{page: page}
	if len(rb.cfg.ResourceBlocking) > 0 {
		rp.router = newBlocklist(rb.cfg.ResourceBlocking).hijack(page)
	}
	return rp, nil
}

// Close disposes the incognito context in remote mode; otherwise it closes
// Chrome and removes its profile directory.
func (rb *rodBrowser) Close() error {
	err := rb.b.Close()
	if rb.lch != nil {
		rb.lch.Cleanup()
	}
	return err
}

type rodPage struct {
	page   *rod.Page
	router *rod.HijackRouter
}

func (p *rodPage) SetViewport(ctx context.Context, width, height int) error {
	return p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

func (p *rodPage) SetUserAgent(ctx context.Context, ua string) error {
	return p.page.Context(ctx).SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua})
}

func (p *rodPage) Navigate(ctx context.Context, url string, idle time.Duration) error {
	pg := p.page.Context(ctx)
	wait := pg.WaitRequestIdle(idle, nil, nil, nil)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	if err := pg.WaitLoad(); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) Eval(ctx context.Context, js string, args ...any) (string, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *rodPage) AddScript(ctx context.Context, url, content string) error {
	return p.page.Context(ctx).AddScriptTag(url, content)
}

func (p *rodPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (p *rodPage) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
	}
	return p.page.Close()
}
