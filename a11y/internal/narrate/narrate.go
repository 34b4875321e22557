// Package narrate produces a screen-reader style narration of a page's main
// content. The HTML is reduced to markdown first so the AI sees structure
// (headings, links, lists) without markup noise.
package narrate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/hazyhaar/aodacheck/explain"
	"github.com/hazyhaar/aodacheck/report"
)

// Config configures a Narrator service.
type Config struct {
	Narrator explain.Narrator
	// Timeout bounds the AI call. Default: 30s.
	Timeout time.Duration
	Now     func() time.Time
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.Narrator == nil {
		c.Narrator = explain.Offline{}
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Service narrates page content.
type Service struct {
	cfg  Config
	conv *converter.Converter
}

// New creates a Service.
func New(cfg Config) *Service {
	cfg.defaults()
	return &Service{
		cfg: cfg,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Markdown converts HTML to markdown. Relative links resolve against pageURL.
func (s *Service) Markdown(html, pageURL string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	md, err := s.conv.ConvertString(html, converter.WithDomain(pageURL))
	if err != nil {
		s.cfg.Logger.Debug("narrate: markdown conversion failed", "url", pageURL, "error", err)
		return ""
	}
	return strings.TrimSpace(md)
}

// Narrate returns the narration of html. It never fails: when the content
// is empty or the AI call fails the fallback text is returned.
func (s *Service) Narrate(ctx context.Context, pageURL, title, html string) report.Narration {
	n := report.Narration{
		URL:       pageURL,
		Title:     title,
		Narration: explain.FallbackNarration,
		Fallback:  true,
	}

	md := s.Markdown(html, pageURL)
	if md == "" {
		n.Timestamp = report.Timestamp(s.cfg.Now())
		return n
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	text, err := s.cfg.Narrator.Narrate(callCtx, title, md)
	n.Timestamp = report.Timestamp(s.cfg.Now())
	if err != nil {
		s.cfg.Logger.WarnContext(ctx, "narrate: fallback used", "url", pageURL, "error", err)
		return n
	}
	n.Narration = text
	n.Fallback = false
	return n
}
