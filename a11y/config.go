package a11y

import (
	"log/slog"

	"github.com/hazyhaar/aodacheck/a11y/internal/browser"
	"github.com/hazyhaar/aodacheck/a11y/internal/config"
)

// Config is the aodacheck configuration.
type Config = config.Config

// Browser boundary, re-exported so callers can inject launchers and fakes.
type (
	Launcher = browser.Launcher
	Browser  = browser.Browser
	Page     = browser.Page
)

// LoadConfig reads an optional YAML file and applies environment overrides.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config { return config.Default() }

// NewRodLauncher builds the production Chrome launcher from cfg.
func NewRodLauncher(cfg *Config, logger *slog.Logger) Launcher {
	return browser.NewRodLauncher(browser.Config{
		Remote:           cfg.Browser.Remote,
		Bin:              cfg.Browser.Bin,
		Flags:            cfg.Browser.Flags,
		Stealth:          cfg.Browser.Stealth,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           logger,
	})
}
