// Package config handles aodacheck configuration from a YAML file and the
// process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level aodacheck configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Browser    BrowserConfig    `yaml:"browser"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Simulation SimulationConfig `yaml:"simulation"`
	Rules      RulesConfig      `yaml:"rules"`
	AI         AIConfig         `yaml:"ai"`
	DB         DBConfig         `yaml:"db"`
	OTel       OTelConfig       `yaml:"otel"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig controls the HTTP boundary.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	Env          string        `yaml:"env"` // development | production
	BodyLimit    int64         `yaml:"body_limit"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Production reports whether internal error detail must be suppressed.
func (s ServerConfig) Production() bool { return s.Env == "production" }

// BrowserConfig controls Chrome launch and navigation.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Bin              string        `yaml:"bin"`
	Flags            []string      `yaml:"flags"`
	Stealth          bool          `yaml:"stealth"`
	UserAgent        string        `yaml:"user_agent"`
	NavTimeout       time.Duration `yaml:"nav_timeout"`
	IdleWindow       time.Duration `yaml:"idle_window"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	// BlockPrivate rejects targets resolving to private or loopback addresses.
	BlockPrivate bool `yaml:"block_private"`
}

// AnalysisConfig controls the full accessibility analysis.
type AnalysisConfig struct {
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	MaxEnriched    int           `yaml:"max_enriched"`
	Settle         time.Duration `yaml:"settle"`
	ViewSettle     time.Duration `yaml:"view_settle"`
}

// SimulationConfig controls vision simulation runs.
type SimulationConfig struct {
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	LoadSettle     time.Duration `yaml:"load_settle"`
	FilterSettle   time.Duration `yaml:"filter_settle"`
}

// RulesConfig locates the axe-core bundle and selects rule tags.
type RulesConfig struct {
	ScriptURL  string   `yaml:"script_url"`
	ScriptPath string   `yaml:"script_path"`
	Tags       []string `yaml:"tags"`
}

// AIConfig selects and tunes the explanation provider.
type AIConfig struct {
	Provider         string        `yaml:"provider"` // gemini | anthropic | openai | offline
	Model            string        `yaml:"model"`
	APIKey           string        `yaml:"api_key"`
	MaxTokens        int           `yaml:"max_tokens"`
	CallTimeout      time.Duration `yaml:"call_timeout"`
	Retries          int           `yaml:"retries"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerReset     time.Duration `yaml:"breaker_reset"`
}

// DBConfig locates the SQLite database holding rate-limit rules.
type DBConfig struct {
	Path string `yaml:"path"`
}

// OTelConfig enables OTLP export when Endpoint is set.
type OTelConfig struct {
	Endpoint    string            `yaml:"endpoint"`
	Headers     map[string]string `yaml:"headers"`
	ServiceName string            `yaml:"service_name"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// DefaultUserAgent is the desktop Chrome UA presented to analysed pages.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultAxeURL is the axe-core bundle injected when no local path is set.
const DefaultAxeURL = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.8.2/axe.min.js"

// defaultRetries applies unless the file sets ai.retries, including 0.
const defaultRetries = 1

// Default returns a configuration with every default applied.
func Default() *Config {
	c := Config{AI: AIConfig{Retries: defaultRetries}}
	c.applyDefaults()
	return &c
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{AI: AIConfig{Retries: defaultRetries}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Load reads path when non-empty, otherwise starts from defaults, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is
// os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: PORT %q: %w", v, err)
		}
		c.Server.Addr = ":" + v
	}
	str("APP_ENV", &c.Server.Env)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("AI_PROVIDER", &c.AI.Provider)
	str("AI_MODEL", &c.AI.Model)
	str("BROWSER_REMOTE_URL", &c.Browser.Remote)
	str("BROWSER_BIN", &c.Browser.Bin)
	str("AXE_SCRIPT_URL", &c.Rules.ScriptURL)
	str("AXE_SCRIPT_PATH", &c.Rules.ScriptPath)
	str("DB_PATH", &c.DB.Path)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.OTel.Endpoint)
	str("OTEL_SERVICE_NAME", &c.OTel.ServiceName)

	if v, ok := lookup("BLOCK_PRIVATE_TARGETS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: BLOCK_PRIVATE_TARGETS %q: %w", v, err)
		}
		c.Browser.BlockPrivate = b
	}
	if v, ok := lookup("OTEL_EXPORTER_OTLP_HEADERS"); ok && v != "" {
		c.OTel.Headers = ParseHeaders(v)
	}

	if c.AI.APIKey == "" {
		key := map[string]string{
			"gemini":    "GEMINI_API_KEY",
			"anthropic": "ANTHROPIC_API_KEY",
			"openai":    "OPENAI_API_KEY",
		}[c.AI.Provider]
		if key != "" {
			str(key, &c.AI.APIKey)
		}
	}
	return nil
}

// ParseHeaders parses the OTLP "k1=v1,k2=v2" header syntax.
func ParseHeaders(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.BodyLimit <= 0 {
		c.Server.BodyLimit = 50 << 20
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}

	if c.Browser.UserAgent == "" {
		c.Browser.UserAgent = DefaultUserAgent
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Browser.IdleWindow <= 0 {
		c.Browser.IdleWindow = 500 * time.Millisecond
	}

	if c.Analysis.ViewportWidth <= 0 {
		c.Analysis.ViewportWidth = 1920
	}
	if c.Analysis.ViewportHeight <= 0 {
		c.Analysis.ViewportHeight = 1080
	}
	if c.Analysis.MaxEnriched <= 0 {
		c.Analysis.MaxEnriched = 10
	}
	if c.Analysis.ViewSettle <= 0 {
		c.Analysis.ViewSettle = 500 * time.Millisecond
	}

	if c.Simulation.ViewportWidth <= 0 {
		c.Simulation.ViewportWidth = 1024
	}
	if c.Simulation.ViewportHeight <= 0 {
		c.Simulation.ViewportHeight = 768
	}
	if c.Simulation.LoadSettle <= 0 {
		c.Simulation.LoadSettle = 2 * time.Second
	}
	if c.Simulation.FilterSettle <= 0 {
		c.Simulation.FilterSettle = time.Second
	}

	if c.Rules.ScriptURL == "" && c.Rules.ScriptPath == "" {
		c.Rules.ScriptURL = DefaultAxeURL
	}
	if len(c.Rules.Tags) == 0 {
		c.Rules.Tags = []string{"wcag2a", "wcag2aa", "wcag21aa"}
	}

	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 1024
	}
	if c.AI.CallTimeout <= 0 {
		c.AI.CallTimeout = 20 * time.Second
	}
	if c.AI.Retries < 0 {
		c.AI.Retries = 0
	}
	if c.AI.BreakerThreshold <= 0 {
		c.AI.BreakerThreshold = 5
	}
	if c.AI.BreakerReset <= 0 {
		c.AI.BreakerReset = 30 * time.Second
	}

	if c.DB.Path == "" {
		c.DB.Path = "aodacheck.db"
	}
	if c.OTel.ServiceName == "" {
		c.OTel.ServiceName = "aodacheck"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}
