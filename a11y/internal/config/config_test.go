package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Analysis.ViewportWidth != 1920 || c.Analysis.ViewportHeight != 1080 {
		t.Errorf("analysis viewport = %dx%d", c.Analysis.ViewportWidth, c.Analysis.ViewportHeight)
	}
	if c.Simulation.ViewportWidth != 1024 || c.Simulation.ViewportHeight != 768 {
		t.Errorf("simulation viewport = %dx%d", c.Simulation.ViewportWidth, c.Simulation.ViewportHeight)
	}
	if c.Browser.NavTimeout != 30*time.Second {
		t.Errorf("nav timeout = %s", c.Browser.NavTimeout)
	}
	if c.Analysis.MaxEnriched != 10 {
		t.Errorf("max enriched = %d", c.Analysis.MaxEnriched)
	}
	if diff := cmp.Diff([]string{"wcag2a", "wcag2aa", "wcag21aa"}, c.Rules.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
	if c.Server.BodyLimit != 50<<20 {
		t.Errorf("body limit = %d", c.Server.BodyLimit)
	}
	if c.Rules.ScriptURL != DefaultAxeURL {
		t.Errorf("script url = %q", c.Rules.ScriptURL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aodacheck.yaml")
	data := []byte(`
server:
  addr: ":9000"
  env: production
browser:
  remote: ws://chrome:9222
  nav_timeout: 10s
rules:
  script_path: /opt/axe.min.js
ai:
  provider: anthropic
  model: claude-sonnet-4-5
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Server.Addr != ":9000" || !c.Server.Production() {
		t.Errorf("server = %+v", c.Server)
	}
	if c.Browser.NavTimeout != 10*time.Second {
		t.Errorf("nav timeout = %s", c.Browser.NavTimeout)
	}
	if c.Rules.ScriptURL != "" {
		t.Errorf("script url should stay empty when a path is set, got %q", c.Rules.ScriptURL)
	}
	if c.Simulation.FilterSettle != time.Second {
		t.Errorf("defaults not applied: filter settle = %s", c.Simulation.FilterSettle)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                       "8080",
		"APP_ENV":                    "production",
		"AI_PROVIDER":                "openai",
		"OPENAI_API_KEY":             "sk-test",
		"GEMINI_API_KEY":             "ignored",
		"OTEL_EXPORTER_OTLP_HEADERS": "x-api-key=abc, x-team = a11y",
		"BLOCK_PRIVATE_TARGETS":      "true",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	c := Default()
	if err := c.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("addr = %q", c.Server.Addr)
	}
	if c.AI.Provider != "openai" || c.AI.APIKey != "sk-test" {
		t.Errorf("ai = %+v", c.AI)
	}
	if !c.Browser.BlockPrivate {
		t.Error("block_private not set")
	}
	want := map[string]string{"x-api-key": "abc", "x-team": "a11y"}
	if diff := cmp.Diff(want, c.OTel.Headers); diff != "" {
		t.Errorf("headers (-want +got):\n%s", diff)
	}
}

func TestApplyEnv_BadPort(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(func(k string) (string, bool) {
		if k == "PORT" {
			return "eighty", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}
