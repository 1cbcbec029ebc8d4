package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/marcelocantos/elevate/internal/classify"
	"github.com/marcelocantos/elevate/internal/consent"
	"github.com/marcelocantos/elevate/internal/operation"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(cfg.Execution.ElevationPrefix, []string{"sudo"}) {
		t.Errorf("prefix = %v", cfg.Execution.ElevationPrefix)
	}
	if cfg.Execution.DefaultTimeoutDuration() != 5*time.Minute {
		t.Errorf("timeout = %v", cfg.Execution.DefaultTimeoutDuration())
	}
	if cfg.Audit.SummaryLimit != 50 || !strings.HasSuffix(cfg.Audit.Path, filepath.Join("elevate", "audit.jsonl")) {
		t.Errorf("audit = %+v", cfg.Audit)
	}
	if cfg.ConsentMode() != consent.ModeInteractive || cfg.NonInteractivePolicy() != consent.AlwaysDeny {
		t.Errorf("consent = %+v", cfg.Consent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestOverrides(t *testing.T) {
	path := writeConfig(t, `
audit:
  path: ~/logs/audit.jsonl
execution:
  elevation_prefix: [doas]
  default_timeout: 90s
  max_output_bytes: 4096
consent:
  mode: allow
  non_interactive: allow
classifier:
  administrative: [zpool]
  privileged_paths: ["/srv/**"]
log:
  level: debug
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if cfg.Audit.Path != filepath.Join(home, "logs", "audit.jsonl") {
		t.Errorf("path = %q", cfg.Audit.Path)
	}
	// Unset keys keep their defaults.
	if cfg.Audit.SummaryLimit != 50 {
		t.Errorf("summary limit = %d", cfg.Audit.SummaryLimit)
	}
	r := cfg.Execution.Runner()
	if !slices.Equal(r.Prefix, []string{"doas"}) || r.MaxOutput != 4096 {
		t.Errorf("runner = %+v", r)
	}
	if cfg.Execution.DefaultTimeoutDuration() != 90*time.Second {
		t.Errorf("timeout = %v", cfg.Execution.DefaultTimeoutDuration())
	}
	if cfg.ConsentMode() != consent.ModeAllow || cfg.NonInteractivePolicy() != consent.AlwaysAllow {
		t.Errorf("consent = %+v", cfg.Consent)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.Log.SlogLevel())
	}

	c, err := classify.New(cfg.Classifier.Options()...)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Classify([]string{"zpool", "scrub", "tank"}); got != operation.Administrative {
		t.Errorf("zpool = %s", got)
	}
	if got := c.Classify([]string{"touch", "/srv/www/index.html"}); got != operation.Elevated {
		t.Errorf("/srv path = %s", got)
	}
}

func TestInvalidConfig(t *testing.T) {
	for _, body := range []string{
		"execution: {elevation_prefix: []}",
		"execution: {default_timeout: soon}",
		"execution: {max_output_bytes: -1}",
		"consent: {mode: maybe}",
		"consent: {non_interactive: interactive}",
		"audit: [1, 2]",
	} {
		if _, err := LoadFrom(writeConfig(t, body)); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}

func TestUnknownLogLevel(t *testing.T) {
	l := LogConfig{Level: "chatty"}
	if l.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v", l.SlogLevel())
	}
}
