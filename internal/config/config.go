// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/elevate/internal/audit"
	"github.com/marcelocantos/elevate/internal/classify"
	"github.com/marcelocantos/elevate/internal/consent"
	"github.com/marcelocantos/elevate/internal/executor"
	"github.com/marcelocantos/elevate/internal/operation"
)

// Config holds the global elevate configuration.
type Config struct {
	Audit      AuditConfig      `yaml:"audit"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Consent    ConsentConfig    `yaml:"consent"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Log        LogConfig        `yaml:"log"`
}

// AuditConfig controls audit log settings.
type AuditConfig struct {
	Path         string `yaml:"path"`
	SummaryLimit int    `yaml:"summary_limit"`
}

// ExecutionConfig controls how commands are spawned.
type ExecutionConfig struct {
	ElevationPrefix []string `yaml:"elevation_prefix"`
	DefaultTimeout  string   `yaml:"default_timeout"`
	// MaxOutputBytes caps captured stdout and stderr each. Zero means no cap.
	MaxOutputBytes int `yaml:"max_output_bytes"`
}

// DefaultTimeoutDuration parses the configured timeout or returns the default.
func (e *ExecutionConfig) DefaultTimeoutDuration() time.Duration {
	if e.DefaultTimeout != "" {
		dur, err := time.ParseDuration(e.DefaultTimeout)
		if err == nil && dur > 0 {
			return dur
		}
	}
	return operation.DefaultTimeout
}

// Runner builds the process executor described by this section.
func (e *ExecutionConfig) Runner() *executor.Runner {
	return &executor.Runner{
		Prefix:    e.ElevationPrefix,
		MaxOutput: e.MaxOutputBytes,
	}
}

// ConsentConfig controls how approval is obtained.
type ConsentConfig struct {
	// Mode is interactive, allow, or deny.
	Mode string `yaml:"mode"`
	// NonInteractive is the policy used when there is no terminal to ask,
	// including MCP mode. allow or deny.
	NonInteractive string `yaml:"non_interactive"`
}

// ClassifierConfig extends the built-in classification rules.
type ClassifierConfig struct {
	Administrative  []string `yaml:"administrative"`
	Elevated        []string `yaml:"elevated"`
	PrivilegedPaths []string `yaml:"privileged_paths"`
	Script          string   `yaml:"script"`
}

// Options converts the section into classifier options.
func (c *ClassifierConfig) Options() []classify.Option {
	var opts []classify.Option
	if len(c.Administrative) > 0 {
		opts = append(opts, classify.WithAdministrative(c.Administrative...))
	}
	if len(c.Elevated) > 0 {
		opts = append(opts, classify.WithElevated(c.Elevated...))
	}
	if len(c.PrivilegedPaths) > 0 {
		opts = append(opts, classify.WithPrivilegedPaths(c.PrivilegedPaths...))
	}
	if c.Script != "" {
		opts = append(opts, classify.WithScript(c.Script))
	}
	return opts
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level onto slog. Unknown levels are info.
func (l *LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Audit: AuditConfig{
			Path:         filepath.Join(home, ".local", "share", "elevate", "audit.jsonl"),
			SummaryLimit: audit.DefaultSummaryLimit,
		},
		Execution: ExecutionConfig{
			ElevationPrefix: append([]string(nil), executor.DefaultPrefix...),
			DefaultTimeout:  "5m",
		},
		Consent: ConsentConfig{
			Mode:           string(consent.ModeInteractive),
			NonInteractive: string(consent.ModeDeny),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the config from the standard location (~/.config/elevate/config.yaml).
// If the file doesn't exist, returns the default config.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config from the given path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.Audit.Path = expandHome(cfg.Audit.Path)
	cfg.Classifier.Script = expandHome(cfg.Classifier.Script)
	return cfg, nil
}

// Validate checks values that YAML decoding cannot.
func (c *Config) Validate() error {
	if len(c.Execution.ElevationPrefix) == 0 {
		return fmt.Errorf("execution.elevation_prefix must not be empty")
	}
	if c.Execution.DefaultTimeout != "" {
		if _, err := time.ParseDuration(c.Execution.DefaultTimeout); err != nil {
			return fmt.Errorf("execution.default_timeout: %w", err)
		}
	}
	if c.Execution.MaxOutputBytes < 0 {
		return fmt.Errorf("execution.max_output_bytes must not be negative")
	}
	if _, err := consent.ParseMode(c.Consent.Mode); err != nil {
		return fmt.Errorf("consent.mode: %w", err)
	}
	m, err := consent.ParseMode(c.Consent.NonInteractive)
	if err != nil {
		return fmt.Errorf("consent.non_interactive: %w", err)
	}
	if _, ok := consent.PolicyFor(m); !ok {
		return fmt.Errorf("consent.non_interactive must be allow or deny")
	}
	return nil
}

// NonInteractivePolicy returns the policy to use when nobody can be asked.
func (c *Config) NonInteractivePolicy() consent.Policy {
	m, err := consent.ParseMode(c.Consent.NonInteractive)
	if err != nil {
		return consent.AlwaysDeny
	}
	p, ok := consent.PolicyFor(m)
	if !ok {
		return consent.AlwaysDeny
	}
	return p
}

// ConsentMode returns the configured mode, interactive when unset.
func (c *Config) ConsentMode() consent.Mode {
	m, err := consent.ParseMode(c.Consent.Mode)
	if err != nil {
		return consent.ModeInteractive
	}
	return m
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "elevate", "config.yaml")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[1:])
	}
	return p
}
