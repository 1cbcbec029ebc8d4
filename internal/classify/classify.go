// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package classify maps a command line to the permission tier it needs.
package classify

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/marcelocantos/elevate/internal/operation"
)

// Commands that make system-level changes.
var administrativeCommands = []string{
	"crontab", "iptables", "ufw", "firewall-cmd", "sysctl",
	"hostnamectl", "timedatectl", "localectl",
}

// Commands that typically need root: escalation tools, OS and language
// package managers, service managers, filesystem and ownership tools.
var elevatedCommands = []string{
	"sudo", "doas", "su",
	"apt", "apt-get", "yum", "dnf", "pacman",
	"systemctl", "service",
	"mount", "umount", "fdisk", "mkfs",
	"useradd", "usermod", "userdel",
	"chmod", "chown", "visudo",
	"pip", "conda", "npm", "yarn",
}

// PrivilegedRoots are filesystem prefixes whose appearance anywhere in argv
// makes a command Elevated.
var PrivilegedRoots = []string{"/etc", "/usr/local", "/opt", "/var", "/root"}

// Classifier is a deterministic argv → Tier function. A Classifier is safe
// for concurrent use once constructed.
type Classifier struct {
	admin    map[string]bool
	elevated map[string]bool
	globs    []glob.Glob
	script   *Script
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithAdministrative adds command names to the administrative set.
func WithAdministrative(names ...string) Option {
	return func(c *Classifier) error {
		for _, n := range names {
			c.admin[strings.ToLower(n)] = true
		}
		return nil
	}
}

// WithElevated adds command names to the elevated set.
func WithElevated(names ...string) Option {
	return func(c *Classifier) error {
		for _, n := range names {
			c.elevated[strings.ToLower(n)] = true
		}
		return nil
	}
}

// WithPrivilegedPaths marks arguments matching any of the glob patterns as
// privileged paths. Patterns use '/' as the separator, so "*" stays within
// one path element and "**" crosses elements.
func WithPrivilegedPaths(patterns ...string) Option {
	return func(c *Classifier) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return fmt.Errorf("privileged path %q: %w", p, err)
			}
			c.globs = append(c.globs, g)
		}
		return nil
	}
}

// WithScript loads a Starlark rule script. See Script.
func WithScript(path string) Option {
	return func(c *Classifier) error {
		s, err := LoadScript(path)
		if err != nil {
			return err
		}
		c.script = s
		return nil
	}
}

// WithLogger sets the logger used to report script failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) error {
		c.logger = logger
		return nil
	}
}

// New builds a Classifier with the built-in command sets plus any options.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{
		admin:    make(map[string]bool, len(administrativeCommands)),
		elevated: make(map[string]bool, len(elevatedCommands)),
		logger:   slog.Default(),
	}
	for _, n := range administrativeCommands {
		c.admin[n] = true
	}
	for _, n := range elevatedCommands {
		c.elevated[n] = true
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Default returns a Classifier with only the built-in rules.
func Default() *Classifier {
	c, _ := New()
	return c
}

// Classify returns the tier argv needs. The empty argv is Basic.
func (c *Classifier) Classify(argv []string) operation.Tier {
	tier := c.builtin(argv)
	if c.script == nil || tier == operation.Administrative {
		return tier
	}
	scripted, ok, err := c.script.Eval(argv)
	if err != nil {
		c.logger.Warn("classifier script failed", "script", c.script.Path(), "err", err)
		return tier
	}
	if !ok {
		return tier
	}
	// Scripts may only raise the tier.
	return operation.Max(tier, scripted)
}

func (c *Classifier) builtin(argv []string) operation.Tier {
	if len(argv) == 0 {
		return operation.Basic
	}
	name := strings.ToLower(argv[0])
	base := filepath.Base(name)
	switch {
	case c.admin[name] || c.admin[base]:
		return operation.Administrative
	case c.elevated[name] || c.elevated[base]:
		return operation.Elevated
	}
	for _, arg := range argv {
		if c.privilegedPath(arg) {
			return operation.Elevated
		}
	}
	return operation.Basic
}

func (c *Classifier) privilegedPath(arg string) bool {
	for _, root := range PrivilegedRoots {
		if strings.HasPrefix(arg, root) {
			return true
		}
	}
	for _, g := range c.globs {
		if g.Match(arg) {
			return true
		}
	}
	return false
}

// Commands lists the command names the classifier places at tier, sorted.
// Basic has no list: it is whatever matches nothing else.
func (c *Classifier) Commands(tier operation.Tier) []string {
	switch tier {
	case operation.Administrative:
		return slices.Sorted(maps.Keys(c.admin))
	case operation.Elevated:
		return slices.Sorted(maps.Keys(c.elevated))
	default:
		return nil
	}
}
