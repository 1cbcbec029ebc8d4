// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package operation defines the values exchanged between the escalation
// engine and its callers: what to run, at which permission tier, and how it
// ended.
package operation

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultTimeout bounds an operation when the caller sets none.
const DefaultTimeout = 300 * time.Second

// Operation describes a command to run on behalf of a caller. Values are
// treated as immutable once handed to the engine.
type Operation struct {
	Argv        []string // argv[0] is the executable
	Description string
	Tier        Tier

	// AutoClassify asks the engine to derive Tier from Argv instead of
	// trusting the caller-supplied value.
	AutoClassify bool

	RequiresApproval bool
	Timeout          time.Duration
	Dir              string            // working directory; empty = inherit
	Env              map[string]string // overlay on the current environment
}

// New returns an Operation with the usual defaults: approval required and a
// five-minute timeout.
func New(description string, tier Tier, argv ...string) Operation {
	return Operation{
		Argv:             argv,
		Description:      description,
		Tier:             tier,
		RequiresApproval: true,
		Timeout:          DefaultTimeout,
	}
}

// CommandLine returns argv joined by spaces, as recorded in the audit log.
func (o Operation) CommandLine() string {
	return strings.Join(o.Argv, " ")
}

// Clone returns a deep copy so the caller's slices and maps are never
// shared with the engine.
func (o Operation) Clone() Operation {
	o.Argv = slices.Clone(o.Argv)
	if o.Env != nil {
		o.Env = maps.Clone(o.Env)
	}
	return o
}

// Result is what the engine returns for every operation.
type Result struct {
	Outcome  Outcome
	Message  string
	ExitCode int // -1 when the process never started or was killed
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Outcome == Success
}
