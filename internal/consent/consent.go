// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package consent obtains the user's approval before a privileged operation
// runs.
package consent

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcelocantos/elevate/internal/operation"
)

// ErrNoAnswer is returned when the input ends before a valid answer.
var ErrNoAnswer = errors.New("consent: input closed without an answer")

// Gate decides whether an operation may proceed. Every Gate approves
// operations whose RequiresApproval is false without doing any I/O.
type Gate interface {
	Approve(ctx context.Context, op operation.Operation) (bool, error)
}

// Func adapts a function to a Gate. The function is only consulted for
// operations that require approval.
type Func func(ctx context.Context, op operation.Operation) (bool, error)

func (f Func) Approve(ctx context.Context, op operation.Operation) (bool, error) {
	if !op.RequiresApproval {
		return true, nil
	}
	return f(ctx, op)
}

// Policy is a fixed, non-interactive answer for automated deployments.
type Policy bool

const (
	AlwaysAllow Policy = true
	AlwaysDeny  Policy = false
)

func (p Policy) Approve(_ context.Context, op operation.Operation) (bool, error) {
	if !op.RequiresApproval {
		return true, nil
	}
	return bool(p), nil
}

func (p Policy) String() string {
	if p {
		return "allow"
	}
	return "deny"
}

// Mode selects how consent is obtained.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeAllow       Mode = "allow"
	ModeDeny        Mode = "deny"
)

// ParseMode validates a configured consent mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeInteractive, ModeAllow, ModeDeny:
		return m, nil
	default:
		return "", fmt.Errorf("unknown consent mode %q (want interactive, allow, or deny)", s)
	}
}

// PolicyFor returns the fixed Policy of a non-interactive mode.
func PolicyFor(m Mode) (Policy, bool) {
	switch m {
	case ModeAllow:
		return AlwaysAllow, true
	case ModeDeny:
		return AlwaysDeny, true
	default:
		return false, false
	}
}
