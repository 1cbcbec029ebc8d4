// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package escalate

import (
	"fmt"
	"time"

	"github.com/marcelocantos/elevate/internal/audit"
	"github.com/marcelocantos/elevate/internal/operation"
)

// State is a step of an operation's life.
type State int

const (
	Created State = iota
	Classified
	GatePending
	GateSkipped
	Executing
	Completed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Classified:
		return "classified"
	case GatePending:
		return "gate_pending"
	case GateSkipped:
		return "gate_skipped"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// tracker follows one operation through its states. complete is the only
// way out, and it always records.
type tracker struct {
	engine    *Engine
	op        operation.Operation
	start     time.Time
	states    []State
	escalated bool
	stdout    string
	stderr    string
}

func (t *tracker) enter(s State) {
	t.states = append(t.states, s)
	t.engine.logger.Debug("operation state", "command", t.op.CommandLine(), "state", s)
}

func (t *tracker) complete(outcome operation.Outcome, msg string, exitCode int) Result {
	t.enter(Completed)
	elapsed := t.engine.now().Sub(t.start)

	rec := audit.Record{
		ID:        t.engine.newID(),
		Timestamp: t.start,
		Operation: t.op.CommandLine(),
		Tier:      t.op.Tier,
		Result:    outcome,
		User:      t.engine.user,
		Details: audit.Details{
			Description:      t.op.Description,
			DurationSeconds:  elapsed.Seconds(),
			Message:          msg,
			WorkingDirectory: t.op.Dir,
			Escalated:        t.escalated,
		},
	}
	if exitCode >= 0 {
		code := exitCode
		rec.Details.ExitCode = &code
	}
	t.engine.record(rec)

	level := t.engine.logger.Info
	if outcome != operation.Success {
		level = t.engine.logger.Warn
	}
	level("privileged operation completed",
		"command", rec.Operation, "result", outcome, "duration", elapsed)

	return Result{
		Result: operation.Result{
			Outcome:  outcome,
			Message:  msg,
			ExitCode: exitCode,
		},
		Tier:      t.op.Tier,
		Escalated: t.escalated,
		Stdout:    t.stdout,
		Stderr:    t.stderr,
		States:    t.states,
		Record:    rec,
	}
}
