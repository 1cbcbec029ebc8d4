// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package escalate runs operations through classification, consent,
// execution and audit, in that order, and records every attempt.
package escalate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcelocantos/elevate/internal/audit"
	"github.com/marcelocantos/elevate/internal/classify"
	"github.com/marcelocantos/elevate/internal/consent"
	"github.com/marcelocantos/elevate/internal/executor"
	"github.com/marcelocantos/elevate/internal/operation"
)

// Classifier derives a tier from argv.
type Classifier interface {
	Classify(argv []string) operation.Tier
}

// Runner spawns processes.
type Runner interface {
	Run(ctx context.Context, req executor.Request) (*executor.Result, error)
}

// Recorder persists audit records.
type Recorder interface {
	Append(rec audit.Record) error
}

// Deps wires an Engine. Zero fields get defaults: the built-in classifier,
// a deny-everything gate, an executor.Runner with sudo, no persistent
// recorder, and slog.Default().
type Deps struct {
	Classifier Classifier
	Gate       consent.Gate
	Runner     Runner
	Recorder   Recorder

	// Privilege is the tier the process already holds. Operations at or
	// below it run without escalation.
	Privilege operation.Tier
	User      string
	Logger    *slog.Logger

	Now   func() time.Time
	NewID func() string
}

// Engine is the public entry point. It is safe for concurrent use, but
// Execute calls run one at a time so that audit records, stamped with the
// start time, are appended in time order.
type Engine struct {
	classifier Classifier
	gate       consent.Gate
	runner     Runner
	recorder   Recorder
	privilege  operation.Tier
	user       string
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string

	// execMu is held from an operation's start until it is recorded.
	execMu sync.Mutex

	mu      sync.Mutex
	history []audit.Record
}

// New creates an Engine from d.
func New(d Deps) *Engine {
	e := &Engine{
		classifier: d.Classifier,
		gate:       d.Gate,
		runner:     d.Runner,
		recorder:   d.Recorder,
		privilege:  d.Privilege,
		user:       d.User,
		logger:     d.Logger,
		now:        d.Now,
		newID:      d.NewID,
	}
	if e.classifier == nil {
		e.classifier = classify.Default()
	}
	if e.gate == nil {
		e.gate = consent.AlwaysDeny
	}
	if e.runner == nil {
		e.runner = &executor.Runner{}
	}
	if e.user == "" {
		e.user = "unknown"
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Result is the terminal state of one operation.
type Result struct {
	operation.Result
	Tier      operation.Tier
	Escalated bool
	Stdout    string
	Stderr    string
	States    []State // every state the operation passed through
	Record    audit.Record
}

// NeedsEscalation reports whether tier is above what the process holds.
func (e *Engine) NeedsEscalation(tier operation.Tier) bool {
	return tier > operation.Basic && tier.Exceeds(e.privilege)
}

// Execute runs op to completion. It never returns an error: every failure
// is an Outcome, and exactly one audit record is produced per call.
func (e *Engine) Execute(ctx context.Context, op operation.Operation) Result {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	op = op.Clone()
	t := &tracker{engine: e, op: op, start: e.now()}
	t.enter(Created)

	e.logger.Info("privileged operation attempt",
		"description", op.Description, "command", op.CommandLine())

	if op.AutoClassify {
		t.op.Tier = e.classifier.Classify(op.Argv)
	}
	if !t.op.Tier.Valid() {
		t.op.Tier = operation.Administrative
	}
	t.enter(Classified)

	if len(op.Argv) == 0 {
		return t.complete(operation.OperationFailed, "No command given", -1)
	}

	escalate := e.NeedsEscalation(t.op.Tier)
	t.escalated = escalate
	if escalate {
		t.enter(GatePending)
		ok, err := e.gate.Approve(ctx, t.op)
		if err != nil {
			e.logger.Warn("consent not obtained", "command", op.CommandLine(), "err", err)
			return t.complete(operation.UserCancelled, fmt.Sprintf("User cancelled the operation: %v", err), -1)
		}
		if !ok {
			return t.complete(operation.UserCancelled, "User cancelled the operation", -1)
		}
	} else {
		t.enter(GateSkipped)
	}

	t.enter(Executing)
	timeout := op.Timeout
	if timeout <= 0 {
		timeout = operation.DefaultTimeout
	}
	res, err := e.runner.Run(ctx, executor.Request{
		Argv:    op.Argv,
		Elevate: escalate,
		Dir:     op.Dir,
		Env:     op.Env,
		Timeout: timeout,
	})
	var timeoutErr *executor.TimeoutError
	switch {
	case res != nil:
		t.stdout, t.stderr = res.Stdout, res.Stderr
	case errors.As(err, &timeoutErr) && timeoutErr.Partial != nil:
		t.stdout, t.stderr = timeoutErr.Partial.Stdout, timeoutErr.Partial.Stderr
	}
	outcome, msg, code := interpret(res, err)
	return t.complete(outcome, msg, code)
}

// interpret maps the executor's answer onto an outcome.
func interpret(res *executor.Result, err error) (operation.Outcome, string, int) {
	var (
		spawnErr   *executor.SpawnError
		timeoutErr *executor.TimeoutError
	)
	switch {
	case err == nil && res.ExitCode == 0:
		msg := res.Stdout
		if msg == "" {
			msg = "Operation completed successfully"
		}
		return operation.Success, msg, 0
	case err == nil:
		return operation.OperationFailed,
			fmt.Sprintf("Command failed with return code %d: %s", res.ExitCode, res.Stderr), res.ExitCode
	case errors.As(err, &timeoutErr):
		return operation.OperationFailed,
			fmt.Sprintf("Operation timed out after %v", timeoutErr.Timeout), -1
	case errors.As(err, &spawnErr) && spawnErr.Permission():
		return operation.PermissionDenied, "Permission denied - unable to execute command", -1
	case errors.As(err, &spawnErr) && spawnErr.Elevation:
		return operation.EscalationFailed,
			fmt.Sprintf("Privilege escalation failed: %v", spawnErr.Err), -1
	case errors.As(err, &spawnErr):
		return operation.OperationFailed, fmt.Sprintf("Failed to start command: %v", spawnErr.Err), -1
	case errors.Is(err, context.Canceled):
		return operation.OperationFailed, "Operation cancelled", -1
	default:
		return operation.OperationFailed, fmt.Sprintf("Unexpected error: %v", err), -1
	}
}

// History returns the records produced by this engine, oldest first.
func (e *Engine) History() []audit.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.history)
}

// Classify exposes the engine's classifier.
func (e *Engine) Classify(argv []string) operation.Tier {
	return e.classifier.Classify(argv)
}

func (e *Engine) record(rec audit.Record) {
	e.mu.Lock()
	e.history = append(e.history, rec)
	e.mu.Unlock()

	if e.recorder == nil {
		return
	}
	// The outcome is already decided; a failed write is only reported.
	if err := e.recorder.Append(rec); err != nil {
		e.logger.Error("failed to write audit log", "operation", rec.Operation, "err", err)
	}
}
