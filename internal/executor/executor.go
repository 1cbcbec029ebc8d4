// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package executor spawns commands, optionally behind an elevation prefix,
// and captures their output under a timeout.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultPrefix is prepended to argv when elevation is requested.
var DefaultPrefix = []string{"sudo"}

// Request describes one process to run.
type Request struct {
	Argv    []string
	Elevate bool
	Dir     string
	Env     map[string]string // overlay; wins over the inherited environment
	Timeout time.Duration     // 0 = no limit
}

// Result holds the outcome of a process that ran to completion. A non-zero
// ExitCode is not an error.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	Truncated bool
}

// SpawnError reports a process that could not be started.
type SpawnError struct {
	Argv0 string
	// Elevation is true when the elevation prefix itself failed to start.
	Elevation bool
	Err       error
}

func (e *SpawnError) Error() string {
	if e.Elevation {
		return fmt.Sprintf("start elevation tool %s: %v", e.Argv0, e.Err)
	}
	return fmt.Sprintf("start %s: %v", e.Argv0, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Permission reports whether the OS refused to execute the program or to
// enter its working directory.
func (e *SpawnError) Permission() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// TimeoutError reports a process killed after exceeding its timeout.
type TimeoutError struct {
	Timeout time.Duration
	Partial *Result // output captured before the kill
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v", e.Timeout)
}

// Runner executes Requests. The zero value uses DefaultPrefix and captures
// unlimited output.
type Runner struct {
	// Prefix is the elevation command, e.g. ["sudo"] or ["doas"].
	Prefix []string
	// MaxOutput caps each captured stream in bytes; 0 means no cap.
	MaxOutput int
}

// Run spawns the request and waits for it. Errors are *SpawnError,
// *TimeoutError, or the context's error when ctx is cancelled by the caller.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Argv) == 0 {
		return nil, &SpawnError{Err: errors.New("empty command")}
	}
	argv := req.Argv
	if req.Elevate {
		argv = append(r.prefix(), argv...)
	}

	runCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = req.Dir
	cmd.Env = mergeEnv(os.Environ(), req.Env)

	var stdout, stderr bytes.Buffer
	var stdoutW, stderrW io.Writer = &stdout, &stderr
	if r.MaxOutput > 0 {
		stdoutW = &limitedWriter{buf: &stdout, limit: r.MaxOutput}
		stderrW = &limitedWriter{buf: &stderr, limit: r.MaxOutput}
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	// The prefix may need to prompt for a password on the terminal, which it
	// can only do from the terminal's foreground process group.
	setupProcessGroup(cmd, req.Elevate && hasControllingTerminal())

	if req.Dir != "" {
		if err := checkDir(req.Dir); err != nil {
			return nil, &SpawnError{Argv0: req.Argv[0], Err: err}
		}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Argv0: argv[0], Elevation: req.Elevate && cannotExec(err), Err: err}
	}
	err := cmd.Wait()
	res := &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if r.MaxOutput > 0 {
		res.Truncated = stdout.Len() >= r.MaxOutput || stderr.Len() >= r.MaxOutput
	}

	if runCtx.Err() != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			res.ExitCode = -1
			return nil, &TimeoutError{Timeout: req.Timeout, Partial: res}
		}
		return nil, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
		case errors.Is(err, exec.ErrWaitDelay):
			// The command exited; something it started in the background
			// still held its output open.
		default:
			return nil, fmt.Errorf("wait %s: %w", argv[0], err)
		}
	}
	return res, nil
}

// checkDir reports why dir cannot be the child's working directory.
func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			pe.Op = "chdir"
		}
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: dir, Err: errNotDir}
	}
	return searchable(dir)
}

// cannotExec reports whether a Start error means the program itself could
// not be found or executed.
func cannotExec(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission)
}

func (r *Runner) prefix() []string {
	if len(r.Prefix) > 0 {
		return append([]string(nil), r.Prefix...)
	}
	return append([]string(nil), DefaultPrefix...)
}

// CommandLine renders the argv a Request would spawn.
func (r *Runner) CommandLine(req Request) string {
	argv := req.Argv
	if req.Elevate {
		argv = append(r.prefix(), argv...)
	}
	return strings.Join(argv, " ")
}
