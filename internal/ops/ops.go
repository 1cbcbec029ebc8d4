// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package ops provides ready-made privileged operations built on the
// escalation engine: package installs, permission changes, scripts and
// systemd services.
package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcelocantos/elevate/internal/escalate"
	"github.com/marcelocantos/elevate/internal/operation"
)

// InstallTimeout bounds package installs.
const InstallTimeout = 600 * time.Second

// Executor runs operations. *escalate.Engine satisfies it.
type Executor interface {
	Execute(ctx context.Context, op operation.Operation) escalate.Result
}

// Ops issues convenience operations through an Executor.
type Ops struct {
	exec Executor

	// User is written into generated service units.
	User string
	// ServiceDir is where unit files are installed.
	ServiceDir string
	// Interpreter runs service scripts.
	Interpreter string
}

// New returns Ops with Linux defaults.
func New(exec Executor, user string) *Ops {
	return &Ops{
		exec:        exec,
		User:        user,
		ServiceDir:  "/etc/systemd/system",
		Interpreter: "/usr/bin/python3",
	}
}

// InstallPackage installs a Python package with pip or conda.
func (o *Ops) InstallPackage(ctx context.Context, name, manager string) (escalate.Result, error) {
	if name == "" {
		return escalate.Result{}, errors.New("install: package name is required")
	}
	var argv []string
	switch manager {
	case "", "pip":
		manager = "pip"
		argv = []string{"pip", "install", name}
	case "conda":
		argv = []string{"conda", "install", "-y", name}
	default:
		return escalate.Result{}, fmt.Errorf("install: unsupported package manager %q", manager)
	}
	op := operation.New(
		fmt.Sprintf("Install Python package '%s' using %s", name, manager),
		operation.Elevated, argv...)
	op.Timeout = InstallTimeout
	return o.exec.Execute(ctx, op), nil
}

// SetPermissions runs chmod and then chown on path, skipping whichever is
// empty. It stops at the first step that does not succeed.
func (o *Ops) SetPermissions(ctx context.Context, path, mode, owner string) (escalate.Result, error) {
	if mode == "" && owner == "" {
		return escalate.Result{}, errors.New("perms: nothing to change (need mode or owner)")
	}
	var steps [][]string
	if mode != "" {
		steps = append(steps, []string{"chmod", mode, path})
	}
	if owner != "" {
		steps = append(steps, []string{"chown", owner, path})
	}
	var res escalate.Result
	for _, argv := range steps {
		res = o.exec.Execute(ctx, operation.New(
			fmt.Sprintf("Change permissions/ownership for %s", path),
			operation.Elevated, argv...))
		if !res.OK() {
			return res, nil
		}
	}
	res.Message = "Permissions updated successfully"
	return res, nil
}

// RunScript runs path under interpreter with args. The tier comes from the
// classifier. A script the caller cannot read is refused without running
// anything.
func (o *Ops) RunScript(ctx context.Context, path string, args []string, interpreter string) escalate.Result {
	if interpreter == "" {
		interpreter = "python3"
	}
	f, err := os.Open(path)
	if err != nil {
		return escalate.Result{Result: operation.Result{
			Outcome:  operation.PermissionDenied,
			Message:  fmt.Sprintf("Cannot read script file: %s", path),
			ExitCode: -1,
		}}
	}
	f.Close()

	argv := append([]string{interpreter, path}, args...)
	op := operation.New(fmt.Sprintf("Execute script: %s", path), operation.Basic, argv...)
	op.AutoClassify = true
	return o.exec.Execute(ctx, op)
}

// InstallRequirements installs every package listed in a pip requirements
// file.
func (o *Ops) InstallRequirements(ctx context.Context, file string) (escalate.Result, error) {
	if _, err := os.Stat(file); err != nil {
		return escalate.Result{}, fmt.Errorf("requirements file not found: %w", err)
	}
	op := operation.New(fmt.Sprintf("Install packages from %s", file),
		operation.Elevated, "pip", "install", "-r", file)
	op.Timeout = InstallTimeout
	return o.exec.Execute(ctx, op), nil
}

// CreateService installs and enables a systemd unit that runs script.
// The unit is staged in a temporary file and copied into place with
// administrative privileges. Stops at the first step that does not succeed.
func (o *Ops) CreateService(ctx context.Context, name, script string) (escalate.Result, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, ".") {
		return escalate.Result{}, fmt.Errorf("service: invalid name %q", name)
	}
	abs, err := filepath.Abs(script)
	if err != nil {
		return escalate.Result{}, fmt.Errorf("service: %w", err)
	}

	tmp, err := os.CreateTemp("", "elevate-"+name+"-*.service")
	if err != nil {
		return escalate.Result{}, fmt.Errorf("service: stage unit: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(o.unit(abs)); err != nil {
		tmp.Close()
		return escalate.Result{}, fmt.Errorf("service: stage unit: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return escalate.Result{}, fmt.Errorf("service: stage unit: %w", err)
	}
	// The staged file must be readable by the elevated cp.
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return escalate.Result{}, fmt.Errorf("service: stage unit: %w", err)
	}

	dest := filepath.Join(o.ServiceDir, name+".service")
	res := o.exec.Execute(ctx, operation.New(
		fmt.Sprintf("Create systemd service: %s", name),
		operation.Administrative, "cp", tmp.Name(), dest))
	if !res.OK() {
		return res, nil
	}
	for _, argv := range [][]string{
		{"systemctl", "daemon-reload"},
		{"systemctl", "enable", name},
	} {
		step := o.exec.Execute(ctx, operation.New(
			fmt.Sprintf("Setup service %s", name), operation.Administrative, argv...))
		if !step.OK() {
			return step, nil
		}
	}
	return res, nil
}

func (o *Ops) unit(script string) string {
	user := o.User
	if user == "" {
		user = "root"
	}
	return fmt.Sprintf(`[Unit]
Description=elevate service for %[1]s
After=network.target

[Service]
Type=simple
User=%[2]s
WorkingDirectory=%[3]s
ExecStart=%[4]s %[1]s
Restart=always
RestartSec=10

[Install]
WantedBy=multi-user.target
`, script, user, filepath.Dir(script), o.Interpreter)
}
