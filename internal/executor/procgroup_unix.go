// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package executor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// killWaitDelay bounds how long Wait keeps reading pipes after the child
// has been signalled or has exited, in case a descendant holds them open.
// When it expires a child that is still running is killed.
const killWaitDelay = 3 * time.Second

// setupProcessGroup arranges for context cancellation to stop the child and
// everything it started.
//
// Normally the child gets its own process group and cancellation SIGKILLs
// the group. With shareTerminal the child stays in our process group, so it
// remains in the terminal's foreground and can read a password from it;
// cancellation then sends SIGTERM to the child, which sudo relays to the
// command, and SIGKILL follows after killWaitDelay.
func setupProcessGroup(cmd *exec.Cmd, shareTerminal bool) {
	cmd.WaitDelay = killWaitDelay
	if shareTerminal {
		cmd.Cancel = func() error {
			if cmd.Process == nil {
				return os.ErrProcessDone
			}
			return cmd.Process.Signal(syscall.SIGTERM)
		}
		return
	}

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true

	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return os.ErrProcessDone
		}
		pid := cmd.Process.Pid
		// kill(-1) and kill(0) would hit far more than the child.
		if pid <= 1 {
			return os.ErrProcessDone
		}
		if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
			if errors.Is(err, unix.ESRCH) {
				return os.ErrProcessDone
			}
			// An elevated child may belong to another user; fall back to
			// killing the leader directly.
			return cmd.Process.Kill()
		}
		return nil
	}
}

// hasControllingTerminal reports whether this process has a terminal a
// child could prompt on.
func hasControllingTerminal() bool {
	fd, err := unix.Open("/dev/tty", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	unix.Close(fd)
	return true
}
