// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package executor

import (
	"os/exec"
	"time"
)

func setupProcessGroup(cmd *exec.Cmd, _ bool) {
	cmd.WaitDelay = 3 * time.Second
}

func hasControllingTerminal() bool { return false }
