// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package consent

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/marcelocantos/elevate/internal/operation"
)

// Refusal is returned by a Guard for a command it will never pass on.
type Refusal struct {
	Command string
	Reason  string
}

func (r *Refusal) Error() string {
	return fmt.Sprintf("refusing %q: %s", r.Command, r.Reason)
}

// Guard wraps a Gate and refuses permanently catastrophic commands before
// anyone is asked, so neither a policy nor a hasty "y" can approve them.
type Guard struct {
	Next Gate
}

func (g Guard) Approve(ctx context.Context, op operation.Operation) (bool, error) {
	if reason := catastrophic(op.Argv); reason != "" {
		return false, &Refusal{Command: op.CommandLine(), Reason: reason}
	}
	return g.Next.Approve(ctx, op)
}

// catastrophic reports why argv must never run with privileges, or "".
// Elevation tools in front of the command are looked through.
func catastrophic(argv []string) string {
	for len(argv) > 0 && isEscalationTool(argv[0]) {
		argv = argv[1:]
	}
	if len(argv) == 0 {
		return ""
	}
	switch filepath.Base(argv[0]) {
	case "rm", "chmod", "chown", "chgrp":
	default:
		return ""
	}
	args := argv[1:]
	if !hasAnyFlag(args, "-r", "-R", "--recursive") {
		return ""
	}
	for _, arg := range args {
		if arg == "" || arg[0] == '-' {
			continue
		}
		if arg == "~" || strings.HasPrefix(arg, "~/") && filepath.Clean(arg[1:]) == "/" {
			return "recursive change of the home directory"
		}
		switch filepath.Clean(arg) {
		case "/":
			return "recursive change of the root directory"
		case ".", "..":
			return "recursive change of the current or parent directory"
		}
	}
	return ""
}

func isEscalationTool(name string) bool {
	switch filepath.Base(name) {
	case "sudo", "doas", "su":
		return true
	}
	return false
}

// hasAnyFlag reports whether args contain one of flags. Combined short
// flags ("-rf" has -r) and long flags with values ("--recursive=x") count.
func hasAnyFlag(args []string, flags ...string) bool {
	for _, arg := range args {
		if arg == "" || arg[0] != '-' {
			continue
		}
		for _, flag := range flags {
			if arg == flag {
				return true
			}
			if len(flag) == 2 && flag[1] != '-' && len(arg) > 2 && arg[1] != '-' &&
				strings.ContainsRune(arg[1:], rune(flag[1])) {
				return true
			}
			if strings.HasPrefix(flag, "--") && strings.HasPrefix(arg, flag+"=") {
				return true
			}
		}
	}
	return false
}
