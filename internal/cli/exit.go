// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/elevate/internal/escalate"
)

// ExitError carries a process exit code out of a command. The message has
// already been shown to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an operation result onto a process exit code: 0 on success,
// the child's code when it ran and failed, 1 otherwise.
func ExitCode(res escalate.Result) int {
	switch {
	case res.OK():
		return 0
	case res.ExitCode > 0:
		return res.ExitCode
	default:
		return 1
	}
}

// finish reports a non-successful result on stderr and converts it to an
// ExitError.
func finish(cmd *cobra.Command, res escalate.Result) error {
	code := ExitCode(res)
	if code == 0 {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", appName, res.Outcome, res.Message)
	return &ExitError{Code: code}
}
