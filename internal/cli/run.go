// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/elevate/internal/escalate"
	"github.com/marcelocantos/elevate/internal/operation"
	"github.com/marcelocantos/elevate/internal/privilege"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		description string
		tierFlag    string
		timeout     time.Duration
		cwd         string
		env         []string
		noApproval  bool
	)
	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command, escalating if its tier requires it",
		Long: `Run a command through the escalation engine.

The tier defaults to auto, which classifies the command. Commands above the
privileges this process holds are run under the elevation prefix after
consent is given. Every attempt is audited.

Examples:
  elevate run -- apt-get install -y curl
  elevate run --tier administrative --description "open port" -- ufw allow 22`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, auto, err := operation.ParseRequest(tierFlag)
			if err != nil {
				return err
			}
			overlay, err := parseEnv(env)
			if err != nil {
				return err
			}
			if description == "" {
				description = strings.Join(args, " ")
			}

			op := operation.New(description, tier, args...)
			op.AutoClassify = auto
			op.RequiresApproval = !noApproval
			op.Dir = cwd
			op.Env = overlay
			op.Timeout = a.cfg.Execution.DefaultTimeoutDuration()
			if timeout > 0 {
				op.Timeout = timeout
			}

			res := a.engine.Execute(cmd.Context(), op)
			writeOutput(cmd, res)
			return finish(cmd, res)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the command is for (shown at the prompt and audited)")
	cmd.Flags().StringVarP(&tierFlag, "tier", "t", "auto", "permission tier: auto, basic, elevated, administrative")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "kill the command after this long (default from config)")
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory")
	cmd.Flags().StringArrayVarP(&env, "env", "e", nil, "environment override KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&noApproval, "no-approval", false, "do not ask before escalating")
	return cmd
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env %q (want KEY=VALUE)", kv)
		}
		env[k] = v
	}
	return env, nil
}

// writeOutput copies the child's captured output to the command's streams.
func writeOutput(cmd *cobra.Command, res escalate.Result) {
	io.WriteString(cmd.OutOrStdout(), res.Stdout)
	io.WriteString(cmd.ErrOrStderr(), res.Stderr)
}

func newClassifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <command> [args...]",
		Short: "Print the permission tier a command needs",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			tier := a.classifier.Classify(args)
			fmt.Fprintln(cmd.OutOrStdout(), tier)
			if a.engine.NeedsEscalation(tier) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: escalation required (running as %s)\n", appName, privilege.User())
			}
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
