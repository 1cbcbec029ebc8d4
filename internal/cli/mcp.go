// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/spf13/cobra"

	"github.com/marcelocantos/elevate/internal/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the engine as MCP tools over stdio",
		Long: `Serve classify_command, run_privileged, audit_summary and session_history
as MCP tools on stdin/stdout. Nobody can be prompted in this mode, so consent
comes from consent.non_interactive in the config (deny by default).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpserver.New(a.engine, a.recorder, mcpserver.Options{
				Version:        a.version,
				SummaryLimit:   a.cfg.Audit.SummaryLimit,
				DefaultTimeout: a.cfg.Execution.DefaultTimeoutDuration(),
				Logger:         a.logger,
			})
			a.logger.Info("mcp server starting", "audit", a.recorder.Path())
			return s.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
