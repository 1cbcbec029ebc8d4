// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marcelocantos/elevate/internal/audit"
	"github.com/marcelocantos/elevate/internal/operation"
)

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}
	cmd.AddCommand(newAuditSummaryCmd(a), newAuditTailCmd(a), newAuditVerifyCmd(a))
	return cmd
}

func newAuditSummaryCmd(a *app) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the most recent audit entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Audit.SummaryLimit
			}
			s, err := a.recorder.Summarize(limit)
			if err != nil {
				return fmt.Errorf("audit summary: %w", err)
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, s)
			}
			fmt.Fprintf(w, "audit log: %s\n", a.recorder.Path())
			fmt.Fprintf(w, "entries: %d  success: %d  failed: %d  elevated: %d\n",
				s.TotalEntries, s.SuccessCount, s.FailureCount, s.ElevatedOperations)
			if len(s.RecentOperations) > 0 {
				fmt.Fprintln(w, "recent:")
				writeRecords(w, s.RecentOperations)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", audit.DefaultSummaryLimit, "number of recent entries to consider")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newAuditTailCmd(a *app) *cobra.Command {
	var (
		n       int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the last entries of the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.recorder.Tail(n)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("audit tail: %w", err)
			}
			w := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(w, "no audit entries")
				return nil
			}
			if jsonOut {
				enc := json.NewEncoder(w)
				for _, r := range recs {
					if err := enc.Encode(r); err != nil {
						return err
					}
				}
				return nil
			}
			writeRecords(w, recs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of entries")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output one JSON record per line")
	return cmd
}

func newAuditVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every entry is well formed and in time order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.recorder.Verify(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "audit verification FAILED: %v\n", err)
				return &ExitError{Code: 1}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "audit log verified")
			return nil
		},
	}
}

// writeRecords prints one line per record, newest last.
func writeRecords(w io.Writer, recs []audit.Record) {
	r := lipgloss.NewRenderer(w)
	ok := r.NewStyle().Foreground(lipgloss.Color("2"))
	bad := r.NewStyle().Foreground(lipgloss.Color("1"))
	dim := r.NewStyle().Faint(true)

	for _, rec := range recs {
		result := ok
		if rec.Result != operation.Success {
			result = bad
		}
		fmt.Fprintf(w, "  %s  %s  %-14s  %s %s\n",
			dim.Render(fmt.Sprintf("%-16s", humanize.Time(rec.Timestamp))),
			result.Render(fmt.Sprintf("%-16s", rec.Result)),
			rec.Tier,
			rec.Operation,
			dim.Render("("+rec.Duration().String()+")"),
		)
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
