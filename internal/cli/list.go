// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/elevate/internal/classify"
	"github.com/marcelocantos/elevate/internal/operation"
)

func newListCmd(a *app) *cobra.Command {
	var tierFilter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the commands and paths the classifier treats as privileged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tiers := []operation.Tier{operation.Administrative, operation.Elevated}
			if tierFilter != "" {
				t, err := operation.ParseTier(tierFilter)
				if err != nil {
					return err
				}
				tiers = []operation.Tier{t}
			}
			w := cmd.OutOrStdout()
			for _, t := range tiers {
				if names := a.classifier.Commands(t); len(names) > 0 {
					fmt.Fprintf(w, "%-15s %s\n", t, strings.Join(names, " "))
				}
			}
			if tierFilter == "" || tierFilter == operation.Elevated.String() {
				paths := append(append([]string(nil), classify.PrivilegedRoots...), a.cfg.Classifier.PrivilegedPaths...)
				fmt.Fprintf(w, "%-15s %s\n", "paths", strings.Join(paths, " "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tierFilter, "tier", "", "only this tier")
	return cmd
}
