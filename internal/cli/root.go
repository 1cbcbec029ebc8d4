// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the elevate command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcelocantos/elevate/internal/audit"
	"github.com/marcelocantos/elevate/internal/classify"
	"github.com/marcelocantos/elevate/internal/config"
	"github.com/marcelocantos/elevate/internal/consent"
	"github.com/marcelocantos/elevate/internal/escalate"
	"github.com/marcelocantos/elevate/internal/operation"
	"github.com/marcelocantos/elevate/internal/privilege"
)

const appName = "elevate"

// app is the state shared by every subcommand, built once the config is
// known.
type app struct {
	version    string
	configPath string

	// privilege overrides privilege.Current when set. Tests use it.
	privilege *operation.Tier

	cfg        *config.Config
	logger     *slog.Logger
	classifier *classify.Classifier
	recorder   *audit.Recorder
	engine     *escalate.Engine
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{version: version})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Run privileged commands with consent and an audit trail",
		Long: `elevate classifies a command by the privileges it needs, asks before
escalating, runs it under sudo (or a configured prefix) and appends every
attempt to a JSONL audit log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.Version = a.version
	cmd.SetVersionTemplate(appName + " {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")

	cmd.AddCommand(
		newRunCmd(a),
		newClassifyCmd(a),
		newListCmd(a),
		newAuditCmd(a),
		newInstallCmd(a),
		newPermsCmd(a),
		newScriptCmd(a),
		newServiceCmd(a),
		newRequirementsCmd(a),
		newMCPCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	opts := append(cfg.Classifier.Options(), classify.WithLogger(a.logger))
	a.classifier, err = classify.New(opts...)
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	a.recorder = audit.NewRecorder(cfg.Audit.Path)

	current := privilege.Current()
	if a.privilege != nil {
		current = *a.privilege
	}
	a.engine = escalate.New(escalate.Deps{
		Classifier: a.classifier,
		Gate:       a.gate(cmd),
		Runner:     cfg.Execution.Runner(),
		Recorder:   a.recorder,
		Privilege:  current,
		User:       privilege.User(),
		Logger:     a.logger,
	})
	return nil
}

// gate picks how consent is obtained. Interactive mode prompts on stderr
// only when stdin is a terminal; otherwise, and always for the MCP server
// whose stdin is the protocol, the non-interactive policy answers.
// Catastrophic commands are refused whichever is chosen.
func (a *app) gate(cmd *cobra.Command) consent.Gate {
	return consent.Guard{Next: a.answerer(cmd)}
}

func (a *app) answerer(cmd *cobra.Command) consent.Gate {
	switch mode := a.cfg.ConsentMode(); mode {
	case consent.ModeAllow, consent.ModeDeny:
		p, _ := consent.PolicyFor(mode)
		return p
	}
	in := cmd.InOrStdin()
	if cmd.Name() == "mcp" || !isTerminal(in) {
		return a.cfg.NonInteractivePolicy()
	}
	return consent.NewPrompter(in, cmd.ErrOrStderr())
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// The version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, a.version)
		},
	}
}
