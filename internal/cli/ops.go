// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/elevate/internal/escalate"
	"github.com/marcelocantos/elevate/internal/ops"
	"github.com/marcelocantos/elevate/internal/privilege"
)

func (a *app) ops() *ops.Ops {
	return ops.New(a.engine, privilege.User())
}

// report prints the result of a convenience operation.
func report(cmd *cobra.Command, res escalate.Result) error {
	writeOutput(cmd, res)
	if res.OK() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", appName, res.Message)
	}
	return finish(cmd, res)
}

func newInstallCmd(a *app) *cobra.Command {
	var manager string
	cmd := &cobra.Command{
		Use:   "install <package>",
		Short: "Install a Python package with pip or conda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.ops().InstallPackage(cmd.Context(), args[0], manager)
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
	cmd.Flags().StringVar(&manager, "manager", "pip", "package manager: pip or conda")
	return cmd
}

func newPermsCmd(a *app) *cobra.Command {
	var mode, owner string
	cmd := &cobra.Command{
		Use:   "perms <path>",
		Short: "Change a file's mode and/or owner",
		Example: `  elevate perms /etc/app.conf --mode 640 --owner root:app
  elevate perms ./deploy.sh --mode a+x`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.ops().SetPermissions(cmd.Context(), args[0], mode, owner)
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "mode passed to chmod (e.g. 755, a+x)")
	cmd.Flags().StringVar(&owner, "owner", "", "owner passed to chown (user[:group])")
	return cmd
}

func newScriptCmd(a *app) *cobra.Command {
	var interpreter string
	cmd := &cobra.Command{
		Use:   "script <path> [args...]",
		Short: "Run a script, escalating if the command line requires it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd, a.ops().RunScript(cmd.Context(), args[0], args[1:], interpreter))
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&interpreter, "interpreter", "python3", "interpreter to run the script with")
	return cmd
}

func newServiceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "service <name> <script>",
		Short: "Install and enable a systemd service that runs a Python script",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.ops().CreateService(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
}

func newRequirementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "requirements <file>",
		Short: "Install packages from a pip requirements file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.ops().InstallRequirements(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
}
