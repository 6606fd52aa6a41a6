// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pocketsignal/toolkit/internal/file"
	"github.com/spf13/cobra"
)

const (
	installingMessage = "Installing packages from requirements.txt..."
	notFoundMessage   = "requirements.txt not found. Please ensure the file exists in the current directory."
)

var (
	installUserScope bool
	installDryRun    bool
)

var installDepsCmd = &cobra.Command{
	Use:   "install-deps",
	Short: "Install the workspace's Python dependencies",
	RunE: func(c *cobra.Command, args []string) error {
		return installDeps(CmdEnv, c.OutOrStdout())
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(installDepsCmd)

	installDepsCmd.Flags().BoolVar(&installUserScope, "user", false, "install to the per-user site-packages")
	installDepsCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "log the pip command instead of running it")
}

// installDeps checks for a requirements file in the current directory and,
// when present, delegates installation to pip. A missing file is not an
// error; pip's own failures are returned unclassified.
func installDeps(env *WorkspaceEnv, stdout io.Writer) error {
	if !file.Exists(requirementsFileName) {
		fmt.Fprintln(stdout, notFoundMessage)
		return nil
	}

	fmt.Fprintln(stdout, installingMessage)

	slog.Debug("Installing workspace pip requirements", "requirementsFile", requirementsFileName)

	invocation := NewPipInvocation("install", "-r", requirementsFileName)
	invocation.UserScope = installUserScope
	invocation.DryRun = installDryRun

	return env.RunPip(invocation)
}
