// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pocketsignal/toolkit/internal/shell"
	"github.com/pocketsignal/toolkit/psdev/utils"
	"github.com/spf13/cobra"
)

var setupDryRun bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the workspace's full setup sequence",
	RunE: func(c *cobra.Command, args []string) error {
		return runSetup(CmdEnv, c.OutOrStdout())
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&setupDryRun, "dry-run", false, "log setup commands instead of running them")
}

// runSetup checks the manifest's required tools, installs the requirements
// file's dependencies, then runs the manifest's extra steps in order. A
// missing manifest just means there is nothing beyond the dependency
// install.
func runSetup(env *WorkspaceEnv, stdout io.Writer) error {
	manifest, err := loadSetupManifest(env)
	if err != nil {
		return err
	}

	for _, required := range manifest.Requires {
		if !shell.ProgramExists(required) {
			return fmt.Errorf("required tool not found on PATH: %s", required)
		}

		slog.Debug("Found required tool", "tool", required)
	}

	err = installDeps(env, stdout)
	if err != nil {
		return err
	}

	for _, step := range manifest.Steps {
		slog.Info("Running setup step", "step", step.Name)

		if setupDryRun {
			slog.Info("Dry run; would invoke command", "command", step.Command)
			continue
		}

		err = shell.ExecuteLive(false, step.Command[0], step.Command[1:]...)
		if err != nil {
			return fmt.Errorf("setup step '%s' failed\n%w", step.Name, err)
		}
	}

	return nil
}

func loadSetupManifest(env *WorkspaceEnv) (*utils.SetupConfig, error) {
	manifest, err := utils.ParseSetupConfig(env.SetupManifestPath())
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No setup manifest in workspace", "path", env.SetupManifestPath())
		return &utils.SetupConfig{}, nil
	} else if err != nil {
		return nil, err
	}

	return manifest, nil
}
