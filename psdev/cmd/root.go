// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pocketsignal/toolkit/internal/logger"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var (
	explicitWorkspaceDir string
	verbose              bool
	quiet                bool
	pipTool              string

	CmdEnv  *WorkspaceEnv
	RootCmd = &cobra.Command{
		Use:   "psdev",
		Short: "PocketSignal workspace tool",
		Long:  `Dev tool for the PocketSignal trading bot workspace`,
		RunE: func(c *cobra.Command, args []string) error {
			// Bare invocation installs the workspace dependencies.
			return installDeps(CmdEnv, c.OutOrStdout())
		},
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Define flags and configuration settings.
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only enable minimal output")
	RootCmd.PersistentFlags().StringVarP(&explicitWorkspaceDir, "workspace", "C", "", "path to the bot workspace")
	RootCmd.PersistentFlags().StringVar(&pipTool, "pip", defaultPipTool, "pip executable to invoke")
}

func initConfig() {
	initLogging()

	workspaceDir, err := resolveWorkspaceDir()
	if err != nil {
		cobra.CheckErr(err)
	}

	CmdEnv = NewWorkspaceEnv(workspaceDir, pipTool, verbose, quiet)
}

func resolveWorkspaceDir() (string, error) {
	if explicitWorkspaceDir != "" {
		// Make sure the directory is actually there.
		info, err := os.Stat(explicitWorkspaceDir)
		if err != nil {
			return "", err
		} else if !info.IsDir() {
			return "", errors.New("workspace path is not a directory")
		}

		return explicitWorkspaceDir, nil
	}

	// Start at the current directory, and keep going up until we find what
	// looks to be the workspace root.
	currentPath, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}

	startPath := currentPath

	for {
		for _, marker := range workspaceMarkers {
			candidatePath := path.Join(currentPath, marker)

			_, err := os.Stat(candidatePath)
			if err == nil {
				return currentPath, nil
			}
		}

		if currentPath == "/" {
			// No marker anywhere up the tree; fall back to where we
			// started so the basic commands still work.
			return startPath, nil
		}

		currentPath = path.Dir(currentPath)
	}
}

// workspaceMarkers are checked in order at each level when walking up to
// find the workspace root.
var workspaceMarkers = []string{requirementsFileName, ".git"}

func initLogging() {
	w := os.Stderr

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else if quiet {
		logLevel = slog.LevelWarn
	} else {
		logLevel = slog.LevelInfo
	}

	// set global logger with custom options
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		}),
	))

	// Also initialize the logrus logger used by the internal packages.
	logger.InitStderrLog()
}
