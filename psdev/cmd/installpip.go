// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package cmd

import (
	"log/slog"
	"os"
	"os/exec"
	"path"
	"time"

	"github.com/pocketsignal/toolkit/internal/artifactcache"
	"github.com/pocketsignal/toolkit/internal/downloadcache"
	"github.com/pocketsignal/toolkit/internal/network"
	"github.com/pocketsignal/toolkit/internal/retry"
	"github.com/pocketsignal/toolkit/internal/shell"
	"github.com/spf13/cobra"
)

// Overridable in tests.
var getPipUrl = "https://bootstrap.pypa.io/get-pip.py"

var (
	installPipCacheDir string
	installPipForce    bool
)

var installPipCmd = &cobra.Command{
	Use:   "install-pip",
	Short: "Bootstrap pip itself when it is missing",
	RunE: func(c *cobra.Command, args []string) error {
		return installPip(CmdEnv)
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(installPipCmd)

	installPipCmd.Flags().StringVar(&installPipCacheDir, "cache", "", "path to the artifact cache (defaults to the user cache dir)")
	installPipCmd.Flags().BoolVar(&installPipForce, "force", false, "reinstall pip even if it is already present")
}

func installPip(env *WorkspaceEnv) error {
	if !installPipForce && shell.ProgramExists(env.PipTool()) {
		slog.Info("pip is already installed; nothing to do", "pip", env.PipTool())
		return nil
	}

	downloadCache, err := openDownloadCache(installPipCacheDir)
	if err != nil {
		// The cache is an optimization; carry on without it.
		slog.Warn("Could not open the download cache", "error", err)
		downloadCache = nil
	}

	tempDir, err := os.MkdirTemp(os.TempDir(), "psdev")
	if err != nil {
		return err
	}

	defer os.RemoveAll(tempDir)

	scriptPath := path.Join(tempDir, "get-pip.py")

	slog.Info("Downloading pip bootstrap script", "uri", getPipUrl)

	err = downloadWithRetries(getPipUrl, scriptPath, downloadCache)
	if err != nil {
		return err
	}

	slog.Info("Running pip bootstrap script")

	scriptCmd := exec.Command("python3", scriptPath, "--user")
	scriptCmd.Stdout = os.Stdout
	scriptCmd.Stderr = os.Stderr

	return scriptCmd.Run()
}

func openDownloadCache(cacheDir string) (*downloadcache.DownloadCache, error) {
	if cacheDir == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}

		cacheDir = path.Join(userCacheDir, "pocketsignal", "artifacts")
	}

	cache, err := artifactcache.Open(cacheDir)
	if err != nil {
		return nil, err
	}

	return downloadcache.Open(cache)
}

func downloadWithRetries(uri, dst string, cache *downloadcache.DownloadCache) error {
	const (
		// With 5 attempts, an initial delay of 1 second, and a backoff
		// factor of 2.0 the total time spent retrying will be ~30 seconds.
		downloadRetryAttempts = 5
		failureBackoffBase    = 2.0
		downloadRetryDuration = time.Second
	)
	var noCancel chan struct{} = nil

	_, err := retry.RunWithExpBackoff(func() error {
		return network.CacheAwareDownloadFile(uri, dst, cache, nil, nil)
	}, downloadRetryAttempts, downloadRetryDuration, failureBackoffBase, noCancel)

	return err
}
