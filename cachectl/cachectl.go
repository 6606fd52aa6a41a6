// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pocketsignal/toolkit/internal/artifactcache"
	"github.com/pocketsignal/toolkit/internal/exe"
	"github.com/pocketsignal/toolkit/internal/logger"

	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("cachectl", "Manages the shared artifact cache")

	logFile  = exe.LogFileFlag(app)
	logLevel = exe.LogLevelFlag(app)

	cacheDir = app.Flag("cache", "Path to artifact cache.").Required().String()

	statsCommand = app.Command("stats", "Prints statistics about the cache.")
	pruneCommand = app.Command("prune", "Removes entries with missing or invalid metadata.")
)

func main() {
	app.Version(exe.ToolkitVersion)
	selectedCommand := kingpin.MustParse(app.Parse(os.Args[1:]))
	logger.InitBestEffort(*logFile, *logLevel)

	// Open the cache.
	cache, err := artifactcache.Open(*cacheDir)
	if err != nil {
		logger.PanicOnError(err)
	}

	switch selectedCommand {
	case statsCommand.FullCommand():
		err = doStats(cache)
	case pruneCommand.FullCommand():
		err = doPrune(cache)
	default:
		err = fmt.Errorf("unknown command: %s", selectedCommand)
	}

	logger.PanicOnError(err)
}

func doStats(cache *artifactcache.Cache) error {
	var entrySize int64
	entryCount := 0
	invalidCount := 0

	err := cache.Visit(func(entryDir string, entry *artifactcache.Entry, entryErr error) error {
		if entryErr != nil {
			return nil
		}

		if entry == nil {
			invalidCount += 1
			return nil
		}

		entryCount += 1

		thisEntrySize, _ := bestEffortSizeOfDirTree(entry.ContentPath)
		entrySize += thisEntrySize

		return nil
	})

	if err != nil {
		return err
	}

	logger.Log.Infof("Cached artifacts: %d", entryCount)
	logger.Log.Infof("Invalid entries: %d", invalidCount)
	logger.Log.Infof("Cache size: %.2f MiB", float64(entrySize)/1024/1024)

	return nil
}

func doPrune(cache *artifactcache.Cache) error {
	prunedCount := 0

	err := cache.Visit(func(entryDir string, entry *artifactcache.Entry, entryErr error) error {
		if entryErr != nil || entry != nil {
			return nil
		}

		logger.Log.Debugf("Pruning invalid cache entry: %s", entryDir)

		removeErr := cache.RemoveEntry(entryDir)
		if removeErr != nil {
			logger.Log.Warnf("Failed to prune cache entry (%s): %s", entryDir, removeErr)
			return nil
		}

		prunedCount += 1

		return nil
	})

	if err != nil {
		return err
	}

	logger.Log.Infof("Pruned entries: %d", prunedCount)

	return nil
}

func bestEffortSizeOfDirTree(dirPath string) (size int64, err error) {
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, walkErr error) error {
		// Keep going on error.
		if walkErr != nil {
			return nil
		}

		if info.IsDir() {
			return nil
		}

		size += info.Size()
		return nil
	})

	return
}
