// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

// Package logger exposes a shared logrus logger for the standalone tools.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger instance. Tools must call one of the Init
// functions before using it.
var Log *logrus.Logger

const defaultLogLevel = logrus.InfoLevel

// Levels lists the accepted names for the log level flags, lowest to highest
// severity.
func Levels() []string {
	return []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}
}

// InitStderrLog initializes the logger to write to stderr only.
func InitStderrLog() {
	initLog(nil, defaultLogLevel)
}

// InitBestEffort initializes the logger with the given log file path and
// level name, falling back to defaults when either is empty or invalid.
func InitBestEffort(logFilePath, levelName string) {
	level := defaultLogLevel
	if levelName != "" {
		parsedLevel, err := logrus.ParseLevel(strings.ToLower(levelName))
		if err == nil {
			level = parsedLevel
		}
	}

	var logFile io.Writer
	if logFilePath != "" {
		openedFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logFile = openedFile
		}
	}

	initLog(logFile, level)

	if logFilePath != "" && logFile == nil {
		Log.Warnf("Failed to open log file (%s); logging to stderr only", logFilePath)
	}
}

// PanicOnError panics via the logger if err is non-nil. Additional arguments
// are passed to Log.Panicf; the first must be a format string.
func PanicOnError(err error, args ...interface{}) {
	if err == nil {
		return
	}

	if len(args) == 0 {
		Log.Panicln(err)
	} else {
		format := args[0].(string)
		Log.Panicf(format, args[1:]...)
	}
}

func initLog(logFile io.Writer, level logrus.Level) {
	Log = logrus.New()
	Log.SetLevel(level)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if logFile != nil {
		Log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	} else {
		Log.SetOutput(os.Stderr)
	}
}
