// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

// Package exe holds flag helpers and version metadata shared by the
// standalone tools.
package exe

import (
	"strings"

	"github.com/pocketsignal/toolkit/internal/logger"

	"gopkg.in/alecthomas/kingpin.v2"
)

// ToolkitVersion is stamped at build time via -ldflags.
var ToolkitVersion = ""

// LogFileFlag registers the standard --log-file flag on the given app.
func LogFileFlag(app *kingpin.Application) *string {
	return app.Flag("log-file", "Path to the file where logs will be written.").String()
}

// LogLevelFlag registers the standard --log-level flag on the given app.
func LogLevelFlag(app *kingpin.Application) *string {
	return app.Flag("log-level", "The minimum log level. One of: "+strings.Join(logger.Levels(), ", ")+".").
		Default("info").
		Enum(logger.Levels()...)
}
