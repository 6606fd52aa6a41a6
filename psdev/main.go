// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"os"

	"github.com/pocketsignal/toolkit/psdev/cmd"
	_ "github.com/pocketsignal/toolkit/psdev/cmd/check"
)

func main() {
	// Make sure we're not running as root; pip --user installs under sudo
	// land in root's home and confuse everything downstream.
	if os.Geteuid() == 0 {
		fmt.Fprintln(os.Stderr, "error: this tool may not be run as root")
		os.Exit(1)
	}

	cmd.Execute()
}
