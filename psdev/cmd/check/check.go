// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package check

import (
	"github.com/pocketsignal/toolkit/psdev/cmd"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run checks against the bot workspace",
}

func init() {
	cmd.RootCmd.AddCommand(checkCmd)
}
