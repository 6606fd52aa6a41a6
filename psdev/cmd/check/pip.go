// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package check

import (
	"fmt"
	"strings"

	"github.com/pocketsignal/toolkit/internal/shell"
	"github.com/pocketsignal/toolkit/psdev/cmd"
)

type pipChecker struct{}

func (pipChecker) Name() string {
	return "pip"
}

func (pipChecker) Description() string {
	return "Check that pip is available"
}

func (pipChecker) Check(env *cmd.WorkspaceEnv) CheckResult {
	stdout, _, err := shell.Execute(env.PipTool(), "--version")
	if err == nil {
		return CheckResult{
			Status: CheckSucceeded,
			Detail: strings.TrimSpace(stdout),
		}
	}

	// pip may only be reachable through the interpreter.
	stdout, _, err = shell.Execute("python3", "-m", "pip", "--version")
	if err == nil {
		return CheckResult{
			Status: CheckSucceeded,
			Detail: strings.TrimSpace(stdout),
		}
	}

	return CheckResult{
		Status: CheckFailed,
		Detail: fmt.Sprintf("%s is not available; run 'psdev install-pip'", env.PipTool()),
		Error:  err,
	}
}

func init() {
	registerChecker(pipChecker{})
}
