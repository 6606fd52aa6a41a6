// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package check

import (
	"fmt"
	"strings"

	"github.com/pocketsignal/toolkit/internal/shell"
	"github.com/pocketsignal/toolkit/psdev/cmd"
)

type pythonChecker struct{}

func (pythonChecker) Name() string {
	return "python"
}

func (pythonChecker) Description() string {
	return "Check that a Python 3 interpreter is available"
}

func (pythonChecker) Check(env *cmd.WorkspaceEnv) CheckResult {
	stdout, stderr, err := shell.Execute("python3", "--version")
	if err != nil {
		return CheckResult{
			Status: CheckFailed,
			Detail: "python3 could not be run",
			Error:  err,
		}
	}

	// Some interpreters report the version on stderr.
	versionLine := strings.TrimSpace(stdout)
	if versionLine == "" {
		versionLine = strings.TrimSpace(stderr)
	}

	if !strings.HasPrefix(versionLine, "Python 3.") {
		return CheckResult{
			Status: CheckFailed,
			Detail: fmt.Sprintf("unexpected interpreter version: %s", versionLine),
		}
	}

	return CheckResult{
		Status: CheckSucceeded,
		Detail: versionLine,
	}
}

func init() {
	registerChecker(pythonChecker{})
}
