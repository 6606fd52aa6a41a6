// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package check

import (
	"fmt"
	"os"

	"github.com/pocketsignal/toolkit/psdev/cmd"
)

type requirementsChecker struct{}

func (requirementsChecker) Name() string {
	return "requirements"
}

func (requirementsChecker) Description() string {
	return "Check that the workspace's requirements file is present"
}

// Existence and readability only; the file's contents belong to pip.
func (requirementsChecker) Check(env *cmd.WorkspaceEnv) CheckResult {
	requirementsPath := env.RequirementsPath()

	info, err := os.Stat(requirementsPath)
	if err != nil {
		return CheckResult{
			Status: CheckFailed,
			Detail: fmt.Sprintf("missing requirements file: %s", requirementsPath),
			Error:  err,
		}
	}

	if !info.Mode().IsRegular() {
		return CheckResult{
			Status: CheckFailed,
			Detail: fmt.Sprintf("requirements path is not a regular file: %s", requirementsPath),
		}
	}

	f, err := os.Open(requirementsPath)
	if err != nil {
		return CheckResult{
			Status: CheckFailed,
			Detail: fmt.Sprintf("requirements file is not readable: %s", requirementsPath),
			Error:  err,
		}
	}

	f.Close()

	return CheckResult{
		Status: CheckSucceeded,
		Detail: requirementsPath,
	}
}

func init() {
	registerChecker(requirementsChecker{})
}
