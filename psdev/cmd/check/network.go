// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package check

import (
	"fmt"

	"github.com/pocketsignal/toolkit/internal/network"
	"github.com/pocketsignal/toolkit/psdev/cmd"
)

type networkChecker struct{}

func (networkChecker) Name() string {
	return "network"
}

func (networkChecker) Description() string {
	return "Check that the configured package index is reachable"
}

func (networkChecker) Check(env *cmd.WorkspaceEnv) CheckResult {
	indexUrl := env.PackageIndexUrl()

	err := network.CheckIndexReachable(indexUrl)
	if err != nil {
		return CheckResult{
			Status: CheckFailed,
			Detail: fmt.Sprintf("package index unreachable: %s", indexUrl),
			Error:  err,
		}
	}

	return CheckResult{
		Status: CheckSucceeded,
		Detail: indexUrl,
	}
}

func init() {
	registerChecker(networkChecker{})
}
