// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package check

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/huh/spinner"
	"github.com/pocketsignal/toolkit/psdev/cmd"
)

type allChecker struct{}

func (allChecker) Name() string {
	return "all"
}

func (allChecker) Description() string {
	return "Runs ALL checks"
}

func (allChecker) Check(env *cmd.WorkspaceEnv) CheckResult {
	finalResult := CheckResult{Status: CheckSucceeded}

	for _, checker := range registeredCheckers {
		if checker.Name() == "all" {
			continue
		}

		var result CheckResult
		spinErr := spinner.New().Title(fmt.Sprintf("Running check: %s", checker.Name())).Action(func() {
			result = checker.Check(env)
		}).Run()
		if spinErr != nil {
			// The spinner is cosmetic; the check itself already ran.
			slog.Debug("Spinner failed to render", "error", spinErr)
		}

		err := reportCheckerResults(checker, []CheckResult{result})
		if err != nil {
			finalResult = CheckResult{
				Status: CheckFailed,
				Detail: "one or more checks failed",
			}
		}
	}

	return finalResult
}

func init() {
	registerChecker(allChecker{})
}
