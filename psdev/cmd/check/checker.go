package check

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/pocketsignal/toolkit/psdev/cmd"
	"github.com/spf13/cobra"
)

type CheckStatus int

const (
	CheckSucceeded     CheckStatus = iota
	CheckFailed        CheckStatus = iota
	CheckSkipped       CheckStatus = iota
	CheckInternalError CheckStatus = iota
)

type CheckResult struct {
	// Required
	Status CheckStatus

	// Optional
	Detail string
	Error  error
}

// EnvChecker verifies one aspect of the workspace environment.
type EnvChecker interface {
	Name() string
	Description() string
	Check(env *cmd.WorkspaceEnv) CheckResult
}

var registeredCheckers []EnvChecker

func registerChecker(checker EnvChecker) {
	registeredCheckers = append(registeredCheckers, checker)

	checkerCmd := &cobra.Command{
		Use:   checker.Name(),
		Short: checker.Description(),
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("invalid usage")
			}

			return runChecker(checker)
		},
		SilenceUsage: true,
	}

	checkCmd.AddCommand(checkerCmd)
}

func runChecker(checker EnvChecker) error {
	slog.Debug("Running checker", "checker", checker.Name())

	result := checker.Check(cmd.CmdEnv)

	return reportCheckerResults(checker, []CheckResult{result})
}

func reportCheckerResults(checker EnvChecker, results []CheckResult) error {
	color.Set(color.Underline, color.Italic)
	fmt.Fprintf(os.Stderr, "Check: %s\n", checker.Name())
	color.Unset()

	var err error
	for _, result := range results {
		returnError := false

		detail := result.Detail
		if detail == "" {
			detail = checker.Name()
		}

		switch result.Status {
		case CheckSucceeded:
			fmt.Fprintf(os.Stderr, "✅ PASS: %s\n", detail)
		case CheckFailed:
			fmt.Fprintf(os.Stderr, "❌ FAIL: %s\n", detail)
			returnError = true
		case CheckSkipped:
			fmt.Fprintf(os.Stderr, "⏩ SKIPPED: %s\n", detail)
		case CheckInternalError:
			fmt.Fprintf(os.Stderr, "⛔ INTERNAL ERROR: %s (%v)\n", detail, result.Error)
			returnError = true
		}

		if returnError && err == nil {
			err = fmt.Errorf("one or more checks failed")
		}
	}

	fmt.Fprintf(os.Stderr, "\n")

	return err
}

// RunExternalCheckerCmd runs an external command and maps its outcome onto a
// check result: a non-zero exit is a failure, any other error is internal.
func RunExternalCheckerCmd(checkerCmd *exec.Cmd, detail string) CheckResult {
	err := checkerCmd.Run()

	var status CheckStatus
	if _, isExitError := err.(*exec.ExitError); isExitError {
		status = CheckFailed
	} else if err != nil {
		status = CheckInternalError
	} else {
		status = CheckSucceeded
	}

	return CheckResult{
		Status: status,
		Error:  err,
		Detail: detail,
	}
}
