package cmd

import (
	"log/slog"
	"os"
	"os/exec"
	"path"
)

const (
	defaultPipTool = "pip"

	requirementsFileName  = "requirements.txt"
	dotEnvFileName        = ".env"
	setupManifestFileName = "bootstrap.yaml"
)

// WorkspaceEnv captures the resolved bot workspace a command operates on.
type WorkspaceEnv struct {
	RootDir string

	pipTool string
	verbose bool
	quiet   bool
}

func NewWorkspaceEnv(rootDir, pipTool string, verbose bool, quiet bool) *WorkspaceEnv {
	if pipTool == "" {
		pipTool = defaultPipTool
	}

	return &WorkspaceEnv{
		RootDir: rootDir,

		pipTool: pipTool,
		verbose: verbose,
		quiet:   quiet,
	}
}

func (env *WorkspaceEnv) RequirementsPath() string {
	return path.Join(env.RootDir, requirementsFileName)
}

func (env *WorkspaceEnv) DotEnvPath() string {
	return path.Join(env.RootDir, dotEnvFileName)
}

func (env *WorkspaceEnv) SetupManifestPath() string {
	return path.Join(env.RootDir, setupManifestFileName)
}

func (env *WorkspaceEnv) PipTool() string {
	return env.pipTool
}

// PipInvocation describes one pip run.
type PipInvocation struct {
	Args       []string
	UserScope  bool
	RunQuietly bool
	DryRun     bool
}

func NewPipInvocation(args ...string) PipInvocation {
	return PipInvocation{
		Args: args,
	}
}

// PipCmd builds the exec.Cmd for an invocation without starting it.
func (env *WorkspaceEnv) PipCmd(invocation PipInvocation) *exec.Cmd {
	// Compute effective verbosity level.
	quiet := env.quiet || invocation.RunQuietly
	verbose := env.verbose

	pipArgs := invocation.Args

	if invocation.UserScope {
		pipArgs = append(pipArgs, "--user")
	}

	if quiet {
		pipArgs = append(pipArgs, "--quiet")
	} else if verbose {
		pipArgs = append(pipArgs, "--verbose")
	}

	return exec.Command(env.pipTool, pipArgs...)
}

// RunPip runs pip with its output streamed to the current process's stdout
// and stderr. The pip process's error, if any, is returned as-is.
func (env *WorkspaceEnv) RunPip(invocation PipInvocation) error {
	pipCmd := env.PipCmd(invocation)

	if invocation.DryRun {
		slog.Info("Dry run; would invoke pip", "command", pipCmd)
		return nil
	}

	pipCmd.Stdout = os.Stdout
	pipCmd.Stderr = os.Stderr

	return pipCmd.Run()
}

// RunPipAndGetOutput runs pip and returns its captured stdout.
func (env *WorkspaceEnv) RunPipAndGetOutput(invocation PipInvocation) (string, error) {
	pipCmd := env.PipCmd(invocation)

	slog.Debug("Running pip", "command", pipCmd)

	output, err := pipCmd.Output()
	if err != nil {
		return "", err
	}

	return string(output), nil
}
