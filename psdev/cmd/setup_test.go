// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSetupManifest drops a bootstrap.yaml into the workspace.
func writeSetupManifest(t *testing.T, workDir, contents string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(workDir, setupManifestFileName), []byte(contents), 0644))
}

func TestRunSetupWithoutManifest(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)
	recordPath := stubPip(t, 0)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte("requests\n"), 0644))

	env := NewWorkspaceEnv(workDir, "pip", false, false)

	var stdout bytes.Buffer
	err := runSetup(env, &stdout)

	// No manifest just means nothing beyond the dependency install.
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), installingMessage)

	invocations := recordedInvocations(t, recordPath)
	require.Len(t, invocations, 1)
	assert.Equal(t, "install -r requirements.txt", invocations[0])
}

func TestRunSetupRunsStepsInOrder(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)
	stubPip(t, 0)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte("requests\n"), 0644))

	stepRecordPath := filepath.Join(t.TempDir(), "steps")
	writeSetupManifest(t, workDir, fmt.Sprintf(`
steps:
  - name: first
    command: ["sh", "-c", "echo first >> %s"]
  - name: second
    command: ["sh", "-c", "echo second >> %s"]
`, stepRecordPath, stepRecordPath))

	env := NewWorkspaceEnv(workDir, "pip", false, false)

	var stdout bytes.Buffer
	require.NoError(t, runSetup(env, &stdout))

	steps, err := os.ReadFile(stepRecordPath)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(steps))
}

func TestRunSetupMissingRequiredTool(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)
	recordPath := stubPip(t, 0)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte("requests\n"), 0644))

	stepRecordPath := filepath.Join(t.TempDir(), "steps")
	writeSetupManifest(t, workDir, fmt.Sprintf(`
requires:
  - definitely-not-a-real-tool
steps:
  - name: touch-record
    command: ["sh", "-c", "echo ran >> %s"]
`, stepRecordPath))

	env := NewWorkspaceEnv(workDir, "pip", false, false)

	var stdout bytes.Buffer
	err := runSetup(env, &stdout)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-real-tool")

	// The requires check gates everything else.
	assert.Empty(t, recordedInvocations(t, recordPath))
	assert.NoFileExists(t, stepRecordPath)
}

func TestRunSetupFailingStepStopsSequence(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)
	stubPip(t, 0)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte("requests\n"), 0644))

	stepRecordPath := filepath.Join(t.TempDir(), "steps")
	writeSetupManifest(t, workDir, fmt.Sprintf(`
steps:
  - name: broken
    command: ["sh", "-c", "exit 7"]
  - name: after-broken
    command: ["sh", "-c", "echo ran >> %s"]
`, stepRecordPath))

	env := NewWorkspaceEnv(workDir, "pip", false, false)

	var stdout bytes.Buffer
	err := runSetup(env, &stdout)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.NoFileExists(t, stepRecordPath)
}

func TestRunSetupDryRunSkipsSteps(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)
	stubPip(t, 0)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte("requests\n"), 0644))

	stepRecordPath := filepath.Join(t.TempDir(), "steps")
	writeSetupManifest(t, workDir, fmt.Sprintf(`
steps:
  - name: touch-record
    command: ["sh", "-c", "echo ran >> %s"]
`, stepRecordPath))

	setupDryRun = true
	t.Cleanup(func() { setupDryRun = false })

	env := NewWorkspaceEnv(workDir, "pip", false, false)

	var stdout bytes.Buffer
	require.NoError(t, runSetup(env, &stdout))
	assert.NoFileExists(t, stepRecordPath)
}
