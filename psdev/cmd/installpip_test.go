// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProgram places a fake program on the PATH that appends its arguments
// to a record file and exits successfully.
func stubProgram(t *testing.T, name string) (recordPath string) {
	t.Helper()

	binDir := t.TempDir()
	recordPath = filepath.Join(binDir, "invocations")

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %q\nexit 0\n", recordPath)
	require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte(script), 0755))

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return
}

// stubGetPipServer serves a fake bootstrap script, counting downloads.
func stubGetPipServer(t *testing.T) (requestCount *int) {
	t.Helper()

	requestCount = new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requestCount++
		w.Write([]byte("# get-pip placeholder\n"))
	}))
	t.Cleanup(server.Close)

	originalUrl := getPipUrl
	getPipUrl = server.URL + "/get-pip.py"
	t.Cleanup(func() { getPipUrl = originalUrl })

	return
}

func TestInstallPipSkipsWhenPipPresent(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)

	stubPip(t, 0)
	pythonRecordPath := stubProgram(t, "python3")
	requestCount := stubGetPipServer(t)

	installPipCacheDir = t.TempDir()
	t.Cleanup(func() { installPipCacheDir = "" })

	env := NewWorkspaceEnv(workDir, "pip", false, false)

	require.NoError(t, installPip(env))

	// pip is already there; nothing gets downloaded or run.
	assert.Zero(t, *requestCount)
	assert.NoFileExists(t, pythonRecordPath)
}

func TestInstallPipBootstrapsWhenPipMissing(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)

	pythonRecordPath := stubProgram(t, "python3")
	requestCount := stubGetPipServer(t)

	installPipCacheDir = t.TempDir()
	t.Cleanup(func() { installPipCacheDir = "" })

	env := NewWorkspaceEnv(workDir, "pip-that-is-not-installed", false, false)

	require.NoError(t, installPip(env))

	assert.Equal(t, 1, *requestCount)

	pythonInvocations := recordedInvocations(t, pythonRecordPath)
	require.Len(t, pythonInvocations, 1)
	assert.True(t, strings.HasSuffix(pythonInvocations[0], "get-pip.py --user"), "unexpected invocation: %s", pythonInvocations[0])
}

func TestInstallPipForceReinstalls(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)

	stubPip(t, 0)
	pythonRecordPath := stubProgram(t, "python3")
	requestCount := stubGetPipServer(t)

	installPipCacheDir = t.TempDir()
	t.Cleanup(func() { installPipCacheDir = "" })

	installPipForce = true
	t.Cleanup(func() { installPipForce = false })

	env := NewWorkspaceEnv(workDir, "pip", false, false)

	require.NoError(t, installPip(env))

	assert.Equal(t, 1, *requestCount)
	assert.Len(t, recordedInvocations(t, pythonRecordPath), 1)
}
