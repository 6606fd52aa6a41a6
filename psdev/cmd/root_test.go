// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, path string) string {
	t.Helper()

	resolvedPath, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	return resolvedPath
}

func TestResolveWorkspaceDirExplicit(t *testing.T) {
	workDir := t.TempDir()

	explicitWorkspaceDir = workDir
	t.Cleanup(func() { explicitWorkspaceDir = "" })

	resolvedDir, err := resolveWorkspaceDir()
	require.NoError(t, err)
	assert.Equal(t, workDir, resolvedDir)
}

func TestResolveWorkspaceDirExplicitMissing(t *testing.T) {
	explicitWorkspaceDir = filepath.Join(t.TempDir(), "absent")
	t.Cleanup(func() { explicitWorkspaceDir = "" })

	_, err := resolveWorkspaceDir()
	assert.Error(t, err)
}

func TestResolveWorkspaceDirWalksUp(t *testing.T) {
	rootDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(rootDir, "requirements.txt"), []byte("requests\n"), 0644))

	nestedDir := filepath.Join(rootDir, "signals", "incoming")
	require.NoError(t, os.MkdirAll(nestedDir, 0755))

	chdir(t, nestedDir)

	resolvedDir, err := resolveWorkspaceDir()
	require.NoError(t, err)
	assert.Equal(t, resolved(t, rootDir), resolved(t, resolvedDir))
}

func TestResolveWorkspaceDirGitMarker(t *testing.T) {
	rootDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(rootDir, ".git"), 0755))

	nestedDir := filepath.Join(rootDir, "scripts")
	require.NoError(t, os.MkdirAll(nestedDir, 0755))

	chdir(t, nestedDir)

	resolvedDir, err := resolveWorkspaceDir()
	require.NoError(t, err)
	assert.Equal(t, resolved(t, rootDir), resolved(t, resolvedDir))
}

func TestResolveWorkspaceDirFallsBackToCwd(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)

	resolvedDir, err := resolveWorkspaceDir()
	require.NoError(t, err)

	// Without a marker anywhere up the tree, the current directory wins;
	// this keeps the install flow usable in a bare directory.
	currentDir, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, resolved(t, currentDir), resolved(t, resolvedDir))
}
