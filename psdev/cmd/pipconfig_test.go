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

func TestPackageIndexUrlFromPipConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pip.conf")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[global]
index-url = https://mirror.example.com/simple/
`), 0644))

	t.Setenv("PIP_CONFIG_FILE", configPath)

	env := NewWorkspaceEnv(t.TempDir(), "pip", false, false)
	assert.Equal(t, "https://mirror.example.com/simple/", env.PackageIndexUrl())
}

func TestPackageIndexUrlDefault(t *testing.T) {
	// Point every config candidate somewhere empty.
	t.Setenv("PIP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.conf"))
	t.Setenv("HOME", t.TempDir())
	originalEtcPath := etcPipConfigPath
	etcPipConfigPath = filepath.Join(t.TempDir(), "etc-pip.conf")
	t.Cleanup(func() { etcPipConfigPath = originalEtcPath })

	env := NewWorkspaceEnv(t.TempDir(), "pip", false, false)
	assert.Equal(t, DefaultPackageIndexUrl, env.PackageIndexUrl())
}

func TestPackageIndexUrlIgnoresConfigWithoutIndex(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pip.conf")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[global]
timeout = 60
`), 0644))

	t.Setenv("PIP_CONFIG_FILE", configPath)
	t.Setenv("HOME", t.TempDir())
	originalEtcPath := etcPipConfigPath
	etcPipConfigPath = filepath.Join(t.TempDir(), "etc-pip.conf")
	t.Cleanup(func() { etcPipConfigPath = originalEtcPath })

	env := NewWorkspaceEnv(t.TempDir(), "pip", false, false)
	assert.Equal(t, DefaultPackageIndexUrl, env.PackageIndexUrl())
}
