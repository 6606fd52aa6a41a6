// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pocketsignal/toolkit/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitStderrLog()
	os.Exit(m.Run())
}

func newRequirementsServer(t *testing.T, contents string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(contents))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestFetchRequirementsWritesOutput(t *testing.T) {
	const pinnedContents = "requests==2.31.0\npython-dotenv==1.0.0\n"

	server := newRequirementsServer(t, pinnedContents)
	outputPath := filepath.Join(t.TempDir(), "requirements.txt")

	err := fetchRequirements(server.URL, outputPath, false, nil, nil, nil)
	require.NoError(t, err)

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, pinnedContents, string(contents))
}

func TestFetchRequirementsRefusesToOverwrite(t *testing.T) {
	server := newRequirementsServer(t, "requests==2.31.0\n")

	outputPath := filepath.Join(t.TempDir(), "requirements.txt")
	const existingContents = "# hand-edited pins\nrequests==2.28.0\n"
	require.NoError(t, os.WriteFile(outputPath, []byte(existingContents), 0644))

	err := fetchRequirements(server.URL, outputPath, false, nil, nil, nil)
	require.Error(t, err)

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, existingContents, string(contents))
}

func TestFetchRequirementsForceOverwrites(t *testing.T) {
	const pinnedContents = "requests==2.31.0\n"

	server := newRequirementsServer(t, pinnedContents)

	outputPath := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(outputPath, []byte("requests==2.28.0\n"), 0644))

	err := fetchRequirements(server.URL, outputPath, true, nil, nil, nil)
	require.NoError(t, err)

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, pinnedContents, string(contents))
}

func TestFetchRequirementsLeavesNoTempFileBehind(t *testing.T) {
	server := newRequirementsServer(t, "requests\n")

	outputDir := t.TempDir()
	outputPath := filepath.Join(outputDir, "requirements.txt")

	require.NoError(t, fetchRequirements(server.URL, outputPath, false, nil, nil, nil))

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "requirements.txt", entries[0].Name())
}
