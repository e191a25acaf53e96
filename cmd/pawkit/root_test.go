package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileSessionIDStableAcrossCalls(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")

	first, err := profileSessionID(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// A second invocation reads the persisted id back instead of
	// minting a new session.
	second, err := profileSessionID(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfg), "session-id"))
	require.NoError(t, err)
	assert.Contains(t, string(data), first)
}

func TestProfileSessionIDRegeneratesWhenBlank(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-id"), []byte("  \n"), 0o600))

	id, err := profileSessionID(cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
