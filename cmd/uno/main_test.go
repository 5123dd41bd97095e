package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cfoust/uno/pkg/config"
	"github.com/cfoust/uno/pkg/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionString(t *testing.T) {
	assert.Contains(t, versionString(), "uno "+version.Version)
	assert.Contains(t, versionString(), version.GitCommit)
}

func TestCheck(t *testing.T) {
	require.NoError(t, check(nil))

	dir := t.TempDir()
	crowded := filepath.Join(dir, "crowded.yaml")
	err := os.WriteFile(crowded, []byte(`
server:
  game:
    maxPlayers: 4
    handSize: 26
`), 0644)
	require.NoError(t, err)
	assert.ErrorIs(t, check([]string{crowded}), config.ErrInvalidConfig)
}
