package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile_MissingIsSilent(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadEnvFile_SetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCCHAT_TEST_LOAD_ENV=hindi\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DOCCHAT_TEST_LOAD_ENV") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hindi", os.Getenv("DOCCHAT_TEST_LOAD_ENV"))
}

