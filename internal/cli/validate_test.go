package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidDirectory(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "Valid: 1, Invalid: 0")
}

func TestValidate_SingleFile(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "scenarios", "cli-pass.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Valid: 1, Invalid: 0")
}

func TestValidate_InvalidFile(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "invalid", "bad-op.yaml"))
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "Valid: 0, Invalid: 1")
}

func TestValidate_PathNotFound(t *testing.T) {
	_, err := execute(t, "validate", "testdata/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_DoesNotExecute(t *testing.T) {
	// The failing scenario is structurally valid; validate must pass it
	// because assertions only fail at run time.
	out, err := execute(t, "validate", filepath.Join("testdata", "failing"))
	require.NoError(t, err)
	assert.Contains(t, out, "Valid: 1, Invalid: 0")
}
