package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScenarioFile_AllTestdataValid(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			assert.NoError(t, ValidateScenarioFile(path))
		})
	}
}

func TestValidateScenarioFile_WrongType(t *testing.T) {
	path := writeScenarioFile(t, `
name: 42
description: name must be a string
steps:
  - op: post
    value: 1
assertions:
  - type: reads_order
    reads: [1]
`)

	err := ValidateScenarioFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateScenarioFile_UnknownOp(t *testing.T) {
	path := writeScenarioFile(t, `
name: bad
description: op outside the enum
steps:
  - op: send
    value: 1
assertions:
  - type: reads_order
    reads: [1]
`)

	err := ValidateScenarioFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateScenarioFile_FileNotFound(t *testing.T) {
	err := ValidateScenarioFile("testdata/scenarios/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
