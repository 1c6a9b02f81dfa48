package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const literalScenario = `name: literal
description: "Literal product in one pass"
source: "C = [[1, 2], [3, 4]] @ [[5, 6], [7, 8]]"
assertions:
  - type: pass_count
    value: 1
  - type: output_shape
    shape: [2, 2]
`

const mismatchScenario = `name: mismatch
description: "Inner dimensions differ"
source: "C = A @ B"
shapes:
  A: [2, 3]
  B: [4, 5]
assertions:
  - type: error_code
    code: SHAPE_MISMATCH
`

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "literal.yaml", literalScenario)
	goldenPath := filepath.Join(dir, "golden", "literal.golden")

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ literal (golden updated)\n")
	require.FileExists(t, goldenPath)

	out, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ literal\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total\n")
	assert.Contains(t, out, "✓ All scenarios passed\n")

	require.NoError(t, os.WriteFile(goldenPath, []byte("stale\n"), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ literal\n")
	assert.Contains(t, out, "test vectors do not match golden file (run with --update to regenerate)")
}

func TestTestCommandFailingAssertion(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "wrong.yaml", `name: wrong
description: "Wrong pass count"
source: "C = A @ B"
shapes:
  A: [4, 6]
  B: [6, 8]
assertions:
  - type: pass_count
    value: 3
`)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong\n")
	assert.Contains(t, out, "Actual: 12 passes")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total\n")
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "literal.yaml", literalScenario)
	writeTestFile(t, dir, "mismatch.yaml", mismatchScenario)
	writeTestFile(t, dir, "broken.yaml", "name: broken\nassertions: []\n")

	out, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 3, resp.Data.Total)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)

	// Walk order is lexical.
	require.Len(t, resp.Data.Scenarios, 3)
	assert.Equal(t, "broken.yaml", resp.Data.Scenarios[0].Name)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.Equal(t, "literal", resp.Data.Scenarios[1].Name)
	assert.Equal(t, "mismatch", resp.Data.Scenarios[2].Name)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "literal.yaml", literalScenario)
	writeTestFile(t, dir, "mismatch.yaml", mismatchScenario)

	out, err := execute(t, "test", dir, "--filter", "lit*")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total\n")
	assert.NotContains(t, out, "mismatch")

	out, err = execute(t, "test", dir, "--filter", "none*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommandMissingDir(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandConformanceScenarios(t *testing.T) {
	out, err := execute(t, "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 8 passed, 0 failed, 8 total\n")
}
