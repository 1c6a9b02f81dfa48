package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/systolic/internal/ir"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", `
name: test_scenario
description: "Test scenario for validation"
source: "C = A @ B"
shapes:
  A: [2, 3]
  B: [3, 4]
array:
  size: 4
  data_width: 16
strict: true
assertions:
  - type: pass_count
    value: 1
  - type: output_shape
    shape: [2, 4]
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", s.Name)
	assert.Equal(t, "C = A @ B", s.Source)
	assert.Equal(t, map[string]ir.Dims{"A": ir.D(2, 3), "B": ir.D(3, 4)}, s.Shapes)
	assert.Equal(t, 4, s.Array.Size)
	assert.Equal(t, 16, s.Array.DataWidth)
	assert.True(t, s.Strict)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, 1, *s.Assertions[0].Value)
	assert.Equal(t, ir.D(2, 4), *s.Assertions[1].Shape)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "s.yaml", `
name: typo
description: d
source: A
assertion:
  - type: pass_count
    value: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Validation(t *testing.T) {
	base := "name: n\ndescription: d\nsource: A\n"
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing name", "description: d\nsource: A\nassertions: [{type: pass_count, value: 0}]\n", "name is required"},
		{"missing description", "name: n\nsource: A\nassertions: [{type: pass_count, value: 0}]\n", "description is required"},
		{"missing source", "name: n\ndescription: d\nassertions: [{type: pass_count, value: 0}]\n", "source is required"},
		{"no assertions", base, "assertions list is required"},
		{"missing type", base + "assertions: [{value: 1}]\n", "assertions[0]: type is required"},
		{"missing value", base + "assertions: [{type: total_cycles}]\n", "value is required for total_cycles"},
		{"negative value", base + "assertions: [{type: pass_count, value: -1}]\n", "value must be non-negative"},
		{"missing shape", base + "assertions: [{type: output_shape}]\n", "shape is required"},
		{"missing operations", base + "assertions: [{type: pass_operations}]\n", "operations list is required"},
		{"bad operand", base + "assertions: [{type: pass_buffer, operand: c, values: [1]}]\n", `operand must be "a" or "b"`},
		{"missing values", base + "assertions: [{type: pass_buffer, operand: a}]\n", "values are required"},
		{"missing code", base + "assertions: [{type: error_code}]\n", "code is required"},
		{"unknown type", base + "assertions: [{type: trace_order}]\n", `unknown assertion type "trace_order"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioDir(t *testing.T) {
	dir := t.TempDir()
	body := "description: d\nsource: A\nassertions: [{type: pass_count, value: 0}]\n"
	writeScenario(t, dir, "b.yml", "name: b\n"+body)
	writeScenario(t, dir, "a.yaml", "name: a\n"+body)
	writeScenario(t, dir, "README.md", "not a scenario")

	scenarios, err := LoadScenarioDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)

	writeScenario(t, dir, "c.yaml", "name: c\n")
	_, err = LoadScenarioDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")

	_, err = LoadScenarioDir(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
