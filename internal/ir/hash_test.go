package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterminism(t *testing.T) {
	v := map[string]any{
		"passes":       []any{map[string]any{"id": 0, "matrix_a": []int64{1, 2, 0}}},
		"total_cycles": 8,
	}

	h1, err := ContentHash(DomainProgram, v)
	require.NoError(t, err)
	h2, err := ContentHash(DomainProgram, v)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ContentHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestContentHashChangesWithInput(t *testing.T) {
	h1, err := ContentHash(DomainProgram, map[string]any{"total_cycles": 8})
	require.NoError(t, err)
	h2, err := ContentHash(DomainProgram, map[string]any{"total_cycles": 16})
	require.NoError(t, err)
	h3, err := ContentHash("systolic/other/v1", map[string]any{"total_cycles": 8})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "different values should hash differently")
	assert.NotEqual(t, h1, h3, "different domains should hash differently")
}

func TestContentHashRejectsFloats(t *testing.T) {
	_, err := ContentHash(DomainProgram, map[string]any{"scale": 1.0})
	require.Error(t, err)
}
