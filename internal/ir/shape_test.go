package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestShapeZeroValueIsUnknown(t *testing.T) {
	var s Shape
	assert.True(t, s.IsUnknown())
	assert.NotEqual(t, Matrix(0, 0), s, "Unknown must be distinct from a zero-sized matrix")

	_, ok := s.Dims()
	assert.False(t, ok)
}

func TestShapeDims(t *testing.T) {
	d, ok := Matrix(2, 3).Dims()
	require.True(t, ok)
	assert.Equal(t, D(2, 3), d)

	d, ok = Scalar().Dims()
	require.True(t, ok)
	assert.Equal(t, D(1, 1), d)

	assert.Equal(t, D(0, 0), Unknown().DimsOrZero())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "(2, 3)", Matrix(2, 3).String())
	assert.Equal(t, "scalar", Scalar().String())
	assert.Equal(t, "unknown", Unknown().String())
}

func TestDimsJSON(t *testing.T) {
	data, err := json.Marshal(D(4, 6))
	require.NoError(t, err)
	assert.Equal(t, "[4,6]", string(data))

	var d Dims
	require.NoError(t, json.Unmarshal([]byte("[2,5]"), &d))
	assert.Equal(t, D(2, 5), d)

	assert.Error(t, json.Unmarshal([]byte("[1,2,3]"), &d))
}

func TestDimsYAML(t *testing.T) {
	data, err := yaml.Marshal(map[string]Dims{"a": D(3, 4)})
	require.NoError(t, err)

	var back map[string]Dims
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, D(3, 4), back["a"])

	var bad map[string]Dims
	assert.Error(t, yaml.Unmarshal([]byte("a: [1]\n"), &bad))
}

func TestMatrixLiteralDims(t *testing.T) {
	lit := &MatrixLiteral{Rows: [][]float64{{1, 2, 3}, {4, 5, 6}}}
	assert.Equal(t, D(2, 3), lit.Dims())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, lit.Flatten())

	empty := &MatrixLiteral{}
	assert.Equal(t, D(0, 0), empty.Dims())
}

func TestNewTypedMatrixShape(t *testing.T) {
	m := NewTypedMatrix(D(3, 2), [][]float64{{1, 2}, {3, 4}, {5, 6}})
	assert.Equal(t, Matrix(3, 2), m.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, m.Flatten())

	empty := NewTypedMatrix(D(0, 3), [][]float64{})
	assert.Equal(t, Matrix(0, 3), empty.Shape())
	assert.Equal(t, D(0, 3), empty.Dims)
	assert.Empty(t, empty.Flatten())
}

func TestDimsBounded(t *testing.T) {
	tests := []struct {
		name string
		d    Dims
		want bool
	}{
		{"empty", D(0, 0), true},
		{"zero rows", D(0, MaxElements), true},
		{"small", D(4, 6), true},
		{"at limit", D(4096, 4096), true},
		{"over limit", D(4097, 4096), false},
		{"single huge dim", D(1, MaxElements+1), false},
		{"overflowing product", D(3037000500, 3037000500), false},
		{"negative", D(-1, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Bounded())
		})
	}
}
