package ir

import (
	"encoding/json"
	"fmt"
)

// Dims is a concrete (rows, cols) pair.
//
// Dims serializes as a two-element array, [rows, cols], in both JSON and
// YAML so exported programs keep the tuple layout downstream tooling expects.
type Dims struct {
	Rows int
	Cols int
}

// D is shorthand for Dims{Rows: rows, Cols: cols}.
func D(rows, cols int) Dims {
	return Dims{Rows: rows, Cols: cols}
}

// MaxElements bounds rows*cols of every matrix shape a compilation accepts.
const MaxElements = 1 << 24

// Size returns rows*cols.
func (d Dims) Size() int {
	return d.Rows * d.Cols
}

// Bounded reports whether both dimensions are non-negative and the element
// count is at most MaxElements. It never computes an overflowing product.
func (d Dims) Bounded() bool {
	if d.Rows < 0 || d.Cols < 0 || d.Rows > MaxElements || d.Cols > MaxElements {
		return false
	}
	return d.Rows == 0 || d.Cols <= MaxElements/d.Rows
}

// T returns the transposed dimensions.
func (d Dims) T() Dims {
	return Dims{Rows: d.Cols, Cols: d.Rows}
}

func (d Dims) String() string {
	return fmt.Sprintf("(%d, %d)", d.Rows, d.Cols)
}

// MarshalJSON implements json.Marshaler.
func (d Dims) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{d.Rows, d.Cols})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dims) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("dims: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("dims: expected [rows, cols], got %d elements", len(pair))
	}
	d.Rows, d.Cols = pair[0], pair[1]
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Dims) MarshalYAML() (any, error) {
	return []int{d.Rows, d.Cols}, nil
}

// UnmarshalYAML implements the obsolete yaml.Unmarshaler callback form.
func (d *Dims) UnmarshalYAML(unmarshal func(any) error) error {
	var pair []int
	if err := unmarshal(&pair); err != nil {
		return fmt.Errorf("dims: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("dims: expected [rows, cols], got %d elements", len(pair))
	}
	d.Rows, d.Cols = pair[0], pair[1]
	return nil
}

// ShapeKind tags the Shape union.
type ShapeKind uint8

const (
	// ShapeUnknown means no information is available.
	ShapeUnknown ShapeKind = iota
	// ShapeScalar is a single number.
	ShapeScalar
	// ShapeMatrix is a rows x cols matrix.
	ShapeMatrix
)

// Shape is the inferred shape of an expression: Scalar, Matrix(rows, cols)
// or Unknown. The zero value is Unknown.
type Shape struct {
	Kind ShapeKind
	Rows int
	Cols int
}

// Unknown returns the Unknown shape.
func Unknown() Shape {
	return Shape{}
}

// Scalar returns the Scalar shape.
func Scalar() Shape {
	return Shape{Kind: ShapeScalar}
}

// Matrix returns Matrix(rows, cols).
func Matrix(rows, cols int) Shape {
	return Shape{Kind: ShapeMatrix, Rows: rows, Cols: cols}
}

// MatrixOf returns the Matrix shape of d.
func MatrixOf(d Dims) Shape {
	return Matrix(d.Rows, d.Cols)
}

func (s Shape) IsMatrix() bool  { return s.Kind == ShapeMatrix }
func (s Shape) IsScalar() bool  { return s.Kind == ShapeScalar }
func (s Shape) IsUnknown() bool { return s.Kind == ShapeUnknown }

// Dims returns the concrete dimensions of s. Scalars report (1, 1);
// Unknown reports false.
func (s Shape) Dims() (Dims, bool) {
	switch s.Kind {
	case ShapeMatrix:
		return Dims{Rows: s.Rows, Cols: s.Cols}, true
	case ShapeScalar:
		return Dims{Rows: 1, Cols: 1}, true
	default:
		return Dims{}, false
	}
}

// DimsOrZero returns Dims() or (0, 0) when the shape is Unknown.
func (s Shape) DimsOrZero() Dims {
	d, _ := s.Dims()
	return d
}

func (s Shape) String() string {
	switch s.Kind {
	case ShapeScalar:
		return "scalar"
	case ShapeMatrix:
		return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
	default:
		return "unknown"
	}
}
