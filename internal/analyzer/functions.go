package analyzer

import (
	"math"
	"strings"

	"github.com/roach88/systolic/internal/ir"
)

// Recognized library functions, after namespace stripping.
const (
	fnZeros     = "zeros"
	fnOnes      = "ones"
	fnEmpty     = "empty"
	fnEye       = "eye"
	fnIdentity  = "identity"
	fnTranspose = "transpose"
	fnMatMul    = "matmul"
	fnDot       = "dot"
)

var arity = map[string]int{
	fnZeros:     1,
	fnOnes:      1,
	fnEmpty:     1,
	fnEye:       1,
	fnIdentity:  1,
	fnTranspose: 1,
	fnMatMul:    2,
	fnDot:       2,
}

// FunctionName strips an optional "np." or "numpy." namespace.
func FunctionName(name string) string {
	for _, ns := range []string{"np.", "numpy."} {
		if rest, ok := strings.CutPrefix(name, ns); ok {
			return rest
		}
	}
	return name
}

func (a *Analyzer) call(c *ir.Call) (ir.TypedExpr, error) {
	fn := FunctionName(c.Name)
	want, ok := arity[fn]
	if !ok {
		return nil, ir.NewTypeError("unknown function %q", c.Name)
	}
	if len(c.Args) != want {
		return nil, ir.NewTypeError("%s expects %d %s, got %d", c.Name, want, plural(want, "argument"), len(c.Args))
	}

	switch fn {
	case fnZeros, fnOnes, fnEmpty:
		d, err := shapeArg(c.Name, c.Args[0])
		if err != nil {
			return nil, err
		}
		return ir.NewTypedMatrix(d, zeroRows(d)), nil

	case fnEye, fnIdentity:
		n, err := sizeArg(c.Name, c.Args[0])
		if err != nil {
			return nil, err
		}
		d := ir.D(n, n)
		if err := checkBounds(c.Name, d); err != nil {
			return nil, err
		}
		rows := zeroRows(d)
		for i := range n {
			rows[i][i] = 1
		}
		return ir.NewTypedMatrix(d, rows), nil

	case fnTranspose:
		return a.transpose(c.Args[0])

	default: // matmul, dot
		return a.matmul(c.Args[0], c.Args[1])
	}
}

// shapeArg reads a (rows, cols) tuple of non-negative integer literals.
func shapeArg(fn string, arg ir.Expr) (ir.Dims, error) {
	tuple, ok := arg.(*ir.Tuple)
	if !ok || len(tuple.Elements) != 2 {
		return ir.Dims{}, ir.NewTypeError("%s expects a shape tuple (rows, cols)", fn)
	}
	rows, err := sizeArg(fn, tuple.Elements[0])
	if err != nil {
		return ir.Dims{}, err
	}
	cols, err := sizeArg(fn, tuple.Elements[1])
	if err != nil {
		return ir.Dims{}, err
	}
	d := ir.D(rows, cols)
	if err := checkBounds(fn, d); err != nil {
		return ir.Dims{}, err
	}
	return d, nil
}

// checkBounds rejects shapes too large to materialize as buffers.
func checkBounds(site string, d ir.Dims) error {
	if !d.Bounded() {
		return ir.NewTypeError("%s: shape %s exceeds %d elements", site, d, ir.MaxElements)
	}
	return nil
}

// checkShape applies checkBounds to a known matrix shape.
func checkShape(site string, s ir.Shape) error {
	if d, ok := s.Dims(); ok {
		return checkBounds(site, d)
	}
	return nil
}

// sizeArg reads a non-negative integer literal.
func sizeArg(fn string, arg ir.Expr) (int, error) {
	num, ok := arg.(*ir.Number)
	if !ok {
		return 0, ir.NewTypeError("%s expects a numeric literal dimension", fn)
	}
	v := num.Value
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, ir.NewTypeError("%s dimension must be a non-negative integer, got %v", fn, v)
	}
	return int(v), nil
}

func zeroRows(d ir.Dims) [][]float64 {
	rows := make([][]float64, d.Rows)
	for r := range rows {
		rows[r] = make([]float64, d.Cols)
	}
	return rows
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
