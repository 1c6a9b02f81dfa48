// Package tiling lowers a typed program into an ordered list of symbolic
// operations and decomposes every matrix product into array-sized tiles.
//
// Operands always precede the operation that consumes them. Only
// TiledMatMul carries work for the array; the elementwise records exist so
// the code generator can track buffer names and shapes.
package tiling

import (
	"fmt"

	"github.com/roach88/systolic/internal/ir"
)

// Result names the buffer an operation writes and its declared shape.
// Unknown shapes lower to (0, 0).
type Result struct {
	Target string
	Shape  ir.Dims
}

// Output returns r.
func (r Result) Output() Result { return r }

// Operation is one symbolic instruction. The set is closed: LoadMatrix,
// LoadLiteral, TiledMatMul, Add, Sub, ElementMul, ScalarMul and Transpose.
type Operation interface {
	Output() Result
	tiledOp()
}

// LoadMatrix aliases Target to the named external or earlier buffer.
type LoadMatrix struct {
	Result
	Source string
}

// LoadLiteral embeds row-major literal data under Target.
type LoadLiteral struct {
	Result
	Data []float64
}

// TiledMatMul is one matrix product with its full tile plan.
// Result.Shape is the product shape (M, N).
type TiledMatMul struct {
	Result
	Left, Right           string
	LeftShape, RightShape ir.Dims
	Tiles                 []MatMulTile
	TileSize              int
}

// Add is elementwise Left + Right.
type Add struct {
	Result
	Left, Right string
}

// Sub is elementwise Left - Right.
type Sub struct {
	Result
	Left, Right string
}

// ElementMul is elementwise Left * Right.
type ElementMul struct {
	Result
	Left, Right string
}

// ScalarMul is Scalar * Matrix.
type ScalarMul struct {
	Result
	Scalar, Matrix string
}

// Transpose is Source transposed.
type Transpose struct {
	Result
	Source string
}

func (*LoadMatrix) tiledOp()  {}
func (*LoadLiteral) tiledOp() {}
func (*TiledMatMul) tiledOp() {}
func (*Add) tiledOp()         {}
func (*Sub) tiledOp()         {}
func (*ElementMul) tiledOp()  {}
func (*ScalarMul) tiledOp()   {}
func (*Transpose) tiledOp()   {}

// Describe renders op on one line for plan dumps and debug logs.
func Describe(op Operation) string {
	out := op.Output()
	switch o := op.(type) {
	case *LoadMatrix:
		return fmt.Sprintf("%s = load %s %s", out.Target, o.Source, out.Shape)
	case *LoadLiteral:
		return fmt.Sprintf("%s = literal %s", out.Target, out.Shape)
	case *TiledMatMul:
		return fmt.Sprintf("%s = matmul %s %s @ %s %s -> %s, %d tiles of %d",
			out.Target, o.Left, o.LeftShape, o.Right, o.RightShape, out.Shape, len(o.Tiles), o.TileSize)
	case *Add:
		return fmt.Sprintf("%s = add %s, %s %s", out.Target, o.Left, o.Right, out.Shape)
	case *Sub:
		return fmt.Sprintf("%s = sub %s, %s %s", out.Target, o.Left, o.Right, out.Shape)
	case *ElementMul:
		return fmt.Sprintf("%s = mul %s, %s %s", out.Target, o.Left, o.Right, out.Shape)
	case *ScalarMul:
		return fmt.Sprintf("%s = smul %s, %s %s", out.Target, o.Scalar, o.Matrix, out.Shape)
	case *Transpose:
		return fmt.Sprintf("%s = transpose %s %s", out.Target, o.Source, out.Shape)
	default:
		return fmt.Sprintf("%s = %T", out.Target, op)
	}
}
