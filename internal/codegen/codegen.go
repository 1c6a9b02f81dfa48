// Package codegen executes a tiled operation list against a table of named
// buffers and synthesizes the quantized, padded hardware passes.
//
// Only matrix products produce passes. Elementwise operations register a
// zero placeholder of their declared shape so later operations can refer
// to them.
package codegen

import (
	"fmt"

	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
	"github.com/roach88/systolic/internal/tiling"
)

// quantScale is the fixed-point scale applied to every operand element.
const quantScale = 1.0

// buffer is a flat row-major matrix.
type buffer struct {
	data []float64
	dims ir.Dims
}

func placeholder(d ir.Dims) buffer {
	return buffer{data: make([]float64, d.Size()), dims: d}
}

// at returns element (r, c) for row width w, or 0 past the stored data.
func (b buffer) at(r, c, w int) float64 {
	idx := r*w + c
	if idx < 0 || idx >= len(b.data) {
		return 0
	}
	return b.data[idx]
}

// slice copies the sub-block [rows) x [cols) in row-major order.
func (b buffer) slice(rows, cols tiling.Range, w int) []float64 {
	out := make([]float64, 0, rows.Len()*cols.Len())
	for r := rows.Start; r < rows.End; r++ {
		for c := cols.Start; c < cols.End; c++ {
			out = append(out, b.at(r, c, w))
		}
	}
	return out
}

// Generator turns one compilation's operation list into a hardware program.
// Its buffer table and pass counter are reset on every Generate call.
type Generator struct {
	cfg     hardware.Config
	buffers map[string]buffer
	nextID  int
}

// New returns a generator for cfg.
func New(cfg hardware.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate runs ops in order and returns the finalized program.
// Any inconsistency in the plan is a CODEGEN_ERROR; nothing is truncated
// or substituted.
func (g *Generator) Generate(ops []tiling.Operation) (*hardware.Program, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	g.buffers = make(map[string]buffer)
	g.nextID = 0

	prog := hardware.NewProgram(g.cfg)
	for _, op := range ops {
		if err := g.apply(prog, op); err != nil {
			return nil, err
		}
	}
	prog.Finalize()
	return prog, nil
}

// Buffer reports the shape registered under name by the last Generate.
func (g *Generator) Buffer(name string) (ir.Dims, bool) {
	b, ok := g.buffers[name]
	return b.dims, ok
}

func (g *Generator) apply(prog *hardware.Program, op tiling.Operation) error {
	out := op.Output()
	switch o := op.(type) {
	case *tiling.LoadMatrix:
		if src, ok := g.buffers[o.Source]; ok {
			g.buffers[out.Target] = src
		} else {
			g.buffers[out.Target] = placeholder(out.Shape)
		}
		return nil

	case *tiling.LoadLiteral:
		if len(o.Data) != out.Shape.Size() {
			return ir.NewCodegenError("literal %s has %d values, want %d for %s", out.Target, len(o.Data), out.Shape.Size(), out.Shape)
		}
		g.buffers[out.Target] = buffer{data: o.Data, dims: out.Shape}
		return nil

	case *tiling.TiledMatMul:
		return g.matmul(prog, o)

	case *tiling.Add, *tiling.Sub, *tiling.ElementMul, *tiling.ScalarMul, *tiling.Transpose:
		g.buffers[out.Target] = placeholder(out.Shape)
		prog.SetOutputShape(out.Shape)
		return nil

	default:
		return ir.NewCodegenError("unsupported operation %T for %s", op, out.Target)
	}
}

func (g *Generator) operand(name string, d ir.Dims) buffer {
	if b, ok := g.buffers[name]; ok {
		return b
	}
	return placeholder(d)
}

func (g *Generator) matmul(prog *hardware.Program, op *tiling.TiledMatMul) error {
	s := g.cfg.ArraySize
	if op.TileSize != s {
		return ir.NewCodegenError("matmul %s planned for tile size %d, array size is %d", op.Target, op.TileSize, s)
	}
	if op.LeftShape.Cols != op.RightShape.Rows || op.Shape != ir.D(op.LeftShape.Rows, op.RightShape.Cols) {
		return ir.NewCodegenError("matmul %s: inconsistent shapes %s @ %s -> %s", op.Target, op.LeftShape, op.RightShape, op.Shape)
	}

	left := g.operand(op.Left, op.LeftShape)
	right := g.operand(op.Right, op.RightShape)

	for _, tile := range op.Tiles {
		if err := checkTile(op, tile); err != nil {
			return err
		}
		pass := g.pass(tile, left, op.LeftShape, right, op.RightShape)
		if err := prog.AddPass(pass); err != nil {
			return err
		}
	}

	g.buffers[op.Target] = placeholder(op.Shape)
	prog.SetOutputShape(op.Shape)
	return nil
}

func checkTile(op *tiling.TiledMatMul, t tiling.MatMulTile) error {
	s := op.TileSize
	bad := func(what string, r tiling.Range, limit int) error {
		return ir.NewCodegenError("matmul %s tile (%d, %d, %d): %s range [%d, %d) outside [0, %d) or wider than %d",
			op.Target, t.OutputRow, t.OutputCol, t.KIndex, what, r.Start, r.End, limit, s)
	}
	checks := []struct {
		what  string
		r     tiling.Range
		limit int
	}{
		{"A rows", t.ARows, op.LeftShape.Rows},
		{"A cols", t.ACols, op.LeftShape.Cols},
		{"B rows", t.BRows, op.RightShape.Rows},
		{"B cols", t.BCols, op.RightShape.Cols},
	}
	for _, c := range checks {
		if c.r.Start < 0 || c.r.End > c.limit || c.r.Len() < 0 || c.r.Len() > s {
			return bad(c.what, c.r, c.limit)
		}
	}
	if t.ACols != t.BRows {
		return ir.NewCodegenError("matmul %s tile (%d, %d, %d): contraction ranges differ", op.Target, t.OutputRow, t.OutputCol, t.KIndex)
	}
	return nil
}

// pass slices, quantizes and pads one tile. The left operand stays
// row-major; the right operand is laid out column-major.
func (g *Generator) pass(t tiling.MatMulTile, left buffer, ls ir.Dims, right buffer, rs ir.Dims) hardware.Pass {
	s := g.cfg.ArraySize
	aRows, aCols := t.ARows.Len(), t.ACols.Len()
	bRows, bCols := t.BRows.Len(), t.BCols.Len()

	a := hardware.Quantize(left.slice(t.ARows, t.ACols, ls.Cols), quantScale, g.cfg)
	b := hardware.Quantize(right.slice(t.BRows, t.BCols, rs.Cols), quantScale, g.cfg)

	id := g.nextID
	g.nextID++

	return hardware.Pass{
		ID: id,
		Description: fmt.Sprintf("C[%d:%d, %d:%d] += A[%d:%d, %d:%d] @ B[%d:%d, %d:%d]",
			t.OutputRow*s, (t.OutputRow+1)*s, t.OutputCol*s, (t.OutputCol+1)*s,
			t.ARows.Start, t.ARows.End, t.ACols.Start, t.ACols.End,
			t.BRows.Start, t.BRows.End, t.BCols.Start, t.BCols.End),
		MatrixA:     hardware.Pad(a, aRows, aCols, s, s),
		AShape:      ir.D(aRows, aCols),
		MatrixB:     hardware.RowToColumnMajor(hardware.Pad(b, bRows, bCols, s, s), s, s),
		BShape:      ir.D(bRows, bCols),
		OutputShape: ir.D(min(s, aRows), min(s, bCols)),
		OutputTile:  hardware.NewTileCoord(t.OutputRow, t.OutputCol, s),
		Operation:   hardware.OperationFor(t.IsFirstK, t.IsLastK),
	}
}
