package testutil

import (
	"log/slog"

	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
)

// LiteralMatMul is C = [[1, 2], [3, 4]] @ [[5, 6], [7, 8]].
func LiteralMatMul() ir.Program {
	return ir.Program{Statements: []ir.Statement{
		&ir.Assignment{
			Target: "C",
			Value: &ir.MatMul{
				Left:  &ir.MatrixLiteral{Rows: [][]float64{{1, 2}, {3, 4}}},
				Right: &ir.MatrixLiteral{Rows: [][]float64{{5, 6}, {7, 8}}},
			},
		},
	}}
}

// MatMul is target = left @ right over variables.
func MatMul(target, left, right string) ir.Program {
	return ir.Program{Statements: []ir.Statement{
		&ir.Assignment{
			Target: target,
			Value:  &ir.MatMul{Left: &ir.Variable{Name: left}, Right: &ir.Variable{Name: right}},
		},
	}}
}

// Shapes builds a binding table from alternating names and dims.
func Shapes(pairs ...any) map[string]ir.Dims {
	shapes := make(map[string]ir.Dims, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		shapes[pairs[i].(string)] = pairs[i+1].(ir.Dims)
	}
	return shapes
}

// TwoPassProgram is a hand-built program with one Initialize and one Final
// pass on a 2x2 array.
func TwoPassProgram() *hardware.Program {
	p := hardware.NewProgram(hardware.NewConfig(2, 8, 32))
	passes := []hardware.Pass{
		{
			ID:          0,
			Description: "C[0:2, 0:2] += A[0:2, 0:2] @ B[0:2, 0:2]",
			MatrixA:     []int64{1, 2, 3, 4},
			AShape:      ir.D(2, 2),
			MatrixB:     []int64{5, 7, 6, 8},
			BShape:      ir.D(2, 2),
			OutputShape: ir.D(2, 2),
			OutputTile:  hardware.NewTileCoord(0, 0, 2),
			Operation:   hardware.OpInitialize,
		},
		{
			ID:          1,
			Description: "C[0:2, 0:2] += A[0:2, 2:3] @ B[2:3, 0:2]",
			MatrixA:     []int64{9, 0, -1, 0},
			AShape:      ir.D(2, 1),
			MatrixB:     []int64{1, 0, 2, 0},
			BShape:      ir.D(1, 2),
			OutputShape: ir.D(2, 2),
			OutputTile:  hardware.NewTileCoord(0, 0, 2),
			Operation:   hardware.OpFinal,
		},
	}
	for _, pass := range passes {
		if err := p.AddPass(pass); err != nil {
			panic(err)
		}
	}
	p.SetOutputShape(ir.D(2, 2))
	p.Finalize()
	return p
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
