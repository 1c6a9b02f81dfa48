package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/systolic/internal/ir"
)

func variable(name string, r, c int) ir.TypedExpr {
	return ir.NewTypedVariable(name, ir.Matrix(r, c))
}

func targets(ops []Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Output().Target
	}
	return out
}

func TestPlanMatMul(t *testing.T) {
	stmt := ir.TypedStatement{
		Target: "C",
		Value:  ir.NewTypedMatMul(variable("A", 4, 6), variable("B", 6, 8), ir.Matrix(4, 8)),
	}

	ops, err := New(3).PlanStatement(stmt)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, &LoadMatrix{Result: Result{Target: "C.left1", Shape: ir.D(4, 6)}, Source: "A"}, ops[0])
	assert.Equal(t, &LoadMatrix{Result: Result{Target: "C.right2", Shape: ir.D(6, 8)}, Source: "B"}, ops[1])

	mm, ok := ops[2].(*TiledMatMul)
	require.True(t, ok)
	assert.Equal(t, "C", mm.Target)
	assert.Equal(t, ir.D(4, 8), mm.Shape)
	assert.Equal(t, "C.left1", mm.Left)
	assert.Equal(t, "C.right2", mm.Right)
	assert.Equal(t, ir.D(4, 6), mm.LeftShape)
	assert.Equal(t, ir.D(6, 8), mm.RightShape)
	assert.Equal(t, 3, mm.TileSize)
	assert.Len(t, mm.Tiles, 12)
}

func TestPlanOperandsPrecedeConsumers(t *testing.T) {
	// D = (A @ B).T + 2 * E
	a := variable("A", 2, 3)
	b := variable("B", 3, 2)
	mm := ir.NewTypedMatMul(a, b, ir.Matrix(2, 2))
	tr := ir.NewTypedTranspose(mm, ir.Matrix(2, 2))
	smul := ir.NewTypedScalarMul(ir.NewTypedNumber(2), variable("E", 2, 2), ir.Matrix(2, 2))
	add := ir.NewTypedAdd(tr, smul, ir.Matrix(2, 2))

	ops, err := New(3).PlanStatement(ir.TypedStatement{Target: "D", Value: add})
	require.NoError(t, err)

	defined := map[string]bool{}
	for _, op := range ops {
		var inputs []string
		switch o := op.(type) {
		case *TiledMatMul:
			inputs = []string{o.Left, o.Right}
		case *Add:
			inputs = []string{o.Left, o.Right}
		case *ScalarMul:
			inputs = []string{o.Scalar, o.Matrix}
		case *Transpose:
			inputs = []string{o.Source}
		}
		for _, in := range inputs {
			assert.True(t, defined[in], "%s consumed before it was produced", in)
		}
		target := op.Output().Target
		assert.False(t, defined[target], "%s produced twice", target)
		defined[target] = true
	}

	assert.Equal(t, "D", ops[len(ops)-1].Output().Target)
	_, ok := ops[len(ops)-1].(*Add)
	assert.True(t, ok)
}

func TestPlanLiterals(t *testing.T) {
	lit := ir.NewTypedMatrix(ir.D(2, 3), [][]float64{{1, 2, 3}, {4, 5, 6}})
	ops, err := New(3).PlanStatement(ir.TypedStatement{Target: "M", Value: lit})
	require.NoError(t, err)
	assert.Equal(t, []Operation{
		&LoadLiteral{Result: Result{Target: "M", Shape: ir.D(2, 3)}, Data: []float64{1, 2, 3, 4, 5, 6}},
	}, ops)

	ops, err = New(3).PlanStatement(ir.TypedStatement{Target: "k", Value: ir.NewTypedNumber(2.5)})
	require.NoError(t, err)
	assert.Equal(t, []Operation{
		&LoadLiteral{Result: Result{Target: "k", Shape: ir.D(1, 1)}, Data: []float64{2.5}},
	}, ops)
}

func TestPlanUnknownShapeLowersToZero(t *testing.T) {
	v := ir.NewTypedVariable("X", ir.Unknown())
	ops, err := New(3).PlanStatement(ir.TypedStatement{Target: "Y", Value: ir.NewTypedTranspose(v, ir.Unknown())})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, ir.Dims{}, ops[0].Output().Shape)
	assert.Equal(t, ir.Dims{}, ops[1].Output().Shape)
}

func TestPlanNamesAreUnique(t *testing.T) {
	// The same subexpression shape repeated deep in a tree.
	a := variable("A", 3, 3)
	expr := ir.TypedExpr(a)
	for range 5 {
		expr = ir.NewTypedMatMul(expr, ir.NewTypedTranspose(a, ir.Matrix(3, 3)), ir.Matrix(3, 3))
	}

	p := New(3)
	ops, err := p.PlanProgram(ir.TypedProgram{Statements: []ir.TypedStatement{
		{Value: expr},
		{Value: expr},
		{Target: "Z", Value: expr},
	}})
	require.NoError(t, err)

	names := targets(ops)
	seen := map[string]bool{}
	for _, name := range names {
		if name == "Z" {
			continue
		}
		assert.False(t, seen[name], "duplicate target %q", name)
		seen[name] = true
	}
	assert.Contains(t, names, "$1")
}

func TestPlanBareExpressionTarget(t *testing.T) {
	ops, err := New(3).PlanStatement(ir.TypedStatement{Value: variable("A", 2, 2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"$1"}, targets(ops))
}

func TestPlanTilingErrors(t *testing.T) {
	tests := []struct {
		name string
		expr ir.TypedExpr
		msg  string
	}{
		{
			"unknown left",
			ir.NewTypedMatMul(ir.NewTypedVariable("X", ir.Unknown()), variable("B", 2, 2), ir.Unknown()),
			"TILING_ERROR: matmul C: left operand shape is unknown, need a known matrix",
		},
		{
			"scalar right",
			ir.NewTypedMatMul(variable("A", 2, 2), ir.NewTypedNumber(3), ir.Unknown()),
			"TILING_ERROR: matmul C: right operand shape is scalar, need a known matrix",
		},
		{
			"inner mismatch",
			ir.NewTypedMatMul(variable("A", 2, 3), variable("B", 4, 2), ir.Matrix(2, 2)),
			"TILING_ERROR: matmul C: inner dimensions must match: 3 != 4",
		},
		{
			"nested mismatch",
			ir.NewTypedAdd(
				variable("A", 2, 2),
				ir.NewTypedMatMul(variable("A", 2, 3), variable("B", 4, 2), ir.Matrix(2, 2)),
				ir.Matrix(2, 2),
			),
			"TILING_ERROR: matmul C.add_right2: inner dimensions must match: 3 != 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(3).PlanStatement(ir.TypedStatement{Target: "C", Value: tt.expr})
			require.Error(t, err)
			assert.True(t, ir.IsTilingError(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestPlanRejectsBadArraySize(t *testing.T) {
	_, err := New(0).PlanStatement(ir.TypedStatement{Target: "A", Value: variable("A", 1, 1)})
	require.Error(t, err)
	assert.True(t, ir.IsTilingError(err))
}

func TestDescribe(t *testing.T) {
	stmt := ir.TypedStatement{
		Target: "C",
		Value:  ir.NewTypedMatMul(variable("A", 6, 6), variable("B", 6, 6), ir.Matrix(6, 6)),
	}
	ops, err := New(3).PlanStatement(stmt)
	require.NoError(t, err)

	assert.Equal(t, "C.left1 = load A (6, 6)", Describe(ops[0]))
	assert.Equal(t, "C = matmul C.left1 (6, 6) @ C.right2 (6, 6) -> (6, 6), 8 tiles of 3", Describe(ops[2]))
}
