package tiling

import (
	"fmt"
	"strconv"

	"github.com/roach88/systolic/internal/ir"
)

// Planner lowers typed statements for one array size. Intermediate buffer
// names come from a counter owned by the planner, so they are unique for
// the planner's lifetime. Build one per compilation.
type Planner struct {
	size int
	seq  int
}

// New returns a planner for an arraySize x arraySize array.
func New(arraySize int) *Planner {
	return &Planner{size: arraySize}
}

// PlanProgram lowers every statement in order.
func (p *Planner) PlanProgram(prog ir.TypedProgram) ([]Operation, error) {
	var ops []Operation
	for _, stmt := range prog.Statements {
		stmtOps, err := p.PlanStatement(stmt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, stmtOps...)
	}
	return ops, nil
}

// PlanStatement lowers one statement. Assignments write the user's target
// name; bare expressions get a generated "$n" name that cannot collide
// with an identifier.
func (p *Planner) PlanStatement(stmt ir.TypedStatement) ([]Operation, error) {
	if p.size < 1 {
		return nil, ir.NewTilingError("array size must be positive, got %d", p.size)
	}
	target := stmt.Target
	if target == "" {
		target = "$" + strconv.Itoa(p.next())
	}
	return p.lower(nil, stmt.Value, target)
}

func (p *Planner) next() int {
	p.seq++
	return p.seq
}

// child derives a fresh intermediate name: parent.role<n>.
func (p *Planner) child(parent, role string) string {
	return fmt.Sprintf("%s.%s%d", parent, role, p.next())
}

// lower appends the operations computing expr into target.
func (p *Planner) lower(ops []Operation, expr ir.TypedExpr, target string) ([]Operation, error) {
	res := Result{Target: target, Shape: expr.Shape().DimsOrZero()}

	switch e := expr.(type) {
	case *ir.TypedVariable:
		return append(ops, &LoadMatrix{Result: res, Source: e.Name}), nil

	case *ir.TypedNumber:
		return append(ops, &LoadLiteral{Result: Result{Target: target, Shape: ir.D(1, 1)}, Data: []float64{e.Value}}), nil

	case *ir.TypedMatrix:
		return append(ops, &LoadLiteral{Result: Result{Target: target, Shape: e.Dims}, Data: e.Flatten()}), nil

	case *ir.TypedMatMul:
		return p.lowerMatMul(ops, e, target)

	case *ir.TypedAdd:
		ops, l, r, err := p.lowerPair(ops, e.Left, e.Right, target, "add_left", "add_right")
		if err != nil {
			return nil, err
		}
		return append(ops, &Add{Result: res, Left: l, Right: r}), nil

	case *ir.TypedSub:
		ops, l, r, err := p.lowerPair(ops, e.Left, e.Right, target, "sub_left", "sub_right")
		if err != nil {
			return nil, err
		}
		return append(ops, &Sub{Result: res, Left: l, Right: r}), nil

	case *ir.TypedElementMul:
		ops, l, r, err := p.lowerPair(ops, e.Left, e.Right, target, "mul_left", "mul_right")
		if err != nil {
			return nil, err
		}
		return append(ops, &ElementMul{Result: res, Left: l, Right: r}), nil

	case *ir.TypedScalarMul:
		ops, s, m, err := p.lowerPair(ops, e.Scalar, e.Matrix, target, "smul_scalar", "smul_matrix")
		if err != nil {
			return nil, err
		}
		return append(ops, &ScalarMul{Result: res, Scalar: s, Matrix: m}), nil

	case *ir.TypedTranspose:
		inner := p.child(target, "transpose_inner")
		ops, err := p.lower(ops, e.Operand, inner)
		if err != nil {
			return nil, err
		}
		return append(ops, &Transpose{Result: res, Source: inner}), nil

	default:
		return nil, ir.NewTilingError("unsupported typed expression %T", expr)
	}
}

func (p *Planner) lowerPair(ops []Operation, left, right ir.TypedExpr, target, leftRole, rightRole string) ([]Operation, string, string, error) {
	l := p.child(target, leftRole)
	ops, err := p.lower(ops, left, l)
	if err != nil {
		return nil, "", "", err
	}
	r := p.child(target, rightRole)
	ops, err = p.lower(ops, right, r)
	if err != nil {
		return nil, "", "", err
	}
	return ops, l, r, nil
}

// lowerMatMul re-validates operand shapes, lowers both operands, then
// appends the tiled product.
func (p *Planner) lowerMatMul(ops []Operation, e *ir.TypedMatMul, target string) ([]Operation, error) {
	ls, rs := e.Left.Shape(), e.Right.Shape()
	if !ls.IsMatrix() {
		return nil, ir.NewTilingError("matmul %s: left operand shape is %s, need a known matrix", target, ls)
	}
	if !rs.IsMatrix() {
		return nil, ir.NewTilingError("matmul %s: right operand shape is %s, need a known matrix", target, rs)
	}
	if ls.Cols != rs.Rows {
		return nil, ir.NewTilingError("matmul %s: inner dimensions must match: %d != %d", target, ls.Cols, rs.Rows)
	}
	m, k, n := ls.Rows, ls.Cols, rs.Cols

	ops, l, r, err := p.lowerPair(ops, e.Left, e.Right, target, "left", "right")
	if err != nil {
		return nil, err
	}
	return append(ops, &TiledMatMul{
		Result:     Result{Target: target, Shape: ir.D(m, n)},
		Left:       l,
		Right:      r,
		LeftShape:  ir.D(m, k),
		RightShape: ir.D(k, n),
		Tiles:      Tiles(m, k, n, p.size),
		TileSize:   p.size,
	}), nil
}
