// Package analyzer infers the shape of every subexpression of a program and
// produces the typed tree consumed by the tiling planner.
//
// Analysis is a single forward pass. Each assignment binds its target for
// the statements that follow it; there are no forward references. The first
// incompatibility aborts analysis with a *ir.CompileError.
package analyzer

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/roach88/systolic/internal/ir"
)

// Analyzer owns the binding table of one compilation. It is not safe for
// concurrent use; build one per compilation.
type Analyzer struct {
	shapes map[string]ir.Shape
	strict bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStrictVariables makes a reference to an unbound name fail with
// UNDEFINED_VARIABLE instead of resolving to the Unknown shape.
func WithStrictVariables() Option {
	return func(a *Analyzer) {
		a.strict = true
	}
}

// New returns an Analyzer seeded with external shape bindings. The map is
// copied; later changes to it are not observed.
func New(external map[string]ir.Dims, opts ...Option) *Analyzer {
	a := &Analyzer{
		shapes: lo.MapValues(external, func(d ir.Dims, _ string) ir.Shape {
			return ir.MatrixOf(d)
		}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Shapes returns a copy of the current binding table, including names bound
// by assignments analyzed so far.
func (a *Analyzer) Shapes() map[string]ir.Shape {
	return lo.Assign(a.shapes)
}

// Analyze types every statement of prog in order.
func (a *Analyzer) Analyze(prog ir.Program) (ir.TypedProgram, error) {
	out := ir.TypedProgram{Statements: make([]ir.TypedStatement, 0, len(prog.Statements))}
	for _, stmt := range prog.Statements {
		typed, err := a.AnalyzeStatement(stmt)
		if err != nil {
			return ir.TypedProgram{}, err
		}
		out.Statements = append(out.Statements, typed)
	}
	return out, nil
}

// AnalyzeStatement types one statement. An assignment binds its target to
// the inferred shape, Unknown included.
func (a *Analyzer) AnalyzeStatement(stmt ir.Statement) (ir.TypedStatement, error) {
	switch s := stmt.(type) {
	case *ir.Assignment:
		value, err := a.AnalyzeExpr(s.Value)
		if err != nil {
			return ir.TypedStatement{}, err
		}
		a.shapes[s.Target] = value.Shape()
		return ir.TypedStatement{Target: s.Target, Value: value}, nil
	case *ir.ExprStmt:
		value, err := a.AnalyzeExpr(s.Value)
		if err != nil {
			return ir.TypedStatement{}, err
		}
		return ir.TypedStatement{Value: value}, nil
	default:
		return ir.TypedStatement{}, ir.NewTypeError("unsupported statement %T", stmt)
	}
}

// AnalyzeExpr types one expression against the current bindings.
func (a *Analyzer) AnalyzeExpr(expr ir.Expr) (ir.TypedExpr, error) {
	switch e := expr.(type) {
	case *ir.Variable:
		shape, ok := a.shapes[e.Name]
		if !ok && a.strict {
			return nil, ir.NewUndefinedVariable(e.Name)
		}
		if err := checkShape(e.Name, shape); err != nil {
			return nil, err
		}
		return ir.NewTypedVariable(e.Name, shape), nil

	case *ir.Number:
		return ir.NewTypedNumber(e.Value), nil

	case *ir.MatrixLiteral:
		return ir.NewTypedMatrix(e.Dims(), e.Rows), nil

	case *ir.MatMul:
		return a.matmul(e.Left, e.Right)

	case *ir.Add:
		l, r, shape, err := a.elementwise("add", e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return ir.NewTypedAdd(l, r, shape), nil

	case *ir.Sub:
		l, r, shape, err := a.elementwise("sub", e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return ir.NewTypedSub(l, r, shape), nil

	case *ir.ElementMul:
		l, r, shape, err := a.elementwise("element-wise mul", e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return ir.NewTypedElementMul(l, r, shape), nil

	case *ir.ScalarMul:
		return a.scalarMul(e)

	case *ir.Transpose:
		return a.transpose(e.Operand)

	case *ir.Call:
		return a.call(e)

	case *ir.Tuple:
		return nil, ir.NewTypeError("tuple of %d elements is only valid as a shape argument", len(e.Elements))

	default:
		return nil, ir.NewTypeError("unsupported expression %T", expr)
	}
}

func (a *Analyzer) operands(left, right ir.Expr) (ir.TypedExpr, ir.TypedExpr, error) {
	l, err := a.AnalyzeExpr(left)
	if err != nil {
		return nil, nil, err
	}
	r, err := a.AnalyzeExpr(right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (a *Analyzer) matmul(left, right ir.Expr) (ir.TypedExpr, error) {
	l, r, err := a.operands(left, right)
	if err != nil {
		return nil, err
	}
	shape, err := MatMulShape(l.Shape(), r.Shape())
	if err != nil {
		return nil, err
	}
	if err := checkShape("matmul", shape); err != nil {
		return nil, err
	}
	return ir.NewTypedMatMul(l, r, shape), nil
}

func (a *Analyzer) elementwise(op string, left, right ir.Expr) (ir.TypedExpr, ir.TypedExpr, ir.Shape, error) {
	l, r, err := a.operands(left, right)
	if err != nil {
		return nil, nil, ir.Shape{}, err
	}
	shape, err := BroadcastShape(op, l.Shape(), r.Shape())
	if err == nil {
		err = checkShape(op, shape)
	}
	if err != nil {
		return nil, nil, ir.Shape{}, err
	}
	return l, r, shape, nil
}

// scalarMul rejects a first operand that is known to be a matrix. Unknown
// is accepted, consistent with the permissive treatment elsewhere.
func (a *Analyzer) scalarMul(e *ir.ScalarMul) (ir.TypedExpr, error) {
	s, m, err := a.operands(e.Scalar, e.Matrix)
	if err != nil {
		return nil, err
	}
	if s.Shape().IsMatrix() {
		return nil, ir.NewTypeError("scalar multiply requires a scalar first operand, got %s", s.Shape())
	}
	return ir.NewTypedScalarMul(s, m, m.Shape()), nil
}

func (a *Analyzer) transpose(operand ir.Expr) (ir.TypedExpr, error) {
	inner, err := a.AnalyzeExpr(operand)
	if err != nil {
		return nil, err
	}
	return ir.NewTypedTranspose(inner, TransposeShape(inner.Shape())), nil
}

// MatMulShape is the shape rule for L @ R. Unknown on either side
// propagates; scalars are rejected; inner dimensions must agree.
func MatMulShape(l, r ir.Shape) (ir.Shape, error) {
	if l.IsUnknown() || r.IsUnknown() {
		return ir.Unknown(), nil
	}
	if !l.IsMatrix() || !r.IsMatrix() {
		return ir.Shape{}, ir.NewTypeError("matmul requires matrix operands, got %s and %s", l, r)
	}
	if l.Cols != r.Rows {
		return ir.Shape{}, ir.NewShapeMismatch(
			"matmul",
			fmt.Sprintf("inner dimensions to match (%d != %d)", l.Cols, r.Rows),
			fmt.Sprintf("left %s, right %s", l, r),
		)
	}
	return ir.Matrix(l.Rows, r.Cols), nil
}

// BroadcastShape is the shape rule for add, sub and element-wise mul.
// A scalar takes the other operand's shape; otherwise Unknown propagates
// and two matrices must be identical.
func BroadcastShape(op string, l, r ir.Shape) (ir.Shape, error) {
	switch {
	case l.IsScalar():
		return r, nil
	case r.IsScalar():
		return l, nil
	case l.IsUnknown() || r.IsUnknown():
		return ir.Unknown(), nil
	case l != r:
		return ir.Shape{}, ir.NewShapeMismatch(op, "identical shapes", fmt.Sprintf("%s and %s", l, r))
	}
	return l, nil
}

// TransposeShape swaps a matrix's dimensions. Scalar and Unknown pass
// through.
func TransposeShape(s ir.Shape) ir.Shape {
	if s.IsMatrix() {
		return ir.Matrix(s.Cols, s.Rows)
	}
	return s
}
