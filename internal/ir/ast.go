package ir

// Program is an ordered list of statements, as produced by the parser.
type Program struct {
	Statements []Statement
}

// Statement is either an *Assignment or an *ExprStmt.
type Statement interface {
	stmtNode()
}

// Assignment binds the value of an expression to a name: `X = expr`.
type Assignment struct {
	Target string
	Value  Expr
}

// ExprStmt is a bare expression statement.
type ExprStmt struct {
	Value Expr
}

func (*Assignment) stmtNode() {}
func (*ExprStmt) stmtNode()   {}

// Expr is a node of the untyped expression tree.
//
// The set of implementations is closed: Variable, Number, MatrixLiteral,
// MatMul, Add, Sub, ElementMul, ScalarMul, Transpose, Call and Tuple.
type Expr interface {
	exprNode()
}

// Variable references a named matrix.
type Variable struct {
	Name string
}

// Number is a scalar literal.
type Number struct {
	Value float64
}

// MatrixLiteral is `[[1, 2], [3, 4]]`. Rows are assumed rectangular; ragged
// literals are rejected by the parser.
type MatrixLiteral struct {
	Rows [][]float64
}

// Dims returns the literal's dimensions; cols come from the first row.
func (m *MatrixLiteral) Dims() Dims {
	rows := len(m.Rows)
	cols := 0
	if rows > 0 {
		cols = len(m.Rows[0])
	}
	return Dims{Rows: rows, Cols: cols}
}

// Flatten returns the literal in row-major order.
func (m *MatrixLiteral) Flatten() []float64 {
	return flattenRows(m.Rows)
}

// MatMul is `L @ R`.
type MatMul struct {
	Left, Right Expr
}

// Add is `L + R`.
type Add struct {
	Left, Right Expr
}

// Sub is `L - R`.
type Sub struct {
	Left, Right Expr
}

// ElementMul is `L * R`.
type ElementMul struct {
	Left, Right Expr
}

// ScalarMul is `s * M` where the first operand is expected to be a scalar.
type ScalarMul struct {
	Scalar, Matrix Expr
}

// Transpose is `X.T`.
type Transpose struct {
	Operand Expr
}

// Call is a library function call such as `np.zeros((3, 4))`.
type Call struct {
	Name string
	Args []Expr
}

// Tuple is `(a, b, ...)`. A tuple of two number literals is a shape
// descriptor when it appears as a function argument.
type Tuple struct {
	Elements []Expr
}

func (*Variable) exprNode()      {}
func (*Number) exprNode()        {}
func (*MatrixLiteral) exprNode() {}
func (*MatMul) exprNode()        {}
func (*Add) exprNode()           {}
func (*Sub) exprNode()           {}
func (*ElementMul) exprNode()    {}
func (*ScalarMul) exprNode()     {}
func (*Transpose) exprNode()     {}
func (*Call) exprNode()          {}
func (*Tuple) exprNode()         {}

func flattenRows(rows [][]float64) []float64 {
	n := 0
	for _, row := range rows {
		n += len(row)
	}
	flat := make([]float64, 0, n)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}
