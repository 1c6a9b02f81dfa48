package ir

// TypedProgram is the analyzer's output: one typed statement per input
// statement, in order.
type TypedProgram struct {
	Statements []TypedStatement
}

// TypedStatement pairs a typed expression with the name it is bound to.
// Bare expression statements have an empty Target.
type TypedStatement struct {
	Target string
	Value  TypedExpr
}

// TypedExpr is an expression node paired with its inferred shape.
//
// Typed nodes are built through the New* constructors and are immutable
// afterwards. Function calls and tuples never appear in a typed tree: the
// analyzer resolves them into literals, transposes and matmuls.
type TypedExpr interface {
	Shape() Shape
	typedNode()
}

type typed struct {
	shape Shape
}

func (t typed) Shape() Shape { return t.shape }
func (typed) typedNode()     {}

// TypedVariable references a named buffer.
type TypedVariable struct {
	typed
	Name string
}

// TypedNumber is a scalar literal.
type TypedNumber struct {
	typed
	Value float64
}

// TypedMatrix is a matrix literal (including zeros/eye expansions).
// Dims is authoritative: a zero-row matrix still carries its column count.
type TypedMatrix struct {
	typed
	Dims Dims
	Rows [][]float64
}

// Flatten returns the literal data in row-major order.
func (m *TypedMatrix) Flatten() []float64 {
	return flattenRows(m.Rows)
}

// TypedMatMul is `L @ R`.
type TypedMatMul struct {
	typed
	Left, Right TypedExpr
}

// TypedAdd is `L + R`.
type TypedAdd struct {
	typed
	Left, Right TypedExpr
}

// TypedSub is `L - R`.
type TypedSub struct {
	typed
	Left, Right TypedExpr
}

// TypedElementMul is `L * R`.
type TypedElementMul struct {
	typed
	Left, Right TypedExpr
}

// TypedScalarMul is `s * M`.
type TypedScalarMul struct {
	typed
	Scalar, Matrix TypedExpr
}

// TypedTranspose is `X.T`.
type TypedTranspose struct {
	typed
	Operand TypedExpr
}

func NewTypedVariable(name string, shape Shape) *TypedVariable {
	return &TypedVariable{typed: typed{shape}, Name: name}
}

func NewTypedNumber(v float64) *TypedNumber {
	return &TypedNumber{typed: typed{Scalar()}, Value: v}
}

// NewTypedMatrix builds a d-shaped matrix literal holding rows.
func NewTypedMatrix(d Dims, rows [][]float64) *TypedMatrix {
	return &TypedMatrix{typed: typed{MatrixOf(d)}, Dims: d, Rows: rows}
}

func NewTypedMatMul(left, right TypedExpr, shape Shape) *TypedMatMul {
	return &TypedMatMul{typed: typed{shape}, Left: left, Right: right}
}

func NewTypedAdd(left, right TypedExpr, shape Shape) *TypedAdd {
	return &TypedAdd{typed: typed{shape}, Left: left, Right: right}
}

func NewTypedSub(left, right TypedExpr, shape Shape) *TypedSub {
	return &TypedSub{typed: typed{shape}, Left: left, Right: right}
}

func NewTypedElementMul(left, right TypedExpr, shape Shape) *TypedElementMul {
	return &TypedElementMul{typed: typed{shape}, Left: left, Right: right}
}

func NewTypedScalarMul(scalar, matrix TypedExpr, shape Shape) *TypedScalarMul {
	return &TypedScalarMul{typed: typed{shape}, Scalar: scalar, Matrix: matrix}
}

func NewTypedTranspose(operand TypedExpr, shape Shape) *TypedTranspose {
	return &TypedTranspose{typed: typed{shape}, Operand: operand}
}
