package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/systolic/internal/ir"
)

func v(name string) *ir.Variable { return &ir.Variable{Name: name} }
func n(x float64) *ir.Number     { return &ir.Number{Value: x} }

func TestParseExpr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ir.Expr
	}{
		{"matmul", "A @ B", &ir.MatMul{Left: v("A"), Right: v("B")}},
		{"matmul left assoc", "A @ B @ C", &ir.MatMul{Left: &ir.MatMul{Left: v("A"), Right: v("B")}, Right: v("C")}},
		{
			"precedence",
			"A + B * C @ D",
			&ir.Add{Left: v("A"), Right: &ir.ElementMul{Left: v("B"), Right: &ir.MatMul{Left: v("C"), Right: v("D")}}},
		},
		{"sub", "A - B", &ir.Sub{Left: v("A"), Right: v("B")}},
		{"scalar mul", "2 * A", &ir.ScalarMul{Scalar: n(2), Matrix: v("A")}},
		{"element mul with number on right", "A * 2", &ir.ElementMul{Left: v("A"), Right: n(2)}},
		{"negated variable", "-A", &ir.ScalarMul{Scalar: n(-1), Matrix: v("A")}},
		{"negated literal folds", "-2 * A", &ir.ScalarMul{Scalar: n(-2), Matrix: v("A")}},
		{"transpose", "A.T", &ir.Transpose{Operand: v("A")}},
		{"double transpose", "A.T.T", &ir.Transpose{Operand: &ir.Transpose{Operand: v("A")}}},
		{"transpose binds tighter than matmul", "A @ B.T", &ir.MatMul{Left: v("A"), Right: &ir.Transpose{Operand: v("B")}}},
		{"parens", "(A + B) @ C", &ir.MatMul{Left: &ir.Add{Left: v("A"), Right: v("B")}, Right: v("C")}},
		{
			"numpy call with shape tuple",
			"np.zeros((3, 4))",
			&ir.Call{Name: "np.zeros", Args: []ir.Expr{&ir.Tuple{Elements: []ir.Expr{n(3), n(4)}}}},
		},
		{"numpy namespace", "numpy.eye(3)", &ir.Call{Name: "numpy.eye", Args: []ir.Expr{n(3)}}},
		{"bare call", "transpose(A)", &ir.Call{Name: "transpose", Args: []ir.Expr{v("A")}}},
		{"method call", "A.transpose()", &ir.Call{Name: "transpose", Args: []ir.Expr{v("A")}}},
		{"method call with args", "A.dot(B)", &ir.Call{Name: "dot", Args: []ir.Expr{v("A"), v("B")}}},
		{"trailing comma tuple", "(3,)", &ir.Tuple{Elements: []ir.Expr{n(3)}}},
		{"row vector", "[1, 2, 3]", &ir.MatrixLiteral{Rows: [][]float64{{1, 2, 3}}}},
		{
			"matrix with negatives and trailing comma",
			"[[1, -2], [3.5, 4],]",
			&ir.MatrixLiteral{Rows: [][]float64{{1, -2}, {3.5, 4}}},
		},
		{
			"literal matmul",
			"[[1, 2], [3, 4]] @ [[5, 6], [7, 8]]",
			&ir.MatMul{
				Left:  &ir.MatrixLiteral{Rows: [][]float64{{1, 2}, {3, 4}}},
				Right: &ir.MatrixLiteral{Rows: [][]float64{{5, 6}, {7, 8}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProgram(t *testing.T) {
	src := `# two layers
W1 = np.eye(3)
H = X @ W1; Y = H.T
H @ Y
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 4)

	assert.Equal(t, &ir.Assignment{Target: "W1", Value: &ir.Call{Name: "np.eye", Args: []ir.Expr{n(3)}}}, prog.Statements[0])
	assert.Equal(t, &ir.Assignment{Target: "H", Value: &ir.MatMul{Left: v("X"), Right: v("W1")}}, prog.Statements[1])
	assert.Equal(t, &ir.Assignment{Target: "Y", Value: &ir.Transpose{Operand: v("H")}}, prog.Statements[2])
	assert.Equal(t, &ir.ExprStmt{Value: &ir.MatMul{Left: v("H"), Right: v("Y")}}, prog.Statements[3])
}

func TestParseMultilineExpression(t *testing.T) {
	prog, err := Parse("C = A @\n  B")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	assert.Equal(t, &ir.Assignment{Target: "C", Value: &ir.MatMul{Left: v("A"), Right: v("B")}}, prog.Statements[0])
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "\n\n", ";;", "# only a comment"} {
		prog, err := Parse(src)
		require.NoError(t, err, "source %q", src)
		assert.Empty(t, prog.Statements)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dangling operator", "C = A @", `1:8: PARSE_ERROR: unexpected end of input`},
		{"two expressions on a line", "A B", `1:3: PARSE_ERROR: unexpected identifier "B"`},
		{"division unsupported", "A / B", `1:3: PARSE_ERROR: unexpected token "/"`},
		{"unclosed paren", "(A", `1:3: PARSE_ERROR: expected ")", got end of input`},
		{"unknown attribute", "A.foo", `1:3: PARSE_ERROR: unknown attribute "foo"`},
		{"ragged rows", "[[1, 2], [3]]", `1:10: PARSE_ERROR: row 1 has 1 elements, expected 2`},
		{"empty literal", "[]", `1:1: PARSE_ERROR: empty matrix literal`},
		{"empty row", "[[]]", `1:2: PARSE_ERROR: empty matrix row`},
		{"variable in literal", "[[1, x]]", `1:6: PARSE_ERROR: expected number in matrix literal, got identifier "x"`},
		{"namespace without name", "np.(3)", `1:4: PARSE_ERROR: expected "identifier", got token "("`},
		{"error on second line", "A = B\nC = )", `2:5: PARSE_ERROR: unexpected token ")"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			code, ok := ir.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, ir.ErrCodeParse, code)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
