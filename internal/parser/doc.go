// Package parser turns NumPy-style matrix source text into an ir.Program.
//
// The language is a small expression subset:
//
//	C = A @ B + D
//	E = np.transpose(A) @ B
//	F = [[1, 2], [3, 4]] @ G.T
//	2 * np.eye(3)
//
// Statements are separated by newlines or semicolons. A '#' starts a comment
// that runs to end of line. All errors are *ir.CompileError values with code
// PARSE_ERROR and a 1-based line:column position.
package parser
