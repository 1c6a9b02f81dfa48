// Package ir provides the expression-tree and shape types shared by every
// stage of the systolic compiler.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the expression tree the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Expr, Statement and TypedExpr are sealed interfaces; every stage that
//     dispatches on node kind uses a type switch with an explicit default
//   - Shape's zero value is Unknown, which is distinct from Matrix(0, 0)
//   - Typed nodes are immutable once constructed (shape is unexported)
//   - All compile-stage failures are *CompileError carrying an ErrorCode
//   - Canonical JSON forbids floats; hashing only ever sees quantized integers
package ir
