// Package harness runs conformance scenarios against the compiler.
//
// A scenario names a source program, its shape bindings and array
// configuration, and a list of assertions about the compiled program.
//
// # Scenario Format
//
//	name: tiled_matmul
//	description: "6x6 by 6x6 on a 3x3 array"
//	source: "C = A @ B"
//	shapes:
//	  A: [6, 6]
//	  B: [6, 6]
//	array:
//	  size: 3
//	assertions:
//	  - type: pass_count
//	    value: 8
//	  - type: output_shape
//	    shape: [6, 6]
//	  - type: pass_operations
//	    operations: [Initialize, Final]
//	  - type: pass_buffer
//	    pass: 0
//	    operand: a
//	    values: [1, 2, 0, 3, 4, 0, 0, 0, 0]
//
// # Assertion Types
//
//   - pass_count: number of emitted passes
//   - total_cycles: program cycle count
//   - output_shape: shape of the last produced value
//   - pass_operations: accumulation tags of the first passes, in order
//   - pass_buffer: padded operand buffer of one pass (a row-major, b column-major)
//   - error_code: compilation fails with the given error code
//
// # Deterministic Testing
//
// Every scenario compiles with a discarded logger, is written to a fresh
// in-memory SQLite store with sequential run IDs, and is read back before
// assertions run, so assertions also cover persistence. The test vectors of
// the stored program are compared against testdata/golden by RunWithGolden.
package harness
