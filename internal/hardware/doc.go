// Package hardware models the program a fixed-size systolic
// multiply-accumulate array executes.
//
// A Program is an ordered list of Passes. Each Pass streams one padded S×S
// left operand (row-major) and one padded S×S right operand (column-major)
// through the array and produces one partial or final output tile. Every
// pass costs the same fill-plus-drain latency of 3S-1 cycles, so a program's
// total cycle count is always len(Passes) * (3S-1).
//
// The package also owns the fixed-point helpers shared with the code
// generator (saturating quantization, padding, row/column-major transform)
// and the export views: JSON and YAML for interchange, a Chisel testbench
// vector dump, a human-readable dump, and a content fingerprint.
package hardware
