// Package store provides SQLite-backed persistence for compiled systolic
// programs.
//
// Three tables are kept:
//   - programs: one row per distinct program, keyed by its fingerprint
//   - passes: the passes of each program, keyed by (program_id, pass_id)
//   - compilations: an append-only log of compilation runs
//
// Writing the same program twice stores it once; each write still appends a
// compilation record. Runs are ordered by a logical seq column, never by
// timestamps, and passes are always read back ORDER BY pass_id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Program IDs are computed by hardware.Program.Fingerprint using RFC 8785
// canonical JSON and SHA-256 with domain separation.
package store
