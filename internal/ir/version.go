package ir

// Version constants for exported programs and the compiler.
const (
	// FormatVersion is the exported program schema version.
	FormatVersion = "1"

	// CompilerVersion is the systolic compiler version.
	CompilerVersion = "0.1.0"
)
