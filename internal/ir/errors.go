package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// ErrCodeParse indicates a lexical or grammar error in source text.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeType indicates a malformed call, unknown function, invalid
	// tuple or a non-matrix operand where a matrix is required.
	ErrCodeType ErrorCode = "TYPE_ERROR"

	// ErrCodeShapeMismatch indicates incompatible dimensions at a matmul,
	// elementwise or broadcast site.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"

	// ErrCodeUndefinedVariable indicates a reference to an unbound name
	// (strict analysis only).
	ErrCodeUndefinedVariable ErrorCode = "UNDEFINED_VARIABLE"

	// ErrCodeTiling indicates the planner's shape re-validation failed.
	ErrCodeTiling ErrorCode = "TILING_ERROR"

	// ErrCodeCodegen indicates an internal consistency failure during
	// pass synthesis.
	ErrCodeCodegen ErrorCode = "CODEGEN_ERROR"

	// ErrCodeInvalidConfig indicates an unusable array configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Position is a 1-based line:column location in source text.
// The zero value means "no position".
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether p refers to a real location.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// CompileError is a terminal failure of one compilation.
//
// Shape mismatches fill Expected with the required relation and Got with
// the actual shapes involved.
type CompileError struct {
	Code     ErrorCode
	Message  string
	Expected string
	Got      string
	Pos      Position
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Expected != "" || e.Got != "" {
		msg = fmt.Sprintf("%s: expected %s, got %s", msg, e.Expected, e.Got)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, msg)
	}
	return msg
}

// NewParseError creates a CompileError for malformed source text.
func NewParseError(pos Position, format string, args ...any) *CompileError {
	return &CompileError{Code: ErrCodeParse, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// NewTypeError creates a CompileError for type errors.
func NewTypeError(format string, args ...any) *CompileError {
	return &CompileError{Code: ErrCodeType, Message: fmt.Sprintf(format, args...)}
}

// NewShapeMismatch creates a CompileError describing an incompatible
// shape relation at site.
func NewShapeMismatch(site, expected, got string) *CompileError {
	return &CompileError{Code: ErrCodeShapeMismatch, Message: site, Expected: expected, Got: got}
}

// NewUndefinedVariable creates a CompileError for an unbound name.
func NewUndefinedVariable(name string) *CompileError {
	return &CompileError{Code: ErrCodeUndefinedVariable, Message: fmt.Sprintf("undefined variable %q", name)}
}

// NewTilingError creates a CompileError raised by the tiling planner.
func NewTilingError(format string, args ...any) *CompileError {
	return &CompileError{Code: ErrCodeTiling, Message: fmt.Sprintf(format, args...)}
}

// NewCodegenError creates a CompileError raised by the code generator.
func NewCodegenError(format string, args ...any) *CompileError {
	return &CompileError{Code: ErrCodeCodegen, Message: fmt.Sprintf(format, args...)}
}

// NewConfigError creates a CompileError for an invalid array configuration.
func NewConfigError(format string, args ...any) *CompileError {
	return &CompileError{Code: ErrCodeInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode of the first *CompileError in err's chain.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) (ErrorCode, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsTypeError returns true if err is a TYPE_ERROR.
func IsTypeError(err error) bool { return hasCode(err, ErrCodeType) }

// IsShapeMismatch returns true if err is a SHAPE_MISMATCH.
func IsShapeMismatch(err error) bool { return hasCode(err, ErrCodeShapeMismatch) }

// IsTilingError returns true if err is a TILING_ERROR.
func IsTilingError(err error) bool { return hasCode(err, ErrCodeTiling) }

// IsCodegenError returns true if err is a CODEGEN_ERROR.
func IsCodegenError(err error) bool { return hasCode(err, ErrCodeCodegen) }
