package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/systolic/internal/ir"
	"github.com/roach88/systolic/internal/job"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario failures
	ExitCommandError = 2 // Command error (bad flags, unreadable files, compile errors)
)

// CLI error codes. Compile errors report their own codes (SHAPE_MISMATCH,
// PARSE_ERROR, ...) and job files report the job loader's codes.
const (
	ErrCodeUsage       = "E001" // bad arguments or flag values
	ErrCodeReadFailed  = "E004" // input file read error
	ErrCodeWriteFailed = "E007" // output file write error
	ErrCodeStore       = "E301" // database open/read/write error
	ErrCodeNotFound    = "E302" // program not found in database
	ErrCodeTestFailed  = "E_TEST_FAILED"
	ErrCodeGeneric     = "E999"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "SHAPE_MISMATCH", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// describeError extracts a CLI error code, message and optional details
// from a compile, job loading or generic error.
func describeError(err error) (string, string, any) {
	var ce *ir.CompileError
	if errors.As(err, &ce) {
		msg := ce.Message
		if ce.Expected != "" || ce.Got != "" {
			msg = fmt.Sprintf("%s: expected %s, got %s", msg, ce.Expected, ce.Got)
		}
		if ce.Pos.IsValid() {
			return string(ce.Code), fmt.Sprintf("%s: %s", ce.Pos, msg), map[string]int{"line": ce.Pos.Line, "column": ce.Pos.Column}
		}
		return string(ce.Code), msg, nil
	}
	var le *job.LoadError
	if errors.As(err, &le) {
		return le.Code, le.Error(), nil
	}
	var ee *ExitError
	if errors.As(err, &ee) && ee.Err == nil {
		return ErrCodeGeneric, ee.Message, nil
	}
	return ErrCodeGeneric, err.Error(), nil
}

// fail reports err through f and returns it as an ExitError with code.
func fail(f *OutputFormatter, exitCode int, errCode, message string, err error) error {
	details := any(nil)
	if err != nil {
		errCode, message, details = describeError(err)
	}
	_ = f.Error(errCode, message, details)
	return WrapExitError(exitCode, fmt.Sprintf("%s: %s", errCode, message), nil)
}
