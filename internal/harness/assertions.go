package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

func assertPassCount(p *hardware.Program, a Assertion) error {
	if got := len(p.Passes); got != *a.Value {
		return &AssertionError{
			Type:     AssertPassCount,
			Expected: fmt.Sprintf("%d passes", *a.Value),
			Actual:   fmt.Sprintf("%d passes", got),
		}
	}
	return nil
}

func assertTotalCycles(p *hardware.Program, a Assertion) error {
	if p.TotalCycles != *a.Value {
		return &AssertionError{
			Type:     AssertTotalCycles,
			Expected: fmt.Sprintf("%d cycles", *a.Value),
			Actual:   fmt.Sprintf("%d cycles", p.TotalCycles),
		}
	}
	return nil
}

func assertOutputShape(p *hardware.Program, a Assertion) error {
	if p.OutputShape != *a.Shape {
		return &AssertionError{
			Type:     AssertOutputShape,
			Expected: a.Shape.String(),
			Actual:   p.OutputShape.String(),
		}
	}
	return nil
}

// assertPassOperations checks the tags of the leading passes. Trailing
// passes beyond the listed operations are not checked.
func assertPassOperations(p *hardware.Program, a Assertion) error {
	got := lo.Map(p.Passes, func(pass hardware.Pass, _ int) string {
		return pass.Operation.String()
	})
	if len(got) < len(a.Operations) || !slices.Equal(got[:len(a.Operations)], a.Operations) {
		return &AssertionError{
			Type:     AssertPassOperations,
			Expected: fmt.Sprintf("leading operations %v", a.Operations),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertPassBuffer(p *hardware.Program, a Assertion) error {
	if a.Pass >= len(p.Passes) {
		return &AssertionError{
			Type:     AssertPassBuffer,
			Expected: fmt.Sprintf("pass %d", a.Pass),
			Actual:   fmt.Sprintf("program has %d passes", len(p.Passes)),
		}
	}

	pass := p.Passes[a.Pass]
	got := pass.MatrixA
	if a.Operand == "b" {
		got = pass.MatrixB
	}
	if !slices.Equal(got, a.Values) {
		return &AssertionError{
			Type:     AssertPassBuffer,
			Expected: fmt.Sprintf("pass %d operand %s = %v", a.Pass, a.Operand, a.Values),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertErrorCode(compileErr error, a Assertion) error {
	if compileErr == nil {
		return &AssertionError{
			Type:     AssertErrorCode,
			Expected: fmt.Sprintf("compilation error %s", a.Code),
			Actual:   "compilation succeeded",
		}
	}
	code, ok := ir.CodeOf(compileErr)
	if !ok || string(code) != a.Code {
		return &AssertionError{
			Type:     AssertErrorCode,
			Expected: fmt.Sprintf("compilation error %s", a.Code),
			Actual:   compileErr.Error(),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions. Program
// assertions fail outright when compilation did not succeed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if assertion.Type != AssertErrorCode && result.Program == nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s: compilation failed: %v", i, assertion.Type, result.CompileErr))
			continue
		}

		switch assertion.Type {
		case AssertPassCount:
			err = assertPassCount(result.Program, assertion)
		case AssertTotalCycles:
			err = assertTotalCycles(result.Program, assertion)
		case AssertOutputShape:
			err = assertOutputShape(result.Program, assertion)
		case AssertPassOperations:
			err = assertPassOperations(result.Program, assertion)
		case AssertPassBuffer:
			err = assertPassBuffer(result.Program, assertion)
		case AssertErrorCode:
			err = assertErrorCode(result.CompileErr, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
