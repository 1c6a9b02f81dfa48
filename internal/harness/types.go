package harness

import (
	"github.com/roach88/systolic/internal/hardware"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Program is the compiled program as read back from the store.
	// Nil when compilation failed.
	Program *hardware.Program `json:"-"`

	// ProgramID is the fingerprint the program was stored under.
	ProgramID string `json:"program_id,omitempty"`

	// CompileErr is the compilation failure, if any.
	CompileErr error `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
