package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/systolic/internal/compiler"
	"github.com/roach88/systolic/internal/store"
	"github.com/roach88/systolic/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database for isolation.
// A compilation failure is not an error of Run; it is recorded in the
// result for error_code assertions. Run only fails when the store does.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	result := NewResult()

	opts := []compiler.Option{compiler.WithLogger(slog.New(slog.DiscardHandler))}
	if scenario.Strict {
		opts = append(opts, compiler.WithStrictVariables())
	}

	prog, err := compiler.CompileSource(scenario.Source, scenario.Shapes, scenario.Array.Config(), opts...)
	if err != nil {
		result.CompileErr = err
	} else {
		st, err := store.Open(":memory:", store.WithRunIDGenerator(&testutil.SequentialRunIDs{}))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()

		run, err := st.WriteProgram(ctx, prog, scenario.Name, scenario.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to store program: %w", err)
		}
		stored, err := st.ReadProgram(ctx, run.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to read back program: %w", err)
		}
		result.Program = stored
		result.ProgramID = run.ProgramID
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
