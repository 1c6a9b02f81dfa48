package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/systolic/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Emit string
}

// StoredProgram is one row of the program listing.
type StoredProgram struct {
	ID          string `json:"id"`
	ArraySize   int    `json:"array_size"`
	Passes      int    `json:"passes"`
	TotalCycles int    `json:"total_cycles"`
	Runs        int    `json:"runs"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <db> [program-id]",
		Short: "Inspect programs recorded by compile --db",
		Long: `List the programs stored in a compilation database, or print one
program in the selected view.

Examples:
  systolic show runs.db
  systolic show runs.db 3f2a... --emit vectors`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Emit, "emit", EmitDump, "output view for a single program (summary|json|yaml|vectors|dump)")

	return cmd
}

func runShow(ctx context.Context, opts *ShowOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	if !lo.Contains(ValidEmits, opts.Emit) {
		return fail(formatter, ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid emit %q: must be one of %v", opts.Emit, ValidEmits), nil)
	}

	// store.Open would create a missing database.
	if _, err := os.Stat(args[0]); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("database not found: %s", args[0]), nil)
	}
	st, err := store.Open(args[0])
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	if len(args) == 2 {
		return showProgram(ctx, formatter, st, args[1], opts.Emit)
	}
	return listPrograms(ctx, formatter, st)
}

func showProgram(ctx context.Context, formatter *OutputFormatter, st *store.Store, id, view string) error {
	p, err := st.ReadProgram(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("program %s not found", id), nil)
	}
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(p)
	}
	text, err := emit(p, view)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	fmt.Fprint(formatter.Writer, text)
	return nil
}

func listPrograms(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	infos, err := st.ListPrograms(ctx)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	runs, err := st.ListCompilations(ctx, "")
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	runCounts := lo.CountValuesBy(runs, func(c store.Compilation) string { return c.ProgramID })

	programs := lo.Map(infos, func(info store.ProgramInfo, _ int) StoredProgram {
		return StoredProgram{
			ID:          info.ID,
			ArraySize:   info.Config.ArraySize,
			Passes:      info.PassCount,
			TotalCycles: info.TotalCycles,
			Runs:        runCounts[info.ID],
		}
	})

	if formatter.Format == "json" {
		return formatter.Success(programs)
	}

	if len(programs) == 0 {
		fmt.Fprintln(formatter.Writer, "No programs recorded.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d program(s), %d run(s)\n\n", len(programs), len(runs))
	for _, p := range programs {
		fmt.Fprintf(formatter.Writer, "%s  %dx%d  %d pass(es)  %d cycles  %d run(s)\n",
			p.ID, p.ArraySize, p.ArraySize, p.Passes, p.TotalCycles, p.Runs)
	}
	return nil
}
