package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/systolic/internal/compiler"
	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
	"github.com/roach88/systolic/internal/job"
	"github.com/roach88/systolic/internal/store"
)

// Emit views for compiled programs.
const (
	EmitSummary = "summary"
	EmitJSON    = "json"
	EmitYAML    = "yaml"
	EmitVectors = "vectors"
	EmitDump    = "dump"
)

// ValidEmits lists the accepted --emit values.
var ValidEmits = []string{EmitSummary, EmitJSON, EmitYAML, EmitVectors, EmitDump}

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	File      string   // program source file
	Jobs      []string // job files (YAML, CUE or JSON)
	Shapes    []string // NAME=RxC bindings
	ArraySize int
	DataWidth int
	AccWidth  int
	Strict    bool
	Emit      string
	Output    string // output file path
	DB        string // SQLite database to record compilations in
	Parallel  int    // concurrent job compilations, 0 = unbounded
}

// CompiledProgram is the JSON payload for one compilation.
type CompiledProgram struct {
	Name        string            `json:"name"`
	ProgramID   string            `json:"program_id"`
	RunID       string            `json:"run_id,omitempty"`
	Passes      int               `json:"passes"`
	TotalCycles int               `json:"total_cycles"`
	OutputShape ir.Dims           `json:"output_shape"`
	Program     *hardware.Program `json:"program"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [expression]",
		Short: "Compile a program to systolic array passes",
		Long: `Compile a matrix-expression program into a sequence of systolic array
passes. The program comes from the expression argument, a --file, or one
or more --job files; job files carry their own shapes and array settings.

Examples:
  systolic compile "C = A @ B" -s A=4x6 -s B=6x8
  systolic compile -f model.np -n 4 --emit vectors
  systolic compile --job a.yaml --job b.cue --db runs.db
  systolic compile "C = [[1, 2], [3, 4]] @ [[5, 6], [7, 8]]" --emit json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	defaults := hardware.DefaultConfig()
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the program from a file")
	cmd.Flags().StringArrayVar(&opts.Jobs, "job", nil, "compile a job file, or every job file in a directory (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Shapes, "shape", "s", nil, "bind a matrix shape, NAME=RxC (repeatable)")
	cmd.Flags().IntVarP(&opts.ArraySize, "array-size", "n", defaults.ArraySize, "systolic array size S (SxS)")
	cmd.Flags().IntVarP(&opts.DataWidth, "data-width", "d", defaults.DataWidth, "data width in bits")
	cmd.Flags().IntVarP(&opts.AccWidth, "acc-width", "a", defaults.AccWidth, "accumulator width in bits")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject unbound variables")
	cmd.Flags().StringVar(&opts.Emit, "emit", EmitSummary, "output view (summary|json|yaml|vectors|dump)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the emitted view to a file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record compilations in a SQLite database")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "maximum concurrent job compilations (0 = unbounded)")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	if !lo.Contains(ValidEmits, opts.Emit) {
		return fail(formatter, ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid emit %q: must be one of %v", opts.Emit, ValidEmits), nil)
	}
	if formatter.Format == "json" && (opts.Output != "" || cmd.Flags().Changed("emit")) {
		return fail(formatter, ExitCommandError, ErrCodeUsage, "--output and --emit apply to text output; the json format prints the full program", nil)
	}

	reqs, err := buildRequests(opts, args)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeUsage, err.Error(), asReported(err))
	}
	if opts.Output != "" && len(reqs) > 1 {
		return fail(formatter, ExitCommandError, ErrCodeUsage, "--output requires a single program", nil)
	}

	formatter.VerboseLog("Compiling %d program(s)", len(reqs))
	outcomes, err := compiler.CompileAll(ctx, reqs, opts.Parallel, compiler.WithLogger(opts.logger()))
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	for _, o := range outcomes {
		if o.Err != nil {
			return fail(formatter, ExitCommandError, "", "", o.Err)
		}
	}

	results := make([]CompiledProgram, len(outcomes))
	for i, o := range outcomes {
		id, err := o.Program.Fingerprint()
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		results[i] = CompiledProgram{
			Name:        o.Request.Name,
			ProgramID:   id,
			Passes:      len(o.Program.Passes),
			TotalCycles: o.Program.TotalCycles,
			OutputShape: o.Program.OutputShape,
			Program:     o.Program,
		}
	}

	if opts.DB != "" {
		if err := recordCompilations(ctx, opts.DB, outcomes, results); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		formatter.VerboseLog("Recorded %d compilation(s) in %s", len(results), opts.DB)
	}

	if formatter.Format == "json" {
		if len(results) == 1 {
			return formatter.Success(results[0])
		}
		return formatter.Success(results)
	}

	for i, r := range results {
		text, err := emit(r.Program, opts.Emit)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		if opts.Output != "" {
			if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
				return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			}
			fmt.Fprintf(formatter.Writer, "Wrote %s view of %s to %s\n", opts.Emit, r.Name, opts.Output)
			continue
		}
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(formatter.Writer)
			}
			fmt.Fprintf(formatter.Writer, "== %s ==\n", r.Name)
		}
		fmt.Fprint(formatter.Writer, text)
		if r.RunID != "" {
			fmt.Fprintf(formatter.Writer, "Recorded program %s (run %s)\n", r.ProgramID, r.RunID)
		}
	}
	return nil
}

// asReported returns err when it carries its own CLI error code.
func asReported(err error) error {
	if code, _, _ := describeError(err); code != ErrCodeGeneric {
		return err
	}
	return nil
}

// buildRequests turns flags and arguments into compilation requests.
func buildRequests(opts *CompileOptions, args []string) ([]compiler.Request, error) {
	sources := len(args)
	if opts.File != "" {
		sources++
	}
	if len(opts.Jobs) > 0 {
		sources++
	}
	switch {
	case sources == 0:
		return nil, fmt.Errorf("no program: pass an expression, --file or --job")
	case sources > 1:
		return nil, fmt.Errorf("use only one of an expression, --file or --job")
	}

	if len(opts.Jobs) > 0 {
		jobs, err := job.LoadAll(opts.Jobs)
		if err != nil {
			return nil, err
		}
		reqs := make([]compiler.Request, len(jobs))
		for i, j := range jobs {
			if _, err := j.Config(); err != nil {
				return nil, fmt.Errorf("job %s: %w", j.Name, err)
			}
			reqs[i] = j.Request()
		}
		return reqs, nil
	}

	name, src := "expression", ""
	if len(args) == 1 {
		src = args[0]
	} else {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, &job.LoadError{Code: ErrCodeReadFailed, Path: opts.File, Message: err.Error()}
		}
		name, src = opts.File, string(data)
	}

	shapes, err := ParseShapes(opts.Shapes)
	if err != nil {
		return nil, err
	}
	cfg := hardware.NewConfig(opts.ArraySize, opts.DataWidth, opts.AccWidth)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return []compiler.Request{{
		Name:   name,
		Source: src,
		Shapes: shapes,
		Config: cfg,
		Strict: opts.Strict,
	}}, nil
}

// ParseShapes parses NAME=RxC bindings.
func ParseShapes(specs []string) (map[string]ir.Dims, error) {
	shapes := make(map[string]ir.Dims, len(specs))
	for _, spec := range specs {
		name, dims, ok := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid shape %q: expected NAME=RxC", spec)
		}
		r, c, ok := strings.Cut(strings.ToLower(strings.TrimSpace(dims)), "x")
		if !ok {
			return nil, fmt.Errorf("invalid shape %q: expected NAME=RxC", spec)
		}
		rows, err := strconv.Atoi(r)
		if err != nil || rows < 0 {
			return nil, fmt.Errorf("invalid shape %q: bad row count", spec)
		}
		cols, err := strconv.Atoi(c)
		if err != nil || cols < 0 {
			return nil, fmt.Errorf("invalid shape %q: bad column count", spec)
		}
		d := ir.D(rows, cols)
		if !d.Bounded() {
			return nil, fmt.Errorf("invalid shape %q: more than %d elements", spec, ir.MaxElements)
		}
		shapes[name] = d
	}
	return shapes, nil
}

// emit renders p in the requested view.
func emit(p *hardware.Program, view string) (string, error) {
	switch view {
	case EmitJSON:
		data, err := p.JSON()
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case EmitYAML:
		data, err := p.YAML()
		return string(data), err
	case EmitVectors:
		return p.TestVectors(), nil
	case EmitDump:
		return p.String(), nil
	default:
		return p.Summary, nil
	}
}

// recordCompilations stores every compiled program and fills in run IDs.
func recordCompilations(ctx context.Context, path string, outcomes []compiler.Outcome, results []CompiledProgram) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	for i, o := range outcomes {
		run, err := st.WriteProgram(ctx, o.Program, o.Request.Name, o.Request.Source)
		if err != nil {
			return err
		}
		results[i].RunID = run.RunID
	}
	return nil
}
