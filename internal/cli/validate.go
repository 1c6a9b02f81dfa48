package cli

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/systolic/internal/compiler"
	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
	"github.com/roach88/systolic/internal/parser"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	File   string
	Shapes []string
	Strict bool
}

// StatementShape is the inferred shape of one statement.
type StatementShape struct {
	Index  int    `json:"index"`
	Target string `json:"target,omitempty"`
	Shape  string `json:"shape"`
}

// ValidationResult holds validation results. Bindings is the final
// name -> shape table, external shapes included.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Statements []StatementShape  `json:"statements"`
	Bindings   map[string]string `json:"bindings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [expression]",
		Short: "Shape-check a program without generating passes",
		Long: `Parse and shape-check a program without tiling or code generation.
Prints the inferred shape of every statement. Faster than compile for
development feedback.

Examples:
  systolic validate "C = A @ B.T" -s A=3x4 -s B=5x4
  systolic validate -f model.np --strict`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the program from a file")
	cmd.Flags().StringArrayVarP(&opts.Shapes, "shape", "s", nil, "bind a matrix shape, NAME=RxC (repeatable)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject unbound variables")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var src string
	switch {
	case len(args) == 1 && opts.File == "":
		src = args[0]
	case len(args) == 0 && opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s: %v", opts.File, err), nil)
		}
		src = string(data)
	default:
		return fail(formatter, ExitCommandError, ErrCodeUsage, "pass exactly one of an expression or --file", nil)
	}

	shapes, err := ParseShapes(opts.Shapes)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}

	prog, err := parser.Parse(src)
	if err != nil {
		return fail(formatter, ExitCommandError, "", "", err)
	}

	copts := []compiler.Option{compiler.WithLogger(opts.logger())}
	if opts.Strict {
		copts = append(copts, compiler.WithStrictVariables())
	}
	session, err := compiler.NewSession(hardware.DefaultConfig(), shapes, copts...)
	if err != nil {
		return fail(formatter, ExitCommandError, "", "", err)
	}

	typed, err := session.Analyze(prog)
	if err != nil {
		return fail(formatter, ExitCommandError, "", "", err)
	}

	result := ValidationResult{
		Valid:      true,
		Statements: make([]StatementShape, len(typed.Statements)),
		Bindings: lo.MapValues(session.Shapes(), func(s ir.Shape, _ string) string {
			return s.String()
		}),
	}
	for i, stmt := range typed.Statements {
		result.Statements[i] = StatementShape{Index: i, Target: stmt.Target, Shape: stmt.Value.Shape().String()}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Valid (%d statement(s))\n", len(result.Statements))
	for _, s := range result.Statements {
		if s.Target != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", s.Target, s.Shape)
		} else {
			fmt.Fprintf(formatter.Writer, "  [%d]: %s\n", s.Index, s.Shape)
		}
	}
	return nil
}
