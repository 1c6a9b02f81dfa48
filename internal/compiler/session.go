// Package compiler wires the analyzer, tiling planner and code generator
// into the compilation entry points.
//
// A compilation is a pure function of (program, shape bindings, config).
// Each Session owns the mutable state of exactly one compilation, so
// independent compilations can run in parallel on separate sessions.
package compiler

import (
	"log/slog"

	"github.com/roach88/systolic/internal/analyzer"
	"github.com/roach88/systolic/internal/codegen"
	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
	"github.com/roach88/systolic/internal/parser"
	"github.com/roach88/systolic/internal/tiling"
)

type options struct {
	logger *slog.Logger
	strict bool
}

// Option configures a compilation.
type Option func(*options)

// WithLogger sets the logger for stage records. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStrictVariables rejects references to unbound names with
// UNDEFINED_VARIABLE instead of treating them as Unknown.
func WithStrictVariables() Option {
	return func(o *options) {
		o.strict = true
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Session holds the per-compilation context: the analyzer's binding table,
// the planner's name counter and the generator's buffer table.
// A Session is not safe for concurrent use.
type Session struct {
	analyzer  *analyzer.Analyzer
	planner   *tiling.Planner
	generator *codegen.Generator
	logger    *slog.Logger
}

// NewSession validates cfg and builds a fresh compilation context seeded
// with external shape bindings.
func NewSession(cfg hardware.Config, shapes map[string]ir.Dims, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	var aopts []analyzer.Option
	if o.strict {
		aopts = append(aopts, analyzer.WithStrictVariables())
	}
	return &Session{
		analyzer:  analyzer.New(shapes, aopts...),
		planner:   tiling.New(cfg.ArraySize),
		generator: codegen.New(cfg),
		logger:    o.logger,
	}, nil
}

// Shapes returns the analyzer's current binding table.
func (s *Session) Shapes() map[string]ir.Shape {
	return s.analyzer.Shapes()
}

// Analyze types prog, statement by statement.
func (s *Session) Analyze(prog ir.Program) (ir.TypedProgram, error) {
	typed := ir.TypedProgram{Statements: make([]ir.TypedStatement, 0, len(prog.Statements))}
	for i, stmt := range prog.Statements {
		ts, err := s.analyzer.AnalyzeStatement(stmt)
		if err != nil {
			return ir.TypedProgram{}, err
		}
		s.logger.Debug("statement analyzed",
			"index", i,
			"target", ts.Target,
			"shape", ts.Value.Shape().String(),
		)
		typed.Statements = append(typed.Statements, ts)
	}
	return typed, nil
}

// Plan lowers a typed program into tiled operations.
func (s *Session) Plan(typed ir.TypedProgram) ([]tiling.Operation, error) {
	ops, err := s.planner.PlanProgram(typed)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("operations planned", "operations", len(ops))
	return ops, nil
}

// Generate synthesizes the hardware program for ops.
func (s *Session) Generate(ops []tiling.Operation) (*hardware.Program, error) {
	prog, err := s.generator.Generate(ops)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("passes generated", "passes", len(prog.Passes))
	return prog, nil
}

// Compile runs all three stages. Any error discards the partial program.
func (s *Session) Compile(prog ir.Program) (*hardware.Program, error) {
	typed, err := s.Analyze(prog)
	if err != nil {
		return nil, err
	}
	ops, err := s.Plan(typed)
	if err != nil {
		return nil, err
	}
	hw, err := s.Generate(ops)
	if err != nil {
		return nil, err
	}
	s.logger.Info("compilation finished",
		"passes", len(hw.Passes),
		"total_cycles", hw.TotalCycles,
		"output_shape", hw.OutputShape.String(),
	)
	return hw, nil
}

// Compile compiles prog using only shapes inferable from the program itself.
func Compile(prog ir.Program, cfg hardware.Config, opts ...Option) (*hardware.Program, error) {
	return CompileWithShapes(prog, nil, cfg, opts...)
}

// CompileWithShapes compiles prog with caller-supplied shapes for names the
// program does not define.
func CompileWithShapes(prog ir.Program, shapes map[string]ir.Dims, cfg hardware.Config, opts ...Option) (*hardware.Program, error) {
	s, err := NewSession(cfg, shapes, opts...)
	if err != nil {
		return nil, err
	}
	return s.Compile(prog)
}

// CompileSource parses src and compiles it with CompileWithShapes.
func CompileSource(src string, shapes map[string]ir.Dims, cfg hardware.Config, opts ...Option) (*hardware.Program, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileWithShapes(prog, shapes, cfg, opts...)
}
