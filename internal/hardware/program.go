package hardware

import (
	"fmt"

	"github.com/roach88/systolic/internal/ir"
)

// Program is the complete pass sequence for one compilation.
//
// A Program is owned by exactly one compilation and only ever grows by
// AddPass. It is not safe for concurrent mutation.
type Program struct {
	Config      Config  `json:"config" yaml:"config"`
	Passes      []Pass  `json:"passes" yaml:"passes"`
	OutputShape ir.Dims `json:"output_shape" yaml:"output_shape"`
	TotalCycles int     `json:"total_cycles" yaml:"total_cycles"`
	Summary     string  `json:"summary" yaml:"summary"`
}

// NewProgram creates an empty program for cfg.
func NewProgram(cfg Config) *Program {
	return &Program{
		Config: cfg,
		Passes: []Pass{},
	}
}

// AddPass appends p and charges one pass worth of cycles.
// Pass ids must arrive in order: 0, 1, 2, ...
func (p *Program) AddPass(pass Pass) error {
	if pass.ID != len(p.Passes) {
		return ir.NewCodegenError("pass id %d out of order, expected %d", pass.ID, len(p.Passes))
	}
	p.TotalCycles += p.Config.CyclesPerPass()
	p.Passes = append(p.Passes, pass)
	return nil
}

// SetOutputShape records the shape of the most recently produced value.
func (p *Program) SetOutputShape(d ir.Dims) {
	p.OutputShape = d
}

// Finalize regenerates Summary from the current state.
func (p *Program) Finalize() {
	p.Summary = p.summary()
}

func (p *Program) summary() string {
	return fmt.Sprintf("Hardware Program Summary:\n"+
		"=========================\n"+
		"Target: %dx%d systolic array (%d-bit data, %d-bit accumulator)\n"+
		"Passes: %d\n"+
		"Cycles per pass: %d\n"+
		"Total cycles: %d\n"+
		"Output shape: %s\n",
		p.Config.ArraySize, p.Config.ArraySize,
		p.Config.DataWidth, p.Config.AccWidth,
		len(p.Passes),
		p.Config.CyclesPerPass(),
		p.TotalCycles,
		p.OutputShape,
	)
}

// OperationCounts tallies passes by accumulation tag.
func (p *Program) OperationCounts() map[Operation]int {
	counts := make(map[Operation]int, len(operationNames))
	for _, pass := range p.Passes {
		counts[pass.Operation]++
	}
	return counts
}
