package hardware

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/systolic/internal/ir"
)

// JSON returns the indented interchange serialization of p.
func (p *Program) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal program: %w", err)
	}
	return data, nil
}

// YAML returns the YAML serialization of p, with the same field names as JSON.
func (p *Program) YAML() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal program: %w", err)
	}
	return data, nil
}

// ParseJSON decodes a program produced by JSON.
func ParseJSON(data []byte) (*Program, error) {
	var p Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal program: %w", err)
	}
	return &p, nil
}

// TestVectors renders p as Chisel test vectors for the SystolicArrayTop
// testbench: per pass, the row-major left operand and column-major right
// operand as signed literals, wrapped every ArraySize entries.
func (p *Program) TestVectors() string {
	var b strings.Builder
	s := p.Config.ArraySize

	b.WriteString("// Auto-generated test vectors for SystolicArrayTop\n")
	fmt.Fprintf(&b, "// Array size: %dx%d\n\n", s, s)

	for i, pass := range p.Passes {
		fmt.Fprintf(&b, "// Pass %d: %s\n", i, pass.Description)
		writeVec(&b, fmt.Sprintf("matrixA_%d", i), pass.MatrixA, s)
		writeVec(&b, fmt.Sprintf("matrixB_%d", i), pass.MatrixB, s)
	}
	return b.String()
}

func writeVec(b *strings.Builder, name string, values []int64, s int) {
	fmt.Fprintf(b, "val %s = VecInit(Seq(\n", name)
	for j, v := range values {
		if j > 0 {
			b.WriteString(", ")
		}
		if j > 0 && j%s == 0 {
			b.WriteString("\n  ")
		}
		fmt.Fprintf(b, "%d.S", v)
	}
	b.WriteString("\n))\n\n")
}

// String renders the human-readable dump of p.
func (p *Program) String() string {
	var b strings.Builder
	b.WriteString("Hardware Program\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Target: %dx%d systolic array\n", p.Config.ArraySize, p.Config.ArraySize)
	fmt.Fprintf(&b, "Data width: %d-bit, Accumulator: %d-bit\n", p.Config.DataWidth, p.Config.AccWidth)
	fmt.Fprintf(&b, "Total passes: %d\n", len(p.Passes))
	fmt.Fprintf(&b, "Total cycles: %d\n", p.TotalCycles)
	counts := p.OperationCounts()
	fmt.Fprintf(&b, "Operations: %s=%d, %s=%d, %s=%d\n",
		OpInitialize, counts[OpInitialize], OpAccumulate, counts[OpAccumulate], OpFinal, counts[OpFinal])
	fmt.Fprintf(&b, "Output shape: %s\n\n", p.OutputShape)

	for i, pass := range p.Passes {
		fmt.Fprintf(&b, "Pass %d:\n", i)
		fmt.Fprintf(&b, "  Description: %s\n", pass.Description)
		fmt.Fprintf(&b, "  A shape: %s\n", pass.AShape)
		fmt.Fprintf(&b, "  B shape: %s\n", pass.BShape)
		fmt.Fprintf(&b, "  Output tile: (%d, %d)\n", pass.OutputTile.TileRow, pass.OutputTile.TileCol)
		fmt.Fprintf(&b, "  Operation: %s\n", pass.Operation)
		fmt.Fprintf(&b, "  Matrix A (row-major): %s\n", formatInts(pass.MatrixA))
		fmt.Fprintf(&b, "  Matrix B (col-major): %s\n\n", formatInts(pass.MatrixB))
	}
	return b.String()
}

func formatInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Fingerprint returns the content-addressed ID of p: SHA-256 over the
// canonical JSON of its config, passes, output shape and cycle count.
// The summary is derived data and is excluded.
func (p *Program) Fingerprint() (string, error) {
	return ir.ContentHash(ir.DomainProgram, p.canonicalMap())
}

func (p *Program) canonicalMap() map[string]any {
	passes := make([]any, len(p.Passes))
	for i, pass := range p.Passes {
		passes[i] = map[string]any{
			"id":           pass.ID,
			"description":  pass.Description,
			"matrix_a":     pass.MatrixA,
			"a_shape":      dimsSlice(pass.AShape),
			"matrix_b":     pass.MatrixB,
			"b_shape":      dimsSlice(pass.BShape),
			"output_shape": dimsSlice(pass.OutputShape),
			"output_tile": map[string]any{
				"tile_row":  pass.OutputTile.TileRow,
				"tile_col":  pass.OutputTile.TileCol,
				"start_row": pass.OutputTile.StartRow,
				"start_col": pass.OutputTile.StartCol,
			},
			"operation": pass.Operation.String(),
		}
	}
	return map[string]any{
		"format_version": ir.FormatVersion,
		"config": map[string]any{
			"array_size": p.Config.ArraySize,
			"data_width": p.Config.DataWidth,
			"acc_width":  p.Config.AccWidth,
		},
		"passes":       passes,
		"output_shape": dimsSlice(p.OutputShape),
		"total_cycles": p.TotalCycles,
	}
}

func dimsSlice(d ir.Dims) []int {
	return []int{d.Rows, d.Cols}
}
