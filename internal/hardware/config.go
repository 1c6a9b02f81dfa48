package hardware

import (
	"github.com/roach88/systolic/internal/ir"
)

// Config describes the target array. It is immutable for the duration of
// one compilation.
type Config struct {
	// ArraySize is the edge length S of the S×S array.
	ArraySize int `json:"array_size" yaml:"array_size"`
	// DataWidth is the operand bit width.
	DataWidth int `json:"data_width" yaml:"data_width"`
	// AccWidth is the accumulator bit width.
	AccWidth int `json:"acc_width" yaml:"acc_width"`
}

// Bounds on configurable widths.
const (
	MinDataWidth = 2
	MaxDataWidth = 32
	MaxAccWidth  = 64
)

// NewConfig returns a Config; call Validate before use.
func NewConfig(arraySize, dataWidth, accWidth int) Config {
	return Config{ArraySize: arraySize, DataWidth: dataWidth, AccWidth: accWidth}
}

// DefaultConfig is a 3×3 array with 8-bit operands and 32-bit accumulators.
func DefaultConfig() Config {
	return NewConfig(3, 8, 32)
}

// Validate reports an INVALID_CONFIG error if c cannot drive a compilation.
func (c Config) Validate() error {
	if c.ArraySize < 1 {
		return ir.NewConfigError("array size must be positive, got %d", c.ArraySize)
	}
	if c.DataWidth < MinDataWidth || c.DataWidth > MaxDataWidth {
		return ir.NewConfigError("data width must be in [%d, %d], got %d", MinDataWidth, MaxDataWidth, c.DataWidth)
	}
	if c.AccWidth < c.DataWidth || c.AccWidth > MaxAccWidth {
		return ir.NewConfigError("accumulator width must be in [%d, %d], got %d", c.DataWidth, MaxAccWidth, c.AccWidth)
	}
	return nil
}

// MaxValue is the largest operand value, 2^(DataWidth-1) - 1.
func (c Config) MaxValue() int64 {
	return int64(1)<<(c.DataWidth-1) - 1
}

// MinValue is the smallest operand value, -2^(DataWidth-1).
func (c Config) MinValue() int64 {
	return -(int64(1) << (c.DataWidth - 1))
}

// CyclesPerPass is the fill-plus-drain latency of one sweep: 3S - 1.
func (c Config) CyclesPerPass() int {
	return 3*c.ArraySize - 1
}
