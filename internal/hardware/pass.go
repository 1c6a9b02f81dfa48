package hardware

import (
	"fmt"

	"github.com/roach88/systolic/internal/ir"
)

// Operation is the accumulation-state tag of a pass.
type Operation int

const (
	// OpInitialize clears the destination accumulator and stores the first
	// partial product of a tile.
	OpInitialize Operation = iota
	// OpAccumulate adds a middle partial product.
	OpAccumulate
	// OpFinal adds the last contribution; the accumulator then holds the
	// finished tile.
	OpFinal
)

var operationNames = [...]string{
	OpInitialize: "Initialize",
	OpAccumulate: "Accumulate",
	OpFinal:      "Final",
}

func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return operationNames[o]
}

// MarshalText implements encoding.TextMarshaler; JSON and YAML both use it.
func (o Operation) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(operationNames) {
		return nil, fmt.Errorf("invalid operation %d", int(o))
	}
	return []byte(operationNames[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ParseOperation maps "Initialize", "Accumulate" or "Final" to an Operation.
func ParseOperation(s string) (Operation, error) {
	for i, name := range operationNames {
		if name == s {
			return Operation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// OperationFor derives the tag from a tile's position along K.
// Last-K wins over first-K so a single K tile is Final.
func OperationFor(isFirstK, isLastK bool) Operation {
	switch {
	case isLastK:
		return OpFinal
	case isFirstK:
		return OpInitialize
	default:
		return OpAccumulate
	}
}

// TileCoord locates an output tile: tile indices and the element offsets
// where the tile starts (index * S).
type TileCoord struct {
	TileRow  int `json:"tile_row" yaml:"tile_row"`
	TileCol  int `json:"tile_col" yaml:"tile_col"`
	StartRow int `json:"start_row" yaml:"start_row"`
	StartCol int `json:"start_col" yaml:"start_col"`
}

// NewTileCoord builds the coordinate of tile (row, col) for edge length s.
func NewTileCoord(row, col, s int) TileCoord {
	return TileCoord{TileRow: row, TileCol: col, StartRow: row * s, StartCol: col * s}
}

// Pass is one streaming sweep of the array.
type Pass struct {
	// ID is the pass's position in the program, starting at 0.
	ID          int    `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	// MatrixA is the padded S×S left operand, row-major.
	MatrixA []int64 `json:"matrix_a" yaml:"matrix_a"`
	// AShape is the unpadded left tile shape.
	AShape ir.Dims `json:"a_shape" yaml:"a_shape"`
	// MatrixB is the padded S×S right operand, column-major.
	MatrixB []int64 `json:"matrix_b" yaml:"matrix_b"`
	// BShape is the unpadded right tile shape.
	BShape      ir.Dims   `json:"b_shape" yaml:"b_shape"`
	OutputShape ir.Dims   `json:"output_shape" yaml:"output_shape"`
	OutputTile  TileCoord `json:"output_tile" yaml:"output_tile"`
	Operation   Operation `json:"operation" yaml:"operation"`
}
