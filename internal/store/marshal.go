package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
)

// marshalBuffer converts a pass buffer to canonical JSON TEXT for storage.
func marshalBuffer(values []int64) (string, error) {
	if values == nil {
		values = []int64{}
	}
	data, err := ir.MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("marshal buffer: %w", err)
	}
	return string(data), nil
}

// unmarshalBuffer parses a stored buffer back to int64 values.
func unmarshalBuffer(data string) ([]int64, error) {
	var values []int64
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal buffer: %w", err)
	}
	if values == nil {
		values = []int64{}
	}
	return values, nil
}

// parseOperation converts the stored accumulation tag.
func parseOperation(s string) (hardware.Operation, error) {
	op, err := hardware.ParseOperation(s)
	if err != nil {
		return 0, fmt.Errorf("unmarshal operation: %w", err)
	}
	return op, nil
}
