package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/systolic/internal/ir"
	"github.com/roach88/systolic/internal/job"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the program text to compile.
	Source string `yaml:"source"`

	// Shapes binds external matrix names to their dimensions.
	Shapes map[string]ir.Dims `yaml:"shapes,omitempty"`

	// Array overrides the default 3x3, 8-bit, 32-bit target.
	Array job.Array `yaml:"array,omitempty"`

	// Strict makes unbound variables an error.
	Strict bool `yaml:"strict,omitempty"`

	// Assertions validate the compiled program.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of a compilation.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Value is the expected count (pass_count, total_cycles).
	Value *int `yaml:"value,omitempty"`

	// Shape is the expected output shape (output_shape).
	Shape *ir.Dims `yaml:"shape,omitempty"`

	// Operations are the expected accumulation tags of the leading passes
	// (pass_operations).
	Operations []string `yaml:"operations,omitempty"`

	// Pass, Operand and Values select and check one buffer (pass_buffer).
	Pass    int     `yaml:"pass,omitempty"`
	Operand string  `yaml:"operand,omitempty"`
	Values  []int64 `yaml:"values,omitempty"`

	// Code is the expected error code (error_code).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertPassCount      = "pass_count"
	AssertTotalCycles    = "total_cycles"
	AssertOutputShape    = "output_shape"
	AssertPassOperations = "pass_operations"
	AssertPassBuffer     = "pass_buffer"
	AssertErrorCode      = "error_code"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every .yaml/.yml scenario directly under dir in
// file name order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if strings.TrimSpace(s.Source) == "" {
		return fmt.Errorf("source is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPassCount, AssertTotalCycles:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
		if *a.Value < 0 {
			return fmt.Errorf("assertions[%d]: value must be non-negative for %s", index, a.Type)
		}
	case AssertOutputShape:
		if a.Shape == nil {
			return fmt.Errorf("assertions[%d]: shape is required for output_shape", index)
		}
	case AssertPassOperations:
		if len(a.Operations) == 0 {
			return fmt.Errorf("assertions[%d]: operations list is required for pass_operations", index)
		}
	case AssertPassBuffer:
		if a.Operand != "a" && a.Operand != "b" {
			return fmt.Errorf("assertions[%d]: operand must be \"a\" or \"b\" for pass_buffer", index)
		}
		if a.Pass < 0 {
			return fmt.Errorf("assertions[%d]: pass must be non-negative for pass_buffer", index)
		}
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values are required for pass_buffer", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
