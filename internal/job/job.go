// Package job reads compile job files: the source text, external shape
// bindings and array configuration of one compilation.
//
// YAML files (.yaml, .yml) are decoded strictly with gopkg.in/yaml.v3.
// CUE and JSON files (.cue, .json) are unified with the embedded #Job
// schema and must be concrete.
package job

import (
	"maps"

	"github.com/roach88/systolic/internal/compiler"
	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
)

// Array is the array section of a job. Zero fields take the defaults of
// hardware.DefaultConfig.
type Array struct {
	Size      int `json:"size,omitempty" yaml:"size,omitempty"`
	DataWidth int `json:"data_width,omitempty" yaml:"data_width,omitempty"`
	AccWidth  int `json:"acc_width,omitempty" yaml:"acc_width,omitempty"`
}

// Config resolves a against the defaults.
func (a Array) Config() hardware.Config {
	cfg := hardware.DefaultConfig()
	if a.Size != 0 {
		cfg.ArraySize = a.Size
	}
	if a.DataWidth != 0 {
		cfg.DataWidth = a.DataWidth
	}
	if a.AccWidth != 0 {
		cfg.AccWidth = a.AccWidth
	}
	return cfg
}

// Job is one compilation request read from a file.
type Job struct {
	Name   string             `json:"name,omitempty" yaml:"name,omitempty"`
	Source string             `json:"source" yaml:"source"`
	Shapes map[string]ir.Dims `json:"shapes,omitempty" yaml:"shapes,omitempty"`
	Array  Array              `json:"array,omitempty" yaml:"array,omitempty"`
	Strict bool               `json:"strict,omitempty" yaml:"strict,omitempty"`

	// Path is the file the job was read from; empty for inline jobs.
	Path string `json:"-" yaml:"-"`
}

// Config returns the validated array configuration of j.
func (j Job) Config() (hardware.Config, error) {
	cfg := j.Array.Config()
	if err := cfg.Validate(); err != nil {
		return hardware.Config{}, err
	}
	return cfg, nil
}

// Request converts j into a batch compilation request.
func (j Job) Request() compiler.Request {
	return compiler.Request{
		Name:   j.Name,
		Source: j.Source,
		Shapes: maps.Clone(j.Shapes),
		Config: j.Array.Config(),
		Strict: j.Strict,
	}
}
