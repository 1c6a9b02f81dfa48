package job

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Error codes for job loading.
const (
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeReadFailed  = "E004" // file read error
	ErrCodeBadFormat   = "E006" // unsupported extension
	ErrCodeDecode      = "E201" // malformed YAML
	ErrCodeSchema      = "E202" // CUE schema violation
	ErrCodeEmptySource = "E203" // missing source text
)

// LoadError is a job file failure with an optional CUE position.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads the job file at path, choosing the decoder by extension.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "job file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: err.Error()}
	}

	var j *Job
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		j, err = DecodeYAML(bytes.NewReader(data))
	case ".cue", ".json":
		j, err = DecodeCUE(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeBadFormat, Path: path, Message: fmt.Sprintf("unsupported job file extension %q", ext)}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	j.Path = path
	if j.Name == "" {
		j.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return j, nil
}

// LoadAll loads every path in order, stopping at the first failure.
// A directory contributes the job files FindJobFiles returns for it.
func LoadAll(paths []string) ([]*Job, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(files))
	for _, p := range files {
		j, err := Load(p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// DecodeYAML decodes one YAML job. Unknown fields are rejected.
func DecodeYAML(r io.Reader) (*Job, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var j Job
	if err := dec.Decode(&j); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Code: ErrCodeEmptySource, Message: "empty job file"}
		}
		return nil, &LoadError{Code: ErrCodeDecode, Message: err.Error()}
	}
	if strings.TrimSpace(j.Source) == "" {
		return nil, &LoadError{Code: ErrCodeEmptySource, Message: "source is required"}
	}
	return &j, nil
}

// DecodeCUE unifies a CUE or JSON document with #Job and decodes it.
func DecodeCUE(filename string, data []byte) (*Job, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile job schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Job"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(ErrCodeDecode, err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	var j Job
	if err := unified.Decode(&j); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}
	return &j, nil
}

// cueLoadError keeps the first CUE error and its position.
func cueLoadError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := FindJobFiles(p)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Path: p, Message: err.Error()}
		}
		if len(found) == 0 {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: p, Message: "no job files in directory"}
		}
		files = append(files, found...)
	}
	return files, nil
}

// FindJobFiles returns the job files directly under dir, sorted.
func FindJobFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".cue", ".json":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}
