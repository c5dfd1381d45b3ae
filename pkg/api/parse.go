package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadPipeline decodes a pipeline file and validates it. Unknown keys are
// rejected so a misspelled step field fails the load instead of silently
// falling back to a convention. Relative directories in the file are later
// anchored at the file's directory, which is recorded in Dir.
func LoadPipeline(filename string) (*Pipeline, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	var p Pipeline
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing pipeline file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	p.FilePath = absPath
	p.Dir = filepath.Dir(absPath)

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating pipeline %s: %w", filename, err)
	}

	return &p, nil
}
