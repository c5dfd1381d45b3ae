package steps

import (
	"fmt"
	"os"
)

// StepContext provides the runtime context for a step.
type StepContext struct {
	TemplateData map[string]any
}

// StepResult holds the output of a step.
type StepResult struct {
	Output string // absolute path of the produced file
}

// Step is the interface all pipeline steps implement. The transformation a
// step performs reads its inputs only through its Runtime.
type Step interface {
	Name() string
	Runtime() *Runtime
	Run(ctx StepContext) (*StepResult, error)
}

// prepareOutput resolves output, outputDir and the given runtime arguments
// and creates the output directory. Other arguments stay unevaluated.
func prepareOutput(rt *Runtime, keys ...string) (map[string]string, error) {
	args, err := rt.RuntimeArgumentsOf(append([]string{ArgOutput, ArgOutputDir}, keys...)...)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(args[ArgOutputDir], 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return args, nil
}
