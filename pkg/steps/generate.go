package steps

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/mcprun/pkg/api"
)

const defaultGenerateExtension = "txt"

type generateStep struct {
	rt  *Runtime
	cfg *api.GenerateConfig
}

// NewGenerateStep creates a step that renders a template to its output.
func NewGenerateStep(rt *Runtime, cfg *api.GenerateConfig) Step {
	ext := cfg.Extension
	if ext == "" {
		ext = defaultGenerateExtension
	}
	rt.SetDefaultOutputExtension(ext)
	return &generateStep{rt: rt, cfg: cfg}
}

func (s *generateStep) Name() string      { return s.rt.Name() }
func (s *generateStep) Runtime() *Runtime { return s.rt }

// Run renders the template over the pipeline context. The template reads
// runtime arguments with {{ arg "key" }} and data files with
// {{ data "key" }}; only the keys it names are resolved.
func (s *generateStep) Run(ctx StepContext) (*StepResult, error) {
	tmpl, err := template.New(s.Name()).
		Funcs(sprig.FuncMap()).
		Funcs(template.FuncMap{
			"arg":  s.rt.RuntimeArgument,
			"data": s.rt.RuntimeDataFile,
		}).
		Parse(s.cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	args, err := prepareOutput(s.rt)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.TemplateData); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	output := args[ArgOutput]
	if err := os.WriteFile(output, buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("writing output file: %w", err)
	}

	slog.Info("generate step wrote file", "step", s.Name(), "output", output)
	return &StepResult{Output: output}, nil
}
