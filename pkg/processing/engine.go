package processing

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"

	"dario.cat/mergo"
	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
	"github.com/systemstart/mcprun/pkg/steps"
	"gopkg.in/yaml.v3"
)

// Plan is a pipeline whose steps are constructed and wired but not yet run.
type Plan struct {
	Pipeline    *api.Pipeline
	Environment api.EnvironmentConfig
	Context     map[string]any
	Steps       []steps.Step
}

// BuildPipeline constructs every step of the pipeline. Values in overrides
// take precedence over the pipeline's own environment.
func BuildPipeline(pipeline *api.Pipeline, overrides api.EnvironmentConfig, globalContext map[string]any) (*Plan, error) {
	env, err := resolveEnvironment(pipeline, overrides)
	if err != nil {
		return nil, err
	}

	stepEnv := steps.Environment{
		BuildDir:         env.BuildDir,
		MinecraftVersion: env.MinecraftVersion,
		JavaVersion:      env.JavaVersion,
	}
	if env.Side != "" {
		side, err := api.ParseSide(env.Side)
		if err != nil {
			return nil, fmt.Errorf("environment: %w", err)
		}
		stepEnv.Side = side
	}

	plan := &Plan{
		Pipeline:    pipeline,
		Environment: env,
		Context:     MergeContext(globalContext, pipeline.Context),
	}

	built := make(map[string]steps.Step, len(pipeline.Steps))
	for _, stepCfg := range pipeline.Steps {
		step, err := steps.NewStep(stepCfg, stepEnv)
		if err != nil {
			return nil, fmt.Errorf("creating step %q: %w", stepCfg.Name, err)
		}
		if err := configureStep(step.Runtime(), stepCfg, plan, built); err != nil {
			return nil, fmt.Errorf("configuring step %q: %w", stepCfg.Name, err)
		}
		built[stepCfg.Name] = step
		plan.Steps = append(plan.Steps, step)
	}

	return plan, nil
}

// resolveEnvironment anchors relative directories of the pipeline file at the
// file's directory and merges overrides over it.
func resolveEnvironment(pipeline *api.Pipeline, overrides api.EnvironmentConfig) (api.EnvironmentConfig, error) {
	env := pipeline.Environment
	for _, dir := range []*string{&env.BuildDir, &env.RuntimeDir, &env.UnpackedDir, &env.StepsDir} {
		if *dir != "" && !filepath.IsAbs(*dir) && pipeline.Dir != "" {
			*dir = filepath.Join(pipeline.Dir, *dir)
		}
	}
	if env.BuildDir == "" && pipeline.Dir != "" {
		env.BuildDir = filepath.Join(pipeline.Dir, "build")
	}

	if err := mergo.Merge(&env, overrides, mergo.WithOverride); err != nil {
		return api.EnvironmentConfig{}, fmt.Errorf("merging environment: %w", err)
	}
	return env, nil
}

func configureStep(rt *steps.Runtime, cfg api.StepConfig, plan *Plan, built map[string]steps.Step) error {
	if err := configureDirectories(rt, cfg, plan.Environment); err != nil {
		return err
	}

	for _, data := range []map[string]string{plan.Pipeline.Data, cfg.Data} {
		for key, rel := range data {
			if err := rt.PutData(key, rel); err != nil {
				return err
			}
		}
	}

	for key, value := range cfg.Arguments {
		p, err := argumentProvider(key, value, plan.Context, built)
		if err != nil {
			return err
		}
		if err := rt.PutArgumentProvider(key, p); err != nil {
			return err
		}
	}

	for key, values := range cfg.MultiArguments {
		providers := make([]lazy.Provider[string], 0, len(values))
		for _, value := range values {
			p, err := argumentProvider(key, value, plan.Context, built)
			if err != nil {
				return err
			}
			providers = append(providers, p)
		}
		if err := rt.PutMultiArgumentProviders(key, providers...); err != nil {
			return err
		}
	}

	return nil
}

func configureDirectories(rt *steps.Runtime, cfg api.StepConfig, env api.EnvironmentConfig) error {
	settings := []struct {
		value    string
		property *lazy.Property[string]
	}{
		{env.RuntimeDir, rt.RuntimeDirectory()},
		{env.UnpackedDir, rt.UnpackedDataDirectory()},
		{env.StepsDir, rt.StepsDirectory()},
		{cfg.OutputDir, rt.OutputDirectory()},
		{cfg.OutputFileName, rt.OutputFileName()},
	}
	for _, s := range settings {
		if s.value == "" {
			continue
		}
		if err := s.property.Set(s.value); err != nil {
			return err
		}
	}
	return nil
}

// argumentProvider turns a configured argument into a provider. {<step>Output}
// wires the output of an earlier step; values containing "{{" are rendered as
// templates over the pipeline context when read.
func argumentProvider(key, value string, context map[string]any, built map[string]steps.Step) (lazy.Provider[string], error) {
	if ref, ok := api.OutputReference(value); ok {
		upstream, ok := built[ref]
		if !ok {
			return nil, fmt.Errorf("argument %q references unknown step %q", key, ref)
		}
		return upstream.Runtime().OutputPath(), nil
	}

	if !strings.Contains(value, "{{") {
		return lazy.Of(value), nil
	}

	tmpl, err := template.New(key).Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(value)
	if err != nil {
		return nil, fmt.Errorf("argument %q: parsing template: %w", key, err)
	}
	return lazy.Once(lazy.Func[string](func() (string, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, context); err != nil {
			return "", fmt.Errorf("argument %q: executing template: %w", key, err)
		}
		return buf.String(), nil
	})), nil
}

// RunPipeline executes a single pipeline's steps sequentially.
func RunPipeline(pipeline *api.Pipeline, overrides api.EnvironmentConfig, globalContext map[string]any) error {
	plan, err := BuildPipeline(pipeline, overrides, globalContext)
	if err != nil {
		return err
	}
	return plan.Run()
}

// Run executes the planned steps in order and stops at the first failure.
func (p *Plan) Run() error {
	sctx := steps.StepContext{TemplateData: p.Context}

	for _, step := range p.Steps {
		rt := step.Runtime()
		slog.Info("running step", "pipeline", p.Pipeline.FilePath, "step", step.Name(), "group", rt.GroupLabel())

		result, err := step.Run(sctx)
		if err != nil {
			return fmt.Errorf("step %q failed: %w", step.Name(), err)
		}
		slog.Debug("step finished", "step", step.Name(), "output", result.Output)
	}

	return nil
}

// stepDescription is the resolved configuration of one step.
type stepDescription struct {
	Name           string              `yaml:"name"`
	Group          string              `yaml:"group"`
	Arguments      map[string]string   `yaml:"arguments"`
	MultiArguments map[string][]string `yaml:"multiArguments,omitempty"`
	Data           []string            `yaml:"data,omitempty"`
}

// Describe resolves the runtime arguments of every step and renders them as
// YAML. Data entries are listed by key only, since the unpacked directory may
// not exist yet.
func (p *Plan) Describe() ([]byte, error) {
	descriptions := make([]stepDescription, 0, len(p.Steps))
	for _, step := range p.Steps {
		rt := step.Runtime()

		args, err := rt.RuntimeArguments()
		if err != nil {
			return nil, err
		}
		multi, err := rt.RuntimeMultiArguments()
		if err != nil {
			return nil, err
		}

		descriptions = append(descriptions, stepDescription{
			Name:           step.Name(),
			Group:          rt.GroupLabel(),
			Arguments:      args,
			MultiArguments: multi,
			Data:           rt.Data().Keys(),
		})
	}

	out, err := yaml.Marshal(descriptions)
	if err != nil {
		return nil, fmt.Errorf("marshaling step descriptions: %w", err)
	}
	return out, nil
}
