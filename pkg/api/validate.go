package api

import "fmt"

var validStepTypes = map[string]bool{
	StepTypeExecute:  true,
	StepTypeGenerate: true,
	StepTypeStrip:    true,
	StepTypeList:     true,
}

// Validate checks the pipeline configuration for errors.
func (p *Pipeline) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("pipeline has no steps")
	}

	if err := p.Environment.Validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	names := make(map[string]int)

	for i, step := range p.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}

		if !validStepTypes[step.Type] {
			return fmt.Errorf("step %q: unknown type %q", step.Name, step.Type)
		}

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}

		if err := validateArguments(step, names); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}

		names[step.Name] = i
	}

	return nil
}

// Validate checks the environment values that have a fixed vocabulary.
func (e EnvironmentConfig) Validate() error {
	if e.Side != "" {
		if _, err := ParseSide(e.Side); err != nil {
			return err
		}
	}
	return nil
}

func validateStepConfig(step StepConfig) error {
	switch step.Type {
	case StepTypeExecute:
		return validateExecuteConfig(step)
	case StepTypeGenerate:
		return validateGenerateConfig(step)
	}
	return nil
}

func validateExecuteConfig(step StepConfig) error {
	if step.Execute == nil {
		return fmt.Errorf("execute config is required")
	}
	if step.Execute.Command == "" {
		return fmt.Errorf("execute.command is required")
	}
	return nil
}

func validateGenerateConfig(step StepConfig) error {
	if step.Generate == nil {
		return fmt.Errorf("generate config is required")
	}
	if step.Generate.Template == "" {
		return fmt.Errorf("generate.template is required")
	}
	return nil
}

// validateArguments checks that output references only name earlier steps.
func validateArguments(step StepConfig, earlier map[string]int) error {
	check := func(key string, value string) error {
		if ref, ok := OutputReference(value); ok {
			if ref == step.Name {
				return fmt.Errorf("argument %q references the step's own output", key)
			}
			if _, exists := earlier[ref]; !exists {
				return fmt.Errorf("argument %q references %q, which is not an earlier step", key, ref)
			}
		}
		return nil
	}

	for key, value := range step.Arguments {
		if err := check(key, value); err != nil {
			return err
		}
	}
	for key, values := range step.MultiArguments {
		for _, value := range values {
			if err := check(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}
