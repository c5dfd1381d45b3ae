package steps

import (
	"fmt"

	"github.com/systemstart/mcprun/pkg/api"
)

// NewStep creates a Step implementation from a StepConfig.
func NewStep(cfg api.StepConfig, env Environment) (Step, error) {
	rt := NewRuntime(cfg.Name, env)

	switch cfg.Type {
	case api.StepTypeExecute:
		if cfg.Execute == nil {
			return nil, fmt.Errorf("execute step %q has no execute configuration", cfg.Name)
		}
		return NewExecuteStep(rt, cfg.Execute), nil
	case api.StepTypeGenerate:
		if cfg.Generate == nil {
			return nil, fmt.Errorf("generate step %q has no generate configuration", cfg.Name)
		}
		return NewGenerateStep(rt, cfg.Generate), nil
	case api.StepTypeStrip:
		return NewStripStep(rt, cfg.Strip), nil
	case api.StepTypeList:
		return NewListStep(rt, cfg.List), nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", cfg.Type)
	}
}
