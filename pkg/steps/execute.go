package steps

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"

	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
)

const (
	// ArgLog is the file the execute step writes the tool's console output to.
	ArgLog = "log"
	// ArgJvmArgs is the multi argument placed before the configured args.
	ArgJvmArgs = "jvmArgs"
	// ArgExtraArgs is the multi argument placed after the configured args.
	ArgExtraArgs = "extraArgs"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)\}`)

type executeStep struct {
	rt  *Runtime
	cfg *api.ExecuteConfig
}

// NewExecuteStep creates a step that runs an external tool.
func NewExecuteStep(rt *Runtime, cfg *api.ExecuteConfig) Step {
	rt.AddArgumentDefaults(func(r *Runtime, arguments map[string]lazy.Provider[string]) {
		PutIfAbsent(arguments, ArgLog, r.FileInOutputDirectoryOf(
			lazy.Map[string](r.StepName(), func(name string) string { return name + ".log" }),
		))
	})
	return &executeStep{rt: rt, cfg: cfg}
}

func (s *executeStep) Name() string      { return s.rt.Name() }
func (s *executeStep) Runtime() *Runtime { return s.rt }

func (s *executeStep) Run(_ StepContext) (*StepResult, error) {
	if _, err := exec.LookPath(s.cfg.Command); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", s.cfg.Command, err)
	}

	args, err := prepareOutput(s.rt, ArgLog)
	if err != nil {
		return nil, err
	}
	values, err := s.placeholderValues()
	if err != nil {
		return nil, err
	}
	multi, err := s.rt.RuntimeMultiArguments()
	if err != nil {
		return nil, err
	}

	var cmdArgs []string
	cmdArgs = append(cmdArgs, multi[ArgJvmArgs]...)
	for _, a := range s.cfg.Args {
		cmdArgs = append(cmdArgs, expandPlaceholders(a, values))
	}
	cmdArgs = append(cmdArgs, multi[ArgExtraArgs]...)

	logFile, err := os.Create(args[ArgLog])
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	slog.Info("running tool", "step", s.Name(), "command", s.cfg.Command, "log", args[ArgLog])

	cmd := exec.Command(s.cfg.Command, cmdArgs...)
	cmd.Dir = args[ArgOutputDir]
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w (see %s)", s.cfg.Command, err, args[ArgLog])
	}

	output := args[ArgOutput]
	if _, err := os.Stat(output); err != nil {
		return nil, fmt.Errorf("%s did not produce %s: %w", s.cfg.Command, output, err)
	}

	return &StepResult{Output: output}, nil
}

// placeholderValues resolves the {key} placeholders the configured args
// reference, and nothing else. A runtime argument wins over a data entry of
// the same name.
func (s *executeStep) placeholderValues() (map[string]string, error) {
	values := make(map[string]string)
	for _, a := range s.cfg.Args {
		for _, m := range placeholderPattern.FindAllStringSubmatch(a, -1) {
			key := m[1]
			if _, done := values[key]; done {
				continue
			}

			var (
				v   string
				err error
			)
			switch {
			case s.rt.HasRuntimeArgument(key):
				v, err = s.rt.RuntimeArgument(key)
			case hasData(s.rt, key):
				v, err = s.rt.RuntimeDataFile(key)
			default:
				err = fmt.Errorf("argument %q references unknown key %q", a, key)
			}
			if err != nil {
				return nil, err
			}
			values[key] = v
		}
	}
	return values, nil
}

func hasData(rt *Runtime, key string) bool {
	_, ok := rt.Data().Lookup(key)
	return ok
}

// expandPlaceholders replaces every {key} in s that has a value.
func expandPlaceholders(s string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		if v, ok := values[token[1:len(token)-1]]; ok {
			return v
		}
		return token
	})
}
