package steps

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
)

const (
	// ArgRoot is the directory a list step searches.
	ArgRoot = "root"

	defaultListExtension = "txt"
)

type listStep struct {
	rt  *Runtime
	cfg *api.ListConfig
}

// NewListStep creates a step that writes the matching files below its root
// as "-e=<path>" lines. The root defaults to the unpacked data directory.
func NewListStep(rt *Runtime, cfg *api.ListConfig) Step {
	if cfg == nil {
		cfg = &api.ListConfig{}
	}
	rt.SetDefaultOutputExtension(defaultListExtension)
	rt.AddArgumentDefaults(func(r *Runtime, arguments map[string]lazy.Provider[string]) {
		PutIfAbsent(arguments, ArgRoot, absolute(r.UnpackedDataDirectory()))
	})
	return &listStep{rt: rt, cfg: cfg}
}

func (s *listStep) Name() string      { return s.rt.Name() }
func (s *listStep) Runtime() *Runtime { return s.rt }

func (s *listStep) Run(_ StepContext) (*StepResult, error) {
	args, err := prepareOutput(s.rt, ArgRoot)
	if err != nil {
		return nil, err
	}

	include := s.cfg.Files.Include
	if len(include) == 0 {
		include = []string{api.DefaultListInclude}
	}

	root := args[ArgRoot]
	files, err := filterFiles(os.DirFS(root), include, s.cfg.Files.Exclude)
	if err != nil {
		return nil, fmt.Errorf("filtering files: %w", err)
	}

	var buf bytes.Buffer
	for _, f := range files {
		buf.WriteString("-e=")
		buf.WriteString(filepath.Join(root, filepath.FromSlash(f)))
		buf.WriteByte('\n')
	}

	output := args[ArgOutput]
	if err := os.WriteFile(output, buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("writing output file: %w", err)
	}

	slog.Info("list step wrote file", "step", s.Name(), "root", root, "count", len(files))
	return &StepResult{Output: output}, nil
}
