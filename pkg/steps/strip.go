package steps

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
)

// ArgInput names the archive a strip step reads.
const ArgInput = "input"

type stripStep struct {
	rt  *Runtime
	cfg *api.StripConfig
}

// NewStripStep creates a step that copies an archive keeping only matching
// entries. Without an explicit input argument it reads the "input" data entry.
func NewStripStep(rt *Runtime, cfg *api.StripConfig) Step {
	if cfg == nil {
		cfg = &api.StripConfig{}
	}
	rt.AddArgumentDefaults(func(r *Runtime, arguments map[string]lazy.Provider[string]) {
		if p, ok := r.dataFile(ArgInput); ok {
			PutIfAbsent(arguments, ArgInput, p)
		}
	})
	return &stripStep{rt: rt, cfg: cfg}
}

func (s *stripStep) Name() string      { return s.rt.Name() }
func (s *stripStep) Runtime() *Runtime { return s.rt }

func (s *stripStep) Run(_ StepContext) (*StepResult, error) {
	if !s.rt.HasRuntimeArgument(ArgInput) {
		return nil, fmt.Errorf("no %s argument or data entry configured", ArgInput)
	}
	args, err := prepareOutput(s.rt, ArgInput)
	if err != nil {
		return nil, err
	}

	input := args[ArgInput]
	if input == "" {
		return nil, fmt.Errorf("argument %s is empty", ArgInput)
	}
	output := args[ArgOutput]

	kept, total, err := stripArchive(input, output, s.cfg.Entries)
	if err != nil {
		return nil, err
	}

	slog.Info("strip step wrote archive", "step", s.Name(), "input", input, "output", output, "kept", kept, "total", total)
	return &StepResult{Output: output}, nil
}

func stripArchive(input, output string, filter api.FileFilter) (kept, total int, err error) {
	reader, err := zip.OpenReader(input)
	if err != nil {
		return 0, 0, fmt.Errorf("opening %s: %w", input, err)
	}
	defer reader.Close()

	out, err := os.Create(output)
	if err != nil {
		return 0, 0, fmt.Errorf("creating output file: %w", err)
	}

	writer := zip.NewWriter(out)
	kept, copyErr := copyEntries(reader.File, writer, filter)

	if closeErr := writer.Close(); closeErr != nil && copyErr == nil {
		copyErr = fmt.Errorf("finishing archive: %w", closeErr)
	}
	if closeErr := out.Close(); closeErr != nil && copyErr == nil {
		copyErr = fmt.Errorf("closing output file: %w", closeErr)
	}
	return kept, len(reader.File), copyErr
}

func copyEntries(files []*zip.File, writer *zip.Writer, filter api.FileFilter) (int, error) {
	kept := 0
	for _, f := range files {
		ok, err := matchName(f.Name, filter.Include, filter.Exclude)
		if err != nil {
			return kept, err
		}
		if !ok {
			continue
		}
		if err := copyEntry(f, writer); err != nil {
			return kept, fmt.Errorf("copying %s: %w", f.Name, err)
		}
		kept++
	}
	return kept, nil
}

func copyEntry(f *zip.File, writer *zip.Writer) error {
	header := &zip.FileHeader{
		Name:     f.Name,
		Method:   f.Method,
		Modified: f.Modified,
	}
	header.SetMode(f.Mode())

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}
