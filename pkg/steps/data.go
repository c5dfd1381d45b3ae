package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/mcprun/pkg/lazy"
)

// RuntimeDataProviders returns one provider per data entry. Each resolves its
// relative path against the unpacked data directory as configured at the time
// it is read. The first call freezes the data entries.
func (r *Runtime) RuntimeDataProviders() map[string]lazy.Provider[string] {
	r.data.Finalize()

	result := make(map[string]lazy.Provider[string], r.data.Len())
	for _, key := range r.data.Keys() {
		result[key], _ = r.dataFile(key)
	}
	return result
}

// RuntimeData resolves every data entry to an absolute path of an existing
// file. A failing entry fails the whole read.
func (r *Runtime) RuntimeData() (map[string]string, error) {
	providers := r.RuntimeDataProviders()
	result := make(map[string]string, len(providers))
	for _, key := range r.data.Keys() {
		v, err := providers[key].Get()
		if err != nil {
			return nil, fmt.Errorf("resolving data %s of %s: %w", key, r.GroupLabel(), err)
		}
		result[key] = v
	}
	return result, nil
}

// RuntimeDataFile resolves a single data entry. Like RuntimeDataProviders it
// freezes the data entries.
func (r *Runtime) RuntimeDataFile(key string) (string, error) {
	r.data.Finalize()

	p, ok := r.dataFile(key)
	if !ok {
		p = lazy.Missing[string](key)
	}
	v, err := p.Get()
	if err != nil {
		return "", fmt.Errorf("resolving data %s of %s: %w", key, r.GroupLabel(), err)
	}
	return v, nil
}

// dataFile provides the resolved path of a single data entry.
func (r *Runtime) dataFile(key string) (lazy.Provider[string], bool) {
	relative, ok := r.data.Lookup(key)
	if !ok {
		return nil, false
	}
	return lazy.Zip(r.unpackedDataDirectory, relative, resolveDataFile), true
}

// resolveDataFile joins relative to dir and checks that the file exists.
// Absolute paths are used as they are. A path that does not exist literally
// but contains glob metacharacters must match exactly one file.
func resolveDataFile(dir, relative string) (string, error) {
	path := relative
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, relative)
	}

	_, err := os.Stat(path)
	if os.IsNotExist(err) && !filepath.IsAbs(relative) && isGlob(relative) {
		matched, globErr := globDataFile(dir, relative)
		if globErr != nil {
			return "", globErr
		}
		path = filepath.Join(dir, matched)
		_, err = os.Stat(path)
	}

	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		return "", fmt.Errorf("resolving absolute path of %s: %w", path, absErr)
	}

	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrDataNotFound, abs)
		}
		return "", fmt.Errorf("checking %s: %w", abs, err)
	}
	return abs, nil
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

func globDataFile(dir, pattern string) (string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("glob %q: %w", pattern, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no file in %s matches %q", ErrDataNotFound, dir, pattern)
	case 1:
		return filepath.FromSlash(matches[0]), nil
	default:
		return "", fmt.Errorf("%w: %q matches %d files in %s", ErrAmbiguousData, pattern, len(matches), dir)
	}
}
