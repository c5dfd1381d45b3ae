package steps

import (
	"fmt"
	"io/fs"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

func globFS(fsys fs.FS, patterns []string) ([]string, error) {
	var result []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		result = append(result, matches...)
	}
	slices.Sort(result)
	result = slices.Compact(result)
	return result, nil
}

// filterFiles returns the regular files of fsys matching include but not
// exclude, sorted.
func filterFiles(fsys fs.FS, include, exclude []string) ([]string, error) {
	included, err := globFS(fsys, include)
	if err != nil {
		return nil, fmt.Errorf("include filter: %w", err)
	}

	excluded, err := globFS(fsys, exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude filter: %w", err)
	}

	var result []string
	for _, f := range included {
		if slices.Contains(excluded, f) {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

// matchName reports whether name passes the include/exclude filter. An empty
// include list matches everything.
func matchName(name string, include, exclude []string) (bool, error) {
	included := len(include) == 0
	for _, pattern := range include {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		if ok {
			included = true
			break
		}
	}
	if !included {
		return false, nil
	}

	for _, pattern := range exclude {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return false, nil
		}
	}
	return true, nil
}
