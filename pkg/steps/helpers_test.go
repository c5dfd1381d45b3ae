package steps

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
)

// writeTestFile writes content to a file in dir, failing the test on error.
func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// writeTestArchive writes a zip with the given entries to path.
func writeTestArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// readTestArchive returns the entry names and contents of a zip.
func readTestArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	entries := make(map[string]string, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, f.UncompressedSize64)
		if _, err := io.ReadFull(rc, buf); err != nil {
			t.Fatal(err)
		}
		rc.Close()
		entries[f.Name] = string(buf)
	}
	return entries
}

// testEnvironment returns a fully configured environment rooted in a temp dir.
func testEnvironment(t *testing.T) Environment {
	t.Helper()
	return Environment{
		BuildDir:         t.TempDir(),
		Side:             api.SideJoined,
		MinecraftVersion: "1.20.4",
		JavaVersion:      "17",
	}
}

func mustGet[T any](t *testing.T, p lazy.Provider[T]) T {
	t.Helper()
	v, err := p.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}
