package lazy

import (
	"errors"
	"strings"
	"testing"
)

func TestProperty_ExplicitWinsOverConvention(t *testing.T) {
	p := NewProperty[string]("outputFileName").Convention(Of("output.jar"))

	v, err := p.Get()
	if err != nil || v != "output.jar" {
		t.Fatalf("expected convention output.jar, got %q (%v)", v, err)
	}

	if err := p.Set("mapped.zip"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err = p.Get()
	if err != nil || v != "mapped.zip" {
		t.Fatalf("expected explicit mapped.zip, got %q (%v)", v, err)
	}
}

func TestProperty_ConventionIsReadAtGet(t *testing.T) {
	ext := "jar"
	p := NewProperty[string]("outputFileName").Convention(Func[string](func() (string, error) {
		return "output." + ext, nil
	}))

	ext = "zip"
	v, err := p.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "output.zip" {
		t.Errorf("expected convention to see the latest input, got %q", v)
	}
}

func TestProperty_Unset(t *testing.T) {
	_, err := NewProperty[string]("minecraftVersion").Get()
	if !IsMissing(err) {
		t.Fatalf("expected missing value, got %v", err)
	}
	if !strings.Contains(err.Error(), "minecraftVersion") {
		t.Errorf("expected property name in error, got %v", err)
	}
}

func TestProperty_FinalizeValueOnRead(t *testing.T) {
	dir := "build/mcp/steps"
	p := NewProperty[string]("outputDirectory").
		Convention(Func[string](func() (string, error) { return dir + "/decompile", nil })).
		FinalizeValueOnRead()

	first, err := p.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Set("other"); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected property to be final after read, got %v", err)
	}

	dir = "elsewhere"
	p.Convention(Of("ignored"))
	second, err := p.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected %q on every read, got %q", first, second)
	}
}

func TestProperty_FailedReadDoesNotFinalize(t *testing.T) {
	p := NewProperty[string]("outputDirectory").FinalizeValueOnRead()

	if _, err := p.Get(); !IsMissing(err) {
		t.Fatalf("expected missing value, got %v", err)
	}
	if err := p.Set("build/out"); err != nil {
		t.Fatalf("a failed read must not freeze the property: %v", err)
	}
	if v, err := p.Get(); err != nil || v != "build/out" {
		t.Errorf("expected build/out, got %q (%v)", v, err)
	}
}

func TestProperty_AsProvider(t *testing.T) {
	p := NewProperty[string]("stepName")
	upper := Map[string](p, strings.ToUpper)

	if err := p.Set("rename"); err != nil {
		t.Fatal(err)
	}
	v, err := upper.Get()
	if err != nil || v != "RENAME" {
		t.Errorf("expected RENAME, got %q (%v)", v, err)
	}
}

func TestMapProperty(t *testing.T) {
	m := NewMapProperty[string]("arguments")
	if err := m.Put("side", Of("client")); err != nil {
		t.Fatal(err)
	}
	if err := m.Put("input", Of("a.jar")); err != nil {
		t.Fatal(err)
	}

	if got := m.Keys(); len(got) != 2 || got[0] != "input" || got[1] != "side" {
		t.Errorf("expected sorted keys [input side], got %v", got)
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("expected lookup of unknown key to fail")
	}

	entries := m.Entries()
	delete(entries, "side")
	if m.Len() != 2 {
		t.Error("Entries must return a copy")
	}

	m.Finalize()
	if err := m.Put("late", Of("x")); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized, got %v", err)
	}
}
