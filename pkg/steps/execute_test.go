package steps

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not in PATH")
	}
}

func TestExecuteStep_Run(t *testing.T) {
	skipWithoutShell(t)

	rt := NewRuntime("decompile", testEnvironment(t))
	unpacked := mustGet[string](t, rt.UnpackedDataDirectory())
	writeTestFile(t, unpacked, "config/joined.tsrg", "a -> b\n")
	if err := rt.PutData("mappings", "config/joined.tsrg"); err != nil {
		t.Fatal(err)
	}
	if err := rt.PutArgument("greeting", "hello"); err != nil {
		t.Fatal(err)
	}

	step := NewExecuteStep(rt, &api.ExecuteConfig{
		Command: "sh",
		Args:    []string{"-c", `cat "{mappings}" > "{output}" && echo "{greeting} {side}"`},
	})

	result, err := step.Run(StepContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(result.Output)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "a -> b\n" {
		t.Errorf("unexpected output %q", content)
	}

	log, err := os.ReadFile(filepath.Join(filepath.Dir(result.Output), "decompile.log"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(log)) != "hello joined" {
		t.Errorf("unexpected log %q", log)
	}
}

func TestExecuteStep_MultiArguments(t *testing.T) {
	skipWithoutShell(t)

	rt := NewRuntime("args", testEnvironment(t))
	if err := rt.PutMultiArgument(ArgJvmArgs, "-c"); err != nil {
		t.Fatal(err)
	}
	if err := rt.PutMultiArgument(ArgExtraArgs, "first", "second"); err != nil {
		t.Fatal(err)
	}

	step := NewExecuteStep(rt, &api.ExecuteConfig{
		Command: "sh",
		Args:    []string{`echo "$0 $1" > "{output}"`},
	})

	result, err := step.Run(StepContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(result.Output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(content)) != "first second" {
		t.Errorf("unexpected output %q", content)
	}
}

func TestExecuteStep_NoOutputProduced(t *testing.T) {
	skipWithoutShell(t)

	step := NewExecuteStep(NewRuntime("noop", testEnvironment(t)), &api.ExecuteConfig{
		Command: "sh",
		Args:    []string{"-c", "true"},
	})

	_, err := step.Run(StepContext{})
	if err == nil || !strings.Contains(err.Error(), "did not produce") {
		t.Fatalf("expected missing output error, got %v", err)
	}
}

func TestExecuteStep_CommandFails(t *testing.T) {
	skipWithoutShell(t)

	step := NewExecuteStep(NewRuntime("fail", testEnvironment(t)), &api.ExecuteConfig{
		Command: "sh",
		Args:    []string{"-c", "echo broken >&2; exit 3"},
	})

	_, err := step.Run(StepContext{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "fail.log") {
		t.Errorf("expected the log file in the error, got %v", err)
	}
}

func TestExecuteStep_CommandNotFound(t *testing.T) {
	step := NewExecuteStep(NewRuntime("missing", testEnvironment(t)), &api.ExecuteConfig{
		Command: "definitely-not-a-real-tool-name",
	})

	_, err := step.Run(StepContext{})
	if err == nil || !strings.Contains(err.Error(), "not found in PATH") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestExecuteStep_LogDefault(t *testing.T) {
	rt := NewRuntime("decompile", testEnvironment(t))
	NewExecuteStep(rt, &api.ExecuteConfig{Command: "java"})

	args, err := rt.RuntimeArguments()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(args[ArgOutputDir], "decompile.log"); args[ArgLog] != want {
		t.Errorf("log = %q, want %q", args[ArgLog], want)
	}
}

func TestExecuteStep_IncompleteEnvironment(t *testing.T) {
	skipWithoutShell(t)

	env := testEnvironment(t)
	env.JavaVersion = ""
	env.Side = ""
	step := NewExecuteStep(NewRuntime("decompile", env), &api.ExecuteConfig{
		Command: "sh",
		Args:    []string{"-c", `echo "{minecraftVersion}" > "{output}"`},
	})

	result, err := step.Run(StepContext{})
	if err != nil {
		t.Fatalf("unreferenced defaults must not fail the step: %v", err)
	}
	content, err := os.ReadFile(result.Output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(content)) != "1.20.4" {
		t.Errorf("unexpected output %q", content)
	}
}

func TestExecuteStep_ReferencedValueMissing(t *testing.T) {
	skipWithoutShell(t)

	env := testEnvironment(t)
	env.JavaVersion = ""
	step := NewExecuteStep(NewRuntime("decompile", env), &api.ExecuteConfig{
		Command: "sh",
		Args:    []string{"-c", `echo "{javaVersion}" > "{output}"`},
	})

	if _, err := step.Run(StepContext{}); !lazy.IsMissing(err) {
		t.Fatalf("expected missing value error, got %v", err)
	}
}

func TestExecuteStep_UnknownPlaceholder(t *testing.T) {
	skipWithoutShell(t)

	step := NewExecuteStep(NewRuntime("decompile", testEnvironment(t)), &api.ExecuteConfig{
		Command: "sh",
		Args:    []string{"-c", "echo {unknown}"},
	})

	_, err := step.Run(StepContext{})
	if err == nil || !strings.Contains(err.Error(), `unknown key "unknown"`) {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestExecuteStep_ArgumentWinsOverData(t *testing.T) {
	rt := NewRuntime("decompile", testEnvironment(t))
	unpacked := mustGet[string](t, rt.UnpackedDataDirectory())
	writeTestFile(t, unpacked, "input.jar", "x")
	if err := rt.PutData("input", "input.jar"); err != nil {
		t.Fatal(err)
	}
	if err := rt.PutData("mappings", "missing.tsrg"); err != nil {
		t.Fatal(err)
	}
	if err := rt.PutArgument("input", "/explicit.jar"); err != nil {
		t.Fatal(err)
	}

	step := NewExecuteStep(rt, &api.ExecuteConfig{Command: "java", Args: []string{"--in={input}"}})
	values, err := step.(*executeStep).placeholderValues()
	if err != nil {
		t.Fatalf("unreferenced data entries must not be resolved: %v", err)
	}
	if len(values) != 1 || values["input"] != "/explicit.jar" {
		t.Errorf("unexpected values %v", values)
	}
}

func TestExpandPlaceholders(t *testing.T) {
	values := map[string]string{"input": "/in.jar", "output": "/out.jar", "mappings": "/m.tsrg"}

	tests := []struct {
		in   string
		want string
	}{
		{"--input={input}", "--input=/in.jar"},
		{"{mappings}", "/m.tsrg"},
		{"{input}:{output}", "/in.jar:/out.jar"},
		{"plain", "plain"},
		{"{other}", "{other}"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := expandPlaceholders(tt.in, values); got != tt.want {
				t.Errorf("expandPlaceholders(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
