package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/logging"
	"github.com/systemstart/mcprun/pkg/processing"
)

var version = "dev"

const (
	_ = iota
	exitNoPipelineFile
	exitDotenvError
	exitLoadPipelineFailed
	exitInvalidEnvironment
	exitLoadContextFailed
	exitBuildFailed
	exitStepErrors
	exitDescribeFailed
	exitLoggingSetupFailed
)

var (
	pipelineFile     string
	buildDirectory   string
	side             string
	minecraftVersion string
	javaVersion      string
	contextFile      string
	printArguments   bool
	loggingType      string
	logLevel         string
	showVersion      bool
)

func init() {
	flag.StringVar(
		&pipelineFile,
		"pipeline",
		"",
		"pipeline YAML file to run")
	flag.StringVar(
		&buildDirectory,
		"build-directory",
		"",
		"build directory (default: <pipeline dir>/build, env MCPRUN_BUILD_DIRECTORY)")
	flag.StringVar(
		&side,
		"side",
		"",
		"distribution side: client, server or joined (env MCPRUN_SIDE)")
	flag.StringVar(
		&minecraftVersion,
		"minecraft-version",
		"",
		"minecraft version (env MCPRUN_MINECRAFT_VERSION)")
	flag.StringVar(
		&javaVersion,
		"java-version",
		"",
		"java version or \"auto\" (env MCPRUN_JAVA_VERSION)")
	flag.StringVar(
		&contextFile,
		"context-file",
		"",
		"global context YAML file")
	flag.BoolVar(
		&printArguments,
		"print-arguments",
		false,
		"print the resolved arguments of every step instead of running (env MCPRUN_PRINT_ARGUMENTS)")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := logging.Initialize(os.Stderr, loggingType, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLoggingSetupFailed)
	}

	includeEnv()

	if pipelineFile == "" {
		slog.Error("-pipeline not set")
		os.Exit(exitNoPipelineFile)
	}

	pipeline, err := api.LoadPipeline(pipelineFile)
	if err != nil {
		slog.Error("failed to load pipeline", "filename", pipelineFile, "error", err)
		os.Exit(exitLoadPipelineFailed)
	}

	overrides := environmentOverrides()
	if err := overrides.Validate(); err != nil {
		slog.Error("invalid environment", "error", err)
		os.Exit(exitInvalidEnvironment)
	}

	plan, err := processing.BuildPipeline(pipeline, overrides, loadGlobalContext())
	if err != nil {
		slog.Error("failed to build pipeline", "filename", pipelineFile, "error", err)
		os.Exit(exitBuildFailed)
	}

	describeOnly, err := boolFlagOrEnv(printArguments, "MCPRUN_PRINT_ARGUMENTS")
	if err != nil {
		slog.Error("invalid environment", "error", err)
		os.Exit(exitInvalidEnvironment)
	}
	if describeOnly {
		describe(plan)
		return
	}

	if err := plan.Run(); err != nil {
		slog.Error("pipeline failed", "error", err)
		os.Exit(exitStepErrors)
	}

	slog.Info("done", "steps", len(plan.Steps))
}

func describe(plan *processing.Plan) {
	out, err := plan.Describe()
	if err != nil {
		slog.Error("failed to resolve arguments", "error", err)
		os.Exit(exitDescribeFailed)
	}
	_, _ = os.Stdout.Write(out)
}

// environmentOverrides collects the flag values, falling back to MCPRUN_*
// variables (possibly from .env) for flags left empty.
func environmentOverrides() api.EnvironmentConfig {
	return api.EnvironmentConfig{
		BuildDir:         flagOrEnv(buildDirectory, "MCPRUN_BUILD_DIRECTORY"),
		Side:             flagOrEnv(side, "MCPRUN_SIDE"),
		MinecraftVersion: flagOrEnv(minecraftVersion, "MCPRUN_MINECRAFT_VERSION"),
		JavaVersion:      flagOrEnv(javaVersion, "MCPRUN_JAVA_VERSION"),
	}
}

func flagOrEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

// boolFlagOrEnv returns true when the flag is set, otherwise the boolean
// value of the environment variable key ("1", "t", "true", "false", ...).
func boolFlagOrEnv(value bool, key string) (bool, error) {
	if value {
		return true, nil
	}
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func loadGlobalContext() map[string]any {
	if contextFile == "" {
		return nil
	}

	ctx, err := processing.LoadContextFile(contextFile)
	if err != nil {
		slog.Error("failed to load context file", "filename", contextFile, "error", err)
		os.Exit(exitLoadContextFailed)
	}
	return ctx
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}
