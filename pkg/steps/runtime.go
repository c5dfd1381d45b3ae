package steps

import (
	"fmt"
	"path/filepath"

	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
)

const (
	defaultBuildDir        = "build"
	runtimeDirName         = "mcp"
	unpackedDirName        = "unpacked"
	stepsDirName           = "steps"
	outputBaseName         = "output"
	defaultOutputExtension = "jar"
	groupPrefix            = "runtimes"
	unknownStepName        = "unknown"
)

// Environment is the host configuration shared by every runtime of a run.
// Empty fields are unset; reading a default that depends on one fails at
// that read, not at construction.
type Environment struct {
	BuildDir         string
	Side             api.Side
	MinecraftVersion string
	// JavaVersion may be api.JavaVersionAuto to infer it from MinecraftVersion.
	JavaVersion string
}

// ArgumentDefaults adds step-kind specific defaults to a runtime argument map.
// Implementations must only fill absent keys, see PutIfAbsent.
type ArgumentDefaults func(r *Runtime, arguments map[string]lazy.Provider[string])

// Runtime is the configuration of one pipeline step: its directories, its
// output file and the inputs it hands to the transformation it runs.
//
// Every value is deferred. Conventions are derived from other properties and
// are only evaluated when read, so any property can be overridden before the
// first read without breaking the defaults that depend on it.
type Runtime struct {
	stepName              *lazy.Property[string]
	runtimeDirectory      *lazy.Property[string]
	unpackedDataDirectory *lazy.Property[string]
	stepsDirectory        *lazy.Property[string]
	outputDirectory       *lazy.Property[string]
	outputFileName        *lazy.Property[string]
	output                *lazy.Property[string]
	side                  *lazy.Property[api.Side]
	minecraftVersion      *lazy.Property[string]
	javaVersion           *lazy.Property[string]

	data           *lazy.MapProperty[string]
	arguments      *lazy.MapProperty[string]
	multiArguments *lazy.MapProperty[[]string]

	defaultExtension string
	argumentDefaults []ArgumentDefaults
	runtimeArguments map[string]lazy.Provider[string]
}

// NewRuntime creates a runtime named name with the conventional layout under
// env.BuildDir.
func NewRuntime(name string, env Environment) *Runtime {
	r := &Runtime{
		stepName:              lazy.NewProperty[string]("stepName"),
		runtimeDirectory:      lazy.NewProperty[string]("runtimeDirectory"),
		unpackedDataDirectory: lazy.NewProperty[string]("unpackedDataDirectory"),
		stepsDirectory:        lazy.NewProperty[string]("stepsDirectory"),
		outputDirectory:       lazy.NewProperty[string]("outputDirectory"),
		outputFileName:        lazy.NewProperty[string]("outputFileName"),
		output:                lazy.NewProperty[string]("output"),
		side:                  lazy.NewProperty[api.Side]("side"),
		minecraftVersion:      lazy.NewProperty[string]("minecraftVersion"),
		javaVersion:           lazy.NewProperty[string]("javaVersion"),
		data:                  lazy.NewMapProperty[string]("data"),
		arguments:             lazy.NewMapProperty[string]("arguments"),
		multiArguments:        lazy.NewMapProperty[[]string]("multiArguments"),
		defaultExtension:      defaultOutputExtension,
	}

	if name != "" {
		r.stepName.Convention(lazy.Of(name))
	}

	buildDir := env.BuildDir
	if buildDir == "" {
		buildDir = defaultBuildDir
	}

	r.runtimeDirectory.Convention(lazy.Of(filepath.Join(buildDir, runtimeDirName)))
	r.unpackedDataDirectory.Convention(subdirectory(r.runtimeDirectory, unpackedDirName))
	r.stepsDirectory.Convention(subdirectory(r.runtimeDirectory, stepsDirName))

	r.outputDirectory.Convention(lazy.Zip(r.stepsDirectory, r.stepName, joinPath)).FinalizeValueOnRead()
	r.outputFileName.Convention(lazy.Func[string](r.conventionalOutputFileName))
	r.output.Convention(lazy.Zip(r.outputDirectory, r.outputFileName, joinPath))

	// Environment values are memoized in the runtime arguments once read, so
	// they freeze on read like the output directory.
	r.side.Convention(environmentValue("side", env.Side)).FinalizeValueOnRead()
	r.minecraftVersion.Convention(environmentValue("minecraftVersion", env.MinecraftVersion)).FinalizeValueOnRead()
	r.javaVersion.Convention(r.conventionalJavaVersion(env.JavaVersion)).FinalizeValueOnRead()

	return r
}

func subdirectory(parent lazy.Provider[string], name string) lazy.Provider[string] {
	return lazy.Map(parent, func(dir string) string { return filepath.Join(dir, name) })
}

func joinPath(dir, name string) (string, error) {
	return filepath.Join(dir, name), nil
}

func environmentValue[T comparable](name string, v T) lazy.Provider[T] {
	var zero T
	if v == zero {
		return lazy.Missing[T](name)
	}
	return lazy.Of(v)
}

func (r *Runtime) conventionalJavaVersion(configured string) lazy.Provider[string] {
	if configured != api.JavaVersionAuto {
		return environmentValue("javaVersion", configured)
	}
	return lazy.MapErr[string](r.minecraftVersion, api.InferJavaVersion)
}

// conventionalOutputFileName is output.<ext>, where ext comes from an
// explicit outputExtension argument or the runtime's default extension.
func (r *Runtime) conventionalOutputFileName() (string, error) {
	explicit, ok := r.arguments.Lookup(ArgOutputExtension)
	if !ok {
		explicit = lazy.Missing[string](ArgOutputExtension)
	}
	ext, err := lazy.OrElse(explicit, lazy.Of(r.defaultExtension)).Get()
	if err != nil {
		return "", fmt.Errorf("reading argument %s: %w", ArgOutputExtension, err)
	}
	if ext == "" {
		ext = r.defaultExtension
	}
	return outputBaseName + "." + ext, nil
}

// Name returns the step name, or an empty string if none is configured.
func (r *Runtime) Name() string {
	name, err := r.stepName.Get()
	if err != nil {
		return ""
	}
	return name
}

// GroupLabel is a display label for host-side grouping.
func (r *Runtime) GroupLabel() string {
	name := r.Name()
	if name == "" {
		name = unknownStepName
	}
	return groupPrefix + "/" + name
}

func (r *Runtime) StepName() *lazy.Property[string]              { return r.stepName }
func (r *Runtime) RuntimeDirectory() *lazy.Property[string]      { return r.runtimeDirectory }
func (r *Runtime) UnpackedDataDirectory() *lazy.Property[string] { return r.unpackedDataDirectory }
func (r *Runtime) StepsDirectory() *lazy.Property[string]        { return r.stepsDirectory }

// OutputDirectory is frozen by its first successful read.
func (r *Runtime) OutputDirectory() *lazy.Property[string]     { return r.outputDirectory }
func (r *Runtime) OutputFileName() *lazy.Property[string]      { return r.outputFileName }
func (r *Runtime) Output() *lazy.Property[string]              { return r.output }
func (r *Runtime) Side() *lazy.Property[api.Side]              { return r.side }
func (r *Runtime) MinecraftVersion() *lazy.Property[string]    { return r.minecraftVersion }
func (r *Runtime) JavaVersion() *lazy.Property[string]         { return r.javaVersion }
func (r *Runtime) Data() *lazy.MapProperty[string]             { return r.data }
func (r *Runtime) Arguments() *lazy.MapProperty[string]        { return r.arguments }
func (r *Runtime) MultiArguments() *lazy.MapProperty[[]string] { return r.multiArguments }

// ConfigureDirectory overrides the runtime directory. The unpacked, steps and
// output directories follow unless they are overridden themselves.
func (r *Runtime) ConfigureDirectory(path string) error {
	return r.runtimeDirectory.Set(path)
}

// ConfigureOutputName overrides the output file name. The outputExtension
// default is then derived from this name.
func (r *Runtime) ConfigureOutputName(name string) error {
	return r.outputFileName.Set(name)
}

// SetDefaultOutputExtension changes the extension used when no
// outputExtension argument is configured. Step kinds call it on construction.
func (r *Runtime) SetDefaultOutputExtension(ext string) {
	r.defaultExtension = ext
}

// PutData registers a data file by its path relative to the unpacked data
// directory.
func (r *Runtime) PutData(key, relativePath string) error {
	return r.data.Put(key, lazy.Of(relativePath))
}

// PutArgument sets an explicit argument. Explicit arguments always win over
// computed defaults.
func (r *Runtime) PutArgument(key, value string) error {
	return r.arguments.Put(key, lazy.Of(value))
}

// PutArgumentProvider sets an explicit deferred argument, such as the output
// of another step.
func (r *Runtime) PutArgumentProvider(key string, value lazy.Provider[string]) error {
	return r.arguments.Put(key, value)
}

// PutMultiArgument sets an argument that expands into several tokens.
func (r *Runtime) PutMultiArgument(key string, values ...string) error {
	return r.multiArguments.Put(key, lazy.Of(values))
}

// PutMultiArgumentProviders is PutMultiArgument for deferred tokens.
func (r *Runtime) PutMultiArgumentProviders(key string, values ...lazy.Provider[string]) error {
	return r.multiArguments.Put(key, lazy.All(values...))
}

// AddArgumentDefaults registers defaults that are applied after the base set.
func (r *Runtime) AddArgumentDefaults(fn ArgumentDefaults) {
	r.argumentDefaults = append(r.argumentDefaults, fn)
}

// OutputPath provides the absolute path of the output file. Use it to wire
// this step's output into another step's arguments.
func (r *Runtime) OutputPath() lazy.Provider[string] {
	return absolute(r.output)
}

// FileInOutputDirectory provides the absolute path of name inside the output
// directory.
func (r *Runtime) FileInOutputDirectory(name string) lazy.Provider[string] {
	return r.FileInOutputDirectoryOf(lazy.Of(name))
}

// FileInOutputDirectoryOf is FileInOutputDirectory for a deferred name.
func (r *Runtime) FileInOutputDirectoryOf(name lazy.Provider[string]) lazy.Provider[string] {
	return absolute(lazy.Zip(r.outputDirectory, name, joinPath))
}

func absolute(p lazy.Provider[string]) lazy.Provider[string] {
	return lazy.MapErr(p, filepath.Abs)
}
