package api

const (
	DefaultListInclude = "**/*.jar"

	StepTypeExecute  = "execute"
	StepTypeGenerate = "generate"
	StepTypeStrip    = "strip"
	StepTypeList     = "list"

	// JavaVersionAuto infers the Java version from the Minecraft version.
	JavaVersionAuto = "auto"
)

// Pipeline is the pipeline file format.
type Pipeline struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Context     map[string]any    `yaml:"context"`
	Data        map[string]string `yaml:"data"`
	Steps       []StepConfig      `yaml:"steps"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// EnvironmentConfig describes the host side of a run. Empty fields are unset.
type EnvironmentConfig struct {
	BuildDir         string `yaml:"buildDir"`
	RuntimeDir       string `yaml:"runtimeDir"`
	UnpackedDir      string `yaml:"unpackedDir"`
	StepsDir         string `yaml:"stepsDir"`
	Side             string `yaml:"side"`
	MinecraftVersion string `yaml:"minecraftVersion"`
	JavaVersion      string `yaml:"javaVersion"`
}

// StepConfig defines a single step within a pipeline.
type StepConfig struct {
	Name           string            `yaml:"name"`
	Type           string            `yaml:"type"`
	OutputDir      string            `yaml:"outputDir,omitempty"`
	OutputFileName string            `yaml:"outputFileName,omitempty"`
	Data           map[string]string `yaml:"data,omitempty"`
	// Arguments and MultiArguments keep the scalar text as written, so an
	// unquoted 1.20 stays "1.20".
	Arguments      map[string]string   `yaml:"arguments,omitempty"`
	MultiArguments map[string][]string `yaml:"multiArguments,omitempty"`
	Execute        *ExecuteConfig      `yaml:"execute,omitempty"`
	Generate       *GenerateConfig     `yaml:"generate,omitempty"`
	Strip          *StripConfig        `yaml:"strip,omitempty"`
	List           *ListConfig         `yaml:"list,omitempty"`
}

// FileFilter defines include/exclude glob patterns.
type FileFilter struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// ExecuteConfig configures the execute step. Args may contain {key}
// placeholders naming runtime arguments or runtime data entries.
type ExecuteConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// GenerateConfig configures the generate step.
type GenerateConfig struct {
	Template  string `yaml:"template"`
	Extension string `yaml:"extension"`
}

// StripConfig configures the strip step.
type StripConfig struct {
	Entries FileFilter `yaml:"entries"`
}

// ListConfig configures the list step.
type ListConfig struct {
	Files FileFilter `yaml:"files"`
}
