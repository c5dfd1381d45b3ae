package steps

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/systemstart/mcprun/pkg/api"
	"github.com/systemstart/mcprun/pkg/lazy"
)

// Keys of the default runtime arguments.
const (
	ArgOutput           = "output"
	ArgOutputDir        = "outputDir"
	ArgOutputExtension  = "outputExtension"
	ArgOutputFileName   = "outputFileName"
	ArgMcpDir           = "mcpDir"
	ArgUnpackedMcpZip   = "unpackedMcpZip"
	ArgStepsDir         = "stepsDir"
	ArgStepName         = "stepName"
	ArgSide             = "side"
	ArgMinecraftVersion = "minecraftVersion"
	ArgJavaVersion      = "javaVersion"
)

// PutIfAbsent stores p under key unless the key is already present.
func PutIfAbsent(arguments map[string]lazy.Provider[string], key string, p lazy.Provider[string]) {
	if _, ok := arguments[key]; !ok {
		arguments[key] = p
	}
}

// ResolveDefaultArguments fills every absent default key of arguments.
// Present keys are never replaced.
func (r *Runtime) ResolveDefaultArguments(arguments map[string]lazy.Provider[string]) {
	PutIfAbsent(arguments, ArgOutput, absolute(r.output))
	PutIfAbsent(arguments, ArgOutputDir, absolute(r.outputDirectory))
	PutIfAbsent(arguments, ArgOutputExtension, lazy.Map[string](r.outputFileName, r.extensionOf))
	PutIfAbsent(arguments, ArgOutputFileName, r.outputFileName)
	PutIfAbsent(arguments, ArgMcpDir, absolute(r.runtimeDirectory))
	PutIfAbsent(arguments, ArgUnpackedMcpZip, absolute(r.unpackedDataDirectory))
	PutIfAbsent(arguments, ArgStepsDir, absolute(r.stepsDirectory))
	PutIfAbsent(arguments, ArgStepName, r.stepName)
	PutIfAbsent(arguments, ArgSide, lazy.Map[api.Side](r.side, api.Side.String))
	PutIfAbsent(arguments, ArgMinecraftVersion, r.minecraftVersion)
	PutIfAbsent(arguments, ArgJavaVersion, r.javaVersion)
}

// extensionOf returns the part of fileName after the last dot, or the default
// extension when there is none.
func (r *Runtime) extensionOf(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 || i == len(fileName)-1 {
		return r.defaultExtension
	}
	return fileName[i+1:]
}

// RuntimeArgumentProviders returns the explicit arguments merged with the
// defaults. The first call freezes the explicit arguments; every entry is
// evaluated at most once successfully.
func (r *Runtime) RuntimeArgumentProviders() map[string]lazy.Provider[string] {
	return maps.Clone(r.argumentProviders())
}

func (r *Runtime) argumentProviders() map[string]lazy.Provider[string] {
	if r.runtimeArguments == nil {
		r.arguments.Finalize()

		result := r.arguments.Entries()
		r.ResolveDefaultArguments(result)
		for _, contribute := range r.argumentDefaults {
			contribute(r, result)
		}
		for key, p := range result {
			result[key] = lazy.Once(p)
		}
		r.runtimeArguments = result
	}
	return r.runtimeArguments
}

// RuntimeArguments evaluates every runtime argument. A failing entry fails
// the whole read.
func (r *Runtime) RuntimeArguments() (map[string]string, error) {
	providers := r.argumentProviders()
	return r.RuntimeArgumentsOf(slices.Sorted(maps.Keys(providers))...)
}

// RuntimeArgumentsOf evaluates only the named runtime arguments, so a step
// does not fail on defaults it never reads. An unknown key is a missing value.
func (r *Runtime) RuntimeArgumentsOf(keys ...string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := r.RuntimeArgument(key)
		if err != nil {
			return nil, err
		}
		result[key] = v
	}
	return result, nil
}

// RuntimeArgument evaluates a single runtime argument.
func (r *Runtime) RuntimeArgument(key string) (string, error) {
	p, ok := r.argumentProviders()[key]
	if !ok {
		p = lazy.Missing[string](key)
	}
	v, err := p.Get()
	if err != nil {
		return "", fmt.Errorf("resolving argument %s of %s: %w", key, r.GroupLabel(), err)
	}
	return v, nil
}

// HasRuntimeArgument reports whether key is an explicit or default argument.
func (r *Runtime) HasRuntimeArgument(key string) bool {
	_, ok := r.argumentProviders()[key]
	return ok
}

// RuntimeMultiArguments evaluates every multi-valued argument. The first read
// freezes them.
func (r *Runtime) RuntimeMultiArguments() (map[string][]string, error) {
	r.multiArguments.Finalize()

	result := make(map[string][]string, r.multiArguments.Len())
	for _, key := range r.multiArguments.Keys() {
		p, _ := r.multiArguments.Lookup(key)
		v, err := p.Get()
		if err != nil {
			return nil, fmt.Errorf("resolving multi argument %s of %s: %w", key, r.GroupLabel(), err)
		}
		result[key] = v
	}
	return result, nil
}
