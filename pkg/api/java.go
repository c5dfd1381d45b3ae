package api

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// javaRequirements maps Minecraft release ranges to the Java version they
// ship with. Entries are checked in order.
var javaRequirements = []struct {
	constraint string
	java       string
}{
	{"< 1.17.0-0", "8"},
	{"< 1.18.0-0", "16"},
	{"< 1.20.5-0", "17"},
	{">= 1.20.5-0", "21"},
}

// InferJavaVersion returns the Java language version a Minecraft version
// requires. Versions that are not semver-like, such as snapshots, fail.
func InferJavaVersion(minecraftVersion string) (string, error) {
	v, err := semver.NewVersion(minecraftVersion)
	if err != nil {
		return "", fmt.Errorf("cannot infer java version from minecraft version %q: %w", minecraftVersion, err)
	}

	for _, req := range javaRequirements {
		c, err := semver.NewConstraint(req.constraint)
		if err != nil {
			return "", fmt.Errorf("parsing constraint %q: %w", req.constraint, err)
		}
		if c.Check(v) {
			return req.java, nil
		}
	}

	return "", fmt.Errorf("no java version known for minecraft version %q", minecraftVersion)
}
