package api

import "regexp"

var outputReferencePattern = regexp.MustCompile(`^\{([A-Za-z0-9_-]+)Output\}$`)

// OutputReference reports whether an argument value is a reference to the
// output of another step, written as {<step>Output}, and returns the step name.
func OutputReference(value string) (string, bool) {
	m := outputReferencePattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1], true
}
