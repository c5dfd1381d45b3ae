package lazy

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingValue is matched by every *MissingValueError.
	ErrMissingValue = errors.New("no value configured")

	// ErrFinalized signals a change to a value that has already been read.
	ErrFinalized = errors.New("value is final and cannot be changed")
)

// MissingValueError reports a property or argument that was read while
// neither an explicit value nor a convention was available.
type MissingValueError struct {
	Name string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("no value configured for %s", e.Name)
}

func (e *MissingValueError) Is(target error) bool {
	return target == ErrMissingValue
}

// IsMissing reports whether err is, or wraps, a missing value error.
func IsMissing(err error) bool {
	return errors.Is(err, ErrMissingValue)
}
