package steps

import "errors"

var (
	// ErrDataNotFound signals a data entry that does not resolve to an
	// existing file in the unpacked data directory.
	ErrDataNotFound = errors.New("data file not found")

	// ErrAmbiguousData signals a data glob that matches more than one file.
	ErrAmbiguousData = errors.New("data pattern is ambiguous")
)
