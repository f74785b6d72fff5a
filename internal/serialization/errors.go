package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrOffsetOverlap      = errors.New("tensor offsets overlap")
	ErrNegativeOffset     = errors.New("negative offset or size")
	ErrDuplicateTensor    = errors.New("duplicate tensor name")
	ErrUnknownDType       = errors.New("unknown tensor dtype")
	ErrSizeMismatch       = errors.New("tensor size does not match shape and dtype")
)

// headerError annotates a validation error with the offending tensor name.
func headerError(err error, name string, detail string) error {
	if detail != "" {
		return fmt.Errorf("%w: tensor %q: %s", err, name, detail)
	}
	return fmt.Errorf("%w: tensor %q", err, name)
}
