package facility

import "errors"

var (
	// ErrInvalidConfig indicates a malformed facility configuration document or entry.
	ErrInvalidConfig = errors.New("facility: invalid configuration")

	// ErrUnsupportedScheme indicates a facility URI with a scheme no transport handles.
	ErrUnsupportedScheme = errors.New("facility: unsupported URI scheme")
)
