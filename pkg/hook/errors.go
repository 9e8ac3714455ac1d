package hook

import "errors"

var (
	// ErrHookFailed is returned when a hook exits with an error or returns malformed variables.
	ErrHookFailed = errors.New("hook failed")

	// ErrInvalidDescriptor is returned for a hook descriptor without a filename.
	ErrInvalidDescriptor = errors.New("invalid hook descriptor")
)
