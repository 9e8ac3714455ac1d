package series

import "errors"

var (
	// ErrConfiguration is returned when the series document has the wrong shape.
	ErrConfiguration = errors.New("invalid series data")

	// ErrPersist is returned when the updated document cannot be written back.
	ErrPersist = errors.New("failed to persist series data")
)
