package schedule

import "errors"

// Package-level sentinel errors. Callers match them via errors.Is; when
// context is needed they are wrapped with fmt.Errorf("...: %w", Err).
var (
	// ErrShapeMismatch is returned when an installed table's row count
	// does not equal the current number of levels or its column count
	// does not equal the image dimensionality.
	ErrShapeMismatch = errors.New("schedule: table shape mismatch")

	// ErrEmptySchedule is returned when a nil or zero-row table is
	// installed.
	ErrEmptySchedule = errors.New("schedule: empty table")
)
