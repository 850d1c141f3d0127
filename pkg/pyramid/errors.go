package pyramid

import "errors"

// Package-level sentinel errors, matched by callers via errors.Is.
var (
	// ErrNoInput is returned when a pipeline hook runs before an input
	// image has been set.
	ErrNoInput = errors.New("pyramid: no input image set")

	// ErrBadLevel is returned for a level index outside
	// [0, NumberOfLevels).
	ErrBadLevel = errors.New("pyramid: level index out of range")

	// ErrDimensionMismatch is returned when the input image
	// dimensionality does not match the generator's.
	ErrDimensionMismatch = errors.New("pyramid: input dimensions do not match generator")

	// ErrMetadataNotReady is returned when a region hook runs before the
	// metadata pass. The pipeline contract fixes the calling order:
	// metadata, requested regions, input region, data.
	ErrMetadataNotReady = errors.New("pyramid: output metadata not generated")

	// ErrRegionNotComputed is returned when a level's data is pulled
	// before its requested region has been propagated.
	ErrRegionNotComputed = errors.New("pyramid: requested region not computed for level")
)
