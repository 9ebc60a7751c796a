package features

import "errors"

var (
	// ErrUnknownFeature is returned when a name is not a canonical feature name.
	ErrUnknownFeature = errors.New("unknown feature name")

	// ErrMissingFeature is returned when a canonical feature is absent from a map.
	ErrMissingFeature = errors.New("missing feature")

	// ErrLengthMismatch is returned when a value slice does not hold one value per feature.
	ErrLengthMismatch = errors.New("feature count mismatch")
)
