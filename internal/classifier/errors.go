package classifier

import "errors"

var (
	// ErrModelLoad is returned when a model artifact is missing, unreadable,
	// corrupt, or structurally invalid.
	ErrModelLoad = errors.New("failed to load model")

	// ErrSchemaMismatch is returned when the artifact's feature names are not
	// canonical feature names, or when an input vector has the wrong length.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)
