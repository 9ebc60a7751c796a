package dataset

import "errors"

var (
	// ErrMissingColumn is returned when the CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrEmptyDataset is returned when an operation needs at least one row.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrUnknownStrategy is returned for an unsupported balancing strategy.
	ErrUnknownStrategy = errors.New("unknown balancing strategy: must be under, over or none")

	// ErrInvalidIQRFactor is returned when the IQR multiplier is not positive.
	ErrInvalidIQRFactor = errors.New("invalid IQR factor: must be positive")
)
