package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() for programmatic error handling.
var (
	// ErrNoTarget is returned when no URL was given on the command line,
	// in a list file or on stdin.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrNoModel is returned when the model path is empty.
	ErrNoModel = errors.New("no model specified: use --model or set model in the config file")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxURLLength is returned when the URL length cap is not positive.
	ErrInvalidMaxURLLength = errors.New("invalid max URL length: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
