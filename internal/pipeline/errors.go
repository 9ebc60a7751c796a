package pipeline

import "errors"

// ErrURLTooLong is returned when a URL exceeds the configured length limit.
var ErrURLTooLong = errors.New("URL too long")
