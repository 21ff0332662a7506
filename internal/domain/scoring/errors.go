package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrInsufficientHistory means no game before the reference date exists,
	// so no baseline can be formed.
	ErrInsufficientHistory = errors.New("insufficient game history")
)
