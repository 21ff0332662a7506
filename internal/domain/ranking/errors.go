package ranking

import "errors"

// Sentinel kinds for ranking errors. These allow errors.Is from callers.
var (
	// ErrDataGap means nothing can be ranked for a date: the roster is empty
	// or every scheduled player was excluded.
	ErrDataGap = errors.New("no eligible players")
	// ErrInvalidOption means the caller asked for an inconsistent option set.
	ErrInvalidOption = errors.New("invalid option")
)
