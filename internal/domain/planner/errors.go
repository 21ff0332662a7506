package planner

import "github.com/okian/ttfl/internal/domain/ranking"

// ErrInvalidOption is returned for a negative or oversized horizon.
var ErrInvalidOption = ranking.ErrInvalidOption
