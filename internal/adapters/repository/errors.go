package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrInvalidPick    = errors.New("invalid pick")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrClosed         = errors.New("store closed")
)
