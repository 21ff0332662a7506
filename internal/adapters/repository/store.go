// Package repository holds the pick history stores and the slate dataset.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/ttfl/internal/domain/model"
)

// PickStore persists the real pick history used to seed the lock ledger.
type PickStore interface {
	// Append records pick. It reports duplicate=true when the same player was
	// already recorded on the same date; the store is left unchanged then.
	Append(ctx context.Context, pick model.PickRecord) (duplicate bool, err error)

	// Picks returns the full history ordered by date, then player.
	Picks(ctx context.Context) ([]model.PickRecord, error)

	// Close releases resources held by the store.
	Close() error
}

func validatePick(p model.PickRecord) (model.PickRecord, error) {
	if p.Player == "" {
		return p, fmt.Errorf("empty player id: %w", ErrInvalidPick)
	}
	if p.Date.IsZero() {
		return p, fmt.Errorf("missing date for %s: %w", p.Player, ErrInvalidPick)
	}
	p.Date = model.Day(p.Date)
	return p, nil
}
