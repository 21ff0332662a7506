// Package types contains request and response shapes shared by the service
// and the HTTP API.
package types

import (
	"time"

	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/ranking"
)

// Request carries per-call ranking choices.
type Request struct {
	Options ranking.Options
	// IgnoreLocks ranks as if the pick history were empty.
	IgnoreLocks bool
}

// Lock describes a player currently unavailable.
type Lock struct {
	Player        model.PlayerID `json:"player"`
	LastPick      time.Time      `json:"last_pick"`
	UnlockDate    time.Time      `json:"unlock_date"`
	DaysRemaining int            `json:"days_remaining"`
}

// Active reports whether the lock still binds on date.
func (l Lock) Active(date time.Time) bool {
	return model.Day(date).Before(l.UnlockDate)
}
