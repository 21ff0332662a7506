// Package ledger tracks which players are locked after being picked.
//
// A Ledger is an immutable snapshot: ApplyPick returns a new Ledger and never
// changes the receiver, so a planning run can simulate future picks on its own
// copy without touching real history.
package ledger

import (
	"sort"
	"time"

	"github.com/okian/ttfl/internal/domain/model"
)

// DefaultLockDays is how long a picked player stays unavailable.
const DefaultLockDays = 30

// Option applies a configuration option to a Ledger.
type Option func(*Ledger)

// WithLockDays overrides the lock window length in days.
func WithLockDays(days int) Option {
	return func(l *Ledger) {
		if days > 0 {
			l.lockDays = days
		}
	}
}

// Ledger maps players to the dates they were picked.
type Ledger struct {
	lockDays int
	// pick dates per player, ascending, normalised with model.Day
	picks map[model.PlayerID][]time.Time
}

// New builds a ledger from pick history. Input order does not matter.
func New(history []model.PickRecord, opts ...Option) Ledger {
	l := Ledger{
		lockDays: DefaultLockDays,
		picks:    make(map[model.PlayerID][]time.Time),
	}
	for _, opt := range opts {
		opt(&l)
	}
	for _, p := range history {
		l.picks[p.Player] = append(l.picks[p.Player], model.Day(p.Date))
	}
	for id := range l.picks {
		dates := l.picks[id]
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}
	return l
}

// LockDays returns the configured lock window.
func (l Ledger) LockDays() int {
	if l.lockDays <= 0 {
		return DefaultLockDays
	}
	return l.lockDays
}

// LastPick returns the most recent pick of player on or before asOf.
func (l Ledger) LastPick(player model.PlayerID, asOf time.Time) (time.Time, bool) {
	dates := l.picks[player]
	asOf = model.Day(asOf)
	// first index with date > asOf
	i := sort.Search(len(dates), func(i int) bool { return dates[i].After(asOf) })
	if i == 0 {
		return time.Time{}, false
	}
	return dates[i-1], true
}

// IsLocked reports whether player is unavailable on asOf. A pick exactly
// LockDays before asOf no longer locks.
func (l Ledger) IsLocked(player model.PlayerID, asOf time.Time) bool {
	last, ok := l.LastPick(player, asOf)
	if !ok {
		return false
	}
	return model.DaysBetween(last, asOf) < l.LockDays()
}

// UnlockDate returns the first date on which player can be picked again,
// given the history visible on asOf. Unlocked players return asOf itself.
func (l Ledger) UnlockDate(player model.PlayerID, asOf time.Time) time.Time {
	last, ok := l.LastPick(player, asOf)
	if !ok || !l.IsLocked(player, asOf) {
		return model.Day(asOf)
	}
	return last.AddDate(0, 0, l.LockDays())
}

// LockedPlayers returns every player locked on asOf, sorted by id.
func (l Ledger) LockedPlayers(asOf time.Time) []model.PlayerID {
	var out []model.PlayerID
	for id := range l.picks {
		if l.IsLocked(id, asOf) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ApplyPick returns a ledger that also contains the given pick.
func (l Ledger) ApplyPick(player model.PlayerID, date time.Time) Ledger {
	next := Ledger{
		lockDays: l.lockDays,
		picks:    make(map[model.PlayerID][]time.Time, len(l.picks)+1),
	}
	for id, dates := range l.picks {
		next.picks[id] = dates
	}

	day := model.Day(date)
	old := l.picks[player]
	dates := make([]time.Time, 0, len(old)+1)
	i := sort.Search(len(old), func(i int) bool { return !old[i].Before(day) })
	dates = append(dates, old[:i]...)
	if i >= len(old) || !old[i].Equal(day) {
		dates = append(dates, day)
	}
	dates = append(dates, old[i:]...)
	next.picks[player] = dates

	return next
}

// Len returns the number of players with at least one pick.
func (l Ledger) Len() int {
	return len(l.picks)
}
