// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// PlayerID identifies a player across dates and data sources.
type PlayerID string

// Day truncates t to midnight UTC of its calendar date. All dates handled by
// the domain packages are expected to be normalised with Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; must be %s: %w", s, DateLayout, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// PickRecord is a historical or simulated pick.
type PickRecord struct {
	Player PlayerID
	Date   time.Time
}

// BoxScore holds the counting stats of a single game.
type BoxScore struct {
	Points              int
	Rebounds            int
	Assists             int
	Steals              int
	Blocks              int
	FieldGoalsMade      int
	FieldGoalsAttempted int
	ThreesMade          int
	ThreesAttempted     int
	FreeThrowsMade      int
	FreeThrowsAttempted int
	Turnovers           int
}

// GameLogEntry is one game played by a player.
type GameLogEntry struct {
	Player PlayerID
	Date   time.Time
	// Opponent is the team faced, empty when unknown.
	Opponent TeamID
	Stats    BoxScore
}

// TeamID identifies an NBA team, e.g. "BOS".
type TeamID string

// DefenseProfile describes how an opposing team defends. Factor scales the
// fantasy output allowed relative to the league average; DefenderFactor is
// the penalty for facing BestDefender. Zero factors mean unknown.
type DefenseProfile struct {
	Team           TeamID
	Factor         float64
	BestDefender   string
	DefenderFactor float64
}
