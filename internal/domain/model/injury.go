package model

import "strings"

// InjuryStatus is a player's availability designation for a date.
// The zero value is Healthy, which is also what a missing report means.
type InjuryStatus int

// Injury statuses in increasing order of DNP risk.
const (
	Healthy InjuryStatus = iota
	Probable
	Questionable
	Doubtful
	Out
)

var injuryNames = [...]string{
	Healthy:      "Healthy",
	Probable:     "Probable",
	Questionable: "Questionable",
	Doubtful:     "Doubtful",
	Out:          "Out",
}

func (s InjuryStatus) String() string {
	if s < Healthy || s > Out {
		return "Unknown"
	}
	return injuryNames[s]
}

// Valid reports whether s is one of the declared statuses.
func (s InjuryStatus) Valid() bool {
	return s >= Healthy && s <= Out
}

// MarshalText renders the status name.
func (s InjuryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// statusAliases maps free-text report designations onto the closed set.
// Day-to-day and game-time decisions are treated as questionable, the
// nearest tier at or above their usual 30% miss rate.
var statusAliases = map[string]InjuryStatus{
	"healthy":      Healthy,
	"available":    Healthy,
	"active":       Healthy,
	"probable":     Probable,
	"questionable": Questionable,
	"day-to-day":   Questionable,
	"gtd":          Questionable,
	"doubtful":     Doubtful,
	"out":          Out,
}

// ParseInjuryStatus maps an injury report designation to a status. Matching is
// case-insensitive and falls back to substring matching ("Out (knee)" is Out).
// The boolean is false when nothing matched; the returned status is then Healthy.
func ParseInjuryStatus(text string) (InjuryStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Healthy, true
	}
	if st, ok := statusAliases[s]; ok {
		return st, true
	}
	// Most severe first so "out" does not lose to a weaker alias.
	for _, key := range []string{"out", "doubtful", "questionable", "day-to-day", "gtd", "probable", "available"} {
		if strings.Contains(s, key) {
			return statusAliases[key], true
		}
	}
	return Healthy, false
}
