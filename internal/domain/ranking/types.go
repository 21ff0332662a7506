package ranking

import (
	"time"

	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/scoring"
)

// Slate holds everything known about one date before ranking it.
type Slate struct {
	Date time.Time
	// Roster lists players with a scheduled game on Date.
	Roster []model.PlayerID
	// Injuries holds reported statuses; missing players are Healthy.
	Injuries map[model.PlayerID]model.InjuryStatus
	// Logs holds each rostered player's game history.
	Logs map[model.PlayerID][]model.GameLogEntry
	// Opponents maps rostered players to the team they face on Date.
	Opponents map[model.PlayerID]model.TeamID
	// Defense holds the defensive profile of each team.
	Defense map[model.TeamID]model.DefenseProfile
}

// Status returns the injury status of player on the slate date.
func (s Slate) Status(player model.PlayerID) model.InjuryStatus {
	if st, ok := s.Injuries[player]; ok {
		return st
	}
	return model.Healthy
}

// Matchup returns the opponent of player and its defensive profile. ok is
// false when the opponent is unknown.
func (s Slate) Matchup(player model.PlayerID) (model.DefenseProfile, bool) {
	team, ok := s.Opponents[player]
	if !ok || team == "" {
		return model.DefenseProfile{}, false
	}
	p, ok := s.Defense[team]
	if !ok {
		return model.DefenseProfile{Team: team}, true
	}
	p.Team = team
	return p, true
}

// Options control which players are eligible.
type Options struct {
	// IncludeLocked keeps players picked within the lock window.
	IncludeLocked bool
	// IncludeOut keeps players reported Out.
	IncludeOut bool
	// UseForm ranks on the form-adjusted score instead of the plain mean.
	UseForm bool
	// UseDefense scales baselines by the opponent's team defense and best
	// defender before the DNP discount.
	UseDefense bool
	// MinBaseline excludes players whose baseline is below it. Zero disables.
	MinBaseline float64
}

// Reason explains why a rostered player was not ranked.
type Reason string

// Exclusion reasons.
const (
	ReasonLocked              Reason = "locked"
	ReasonOut                 Reason = "out"
	ReasonInsufficientHistory Reason = "insufficient_history"
	ReasonBelowMinimum        Reason = "below_minimum"
)

// Exclusion reports a rostered player left out of the ranking.
type Exclusion struct {
	Player model.PlayerID     `json:"player"`
	Reason Reason             `json:"reason"`
	Status model.InjuryStatus `json:"status"`
	// BaselineScore is set for ReasonBelowMinimum.
	BaselineScore float64 `json:"baseline_score,omitempty"`
}

// Recommendation is one ranked, risk-adjusted candidate pick.
type Recommendation struct {
	Player         model.PlayerID     `json:"player"`
	Rank           int                `json:"rank"`
	BaselineScore  float64            `json:"baseline_score"`
	DNPRiskPercent float64            `json:"dnp_risk_percent"`
	AdjustedScore  float64            `json:"adjusted_score"`
	Status         model.InjuryStatus `json:"status"`
	Locked         bool               `json:"locked"`
	GamesPlayed    int                `json:"games_played"`
	Form           scoring.Form       `json:"form"`
	// Opponent is the team faced, empty when unknown.
	Opponent       model.TeamID `json:"opponent,omitempty"`
	DefenseFactor  float64      `json:"defense_factor"`
	DefenderFactor float64      `json:"defender_factor"`
	BestDefender   string       `json:"best_defender,omitempty"`
}

// Result is the ranking of one date.
type Result struct {
	Date            time.Time
	Recommendations []Recommendation
	Excluded        []Exclusion
}

// Top returns at most n recommendations. Non-positive n returns all of them.
func (r Result) Top(n int) []Recommendation {
	if n <= 0 || n >= len(r.Recommendations) {
		return r.Recommendations
	}
	return r.Recommendations[:n]
}

// Best returns the rank 1 recommendation.
func (r Result) Best() (Recommendation, bool) {
	if len(r.Recommendations) == 0 {
		return Recommendation{}, false
	}
	return r.Recommendations[0], true
}

// ExcludedBy counts exclusions per reason.
func (r Result) ExcludedBy() map[Reason]int {
	out := make(map[Reason]int)
	for _, e := range r.Excluded {
		out[e.Reason]++
	}
	return out
}
