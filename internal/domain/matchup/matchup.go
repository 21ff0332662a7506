// Package matchup scales a baseline by the strength of the opposing defense.
package matchup

import "github.com/okian/ttfl/internal/domain/model"

// Bounds of the adjustments.
const (
	// MaxDefenseAdjustment caps the team factor at 1 ± 0.30.
	MaxDefenseAdjustment = 0.30
	// EliteDefenderFactor applies when the opponent has a top-ranked defender.
	EliteDefenderFactor = 0.85
	// GoodDefenderFactor applies when the opponent has a good defender.
	GoodDefenderFactor = 0.93

	eliteDefenderRank = 20
	goodDefenderRank  = 50
)

// Factors returns the team defense and defender factors for profile. Unset
// factors are neutral. The team factor is capped to [0.70, 1.30] and the
// defender factor to [EliteDefenderFactor, 1].
func Factors(profile model.DefenseProfile) (defense, defender float64) {
	defense, defender = 1, 1
	if profile.Factor > 0 {
		defense = clamp(profile.Factor, 1-MaxDefenseAdjustment, 1+MaxDefenseAdjustment)
	}
	if profile.DefenderFactor > 0 {
		defender = clamp(profile.DefenderFactor, EliteDefenderFactor, 1)
	}
	return defense, defender
}

// Adjust multiplies baseline by both factors of profile.
func Adjust(baseline float64, profile model.DefenseProfile) float64 {
	defense, defender := Factors(profile)
	return baseline * defense * defender
}

// DefenderFactorForRank maps a defender's league rank (1 is best) to a
// factor: top 20 elite, top 50 good, anyone else neutral.
func DefenderFactorForRank(rank int) float64 {
	switch {
	case rank >= 1 && rank <= eliteDefenderRank:
		return EliteDefenderFactor
	case rank >= 1 && rank <= goodDefenderRank:
		return GoodDefenderFactor
	default:
		return 1
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
