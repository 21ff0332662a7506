// Package scoring computes TTFL game scores and a player's expected baseline.
package scoring

import "github.com/okian/ttfl/internal/domain/model"

// TTFL returns the fantasy score of one game: every make and counting stat is
// a point, every miss and turnover costs one.
func TTFL(s model.BoxScore) int {
	bonus := s.Points + s.Rebounds + s.Assists + s.Steals + s.Blocks +
		s.FieldGoalsMade + s.ThreesMade + s.FreeThrowsMade
	malus := s.Turnovers +
		(s.FieldGoalsAttempted - s.FieldGoalsMade) +
		(s.ThreesAttempted - s.ThreesMade) +
		(s.FreeThrowsAttempted - s.FreeThrowsMade)
	return bonus - malus
}
