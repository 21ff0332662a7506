package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/ttfl/internal/domain/model"
)

// DefaultWindow is the number of most recent games a baseline averages.
const DefaultWindow = 10

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithWindow sets how many recent games feed the baseline.
func WithWindow(games int) Option {
	return func(e *Estimator) {
		if games > 0 {
			e.window = games
		}
	}
}

// Baseline is a player's expected score before risk adjustment.
type Baseline struct {
	Player model.PlayerID
	// Mean is the arithmetic mean of Scores.
	Mean float64
	// Scores are the per-game TTFL scores used, most recent first.
	Scores []float64
	Form   Form
}

// Games returns the number of games the baseline was built from.
func (b Baseline) Games() int {
	return len(b.Scores)
}

// Estimator derives baselines from game logs.
type Estimator struct {
	window int
}

// NewEstimator creates an estimator with configuration options.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{window: DefaultWindow}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns the configured number of games.
func (e *Estimator) Window() int {
	return e.window
}

// Estimate computes player's baseline from the games played strictly before
// asOf. Entries for other players are ignored. The result does not depend on
// the order of logs. Returns ErrInsufficientHistory when no game qualifies.
func (e *Estimator) Estimate(player model.PlayerID, logs []model.GameLogEntry, asOf time.Time) (Baseline, error) {
	cutoff := model.Day(asOf)

	type game struct {
		date  time.Time
		score int
	}
	games := make([]game, 0, len(logs))
	for _, l := range logs {
		if l.Player != "" && l.Player != player {
			continue
		}
		d := model.Day(l.Date)
		if !d.Before(cutoff) {
			continue
		}
		games = append(games, game{date: d, score: TTFL(l.Stats)})
	}
	if len(games) == 0 {
		return Baseline{}, fmt.Errorf("player %s before %s: %w", player, model.FormatDate(cutoff), ErrInsufficientHistory)
	}

	// most recent first; same-day games by score so the window cut is stable
	sort.Slice(games, func(i, j int) bool {
		if !games[i].date.Equal(games[j].date) {
			return games[i].date.After(games[j].date)
		}
		return games[i].score > games[j].score
	})
	if len(games) > e.window {
		games = games[:e.window]
	}

	scores := make([]float64, len(games))
	var sum float64
	for i, g := range games {
		scores[i] = float64(g.score)
		sum += scores[i]
	}

	return Baseline{
		Player: player,
		Mean:   sum / float64(len(scores)),
		Scores: scores,
		Form:   AnalyzeForm(scores),
	}, nil
}
