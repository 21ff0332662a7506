// Package ranking orders the players of a date by risk-adjusted expected score.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/ttfl/internal/domain/ledger"
	"github.com/okian/ttfl/internal/domain/matchup"
	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/risk"
	"github.com/okian/ttfl/internal/domain/scoring"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithEstimator sets the baseline estimator.
func WithEstimator(e *scoring.Estimator) Option {
	return func(r *Ranker) {
		if e != nil {
			r.estimator = e
		}
	}
}

// Ranker turns a slate and a lock ledger into an ordered recommendation list.
// It holds no per-call state and is safe for concurrent use.
type Ranker struct {
	estimator *scoring.Estimator
}

// NewRanker creates a ranker with configuration options.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{estimator: scoring.NewEstimator()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate reports inconsistent option values.
func (o Options) Validate() error {
	if o.MinBaseline < 0 {
		return fmt.Errorf("min baseline %.2f must not be negative: %w", o.MinBaseline, ErrInvalidOption)
	}
	return nil
}

// Recommend ranks the slate's roster for slate.Date.
//
// Ordering is adjusted score descending, then baseline descending, then
// player id ascending. Ranks start at 1. Every rostered player left out is
// listed in Result.Excluded with its reason. When nothing can be ranked the
// returned error wraps ErrDataGap; the Result still carries the exclusions.
func (r *Ranker) Recommend(slate Slate, locks ledger.Ledger, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	date := model.Day(slate.Date)
	res := Result{Date: date}

	roster := uniquePlayers(slate.Roster)
	if len(roster) == 0 {
		return res, fmt.Errorf("no players scheduled on %s: %w", model.FormatDate(date), ErrDataGap)
	}

	for _, id := range roster {
		status := slate.Status(id)
		locked := locks.IsLocked(id, date)

		if locked && !opts.IncludeLocked {
			res.Excluded = append(res.Excluded, Exclusion{Player: id, Reason: ReasonLocked, Status: status})
			continue
		}
		if status == model.Out && !opts.IncludeOut {
			res.Excluded = append(res.Excluded, Exclusion{Player: id, Reason: ReasonOut, Status: status})
			continue
		}

		base, err := r.estimator.Estimate(id, slate.Logs[id], date)
		if err != nil {
			if errors.Is(err, scoring.ErrInsufficientHistory) {
				res.Excluded = append(res.Excluded, Exclusion{Player: id, Reason: ReasonInsufficientHistory, Status: status})
				continue
			}
			return Result{}, err
		}

		baseline := base.Mean
		if opts.UseForm {
			baseline = base.Form.Score()
		}
		if opts.MinBaseline > 0 && baseline < opts.MinBaseline {
			res.Excluded = append(res.Excluded, Exclusion{Player: id, Reason: ReasonBelowMinimum, Status: status, BaselineScore: baseline})
			continue
		}

		rec := Recommendation{
			Player:         id,
			BaselineScore:  baseline,
			DNPRiskPercent: risk.DNPRiskPercent(status),
			Status:         status,
			Locked:         locked,
			GamesPlayed:    base.Games(),
			Form:           base.Form,
			DefenseFactor:  1,
			DefenderFactor: 1,
		}
		expected := baseline
		if profile, ok := slate.Matchup(id); ok {
			rec.Opponent = profile.Team
			rec.BestDefender = profile.BestDefender
			if opts.UseDefense {
				rec.DefenseFactor, rec.DefenderFactor = matchup.Factors(profile)
				expected = matchup.Adjust(baseline, profile)
			}
		}
		rec.AdjustedScore = risk.Adjust(expected, status)
		res.Recommendations = append(res.Recommendations, rec)
	}

	sortRecommendations(res.Recommendations)
	for i := range res.Recommendations {
		res.Recommendations[i].Rank = i + 1
	}

	if len(res.Recommendations) == 0 {
		return res, fmt.Errorf("all %d scheduled players excluded on %s: %w", len(roster), model.FormatDate(date), ErrDataGap)
	}
	return res, nil
}

func sortRecommendations(recs []Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.AdjustedScore != b.AdjustedScore {
			return a.AdjustedScore > b.AdjustedScore
		}
		if a.BaselineScore != b.BaselineScore {
			return a.BaselineScore > b.BaselineScore
		}
		return a.Player < b.Player
	})
}

// uniquePlayers drops duplicates and returns ids in ascending order.
func uniquePlayers(ids []model.PlayerID) []model.PlayerID {
	seen := make(map[model.PlayerID]struct{}, len(ids))
	out := make([]model.PlayerID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
