// Package planner builds a multi-day pick plan by simulating each day's top
// pick against a private copy of the lock ledger.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/ttfl/internal/domain/ledger"
	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/ranking"
)

// SlateSource supplies the slate of a given date.
type SlateSource interface {
	Slate(ctx context.Context, date time.Time) (ranking.Slate, error)
}

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithRanker sets the ranker used for every planned day.
func WithRanker(r *ranking.Ranker) Option {
	return func(p *Planner) {
		if r != nil {
			p.ranker = r
		}
	}
}

// WithMaxDays caps the plan horizon. Zero disables the cap.
func WithMaxDays(n int) Option {
	return func(p *Planner) {
		if n >= 0 {
			p.maxDays = n
		}
	}
}

// Planner produces deterministic plans from a SlateSource.
type Planner struct {
	source  SlateSource
	ranker  *ranking.Ranker
	maxDays int
}

// New creates a planner reading slates from source.
func New(source SlateSource, opts ...Option) *Planner {
	p := &Planner{source: source, ranker: ranking.NewRanker()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DayPlan is the outcome of one planned date.
type DayPlan struct {
	Date            time.Time                `json:"date"`
	Recommendations []ranking.Recommendation `json:"recommendations"`
	Excluded        []ranking.Exclusion      `json:"excluded,omitempty"`
	// Pick is the rank 1 recommendation applied to the working ledger, nil on
	// days without eligible players.
	Pick *ranking.Recommendation `json:"pick"`
}

// Plan is an ordered sequence of consecutive dates.
type Plan struct {
	Start time.Time `json:"start"`
	Days  []DayPlan `json:"days"`
}

// TotalExpected sums the adjusted scores of the planned picks.
func (p Plan) TotalExpected() float64 {
	var total float64
	for _, d := range p.Days {
		if d.Pick != nil {
			total += d.Pick.AdjustedScore
		}
	}
	return total
}

// AveragePerDay is TotalExpected over the number of days with a pick.
func (p Plan) AveragePerDay() float64 {
	var n int
	for _, d := range p.Days {
		if d.Pick != nil {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return p.TotalExpected() / float64(n)
}

// Picks returns the planned picks in date order.
func (p Plan) Picks() []model.PickRecord {
	var out []model.PickRecord
	for _, d := range p.Days {
		if d.Pick != nil {
			out = append(out, model.PickRecord{Player: d.Pick.Player, Date: d.Date})
		}
	}
	return out
}

// Plan ranks days consecutive dates starting at start. Each day's rank 1 pick
// is applied to a working copy of seed before the next day is ranked, so a
// plan never proposes a player inside its lock window. seed is not modified.
// A day with no eligible players yields an empty DayPlan and the plan goes on.
// Locked players are always excluded; opts.IncludeLocked is ignored.
func (p *Planner) Plan(ctx context.Context, start time.Time, days int, seed ledger.Ledger, opts ranking.Options) (Plan, error) {
	if days < 0 {
		return Plan{}, fmt.Errorf("days %d must not be negative: %w", days, ErrInvalidOption)
	}
	if p.maxDays > 0 && days > p.maxDays {
		return Plan{}, fmt.Errorf("days %d exceeds maximum %d: %w", days, p.maxDays, ErrInvalidOption)
	}
	if err := opts.Validate(); err != nil {
		return Plan{}, err
	}
	opts.IncludeLocked = false

	start = model.Day(start)
	plan := Plan{Start: start, Days: make([]DayPlan, 0, days)}
	working := seed

	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		date := start.AddDate(0, 0, i)

		slate, err := p.source.Slate(ctx, date)
		if err != nil {
			return Plan{}, fmt.Errorf("load slate %s: %w", model.FormatDate(date), err)
		}
		if slate.Date.IsZero() {
			slate.Date = date
		}

		res, err := p.ranker.Recommend(slate, working, opts)
		day := DayPlan{Date: date, Excluded: res.Excluded, Recommendations: []ranking.Recommendation{}}
		switch {
		case errors.Is(err, ranking.ErrDataGap):
		case err != nil:
			return Plan{}, fmt.Errorf("rank %s: %w", model.FormatDate(date), err)
		default:
			day.Recommendations = res.Recommendations
			best := res.Recommendations[0]
			day.Pick = &best
			working = working.ApplyPick(best.Player, date)
		}
		plan.Days = append(plan.Days, day)
	}
	return plan, nil
}
