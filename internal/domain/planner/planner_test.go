package planner_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/ttfl/internal/domain/ledger"
	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/planner"
	"github.com/okian/ttfl/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// sourceFunc adapts a function to planner.SlateSource.
type sourceFunc func(ctx context.Context, date time.Time) (ranking.Slate, error)

func (f sourceFunc) Slate(ctx context.Context, date time.Time) (ranking.Slate, error) {
	return f(ctx, date)
}

// league plays every listed player every day with a fixed average, except on
// the gap dates where no game is scheduled.
func league(averages map[model.PlayerID]int, gaps ...time.Time) sourceFunc {
	return func(_ context.Context, date time.Time) (ranking.Slate, error) {
		for _, g := range gaps {
			if g.Equal(date) {
				return ranking.Slate{Date: date}, nil
			}
		}
		s := ranking.Slate{Date: date, Logs: make(map[model.PlayerID][]model.GameLogEntry)}
		for id, avg := range averages {
			s.Roster = append(s.Roster, id)
			s.Logs[id] = []model.GameLogEntry{{
				Player: id,
				Date:   date.AddDate(0, 0, -1),
				Stats:  model.BoxScore{Points: avg},
			}}
		}
		return s, nil
	}
}

func picked(p planner.Plan) []model.PlayerID {
	out := make([]model.PlayerID, len(p.Days))
	for i, d := range p.Days {
		if d.Pick != nil {
			out[i] = d.Pick.Player
		}
	}
	return out
}

func TestPlanner_Plan(t *testing.T) {
	ctx := context.Background()

	Convey("Given three players with distinct averages", t, func() {
		src := league(map[model.PlayerID]int{"star": 50, "mid": 30, "low": 10})
		p := planner.New(src)

		Convey("When planning four days", func() {
			plan, err := p.Plan(ctx, start, 4, ledger.New(nil), ranking.Options{})

			Convey("Then each day should take the best player still unlocked", func() {
				So(err, ShouldBeNil)
				So(plan.Days, ShouldHaveLength, 4)
				So(picked(plan)[:3], ShouldResemble, []model.PlayerID{"star", "mid", "low"})
			})

			Convey("And the fourth day should have no eligible player", func() {
				So(plan.Days[3].Pick, ShouldBeNil)
				So(plan.Days[3].Recommendations, ShouldBeEmpty)
				So(plan.Days[3].Excluded, ShouldHaveLength, 3)
			})

			Convey("And dates should be consecutive", func() {
				for i, d := range plan.Days {
					So(d.Date, ShouldEqual, start.AddDate(0, 0, i))
				}
			})

			Convey("And totals should cover days with a pick", func() {
				So(plan.TotalExpected(), ShouldEqual, 90.0)
				So(plan.AveragePerDay(), ShouldEqual, 30.0)
				So(plan.Picks(), ShouldHaveLength, 3)
			})
		})

		Convey("When the seed ledger already locks the star", func() {
			seed := ledger.New([]model.PickRecord{{Player: "star", Date: start.AddDate(0, 0, -29)}})
			plan, err := p.Plan(ctx, start, 2, seed, ranking.Options{})

			Convey("Then the star should come back once the lock expires", func() {
				So(err, ShouldBeNil)
				So(picked(plan), ShouldResemble, []model.PlayerID{"mid", "star"})
			})

			Convey("And the seed should be left untouched", func() {
				So(seed.IsLocked("mid", start.AddDate(0, 0, 1)), ShouldBeFalse)
				So(seed.Len(), ShouldEqual, 1)
			})
		})

		Convey("When asking to include locked players", func() {
			plan, err := p.Plan(ctx, start, 2, ledger.New(nil), ranking.Options{IncludeLocked: true})

			Convey("Then the plan should still respect locks", func() {
				So(err, ShouldBeNil)
				So(picked(plan), ShouldResemble, []model.PlayerID{"star", "mid"})
			})
		})
	})

	Convey("Given a league with more players than the lock window", t, func() {
		averages := make(map[model.PlayerID]int)
		for i := 0; i < 40; i++ {
			averages[model.PlayerID(fmt.Sprintf("p%02d", i))] = 10 + i
		}
		p := planner.New(league(averages))

		Convey("When planning ninety days", func() {
			plan, err := p.Plan(ctx, start, 90, ledger.New(nil), ranking.Options{})
			So(err, ShouldBeNil)

			Convey("Then no player should be picked twice within thirty days", func() {
				last := make(map[model.PlayerID]time.Time)
				for _, d := range plan.Days {
					So(d.Pick, ShouldNotBeNil)
					if prev, ok := last[d.Pick.Player]; ok {
						So(model.DaysBetween(prev, d.Date), ShouldBeGreaterThanOrEqualTo, ledger.DefaultLockDays)
					}
					last[d.Pick.Player] = d.Date
				}
			})

			Convey("And planning again should give the same plan", func() {
				again, err := p.Plan(ctx, start, 90, ledger.New(nil), ranking.Options{})
				So(err, ShouldBeNil)
				So(picked(again), ShouldResemble, picked(plan))
			})
		})
	})

	Convey("Given the star facing an elite defense every day", t, func() {
		base := league(map[model.PlayerID]int{"star": 50, "mid": 42})
		src := sourceFunc(func(ctx context.Context, date time.Time) (ranking.Slate, error) {
			s, err := base(ctx, date)
			s.Opponents = map[model.PlayerID]model.TeamID{"star": "BOS"}
			s.Defense = map[model.TeamID]model.DefenseProfile{"BOS": {Team: "BOS", Factor: 0.8}}
			return s, err
		})
		p := planner.New(src)

		Convey("When planning without defense adjustments", func() {
			plan, err := p.Plan(ctx, start, 1, ledger.New(nil), ranking.Options{})
			So(err, ShouldBeNil)
			So(picked(plan), ShouldResemble, []model.PlayerID{"star"})
		})

		Convey("When planning with them", func() {
			plan, err := p.Plan(ctx, start, 2, ledger.New(nil), ranking.Options{UseDefense: true})

			Convey("Then the unaffected player should go first", func() {
				So(err, ShouldBeNil)
				So(picked(plan), ShouldResemble, []model.PlayerID{"mid", "star"})
				So(plan.Days[1].Pick.AdjustedScore, ShouldEqual, 40.0)
				So(plan.TotalExpected(), ShouldEqual, 82.0)
			})
		})
	})

	Convey("Given a day without games in the middle", t, func() {
		gap := start.AddDate(0, 0, 1)
		p := planner.New(league(map[model.PlayerID]int{"a": 40, "b": 20}, gap))

		Convey("When planning across it", func() {
			plan, err := p.Plan(ctx, start, 3, ledger.New(nil), ranking.Options{})

			Convey("Then the gap day should be empty and planning should continue", func() {
				So(err, ShouldBeNil)
				So(plan.Days[1].Pick, ShouldBeNil)
				So(plan.Days[1].Recommendations, ShouldBeEmpty)
				So(picked(plan), ShouldResemble, []model.PlayerID{"a", "", "b"})
			})
		})
	})

	Convey("Given invalid horizons", t, func() {
		p := planner.New(league(nil), planner.WithMaxDays(10))

		Convey("When days is negative", func() {
			_, err := p.Plan(ctx, start, -1, ledger.New(nil), ranking.Options{})
			So(errors.Is(err, planner.ErrInvalidOption), ShouldBeTrue)
		})

		Convey("When days exceeds the maximum", func() {
			_, err := p.Plan(ctx, start, 11, ledger.New(nil), ranking.Options{})
			So(errors.Is(err, planner.ErrInvalidOption), ShouldBeTrue)
		})

		Convey("When days is zero", func() {
			plan, err := p.Plan(ctx, start, 0, ledger.New(nil), ranking.Options{})
			So(err, ShouldBeNil)
			So(plan.Days, ShouldBeEmpty)
			So(plan.AveragePerDay(), ShouldEqual, 0.0)
		})
	})

	Convey("Given a failing slate source", t, func() {
		boom := errors.New("boom")
		p := planner.New(sourceFunc(func(context.Context, time.Time) (ranking.Slate, error) {
			return ranking.Slate{}, boom
		}))

		Convey("Then the error should be returned", func() {
			_, err := p.Plan(ctx, start, 2, ledger.New(nil), ranking.Options{})
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p := planner.New(league(map[model.PlayerID]int{"a": 1}))

		Convey("Then planning should stop", func() {
			_, err := p.Plan(cctx, start, 2, ledger.New(nil), ranking.Options{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
