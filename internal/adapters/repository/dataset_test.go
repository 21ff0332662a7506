package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/ttfl/internal/adapters/repository"
	"github.com/okian/ttfl/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const snapshot = `
games:
  - date: "2025-01-21"
    players: [jokic, curry, embiid]
  - date: "2025-01-22"
    players: [jokic]
logs:
  - {player: jokic, date: "2025-01-19", pts: 30, reb: 12, ast: 10, fgm: 12, fga: 20}
  - {player: jokic, date: "2025-01-21", pts: 50}
  - {player: curry, date: "2025-01-18", pts: 25, fg3m: 5, fg3a: 10, fgm: 9, fga: 18}
injuries:
  - {player: curry, date: "2025-01-20", status: "Questionable - Ankle"}
  - {player: embiid, date: "2025-01-21", status: "Injured Reserve"}
picks:
  - {player: jokic, date: "2025-01-01"}
`

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDataset(t *testing.T) {
	ctx := context.Background()

	Convey("Given a YAML snapshot", t, func() {
		ds, err := repository.LoadDataset(ctx, write(t, snapshot))
		So(err, ShouldBeNil)

		Convey("Then schedules, picks and warnings should be loaded", func() {
			So(ds.Dates(), ShouldResemble, []time.Time{day(1, 21), day(1, 22)})
			So(ds.Picks, ShouldResemble, []model.PickRecord{{Player: "jokic", Date: day(1, 1)}})
			So(ds.Players(), ShouldEqual, 2)
			So(ds.Warnings, ShouldHaveLength, 1)
		})

		Convey("When requesting the slate of the 21st", func() {
			s, err := ds.Slate(ctx, day(1, 21))
			So(err, ShouldBeNil)

			Convey("Then the roster and statuses should match", func() {
				So(s.Roster, ShouldResemble, []model.PlayerID{"jokic", "curry", "embiid"})
				So(s.Status("curry"), ShouldEqual, model.Questionable)
				So(s.Status("embiid"), ShouldEqual, model.Healthy)
				So(s.Status("jokic"), ShouldEqual, model.Healthy)
			})

			Convey("And only earlier games should be handed out", func() {
				So(s.Logs["jokic"], ShouldHaveLength, 1)
				So(s.Logs["jokic"][0].Stats.Rebounds, ShouldEqual, 12)
				So(s.Logs["curry"][0].Stats.ThreesMade, ShouldEqual, 5)
				So(s.Logs["embiid"], ShouldBeEmpty)
			})
		})

		Convey("When requesting the next day", func() {
			s, err := ds.Slate(ctx, day(1, 22))
			So(err, ShouldBeNil)
			So(s.Logs["jokic"], ShouldHaveLength, 2)
		})

		Convey("When requesting a day without games", func() {
			s, err := ds.Slate(ctx, day(1, 23))
			So(err, ShouldBeNil)
			So(s.Roster, ShouldBeEmpty)
		})
	})

	Convey("Given a snapshot with a malformed date", t, func() {
		_, err := repository.LoadDataset(ctx, write(t, "games:\n  - date: \"21/01/2025\"\n    players: [a]\n"))
		So(errors.Is(err, repository.ErrInvalidDataset), ShouldBeTrue)
	})

	Convey("Given a missing file", t, func() {
		_, err := repository.LoadDataset(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		So(err, ShouldNotBeNil)
	})
}

const matchupSnapshot = `
games:
  - {date: "2025-01-21", opponent: BOS, players: [tatum2, brown2]}
  - {date: "2025-01-21", opponent: SAC, players: [curry]}
  - {date: "2025-01-21", players: [jokic]}
logs:
  - {player: curry, date: "2025-01-19", opp: LAL, pts: 30}
defense:
  - {team: BOS, factor: 0.9, best_defender: holiday, defender_rank: 12}
  - {team: SAC, factor: 1.15, best_defender: fox, defender_factor: 0.97}
`

func TestLoadDataset_Defense(t *testing.T) {
	ctx := context.Background()

	Convey("Given a snapshot with opponents and defensive profiles", t, func() {
		ds, err := repository.LoadDataset(ctx, write(t, matchupSnapshot))
		So(err, ShouldBeNil)
		s, err := ds.Slate(ctx, day(1, 21))
		So(err, ShouldBeNil)

		Convey("Then each rostered player should carry its opponent", func() {
			So(s.Opponents["tatum2"], ShouldEqual, model.TeamID("BOS"))
			So(s.Opponents["curry"], ShouldEqual, model.TeamID("SAC"))
			_, known := s.Opponents["jokic"]
			So(known, ShouldBeFalse)
		})

		Convey("And a defender rank should map to its tier factor", func() {
			p, ok := s.Matchup("brown2")
			So(ok, ShouldBeTrue)
			So(p.Factor, ShouldEqual, 0.9)
			So(p.BestDefender, ShouldEqual, "holiday")
			So(p.DefenderFactor, ShouldEqual, 0.85)
		})

		Convey("And an explicit defender factor should be kept", func() {
			p, _ := s.Matchup("curry")
			So(p.DefenderFactor, ShouldEqual, 0.97)
		})

		Convey("And game logs should keep the opponent faced", func() {
			So(s.Logs["curry"][0].Opponent, ShouldEqual, model.TeamID("LAL"))
		})
	})

	Convey("Given a defense entry without a team", t, func() {
		_, err := repository.LoadDataset(ctx, write(t, "defense:\n  - {factor: 1.1}\n"))
		So(errors.Is(err, repository.ErrInvalidDataset), ShouldBeTrue)
	})

	Convey("Given a negative defense factor", t, func() {
		_, err := repository.LoadDataset(ctx, write(t, "defense:\n  - {team: BOS, factor: -1}\n"))
		So(errors.Is(err, repository.ErrInvalidDataset), ShouldBeTrue)
	})
}

func TestMemoryDataset_Injuries(t *testing.T) {
	Convey("Given successive injury reports", t, func() {
		ds := repository.NewMemoryDataset()
		ds.AddGame(day(3, 1), "a")
		ds.AddGame(day(3, 5), "a")
		ds.AddGame(day(3, 9), "a")
		ds.SetInjury("a", day(3, 3), model.Doubtful)
		ds.SetInjury("a", day(3, 8), model.Healthy)

		Convey("Then a report should hold until replaced", func() {
			s1, _ := ds.Slate(context.Background(), day(3, 1))
			s5, _ := ds.Slate(context.Background(), day(3, 5))
			s9, _ := ds.Slate(context.Background(), day(3, 9))
			So(s1.Status("a"), ShouldEqual, model.Healthy)
			So(s5.Status("a"), ShouldEqual, model.Doubtful)
			So(s9.Status("a"), ShouldEqual, model.Healthy)
		})

		Convey("And a same-day report should overwrite", func() {
			ds.SetInjury("a", day(3, 3), model.Out)
			s5, _ := ds.Slate(context.Background(), day(3, 5))
			So(s5.Status("a"), ShouldEqual, model.Out)
		})
	})
}
