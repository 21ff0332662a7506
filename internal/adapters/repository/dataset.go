package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/ttfl/internal/domain/matchup"
	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/ranking"
)

type injuryReport struct {
	date   time.Time
	status model.InjuryStatus
}

// MemoryDataset holds schedules, box scores and injury reports in memory and
// serves them as slates.
type MemoryDataset struct {
	mu        sync.RWMutex
	games     map[time.Time][]model.PlayerID
	logs      map[model.PlayerID][]model.GameLogEntry
	injuries  map[model.PlayerID][]injuryReport
	opponents map[time.Time]map[model.PlayerID]model.TeamID
	defense   map[model.TeamID]model.DefenseProfile
	// Picks holds pick history found in a loaded snapshot.
	Picks []model.PickRecord
	// Warnings lists non-fatal problems found while loading.
	Warnings []string
}

// NewMemoryDataset creates an empty dataset.
func NewMemoryDataset() *MemoryDataset {
	return &MemoryDataset{
		games:     make(map[time.Time][]model.PlayerID),
		logs:      make(map[model.PlayerID][]model.GameLogEntry),
		injuries:  make(map[model.PlayerID][]injuryReport),
		opponents: make(map[time.Time]map[model.PlayerID]model.TeamID),
		defense:   make(map[model.TeamID]model.DefenseProfile),
	}
}

// AddGame schedules players on date.
func (d *MemoryDataset) AddGame(date time.Time, players ...model.PlayerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	day := model.Day(date)
	d.games[day] = append(d.games[day], players...)
}

// SetOpponent records that players face opponent on date.
func (d *MemoryDataset) SetOpponent(date time.Time, opponent model.TeamID, players ...model.PlayerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	day := model.Day(date)
	m := d.opponents[day]
	if m == nil {
		m = make(map[model.PlayerID]model.TeamID, len(players))
		d.opponents[day] = m
	}
	for _, p := range players {
		m[p] = opponent
	}
}

// SetDefense stores the defensive profile of profile.Team, replacing any
// earlier one.
func (d *MemoryDataset) SetDefense(profile model.DefenseProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defense[profile.Team] = profile
}

// AddLog records a played game.
func (d *MemoryDataset) AddLog(entry model.GameLogEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry.Date = model.Day(entry.Date)
	d.logs[entry.Player] = append(d.logs[entry.Player], entry)
}

// SetInjury records a status report for player issued on date. A report
// stays in effect until a later one replaces it.
func (d *MemoryDataset) SetInjury(player model.PlayerID, date time.Time, status model.InjuryStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	day := model.Day(date)
	reports := d.injuries[player]
	for i := range reports {
		if reports[i].date.Equal(day) {
			reports[i].status = status
			return
		}
	}
	reports = append(reports, injuryReport{date: day, status: status})
	sort.Slice(reports, func(i, j int) bool { return reports[i].date.Before(reports[j].date) })
	d.injuries[player] = reports
}

// Slate implements planner.SlateSource. A date without games yields a slate
// with an empty roster. Only games strictly before date are handed out.
func (d *MemoryDataset) Slate(ctx context.Context, date time.Time) (ranking.Slate, error) {
	if err := ctx.Err(); err != nil {
		return ranking.Slate{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	day := model.Day(date)
	roster := d.games[day]
	s := ranking.Slate{
		Date:      day,
		Roster:    append([]model.PlayerID(nil), roster...),
		Injuries:  make(map[model.PlayerID]model.InjuryStatus),
		Logs:      make(map[model.PlayerID][]model.GameLogEntry, len(roster)),
		Opponents: make(map[model.PlayerID]model.TeamID),
		Defense:   make(map[model.TeamID]model.DefenseProfile),
	}
	for _, id := range roster {
		var logs []model.GameLogEntry
		for _, e := range d.logs[id] {
			if e.Date.Before(day) {
				logs = append(logs, e)
			}
		}
		s.Logs[id] = logs

		if st, ok := d.statusOn(id, day); ok {
			s.Injuries[id] = st
		}
		if team, ok := d.opponents[day][id]; ok {
			s.Opponents[id] = team
			if p, ok := d.defense[team]; ok {
				s.Defense[team] = p
			}
		}
	}
	return s, nil
}

// statusOn returns the latest report for player issued on or before day.
func (d *MemoryDataset) statusOn(player model.PlayerID, day time.Time) (model.InjuryStatus, bool) {
	reports := d.injuries[player]
	i := sort.Search(len(reports), func(i int) bool { return reports[i].date.After(day) })
	if i == 0 {
		return model.Healthy, false
	}
	return reports[i-1].status, true
}

// Dates returns every scheduled date in ascending order.
func (d *MemoryDataset) Dates() []time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]time.Time, 0, len(d.games))
	for day := range d.games {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Players returns the number of players with at least one game log.
func (d *MemoryDataset) Players() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.logs)
}

type rawGame struct {
	Date     string   `koanf:"date"`
	Opponent string   `koanf:"opponent"`
	Players  []string `koanf:"players"`
}

type rawLog struct {
	Player    string `koanf:"player"`
	Date      string `koanf:"date"`
	Opponent  string `koanf:"opp"`
	Points    int    `koanf:"pts"`
	Rebounds  int    `koanf:"reb"`
	Assists   int    `koanf:"ast"`
	Steals    int    `koanf:"stl"`
	Blocks    int    `koanf:"blk"`
	FGM       int    `koanf:"fgm"`
	FGA       int    `koanf:"fga"`
	FG3M      int    `koanf:"fg3m"`
	FG3A      int    `koanf:"fg3a"`
	FTM       int    `koanf:"ftm"`
	FTA       int    `koanf:"fta"`
	Turnovers int    `koanf:"tov"`
}

type rawInjury struct {
	Player string `koanf:"player"`
	Date   string `koanf:"date"`
	Status string `koanf:"status"`
}

type rawDefense struct {
	Team           string  `koanf:"team"`
	Factor         float64 `koanf:"factor"`
	BestDefender   string  `koanf:"best_defender"`
	DefenderFactor float64 `koanf:"defender_factor"`
	DefenderRank   int     `koanf:"defender_rank"`
}

type rawPick struct {
	Player string `koanf:"player"`
	Date   string `koanf:"date"`
}

type rawDataset struct {
	Games    []rawGame    `koanf:"games"`
	Logs     []rawLog     `koanf:"logs"`
	Injuries []rawInjury  `koanf:"injuries"`
	Defense  []rawDefense `koanf:"defense"`
	Picks    []rawPick    `koanf:"picks"`
}

// LoadDataset reads a YAML snapshot from path. Dates must be quoted
// YYYY-MM-DD strings. Unrecognised injury statuses are read as Healthy and
// reported in Warnings.
func LoadDataset(ctx context.Context, path string) (*MemoryDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var raw rawDataset
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %v: %w", path, err, ErrInvalidDataset)
	}
	return buildDataset(raw)
}

func buildDataset(raw rawDataset) (*MemoryDataset, error) {
	d := NewMemoryDataset()

	for i, g := range raw.Games {
		day, err := model.ParseDate(g.Date)
		if err != nil {
			return nil, fmt.Errorf("games[%d]: %v: %w", i, err, ErrInvalidDataset)
		}
		ids := make([]model.PlayerID, 0, len(g.Players))
		for _, p := range g.Players {
			ids = append(ids, model.PlayerID(p))
		}
		d.AddGame(day, ids...)
		if g.Opponent != "" {
			d.SetOpponent(day, model.TeamID(g.Opponent), ids...)
		}
	}

	for i, l := range raw.Logs {
		if l.Player == "" {
			return nil, fmt.Errorf("logs[%d]: missing player: %w", i, ErrInvalidDataset)
		}
		day, err := model.ParseDate(l.Date)
		if err != nil {
			return nil, fmt.Errorf("logs[%d]: %v: %w", i, err, ErrInvalidDataset)
		}
		d.AddLog(model.GameLogEntry{
			Player:   model.PlayerID(l.Player),
			Date:     day,
			Opponent: model.TeamID(l.Opponent),
			Stats: model.BoxScore{
				Points:              l.Points,
				Rebounds:            l.Rebounds,
				Assists:             l.Assists,
				Steals:              l.Steals,
				Blocks:              l.Blocks,
				FieldGoalsMade:      l.FGM,
				FieldGoalsAttempted: l.FGA,
				ThreesMade:          l.FG3M,
				ThreesAttempted:     l.FG3A,
				FreeThrowsMade:      l.FTM,
				FreeThrowsAttempted: l.FTA,
				Turnovers:           l.Turnovers,
			},
		})
	}

	for i, in := range raw.Injuries {
		day, err := model.ParseDate(in.Date)
		if err != nil {
			return nil, fmt.Errorf("injuries[%d]: %v: %w", i, err, ErrInvalidDataset)
		}
		st, ok := model.ParseInjuryStatus(in.Status)
		if !ok {
			d.Warnings = append(d.Warnings, fmt.Sprintf("injuries[%d]: unknown status %q for %s, treated as %s", i, in.Status, in.Player, st))
		}
		d.SetInjury(model.PlayerID(in.Player), day, st)
	}

	for i, df := range raw.Defense {
		if df.Team == "" {
			return nil, fmt.Errorf("defense[%d]: missing team: %w", i, ErrInvalidDataset)
		}
		if df.Factor < 0 || df.DefenderFactor < 0 {
			return nil, fmt.Errorf("defense[%d]: negative factor for %s: %w", i, df.Team, ErrInvalidDataset)
		}
		p := model.DefenseProfile{
			Team:           model.TeamID(df.Team),
			Factor:         df.Factor,
			BestDefender:   df.BestDefender,
			DefenderFactor: df.DefenderFactor,
		}
		if p.DefenderFactor == 0 && df.DefenderRank > 0 {
			p.DefenderFactor = matchup.DefenderFactorForRank(df.DefenderRank)
		}
		d.SetDefense(p)
	}

	for i, p := range raw.Picks {
		day, err := model.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("picks[%d]: %v: %w", i, err, ErrInvalidDataset)
		}
		d.Picks = append(d.Picks, model.PickRecord{Player: model.PlayerID(p.Player), Date: day})
	}
	return d, nil
}
