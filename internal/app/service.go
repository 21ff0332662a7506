// Package service wires the picker domain to its stores and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ttfl/internal/adapters/repository"
	"github.com/okian/ttfl/internal/domain/ledger"
	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/planner"
	"github.com/okian/ttfl/internal/domain/ranking"
	"github.com/okian/ttfl/internal/domain/scoring"
	"github.com/okian/ttfl/internal/domain/types"
	"github.com/okian/ttfl/pkg/logger"
	"github.com/okian/ttfl/pkg/metrics"
)

// ErrNotStarted is returned by operations invoked before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the picker.
type Service struct {
	mu sync.RWMutex

	// Core components
	source  planner.SlateSource
	picks   repository.PickStore
	ranker  *ranking.Ranker
	planner *planner.Planner

	// Configuration
	lockDays    int
	window      int
	useForm     bool
	useDefense  bool
	minBaseline float64
	ignoreLocks bool
	maxPlanDays int
	history     []model.PickRecord

	// State
	started         bool
	recommendations atomic.Int64
	dataGaps        atomic.Int64
	plans           atomic.Int64
	picksRecorded   atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSlateSource sets where slates are read from.
func WithSlateSource(src planner.SlateSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithPickStore sets the pick history store. The service closes it on Stop.
func WithPickStore(store repository.PickStore) Option {
	return func(s *Service) {
		if store != nil {
			s.picks = store
		}
	}
}

// WithHistory imports picks into the store on Start.
func WithHistory(picks []model.PickRecord) Option {
	return func(s *Service) {
		s.history = append(s.history, picks...)
	}
}

// WithLockDays sets the lock window length.
func WithLockDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.lockDays = days
		}
	}
}

// WithBaselineWindow sets how many recent games make up a baseline.
func WithBaselineWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithUseForm makes form-adjusted scores the default ranking basis.
func WithUseForm(enabled bool) Option {
	return func(s *Service) {
		s.useForm = enabled
	}
}

// WithUseDefense makes opponent defense adjustments the default.
func WithUseDefense(enabled bool) Option {
	return func(s *Service) {
		s.useDefense = enabled
	}
}

// WithMinBaseline sets the default minimum baseline.
func WithMinBaseline(min float64) Option {
	return func(s *Service) {
		if min >= 0 {
			s.minBaseline = min
		}
	}
}

// WithIgnoreLocks ignores pick history for every call.
func WithIgnoreLocks(enabled bool) Option {
	return func(s *Service) {
		s.ignoreLocks = enabled
	}
}

// WithMaxPlanDays caps the plan horizon.
func WithMaxPlanDays(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPlanDays = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		lockDays:    ledger.DefaultLockDays,
		window:      scoring.DefaultWindow,
		maxPlanDays: 30,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the ranker and planner and imports the configured history.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.source == nil {
		s.source = repository.NewMemoryDataset()
		s.logger.Warn(ctx, "no slate source configured, every date will be a data gap")
	}
	if s.picks == nil {
		s.picks = repository.NewMemoryPickStore()
	}

	s.ranker = ranking.NewRanker(ranking.WithEstimator(scoring.NewEstimator(scoring.WithWindow(s.window))))
	s.planner = planner.New(s.source, planner.WithRanker(s.ranker), planner.WithMaxDays(s.maxPlanDays))

	imported := 0
	for _, p := range s.history {
		dup, err := s.picks.Append(ctx, p)
		if err != nil {
			return fmt.Errorf("import pick %s on %s: %w", p.Player, model.FormatDate(p.Date), err)
		}
		if !dup {
			imported++
		}
	}

	s.started = true
	s.logger.Info(ctx, "picker service started",
		logger.Int("lockDays", s.lockDays),
		logger.Int("baselineWindow", s.window),
		logger.Bool("useForm", s.useForm),
		logger.Bool("useDefense", s.useDefense),
		logger.Bool("ignoreLocks", s.ignoreLocks),
		logger.Int("importedPicks", imported),
	)
	return nil
}

// Stop closes the pick store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.picks != nil {
		if err := s.picks.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing pick store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "picker service stopped")
}

// DefaultOptions returns the configured ranking options.
func (s *Service) DefaultOptions() ranking.Options {
	return ranking.Options{UseForm: s.useForm, UseDefense: s.useDefense, MinBaseline: s.minBaseline}
}

// MaxPlanDays returns the plan horizon cap.
func (s *Service) MaxPlanDays() int { return s.maxPlanDays }

func (s *Service) components() (planner.SlateSource, *ranking.Ranker, *planner.Planner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.source, s.ranker, s.planner, nil
}

// Ledger builds the lock ledger from the stored history, or an empty one
// when locks are ignored.
func (s *Service) Ledger(ctx context.Context, ignoreLocks bool) (ledger.Ledger, error) {
	if s.ignoreLocks || ignoreLocks {
		return ledger.New(nil, ledger.WithLockDays(s.lockDays)), nil
	}
	return s.storedLedger(ctx)
}

func (s *Service) storedLedger(ctx context.Context) (ledger.Ledger, error) {
	s.mu.RLock()
	store := s.picks
	s.mu.RUnlock()
	if store == nil {
		return ledger.Ledger{}, ErrNotStarted
	}
	history, err := store.Picks(ctx)
	if err != nil {
		metrics.RecordError("repository", "read_picks")
		return ledger.Ledger{}, fmt.Errorf("read pick history: %w", err)
	}
	return ledger.New(history, ledger.WithLockDays(s.lockDays)), nil
}

// Recommend ranks the players of date. On a data gap the returned Result
// still carries the exclusions and err wraps ranking.ErrDataGap.
func (s *Service) Recommend(ctx context.Context, date time.Time, req types.Request) (ranking.Result, error) {
	source, ranker, _, err := s.components()
	if err != nil {
		return ranking.Result{}, err
	}
	date = model.Day(date)
	started := time.Now()

	locks, err := s.Ledger(ctx, req.IgnoreLocks)
	if err != nil {
		return ranking.Result{}, err
	}
	slate, err := source.Slate(ctx, date)
	if err != nil {
		metrics.RecordError("repository", "read_slate")
		return ranking.Result{}, fmt.Errorf("load slate %s: %w", model.FormatDate(date), err)
	}
	if slate.Date.IsZero() {
		slate.Date = date
	}

	res, err := ranker.Recommend(slate, locks, req.Options)
	for reason, n := range res.ExcludedBy() {
		metrics.RecordExclusions(string(reason), n)
	}
	switch {
	case errors.Is(err, ranking.ErrDataGap):
		s.dataGaps.Add(1)
		metrics.RecordDataGap()
		s.logger.Warn(ctx, "no eligible players",
			logger.String("date", model.FormatDate(date)),
			logger.Int("rostered", len(slate.Roster)),
			logger.Int("excluded", len(res.Excluded)),
		)
		return res, err
	case err != nil:
		metrics.RecordError("ranking", "recommend")
		return res, err
	}

	elapsed := time.Since(started)
	s.recommendations.Add(1)
	metrics.RecordRecommendation(float64(elapsed.Microseconds())/1000, len(res.Recommendations), len(locks.LockedPlayers(date)))
	s.logger.Debug(ctx, "ranked date",
		logger.String("date", model.FormatDate(date)),
		logger.Int("eligible", len(res.Recommendations)),
		logger.Int("excluded", len(res.Excluded)),
		logger.Duration("elapsed", elapsed),
	)
	return res, nil
}

// Plan simulates days consecutive picks starting at start.
func (s *Service) Plan(ctx context.Context, start time.Time, days int, req types.Request) (planner.Plan, error) {
	_, _, pl, err := s.components()
	if err != nil {
		return planner.Plan{}, err
	}
	started := time.Now()

	seed, err := s.Ledger(ctx, req.IgnoreLocks)
	if err != nil {
		return planner.Plan{}, err
	}
	plan, err := pl.Plan(ctx, start, days, seed, req.Options)
	if err != nil {
		if !errors.Is(err, planner.ErrInvalidOption) {
			metrics.RecordError("planner", "plan")
		}
		return planner.Plan{}, err
	}

	picks := len(plan.Picks())
	elapsed := time.Since(started)
	s.plans.Add(1)
	metrics.RecordPlan(days, picks, float64(elapsed.Microseconds())/1000)
	s.logger.Debug(ctx, "built plan",
		logger.String("start", model.FormatDate(plan.Start)),
		logger.Int("days", days),
		logger.Int("picks", picks),
		logger.Float64("totalExpected", plan.TotalExpected()),
		logger.Duration("elapsed", elapsed),
	)
	return plan, nil
}

// RecordPick appends a real pick to history. Recording the same player on the
// same date twice is a no-op reported through duplicate.
func (s *Service) RecordPick(ctx context.Context, pick model.PickRecord) (duplicate bool, err error) {
	s.mu.RLock()
	store, started := s.picks, s.started
	s.mu.RUnlock()
	if !started {
		return false, ErrNotStarted
	}

	dup, err := store.Append(ctx, pick)
	if err != nil {
		if !errors.Is(err, repository.ErrInvalidPick) {
			metrics.RecordError("repository", "append_pick")
		}
		return false, err
	}
	metrics.RecordPick(dup)
	if !dup {
		s.picksRecorded.Add(1)
	}
	s.logger.Info(ctx, "pick recorded",
		logger.String("player", string(pick.Player)),
		logger.String("date", model.FormatDate(pick.Date)),
		logger.Bool("duplicate", dup),
	)
	return dup, nil
}

// Locks lists players locked on date with their unlock dates. It always
// reads the real history, even when locks are ignored for ranking.
func (s *Service) Locks(ctx context.Context, date time.Time) ([]types.Lock, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	l, err := s.storedLedger(ctx)
	if err != nil {
		return nil, err
	}
	date = model.Day(date)
	ids := l.LockedPlayers(date)
	out := make([]types.Lock, 0, len(ids))
	for _, id := range ids {
		last, _ := l.LastPick(id, date)
		unlock := l.UnlockDate(id, date)
		out = append(out, types.Lock{
			Player:        id,
			LastPick:      last,
			UnlockDate:    unlock,
			DaysRemaining: model.DaysBetween(date, unlock),
		})
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"lockDays":        s.lockDays,
		"baselineWindow":  s.window,
		"useForm":         s.useForm,
		"useDefense":      s.useDefense,
		"ignoreLocks":     s.ignoreLocks,
		"maxPlanDays":     s.maxPlanDays,
		"recommendations": s.recommendations.Load(),
		"dataGaps":        s.dataGaps.Load(),
		"plans":           s.plans.Load(),
		"picksRecorded":   s.picksRecorded.Load(),
	}
	if ds, ok := s.source.(*repository.MemoryDataset); ok {
		stats["scheduledDates"] = len(ds.Dates())
		stats["players"] = ds.Players()
	}
	return stats
}
