// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/ttfl/internal/adapters/repository"
	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/ranking"
	"github.com/okian/ttfl/internal/domain/types"
	"github.com/okian/ttfl/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecommendDependencies
	PlanDependencies
	PicksDependencies
	LocksDependencies
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithDefaultTop sets the list length used when a request names none.
func WithDefaultTop(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.defaultTop = n
		}
	}
}

// WithMaxPlanDays caps GET /plan?days.
func WithMaxPlanDays(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPlanDays = n
		}
	}
}

// WithClock sets the source of "today" for requests without a date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	defaultTop  int
	maxPlanDays int
	now         func() time.Time

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler
	planHandler      *PlanHandler
	picksHandler     *PicksHandler
	locksHandler     *LocksHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		defaultTop:  10,
		maxPlanDays: 30,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.recommendHandler = NewRecommendHandler(deps, s)
	s.planHandler = NewPlanHandler(deps, s)
	s.picksHandler = NewPicksHandler(deps, s)
	s.locksHandler = NewLocksHandler(deps, s)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/recommendations", MetricsMiddleware(s.recommendHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("/plan", MetricsMiddleware(s.planHandler.HandleGetPlan, "plan"))
	mux.HandleFunc("/picks", MetricsMiddleware(s.picksHandler.HandlePostPick, "picks"))
	mux.HandleFunc("/locks", MetricsMiddleware(s.locksHandler.HandleGetLocks, "locks"))
}

// today returns the current date in UTC.
func (s *Server) today() time.Time {
	return model.Day(s.now().UTC())
}

// requestOptions layers query parameters over defaults.
type requestOptions struct {
	Date time.Time
	Top  int
	Req  types.Request
}

// parseRequestOptions reads date, top, include_locked, include_out,
// ignore_locks, use_form, use_defense and min_baseline. dateKey names the date parameter.
func (s *Server) parseRequestOptions(r *http.Request, dateKey string, defaults ranking.Options) (requestOptions, error) {
	q := r.URL.Query()
	out := requestOptions{Date: s.today(), Top: s.defaultTop, Req: types.Request{Options: defaults}}

	if v := strings.TrimSpace(q.Get(dateKey)); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return out, fmt.Errorf("%s: %w", dateKey, err)
		}
		out.Date = d
	}
	if v := strings.TrimSpace(q.Get("top")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return out, fmt.Errorf("top must be a positive integer, got %q", v)
		}
		out.Top = n
	}

	var err error
	flags := []struct {
		key string
		dst *bool
	}{
		{"include_locked", &out.Req.Options.IncludeLocked},
		{"include_out", &out.Req.Options.IncludeOut},
		{"use_form", &out.Req.Options.UseForm},
		{"use_defense", &out.Req.Options.UseDefense},
		{"ignore_locks", &out.Req.IgnoreLocks},
	}
	for _, f := range flags {
		if *f.dst, err = parseBool(q.Get(f.key), *f.dst); err != nil {
			return out, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	if v := strings.TrimSpace(q.Get("min_baseline")); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil || m < 0 {
			return out, fmt.Errorf("min_baseline must be a non-negative number, got %q", v)
		}
		out.Req.Options.MinBaseline = m
	}
	return out, nil
}

func parseBool(v string, def bool) (bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid boolean %q", v)
	}
	return b, nil
}

type errorResponse struct {
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Excluded []ranking.Exclusion `json:"excluded,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ranking.ErrDataGap):
		writeError(w, http.StatusNotFound, "data_gap", WrapKind(op, ErrDataGap, err))
	case errors.Is(err, ranking.ErrInvalidOption), errors.Is(err, repository.ErrInvalidPick):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		logger.Get().Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
}
