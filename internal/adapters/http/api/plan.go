package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/planner"
	"github.com/okian/ttfl/internal/domain/ranking"
	"github.com/okian/ttfl/internal/domain/types"
)

// defaultPlanDays applies when GET /plan names no horizon.
const defaultPlanDays = 7

// PlanDependencies defines the interface for multi-day planning.
type PlanDependencies interface {
	Plan(ctx context.Context, start time.Time, days int, req types.Request) (planner.Plan, error)
	DefaultOptions() ranking.Options
}

// PlanHandler handles plan requests.
type PlanHandler struct {
	deps   PlanDependencies
	server *Server
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(deps PlanDependencies, server *Server) *PlanHandler {
	return &PlanHandler{deps: deps, server: server}
}

type planDay struct {
	Date            string                   `json:"date"`
	Pick            *ranking.Recommendation  `json:"pick"`
	Recommendations []ranking.Recommendation `json:"recommendations"`
	Excluded        int                      `json:"excluded"`
}

type planResponse struct {
	Start         string    `json:"start"`
	Days          []planDay `json:"days"`
	TotalExpected float64   `json:"total_expected"`
	AveragePerDay float64   `json:"average_per_day"`
}

// HandleGetPlan handles GET /plan requests.
func (h *PlanHandler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_plan"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	opts, err := h.server.parseRequestOptions(r, "start", h.deps.DefaultOptions())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	days := defaultPlanDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		days = n
	}
	if days > h.server.maxPlanDays {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	plan, err := h.deps.Plan(r.Context(), opts.Date, days, opts.Req)
	if err != nil {
		writeDomainError(w, r, op, err)
		return
	}

	resp := planResponse{
		Start:         model.FormatDate(plan.Start),
		Days:          make([]planDay, 0, len(plan.Days)),
		TotalExpected: plan.TotalExpected(),
		AveragePerDay: plan.AveragePerDay(),
	}
	for _, d := range plan.Days {
		recs := d.Recommendations
		if len(recs) > opts.Top {
			recs = recs[:opts.Top]
		}
		resp.Days = append(resp.Days, planDay{
			Date:            model.FormatDate(d.Date),
			Pick:            d.Pick,
			Recommendations: recs,
			Excluded:        len(d.Excluded),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
