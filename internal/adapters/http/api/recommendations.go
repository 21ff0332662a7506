package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/ranking"
	"github.com/okian/ttfl/internal/domain/types"
)

// RecommendDependencies defines the interface for ranking a date.
type RecommendDependencies interface {
	Recommend(ctx context.Context, date time.Time, req types.Request) (ranking.Result, error)
	DefaultOptions() ranking.Options
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps   RecommendDependencies
	server *Server
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps RecommendDependencies, server *Server) *RecommendHandler {
	return &RecommendHandler{deps: deps, server: server}
}

type recommendationsResponse struct {
	Date             string                   `json:"date"`
	Recommendations  []ranking.Recommendation `json:"recommendations"`
	TotalEligible    int                      `json:"total_eligible"`
	Excluded         []ranking.Exclusion      `json:"excluded"`
	ExcludedByReason map[ranking.Reason]int   `json:"excluded_by_reason"`
}

// HandleGetRecommendations handles GET /recommendations requests.
func (h *RecommendHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	opts, err := h.server.parseRequestOptions(r, "date", h.deps.DefaultOptions())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Recommend(r.Context(), opts.Date, opts.Req)
	if errors.Is(err, ranking.ErrDataGap) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:     "data_gap",
			Message:  WrapKind(op, ErrDataGap, err).Error(),
			Excluded: res.Excluded,
		})
		return
	}
	if err != nil {
		writeDomainError(w, r, op, err)
		return
	}

	excluded := res.Excluded
	if excluded == nil {
		excluded = []ranking.Exclusion{}
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{
		Date:             model.FormatDate(res.Date),
		Recommendations:  res.Top(opts.Top),
		TotalEligible:    len(res.Recommendations),
		Excluded:         excluded,
		ExcludedByReason: res.ExcludedBy(),
	})
}
