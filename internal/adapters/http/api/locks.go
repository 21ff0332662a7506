package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/okian/ttfl/internal/domain/model"
	"github.com/okian/ttfl/internal/domain/types"
)

// LocksDependencies defines the interface for listing locked players.
type LocksDependencies interface {
	Locks(ctx context.Context, date time.Time) ([]types.Lock, error)
}

// LocksHandler handles lock listing requests.
type LocksHandler struct {
	deps   LocksDependencies
	server *Server
}

// NewLocksHandler creates a new locks handler.
func NewLocksHandler(deps LocksDependencies, server *Server) *LocksHandler {
	return &LocksHandler{deps: deps, server: server}
}

type lockEntry struct {
	Player        string `json:"player"`
	LastPick      string `json:"last_pick"`
	UnlockDate    string `json:"unlock_date"`
	DaysRemaining int    `json:"days_remaining"`
}

type locksResponse struct {
	Date  string      `json:"date"`
	Locks []lockEntry `json:"locks"`
}

// HandleGetLocks handles GET /locks requests.
func (h *LocksHandler) HandleGetLocks(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_locks"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date := h.server.today()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		date = d
	}

	locks, err := h.deps.Locks(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, op, err)
		return
	}
	resp := locksResponse{Date: model.FormatDate(date), Locks: make([]lockEntry, 0, len(locks))}
	for _, l := range locks {
		resp.Locks = append(resp.Locks, lockEntry{
			Player:        string(l.Player),
			LastPick:      model.FormatDate(l.LastPick),
			UnlockDate:    model.FormatDate(l.UnlockDate),
			DaysRemaining: l.DaysRemaining,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
