package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/ttfl/internal/domain/model"
)

// PicksDependencies defines the interface for recording real picks.
type PicksDependencies interface {
	RecordPick(ctx context.Context, pick model.PickRecord) (duplicate bool, err error)
}

// PicksHandler handles pick requests.
type PicksHandler struct {
	deps   PicksDependencies
	server *Server
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(deps PicksDependencies, server *Server) *PicksHandler {
	return &PicksHandler{deps: deps, server: server}
}

// pickRequest mirrors the OpenAPI schema for POST /picks.
type pickRequest struct {
	Player string `json:"player"`
	Date   string `json:"date"`
}

func (p pickRequest) toRecord(today func() string) (model.PickRecord, error) {
	player := strings.TrimSpace(p.Player)
	if player == "" {
		return model.PickRecord{}, errors.New("missing player")
	}
	date := strings.TrimSpace(p.Date)
	if date == "" {
		date = today()
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return model.PickRecord{}, err
	}
	return model.PickRecord{Player: model.PlayerID(player), Date: d}, nil
}

type pickResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	Player    string `json:"player"`
	Date      string `json:"date"`
}

// HandlePostPick handles POST /picks requests.
func (h *PicksHandler) HandlePostPick(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_pick"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req pickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	pick, err := req.toRecord(func() string { return model.FormatDate(h.server.today()) })
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	dup, err := h.deps.RecordPick(r.Context(), pick)
	if err != nil {
		writeDomainError(w, r, op, err)
		return
	}
	resp := pickResponse{Status: "recorded", Player: string(pick.Player), Date: model.FormatDate(pick.Date)}
	status := http.StatusCreated
	if dup {
		resp.Status, resp.Duplicate = "duplicate", true
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}
