package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/okian/fplcoach/internal/domain/advisor"
	"github.com/okian/fplcoach/internal/domain/model"
)

// maxPlayersLimit caps the page size of GET /players.
const maxPlayersLimit = 1000

// PlayersHandler serves player lookups.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type injuriesResponse struct {
	Injuries []model.PlayerRecord `json:"injuries"`
}

// HandleList handles GET /players?position=&team_id=&name=&limit=.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter advisor.Filter

	if raw := q.Get("position"); raw != "" {
		pos, ok := model.ParsePosition(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown position %q", ErrBadRequest, raw))
			return
		}
		filter.Position = pos
	}
	if raw := q.Get("team_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid team_id", ErrBadRequest))
			return
		}
		filter.TeamID = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid limit", ErrBadRequest))
			return
		}
		if n > maxPlayersLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit above %d", ErrBadRequest, maxPlayersLimit))
			return
		}
		filter.Limit = n
	}
	filter.Name = strings.TrimSpace(q.Get("name"))

	rows, err := h.deps.Players(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGet handles GET /players/{name}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	row, err := h.deps.Player(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// HandleCompare handles GET /compare?player1=&player2=.
func (h *PlayersHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	first := strings.TrimSpace(r.URL.Query().Get("player1"))
	second := strings.TrimSpace(r.URL.Query().Get("player2"))
	if first == "" || second == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: player1 and player2 are required", ErrBadRequest))
		return
	}
	cmp, err := h.deps.Compare(r.Context(), first, second)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// HandleInjuries handles GET /injuries.
func (h *PlayersHandler) HandleInjuries(w http.ResponseWriter, r *http.Request) {
	players, err := h.deps.Injuries(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if players == nil {
		players = []model.PlayerRecord{}
	}
	writeJSON(w, http.StatusOK, injuriesResponse{Injuries: players})
}

// HandleDebugCaptain handles GET /debug/captain?name=.
func (h *PlayersHandler) HandleDebugCaptain(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: name is required", ErrBadRequest))
		return
	}
	trace, err := h.deps.DebugCaptain(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trace)
}
