package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/internal/domain/types"
)

// RecommendationHandler serves captain, transfer, lineup and rating requests.
type RecommendationHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(deps Dependencies, maxBodyBytes int64) *RecommendationHandler {
	return &RecommendationHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type captainResponse struct {
	Captain                   string  `json:"captain"`
	PredictedPoints           float64 `json:"predicted_points"`
	NextOpponent              *int    `json:"next_opponent"`
	NextOpponentName          string  `json:"next_opponent_name,omitempty"`
	OpponentDefensiveStrength float64 `json:"opponent_defensive_strength"`
	CaptainScore              float64 `json:"captain_score"`
}

type lineupResponse struct {
	Formation string              `json:"formation"`
	Size      int                 `json:"size"`
	Lineup    []model.LineupEntry `json:"lineup"`
}

// HandleCaptain handles GET /captain.
func (h *RecommendationHandler) HandleCaptain(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Captain(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captainResponse{
		Captain:                   c.Name,
		PredictedPoints:           c.Predicted(),
		NextOpponent:              c.OpponentTeamID,
		NextOpponentName:          c.OpponentName,
		OpponentDefensiveStrength: c.DefenseStrength,
		CaptainScore:              c.CaptainScore,
	})
}

// HandleTransfers handles GET /transfers.
func (h *RecommendationHandler) HandleTransfers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Transfers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleTeamBuilder handles GET /team_builder?formation=3-4-3.
func (h *RecommendationHandler) HandleTeamBuilder(w http.ResponseWriter, r *http.Request) {
	formation := h.deps.Formation()
	if raw := strings.TrimSpace(r.URL.Query().Get("formation")); raw != "" {
		f, err := model.ParseFormation(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		formation = f
	}
	lineup, err := h.deps.Lineup(r.Context(), formation)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lineupResponse{
		Formation: formation.String(),
		Size:      len(lineup),
		Lineup:    lineup,
	})
}

// HandleTeamRating handles POST /team_rating with {"team": [names...]}.
func (h *RecommendationHandler) HandleTeamRating(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var req types.TeamRatingRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	names := req.Normalize()
	if len(names) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: team is empty", ErrBadRequest))
		return
	}
	rating, err := h.deps.RateTeam(r.Context(), names)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}
