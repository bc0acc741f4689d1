// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/consultly/expertrank/internal/domain/ranking"
)

// RankingsDependencies defines the interface for ranked view queries.
type RankingsDependencies interface {
	Rankings(ctx context.Context, mode ranking.Mode, specialty string, limit int) ([]ranking.Entry, error)
}

// RankingsHandler handles ranked view requests.
type RankingsHandler struct {
	deps     RankingsDependencies
	maxLimit int
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, maxLimit int) *RankingsHandler {
	return &RankingsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// rankingsResponse is the envelope for GET /api/rankings.
type rankingsResponse struct {
	Mode      string          `json:"mode"`
	Specialty string          `json:"specialty,omitempty"`
	Count     int             `json:"count"`
	Rankings  []ranking.Entry `json:"rankings"`
}

// HandleGetRankings handles GET /api/rankings?mode=M&specialty=S&limit=N.
// Mode defaults to overall; specialty mode requires the specialty param.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()

	mode := ranking.ModeOverall
	if raw := strings.TrimSpace(q.Get("mode")); raw != "" {
		mode = ranking.Mode(raw)
		if !mode.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_mode",
				WrapKind(op, ErrBadRequest, errors.New("mode must be overall, rating, sessions or specialty")))
			return
		}
	}

	specialty := strings.TrimSpace(q.Get("specialty"))
	if mode == ranking.ModeSpecialty && specialty == "" {
		writeError(w, http.StatusBadRequest, "missing_specialty",
			WrapKind(op, ErrBadRequest, errors.New("specialty mode requires the specialty param")))
		return
	}

	limit := h.maxLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	entries, err := h.deps.Rankings(r.Context(), mode, specialty, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, rankingsResponse{
		Mode:      string(mode),
		Specialty: specialty,
		Count:     len(entries),
		Rankings:  entries,
	})
}
