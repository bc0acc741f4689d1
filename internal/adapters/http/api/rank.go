// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/consultly/expertrank/internal/adapters/repository"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, expertID string) (Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{expert_id} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /rank/
	path := strings.TrimPrefix(r.URL.Path, "/rank/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Rank(r.Context(), path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
