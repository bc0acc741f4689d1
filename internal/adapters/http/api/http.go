// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/consultly/expertrank/internal/domain/dedupe"
	"github.com/consultly/expertrank/internal/domain/level"
	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/internal/domain/ranking"
	"github.com/consultly/expertrank/internal/domain/scoring"
	"github.com/consultly/expertrank/internal/domain/tier"
	"github.com/consultly/expertrank/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper
	Engine
	RosterWriter

	// Enqueue pushes a stat event for async processing. Returns false
	// on backpressure.
	Enqueue(ctx context.Context, ev model.StatEvent) bool

	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, expertID string) (Entry, error)

	// Rankings returns the full ranked view for a mode, optionally
	// filtered by specialty.
	Rankings(ctx context.Context, mode ranking.Mode, specialty string, limit int) ([]ranking.Entry, error)
}

// Engine exposes the pure scoring and leveling operations behind the
// /api/levels action surface.
type Engine interface {
	Tiers(ctx context.Context) []tier.Definition
	TierForLevel(ctx context.Context, lvl int) (tier.Definition, bool)
	TierForName(ctx context.Context, name string) (tier.Definition, bool)
	TierForScore(ctx context.Context, score float64) tier.Definition
	PriceForLevel(ctx context.Context, lvl int) int
	ScoreToLevel(ctx context.Context, score float64) int
	ScoreBreakdown(ctx context.Context, stats model.ExpertStats) scoring.Breakdown
	ProgressForLevel(ctx context.Context, lvl int) level.Progress
	ProgressForScore(ctx context.Context, score float64) level.ScoreProgress
}

// RosterWriter applies synchronous expert updates, bypassing the event
// queue. Bulk imports use it.
type RosterWriter interface {
	UpdateExpert(ctx context.Context, expertID, name string, stats model.ExpertStats, score float64) error
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	rankingsHandler    *RankingsHandler
	levelsHandler      *LevelsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		eventsHandler:      NewEventsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		rankingsHandler:    NewRankingsHandler(deps, maxLimit),
		levelsHandler:      NewLevelsHandler(deps, deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/api/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/api/levels", MetricsMiddleware(s.levelsHandler.HandleLevels, "levels"))
}

// statEventRequest mirrors the OpenAPI schema for POST /events.
type statEventRequest struct {
	EventID   string  `json:"event_id"`
	ExpertID  string  `json:"expert_id"`
	Kind      string  `json:"kind"`
	Rating    float64 `json:"rating"`
	Repeat    bool    `json:"repeat"`
	Specialty string  `json:"specialty"`
	TS        string  `json:"ts"`
}

func (e statEventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.ExpertID) == "":
		return errors.New("missing expert_id")
	case strings.TrimSpace(e.TS) == "":
		return errors.New("missing ts")
	}
	switch e.Kind {
	case model.KindSessionCompleted, model.KindReviewPosted, model.KindLike:
	default:
		return errors.New("invalid kind; must be session_completed, review_posted or like")
	}
	if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

// toEvent converts the wire request into the queue event shape.
func (e statEventRequest) toEvent() (model.StatEvent, error) {
	ts, err := time.Parse(time.RFC3339, e.TS)
	if err != nil {
		return model.StatEvent{}, errors.New("invalid ts; must be RFC3339")
	}
	return model.StatEvent{
		EventID:   e.EventID,
		ExpertID:  e.ExpertID,
		Kind:      e.Kind,
		Rating:    e.Rating,
		Repeat:    e.Repeat,
		Specialty: e.Specialty,
		TS:        ts,
	}, nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
