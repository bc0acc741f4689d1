// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"math"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/consultly/expertrank/internal/domain/level"
	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/internal/domain/scoring"
	"github.com/consultly/expertrank/internal/domain/tier"
)

// Action names dispatched through /api/levels.
const (
	actionGetAllLevels            = "getAllLevels"
	actionGetTierInfo             = "getTierInfo"
	actionGetTierInfoByName       = "getTierInfoByName"
	actionCalculateCredits        = "calculateCreditsByLevel"
	actionGetNextTierProgress     = "getNextTierProgress"
	actionCalculateLevelByScore   = "calculateLevelByScore"
	actionCalculateRankingScore   = "calculateRankingScore"
	actionGetScoreRequirements    = "getScoreRequirements"
	actionGetAdditionalScoreInfo  = "getAdditionalScoreInfo"
	actionCalculateTierStatistics = "calculateTierStatistics"
	actionBatchCalculate          = "batchCalculate"
	actionBulkUpdate              = "bulkUpdate"
)

// supportedGetActions and supportedPostActions back the action
// directory returned for unknown actions.
var (
	supportedGetActions = []string{
		actionGetAllLevels,
		actionGetTierInfo,
		actionGetTierInfoByName,
		actionCalculateCredits,
		actionGetNextTierProgress,
		actionCalculateLevelByScore,
		actionCalculateRankingScore,
		actionGetScoreRequirements,
		actionGetAdditionalScoreInfo,
	}
	supportedPostActions = []string{
		actionCalculateTierStatistics,
		actionBatchCalculate,
		actionBulkUpdate,
	}
)

// LevelsHandler dispatches the action-style scoring and leveling API.
type LevelsHandler struct {
	engine Engine
	roster RosterWriter
}

// NewLevelsHandler creates a new levels handler.
func NewLevelsHandler(engine Engine, roster RosterWriter) *LevelsHandler {
	return &LevelsHandler{engine: engine, roster: roster}
}

// HandleLevels routes /api/levels by method and action param.
func (h *LevelsHandler) HandleLevels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		http.NotFound(w, r)
	}
}

// unknownActionResponse lists the actions a caller may use.
type unknownActionResponse struct {
	Code            string   `json:"code"`
	Message         string   `json:"message"`
	SupportedGet    []string `json:"supportedGetActions"`
	SupportedPost   []string `json:"supportedPostActions"`
	RequestedAction string   `json:"requestedAction,omitempty"`
}

func writeUnknownAction(w http.ResponseWriter, action string) {
	writeJSON(w, http.StatusBadRequest, unknownActionResponse{
		Code:            "unknown_action",
		Message:         "unknown or missing action",
		SupportedGet:    supportedGetActions,
		SupportedPost:   supportedPostActions,
		RequestedAction: action,
	})
}

// queryInt parses a required integer query param. A missing or
// malformed value reports false; callers answer with an empty object,
// which is what existing marketplace clients expect.
func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// queryFloat parses a required float query param with the same
// missing-value contract as queryInt.
func queryFloat(r *http.Request, key string) (float64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// optionalInt parses an optional integer query param. Absent means
// zero; only a present-but-malformed value reports false.
func optionalInt(r *http.Request, key string) (int, bool) {
	if r.URL.Query().Get(key) == "" {
		return 0, true
	}
	return queryInt(r, key)
}

func writeEmptyObject(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *LevelsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	switch action := q.Get("action"); action {
	case actionGetAllLevels:
		tiers := h.engine.Tiers(ctx)
		writeJSON(w, http.StatusOK, allLevelsResponse{Levels: tiers, Count: len(tiers)})

	case actionGetTierInfo:
		lvl, ok := queryInt(r, "level")
		if !ok {
			writeEmptyObject(w)
			return
		}
		def, ok := h.engine.TierForLevel(ctx, lvl)
		if !ok {
			writeEmptyObject(w)
			return
		}
		writeJSON(w, http.StatusOK, tierInfoResponse{Level: lvl, TierInfo: def})

	case actionGetTierInfoByName:
		name := q.Get("tierName")
		if name == "" {
			writeEmptyObject(w)
			return
		}
		def, ok := h.engine.TierForName(ctx, name)
		if !ok {
			writeEmptyObject(w)
			return
		}
		writeJSON(w, http.StatusOK, tierInfoByNameResponse{TierName: name, TierInfo: def})

	case actionCalculateCredits:
		lvl, ok := queryInt(r, "level")
		if !ok {
			writeEmptyObject(w)
			return
		}
		writeJSON(w, http.StatusOK, creditsResponse{
			Level:            lvl,
			CreditsPerMinute: h.engine.PriceForLevel(ctx, lvl),
		})

	case actionGetNextTierProgress:
		lvl, ok := queryInt(r, "level")
		if !ok {
			writeEmptyObject(w)
			return
		}
		writeJSON(w, http.StatusOK, nextTierProgressResponse{
			Level:    lvl,
			Progress: h.engine.ProgressForLevel(ctx, lvl),
		})

	case actionCalculateLevelByScore:
		score, ok := queryFloat(r, "rankingScore")
		if !ok {
			writeEmptyObject(w)
			return
		}
		resolved := h.engine.ScoreToLevel(ctx, score)
		writeJSON(w, http.StatusOK, levelByScoreResponse{
			RankingScore:    score,
			CalculatedLevel: resolved,
			TierInfo:        h.engine.TierForScore(ctx, score),
			LevelProgress:   h.engine.ProgressForLevel(ctx, resolved),
			ScoreProgress:   h.engine.ProgressForScore(ctx, score),
		})

	case actionCalculateRankingScore:
		stats, ok := rankingScoreParams(r)
		if !ok {
			writeEmptyObject(w)
			return
		}
		breakdown := h.engine.ScoreBreakdown(ctx, stats)
		writeJSON(w, http.StatusOK, rankingScoreResponse{
			Stats:           stats,
			CalculatedScore: breakdown.Total,
			CalculatedLevel: h.engine.ScoreToLevel(ctx, breakdown.Total),
			TierInfo:        h.engine.TierForScore(ctx, breakdown.Total),
			Breakdown:       breakdown,
		})

	case actionGetScoreRequirements:
		tiers := h.engine.Tiers(ctx)
		reqs := make([]scoreRequirement, 0, len(tiers))
		for _, def := range tiers {
			reqs = append(reqs, scoreRequirement{
				Tier:             def.Name,
				LevelRange:       def.Level,
				ScoreRange:       def.Score,
				CreditsPerMinute: def.PricePerMinute,
			})
		}
		writeJSON(w, http.StatusOK, scoreRequirementsResponse{Requirements: reqs})

	case actionGetAdditionalScoreInfo:
		score, ok := queryFloat(r, "rankingScore")
		if !ok {
			writeEmptyObject(w)
			return
		}
		writeJSON(w, http.StatusOK, h.engine.ProgressForScore(ctx, score))

	default:
		writeUnknownAction(w, action)
	}
}

// rankingScoreParams collects the raw-counter params for
// calculateRankingScore. Sessions and rating are required; the three
// volume counters default to zero when absent.
func rankingScoreParams(r *http.Request) (model.ExpertStats, bool) {
	sessions, ok := queryInt(r, "totalSessions")
	if !ok {
		return model.ExpertStats{}, false
	}
	rating, ok := queryFloat(r, "avgRating")
	if !ok {
		return model.ExpertStats{}, false
	}
	reviews, ok := optionalInt(r, "reviewCount")
	if !ok {
		return model.ExpertStats{}, false
	}
	repeatClients, ok := optionalInt(r, "repeatClients")
	if !ok {
		return model.ExpertStats{}, false
	}
	likes, ok := optionalInt(r, "likeCount")
	if !ok {
		return model.ExpertStats{}, false
	}
	return model.ExpertStats{
		TotalSessions: sessions,
		AvgRating:     rating,
		ReviewCount:   reviews,
		RepeatClients: repeatClients,
		LikeCount:     likes,
	}, true
}

// postRequest is the envelope for POST /api/levels.
type postRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func (h *LevelsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_levels"

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	switch req.Action {
	case actionCalculateTierStatistics:
		h.handleTierStatistics(w, r, req.Data)
	case actionBatchCalculate:
		h.handleBatchCalculate(w, r, req.Data)
	case actionBulkUpdate:
		h.handleBulkUpdate(w, r, req.Data)
	default:
		writeUnknownAction(w, req.Action)
	}
}

// tierStatisticsRequest carries the expert levels to bucket.
type tierStatisticsRequest struct {
	Experts []struct {
		Level int `json:"level"`
	} `json:"experts"`
}

type tierBucket struct {
	Tier       string  `json:"tier"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type tierStatisticsResponse struct {
	Total int          `json:"total"`
	Tiers []tierBucket `json:"tiers"`
}

// handleTierStatistics buckets a roster sample per tier by each
// expert's level. Every tier appears in the response, zero counts
// included, best tier first.
func (h *LevelsHandler) handleTierStatistics(w http.ResponseWriter, r *http.Request, data json.RawMessage) {
	const op = "api.tier_statistics"

	var req tierStatisticsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	tiers := h.engine.Tiers(ctx)

	counts := make(map[string]int, len(tiers))
	for _, e := range req.Experts {
		if def, ok := h.engine.TierForLevel(ctx, e.Level); ok {
			counts[def.Name]++
		}
	}

	total := len(req.Experts)
	buckets := make([]tierBucket, 0, len(tiers))
	for _, def := range tiers {
		b := tierBucket{Tier: def.Name, Count: counts[def.Name]}
		if total > 0 {
			b.Percentage = math.Round(float64(b.Count)/float64(total)*10000) / 100
		}
		buckets = append(buckets, b)
	}

	writeJSON(w, http.StatusOK, tierStatisticsResponse{Total: total, Tiers: buckets})
}

// batchCalculateRequest carries the experts to enrich in one call.
type batchCalculateRequest struct {
	Experts []batchCalculateExpert `json:"experts"`
}

type batchCalculateExpert struct {
	ExpertID     string  `json:"expertId"`
	RankingScore float64 `json:"rankingScore"`
}

type batchCalculateItem struct {
	ExpertID         string          `json:"expertId,omitempty"`
	RankingScore     float64         `json:"rankingScore"`
	CalculatedLevel  int             `json:"calculatedLevel"`
	TierInfo         tier.Definition `json:"tierInfo"`
	CreditsPerMinute int             `json:"creditsPerMinute"`
}

type batchCalculateResponse struct {
	Results []batchCalculateItem `json:"results"`
}

// handleBatchCalculate enriches each expert with its resolved level,
// tier (including the display tokens) and credit rate.
func (h *LevelsHandler) handleBatchCalculate(w http.ResponseWriter, r *http.Request, data json.RawMessage) {
	const op = "api.batch_calculate"

	var req batchCalculateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	results := make([]batchCalculateItem, 0, len(req.Experts))
	for _, e := range req.Experts {
		lvl := h.engine.ScoreToLevel(ctx, e.RankingScore)
		results = append(results, batchCalculateItem{
			ExpertID:         e.ExpertID,
			RankingScore:     e.RankingScore,
			CalculatedLevel:  lvl,
			TierInfo:         h.engine.TierForScore(ctx, e.RankingScore),
			CreditsPerMinute: h.engine.PriceForLevel(ctx, lvl),
		})
	}

	writeJSON(w, http.StatusOK, batchCalculateResponse{Results: results})
}

// bulkUpdateRequest stores each expert's ranking score and recomputes
// the derived level. Counters travel along so profile imports can seed
// the roster in the same call.
type bulkUpdateRequest struct {
	Experts []bulkUpdateItem `json:"experts"`
}

type bulkUpdateItem struct {
	ExpertID     string            `json:"expertId"`
	Name         string            `json:"name,omitempty"`
	RankingScore float64           `json:"rankingScore"`
	Stats        model.ExpertStats `json:"stats"`
}

type bulkUpdateResult struct {
	ExpertID        string          `json:"expertId"`
	RankingScore    float64         `json:"rankingScore"`
	CalculatedLevel int             `json:"calculatedLevel"`
	TierInfo        tier.Definition `json:"tierInfo"`
}

type bulkUpdateResponse struct {
	Updated int                `json:"updated"`
	Results []bulkUpdateResult `json:"results"`
}

func (h *LevelsHandler) handleBulkUpdate(w http.ResponseWriter, r *http.Request, data json.RawMessage) {
	const op = "api.bulk_update"

	var req bulkUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Experts) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	for _, item := range req.Experts {
		if item.ExpertID == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}

	ctx := r.Context()
	results := make([]bulkUpdateResult, 0, len(req.Experts))
	for _, item := range req.Experts {
		if err := h.roster.UpdateExpert(ctx, item.ExpertID, item.Name, item.Stats, item.RankingScore); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		results = append(results, bulkUpdateResult{
			ExpertID:        item.ExpertID,
			RankingScore:    item.RankingScore,
			CalculatedLevel: h.engine.ScoreToLevel(ctx, item.RankingScore),
			TierInfo:        h.engine.TierForScore(ctx, item.RankingScore),
		})
	}

	writeJSON(w, http.StatusOK, bulkUpdateResponse{Updated: len(results), Results: results})
}

// Response shapes for the GET actions.
type allLevelsResponse struct {
	Levels []tier.Definition `json:"levels"`
	Count  int               `json:"count"`
}

type creditsResponse struct {
	Level            int `json:"level"`
	CreditsPerMinute int `json:"creditsPerMinute"`
}

type tierInfoResponse struct {
	Level    int             `json:"level"`
	TierInfo tier.Definition `json:"tierInfo"`
}

type tierInfoByNameResponse struct {
	TierName string          `json:"tierName"`
	TierInfo tier.Definition `json:"tierInfo"`
}

type nextTierProgressResponse struct {
	Level    int            `json:"level"`
	Progress level.Progress `json:"progress"`
}

type levelByScoreResponse struct {
	RankingScore    float64             `json:"rankingScore"`
	CalculatedLevel int                 `json:"calculatedLevel"`
	TierInfo        tier.Definition     `json:"tierInfo"`
	LevelProgress   level.Progress      `json:"levelProgress"`
	ScoreProgress   level.ScoreProgress `json:"scoreProgress"`
}

type rankingScoreResponse struct {
	Stats           model.ExpertStats `json:"stats"`
	CalculatedScore float64           `json:"calculatedScore"`
	CalculatedLevel int               `json:"calculatedLevel"`
	TierInfo        tier.Definition   `json:"tierInfo"`
	Breakdown       scoring.Breakdown `json:"breakdown"`
}

type scoreRequirement struct {
	Tier             string          `json:"tier"`
	LevelRange       tier.Range      `json:"levelRange"`
	ScoreRange       tier.ScoreRange `json:"scoreRange"`
	CreditsPerMinute int             `json:"creditsPerMinute"`
}

type scoreRequirementsResponse struct {
	Requirements []scoreRequirement `json:"requirements"`
}
