// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/tradeboard/internal/domain/ranking"
	"github.com/okian/tradeboard/internal/domain/types"
)

// RankingsDependencies defines the interface for ranking queries.
type RankingsDependencies interface {
	Rankings(ctx context.Context, metric ranking.Metric, n int, mode ranking.Mode, continent string) (types.Result, error)
}

// RankingsHandler handles ranking requests.
type RankingsHandler struct {
	deps         RankingsDependencies
	defaultLimit int
	maxLimit     int
	defaultMode  ranking.Mode
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, defaultLimit, maxLimit int, defaultMode ranking.Mode) *RankingsHandler {
	return &RankingsHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		defaultMode:  defaultMode,
	}
}

// HandleGetRankings handles GET /rankings?metric=M&limit=N&mode=top|both&continent=C.
// metric defaults to priority; limit 0 yields empty sequences.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	metric := ranking.Priority
	if v := q.Get("metric"); v != "" {
		m, err := ranking.ParseMetric(v)
		if err != nil {
			writeLookupError(w, op, err)
			return
		}
		metric = m
	}

	n := h.defaultLimit
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	mode := h.defaultMode
	if v := q.Get("mode"); v != "" {
		m, err := ranking.ParseMode(v)
		if err != nil {
			writeLookupError(w, op, err)
			return
		}
		mode = m
	}

	res, err := h.deps.Rankings(r.Context(), metric, n, mode, q.Get("continent"))
	if err != nil {
		writeLookupError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
