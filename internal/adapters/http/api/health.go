// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/tradeboard/pkg/metrics"
)

type healthResponse struct {
	Status    string `json:"status"`
	RunID     string `json:"run_id,omitempty"`
	Countries int    `json:"countries"`
}

// HealthHandler handles health and metrics requests.
type HealthHandler struct {
	stats StatsProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{stats: stats}
}

// HandleHealth handles GET /healthz requests. It reports 503 until a
// dataset has been loaded.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", RunID: st.RunID, Countries: st.Countries})
}

// HandleMetrics handles GET /metrics requests.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	// Use our custom metrics registry to serve metrics
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
