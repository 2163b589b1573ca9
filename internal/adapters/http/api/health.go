package api

import (
	"net/http"

	"github.com/okian/fplcoach/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessProvider reports whether a snapshot is loaded.
type ReadinessProvider interface {
	Ready() bool
}

// HealthHandler handles health and metrics requests.
type HealthHandler struct {
	deps    ReadinessProvider
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps ReadinessProvider) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

// HandleHealth handles GET /healthz. It answers 503 until a snapshot is loaded.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	if !h.deps.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Ready: true})
}

// HandleMetrics serves the custom metrics registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
