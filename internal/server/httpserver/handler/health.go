package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    now(),
		Version: h.version,
	}
	if h.stats != nil {
		counts := h.stats.Counts()
		resp.Stats = &counts
	}
	if h.lookups != nil {
		resp.RecentLookups = "disabled"
		if h.lookups.Enabled() {
			resp.RecentLookups = "enabled"
		}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		h.writeJSON(w, r, http.StatusServiceUnavailable, HealthResponse{
			Status: "not_ready",
			Time:   now(),
		})
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ready",
		Time:    now(),
		Version: h.version,
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
