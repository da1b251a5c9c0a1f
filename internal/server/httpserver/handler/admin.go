package handler

import (
	"net/http"

	"github.com/yndnr/statmesh/internal/telemetry/logger"
)

// handleResetCounters handles POST /reset_counters.
func (h *Handler) handleResetCounters(w http.ResponseWriter, r *http.Request) {
	h.stats.ResetCounters()
	logger.L(r.Context()).Info("counters reset")
	h.writeText(w, http.StatusOK, okBody)
}
