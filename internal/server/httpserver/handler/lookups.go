package handler

import (
	"fmt"
	"net/http"
	"strings"
)

const lookupsNotEnabled = "Lookup tracking is not enabled. Use /stats/recentlookups/enable to enable.\n"

// handleRecentLookups handles GET /stats/recentlookups.
func (h *Handler) handleRecentLookups(w http.ResponseWriter, r *http.Request) {
	report := h.lookups.Query()

	var b strings.Builder
	if report.NotEnabled {
		b.WriteString(lookupsNotEnabled)
	} else {
		b.WriteString("   Count Lookup\n")
		for _, row := range report.Rows {
			fmt.Fprintf(&b, "%8d %s\n", row.Count, row.Name)
		}
	}
	fmt.Fprintf(&b, "\ntotal: %d\n", report.Total)

	h.writeText(w, http.StatusOK, b.String())
}

// handleRecentLookupsClear handles POST /stats/recentlookups/clear.
func (h *Handler) handleRecentLookupsClear(w http.ResponseWriter, r *http.Request) {
	h.lookups.Clear()
	h.writeText(w, http.StatusOK, okBody)
}

// handleRecentLookupsDisable handles POST /stats/recentlookups/disable.
func (h *Handler) handleRecentLookupsDisable(w http.ResponseWriter, r *http.Request) {
	h.lookups.Disable()
	h.writeText(w, http.StatusOK, okBody)
}

// handleRecentLookupsEnable handles POST /stats/recentlookups/enable.
func (h *Handler) handleRecentLookupsEnable(w http.ResponseWriter, r *http.Request) {
	h.lookups.Enable()
	h.writeText(w, http.StatusOK, okBody)
}
