package handler

import (
	"bytes"
	"net/http"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/core/service"
)

const statsUsage = "usage: /stats?format=json  or /stats?format=prometheus \n\n"

// handleStats handles GET /stats.
//
// Query parameters: usedonly and pretty are flags (presence enables them),
// filter is a regular expression searched in each name, format selects
// json or prometheus and defaults to plain text.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, present := "", q.Has("format")
	if present {
		format = q.Get("format")
	}

	h.export(w, r, service.ExportQuery{
		Format:   service.ParseFormat(format, present),
		UsedOnly: q.Has("usedonly"),
		Filter:   q.Get("filter"),
		Pretty:   q.Has("pretty"),
	})
}

// handlePrometheusStats handles GET /stats/prometheus.
func (h *Handler) handlePrometheusStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.export(w, r, service.ExportQuery{
		Format:   service.ParseFormat("prometheus", true),
		UsedOnly: q.Has("usedonly"),
		Filter:   q.Get("filter"),
	})
}

// export renders into a buffer first so a failure can still pick the
// status code.
func (h *Handler) export(w http.ResponseWriter, r *http.Request, query service.ExportQuery) {
	var buf bytes.Buffer
	if err := h.stats.Export(&buf, query); err != nil {
		h.writeExportError(w, r, err)
		return
	}

	h.writeBody(w, http.StatusOK, exportContentType(query.Format), buf.Bytes())
}

func (h *Handler) writeExportError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsDomainError(err)
	if !ok {
		h.handleServiceError(w, r, err)
		return
	}

	switch de.Code {
	case domain.ErrInvalidFilter.Code:
		w.Header().Set(ErrorCodeHeader, de.Code)
		h.writeText(w, de.HTTPStatus(), "Invalid regex: \""+de.Details+"\"\n")
	case domain.ErrUnknownFormat.Code:
		w.Header().Set(ErrorCodeHeader, de.Code)
		h.writeText(w, de.HTTPStatus(), statsUsage)
	default:
		h.handleServiceError(w, r, err)
	}
}

func exportContentType(f service.Format) string {
	switch f.Kind {
	case service.FormatJSON:
		return contentTypeJSON
	case service.FormatPrometheus:
		return contentTypePrometheus
	default:
		return contentTypeText
	}
}
