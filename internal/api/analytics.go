package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/mohdshuhaib/community-voice-53/internal/engine"
)

// AnalyticsHandler serves the dashboard and the admin export.
type AnalyticsHandler struct {
	Engine *engine.Engine
}

// Get handles GET /api/analytics.
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc, err := location(q, h.Engine.Location())
	if err != nil {
		writeError(w, r, err)
		return
	}
	span, err := dateRange(q, loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	top, err := limit(q, "top")
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.Engine.GetAnalytics(r.Context(), caller(r), engine.AnalyticsQuery{
		Range:    span,
		Location: loc,
		Top:      top,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// Export handles GET /api/export.
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := itemFilter(r.URL.Query(), h.Engine.Location())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.Engine.ExportCSV(r.Context(), caller(r), &buf, f); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+engine.ExportFilename(h.Engine.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
