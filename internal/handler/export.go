// Package handler — export.go implements GET /api/export-week.
package handler

import (
	"net/http"
	"strconv"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// GetExportWeek handles GET /api/export-week?year=&kw=&format=.
// year and kw are required integers; format defaults to "xlsx".
// Range checks (year bounds, week within the year) live in the service
// layer; the handler only rejects parameters it cannot parse at all.
func (s *Server) GetExportWeek(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeBadRequest(w, "query parameter 'year' must be an integer")
		return
	}
	week, err := strconv.Atoi(q.Get("kw"))
	if err != nil {
		writeBadRequest(w, "query parameter 'kw' must be an integer")
		return
	}

	format := domain.ExportFormat(q.Get("format"))
	if format == "" {
		format = domain.FormatXlsx
	}

	export, svcErr := s.export.ExportWeek(r.Context(), year, week, format)
	if svcErr != nil {
		writeError(w, svcErr)
		return
	}
	writeJSON(w, http.StatusOK, export)
}
