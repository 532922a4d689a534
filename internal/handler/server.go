// Package handler implements the HTTP handlers for the Wochenbericht API.
// All handlers are methods on Server; methods are split into endpoint-specific
// files (health.go, export.go) but share the Server struct so they can access
// its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// ExportServicer defines the business operations the export handler depends
// on. Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the render backends.
type ExportServicer interface {
	ExportWeek(ctx context.Context, year, week int, format domain.ExportFormat) (domain.WeekExport, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	export ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(export ExportServicer) *Server {
	return &Server{export: export}
}

// Routes registers all API endpoints on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/api/export-week", s.GetExportWeek)
	return r
}
