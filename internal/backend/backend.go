// Package backend implements the three interchangeable render backends of the
// export engine: the remote export worker (HTTP), the local export subprocess,
// and the embedded in-process spreadsheet writer.
//
// Exactly one backend is constructed per deployment, chosen by FromConfig in
// a strict priority order. All three satisfy Renderer; the export service
// never knows which one it talks to.
package backend

import (
	"context"
	"fmt"
	"os"

	"github.com/mhaas/wochenbericht/backend/internal/config"
	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// RenderRequest carries the full set of prepared segments of one export
// request. Backends render all of them or fail the call.
type RenderRequest struct {
	Format   domain.ExportFormat
	Segments []domain.PreparedSegment
}

// RenderedSegment is one backend result before normalization: raw artifact
// bytes keyed by the segment's base filename.
type RenderedSegment struct {
	BaseName      string
	Xlsx          []byte
	Pdf           []byte // nil when no PDF was produced
	Warnings      []string
	RowsWritten   int
	RowsTruncated int
}

// Renderer is the single capability all backends provide.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]RenderedSegment, error)
}

// Kind names the selected backend; the export service uses it to pick the
// matching result-handling policy (e.g. the embedded path tolerates storage
// failures, the others do not).
type Kind string

const (
	KindWorker   Kind = "worker"
	KindLocal    Kind = "local"
	KindEmbedded Kind = "embedded"
)

// FromConfig selects and constructs the deployment's backend:
// worker URL configured → remote worker; local execution permitted → local
// subprocess; otherwise the embedded writer. The choice is made once at
// process start and never re-derived mid-request.
func FromConfig(cfg config.Config) (Renderer, Kind, error) {
	template, err := os.ReadFile(cfg.TemplatePath)
	if err != nil {
		return nil, "", fmt.Errorf("backend.FromConfig: read template: %w", err)
	}

	switch {
	case cfg.WorkerURL != "":
		return NewWorker(cfg.WorkerURL, cfg.WorkerToken, cfg.TemplatePath, template), KindWorker, nil
	case cfg.AllowLocalExport:
		return NewLocal(LocalOptions{
			PythonBin:    cfg.PythonBin,
			Script:       cfg.ExportScript,
			TemplatePath: cfg.TemplatePath,
			SofficePath:  cfg.SofficePath,
			EnablePDF:    cfg.EnablePDF,
		}), KindLocal, nil
	default:
		return NewEmbedded(template), KindEmbedded, nil
	}
}
