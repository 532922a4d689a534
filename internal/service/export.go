package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mhaas/wochenbericht/backend/internal/backend"
	"github.com/mhaas/wochenbericht/backend/internal/domain"
	"github.com/mhaas/wochenbericht/backend/internal/repo"
	"github.com/mhaas/wochenbericht/backend/internal/storage"
	"github.com/mhaas/wochenbericht/backend/internal/week"
)

// ExportService orchestrates a week export: it validates the request, builds
// the per-segment payloads, hands them to the deployment's single render
// backend, and normalizes the backend results into FinalReports.
type ExportService struct {
	entries  repo.EntryRepo
	profiles repo.ProfileRepo
	vehicles repo.VehicleRepo

	renderer backend.Renderer
	kind     backend.Kind
	store    storage.Store
	log      *slog.Logger

	minYear, maxYear int
}

// ExportOptions carries the render-side dependencies of the ExportService.
// Renderer and Kind come from backend.FromConfig; Store may be nil, in which
// case embedded artifacts are always inlined.
type ExportOptions struct {
	Renderer backend.Renderer
	Kind     backend.Kind
	Store    storage.Store
	Logger   *slog.Logger
	MinYear  int
	MaxYear  int
}

// NewExportService constructs an ExportService backed by the provided repos
// and render options.
func NewExportService(entries repo.EntryRepo, profiles repo.ProfileRepo, vehicles repo.VehicleRepo, opts ExportOptions) *ExportService {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &ExportService{
		entries:  entries,
		profiles: profiles,
		vehicles: vehicles,
		renderer: opts.Renderer,
		kind:     opts.Kind,
		store:    opts.Store,
		log:      log,
		minYear:  opts.MinYear,
		maxYear:  opts.MaxYear,
	}
}

// ExportWeek renders the reports for one (year, ISO week): one per month
// segment. All external calls are attempted exactly once; there are no
// retries anywhere on this path.
//
// Returns domain.ErrValidation for out-of-range parameters,
// domain.ErrBackendUnavailable when no renderer is wired, and
// domain.ErrBackendFailure (wrapped) when the backend call fails.
func (s *ExportService) ExportWeek(ctx context.Context, year, wk int, format domain.ExportFormat) (domain.WeekExport, error) {
	if err := s.validate(year, wk, format); err != nil {
		return domain.WeekExport{}, err
	}
	if s.renderer == nil {
		return domain.WeekExport{}, fmt.Errorf("service.ExportService.ExportWeek: %w", domain.ErrBackendUnavailable)
	}

	dates := week.Dates(year, wk)

	entries, err := s.entries.GetByDates(ctx, dates[:])
	if err != nil {
		return domain.WeekExport{}, fmt.Errorf("service.ExportService.ExportWeek: %w", err)
	}

	profile, err := s.profiles.GetLatest(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.WeekExport{}, fmt.Errorf("service.ExportService.ExportWeek: %w", err)
	}

	vehicle, err := s.vehicles.GetByWeek(ctx, year, wk)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.WeekExport{}, fmt.Errorf("service.ExportService.ExportWeek: %w", err)
	}

	segments := BuildPreparedSegments(year, wk, dates, entries, profile, vehicle)

	rendered, err := s.renderer.Render(ctx, backend.RenderRequest{Format: format, Segments: segments})
	if err != nil {
		return domain.WeekExport{}, fmt.Errorf("service.ExportService.ExportWeek: %w", err)
	}

	reports, err := s.normalize(ctx, segments, rendered)
	if err != nil {
		return domain.WeekExport{}, fmt.Errorf("service.ExportService.ExportWeek: %w", err)
	}

	weekDates := make([]string, len(dates))
	for i, d := range dates {
		weekDates[i] = d.Format(isoDate)
	}
	return domain.WeekExport{
		WeekDates:    weekDates,
		IsMonthSplit: len(segments) > 1,
		Reports:      reports,
	}, nil
}

func (s *ExportService) validate(year, wk int, format domain.ExportFormat) error {
	if !format.Valid() {
		return fmt.Errorf("%w: unknown format %q", domain.ErrValidation, format)
	}
	if year < s.minYear || year > s.maxYear {
		return fmt.Errorf("%w: year %d outside %d..%d", domain.ErrValidation, year, s.minYear, s.maxYear)
	}
	if wk < 1 || wk > week.WeeksInYear(year) {
		return fmt.Errorf("%w: week %d outside 1..%d for year %d", domain.ErrValidation, wk, week.WeeksInYear(year), year)
	}
	return nil
}

// normalize matches each backend result back to its originating segment by
// base filename and resolves artifact bytes into stored URLs or inline
// payloads. A result the request never asked for, or a segment the backend
// never answered, is a hard error.
func (s *ExportService) normalize(ctx context.Context, segments []domain.PreparedSegment, rendered []backend.RenderedSegment) ([]domain.FinalReport, error) {
	byName := make(map[string]backend.RenderedSegment, len(rendered))
	for _, r := range rendered {
		byName[r.BaseName] = r
	}
	for _, r := range rendered {
		if !segmentKnown(segments, r.BaseName) {
			return nil, fmt.Errorf("%w: worker returned unknown segment %q", domain.ErrBackendFailure, r.BaseName)
		}
	}

	reports := make([]domain.FinalReport, 0, len(segments))
	for _, segment := range segments {
		result, ok := byName[segment.BaseName]
		if !ok {
			return nil, fmt.Errorf("%w: no result for segment %q", domain.ErrBackendFailure, segment.BaseName)
		}

		report := domain.FinalReport{
			BaseName:              segment.BaseName,
			SegmentKey:            segment.SegmentKey,
			Month:                 segment.Month,
			Dates:                 segment.Dates,
			ReportYear:            segment.ReportYear,
			ReportKw:              segment.ReportKw,
			IsCarryOverToNextYear: segment.IsCarryOverToNextYear,
			Warnings:              append([]string{}, result.Warnings...),
			RowsWritten:           result.RowsWritten,
			RowsTruncated:         result.RowsTruncated,
		}

		url, inline, err := s.resolveArtifact(ctx, segment.BaseName+".xlsx", result.Xlsx)
		if err != nil {
			return nil, err
		}
		report.XlsxURL, report.XlsxBase64 = url, inline

		if result.Pdf != nil {
			url, inline, err := s.resolveArtifact(ctx, segment.BaseName+".pdf", result.Pdf)
			if err != nil {
				return nil, err
			}
			report.PdfURL, report.PdfBase64 = url, inline
		}

		reports = append(reports, report)
	}
	return reports, nil
}

// resolveArtifact stores the artifact and returns its URL. The embedded
// backend tolerates a failing store: the error is logged and the bytes are
// inlined instead, so the request still succeeds. For the worker and local
// backends a failing store fails the request.
func (s *ExportService) resolveArtifact(ctx context.Context, name string, data []byte) (url, inline string, err error) {
	if s.store == nil {
		return "", base64.StdEncoding.EncodeToString(data), nil
	}

	url, saveErr := s.store.Save(ctx, name, data)
	if saveErr == nil {
		return url, "", nil
	}

	if s.kind == backend.KindEmbedded {
		s.log.WarnContext(ctx, "artifact store failed, falling back to inline bytes",
			"artifact", name, "error", saveErr)
		return "", base64.StdEncoding.EncodeToString(data), nil
	}
	return "", "", fmt.Errorf("store artifact %q: %w", name, saveErr)
}

func segmentKnown(segments []domain.PreparedSegment, baseName string) bool {
	for _, segment := range segments {
		if segment.BaseName == baseName {
			return true
		}
	}
	return false
}
