package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
	"github.com/mhaas/wochenbericht/backend/internal/handler"
)

// ---- mock ExportServicer ---------------------------------------------------

type mockExportServicer struct {
	exportWeek func(ctx context.Context, year, week int, format domain.ExportFormat) (domain.WeekExport, error)
}

func (m *mockExportServicer) ExportWeek(ctx context.Context, year, week int, format domain.ExportFormat) (domain.WeekExport, error) {
	return m.exportWeek(ctx, year, week, format)
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func newExportHTTPHandler(svc handler.ExportServicer) http.Handler {
	return handler.NewServer(svc).Routes()
}

func weekExportFixture() domain.WeekExport {
	return domain.WeekExport{
		WeekDates:    []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09", "2026-01-10", "2026-01-11"},
		IsMonthSplit: false,
		Reports: []domain.FinalReport{{
			BaseName:   "Wochenbericht_Januar_2026_KW2",
			ReportYear: 2026,
			ReportKw:   2,
			XlsxURL:    "http://test/exports/Wochenbericht_Januar_2026_KW2.xlsx",
			Warnings:   []string{},
		}},
	}
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code, body.Error.Message
}

// ---- tests -----------------------------------------------------------------

func TestGetExportWeek_returns200WithReports(t *testing.T) {
	var gotYear, gotWeek int
	var gotFormat domain.ExportFormat
	h := newExportHTTPHandler(&mockExportServicer{
		exportWeek: func(_ context.Context, year, week int, format domain.ExportFormat) (domain.WeekExport, error) {
			gotYear, gotWeek, gotFormat = year, week, format
			return weekExportFixture(), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/export-week?year=2026&kw=2&format=xlsx", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2026, gotYear)
	assert.Equal(t, 2, gotWeek)
	assert.Equal(t, domain.FormatXlsx, gotFormat)

	var body domain.WeekExport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Reports, 1)
	assert.Equal(t, "Wochenbericht_Januar_2026_KW2", body.Reports[0].BaseName)
	assert.Len(t, body.WeekDates, 7)
}

func TestGetExportWeek_defaultsFormatToXlsx(t *testing.T) {
	var gotFormat domain.ExportFormat
	h := newExportHTTPHandler(&mockExportServicer{
		exportWeek: func(_ context.Context, _, _ int, format domain.ExportFormat) (domain.WeekExport, error) {
			gotFormat = format
			return weekExportFixture(), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/export-week?year=2026&kw=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.FormatXlsx, gotFormat)
}

func TestGetExportWeek_nonNumericParamsReturn400(t *testing.T) {
	h := newExportHTTPHandler(&mockExportServicer{
		exportWeek: func(_ context.Context, _, _ int, _ domain.ExportFormat) (domain.WeekExport, error) {
			t.Fatal("service must not be called")
			return domain.WeekExport{}, nil
		},
	})

	for _, target := range []string{
		"/api/export-week?year=abc&kw=2",
		"/api/export-week?year=2026&kw=abc",
		"/api/export-week", // both missing
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		code, _ := decodeErrorBody(t, rec)
		assert.Equal(t, "bad_request", code, target)
	}
}

func TestGetExportWeek_errorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", fmt.Errorf("service.ExportService.ExportWeek: %w: week 60 outside 1..52 for year 2021", domain.ErrValidation), http.StatusUnprocessableEntity, "validation_error"},
		{"not found", fmt.Errorf("service.ExportService.ExportWeek: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"backend failure", fmt.Errorf("service.ExportService.ExportWeek: %w: worker returned unknown segment \"x\"", domain.ErrBackendFailure), http.StatusBadGateway, "backend_failure"},
		{"backend unavailable", fmt.Errorf("service.ExportService.ExportWeek: %w", domain.ErrBackendUnavailable), http.StatusServiceUnavailable, "backend_unavailable"},
		{"internal", fmt.Errorf("service.ExportService.ExportWeek: boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newExportHTTPHandler(&mockExportServicer{
				exportWeek: func(_ context.Context, _, _ int, _ domain.ExportFormat) (domain.WeekExport, error) {
					return domain.WeekExport{}, tc.err
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/export-week?year=2026&kw=2", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			code, _ := decodeErrorBody(t, rec)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

func TestGetExportWeek_validationMessageIsUnwrapped(t *testing.T) {
	h := newExportHTTPHandler(&mockExportServicer{
		exportWeek: func(_ context.Context, _, _ int, _ domain.ExportFormat) (domain.WeekExport, error) {
			return domain.WeekExport{}, fmt.Errorf("service.ExportService.ExportWeek: %w: year 1999 outside 2000..2100", domain.ErrValidation)
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/export-week?year=1999&kw=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	_, message := decodeErrorBody(t, rec)
	assert.Equal(t, "year 1999 outside 2000..2100", message)
}
