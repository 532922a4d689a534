package backend_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhaas/wochenbericht/backend/internal/backend"
	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

func workerRequestBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestWorker_Render_Success(t *testing.T) {
	xlsx := []byte("fake-xlsx-bytes")
	rowsWritten := 5

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/export-week", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body := workerRequestBody(t, r)
		assert.Equal(t, "xlsx", body["format"])
		assert.Equal(t, "template.xlsx", body["templateFilename"])
		assert.NotEmpty(t, body["templateBase64"])
		require.Len(t, body["segments"], 1)

		json.NewEncoder(w).Encode(map[string]any{
			"reports": []map[string]any{{
				"baseName":    "Wochenbericht_Februar_2026_KW9",
				"xlsxBase64":  base64.StdEncoding.EncodeToString(xlsx),
				"warnings":    []string{},
				"rowsWritten": rowsWritten,
			}},
		})
	}))
	defer srv.Close()

	w := backend.NewWorker(srv.URL, "secret", "/etc/wochenbericht/template.xlsx", []byte("template-bytes"))
	results, err := w.Render(context.Background(), backend.RenderRequest{
		Format:   domain.FormatXlsx,
		Segments: []domain.PreparedSegment{{BaseName: "Wochenbericht_Februar_2026_KW9"}},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Wochenbericht_Februar_2026_KW9", results[0].BaseName)
	assert.Equal(t, xlsx, results[0].Xlsx)
	assert.Nil(t, results[0].Pdf)
	assert.Equal(t, 5, results[0].RowsWritten)
}

func TestWorker_Render_DecodesPdf(t *testing.T) {
	pdf := []byte("%PDF-fake")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"reports": []map[string]any{{
				"baseName":   "report",
				"xlsxBase64": base64.StdEncoding.EncodeToString([]byte("x")),
				"pdfBase64":  base64.StdEncoding.EncodeToString(pdf),
			}},
		})
	}))
	defer srv.Close()

	w := backend.NewWorker(srv.URL, "", "template.xlsx", nil)
	results, err := w.Render(context.Background(), backend.RenderRequest{
		Format:   domain.FormatBoth,
		Segments: []domain.PreparedSegment{{BaseName: "report"}},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, pdf, results[0].Pdf)
}

func TestWorker_Render_MissingReportsIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 OK, but no "reports" key at all.
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	w := backend.NewWorker(srv.URL, "", "template.xlsx", nil)
	_, err := w.Render(context.Background(), backend.RenderRequest{Format: domain.FormatXlsx})

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrBackendFailure)
	assert.Contains(t, err.Error(), "missing reports")
}

func TestWorker_Render_Non2xxIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{"error": "template corrupt"})
	}))
	defer srv.Close()

	w := backend.NewWorker(srv.URL, "", "template.xlsx", nil)
	_, err := w.Render(context.Background(), backend.RenderRequest{Format: domain.FormatXlsx})

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrBackendFailure)
	assert.Contains(t, err.Error(), "template corrupt")
}

func TestWorker_Render_ConnectionErrorIsHardFailure(t *testing.T) {
	// Grab a URL and immediately close the server so the dial fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	w := backend.NewWorker(url, "", "template.xlsx", nil)
	_, err := w.Render(context.Background(), backend.RenderRequest{Format: domain.FormatXlsx})

	require.ErrorIs(t, err, domain.ErrBackendFailure)
}
