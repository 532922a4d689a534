package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// Worker renders segments by calling the remote export worker: one POST
// covering all segments of the request, atomically. Any failure aborts every
// segment; there are no partial results and no retries.
type Worker struct {
	client       *http.Client
	url          string
	token        string
	templateName string
	template     []byte
}

// NewWorker constructs a Worker backend. url is the worker's base URL; token
// (optional) is sent as a bearer token. The template bytes travel with every
// request so the worker needs no shared filesystem.
func NewWorker(url, token, templatePath string, template []byte) *Worker {
	return &Worker{
		// The worker renders spreadsheets and possibly converts PDFs per
		// call; give it room, callers impose the real request deadline.
		client:       &http.Client{Timeout: 120 * time.Second},
		url:          strings.TrimRight(url, "/"),
		token:        token,
		templateName: filepath.Base(templatePath),
		template:     template,
	}
}

// workerRequest is the wire shape of POST /export-week.
type workerRequest struct {
	Format           domain.ExportFormat      `json:"format"`
	TemplateFilename string                   `json:"templateFilename"`
	TemplateBase64   string                   `json:"templateBase64"`
	Segments         []domain.PreparedSegment `json:"segments"`
}

// WorkerSegmentResult is the worker's wire-level result for one segment
// before it is normalized into a FinalReport.
type WorkerSegmentResult struct {
	BaseName      string   `json:"baseName"`
	XlsxBase64    string   `json:"xlsxBase64"`
	PdfBase64     string   `json:"pdfBase64"`
	Warnings      []string `json:"warnings"`
	RowsWritten   *int     `json:"rowsWritten"`
	RowsTruncated *int     `json:"rowsTruncated"`
}

// workerResponse is the wire shape of the worker's reply. A missing reports
// array (as opposed to an empty one) marks an invalid response.
type workerResponse struct {
	Reports []WorkerSegmentResult `json:"reports"`
	Error   string                `json:"error"`
}

func (w *Worker) Render(ctx context.Context, req RenderRequest) ([]RenderedSegment, error) {
	body, err := json.Marshal(workerRequest{
		Format:           req.Format,
		TemplateFilename: w.templateName,
		TemplateBase64:   base64.StdEncoding.EncodeToString(w.template),
		Segments:         req.Segments,
	})
	if err != nil {
		return nil, fmt.Errorf("backend.Worker.Render: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url+"/export-week", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("backend.Worker.Render: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend.Worker.Render: %w: %w", domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend.Worker.Render: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend.Worker.Render: %w: worker returned status %d: %s",
			domain.ErrBackendFailure, resp.StatusCode, workerErrorMessage(respBody))
	}

	var decoded workerResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("backend.Worker.Render: %w: invalid response: %w", domain.ErrBackendFailure, err)
	}
	if decoded.Reports == nil {
		return nil, fmt.Errorf("backend.Worker.Render: %w: invalid response: missing reports", domain.ErrBackendFailure)
	}

	results := make([]RenderedSegment, 0, len(decoded.Reports))
	for _, report := range decoded.Reports {
		rendered, err := decodeWorkerResult(report)
		if err != nil {
			return nil, fmt.Errorf("backend.Worker.Render: segment %q: %w: %w",
				report.BaseName, domain.ErrBackendFailure, err)
		}
		results = append(results, rendered)
	}
	return results, nil
}

// decodeWorkerResult turns one wire result into a RenderedSegment, decoding
// the base64 artifact transport encoding.
func decodeWorkerResult(report WorkerSegmentResult) (RenderedSegment, error) {
	xlsx, err := base64.StdEncoding.DecodeString(report.XlsxBase64)
	if err != nil {
		return RenderedSegment{}, fmt.Errorf("decode xlsx: %w", err)
	}

	var pdf []byte
	if report.PdfBase64 != "" {
		pdf, err = base64.StdEncoding.DecodeString(report.PdfBase64)
		if err != nil {
			return RenderedSegment{}, fmt.Errorf("decode pdf: %w", err)
		}
	}

	rendered := RenderedSegment{
		BaseName: report.BaseName,
		Xlsx:     xlsx,
		Pdf:      pdf,
		Warnings: report.Warnings,
	}
	if report.RowsWritten != nil {
		rendered.RowsWritten = *report.RowsWritten
	}
	if report.RowsTruncated != nil {
		rendered.RowsTruncated = *report.RowsTruncated
	}
	return rendered, nil
}

// workerErrorMessage extracts the worker's own error message from a non-2xx
// body when the body is the worker's JSON error shape, and falls back to the
// raw body otherwise.
func workerErrorMessage(body []byte) string {
	var decoded workerResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		return decoded.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
