package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// Local renders each segment by spawning the export script as a subprocess,
// and optionally converts the result to PDF with LibreOffice. A non-zero exit
// of the export script is a hard failure; PDF conversion is best-effort.
type Local struct {
	opts LocalOptions
}

// LocalOptions configures the Local backend. All paths come from the process
// configuration, never from the request.
type LocalOptions struct {
	PythonBin    string
	Script       string
	TemplatePath string
	SofficePath  string
	EnablePDF    bool
}

// NewLocal constructs a Local backend.
func NewLocal(opts LocalOptions) *Local {
	return &Local{opts: opts}
}

// scriptResult is the JSON object the export script prints on stdout.
type scriptResult struct {
	RowsWritten   int      `json:"rows_written"`
	RowsTruncated int      `json:"rows_truncated"`
	Warnings      []string `json:"warnings"`
}

// scriptPayload is the wrapper the export script expects in its payload file.
type scriptPayload struct {
	TemplatePath string                `json:"templatePath"`
	Payload      domain.SegmentPayload `json:"payload"`
}

func (l *Local) Render(ctx context.Context, req RenderRequest) ([]RenderedSegment, error) {
	tmpDir, err := os.MkdirTemp("", "wochenbericht_export_")
	if err != nil {
		return nil, fmt.Errorf("backend.Local.Render: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	results := make([]RenderedSegment, 0, len(req.Segments))
	for _, segment := range req.Segments {
		rendered, err := l.renderSegment(ctx, tmpDir, segment, req.Format)
		if err != nil {
			return nil, fmt.Errorf("backend.Local.Render: segment %q: %w", segment.BaseName, err)
		}
		results = append(results, rendered)
	}
	return results, nil
}

func (l *Local) renderSegment(ctx context.Context, tmpDir string, segment domain.PreparedSegment, format domain.ExportFormat) (RenderedSegment, error) {
	payloadPath := filepath.Join(tmpDir, segment.BaseName+".json")
	xlsxPath := filepath.Join(tmpDir, segment.BaseName+".xlsx")

	payload, err := json.Marshal(scriptPayload{TemplatePath: l.opts.TemplatePath, Payload: segment.Payload})
	if err != nil {
		return RenderedSegment{}, fmt.Errorf("marshal payload: %w", err)
	}
	if err := os.WriteFile(payloadPath, payload, 0o600); err != nil {
		return RenderedSegment{}, fmt.Errorf("write payload: %w", err)
	}

	result, err := l.runExportScript(ctx, payloadPath, xlsxPath)
	if err != nil {
		return RenderedSegment{}, err
	}

	xlsx, err := os.ReadFile(xlsxPath)
	if err != nil {
		return RenderedSegment{}, fmt.Errorf("%w: read output: %w", domain.ErrBackendFailure, err)
	}

	rendered := RenderedSegment{
		BaseName:      segment.BaseName,
		Xlsx:          xlsx,
		Warnings:      result.Warnings,
		RowsWritten:   result.RowsWritten,
		RowsTruncated: result.RowsTruncated,
	}

	if format.WantsPdf() {
		pdf, warning := l.tryPdfConvert(ctx, xlsxPath)
		if pdf != nil {
			rendered.Pdf = pdf
		} else if warning != "" {
			rendered.Warnings = append(rendered.Warnings, warning)
		}
	}
	return rendered, nil
}

// runExportScript runs the export script once and parses its stdout. Exit 0
// with non-JSON stdout is tolerated: the raw output becomes a warning.
func (l *Local) runExportScript(ctx context.Context, payloadPath, outputPath string) (scriptResult, error) {
	cmd := exec.CommandContext(ctx, l.opts.PythonBin, l.opts.Script,
		"--payload-file", payloadPath, "--output", outputPath)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return scriptResult{}, fmt.Errorf("%w: export script: %v: %s", domain.ErrBackendFailure, err, msg)
	}

	out := strings.TrimSpace(stdout.String())
	var result scriptResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		if out != "" {
			result.Warnings = []string{out}
		}
		return result, nil
	}
	return result, nil
}

// tryPdfConvert probes the configured soffice binary and the well-known
// install locations in order, returning the PDF bytes of the first candidate
// that succeeds, or a warning when none does. Unavailability of LibreOffice
// is never an error.
func (l *Local) tryPdfConvert(ctx context.Context, xlsxPath string) (pdf []byte, warning string) {
	if !l.opts.EnablePDF {
		return nil, "PDF export disabled for local export."
	}

	candidates := []string{
		l.opts.SofficePath,
		"soffice",
		"/usr/bin/soffice",
		"/usr/lib/libreoffice/program/soffice",
	}

	outDir := filepath.Dir(xlsxPath)
	pdfPath := strings.TrimSuffix(xlsxPath, filepath.Ext(xlsxPath)) + ".pdf"

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		cmd := exec.CommandContext(ctx, candidate,
			"--headless", "--convert-to", "pdf", "--outdir", outDir, xlsxPath)
		if err := cmd.Run(); err != nil {
			continue
		}
		if data, err := os.ReadFile(pdfPath); err == nil {
			return data, ""
		}
	}
	return nil, "PDF export requires LibreOffice (soffice)."
}
