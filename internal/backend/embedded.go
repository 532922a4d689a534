package backend

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// Embedded renders segments in-process by filling a copy of the xlsx template
// with excelize. It is the always-available fallback backend and never
// produces PDF.
type Embedded struct {
	template []byte
}

// NewEmbedded constructs an Embedded writer over the raw template bytes.
// The template is never mutated; every segment opens a fresh copy.
func NewEmbedded(template []byte) *Embedded {
	return &Embedded{template: template}
}

// Render fills one workbook per segment. A PDF request degrades to a warning
// on every segment; rendering itself is all-or-nothing per call.
func (e *Embedded) Render(ctx context.Context, req RenderRequest) ([]RenderedSegment, error) {
	results := make([]RenderedSegment, 0, len(req.Segments))

	for _, segment := range req.Segments {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backend.Embedded.Render: %w", err)
		}

		rendered, err := e.renderSegment(segment.Payload, segment.BaseName)
		if err != nil {
			return nil, fmt.Errorf("backend.Embedded.Render: segment %q: %w", segment.BaseName, err)
		}
		if req.Format.WantsPdf() {
			rendered.Warnings = append(rendered.Warnings,
				"PDF export is not available with the embedded writer.")
		}
		results = append(results, rendered)
	}
	return results, nil
}

func (e *Embedded) renderSegment(payload domain.SegmentPayload, baseName string) (RenderedSegment, error) {
	f, err := excelize.OpenReader(bytes.NewReader(e.template))
	if err != nil {
		return RenderedSegment{}, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	rowsWritten, rowsTruncated, warnings, err := fillTemplate(f, payload)
	if err != nil {
		return RenderedSegment{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return RenderedSegment{}, fmt.Errorf("serialize workbook: %w", err)
	}

	return RenderedSegment{
		BaseName:      baseName,
		Xlsx:          buf.Bytes(),
		Warnings:      warnings,
		RowsWritten:   rowsWritten,
		RowsTruncated: rowsTruncated,
	}, nil
}
