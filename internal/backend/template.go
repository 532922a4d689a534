package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
	"github.com/mhaas/wochenbericht/backend/internal/rowcalc"
)

// SheetName is the one sheet the Wochenbericht template must contain.
const SheetName = "Wochenbericht"

// The template's fixed geometry: one column per weekday in row 9, and a
// contiguous data block of 40 rows below it.
var weekdayColumns = [7]string{"H", "I", "J", "K", "L", "M", "N"}

const (
	dataRowStart = 10
	dataRowEnd   = 49
	maxDataRows  = dataRowEnd - dataRowStart + 1
)

// extraColumns are the data columns to the right of the weekday block.
var extraColumns = [8]string{"Q", "R", "S", "T", "U", "V", "W", "X"}

// Fixed header and footer cell addresses.
const (
	cellKw         = "H1"
	cellStartDe    = "L1" // template formats L1 as text
	cellEnd        = "R1"
	cellName       = "D3"
	cellVorname    = "P3"
	cellSite       = "D5"
	cellArt        = "D6"
	cellPlate      = "C53"
	cellPlate2     = "N53"
	cellKmStand    = "F54"
	cellKmGefahren = "Q54"
)

// fillTemplate writes one segment's payload into an opened copy of the
// template workbook. It returns the row counters and any truncation warning;
// the caller serializes the workbook.
func fillTemplate(f *excelize.File, payload domain.SegmentPayload) (rowsWritten, rowsTruncated int, warnings []string, err error) {
	idx, err := f.GetSheetIndex(SheetName)
	if err != nil || idx < 0 {
		return 0, 0, nil, fmt.Errorf("sheet %q not found in template", SheetName)
	}

	if err := writeHeader(f, payload); err != nil {
		return 0, 0, nil, err
	}
	if err := writeDateRow(f, payload); err != nil {
		return 0, 0, nil, err
	}
	if err := clearDataRows(f); err != nil {
		return 0, 0, nil, err
	}
	rowsWritten, rowsTruncated, err = writeDataRows(f, payload)
	if err != nil {
		return 0, 0, nil, err
	}
	if err := writeVehicleFooter(f, payload); err != nil {
		return 0, 0, nil, err
	}

	if rowsTruncated > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"More than %d lines for this report. Export truncated by %d line(s) to fit Excel rows %d-%d.",
			maxDataRows, rowsTruncated, dataRowStart, dataRowEnd))
	}
	return rowsWritten, rowsTruncated, warnings, nil
}

func writeHeader(f *excelize.File, payload domain.SegmentPayload) error {
	if err := f.SetCellValue(SheetName, cellKw, payload.Kw); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cellStartDe, payload.ReportStartDe); err != nil {
		return err
	}
	if end, err := time.Parse("2006-01-02", payload.ReportEnd); err == nil {
		if err := f.SetCellValue(SheetName, cellEnd, end); err != nil {
			return err
		}
	}

	for cell, value := range map[string]string{
		cellName:    payload.Profile.Name,
		cellVorname: payload.Profile.Vorname,
		cellSite:    payload.Profile.ArbeitsstaetteProjekte,
		cellArt:     payload.Profile.ArtDerArbeit,
	} {
		if err := f.SetCellValue(SheetName, cell, value); err != nil {
			return err
		}
	}
	return nil
}

// writeDateRow populates row 9: the day-of-month number under each weekday
// column whose date belongs to this segment; the other columns are cleared
// so a re-render of the sibling segment never shows stale numbers.
func writeDateRow(f *excelize.File, payload domain.SegmentPayload) error {
	for _, col := range weekdayColumns {
		if err := f.SetCellValue(SheetName, col+"9", nil); err != nil {
			return err
		}
	}

	inSegment := make(map[string]bool, len(payload.SegmentDates))
	for _, iso := range payload.SegmentDates {
		inSegment[iso] = true
	}

	for _, iso := range payload.AllWeekDates {
		if !inSegment[iso] {
			continue
		}
		d, err := time.Parse("2006-01-02", iso)
		if err != nil {
			continue
		}
		col := weekdayColumns[isoWeekdayIndex(d)]
		if err := f.SetCellValue(SheetName, col+"9", d.Day()); err != nil {
			return err
		}
	}
	return nil
}

// clearDataRows blanks every writable cell in the data block so re-rendering
// is idempotent. Columns G, O, and P keep their template formulas; G is only
// overwritten when a break value is explicitly written.
func clearDataRows(f *excelize.File) error {
	for row := dataRowStart; row <= dataRowEnd; row++ {
		cells := []string{fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row)}
		for _, col := range weekdayColumns {
			cells = append(cells, fmt.Sprintf("%s%d", col, row))
		}
		for _, col := range extraColumns {
			cells = append(cells, fmt.Sprintf("%s%d", col, row))
		}
		for _, cell := range cells {
			if err := f.SetCellValue(SheetName, cell, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDataRows(f *excelize.File, payload domain.SegmentPayload) (written, truncated int, err error) {
	rows := payload.Rows
	truncated = max(0, len(rows)-maxDataRows)
	if len(rows) > maxDataRows {
		rows = rows[:maxDataRows]
	}

	for idx, row := range rows {
		if err := writeDataRow(f, payload, row, dataRowStart+idx); err != nil {
			return 0, 0, err
		}
	}
	return len(rows), truncated, nil
}

func writeDataRow(f *excelize.File, payload domain.SegmentPayload, row domain.ExportRow, rowNo int) error {
	set := func(cell string, value any) error {
		return f.SetCellValue(SheetName, fmt.Sprintf("%s%d", cell, rowNo), value)
	}

	if err := set("A", row.SiteNameOrt); err != nil {
		return err
	}

	startFrac, startOK := rowcalc.TimeToFraction(row.Beginn)
	endFrac, endOK := rowcalc.TimeToFraction(row.Ende)
	if startOK {
		if err := set("E", startFrac); err != nil {
			return err
		}
	}
	if endOK {
		if err := set("F", endFrac); err != nil {
			return err
		}
	}

	num, marker, hasNum := dayCellValue(row)

	// Break cell: an explicit numeric override always; otherwise only the
	// display hint for rows carrying net hours without start/end times.
	if pause, ok := rowcalc.ParseDecimal(row.PauseOverride); ok {
		if err := set("G", pause); err != nil {
			return err
		}
	} else if !startOK && !endOK && hasNum {
		if pause, ok := rowcalc.InferBreakFromNet(num); ok && pause > 0 {
			if err := set("G", pause); err != nil {
				return err
			}
		}
	}

	if col, ok := weekdayColumnFor(payload, row.Date); ok {
		switch {
		case hasNum && num >= 0:
			if err := set(col, num); err != nil {
				return err
			}
		case marker != "":
			if err := set(col, normalizeMarker(marker)); err != nil {
				return err
			}
		}
	}

	if err := set("Q", row.LohnType); err != nil {
		return err
	}
	if err := set("R", row.Ausloese); err != nil {
		return err
	}
	if err := set("S", numberOrText(row.Zulage)); err != nil {
		return err
	}
	if err := set("T", row.Projektnummer); err != nil {
		return err
	}
	if err := set("U", row.KabelschachtInfo); err != nil {
		return err
	}
	if err := set("V", numberOrText(row.SmNr)); err != nil {
		return err
	}
	if err := set("W", row.Bauleiter); err != nil {
		return err
	}
	return set("X", row.Arbeitskollege)
}

// writeVehicleFooter fills the fixed car-usage cells. Odometer fields that
// parse as numbers get a numeric display format; anything else is written as
// the raw text the user entered.
func writeVehicleFooter(f *excelize.File, payload domain.SegmentPayload) error {
	if err := f.SetCellValue(SheetName, cellPlate, payload.Kennzeichen); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cellPlate2, payload.Kennzeichen2); err != nil {
		return err
	}
	if err := writeNumericOrRaw(f, cellKmStand, payload.KmStand); err != nil {
		return err
	}
	return writeNumericOrRaw(f, cellKmGefahren, payload.KmGefahren)
}

func writeNumericOrRaw(f *excelize.File, cell, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	num, ok := rowcalc.ParseDecimal(raw)
	if !ok {
		return f.SetCellValue(SheetName, cell, raw)
	}
	if err := f.SetCellValue(SheetName, cell, num); err != nil {
		return err
	}
	// Builtin format 4: "#,##0.00".
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, cell, cell, style)
}

// dayCellValue computes what goes into the row's weekday column:
// a net-hours number, or an opaque marker string, or nothing.
func dayCellValue(row domain.ExportRow) (num float64, marker string, hasNum bool) {
	override := rowcalc.ParseOverride(row.DayHoursOverride)
	if override.Kind == domain.OverrideMarker {
		return 0, override.Marker, false
	}

	line := domain.DailyLine{
		Beginn:           row.Beginn,
		Ende:             row.Ende,
		PauseOverride:    row.PauseOverride,
		DayHoursOverride: row.DayHoursOverride,
	}
	hours, ok := rowcalc.NetHours(line)
	if !ok {
		return 0, "", false
	}
	return hours, "", true
}

// weekdayColumnFor resolves a row date to its template column, preferring the
// payload's precomputed index map and falling back to parsing the date.
func weekdayColumnFor(payload domain.SegmentPayload, iso string) (string, bool) {
	if idx, ok := payload.WeekdayColumns[iso]; ok && idx >= 0 && idx < len(weekdayColumns) {
		return weekdayColumns[idx], true
	}
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", false
	}
	return weekdayColumns[isoWeekdayIndex(d)], true
}

// normalizeMarker maps any casing of "x" to lowercase and keeps other
// markers verbatim.
func normalizeMarker(marker string) string {
	if strings.EqualFold(marker, "x") {
		return "x"
	}
	return marker
}

// numberOrText returns the parsed number when the raw text is numeric, the
// trimmed raw text when not, and "" when empty.
func numberOrText(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if num, ok := rowcalc.ParseDecimal(trimmed); ok {
		return num
	}
	return trimmed
}

// isoWeekdayIndex returns 0 (Monday) .. 6 (Sunday).
func isoWeekdayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}
