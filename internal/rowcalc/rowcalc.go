// Package rowcalc turns the raw text fields of a daily report line into the
// numeric values written to the spreadsheet: time-of-day fractions, gross and
// net working hours, and the statutory automatic break.
//
// All functions are pure. Inputs are the raw user strings stored on a
// DailyLine; malformed values are reported via ok-booleans, never errors.
package rowcalc

import (
	"math"
	"strconv"
	"strings"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// TimeToFraction parses "HH:MM" into a fraction of a day in [0, 1).
// Returns ok=false for empty or malformed input.
func TimeToFraction(value string) (frac float64, ok bool) {
	hh, mm, ok := splitTime(value)
	if !ok {
		return 0, false
	}
	return (float64(hh)*60 + float64(mm)) / (24 * 60), true
}

// GrossHours returns the span between two day-fractions in hours, wrapping
// past midnight when the end lies before the start.
func GrossHours(startFrac, endFrac float64) float64 {
	diff := endFrac - startFrac
	if diff < 0 {
		diff += 1
	}
	return diff * 24
}

// AutoBreakHours is the statutory break schedule, evaluated on gross hours:
// more than 9.5h → 0.75h, more than 6h → 0.5h, otherwise no break.
// Boundaries are exclusive.
func AutoBreakHours(gross float64) float64 {
	switch {
	case gross > 9.5:
		return 0.75
	case gross > 6:
		return 0.5
	default:
		return 0
	}
}

// InferBreakFromNet guesses the break hidden inside a net-hours value by
// trying the candidate breaks in ascending order and returning the first one
// consistent with AutoBreakHours. Display-only: it backs the UI's "implied
// break" hint and the writer's break cell when a row has no start/end times.
// It must never feed back into a persisted computation.
func InferBreakFromNet(net float64) (pause float64, ok bool) {
	for _, candidate := range []float64{0, 0.5, 0.75} {
		if AutoBreakHours(net+candidate) == candidate {
			return candidate, true
		}
	}
	return 0, false
}

// NetHours computes the numeric day value for a line, rounded to 2 decimals:
//
//   - an explicit numeric override is used verbatim,
//   - otherwise gross hours from Beginn/Ende minus the pause override if that
//     is numeric, else minus the automatic break on gross hours.
//
// ok=false means the line has no numeric day value (no usable times and no
// explicit override).
func NetHours(line domain.DailyLine) (hours float64, ok bool) {
	override := ParseOverride(line.DayHoursOverride)
	if override.Kind == domain.OverrideExplicit {
		return round2(override.Hours), true
	}

	startFrac, startOK := TimeToFraction(line.Beginn)
	endFrac, endOK := TimeToFraction(line.Ende)
	if !startOK || !endOK {
		return 0, false
	}
	gross := GrossHours(startFrac, endFrac)

	if pause, isNum := ParseDecimal(line.PauseOverride); isNum {
		return round2(gross - pause), true
	}
	return round2(gross-AutoBreakHours(gross)), true
}

// HasMeaningfulLine decides whether a line counts for summaries and export:
// any non-empty field, or a wage-type code that differs from the default "S".
// This predicate is the single source of truth for both uses.
func HasMeaningfulLine(line domain.DailyLine) bool {
	fields := []string{
		line.SiteNameOrt, line.Beginn, line.Ende,
		line.PauseOverride, line.DayHoursOverride,
		line.Ausloese, line.Zulage, line.Projektnummer,
		line.KabelschachtInfo, line.SmNr, line.Bauleiter, line.Arbeitskollege,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	lohn := strings.TrimSpace(line.LohnType)
	return lohn != "" && lohn != domain.DefaultLohnType
}

// ParseOverride classifies a stored day-hours override into its tagged form.
// The sentinel asking to derive from Beginn/Ende is recognised here and
// nowhere else.
func ParseOverride(raw string) domain.HoursOverride {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return domain.HoursOverride{Kind: domain.OverrideAbsent}
	case trimmed == domain.AutoFromTimeSentinel:
		return domain.HoursOverride{Kind: domain.OverrideDeriveFromTime}
	}
	if num, ok := ParseDecimal(trimmed); ok {
		return domain.HoursOverride{Kind: domain.OverrideExplicit, Hours: num}
	}
	return domain.HoursOverride{Kind: domain.OverrideMarker, Marker: trimmed}
}

// ParseDecimal parses a user-entered number, accepting both "," and "." as
// the fractional separator. ok=false for empty or non-numeric input; the
// caller decides whether the raw text survives as an opaque marker.
func ParseDecimal(value string) (num float64, ok bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	normalized := strings.ReplaceAll(trimmed, ",", ".")
	num, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return 0, false
	}
	return num, true
}

// splitTime parses "HH:MM" into its components, rejecting anything outside
// 00:00..23:59.
func splitTime(value string) (hh, mm int, ok bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	mm, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

// round2 rounds half away from zero to 2 decimal places, matching the
// rounding the report template expects.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
