// Package service implements the business logic of the Wochenbericht export
// engine: preparing per-segment payloads and orchestrating the render backend.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
	"github.com/mhaas/wochenbericht/backend/internal/rowcalc"
	"github.com/mhaas/wochenbericht/backend/internal/week"
)

const (
	isoDate    = "2006-01-02"
	germanDate = "02.01.2006"
)

// germanMonths maps time.Month (1-based) to its German name. The second
// column is the filename-safe spelling used in artifact names.
var germanMonths = [13][2]string{
	{}, // time.Month is 1-based
	{"Januar", "Januar"},
	{"Februar", "Februar"},
	{"März", "Maerz"},
	{"April", "April"},
	{"Mai", "Mai"},
	{"Juni", "Juni"},
	{"Juli", "Juli"},
	{"August", "August"},
	{"September", "September"},
	{"Oktober", "Oktober"},
	{"November", "November"},
	{"Dezember", "Dezember"},
}

// BuildPreparedSegments turns one week's raw data into render-ready segments:
// one per (year, month) run of the week's dates. Each returned segment is
// fully self-describing; backends perform no further lookups.
//
// entries is keyed by ISO date string; days without an entry are absent keys.
func BuildPreparedSegments(
	baseYear, baseWeek int,
	dates [7]time.Time,
	entries map[string]domain.DailyEntry,
	profile domain.Profile,
	vehicle domain.VehicleWeek,
) []domain.PreparedSegment {
	allWeekDates := make([]string, len(dates))
	for i, d := range dates {
		allWeekDates[i] = d.Format(isoDate)
	}

	segments := week.SplitByMonth(dates)
	prepared := make([]domain.PreparedSegment, 0, len(segments))

	for _, seg := range segments {
		displayYear, displayWeek, carryOver := week.SegmentDisplayInfo(baseYear, baseWeek, seg.Year)

		segmentDates := make([]string, len(seg.Dates))
		weekdayColumns := make(map[string]int, len(seg.Dates))
		for i, d := range seg.Dates {
			iso := d.Format(isoDate)
			segmentDates[i] = iso
			weekdayColumns[iso] = isoWeekdayIndex(d)
		}

		payload := domain.SegmentPayload{
			Kw:             displayWeek,
			Year:           displayYear,
			Month:          seg.Month,
			ReportStart:    seg.Start.Format(isoDate),
			ReportEnd:      seg.End.Format(isoDate),
			ReportStartDe:  seg.Start.Format(germanDate),
			ReportEndDe:    seg.End.Format(germanDate),
			AllWeekDates:   allWeekDates,
			SegmentDates:   segmentDates,
			Profile:        segmentProfile(segmentDates, entries, profile),
			Rows:           segmentRows(segmentDates, entries),
			WeekdayColumns: weekdayColumns,
			Kennzeichen:    firstNonEmpty(vehicle.Kennzeichen, profile.Kennzeichen),
			Kennzeichen2:   firstNonEmpty(vehicle.Kennzeichen2, profile.Kennzeichen2),
			KmStand:        vehicle.KmStand,
			KmGefahren:     vehicle.KmGefahren,
		}

		prepared = append(prepared, domain.PreparedSegment{
			BaseName:              baseFilename(seg.Month, displayYear, displayWeek),
			SegmentKey:            seg.Key,
			Month:                 seg.Month,
			Dates:                 segmentDates,
			ReportYear:            displayYear,
			ReportKw:              displayWeek,
			IsCarryOverToNextYear: carryOver,
			Payload:               payload,
		})
	}
	return prepared
}

// segmentProfile assembles the header fields for one segment: the distinct
// non-empty site/work-type texts across the segment's days, falling back to
// the profile defaults when no day carries one.
func segmentProfile(segmentDates []string, entries map[string]domain.DailyEntry, profile domain.Profile) domain.ProfileHeader {
	var sites, arts []string
	for _, iso := range segmentDates {
		entry, ok := entries[iso]
		if !ok {
			continue
		}
		sites = appendDistinct(sites, entry.ArbeitsstaetteProjekte)
		arts = appendDistinct(arts, entry.ArtDerArbeit)
	}

	return domain.ProfileHeader{
		Name:                   profile.Name,
		Vorname:                profile.Vorname,
		ArbeitsstaetteProjekte: firstNonEmpty(strings.Join(sites, ", "), profile.ArbeitsstaetteProjekte),
		ArtDerArbeit:           firstNonEmpty(strings.Join(arts, ", "), profile.ArtDerArbeit),
	}
}

// segmentRows flattens the meaningful lines of the segment's days, in date
// and line order, into export rows bound to their source dates.
func segmentRows(segmentDates []string, entries map[string]domain.DailyEntry) []domain.ExportRow {
	rows := []domain.ExportRow{}
	for _, iso := range segmentDates {
		entry, ok := entries[iso]
		if !ok {
			continue
		}
		for _, line := range entry.Lines {
			if !rowcalc.HasMeaningfulLine(line) {
				continue
			}
			rows = append(rows, domain.ExportRow{
				Date:             iso,
				SiteNameOrt:      line.SiteNameOrt,
				Beginn:           line.Beginn,
				Ende:             line.Ende,
				PauseOverride:    line.PauseOverride,
				DayHoursOverride: line.DayHoursOverride,
				LohnType:         line.LohnType,
				Ausloese:         line.Ausloese,
				Zulage:           line.Zulage,
				Projektnummer:    line.Projektnummer,
				KabelschachtInfo: line.KabelschachtInfo,
				SmNr:             line.SmNr,
				Bauleiter:        line.Bauleiter,
				Arbeitskollege:   line.Arbeitskollege,
			})
		}
	}
	return rows
}

// baseFilename derives the deterministic artifact name for one segment.
// Segments of one request never share a (month, year, week) triple, so names
// cannot collide within a request.
func baseFilename(month time.Month, displayYear, displayWeek int) string {
	return fmt.Sprintf("Wochenbericht_%s_%d_KW%d", germanMonths[month][1], displayYear, displayWeek)
}

// MonthNameDe returns the German display name of a month.
func MonthNameDe(month time.Month) string {
	return germanMonths[month][0]
}

func appendDistinct(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// isoWeekdayIndex returns 0 (Monday) .. 6 (Sunday).
func isoWeekdayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}
