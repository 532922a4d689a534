// Package week implements ISO-8601 week arithmetic for the Wochenbericht
// report: locating the 7 dates of a calendar week, the inverse lookup, and
// splitting a week into per-month segments.
//
// All functions are pure and assume valid input; callers (the export service)
// validate year/week ranges before reaching this package.
package week

import (
	"fmt"
	"time"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// Dates returns the 7 consecutive dates of the given ISO week, Monday first.
// ISO week 1 is the week containing January 4th; the Monday of that week is
// located and offset by (week-1)*7 days.
func Dates(year, week int) [7]time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -(isoWeekday(jan4) - 1))
	start := monday.AddDate(0, 0, (week-1)*7)

	var dates [7]time.Time
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// Of returns the ISO year and week containing t, using the Thursday rule:
// the Thursday of t's week decides the ISO year.
func Of(t time.Time) (year, week int) {
	return t.ISOWeek()
}

// WeeksInYear returns 52 or 53. December 28 always lies in the year's final
// ISO week.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// SplitByMonth walks the week's 7 dates in order and starts a new segment
// whenever (year, month) changes. A single-month week yields one segment; a
// boundary-crossing week yields exactly two, in chronological order.
func SplitByMonth(dates [7]time.Time) []domain.WeekSegment {
	var segments []domain.WeekSegment
	for _, d := range dates {
		n := len(segments)
		if n == 0 || segments[n-1].Year != d.Year() || segments[n-1].Month != d.Month() {
			segments = append(segments, domain.WeekSegment{
				Key:   fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month())),
				Year:  d.Year(),
				Month: d.Month(),
			})
			n++
		}
		segments[n-1].Dates = append(segments[n-1].Dates, d)
	}

	for i := range segments {
		seg := &segments[i]
		seg.Start = seg.Dates[0]
		seg.End = seg.Dates[len(seg.Dates)-1]
		seg.IsSingleDay = len(seg.Dates) == 1
	}
	return segments
}

// DisplayInfo returns the year/week the whole report is labeled with.
// If any of the week's dates falls in a later year than baseYear, the report
// carries over: it is labeled week 1 of baseYear+1.
func DisplayInfo(baseYear, baseWeek int, dates [7]time.Time) (year, week int, carryOver bool) {
	for _, d := range dates {
		if d.Year() > baseYear {
			return baseYear + 1, 1, true
		}
	}
	return baseYear, baseWeek, false
}

// SegmentDisplayInfo applies the carry-over rule per segment: a segment whose
// year exceeds the base year is always labeled week 1 of that later year.
func SegmentDisplayInfo(baseYear, baseWeek, segmentYear int) (year, week int, carryOver bool) {
	if segmentYear > baseYear {
		return segmentYear, 1, true
	}
	return baseYear, baseWeek, false
}

// isoWeekday returns 1 (Monday) .. 7 (Sunday).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
