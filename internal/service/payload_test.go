package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
	"github.com/mhaas/wochenbericht/backend/internal/week"
)

func testProfile() domain.Profile {
	return domain.Profile{
		Name:                   "Mustermann",
		Vorname:                "Max",
		ArbeitsstaetteProjekte: "Profil-Baustelle",
		ArtDerArbeit:           "Tiefbau",
		Kennzeichen:            "HH-AB 123",
	}
}

func entryWithLine(day time.Time, line domain.DailyLine) domain.DailyEntry {
	return domain.DailyEntry{
		Date:  day,
		Lines: []domain.DailyLine{domain.NewDailyLine(line)},
	}
}

func TestBuildPreparedSegments_SingleMonthWeek(t *testing.T) {
	// 2026 KW2: Jan 5 - Jan 11, all in January.
	dates := week.Dates(2026, 2)
	monday := dates[0]

	entries := map[string]domain.DailyEntry{
		monday.Format(isoDate): entryWithLine(monday, domain.DailyLine{
			SiteNameOrt: "Hamburg",
			Beginn:      "08:00",
			Ende:        "16:30",
		}),
	}

	segments := BuildPreparedSegments(2026, 2, dates, entries, testProfile(), domain.VehicleWeek{})
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, "Wochenbericht_Januar_2026_KW2", seg.BaseName)
	assert.Equal(t, time.January, seg.Month)
	assert.Equal(t, 2026, seg.ReportYear)
	assert.Equal(t, 2, seg.ReportKw)
	assert.False(t, seg.IsCarryOverToNextYear)
	assert.Len(t, seg.Dates, 7)

	assert.Equal(t, 2, seg.Payload.Kw)
	assert.Equal(t, "2026-01-05", seg.Payload.ReportStart)
	assert.Equal(t, "2026-01-11", seg.Payload.ReportEnd)
	assert.Equal(t, "05.01.2026", seg.Payload.ReportStartDe)
	assert.Equal(t, seg.Payload.AllWeekDates, seg.Payload.SegmentDates)
	assert.Equal(t, 0, seg.Payload.WeekdayColumns["2026-01-05"])
	assert.Equal(t, 6, seg.Payload.WeekdayColumns["2026-01-11"])

	require.Len(t, seg.Payload.Rows, 1)
	assert.Equal(t, "2026-01-05", seg.Payload.Rows[0].Date)
	assert.Equal(t, "Hamburg", seg.Payload.Rows[0].SiteNameOrt)
}

func TestBuildPreparedSegments_MonthBoundarySplits(t *testing.T) {
	// 2026 KW9: Feb 23 - Mar 1.
	dates := week.Dates(2026, 9)

	segments := BuildPreparedSegments(2026, 9, dates, nil, testProfile(), domain.VehicleWeek{})
	require.Len(t, segments, 2)

	feb, mar := segments[0], segments[1]
	assert.Equal(t, "Wochenbericht_Februar_2026_KW9", feb.BaseName)
	assert.Equal(t, "Wochenbericht_Maerz_2026_KW9", mar.BaseName)
	assert.Len(t, feb.Dates, 6)
	assert.Len(t, mar.Dates, 1)

	// Both segments carry the full week's dates for the shared date row.
	assert.Len(t, feb.Payload.AllWeekDates, 7)
	assert.Equal(t, feb.Payload.AllWeekDates, mar.Payload.AllWeekDates)

	// The Sunday still lands in its true weekday column.
	assert.Equal(t, 6, mar.Payload.WeekdayColumns["2026-03-01"])
}

func TestBuildPreparedSegments_CarryOverWeekRelabeled(t *testing.T) {
	// 2020 KW53: Dec 28 2020 - Jan 3 2021. The January part is relabeled
	// KW1/2021 and flagged as carry-over.
	dates := week.Dates(2020, 53)

	segments := BuildPreparedSegments(2020, 53, dates, nil, testProfile(), domain.VehicleWeek{})
	require.Len(t, segments, 2)

	dec, jan := segments[0], segments[1]
	assert.Equal(t, 2020, dec.ReportYear)
	assert.Equal(t, 53, dec.ReportKw)
	assert.False(t, dec.IsCarryOverToNextYear)

	assert.Equal(t, 2021, jan.ReportYear)
	assert.Equal(t, 1, jan.ReportKw)
	assert.True(t, jan.IsCarryOverToNextYear)
	assert.Equal(t, "Wochenbericht_Januar_2021_KW1", jan.BaseName)
}

func TestBuildPreparedSegments_ProfileHeaderPrefersDayTexts(t *testing.T) {
	dates := week.Dates(2026, 2)
	mondayIso := dates[0].Format(isoDate)
	tuesdayIso := dates[1].Format(isoDate)

	entries := map[string]domain.DailyEntry{
		mondayIso: {
			Date:                   dates[0],
			ArbeitsstaetteProjekte: "Baustelle A",
			ArtDerArbeit:           "Montage",
			Lines:                  []domain.DailyLine{domain.NewDailyLine(domain.DailyLine{Beginn: "07:00", Ende: "15:00"})},
		},
		tuesdayIso: {
			Date:                   dates[1],
			ArbeitsstaetteProjekte: "Baustelle A", // duplicate, collapsed
			ArtDerArbeit:           "Demontage",
			Lines:                  []domain.DailyLine{domain.NewDailyLine(domain.DailyLine{Beginn: "07:00", Ende: "15:00"})},
		},
	}

	segments := BuildPreparedSegments(2026, 2, dates, entries, testProfile(), domain.VehicleWeek{})
	require.Len(t, segments, 1)

	header := segments[0].Payload.Profile
	assert.Equal(t, "Mustermann", header.Name)
	assert.Equal(t, "Baustelle A", header.ArbeitsstaetteProjekte)
	assert.Equal(t, "Montage, Demontage", header.ArtDerArbeit)
}

func TestBuildPreparedSegments_ProfileHeaderFallsBackToDefaults(t *testing.T) {
	dates := week.Dates(2026, 2)

	segments := BuildPreparedSegments(2026, 2, dates, nil, testProfile(), domain.VehicleWeek{})
	require.Len(t, segments, 1)

	header := segments[0].Payload.Profile
	assert.Equal(t, "Profil-Baustelle", header.ArbeitsstaetteProjekte)
	assert.Equal(t, "Tiefbau", header.ArtDerArbeit)
}

func TestBuildPreparedSegments_VehicleFallsBackToProfilePlates(t *testing.T) {
	dates := week.Dates(2026, 2)

	withVehicle := BuildPreparedSegments(2026, 2, dates, nil, testProfile(), domain.VehicleWeek{
		Kennzeichen: "HH-XY 999",
		KmStand:     "123456",
	})
	require.Len(t, withVehicle, 1)
	assert.Equal(t, "HH-XY 999", withVehicle[0].Payload.Kennzeichen)
	assert.Equal(t, "123456", withVehicle[0].Payload.KmStand)

	withoutVehicle := BuildPreparedSegments(2026, 2, dates, nil, testProfile(), domain.VehicleWeek{})
	require.Len(t, withoutVehicle, 1)
	assert.Equal(t, "HH-AB 123", withoutVehicle[0].Payload.Kennzeichen)
}

func TestBuildPreparedSegments_EmptyLinesAreSkipped(t *testing.T) {
	dates := week.Dates(2026, 2)
	mondayIso := dates[0].Format(isoDate)

	entries := map[string]domain.DailyEntry{
		mondayIso: {
			Date: dates[0],
			Lines: []domain.DailyLine{
				domain.NewDailyLine(domain.DailyLine{}), // only default LohnType, not meaningful
				domain.NewDailyLine(domain.DailyLine{Beginn: "08:00", Ende: "12:00"}),
			},
		},
	}

	segments := BuildPreparedSegments(2026, 2, dates, entries, testProfile(), domain.VehicleWeek{})
	require.Len(t, segments, 1)
	require.Len(t, segments[0].Payload.Rows, 1)
	assert.Equal(t, "08:00", segments[0].Payload.Rows[0].Beginn)
}

func TestMonthNameDe(t *testing.T) {
	assert.Equal(t, "März", MonthNameDe(time.March))
	assert.Equal(t, "Dezember", MonthNameDe(time.December))
}
