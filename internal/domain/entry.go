package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyEntry is one calendar day's report: free-text header fields plus an
// ordered list of lines. A day with no entry is represented as an absent
// map key, never as an empty DailyEntry.
type DailyEntry struct {
	ID                     uuid.UUID
	Date                   time.Time // calendar day, UTC midnight
	ArbeitsstaetteProjekte string
	ArtDerArbeit           string
	Lines                  []DailyLine
	UpdatedAt              time.Time
}

// Profile holds the employee header fields printed on every report, plus the
// default vehicle plates used when a week has no own vehicle record.
type Profile struct {
	ID                     uuid.UUID
	Name                   string
	Vorname                string
	ArbeitsstaetteProjekte string
	ArtDerArbeit           string
	Kennzeichen            string
	Kennzeichen2           string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// VehicleWeek is the week-scoped car usage record rendered into the report
// footer. KmStand and KmGefahren are raw user text; the writer parses them
// and falls back to the verbatim text when they are not numeric.
type VehicleWeek struct {
	ID           uuid.UUID
	Year         int
	Week         int
	Kennzeichen  string
	Kennzeichen2 string
	KmStand      string
	KmGefahren   string
}
