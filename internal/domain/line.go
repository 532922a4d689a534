// Package domain defines the core types of the Wochenbericht backend.
// All types are plain structs with no behaviour beyond small constructors
// and accessors; business rules live in the service, week, and rowcalc
// packages.
package domain

import "github.com/google/uuid"

// LineType distinguishes the two kinds of rows a day's report can carry.
type LineType string

const (
	// LineTypeArbeitszeit is a working-time row with start/end times.
	LineTypeArbeitszeit LineType = "arbeitszeit"

	// LineTypeBaustelle is a construction-site row. It never carries
	// time-of-day values; NewDailyLine enforces that.
	LineTypeBaustelle LineType = "baustelle"
)

// AutoFromTimeSentinel is the stored string marking "derive the day value
// from Beginn/Ende" in DayHoursOverride. It is parsed exactly once (into an
// HoursOverride) and never compared against elsewhere.
const AutoFromTimeSentinel = "__AUTO_FROM_TIME__"

// DailyLine is one row of a day's report. Time-of-day fields use "HH:MM" or
// are empty; numeric fields are stored as raw user text (German decimal comma
// allowed) and parsed at computation/render time.
type DailyLine struct {
	ID               uuid.UUID `json:"id"`
	LineType         LineType  `json:"lineType"`
	SiteNameOrt      string    `json:"siteNameOrt"`
	Beginn           string    `json:"beginn"`
	Ende             string    `json:"ende"`
	PauseOverride    string    `json:"pauseOverride"`
	DayHoursOverride string    `json:"dayHoursOverride"`
	LohnType         string    `json:"lohnType"`
	Ausloese         string    `json:"ausloese"`
	Zulage           string    `json:"zulage"`
	Projektnummer    string    `json:"projektnummer"`
	KabelschachtInfo string    `json:"kabelschachtInfo"`
	SmNr             string    `json:"smNr"`
	Bauleiter        string    `json:"bauleiter"`
	Arbeitskollege   string    `json:"arbeitskollege"`
}

// NewDailyLine returns the line with a fresh ID and the baustelle invariant
// applied: a baustelle row is stripped of Beginn/Ende/PauseOverride.
func NewDailyLine(line DailyLine) DailyLine {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.LineType == "" {
		line.LineType = LineTypeArbeitszeit
	}
	if line.LohnType == "" {
		line.LohnType = DefaultLohnType
	}
	if line.LineType == LineTypeBaustelle {
		line.Beginn = ""
		line.Ende = ""
		line.PauseOverride = ""
	}
	return line
}

// DefaultLohnType is the wage-type code a line carries when the user picked
// nothing. A line whose only set field is this default counts as empty.
const DefaultLohnType = "S"

// OverrideKind enumerates the states of a day-hours override field.
type OverrideKind int

const (
	// OverrideAbsent means the field is empty.
	OverrideAbsent OverrideKind = iota

	// OverrideDeriveFromTime means the stored sentinel asks for the day
	// value to be computed from Beginn/Ende.
	OverrideDeriveFromTime

	// OverrideExplicit means the field holds a usable number.
	OverrideExplicit

	// OverrideMarker means the field holds non-numeric text (e.g. "x",
	// "day worked, no hours") carried verbatim into the report cell.
	OverrideMarker
)

// HoursOverride is the parsed form of DailyLine.DayHoursOverride.
// Hours is only meaningful when Kind is OverrideExplicit; Marker only when
// Kind is OverrideMarker.
type HoursOverride struct {
	Kind   OverrideKind
	Hours  float64
	Marker string
}
