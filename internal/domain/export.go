package domain

import "time"

// ExportFormat selects which artifacts an export request produces.
type ExportFormat string

const (
	FormatXlsx ExportFormat = "xlsx"
	FormatPdf  ExportFormat = "pdf"
	FormatBoth ExportFormat = "both"
)

// Valid reports whether f is one of the three known formats.
func (f ExportFormat) Valid() bool {
	return f == FormatXlsx || f == FormatPdf || f == FormatBoth
}

// WantsPdf reports whether the format asks for a PDF artifact.
func (f ExportFormat) WantsPdf() bool {
	return f == FormatPdf || f == FormatBoth
}

// WeekSegment is a contiguous run of dates within one ISO week that fall in
// the same (year, month). A week yields one segment, or exactly two when it
// crosses a month boundary. Segments partition the week's 7 dates in order.
type WeekSegment struct {
	Key         string // "YYYY-MM"
	Year        int
	Month       time.Month
	Dates       []time.Time
	Start       time.Time
	End         time.Time
	IsSingleDay bool
}

// ExportRow is a flattened, filtered DailyLine bound to its source date.
// Rows that carry no meaningful data never reach this stage.
// JSON keys match the payload contract of the export worker and script.
type ExportRow struct {
	Date             string `json:"date"` // "2006-01-02"
	SiteNameOrt      string `json:"siteNameOrt"`
	Beginn           string `json:"beginn"`
	Ende             string `json:"ende"`
	PauseOverride    string `json:"pauseOverride"`
	DayHoursOverride string `json:"dayHoursOverride"`
	LohnType         string `json:"lohnType"`
	Ausloese         string `json:"ausloese"`
	Zulage           string `json:"zulage"`
	Projektnummer    string `json:"projektnummer"`
	KabelschachtInfo string `json:"kabelschachtInfo"`
	SmNr             string `json:"smNr"`
	Bauleiter        string `json:"bauleiter"`
	Arbeitskollege   string `json:"arbeitskollege"`
}

// ProfileHeader is the slice of Profile rendered into the report header.
type ProfileHeader struct {
	Name                   string `json:"name"`
	Vorname                string `json:"vorname"`
	ArbeitsstaetteProjekte string `json:"arbeitsstaetteProjekte"`
	ArtDerArbeit           string `json:"artDerArbeit"`
}

// SegmentPayload carries everything one backend call needs to render one
// segment. It is fully self-describing: no backend performs any lookup
// beyond this struct.
type SegmentPayload struct {
	Kw             int            `json:"kw"`
	Year           int            `json:"year"`
	Month          time.Month     `json:"month"`
	ReportStart    string         `json:"reportStart"`   // segment start, "2006-01-02"
	ReportEnd      string         `json:"reportEnd"`     // segment end, "2006-01-02"
	ReportStartDe  string         `json:"reportStartDe"` // segment start, "02.01.2006"
	ReportEndDe    string         `json:"reportEndDe"`   // segment end, "02.01.2006"
	AllWeekDates   []string       `json:"allWeekDates"`  // full ISO week, 7 dates
	SegmentDates   []string       `json:"segmentDates"`
	Profile        ProfileHeader  `json:"profile"`
	Rows           []ExportRow    `json:"rows"`
	WeekdayColumns map[string]int `json:"weekdayColumns"` // date -> 0 (Mon) .. 6 (Sun)
	Kennzeichen    string         `json:"kennzeichen"`
	Kennzeichen2   string         `json:"kennzeichen2"`
	KmStand        string         `json:"kmStand"`
	KmGefahren     string         `json:"kmGefahren"`
}

// PreparedSegment is one WeekSegment made render-ready: identity fields the
// orchestrator needs to match results back, plus the payload a backend
// consumes. BaseName is unique within a request by construction (segments of
// one week never share a display (year, week, month) triple).
type PreparedSegment struct {
	BaseName              string         `json:"baseName"`
	SegmentKey            string         `json:"segmentKey"`
	Month                 time.Month     `json:"month"`
	Dates                 []string       `json:"dates"`
	ReportYear            int            `json:"reportYear"`
	ReportKw              int            `json:"reportKw"`
	IsCarryOverToNextYear bool           `json:"isCarryOverToNextYear"`
	Payload               SegmentPayload `json:"payload"`
}

// FinalReport is one rendered artifact as returned to the client. Exactly one
// of XlsxURL / XlsxBase64 is set; PDF fields are optional and best-effort.
type FinalReport struct {
	BaseName              string     `json:"baseName"`
	SegmentKey            string     `json:"segmentKey"`
	Month                 time.Month `json:"month"`
	Dates                 []string   `json:"dates"`
	ReportYear            int        `json:"reportYear"`
	ReportKw              int        `json:"reportKw"`
	IsCarryOverToNextYear bool       `json:"isCarryOverToNextYear"`
	XlsxURL               string     `json:"xlsxUrl,omitempty"`
	XlsxBase64            string     `json:"xlsxBase64,omitempty"`
	PdfURL                string     `json:"pdfUrl,omitempty"`
	PdfBase64             string     `json:"pdfBase64,omitempty"`
	Warnings              []string   `json:"warnings"`
	RowsWritten           int        `json:"rowsWritten"`
	RowsTruncated         int        `json:"rowsTruncated"`
}

// WeekExport is the full result of one export request.
type WeekExport struct {
	WeekDates    []string      `json:"weekDates"`
	IsMonthSplit bool          `json:"isMonthSplit"`
	Reports      []FinalReport `json:"reports"`
}
