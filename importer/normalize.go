package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Spreadsheet serials count days from this epoch. Dates before leapBugCutoff are
// one lower because spreadsheets treat 1900 as a leap year.
var (
	spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	leapBugCutoff    = time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC)
)

// Serials in this range are small integers that a spreadsheet reformatted as dates.
const (
	minDisguisedSerial = 1
	maxDisguisedSerial = 10000
)

// Field defaults applied when a numeric cell is blank or unparseable.
const (
	DefaultDuration   = 4
	DefaultUnit       = 0
	DefaultCapacity   = 0
	DefaultPreference = 0
	DefaultEncount    = 0
	DefaultLevel      = 100
	DefaultRole       = 2
	DefaultSemester   = 1
)

var (
	dmyPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

func parseSheetDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	var day, month, year int
	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else if m := isoPattern.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// SerialFromDate converts a DD/MM/YYYY (or YYYY-MM-DD) string to its spreadsheet day count.
func SerialFromDate(s string) (int, bool) {
	t, ok := parseSheetDate(s)
	if !ok || t.Before(spreadsheetEpoch) {
		return 0, false
	}
	days := int((t.Unix() - spreadsheetEpoch.Unix()) / 86400)
	if t.Before(leapBugCutoff) {
		days--
	}
	return days, true
}

// DateFromSerial is the inverse of SerialFromDate and renders DD/MM/YYYY.
func DateFromSerial(serial int) string {
	switch {
	case serial == 60:
		return "29/02/1900"
	case serial < 60:
		return spreadsheetEpoch.AddDate(0, 0, serial+1).Format("02/01/2006")
	default:
		return spreadsheetEpoch.AddDate(0, 0, serial).Format("02/01/2006")
	}
}

// DisguisedInt recovers an integer that a spreadsheet auto-formatted as a date.
// Values that are not date shaped, or whose serial is outside the sane range, are returned unchanged.
func DisguisedInt(s string) string {
	serial, ok := SerialFromDate(s)
	if !ok || serial < minDisguisedSerial || serial > maxDisguisedSerial {
		return s
	}
	return strconv.Itoa(serial)
}

// ParseInt parses an integer cell, decoding disguised dates and integral floats.
func ParseInt(s string) (int, bool) {
	s = DisguisedInt(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Int parses an integer cell, returning def when it is blank or unparseable.
func Int(s string, def int) int {
	if n, ok := ParseInt(s); ok {
		return n
	}
	return def
}

// Semester decodes a semester flag: 1, 2, their disguised dates, or common names.
func Semester(s string) int {
	if n, ok := ParseInt(s); ok && (n == 1 || n == 2) {
		return n
	}
	switch normalizeCell(s) {
	case "first", "1st", "firstsemester", "1stsemester", "harmattan":
		return 1
	case "second", "2nd", "secondsemester", "2ndsemester", "rain":
		return 2
	}
	return DefaultSemester
}

// Text trims a string cell. NULL markers become the empty string, which the emitter writes as NULL.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "NULL") || strings.EqualFold(s, `\N`) {
		return ""
	}
	return s
}

// CourseCode upper-cases a course code and removes any whitespace inside it.
func CourseCode(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, Text(s))
}

// PersonID normalizes a staff id or matric number.
func PersonID(s string) string {
	return strings.ToUpper(Text(s))
}

// validPersonID reports whether a staff id or matric number has the institutional shape.
func validPersonID(id string) bool {
	return strings.Contains(id, "/")
}
