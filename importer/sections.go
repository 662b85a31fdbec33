package importer

import (
	"strings"
	"unicode"
)

// Section identifies the logical table a source row belongs to.
type Section int

const (
	SectionNone Section = iota
	SectionCentre
	SectionDepartment
	SectionProgram
	SectionCourse
	SectionVenue
	SectionStaff
	SectionStudent
	SectionRegistration
	SectionUsers
	SectionSkip
	SectionStop
)

var sectionNames = map[Section]string{
	SectionNone:         "NONE",
	SectionCentre:       "CENTRE",
	SectionDepartment:   "DEPARTMENT",
	SectionProgram:      "PROGRAM",
	SectionCourse:       "COURSE",
	SectionVenue:        "VENUE",
	SectionStaff:        "STAFF",
	SectionStudent:      "STUDENT",
	SectionRegistration: "REGISTRATION",
	SectionUsers:        "USERS",
	SectionSkip:         "SKIP",
	SectionStop:         "STOP",
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// DataSections lists the sections that carry table rows, in pass order.
var DataSections = []Section{
	SectionCentre,
	SectionDepartment,
	SectionProgram,
	SectionCourse,
	SectionVenue,
	SectionStaff,
	SectionStudent,
	SectionRegistration,
	SectionUsers,
}

type signature struct {
	section Section
	cells   []string
}

// Header signatures, matched as a prefix of the row's normalized cells.
// The first match wins, so longer signatures sharing a prefix come first.
var signatures = []signature{
	{SectionVenue, []string{"id", "code", "name", "capacity"}},
	{SectionCentre, []string{"id", "code", "name"}},
	{SectionDepartment, []string{"id", "collegeid", "code", "name"}},
	{SectionDepartment, []string{"id", "centreid", "code", "name"}},
	{SectionProgram, []string{"id", "deptid", "code", "name"}},
	{SectionProgram, []string{"id", "departmentid", "code", "name"}},
	{SectionCourse, []string{"id", "code", "title"}},
	{SectionCourse, []string{"id", "coursecode", "title"}},
	{SectionUsers, []string{"staffid", "roleid", "password", "email"}},
	{SectionStaff, []string{"staffid", "title", "surname"}},
	{SectionStudent, []string{"matricno", "surname"}},
	{SectionRegistration, []string{"centreid", "matricno", "coursecode"}},
	{SectionSkip, []string{"parameter", "value"}},
}

// Title rows carry a single cell naming the section. Checked by substring, in order.
var titleKeywords = []struct {
	keyword string
	section Section
}{
	{"optimization", SectionSkip},
	{"optimisation", SectionSkip},
	{"settings", SectionSkip},
	{"timetable", SectionSkip},
	{"slashed", SectionSkip},
	{"registration", SectionRegistration},
	{"department", SectionDepartment},
	{"program", SectionProgram},
	{"course", SectionCourse},
	{"venue", SectionVenue},
	{"student", SectionStudent},
	{"users", SectionUsers},
	{"staff", SectionStaff},
	{"centre", SectionCentre},
	{"center", SectionCentre},
	{"college", SectionCentre},
}

var stopMarkers = map[string]bool{
	"end":       true,
	"endofdata": true,
	"eof":       true,
}

// normalizeCell lower-cases a header cell and strips everything but letters and digits.
func normalizeCell(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchHeader reports which section a header row opens, if any.
func matchHeader(rec Record) (Section, bool) {
	cells := make([]string, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		cells = append(cells, normalizeCell(f))
	}

	for _, sig := range signatures {
		if len(cells) < len(sig.cells) {
			continue
		}
		matched := true
		for i, want := range sig.cells {
			if cells[i] != want {
				matched = false
				break
			}
		}
		if matched {
			return sig.section, true
		}
	}

	if title, ok := singleCell(rec); ok {
		norm := normalizeCell(title)
		if stopMarkers[norm] {
			return SectionStop, true
		}
		// Ids and matric numbers are data even when they contain a keyword.
		if hasDigit(norm) || strings.Contains(title, "/") {
			return SectionNone, false
		}
		for _, tk := range titleKeywords {
			if strings.Contains(norm, tk.keyword) {
				return tk.section, true
			}
		}
	}

	return SectionNone, false
}

func singleCell(rec Record) (string, bool) {
	if len(rec.Fields) == 0 || strings.TrimSpace(rec.Fields[0]) == "" {
		return "", false
	}
	for _, f := range rec.Fields[1:] {
		if strings.TrimSpace(f) != "" {
			return "", false
		}
	}
	return rec.Fields[0], true
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// Classifier attributes rows to the section opened by the most recent header.
type Classifier struct {
	current Section
	stopped bool

	Unsectioned int
	Skipped     int
	AfterStop   int
	Headers     int
}

// Classify returns the section of a data row. ok is false for header rows and
// for rows that are discarded (before any header, inside SKIP, after STOP).
func (c *Classifier) Classify(rec Record) (section Section, ok bool) {
	if c.stopped {
		c.AfterStop++
		return SectionStop, false
	}

	if next, isHeader := matchHeader(rec); isHeader {
		c.Headers++
		c.current = next
		if next == SectionStop {
			c.stopped = true
		}
		return next, false
	}

	switch c.current {
	case SectionNone:
		c.Unsectioned++
		return SectionNone, false
	case SectionSkip:
		c.Skipped++
		return SectionSkip, false
	}
	return c.current, true
}

// Current returns the active section tag.
func (c *Classifier) Current() Section {
	return c.current
}

// Partition classifies every record and groups data rows by section, keeping file order.
func (c *Classifier) Partition(records []Record) map[Section][]Record {
	out := make(map[Section][]Record)
	for _, rec := range records {
		if section, ok := c.Classify(rec); ok {
			out[section] = append(out[section], rec)
		}
	}
	return out
}
