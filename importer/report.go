package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
)

// SectionStats counts what happened to the rows of one section.
type SectionStats struct {
	Rows       int `json:"rows"`
	Accepted   int `json:"accepted"`
	Malformed  int `json:"malformed"`
	Duplicates int `json:"duplicates"`
	Fallbacks  int `json:"fallbacks"`
	Dropped    int `json:"dropped"`
}

// Issue is one row-level finding, written to the rejects report.
type Issue struct {
	Line    int    `csv:"line" json:"line"`
	Section string `csv:"section" json:"section"`
	Code    string `csv:"code" json:"code"`
	Field   string `csv:"field" json:"field,omitempty"`
	Value   string `csv:"value" json:"value,omitempty"`
	Message string `csv:"message" json:"message"`
	Row     string `csv:"row" json:"row,omitempty"`
}

// Report summarises one conversion run.
type Report struct {
	RunID       string                    `json:"run_id"`
	Source      string                    `json:"source"`
	Records     int                       `json:"records"`
	Headers     int                       `json:"headers"`
	Unsectioned int                       `json:"unsectioned"`
	Skipped     int                       `json:"skipped"`
	AfterStop   int                       `json:"after_stop"`
	Unreadable  int                       `json:"unreadable"`
	Sections    map[Section]*SectionStats `json:"-"`
	Issues      []Issue                   `json:"issues"`
}

// NewReport creates an empty report with a stats entry per data section.
func NewReport(runID, source string) *Report {
	r := &Report{
		RunID:    runID,
		Source:   source,
		Sections: make(map[Section]*SectionStats, len(DataSections)),
	}
	for _, s := range DataSections {
		r.Sections[s] = &SectionStats{}
	}
	return r
}

// Stats returns the stats entry of a section.
func (r *Report) Stats(s Section) *SectionStats {
	st, ok := r.Sections[s]
	if !ok {
		st = &SectionStats{}
		r.Sections[s] = st
	}
	return st
}

func (r *Report) record(e *RowError, rec *Record) {
	issue := Issue{
		Line:    e.Line,
		Section: e.Section.String(),
		Code:    e.Code,
		Field:   e.Field,
		Value:   e.Value,
		Message: e.Message,
	}
	if rec != nil {
		issue.Row = strings.Join(rec.Fields, ",")
	}
	r.Issues = append(r.Issues, issue)

	st := r.Stats(e.Section)
	switch e.Code {
	case CodeMalformed:
		st.Malformed++
	case CodeDuplicate:
		st.Duplicates++
	case CodeFallback:
		st.Fallbacks++
	case CodeUnresolved, CodeNoParent:
		st.Dropped++
	}
}

// SectionSummary is one line of the per-section summary, in pass order.
type SectionSummary struct {
	Section string `json:"section"`
	SectionStats
}

// Summary returns the per-section stats in pass order.
func (r *Report) Summary() []SectionSummary {
	out := make([]SectionSummary, 0, len(DataSections))
	for _, s := range DataSections {
		out = append(out, SectionSummary{Section: s.String(), SectionStats: *r.Stats(s)})
	}
	return out
}

// IssuesByCode counts issues per code.
func (r *Report) IssuesByCode() map[string]int {
	counts := make(map[string]int)
	for _, issue := range r.Issues {
		counts[issue.Code]++
	}
	return counts
}

// WriteIssues writes every issue as CSV with a header row.
func (r *Report) WriteIssues(w io.Writer) error {
	if len(r.Issues) == 0 {
		_, err := io.WriteString(w, "line,section,code,field,value,message,row\n")
		return err
	}
	b, err := csvutil.Marshal(r.Issues)
	if err != nil {
		return fmt.Errorf("error encoding issues: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// SaveIssues writes the issues CSV to path, creating its directory.
func (r *Report) SaveIssues(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating rejects directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating rejects file: %w", err)
	}
	defer file.Close()

	if err := r.WriteIssues(file); err != nil {
		return err
	}
	return file.Close()
}
