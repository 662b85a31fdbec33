package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/seedgen/importer"
	"github.com/nonsonwune/seedgen/sqlgen"
)

// printSummary renders per-section counts. script may be nil when no SQL was built.
func printSummary(w io.Writer, report *importer.Report, script *sqlgen.Script) {
	color.New(color.FgCyan).Fprintf(w, "\nSource: %s (run %s)\n", report.Source, report.RunID)
	fmt.Fprintf(w, "Records: %d  Headers: %d  Unsectioned: %d  Skipped: %d  After end: %d  Unreadable: %d\n",
		report.Records, report.Headers, report.Unsectioned, report.Skipped, report.AfterStop, report.Unreadable)

	header := []string{"Section", "Rows", "Accepted", "Malformed", "Duplicates", "Fallbacks", "Dropped"}
	if script != nil {
		header = append(header, "Emitted")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)

	var total importer.SectionStats
	for _, s := range report.Summary() {
		row := []string{
			s.Section,
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.Accepted),
			strconv.Itoa(s.Malformed),
			strconv.Itoa(s.Duplicates),
			strconv.Itoa(s.Fallbacks),
			strconv.Itoa(s.Dropped),
		}
		if script != nil {
			row = append(row, strconv.Itoa(script.Rows[strings.ToLower(s.Section)]))
		}
		table.Append(row)

		total.Rows += s.Rows
		total.Accepted += s.Accepted
		total.Malformed += s.Malformed
		total.Duplicates += s.Duplicates
		total.Fallbacks += s.Fallbacks
		total.Dropped += s.Dropped
	}

	footer := []string{
		"Total",
		strconv.Itoa(total.Rows),
		strconv.Itoa(total.Accepted),
		strconv.Itoa(total.Malformed),
		strconv.Itoa(total.Duplicates),
		strconv.Itoa(total.Fallbacks),
		strconv.Itoa(total.Dropped),
	}
	if script != nil {
		footer = append(footer, strconv.Itoa(len(script.Statements))+" stmts")
	}
	table.SetFooter(footer)
	table.Render()

	if total.Fallbacks > 0 || total.Dropped > 0 {
		color.New(color.FgYellow).Fprintf(w, "%d references were substituted and %d rows dropped; run inspect --rejects for details\n",
			total.Fallbacks, total.Dropped)
	}
}

// printIssues lists up to limit issues, most frequent codes first. limit 0 prints all.
func printIssues(w io.Writer, report *importer.Report, limit int) {
	if len(report.Issues) == 0 {
		color.New(color.FgGreen).Fprintln(w, "No issues found.")
		return
	}

	counts := report.IssuesByCode()
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if counts[codes[i]] != counts[codes[j]] {
			return counts[codes[i]] > counts[codes[j]]
		}
		return codes[i] < codes[j]
	})

	color.New(color.FgYellow).Fprintln(w, "\nIssues by code")
	byCode := tablewriter.NewWriter(w)
	byCode.SetHeader([]string{"Code", "Count"})
	for _, code := range codes {
		byCode.Append([]string{code, strconv.Itoa(counts[code])})
	}
	byCode.Render()

	issues := report.Issues
	if limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Section", "Code", "Field", "Value", "Message"})
	for _, issue := range issues {
		table.Append([]string{
			strconv.Itoa(issue.Line),
			issue.Section,
			issue.Code,
			issue.Field,
			issue.Value,
			issue.Message,
		})
	}
	table.Render()
	if len(issues) < len(report.Issues) {
		fmt.Fprintf(w, "... %d more\n", len(report.Issues)-len(issues))
	}
}
