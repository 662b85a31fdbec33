package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Record is one parsed source row and the line it started on.
type Record struct {
	Line   int
	Fields []string
}

// Field returns the trimmed i-th field, or "" when the row is too short.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

func (r Record) blank() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// LocateSource returns the first file in dir matching one of patterns.
// Patterns are tried in order and matches of one pattern are sorted by name.
func LocateSource(dir string, patterns []string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: asset directory %s: %v", ErrSourceNotFound, dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, dir)
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", fmt.Errorf("invalid source pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if fi, err := os.Stat(match); err == nil && fi.Mode().IsRegular() {
				return match, nil
			}
		}
	}

	return "", fmt.Errorf("%w: nothing in %s matches %s", ErrSourceNotFound, dir, strings.Join(patterns, ", "))
}

// maxLineSize bounds a single physical line of the source.
const maxLineSize = 1 << 20

// ReadRecords splits the source into one record per physical line, honouring
// quoted commas within the line. A line the csv parser rejects is returned as a
// malformed row error and skipped; the lines after it are read normally.
func ReadRecords(r io.Reader) ([]Record, []*RowError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	var rejected []*RowError
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if lineNo == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields, err := parseLine(text)
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				err = parseErr.Err
			}
			rejected = append(rejected, malformed(lineNo, SectionNone, "", text, err.Error()))
			continue
		}

		rec := Record{Line: lineNo, Fields: fields}
		if rec.blank() {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, rejected, fmt.Errorf("error reading line %d: %w", lineNo+1, err)
	}

	return records, rejected, nil
}

func parseLine(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.Read()
}
