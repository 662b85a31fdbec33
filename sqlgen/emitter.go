package sqlgen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// Options configure script generation.
type Options struct {
	Dialect   Dialect
	BatchSize int
	// Overrides for the singleton settings tables, keyed by column name.
	General      map[string]string
	Optimization map[string]string
}

// Meta identifies the run in the script header.
type Meta struct {
	RunID  string
	Source string
	Time   time.Time
}

// Script is a generated seed script. Statements carry no trailing semicolon.
type Script struct {
	Header     []string
	Statements []string
	// Rows and Duplicates are counted per table after the uniqueness pass.
	Rows       map[string]int
	Duplicates map[string]int
}

// Generator turns accepted rows into an ordered seed script.
type Generator struct {
	opts Options
	log  zerolog.Logger
}

// New creates a generator. A zero dialect selects mysql.
func New(opts Options, lgr zerolog.Logger) *Generator {
	if opts.Dialect.Name == "" {
		opts.Dialect = MySQL
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Generator{opts: opts, log: lgr}
}

// Build renders rows, keyed by table name, into a script. Tuples must follow the
// column order of Tables.
func (g *Generator) Build(rows map[string][][]any, meta Meta) (*Script, error) {
	d := g.opts.Dialect

	for name := range rows {
		if !knownTable(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
		}
	}

	ordered, err := DependencyOrder(Tables)
	if err != nil {
		return nil, err
	}

	general, err := GeneralSettings.Row(g.opts.General)
	if err != nil {
		return nil, err
	}
	optimization, err := OptimizationSettings.Row(g.opts.Optimization)
	if err != nil {
		return nil, err
	}

	if meta.Time.IsZero() {
		meta.Time = time.Now()
	}
	script := &Script{
		Header: []string{
			"Seed data generated by seedgen",
			"Run: " + meta.RunID,
			"Source: " + meta.Source,
			"Generated: " + meta.Time.UTC().Format(time.RFC3339),
			"Dialect: " + d.Name,
		},
		Rows:       make(map[string]int),
		Duplicates: make(map[string]int),
	}

	script.add(d.DisableFK)

	for i := len(ordered) - 1; i >= 0; i-- {
		script.add("DELETE FROM " + d.Ident(ordered[i].Name))
	}
	for _, s := range []Singleton{GeneralSettings, OptimizationSettings} {
		script.add("DELETE FROM " + d.Ident(s.Table.Name))
	}

	for _, t := range ordered {
		unique, dups := dedupe(t, rows[t.Name])
		script.Rows[t.Name] = len(unique)
		script.Duplicates[t.Name] = dups
		if dups > 0 {
			g.log.Warn().Str("table", t.Name).Int("duplicates", dups).Msg("duplicate keys removed before insert")
		}
		for start := 0; start < len(unique); start += g.opts.BatchSize {
			end := min(start+g.opts.BatchSize, len(unique))
			script.add(insert(d, t, unique[start:end]))
		}
	}

	script.add(insert(d, GeneralSettings.Table, [][]any{general}))
	script.add(insert(d, OptimizationSettings.Table, [][]any{optimization}))
	script.Rows[GeneralSettings.Table.Name] = 1
	script.Rows[OptimizationSettings.Table.Name] = 1

	script.add(d.EnableFK)

	g.log.Debug().Int("statements", len(script.Statements)).Str("dialect", d.Name).Msg("script built")
	return script, nil
}

func (s *Script) add(stmt string) {
	s.Statements = append(s.Statements, stmt)
}

// dedupe keeps the first row of every key and returns how many were removed.
func dedupe(t Table, rows [][]any) ([][]any, int) {
	idx := t.keyIndexes()
	seen := make(map[string]bool, len(rows))
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(idx))
		for i, k := range idx {
			if k < len(row) {
				parts[i] = fmt.Sprint(row[k])
			}
		}
		key := strings.Join(parts, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out, len(rows) - len(out)
}

func insert(d Dialect, t Table, rows [][]any) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.Ident(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES", d.Ident(t.Name), strings.Join(cols, ", "))
	for i, row := range rows {
		if i > 0 {
			b.WriteByte(',')
		}
		vals := make([]string, len(t.Columns))
		for j := range t.Columns {
			var v any
			if j < len(row) {
				v = row[j]
			}
			vals[j] = d.Literal(v)
		}
		b.WriteString("\n(" + strings.Join(vals, ", ") + ")")
	}
	return b.String()
}

// WriteTo writes the header as comments followed by every statement.
func (s *Script) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	write := func(str string) error {
		m, err := bw.WriteString(str)
		n += int64(m)
		return err
	}

	for _, line := range s.Header {
		if err := write("-- " + line + "\n"); err != nil {
			return n, err
		}
	}
	if err := write("\n"); err != nil {
		return n, err
	}
	for _, stmt := range s.Statements {
		if err := write(stmt + ";\n"); err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// WriteFile writes the script to a temporary file next to path and renames it into place.
func (s *Script) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := s.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("error setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error moving script into place: %w", err)
	}
	return nil
}

// ScriptTables lists the tables touched by the script, singletons included.
func ScriptTables() []string {
	names := TableNames(Tables)
	return append(names, GeneralSettings.Table.Name, OptimizationSettings.Table.Name)
}

func knownTable(name string) bool {
	for _, t := range Tables {
		if t.Name == name {
			return true
		}
	}
	return false
}
