package importer

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound is returned when no file in the asset directory matches the naming convention.
var ErrSourceNotFound = errors.New("source file not found")

// Issue codes recorded in the report.
const (
	CodeMalformed  = "MALFORMED"
	CodeDuplicate  = "DUPLICATE"
	CodeFallback   = "FALLBACK"
	CodeUnresolved = "UNRESOLVED"
	CodeNoParent   = "NO_PARENT"
)

// RowError describes why a source row was rejected or altered.
type RowError struct {
	Line    int
	Section Section
	Code    string
	Field   string
	Value   string
	Message string
}

func (e *RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d [%s] %s %s=%q: %s", e.Line, e.Section, e.Code, e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("line %d [%s] %s: %s", e.Line, e.Section, e.Code, e.Message)
}

func malformed(line int, section Section, field, value, msg string) *RowError {
	return &RowError{Line: line, Section: section, Code: CodeMalformed, Field: field, Value: value, Message: msg}
}

// ResolveError is returned in strict mode when any reference had to be substituted or dropped.
type ResolveError struct {
	Count int
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%d unresolved references in strict mode (first: %v)", e.Count, firstLine(e.Err))
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

func firstLine(err error) string {
	if err == nil {
		return "none"
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0].Error()
		}
	}
	return err.Error()
}
