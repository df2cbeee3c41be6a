// Package ir defines the intermediate representation shared by the routegen
// extraction and synthesis stages. Descriptors are produced once per endpoint
// file and are never mutated after creation.
package ir

import "fmt"

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// String formats the location as file:line:column, omitting zero parts.
func (s Source) String() string {
	switch {
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
}

// DiagnosticKind is a machine-readable diagnostic category.
type DiagnosticKind string

const (
	// DiagParseError marks a file whose source could not be parsed.
	DiagParseError DiagnosticKind = "parse_error"

	// DiagReadError marks a file that could not be read.
	DiagReadError DiagnosticKind = "read_error"

	// DiagDuplicateRoute marks a file whose (route, method) was already
	// claimed by an earlier file.
	DiagDuplicateRoute DiagnosticKind = "duplicate_route"
)

// Diagnostic is a per-file record surfaced to the caller for reporting.
type Diagnostic struct {
	// Path is the slash-separated file path relative to the scan root.
	Path string `json:"path"`

	// Line and Column locate the problem within the file, 1-based. Zero
	// when the failure has no position.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`

	// Kind categorizes the diagnostic.
	Kind DiagnosticKind `json:"kind"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Source returns the location the diagnostic refers to.
func (d Diagnostic) Source() Source {
	return Source{File: d.Path, Line: d.Line, Column: d.Column}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Source(), d.Kind, d.Message)
}
