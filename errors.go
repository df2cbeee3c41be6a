package routegen

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/parser"
)

// ParseError reports an endpoint file whose source could not be parsed.
// The file is skipped and the run continues.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Position returns the line and column of the first syntax error, or zeros
// when the failure was not positional.
func (e *ParseError) Position() (line, column int) {
	var se *parser.SyntaxError
	if errors.As(e.Err, &se) {
		return se.Line, se.Column
	}
	return 0, 0
}

// ReadError reports an endpoint file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }

// DuplicateRouteError aborts a run in which two or more files resolve to the
// same method and route. Nothing is written.
type DuplicateRouteError struct {
	Conflicts []*ir.DuplicateRouteError
}

func (e *DuplicateRouteError) Error() string {
	if len(e.Conflicts) == 1 {
		return e.Conflicts[0].Error()
	}
	msgs := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		msgs[i] = c.Error()
	}
	return fmt.Sprintf("%d duplicate routes: %s", len(e.Conflicts), strings.Join(msgs, "; "))
}

// OutputWriteError wraps a failure to write the generated module.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return "write " + e.Path + ": " + e.Err.Error()
}

func (e *OutputWriteError) Unwrap() error { return e.Err }
