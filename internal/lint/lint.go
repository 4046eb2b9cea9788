// Package lint re-parses compiled CSS with the tree-sitter CSS grammar to
// catch output a browser would reject.
package lint

import (
	"errors"
	"fmt"
	"strings"

	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/parser/css"
)

// Severity of a lint problem
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// ErrInvalidOutput is the sentinel for strict-mode failures
var ErrInvalidOutput = errors.New("invalid CSS output")

// Diagnostic is a problem in a compiled file, 1-based
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// Error collects the diagnostics that failed a strict check
type Error struct {
	Diagnostics []Diagnostic
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return fmt.Sprintf("%s:\n%s", ErrInvalidOutput, strings.Join(lines, "\n"))
}

func (e *Error) Unwrap() error { return ErrInvalidOutput }

// Linter checks compiled output. In strict mode problems are errors.
type Linter struct {
	Strict bool
}

// Check parses output, named file for reporting. Warnings are logged and
// returned; in strict mode any problem also yields an *Error.
func (l Linter) Check(file, output string) ([]Diagnostic, error) {
	problems, err := css.Validate(output)
	if err != nil {
		return nil, fmt.Errorf("linting %s: %w", file, err)
	}
	if len(problems) == 0 {
		return nil, nil
	}

	severity := SeverityWarning
	if l.Strict {
		severity = SeverityError
	}
	diags := make([]Diagnostic, len(problems))
	for i, p := range problems {
		diags[i] = Diagnostic{
			File:     file,
			Line:     int(p.Range.Start.Line) + 1,
			Column:   int(p.Range.Start.Character) + 1,
			Message:  p.Message,
			Severity: severity,
		}
	}

	if l.Strict {
		return diags, &Error{Diagnostics: diags}
	}
	for _, d := range diags {
		log.Warn("%s", d)
	}
	return diags, nil
}
