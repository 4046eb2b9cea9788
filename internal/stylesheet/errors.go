package stylesheet

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks
var (
	// ErrUndefinedVariable indicates a reference with no visible binding
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrInvalidColorOperation indicates a colour function got a non-colour operand
	ErrInvalidColorOperation = errors.New("invalid color operation")

	// ErrSyntax indicates source text that could not be parsed
	ErrSyntax = errors.New("syntax error")

	// ErrCircularReference indicates an import or token alias cycle
	ErrCircularReference = errors.New("circular reference detected")

	// ErrUser indicates an @error directive was reached
	ErrUser = errors.New("@error")
)

// Located is implemented by errors that point at a place in the source
type Located interface {
	error
	Location() Location
}

// UndefinedVariableError is returned when a variable is referenced before
// any binding for it exists
type UndefinedVariableError struct {
	Name string
	Loc  Location
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("%sundefined variable $%s", at(e.Loc), e.Name)
}

func (e *UndefinedVariableError) Unwrap() error { return ErrUndefinedVariable }

// Location implements Located
func (e *UndefinedVariableError) Location() Location { return e.Loc }

// NewUndefinedVariableError creates an UndefinedVariableError
func NewUndefinedVariableError(name string, loc Location) error {
	return &UndefinedVariableError{Name: name, Loc: loc}
}

// InvalidColorOperationError is returned when a colour function's operand
// is not a colour, or its amount is malformed
type InvalidColorOperationError struct {
	Function string
	Operand  string
	Reason   string
	Loc      Location
}

func (e *InvalidColorOperationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not a color"
	}
	return fmt.Sprintf("%s%s(): %q: %s", at(e.Loc), e.Function, e.Operand, reason)
}

func (e *InvalidColorOperationError) Unwrap() error { return ErrInvalidColorOperation }

// Location implements Located
func (e *InvalidColorOperationError) Location() Location { return e.Loc }

// NewInvalidColorOperationError creates an InvalidColorOperationError
func NewInvalidColorOperationError(function, operand, reason string, loc Location) error {
	return &InvalidColorOperationError{
		Function: function,
		Operand:  operand,
		Reason:   reason,
		Loc:      loc,
	}
}

// SyntaxError is returned by the parser and for structural misuse such as a
// top-level `&`
type SyntaxError struct {
	Message string
	Loc     Location
}

func (e *SyntaxError) Error() string {
	return at(e.Loc) + e.Message
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Location implements Located
func (e *SyntaxError) Location() Location { return e.Loc }

// NewSyntaxError creates a SyntaxError with a formatted message
func NewSyntaxError(loc Location, format string, args ...any) error {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Loc: loc}
}

// CircularReferenceError reports an import cycle or token alias cycle
type CircularReferenceError struct {
	FilePath       string
	ReferenceChain []string
}

func (e *CircularReferenceError) Error() string {
	chain := strings.Join(e.ReferenceChain, " → ")
	if e.FilePath == "" {
		return fmt.Sprintf("circular reference detected: %s", chain)
	}
	return fmt.Sprintf("circular reference detected in %s: %s", e.FilePath, chain)
}

func (e *CircularReferenceError) Unwrap() error { return ErrCircularReference }

// NewCircularReferenceError creates a CircularReferenceError
func NewCircularReferenceError(filePath string, chain []string) error {
	return &CircularReferenceError{
		FilePath:       filePath,
		ReferenceChain: chain,
	}
}

// UserError is raised by an @error directive
type UserError struct {
	Message string
	Loc     Location
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s@error: %s", at(e.Loc), e.Message)
}

func (e *UserError) Unwrap() error { return ErrUser }

// Location implements Located
func (e *UserError) Location() Location { return e.Loc }

// at renders a location as a message prefix, or nothing when unknown
func at(loc Location) string {
	if s := loc.String(); s != "" {
		return s + ": "
	}
	return ""
}
