package lint

import (
	"errors"

	"bennypowers.dev/dtsc/internal/stylesheet"
)

// Code is a stable identifier for a kind of compile failure, shared by
// editor diagnostics and reports
type Code string

const (
	CodeUndefinedVariable     Code = "undefined-variable"
	CodeInvalidColorOperation Code = "invalid-color-operation"
	CodeSyntax                Code = "syntax-error"
	CodeCircularReference     Code = "circular-reference"
	CodeErrorDirective        Code = "error-directive"
	CodeInvalidOutput         Code = "invalid-output"
	// CodeIO covers everything else, such as unreadable files
	CodeIO Code = "io-error"
)

var codes = []struct {
	sentinel error
	code     Code
}{
	{stylesheet.ErrUndefinedVariable, CodeUndefinedVariable},
	{stylesheet.ErrInvalidColorOperation, CodeInvalidColorOperation},
	{stylesheet.ErrSyntax, CodeSyntax},
	{stylesheet.ErrCircularReference, CodeCircularReference},
	{stylesheet.ErrUser, CodeErrorDirective},
	{ErrInvalidOutput, CodeInvalidOutput},
}

// Codes lists every code in a fixed order
func Codes() []Code {
	all := make([]Code, 0, len(codes)+1)
	for _, c := range codes {
		all = append(all, c.code)
	}
	return append(all, CodeIO)
}

// CodeOf classifies err by the sentinel it wraps
func CodeOf(err error) Code {
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return CodeIO
}
