// Package diagnostic turns compile failures of open documents into LSP
// diagnostics.
package diagnostic

import (
	"errors"
	"fmt"
	"path/filepath"

	"bennypowers.dev/dtsc/internal/documents"
	"bennypowers.dev/dtsc/internal/lint"
	"bennypowers.dev/dtsc/internal/position"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"bennypowers.dev/dtsc/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Source names dtsc as the origin of every diagnostic
const Source = "dtsc"

// GetDiagnostics compiles the document and reports what went wrong. The
// result is empty, not nil, for a clean document so publishing it clears
// earlier diagnostics.
func GetDiagnostics(ctx types.ServerContext, uri string) ([]protocol.Diagnostic, error) {
	diagnostics := []protocol.Diagnostic{}

	doc := ctx.Document(uri)
	if doc == nil || !doc.IsStylesheet() {
		return diagnostics, nil
	}
	src, err := doc.Source()
	if err != nil {
		return nil, err
	}

	_, problems, err := ctx.Compile(doc.Path(), src)
	if err != nil {
		diagnostics = append(diagnostics, fromError(doc, err))
	}
	for _, p := range problems {
		if p.Severity == lint.SeverityError && err != nil {
			// already reported through the error
			continue
		}
		diagnostics = append(diagnostics, fromLint(p))
	}
	return diagnostics, nil
}

func fromError(doc *documents.Document, err error) protocol.Diagnostic {
	d := protocol.Diagnostic{
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   ptr(Source),
		Message:  err.Error(),
	}
	if code := lint.CodeOf(err); code != lint.CodeIO {
		d.Code = &protocol.IntegerOrString{Value: string(code)}
	}

	var located stylesheet.Located
	if !errors.As(err, &located) {
		return d
	}
	loc := located.Location()
	if loc.Line == 0 || !sameFile(loc.File, doc.Path()) {
		// the failure is in an imported file; point at the top
		return d
	}
	d.Message = unlocated(err, loc)
	d.Range = span(doc.Content(), loc)
	return d
}

// fromLint reports a problem in the compiled output. Its position is in
// the output, not the document, so it is shown at the top.
func fromLint(p lint.Diagnostic) protocol.Diagnostic {
	sev := protocol.DiagnosticSeverityWarning
	if p.Severity == lint.SeverityError {
		sev = protocol.DiagnosticSeverityError
	}
	return protocol.Diagnostic{
		Severity: severity(sev),
		Source:   ptr(Source),
		Code:     &protocol.IntegerOrString{Value: string(lint.CodeInvalidOutput)},
		Message:  fmt.Sprintf("compiled output %d:%d: %s", p.Line, p.Column, p.Message),
	}
}

// span covers the word starting at loc: a variable name, function name or
// selector fragment
func span(content string, loc stylesheet.Location) protocol.Range {
	line, char := position.ToEditor(content, loc.Line, loc.Column)
	text := position.Line(content, int(line))
	start := loc.Column - 1
	if start < 0 || start > len(text) {
		start = len(text)
	}
	end := start
	for end < len(text) && isWordByte(text[end]) {
		end++
	}
	if end == start && end < len(text) {
		end++
	}
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: char},
		End:   protocol.Position{Line: line, Character: uint32(position.ByteOffsetToUTF16(text, end))},
	}
}

func isWordByte(c byte) bool {
	return c == '$' || c == '-' || c == '_' || c == '@' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// unlocated drops the "file:line:col: " prefix the editor already shows
func unlocated(err error, loc stylesheet.Location) string {
	msg := err.Error()
	prefix := loc.String() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func sameFile(a, b string) bool {
	if a == "" {
		return true
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptr(s string) *string {
	return &s
}
