package resolver

import (
	"strings"

	"bennypowers.dev/dtsc/internal/stylesheet"
)

// Evaluate resolves a value expression: `$name` references, `#{}`
// interpolation and colour functions. Other text is kept, with runs of
// whitespace collapsed to one space.
func Evaluate(expr string, scope *Scope, loc stylesheet.Location) (string, error) {
	e := &evaluator{scope: scope, loc: loc, src: expr}
	return e.eval(expr, 0)
}

// Interpolate replaces only `#{}` sections, for selectors and property names
func Interpolate(text string, scope *Scope, loc stylesheet.Location) (string, error) {
	e := &evaluator{scope: scope, loc: loc, src: text}
	return e.interpolate(text, 0)
}

// evaluator walks an expression recursively. Each step is handed a slice
// of src and the slice's byte offset in src, so errors can point at the
// text that caused them.
type evaluator struct {
	scope *Scope
	// loc is where src starts
	loc stylesheet.Location
	src string
}

// at returns the location of byte off of src
func (e *evaluator) at(off int) stylesheet.Location {
	if e.loc.Line == 0 || off <= 0 || off > len(e.src) {
		return e.loc
	}
	loc := e.loc
	before := e.src[:off]
	if nl := strings.LastIndexByte(before, '\n'); nl >= 0 {
		loc.Line += strings.Count(before, "\n")
		loc.Column = off - nl
	} else {
		loc.Column += off
	}
	return loc
}

func (e *evaluator) eval(s string, base int) (string, error) {
	var b strings.Builder
	space := false
	emit := func(text string) {
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteString(text)
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isSpace(c):
			space = true
			i++

		case c == '"' || c == '\'':
			end := scanString(s, i)
			lit, err := e.interpolate(s[i:end], base+i)
			if err != nil {
				return "", err
			}
			emit(lit)
			i = end

		case c == '#' && i+1 < len(s) && s[i+1] == '{':
			end := matchClose(s, i+1)
			if end < 0 {
				return "", stylesheet.NewSyntaxError(e.at(base+i), "unterminated interpolation in %q", s)
			}
			v, err := e.eval(s[i+2:end], base+i+2)
			if err != nil {
				return "", err
			}
			emit(unquote(v))
			i = end + 1

		case c == '$':
			n := scanIdent(s, i+1)
			if n == 0 {
				emit("$")
				i++
				continue
			}
			v, err := e.scope.Resolve(s[i+1:i+1+n], e.at(base+i))
			if err != nil {
				return "", err
			}
			emit(v)
			i += 1 + n

		case c == '(':
			end := matchClose(s, i)
			if end < 0 {
				return "", stylesheet.NewSyntaxError(e.at(base+i), "unbalanced parentheses in %q", s)
			}
			v, err := e.eval(s[i+1:end], base+i+1)
			if err != nil {
				return "", err
			}
			emit("(" + v + ")")
			i = end + 1

		case isIdentStart(s, i):
			n := scanIdent(s, i)
			name := s[i : i+n]
			j := i + n
			if j < len(s) && s[j] == '(' {
				end := matchClose(s, j)
				if end < 0 {
					return "", stylesheet.NewSyntaxError(e.at(base+j), "unbalanced parentheses in %q", s)
				}
				v, err := e.call(name, s[j+1:end], base+i, base+j+1)
				if err != nil {
					return "", err
				}
				emit(v)
				i = end + 1
				continue
			}
			emit(name)
			i = j

		default:
			// punctuation and numbers attach to their neighbours except
			// where the source had whitespace
			emit(string(c))
			i++
		}
	}
	return b.String(), nil
}

// call evaluates name(inner). Colour functions compute a value; anything
// else is CSS and is re-emitted with its arguments evaluated. start and
// base are the offsets of name and inner in src.
func (e *evaluator) call(name, inner string, start, base int) (string, error) {
	lower := strings.ToLower(name)
	if lower == "url" {
		if strings.Contains(inner, "$") {
			v, err := e.eval(inner, base)
			if err != nil {
				return "", err
			}
			return name + "(" + v + ")", nil
		}
		v, err := e.interpolate(inner, base)
		if err != nil {
			return "", err
		}
		return name + "(" + v + ")", nil
	}

	if fn, ok := functions[lower]; ok {
		parts := splitTopLevel(inner, ',')
		args := make([]string, 0, len(parts))
		cursor := 0
		for _, p := range parts {
			// parts are trimmed slices of inner, in order
			off := cursor + strings.Index(inner[cursor:], p)
			cursor = off + len(p)
			v, err := e.eval(p, base+off)
			if err != nil {
				return "", err
			}
			args = append(args, v)
		}
		out, handled, err := fn(lower, args, e.at(start))
		if err != nil {
			return "", err
		}
		if handled {
			return out, nil
		}
		return name + "(" + strings.Join(args, ", ") + ")", nil
	}

	v, err := e.eval(inner, base)
	if err != nil {
		return "", err
	}
	return name + "(" + v + ")", nil
}

// interpolate substitutes `#{}` sections and copies everything else verbatim
func (e *evaluator) interpolate(s string, base int) (string, error) {
	if !strings.Contains(s, "#{") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '#' && i+1 < len(s) && s[i+1] == '{' {
			end := matchClose(s, i+1)
			if end < 0 {
				return "", stylesheet.NewSyntaxError(e.at(base+i), "unterminated interpolation in %q", s)
			}
			v, err := e.eval(s[i+2:end], base+i+2)
			if err != nil {
				return "", err
			}
			b.WriteString(unquote(v))
			i = end + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isIdentStart reports whether an identifier starts at s[i]. A leading '-'
// counts only when followed by a letter or another '-', so -1px stays a number.
func isIdentStart(s string, i int) bool {
	c := s[i]
	switch {
	case c == '_' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return true
	case c == '-' && i+1 < len(s):
		n := s[i+1]
		return n == '-' || n == '_' || n >= 0x80 || (n >= 'a' && n <= 'z') || (n >= 'A' && n <= 'Z')
	}
	return false
}

// scanIdent returns the length of the identifier starting at s[i]
func scanIdent(s string, i int) int {
	j := i
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	return j - i
}

// scanString returns the index just past the string literal opening at s[i]
func scanString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

// matchClose returns the index of the bracket closing the one at s[open],
// skipping strings and nested brackets, or -1
func matchClose(s string, open int) int {
	var stack []byte
	for i := open; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			i = scanString(s, i) - 1
		case '(':
			stack = append(stack, ')')
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep outside strings and brackets
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\'':
			i = scanString(s, i) - 1
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" || len(parts) > 0 {
		parts = append(parts, last)
	}
	return parts
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
