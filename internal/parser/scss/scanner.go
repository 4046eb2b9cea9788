package scss

import (
	"sort"
	"strings"

	"bennypowers.dev/dtsc/internal/stylesheet"
)

// scanner walks one source file. Offsets are byte offsets into src.
type scanner struct {
	file       string
	src        string
	pos        int
	lineStarts []int
}

func newScanner(file, src string) *scanner {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &scanner{file: file, src: src, lineStarts: starts}
}

// loc converts an offset to a 1-based line and column
func (s *scanner) loc(off int) stylesheet.Location {
	line := sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > off }) - 1
	return stylesheet.Location{File: s.file, Line: line + 1, Column: off - s.lineStarts[line] + 1}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

// skipSpace skips whitespace and comments between statements
func (s *scanner) skipSpace() error {
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case strings.HasPrefix(s.src[s.pos:], "//"):
			s.pos = lineEnd(s.src, s.pos)
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			end, err := s.commentEnd(s.pos)
			if err != nil {
				return err
			}
			s.pos = end
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) commentEnd(start int) (int, error) {
	i := strings.Index(s.src[start+2:], "*/")
	if i < 0 {
		return 0, stylesheet.NewSyntaxError(s.loc(start), "unterminated comment")
	}
	return start + 2 + i + 2, nil
}

func (s *scanner) stringEnd(start int) (int, error) {
	quote := s.src[start]
	for i := start + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '\n':
			return 0, stylesheet.NewSyntaxError(s.loc(start), "unterminated string")
		case quote:
			return i + 1, nil
		}
	}
	return 0, stylesheet.NewSyntaxError(s.loc(start), "unterminated string")
}

// interpolationEnd returns the offset just past the '}' closing the #{ at start
func (s *scanner) interpolationEnd(start int) (int, error) {
	depth := 0
	for i := start + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '"', '\'':
			end, err := s.stringEnd(i)
			if err != nil {
				return 0, err
			}
			i = end - 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, stylesheet.NewSyntaxError(s.loc(start), "unterminated interpolation")
}

// scanStatement finds the first '{', ';' or '}' at bracket depth zero from
// start. term is 0 at end of input.
func (s *scanner) scanStatement(start int) (end int, term byte, err error) {
	depth := 0
	for i := start; i < len(s.src); i++ {
		c := s.src[i]
		switch {
		case c == '"' || c == '\'':
			j, err := s.stringEnd(i)
			if err != nil {
				return 0, 0, err
			}
			i = j - 1
		case c == '/' && i+1 < len(s.src) && s.src[i+1] == '*':
			j, err := s.commentEnd(i)
			if err != nil {
				return 0, 0, err
			}
			i = j - 1
		case c == '/' && i+1 < len(s.src) && s.src[i+1] == '/' && depth == 0 && !afterColonSlash(s.src, i):
			i = lineEnd(s.src, i) - 1
		case c == '#' && i+1 < len(s.src) && s.src[i+1] == '{':
			j, err := s.interpolationEnd(i + 1)
			if err != nil {
				return 0, 0, err
			}
			i = j - 1
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (c == '{' || c == ';' || c == '}'):
			return i, c, nil
		}
	}
	return len(s.src), 0, nil
}

// clean returns src[start:end] without comments, trimmed
func (s *scanner) clean(start, end int) string {
	var b strings.Builder
	depth := 0
	for i := start; i < end; i++ {
		c := s.src[i]
		switch {
		case c == '"' || c == '\'':
			j, err := s.stringEnd(i)
			if err != nil || j > end {
				j = end
			}
			b.WriteString(s.src[i:j])
			i = j - 1
		case c == '/' && i+1 < end && s.src[i+1] == '*':
			j, err := s.commentEnd(i)
			if err != nil || j > end {
				j = end
			}
			b.WriteByte(' ')
			i = j - 1
		case c == '/' && i+1 < end && s.src[i+1] == '/' && depth == 0 && !afterColonSlash(s.src, i):
			b.WriteByte(' ')
			i = min(lineEnd(s.src, i), end) - 1
		default:
			switch c {
			case '(', '[':
				depth++
			case ')', ']':
				depth--
			}
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

// colon finds the first ':' at depth zero in src[start:end], or -1
func (s *scanner) colon(start, end int) int {
	depth := 0
	for i := start; i < end; i++ {
		switch c := s.src[i]; {
		case c == '"' || c == '\'':
			j, err := s.stringEnd(i)
			if err != nil {
				return -1
			}
			i = j - 1
		case c == '#' && i+1 < end && s.src[i+1] == '{':
			j, err := s.interpolationEnd(i + 1)
			if err != nil {
				return -1
			}
			i = j - 1
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ':' && depth == 0:
			return i
		}
	}
	return -1
}

// skipInline returns the first offset at or after i that is not whitespace
func (s *scanner) skipInline(i, end int) int {
	for i < end && isSpace(s.src[i]) {
		i++
	}
	return i
}

func lineEnd(src string, i int) int {
	if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(src)
}

// afterColonSlash keeps the "//" of a scheme such as https:// from being
// read as a comment
func afterColonSlash(src string, i int) bool {
	return i > 0 && src[i-1] == ':'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
