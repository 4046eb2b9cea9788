package resolver

import "strings"

// FlattenSelector qualifies a nested child selector with its parent. A child
// containing '&' has each '&' replaced by the parent; any other child becomes
// a descendant of it. Selector lists on either side expand to their cross
// product, parents varying slowest.
//
//	FlattenSelector("form button", "&:hover")  == "form button:hover"
//	FlattenSelector(".a, .b", "span")          == ".a span, .b span"
//	FlattenSelector(".btn", ".theme-dark &")   == ".theme-dark .btn"
func FlattenSelector(parent, child string) string {
	children := SplitSelectorList(child)
	if strings.TrimSpace(parent) == "" {
		return strings.Join(children, ", ")
	}

	parents := SplitSelectorList(parent)
	out := make([]string, 0, len(parents)*len(children))
	for _, p := range parents {
		for _, c := range children {
			if HasParentRef(c) {
				out = append(out, replaceParentRef(c, p))
			} else {
				out = append(out, p+" "+c)
			}
		}
	}
	return strings.Join(out, ", ")
}

// SplitSelectorList splits a selector list on top-level commas and
// normalises whitespace in each part. Empty parts are dropped.
func SplitSelectorList(sel string) []string {
	var out []string
	for _, part := range splitTopLevel(sel, ',') {
		if part = normalizeSelector(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HasParentRef reports whether sel uses '&' outside a quoted string
func HasParentRef(sel string) bool {
	for i := 0; i < len(sel); i++ {
		switch sel[i] {
		case '"', '\'':
			i = scanString(sel, i) - 1
		case '&':
			return true
		}
	}
	return false
}

func replaceParentRef(sel, parent string) string {
	var b strings.Builder
	for i := 0; i < len(sel); i++ {
		switch c := sel[i]; c {
		case '"', '\'':
			end := scanString(sel, i)
			b.WriteString(sel[i:end])
			i = end - 1
		case '&':
			b.WriteString(parent)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// normalizeSelector collapses whitespace runs outside strings to one space
func normalizeSelector(sel string) string {
	var b strings.Builder
	space := false
	for i := 0; i < len(sel); i++ {
		c := sel[i]
		switch {
		case isSpace(c):
			space = true
		case c == '"' || c == '\'':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			end := scanString(sel, i)
			b.WriteString(sel[i:end])
			i = end - 1
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteByte(c)
		}
	}
	return b.String()
}
