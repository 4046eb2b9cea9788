// Package position converts between the 1-based byte locations reported by
// the compiler and the 0-based UTF-16 positions editors speak.
package position

import (
	"strings"
	"unicode/utf8"
)

// UTF16Len returns the number of UTF-16 code units in s
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// UTF16ToByteOffset returns the byte offset in line of a UTF-16 column.
// Columns past the end clamp to len(line).
func UTF16ToByteOffset(line string, col int) int {
	units := 0
	for i, r := range line {
		if units >= col {
			return i
		}
		units += runeUnits(r)
	}
	return len(line)
}

// ByteOffsetToUTF16 returns the UTF-16 column of a byte offset in line.
// Offsets inside a multi-byte character count the whole character.
func ByteOffsetToUTF16(line string, offset int) int {
	if offset > len(line) {
		offset = len(line)
	}
	units := 0
	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(line[i:])
		units += runeUnits(r)
		i += size
	}
	return units
}

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// Line returns line n (0-based) of content without its terminator, or ""
// when content is shorter
func Line(content string, n int) string {
	for i := 0; i < n; i++ {
		nl := strings.IndexByte(content, '\n')
		if nl < 0 {
			return ""
		}
		content = content[nl+1:]
	}
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[:nl]
	}
	return strings.TrimSuffix(content, "\r")
}

// ToEditor converts a 1-based line and byte column in content to a 0-based
// line and UTF-16 character
func ToEditor(content string, line, column int) (uint32, uint32) {
	if line < 1 {
		return 0, 0
	}
	n := line - 1
	col := 0
	if column > 1 {
		col = ByteOffsetToUTF16(Line(content, n), column-1)
	}
	return uint32(n), uint32(col)
}

// Offset returns the byte offset in content of a 0-based line and UTF-16
// character. Lines past the end return len(content).
func Offset(content string, line, char int) int {
	start := 0
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(content[start:], '\n')
		if nl < 0 {
			return len(content)
		}
		start += nl + 1
	}
	rest := content[start:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return start + UTF16ToByteOffset(rest, char)
}
