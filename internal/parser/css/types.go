package css

// Position represents a 0-based position in a text document. Character is
// a byte offset within the line.
type Position struct {
	Line      uint32
	Character uint32
}

// Range represents a range in a text document
type Range struct {
	Start Position
	End   Position
}

// Problem is a place where the CSS grammar could not make sense of the input
type Problem struct {
	Message string
	Range   Range
}
