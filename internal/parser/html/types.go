package html

// StyleRegion is the raw text of one <style> element in an HTML document
type StyleRegion struct {
	Content string
	// StartByte and EndByte delimit Content within the document
	StartByte uint
	EndByte   uint
	// StartLine and StartCol are 0-based
	StartLine uint
	StartCol  uint
}
