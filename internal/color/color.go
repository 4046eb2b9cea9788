// Package color parses CSS colour literals, derives new colours from them in
// HSL space, and formats results back to CSS.
package color

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Color is an sRGB colour with alpha, every channel in [0, 1]
type Color struct {
	R, G, B, A float64
}

// bareHex matches words csscolorparser would read as hex without a '#'.
// Those are identifiers in a stylesheet, never colours.
var bareHex = regexp.MustCompile(`^[0-9a-fA-F]{3,8}$`)

// Parse reads a CSS colour literal: hex, named, rgb(), rgba(), hsl(), hsla(), hwb()
func Parse(value string) (Color, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}
	if bareHex.MatchString(s) {
		return Color{}, fmt.Errorf("%q is not a color", value)
	}
	parsed, err := csscolorparser.Parse(s)
	if err != nil {
		return Color{}, fmt.Errorf("%q is not a color: %w", value, err)
	}
	return Color{R: parsed.R, G: parsed.G, B: parsed.B, A: parsed.A}, nil
}

// IsColor reports whether value parses as a colour literal
func IsColor(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// RGBA255 returns the channels as 0-255 integers, alpha untouched
func (c Color) RGBA255() (r, g, b int, a float64) {
	return channel(c.R), channel(c.G), channel(c.B), clamp01(c.A)
}

// String formats the colour the way a stylesheet compiler prints it:
// lowercase #rrggbb when opaque, rgba() otherwise
func (c Color) String() string {
	r, g, b, a := c.RGBA255()
	if a >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, FormatNumber(a))
}

// FormatNumber prints n with at most four decimals and no trailing zeros
func FormatNumber(n float64) string {
	n = math.Round(n*10000) / 10000
	if n == 0 {
		n = 0 // normalise -0
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func channel(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
