package color

import (
	"fmt"
	"math"
	"strings"
)

// Structured is a DTCG 2025.10 colour object:
// {"colorSpace": "srgb", "components": [1, 0.42, 0.21], "alpha": 1, "hex": "#ff6b35"}
type Structured struct {
	ColorSpace string
	Components []any // float64 or the "none" keyword
	Alpha      *float64
	Hex        *string
}

// ParseStructured reads a decoded token value into a Structured colour
func ParseStructured(value map[string]any) (*Structured, error) {
	space, ok := value["colorSpace"].(string)
	if !ok || space == "" {
		return nil, fmt.Errorf("missing or invalid colorSpace in color object")
	}
	components, ok := value["components"].([]any)
	if !ok {
		return nil, fmt.Errorf("components must be an array")
	}

	s := &Structured{ColorSpace: space, Components: components}
	if a, ok := number(value["alpha"]); ok {
		s.Alpha = &a
	}
	if hex, ok := value["hex"].(string); ok && hex != "" {
		s.Hex = &hex
	}
	return s, nil
}

// CSS renders the colour as CSS text. sRGB colours become hex or rgba();
// functional spaces get their CSS function; anything else uses color().
func (s *Structured) CSS() string {
	if s.Hex != nil && *s.Hex != "" {
		return *s.Hex
	}
	if len(s.Components) < 3 {
		return ""
	}

	alpha := 1.0
	if s.Alpha != nil {
		alpha = *s.Alpha
	}

	c0, c1, c2 := component(s.Components[0]), component(s.Components[1]), component(s.Components[2])
	space := strings.ToLower(s.ColorSpace)

	switch space {
	case "srgb":
		return Color{R: c0, G: c1, B: c2, A: alpha}.String()
	case "hsl":
		return withAlpha(fmt.Sprintf("hsl(%s %s%% %s%%", FormatNumber(c0), FormatNumber(c1), FormatNumber(c2)), alpha)
	case "hwb":
		return withAlpha(fmt.Sprintf("hwb(%s %s%% %s%%", FormatNumber(c0), FormatNumber(c1), FormatNumber(c2)), alpha)
	case "lab", "lch", "oklab", "oklch":
		return withAlpha(fmt.Sprintf("%s(%s %s %s", space, FormatNumber(c0), FormatNumber(c1), FormatNumber(c2)), alpha)
	default:
		return withAlpha(fmt.Sprintf("color(%s %s %s %s", space,
			componentText(s.Components[0]), componentText(s.Components[1]), componentText(s.Components[2])), alpha)
	}
}

func withAlpha(open string, alpha float64) string {
	if alpha >= 1 {
		return open + ")"
	}
	return fmt.Sprintf("%s / %s)", open, FormatNumber(alpha))
}

func component(v any) float64 {
	if f, ok := number(v); ok {
		return f
	}
	return 0 // "none"
}

func componentText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return FormatNumber(component(v))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
