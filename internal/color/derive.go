package color

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Operation names a single-colour derivation
type Operation string

const (
	Lighten    Operation = "lighten"
	Darken     Operation = "darken"
	Saturate   Operation = "saturate"
	Desaturate Operation = "desaturate"
	AdjustHue  Operation = "adjust-hue"
	// SetAlpha replaces the alpha channel, as rgba($color, $alpha) does
	SetAlpha   Operation = "rgba"
	FadeIn     Operation = "fade-in"
	FadeOut    Operation = "fade-out"
	Grayscale  Operation = "grayscale"
	Complement Operation = "complement"
	Invert     Operation = "invert"
)

// Derive applies op to base. amount is a fraction in [0, 1] for lightness,
// saturation and alpha operations, and degrees for AdjustHue. Grayscale,
// Complement and Invert ignore it.
func Derive(op Operation, base Color, amount float64) (Color, error) {
	switch op {
	case Lighten:
		return adjustHSL(base, func(h, s, l float64) (float64, float64, float64) {
			return h, s, clamp01(l + amount)
		}), nil
	case Darken:
		return adjustHSL(base, func(h, s, l float64) (float64, float64, float64) {
			return h, s, clamp01(l - amount)
		}), nil
	case Saturate:
		return adjustHSL(base, func(h, s, l float64) (float64, float64, float64) {
			return h, clamp01(s + amount), l
		}), nil
	case Desaturate:
		return adjustHSL(base, func(h, s, l float64) (float64, float64, float64) {
			return h, clamp01(s - amount), l
		}), nil
	case Grayscale:
		return adjustHSL(base, func(h, _, l float64) (float64, float64, float64) {
			return h, 0, l
		}), nil
	case AdjustHue:
		return adjustHSL(base, func(h, s, l float64) (float64, float64, float64) {
			return rotate(h, amount), s, l
		}), nil
	case Complement:
		return adjustHSL(base, func(h, s, l float64) (float64, float64, float64) {
			return rotate(h, 180), s, l
		}), nil
	case SetAlpha:
		base.A = clamp01(amount)
		return base, nil
	case FadeIn:
		base.A = clamp01(base.A + amount)
		return base, nil
	case FadeOut:
		base.A = clamp01(base.A - amount)
		return base, nil
	case Invert:
		return Color{R: 1 - base.R, G: 1 - base.G, B: 1 - base.B, A: base.A}, nil
	default:
		return Color{}, fmt.Errorf("unknown color operation %q", op)
	}
}

// Mix blends a and b. weight in [0, 1] is the share of a; alpha differences
// bias the blend toward the more opaque colour.
func Mix(a, b Color, weight float64) Color {
	p := clamp01(weight)
	w := 2*p - 1
	da := a.A - b.A

	var w1 float64
	if w*da == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+da)/(1+w*da) + 1) / 2
	}
	w2 := 1 - w1

	return Color{
		R: a.R*w1 + b.R*w2,
		G: a.G*w1 + b.G*w2,
		B: a.B*w1 + b.B*w2,
		A: a.A*p + b.A*(1-p),
	}
}

// adjustHSL round-trips through HSL; the quantised channels keep results
// stable when derivations are chained
func adjustHSL(c Color, fn func(h, s, l float64) (float64, float64, float64)) Color {
	r, g, b, _ := c.RGBA255()
	h, s, l := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsl()
	out := colorful.Hsl(fn(h, s, l))
	return Color{R: out.R, G: out.G, B: out.B, A: c.A}
}

func rotate(h, deg float64) float64 {
	h = math.Mod(h+deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}
