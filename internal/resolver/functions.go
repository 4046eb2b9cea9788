package resolver

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/dtsc/internal/color"
	"bennypowers.dev/dtsc/internal/stylesheet"
)

// colorFunc computes a call from evaluated arguments. handled is false when
// the call is plain CSS, such as the filter form grayscale(50%), and must be
// emitted unchanged.
type colorFunc func(name string, args []string, loc stylesheet.Location) (out string, handled bool, err error)

var functions = map[string]colorFunc{
	"lighten":        adjustBy(color.Lighten, percentAmount),
	"darken":         adjustBy(color.Darken, percentAmount),
	"saturate":       filterOr(adjustBy(color.Saturate, percentAmount)),
	"desaturate":     adjustBy(color.Desaturate, percentAmount),
	"adjust-hue":     adjustBy(color.AdjustHue, degreeAmount),
	"spin":           adjustBy(color.AdjustHue, degreeAmount),
	"fade-in":        adjustBy(color.FadeIn, alphaAmount),
	"opacify":        adjustBy(color.FadeIn, alphaAmount),
	"fade-out":       adjustBy(color.FadeOut, alphaAmount),
	"transparentize": adjustBy(color.FadeOut, alphaAmount),
	"fade":           adjustBy(color.SetAlpha, alphaAmount),
	"rgba":           rgbaFunc,
	"mix":            mixFunc,
	"grayscale":      filterOr(unary(color.Grayscale)),
	"complement":     unary(color.Complement),
	"invert":         filterOr(unary(color.Invert)),
}

// IsColorFunction reports whether name is computed at compile time
func IsColorFunction(name string) bool {
	_, ok := functions[strings.ToLower(name)]
	return ok
}

// DeriveColor applies op to the colour base. amount uses stylesheet units:
// a percentage for lightness and saturation, degrees for adjust-hue and a
// 0-1 number or percentage for alpha operations.
func DeriveColor(op color.Operation, base, amount string, loc stylesheet.Location) (string, error) {
	c, err := color.Parse(base)
	if err != nil {
		return "", stylesheet.NewInvalidColorOperationError(string(op), base, "", loc)
	}

	var parse func(string) (float64, error)
	switch op {
	case color.AdjustHue:
		parse = degreeAmount
	case color.SetAlpha, color.FadeIn, color.FadeOut:
		parse = alphaAmount
	default:
		parse = percentAmount
	}

	var n float64
	if amount != "" {
		n, err = parse(amount)
		if err != nil {
			return "", stylesheet.NewInvalidColorOperationError(string(op), amount, err.Error(), loc)
		}
	}

	derived, err := color.Derive(op, c, n)
	if err != nil {
		return "", stylesheet.NewInvalidColorOperationError(string(op), base, err.Error(), loc)
	}
	return derived.String(), nil
}

func adjustBy(op color.Operation, parse func(string) (float64, error)) colorFunc {
	return func(name string, args []string, loc stylesheet.Location) (string, bool, error) {
		if len(args) != 2 {
			return "", false, arity(name, args, "2", loc)
		}
		c, err := operand(name, args[0], loc)
		if err != nil {
			return "", false, err
		}
		n, err := parse(args[1])
		if err != nil {
			return "", false, stylesheet.NewInvalidColorOperationError(name, args[1], err.Error(), loc)
		}
		out, err := color.Derive(op, c, n)
		if err != nil {
			return "", false, stylesheet.NewInvalidColorOperationError(name, args[0], err.Error(), loc)
		}
		return out.String(), true, nil
	}
}

func unary(op color.Operation) colorFunc {
	return func(name string, args []string, loc stylesheet.Location) (string, bool, error) {
		if len(args) != 1 {
			return "", false, arity(name, args, "1", loc)
		}
		c, err := operand(name, args[0], loc)
		if err != nil {
			return "", false, err
		}
		out, err := color.Derive(op, c, 0)
		if err != nil {
			return "", false, stylesheet.NewInvalidColorOperationError(name, args[0], err.Error(), loc)
		}
		return out.String(), true, nil
	}
}

// filterOr leaves the single-number CSS filter form of fn alone
func filterOr(fn colorFunc) colorFunc {
	return func(name string, args []string, loc stylesheet.Location) (string, bool, error) {
		if len(args) == 1 {
			if _, _, err := parseNumber(args[0]); err == nil {
				return "", false, nil
			}
		}
		return fn(name, args, loc)
	}
}

// rgbaFunc handles rgba($color, $alpha). Every other form is CSS.
func rgbaFunc(name string, args []string, loc stylesheet.Location) (string, bool, error) {
	if len(args) != 2 {
		return "", false, nil
	}
	c, err := operand(name, args[0], loc)
	if err != nil {
		return "", false, err
	}
	a, err := alphaAmount(args[1])
	if err != nil {
		return "", false, stylesheet.NewInvalidColorOperationError(name, args[1], err.Error(), loc)
	}
	out, _ := color.Derive(color.SetAlpha, c, a)
	return out.String(), true, nil
}

func mixFunc(name string, args []string, loc stylesheet.Location) (string, bool, error) {
	if len(args) != 2 && len(args) != 3 {
		return "", false, arity(name, args, "2 or 3", loc)
	}
	a, err := operand(name, args[0], loc)
	if err != nil {
		return "", false, err
	}
	b, err := operand(name, args[1], loc)
	if err != nil {
		return "", false, err
	}
	weight := 0.5
	if len(args) == 3 {
		weight, err = percentAmount(args[2])
		if err != nil {
			return "", false, stylesheet.NewInvalidColorOperationError(name, args[2], err.Error(), loc)
		}
	}
	return color.Mix(a, b, weight).String(), true, nil
}

func operand(name, arg string, loc stylesheet.Location) (color.Color, error) {
	c, err := color.Parse(arg)
	if err != nil {
		return color.Color{}, stylesheet.NewInvalidColorOperationError(name, arg, "", loc)
	}
	return c, nil
}

func arity(name string, args []string, want string, loc stylesheet.Location) error {
	return stylesheet.NewInvalidColorOperationError(name, strings.Join(args, ", "),
		fmt.Sprintf("expected %s arguments, got %d", want, len(args)), loc)
}

var numberPattern = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))([a-zA-Z%]*)$`)

// parseNumber splits a CSS number into its value and unit
func parseNumber(s string) (float64, string, error) {
	m := numberPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, "", fmt.Errorf("not a number")
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", err
	}
	return n, strings.ToLower(m[2]), nil
}

// percentAmount reads 10% or 10 as 0.10
func percentAmount(s string) (float64, error) {
	n, unit, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if unit != "" && unit != "%" {
		return 0, fmt.Errorf("expected a percentage, got unit %q", unit)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("must be between 0%% and 100%%")
	}
	return n / 100, nil
}

// alphaAmount reads 0.5 or 50% as 0.5
func alphaAmount(s string) (float64, error) {
	n, unit, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "":
	case "%":
		n /= 100
	default:
		return 0, fmt.Errorf("expected a number or percentage, got unit %q", unit)
	}
	if n < 0 || n > 1 {
		return 0, fmt.Errorf("must be between 0 and 1")
	}
	return n, nil
}

// degreeAmount reads an angle in degrees; other angle units are converted
func degreeAmount(s string) (float64, error) {
	n, unit, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "", "deg":
		return n, nil
	case "rad":
		return n * 180 / math.Pi, nil
	case "grad":
		return n * 0.9, nil
	case "turn":
		return n * 360, nil
	}
	return 0, fmt.Errorf("expected an angle, got unit %q", unit)
}
