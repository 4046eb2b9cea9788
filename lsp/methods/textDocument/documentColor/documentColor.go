// Package documentcolor shows colour swatches for colour-valued variable
// declarations and offers alternative notations in the picker.
package documentcolor

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"bennypowers.dev/dtsc/internal/color"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/parser/scss"
	"bennypowers.dev/dtsc/internal/position"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"bennypowers.dev/dtsc/lsp/types"
	"github.com/lucasb-eyer/go-colorful"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentColor evaluates the document's variables in order and reports
// those that resolve to a colour, derived colours included. Variables that
// fail to evaluate are skipped; diagnostics report them.
func DocumentColor(req *types.RequestContext, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	doc := req.Server.Document(params.TextDocument.URI)
	if doc == nil || !doc.IsStylesheet() {
		return nil, nil
	}
	src, err := doc.Source()
	if err != nil {
		return nil, err
	}

	path := doc.Path()
	sheet, err := scss.ParseString(path, src, scss.Options{LoadPaths: req.Server.GetConfig().LoadPaths})
	if err != nil {
		log.Debug("no colors for %s: %v", path, err)
		return nil, nil
	}

	var colors []protocol.ColorInformation
	scope := resolver.NewScope(req.Server.Variables())
	stylesheet.Walk(sheet.Nodes, func(n stylesheet.Node) bool {
		v, ok := n.(*stylesheet.Variable)
		if !ok {
			return true
		}
		if _, bound := scope.Lookup(v.Name); v.Default && bound {
			return true
		}
		value, err := resolver.Evaluate(v.Value, scope, v.ValueLoc)
		if err != nil {
			return true
		}
		scope.Define(v.Name, value)

		if filepath.Clean(v.ValueLoc.File) != filepath.Clean(path) {
			return true
		}
		c, err := color.Parse(value)
		if err != nil {
			return true
		}
		colors = append(colors, protocol.ColorInformation{
			Range: valueRange(doc.Content(), v.ValueLoc),
			Color: toProtocol(c),
		})
		return true
	})
	return colors, nil
}

// ColorPresentation offers the picked colour as hex, rgb() and hsl()
func ColorPresentation(req *types.RequestContext, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	c := fromProtocol(params.Color)
	labels := []string{c.String(), formatRGB(c), formatHSL(c)}

	presentations := make([]protocol.ColorPresentation, 0, len(labels))
	seen := map[string]bool{}
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true
		presentations = append(presentations, protocol.ColorPresentation{
			Label: label,
			TextEdit: &protocol.TextEdit{
				Range:   params.Range,
				NewText: label,
			},
		})
	}
	return presentations, nil
}

// valueRange covers a variable's value up to `;`, a `!flag` or the end of
// the line
func valueRange(content string, loc stylesheet.Location) protocol.Range {
	line, char := position.ToEditor(content, loc.Line, loc.Column)
	text := position.Line(content, int(line))
	start := min(max(loc.Column-1, 0), len(text))
	rest := text[start:]
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.Index(rest, "!"); i >= 0 {
		rest = rest[:i]
	}
	end := start + len(strings.TrimRight(rest, " \t"))
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: char},
		End:   protocol.Position{Line: line, Character: uint32(position.ByteOffsetToUTF16(text, end))},
	}
}

func toProtocol(c color.Color) protocol.Color {
	return protocol.Color{
		Red:   protocol.Decimal(c.R),
		Green: protocol.Decimal(c.G),
		Blue:  protocol.Decimal(c.B),
		Alpha: protocol.Decimal(c.A),
	}
}

func fromProtocol(c protocol.Color) color.Color {
	return color.Color{R: float64(c.Red), G: float64(c.Green), B: float64(c.Blue), A: float64(c.Alpha)}
}

func formatRGB(c color.Color) string {
	r, g, b, a := c.RGBA255()
	if a >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, color.FormatNumber(a))
}

func formatHSL(c color.Color) string {
	h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	hsl := fmt.Sprintf("%d, %d%%, %d%%", int(math.Round(h)), int(math.Round(s*100)), int(math.Round(l*100)))
	if c.A >= 1 {
		return "hsl(" + hsl + ")"
	}
	return fmt.Sprintf("hsla(%s, %s)", hsl, color.FormatNumber(c.A))
}
