package common_test

import (
	"testing"

	"bennypowers.dev/dtsc/internal/parser/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueText(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		tokenType string
		expected  string
	}{
		{"string", "#fff", "color", "#fff"},
		{"number", 1.5, "number", "1.5"},
		{"integer", 400, "fontWeight", "400"},
		{"font stack", []any{"Inter", "sans-serif"}, "fontFamily", "Inter, sans-serif"},
		{"dimension", map[string]any{"value": 1.25, "unit": "rem"}, "dimension", "1.25rem"},
		{"json pointer", map[string]any{"$ref": "#/color/base"}, "color", "{color.base}"},
		{"structured color", map[string]any{"colorSpace": "oklch", "components": []any{0.5, 0.1, 200.0}}, "color", "oklch(0.5 0.1 200)"},
		{
			"shadow",
			map[string]any{
				"offsetX": map[string]any{"value": 0, "unit": "px"},
				"offsetY": "2px",
				"blur":    "4px",
				"color":   "{color.shadow}",
				"inset":   true,
			},
			"shadow",
			"inset 0px 2px 4px {color.shadow}",
		},
		{"border", map[string]any{"width": "1px", "style": "solid", "color": "#ccc"}, "border", "1px solid #ccc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := common.ValueText(tt.value, tt.tokenType)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("null", func(t *testing.T) {
		_, err := common.ValueText(nil, "")
		assert.Error(t, err)
	})
}

func TestExtractTokens(t *testing.T) {
	data := map[string]any{
		"$description": "ignored metadata",
		"color": map[string]any{
			"$type": "color",
			"brand": map[string]any{
				"primary": map[string]any{"$value": "#00f"},
			},
		},
	}

	list, err := common.ExtractTokens(data, "ds", "tokens.json")
	require.NoError(t, err)
	require.Len(t, list, 1)

	tok := list[0]
	assert.Equal(t, "color-brand-primary", tok.Name)
	assert.Equal(t, []string{"color", "brand", "primary"}, tok.Path)
	assert.Equal(t, "color", tok.Type)
	assert.Equal(t, "ds-color-brand-primary", tok.VariableName())

	t.Run("top-level $root", func(t *testing.T) {
		_, err := common.ExtractTokens(map[string]any{"$root": map[string]any{"$value": "1"}}, "", "")
		assert.Error(t, err)
	})
}
