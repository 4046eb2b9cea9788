package scss_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/dtsc/internal/parser/scss"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFS serves files from a map, keyed by cleaned path
func memFS(files map[string]string) scss.ReadFunc {
	return func(path string) ([]byte, error) {
		if src, ok := files[filepath.Clean(path)]; ok {
			return []byte(src), nil
		}
		return nil, os.ErrNotExist
	}
}

func TestParseString(t *testing.T) {
	src := `$primary-color: #1abc9c;

form {
  padding: 1em;
  button {
    color: $primary-color;
    &:hover { color: darken($primary-color, 10%) }
  }
}
`
	sheet, err := scss.ParseString("site.scss", src, scss.Options{})
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 2)
	assert.Equal(t, []string{"site.scss"}, sheet.Imports)

	v, ok := sheet.Nodes[0].(*stylesheet.Variable)
	require.True(t, ok)
	assert.Equal(t, "primary-color", v.Name)
	assert.Equal(t, "#1abc9c", v.Value)
	assert.Equal(t, stylesheet.Location{File: "site.scss", Line: 1, Column: 1}, v.Loc)
	assert.Equal(t, stylesheet.Location{File: "site.scss", Line: 1, Column: 17}, v.ValueLoc)

	form, ok := sheet.Nodes[1].(*stylesheet.Rule)
	require.True(t, ok)
	assert.Equal(t, "form", form.Selector)
	assert.Equal(t, 3, form.Loc.Line)
	require.Len(t, form.Children, 2)

	padding := form.Children[0].(*stylesheet.Declaration)
	assert.Equal(t, "padding", padding.Property)
	assert.Equal(t, "1em", padding.Value)

	button := form.Children[1].(*stylesheet.Rule)
	require.Len(t, button.Children, 2)
	hover := button.Children[1].(*stylesheet.Rule)
	assert.Equal(t, "&:hover", hover.Selector)
	decl := hover.Children[0].(*stylesheet.Declaration)
	assert.Equal(t, "darken($primary-color, 10%)", decl.Value, "last declaration may omit ';'")
	assert.Equal(t, stylesheet.Location{File: "site.scss", Line: 7, Column: 15}, decl.Loc)
}

func TestParseComments(t *testing.T) {
	src := `/* header */
a { // trailing
  background: url(http://example.com/a.png); /* inline */
  color: red /* mid */ !important;
}
`
	sheet, err := scss.ParseString("c.scss", src, scss.Options{})
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)

	rule := sheet.Nodes[0].(*stylesheet.Rule)
	require.Len(t, rule.Children, 2)
	assert.Equal(t, "url(http://example.com/a.png)", rule.Children[0].(*stylesheet.Declaration).Value)
	assert.Equal(t, "red   !important", rule.Children[1].(*stylesheet.Declaration).Value)
}

func TestParseVariableFlags(t *testing.T) {
	sheet, err := scss.ParseString("v.scss", "$a: 1px !default;\n.x { $b: red !global; }", scss.Options{})
	require.NoError(t, err)

	a := sheet.Nodes[0].(*stylesheet.Variable)
	assert.True(t, a.Default)
	assert.False(t, a.Global)
	assert.Equal(t, "1px", a.Value)

	b := sheet.Nodes[1].(*stylesheet.Rule).Children[0].(*stylesheet.Variable)
	assert.True(t, b.Global)
	assert.Equal(t, "red", b.Value)
}

func TestParseAtRules(t *testing.T) {
	src := `@charset "utf-8";
@media (min-width: #{$bp}) {
  .a { color: red; }
}
@font-face { font-family: X; src: url(x.woff2); }
@debug "value: #{$bp}";
`
	sheet, err := scss.ParseString("at.scss", src, scss.Options{})
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 4)

	charset := sheet.Nodes[0].(*stylesheet.AtRule)
	assert.Equal(t, "charset", charset.Name)
	assert.Equal(t, `"utf-8"`, charset.Prelude)
	assert.False(t, charset.Block)

	media := sheet.Nodes[1].(*stylesheet.AtRule)
	assert.Equal(t, "(min-width: #{$bp})", media.Prelude)
	assert.True(t, media.Block)
	require.Len(t, media.Children, 1)

	fontFace := sheet.Nodes[2].(*stylesheet.AtRule)
	assert.Len(t, fontFace.Children, 2)

	debug := sheet.Nodes[3].(*stylesheet.AtRule)
	assert.Equal(t, "debug", debug.Name)
}

func TestParseImports(t *testing.T) {
	files := map[string]string{
		"src/site.scss":               `@import "variables", "components/button"; @import "theme.css"; @import url(print.css); .site { color: $brand; }`,
		"src/_variables.scss":         `$brand: #1abc9c;`,
		"src/components/_button.scss": `@import "mixins"; .button { color: $brand; }`,
		"lib/mixins.scss":             `$radius: 4px;`,
	}
	opts := scss.Options{LoadPaths: []string{"lib"}, ReadFile: memFS(files)}

	sheet, err := scss.Parse("src/site.scss", opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/site.scss",
		filepath.Join("src", "_variables.scss"),
		filepath.Join("src", "components", "_button.scss"),
		filepath.Join("lib", "mixins.scss"),
	}, sheet.Imports)

	var kinds []string
	for _, n := range sheet.Nodes {
		switch n := n.(type) {
		case *stylesheet.Variable:
			kinds = append(kinds, "$"+n.Name)
		case *stylesheet.Rule:
			kinds = append(kinds, n.Selector)
		case *stylesheet.AtRule:
			kinds = append(kinds, "@"+n.Name+" "+n.Prelude)
		}
	}
	assert.Equal(t, []string{
		"$brand", "$radius", ".button", `@import "theme.css"`, "@import url(print.css)", ".site",
	}, kinds)

	brand := sheet.Nodes[0].(*stylesheet.Variable)
	assert.Equal(t, filepath.Join("src", "_variables.scss"), brand.Loc.File, "nodes keep their own file")
}

func TestParseImportErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		opts := scss.Options{ReadFile: memFS(map[string]string{"a.scss": `@import "nope";`})}
		_, err := scss.Parse("a.scss", opts)
		assert.ErrorIs(t, err, stylesheet.ErrSyntax)
		assert.ErrorContains(t, err, "nope")
	})

	t.Run("cycle", func(t *testing.T) {
		opts := scss.Options{ReadFile: memFS(map[string]string{
			"a.scss":  `@import "b";`,
			"_b.scss": `@import "a";`,
		})}
		_, err := scss.Parse("a.scss", opts)
		require.ErrorIs(t, err, stylesheet.ErrCircularReference)

		var circular *stylesheet.CircularReferenceError
		require.ErrorAs(t, err, &circular)
		assert.Equal(t, []string{"a.scss", "_b.scss", "a.scss"}, circular.ReferenceChain)
	})

	t.Run("module system", func(t *testing.T) {
		_, err := scss.ParseString("m.scss", `@use "sass:math";`, scss.Options{})
		assert.ErrorIs(t, err, stylesheet.ErrSyntax)
	})

	t.Run("entry file missing", func(t *testing.T) {
		_, err := scss.Parse(filepath.Join(t.TempDir(), "none.scss"), scss.Options{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unclosed block", "a {\n  color: red;\n", 3},
		{"stray brace", "a { color: red; }\n}", 2},
		{"missing colon", "a {\n  color red;\n}", 2},
		{"unterminated string", "a { content: \"open; }", 1},
		{"unterminated comment", "/* never closed", 1},
		{"empty value", "a { color: ; }", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scss.ParseString("bad.scss", tt.src, scss.Options{})
			require.ErrorIs(t, err, stylesheet.ErrSyntax)

			var syntax *stylesheet.SyntaxError
			require.ErrorAs(t, err, &syntax)
			assert.Equal(t, tt.line, syntax.Loc.Line)
		})
	}
}
