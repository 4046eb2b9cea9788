package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/dtsc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStylesheetLanguage(t *testing.T) {
	for _, lang := range []string{"scss", "css", "html"} {
		t.Run(lang, func(t *testing.T) {
			assert.True(t, parser.IsStylesheetLanguage(lang))
		})
	}

	for _, lang := range []string{"json", "yaml", "go", ""} {
		t.Run("unsupported_"+lang, func(t *testing.T) {
			assert.False(t, parser.IsStylesheetLanguage(lang))
		})
	}
}

func TestLanguageForPath(t *testing.T) {
	assert.Equal(t, "scss", parser.LanguageForPath("site/_vars.SCSS"))
	assert.Equal(t, "html", parser.LanguageForPath("index.htm"))
	assert.Equal(t, "yaml", parser.LanguageForPath("tokens.yml"))
	assert.Equal(t, "", parser.LanguageForPath("README"))
}

func TestStylesheetSource(t *testing.T) {
	src, err := parser.StylesheetSource("a{}", "scss")
	require.NoError(t, err)
	assert.Equal(t, "a{}", src)

	src, err = parser.StylesheetSource("<style>a{}</style>", "html")
	require.NoError(t, err)
	assert.Equal(t, "       a{}        ", src)

	_, err = parser.StylesheetSource("", "go")
	assert.Error(t, err)
}

func TestParseTokenFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "tokens.json")
	yamlPath := filepath.Join(dir, "tokens.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"a": {"$value": "1px"}}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("b:\n  $value: 2px\n"), 0o644))

	list, err := parser.ParseTokenFile(jsonPath, "x")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "x-a", list[0].VariableName())

	list, err = parser.ParseTokenFile(yamlPath, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2px", list[0].Value)

	_, err = parser.ParseTokenFile(filepath.Join(dir, "tokens.toml"), "")
	assert.Error(t, err)
}
