package integration_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bennypowers.dev/dtsc/internal/uriutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workspace(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds and runs the dtsc binary")
	}
	dir := t.TempDir()
	files := map[string]string{
		".dtsc.yaml": "tokens:\n  files:\n    - tokens.json\n  prefix: ds\n",
		"tokens.json": `{ "color": { "$type": "color", "brand": { "$value": "#1abc9c" } } }`,
		"src/_vars.scss": "$gutter: 8px;\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestInitialize(t *testing.T) {
	dir := workspace(t)
	client := NewLSPClient(t, dir)

	result, err := client.Initialize(uriutil.PathToURI(dir))
	require.NoError(t, err)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "dtsc", result.ServerInfo.Name)
	assert.Equal(t, true, result.Capabilities.ColorProvider)
}

func TestDiagnostics(t *testing.T) {
	dir := workspace(t)
	client := NewLSPClient(t, dir)
	_, err := client.Initialize(uriutil.PathToURI(dir))
	require.NoError(t, err)

	uri := uriutil.PathToURI(filepath.Join(dir, "src", "site.scss"))
	client.DidOpen(uri, "@import \"vars\";\na { color: $missing; margin: $gutter; }\n")

	params, err := client.WaitForDiagnostics(uri, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, params.Diagnostics, 1)
	d := params.Diagnostics[0]
	assert.Equal(t, "undefined variable $missing", d.Message)
	assert.Equal(t, uint32(1), d.Range.Start.Line)
	assert.Equal(t, uint32(11), d.Range.Start.Character)

	client.DidChange(uri, 2, "@import \"vars\";\na { color: $ds-color-brand; margin: $gutter; }\n")
	params, err = client.WaitForDiagnostics(uri, 5*time.Second)
	require.NoError(t, err)
	assert.Empty(t, params.Diagnostics, "tokens from the configured file are defined")
}

func TestTokenFileChange(t *testing.T) {
	dir := workspace(t)
	client := NewLSPClient(t, dir)
	_, err := client.Initialize(uriutil.PathToURI(dir))
	require.NoError(t, err)

	uri := uriutil.PathToURI(filepath.Join(dir, "src", "theme.scss"))
	client.DidOpen(uri, "a { color: $ds-color-accent; }\n")
	params, err := client.WaitForDiagnostics(uri, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, params.Diagnostics, 1)

	tokens := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(tokens,
		[]byte(`{ "color": { "$type": "color", "accent": { "$value": "#ff0000" } } }`), 0o644))
	client.DidChangeWatchedFiles(uriutil.PathToURI(tokens))

	params, err = client.WaitForDiagnostics(uri, 5*time.Second)
	require.NoError(t, err)
	assert.Empty(t, params.Diagnostics)
}

func TestDocumentColor(t *testing.T) {
	dir := workspace(t)
	client := NewLSPClient(t, dir)
	_, err := client.Initialize(uriutil.PathToURI(dir))
	require.NoError(t, err)

	uri := uriutil.PathToURI(filepath.Join(dir, "src", "colors.scss"))
	client.DidOpen(uri, "$hover: darken($ds-color-brand, 10%);\n")
	_, err = client.WaitForDiagnostics(uri, 5*time.Second)
	require.NoError(t, err)

	colors, err := client.DocumentColor(uri)
	require.NoError(t, err)
	require.Len(t, colors, 1)
	c := colors[0].Color
	assert.Equal(t, 0x14, int(c.Red*255+0.5))
	assert.Equal(t, 0x8f, int(c.Green*255+0.5))
	assert.Equal(t, 0x77, int(c.Blue*255+0.5))
}
