package build_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/compiler"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"bennypowers.dev/dtsc/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func setup(t *testing.T) string {
	t.Helper()
	log.SetOutput(nil)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/_vars.scss":          "$primary-color: #1abc9c;\n",
		"src/site.scss":           "@import \"vars\";\nform { button { &:hover { color: darken($primary-color, 10%); } } }\n",
		"src/broken.scss":         "a { color: $missing; }\n",
		"src/pages/index.html":    "<html><style>p { color: $brand; }</style></html>\n",
		"src/components/btn.scss": ".btn { padding: 0 }\n",
		"dist/broken.css":         "/* left over from an earlier build */\n",
	})
	return root
}

func newBuilder(root string) *build.Builder {
	return build.New(build.Options{
		Root:      root,
		Sources:   []string{"src/**/*.scss", "src/**/*.html"},
		OutDir:    filepath.Join(root, "dist"),
		Style:     compiler.Expanded,
		Variables: resolver.NewTable(map[string]string{"brand": "navy"}),
		Jobs:      2,
	})
}

func TestBuild(t *testing.T) {
	root := setup(t)
	b := newBuilder(root)

	report, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 4)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, stylesheet.ErrUndefinedVariable)
	assert.ErrorIs(t, report.Err(), stylesheet.ErrUndefinedVariable)
	assert.NoFileExists(t, filepath.Join(root, "dist", "broken.css"), "a failed source has no output")

	site, err := os.ReadFile(filepath.Join(root, "dist", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, "form button:hover {\n  color: #148f77;\n}\n", string(site))

	page, err := os.ReadFile(filepath.Join(root, "dist", "pages", "index.css"))
	require.NoError(t, err)
	assert.Equal(t, "p {\n  color: navy;\n}\n", string(page))

	assert.FileExists(t, filepath.Join(root, "dist", "components", "btn.css"))
	assert.NoFileExists(t, filepath.Join(root, "dist", "_vars.css"), "partials are not compiled")

	t.Run("unchanged outputs are not rewritten", func(t *testing.T) {
		again, err := b.Build(context.Background())
		require.NoError(t, err)
		for _, o := range again.Outcomes {
			assert.False(t, o.Written, o.Output)
		}
	})

	t.Run("a fresh builder compares with disk", func(t *testing.T) {
		again, err := newBuilder(root).Build(context.Background())
		require.NoError(t, err)
		for _, o := range again.Outcomes {
			assert.False(t, o.Written, o.Output)
		}
	})

	t.Run("an edited output is restored", func(t *testing.T) {
		sitePath := filepath.Join(root, "dist", "site.css")
		require.NoError(t, os.WriteFile(sitePath, []byte("hand edited\n"), 0o644))

		again, err := b.Build(context.Background())
		require.NoError(t, err)
		for _, o := range again.Outcomes {
			assert.Equal(t, o.Output == sitePath, o.Written, o.Output)
		}

		site, err := os.ReadFile(sitePath)
		require.NoError(t, err)
		assert.Equal(t, "form button:hover {\n  color: #148f77;\n}\n", string(site))
	})
}

func TestSetVariables(t *testing.T) {
	root := setup(t)
	b := newBuilder(root)
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	b.SetVariables(resolver.NewTable(map[string]string{"brand": "teal"}))
	report, err := b.Build(context.Background())
	require.NoError(t, err)

	page := filepath.Join(root, "dist", "pages", "index.css")
	for _, o := range report.Outcomes {
		if o.Output == page {
			assert.True(t, o.Written, "the page depends on $brand")
		}
	}
	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Equal(t, "p {\n  color: teal;\n}\n", string(data))
}

func TestCheck(t *testing.T) {
	root := setup(t)
	require.NoError(t, os.Remove(filepath.Join(root, "src", "broken.scss")))
	b := newBuilder(root)

	_, err := b.Build(context.Background())
	require.NoError(t, err)

	report, err := b.Check(context.Background())
	require.NoError(t, err)
	assert.NoError(t, report.Err())

	sitePath := filepath.Join(root, "dist", "site.css")
	require.NoError(t, os.WriteFile(sitePath, []byte("form button:hover {\n  color: red;\n}\n"), 0o644))

	report, err = b.Check(context.Background())
	require.NoError(t, err)
	failed := report.Failed()
	require.Len(t, failed, 1)

	var stale *build.StaleError
	require.ErrorAs(t, failed[0].Err, &stale)
	assert.Equal(t, sitePath, stale.Output)
	assert.Equal(t, " form button:hover {\n-  color: red;\n+  color: #148f77;\n }\n", failed[0].Diff)

	current, err := os.ReadFile(sitePath)
	require.NoError(t, err)
	assert.Contains(t, string(current), "red", "check never writes")
}

func TestBuildCancelled(t *testing.T) {
	root := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(root).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(root, "dist", "site.css"))
}

func TestBuildRefusesToOverwriteSource(t *testing.T) {
	log.SetOutput(nil)
	defer log.SetOutput(os.Stderr)

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"plain.css": "a { b: c; }\n"})

	report, err := build.New(build.Options{Root: root, Sources: []string{"*.css"}}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Failed(), 1)

	content, err := os.ReadFile(filepath.Join(root, "plain.css"))
	require.NoError(t, err)
	assert.Equal(t, "a { b: c; }\n", string(content))
}

func TestCompileValidate(t *testing.T) {
	log.SetOutput(nil)
	defer log.SetOutput(os.Stderr)

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.scss": "a { color: red; }\n"})

	b := build.New(build.Options{Validate: true, Strict: true, Style: compiler.Compressed})
	css, diags, err := b.Compile(filepath.Join(root, "a.scss"))
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "a{color:red}", css)
}

func TestLineDiff(t *testing.T) {
	assert.Equal(t, " a\n-b\n+c\n", build.LineDiff("a\nb\n", "a\nc\n"))
	assert.Equal(t, "+x\n", build.LineDiff("", "x\n"))
	assert.Empty(t, build.LineDiff("", ""))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.css")
	require.NoError(t, build.WriteFileAtomic(path, []byte("one")))
	require.NoError(t, build.WriteFileAtomic(path, []byte("two")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files remain")
}

func TestVariables(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"tokens.json": `{
  // brand palette
  "color": {
    "$type": "color",
    "base": { "$value": "#1abc9c" },
    "primary": { "$value": "{color.base}" }
  }
}`,
	})

	manager := tokens.NewManager()
	require.NoError(t, build.LoadTokens(manager, []string{filepath.Join(dir, "tokens.json")}, "ds"))
	assert.Equal(t, 2, manager.Count())

	table, err := build.Variables(manager, map[string]string{"ds-color-base": "red", "gutter": "8px"})
	require.NoError(t, err)

	v, ok := table.Lookup("$ds-color-primary")
	require.True(t, ok)
	assert.Equal(t, "#1abc9c", v, "aliases resolve before overrides apply")

	v, _ = table.Lookup("ds-color-base")
	assert.Equal(t, "red", v)
	v, _ = table.Lookup("gutter")
	assert.Equal(t, "8px", v)

	t.Run("bad file", func(t *testing.T) {
		err := build.LoadTokens(tokens.NewManager(), []string{filepath.Join(dir, "missing.json")}, "")
		assert.Error(t, err)
	})
}
