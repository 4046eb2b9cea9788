package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/dtsc/internal/watcher"
)

func scssOnly(path string) bool {
	return strings.HasSuffix(path, ".scss")
}

func start(t *testing.T, cfg watcher.Config) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(cfg)
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.scss")
	require.NoError(t, os.WriteFile(path, []byte("a{}"), 0644))

	onChange := start(t, watcher.Config{
		Dirs:        []string{dir},
		Match:       scssOnly,
		DebounceDur: 50 * time.Millisecond,
	})

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("a{b:%d}", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(out, 0755))
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("initial"), 0644))

	onChange := start(t, watcher.Config{
		Dirs:        []string{dir},
		Ignore:      []string{out},
		Match:       scssOnly,
		DebounceDur: 50 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(other, []byte("other content"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "site.scss"), []byte("a{}"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated or ignored files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_NestedDirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "src", "components")
	require.NoError(t, os.MkdirAll(nested, 0755))

	onChange := start(t, watcher.Config{
		Dirs:        []string{dir},
		Match:       scssOnly,
		DebounceDur: 20 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(filepath.Join(nested, "_button.scss"), []byte("a{}"), 0644))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for a file in a nested directory")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()

	w, err := watcher.New(watcher.DefaultConfig(dir))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	assert.Error(t, err)
}

func TestWatcher_EmptyIgnoreEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0755))
	t.Chdir(dir)

	// an unset output directory writes beside the sources
	onChange := start(t, watcher.Config{
		Dirs:        []string{"src"},
		Ignore:      []string{""},
		Match:       scssOnly,
		DebounceDur: 20 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(filepath.Join(src, "site.scss"), []byte("a{}"), 0644))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification with an empty ignore entry")
	}
}
