package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/source"
	"bennypowers.dev/dtsc/internal/watcher"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

func newWatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [pattern...]",
		Short: "Rebuild whenever a stylesheet or token file changes",
		Long: `Build once, then rebuild every stylesheet whenever a source, an imported
file or a token file changes. Compile errors are logged and watching
continues. Stops on interrupt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.newBuilder(args)
			if err != nil {
				return err
			}
			sources := args
			if len(sources) == 0 {
				sources = a.cfg.Sources
			}
			return a.watch(cmd.Context(), b, sources)
		},
	}
	addJobsFlag(cmd, a)
	return cmd
}

func (a *app) watch(ctx context.Context, b *build.Builder, sources []string) error {
	debounce, err := a.cfg.DebounceDuration()
	if err != nil {
		return err
	}

	tokenFiles := make([]string, 0, len(a.cfg.Tokens.Files))
	for _, f := range a.cfg.Tokens.Files {
		if abs, err := filepath.Abs(f); err == nil {
			tokenFiles = append(tokenFiles, abs)
		}
	}

	w, err := watcher.New(watcher.Config{
		Dirs:   watchDirs(sources, a.cfg.LoadPaths, a.cfg.Tokens.Files),
		Ignore: []string{a.cfg.OutDir},
		Match: func(path string) bool {
			if source.IsStylesheet(path) {
				return true
			}
			abs, err := filepath.Abs(path)
			return err == nil && slices.Contains(tokenFiles, abs)
		},
		DebounceDur: debounce,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	changes, err := w.Start()
	if err != nil {
		return err
	}

	a.rebuild(ctx, b, false)
	log.Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			log.Info("stopped watching")
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			a.rebuild(ctx, b, true)
		}
	}
}

// rebuild builds every source, first re-reading token files when reload
// is set. Failures are logged; watching continues.
func (a *app) rebuild(ctx context.Context, b *build.Builder, reload bool) {
	if reload {
		if err := a.reloadVariables(b); err != nil {
			log.Error("reloading tokens: %v", err)
		}
	}

	report, err := b.Build(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("%v", err)
		}
		return
	}
	if err := summarize(report); err != nil {
		log.Error("%v", err)
	}
}

// reloadVariables reseeds b from the token files. On error b keeps its
// previous variables.
func (a *app) reloadVariables(b *build.Builder) error {
	manager, err := a.loadVariables()
	if err != nil {
		return err
	}
	vars, err := build.Variables(manager, a.cfg.Variables)
	if err != nil {
		return err
	}
	b.SetVariables(vars)
	return nil
}

// watchDirs returns the existing directories holding sources, load paths
// and token files
func watchDirs(sources, loadPaths, tokenFiles []string) []string {
	var dirs []string
	for _, pattern := range sources {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		dirs = append(dirs, filepath.FromSlash(base))
	}
	dirs = append(dirs, loadPaths...)
	for _, f := range tokenFiles {
		dirs = append(dirs, filepath.Dir(f))
	}

	var existing []string
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if slices.Contains(existing, dir) {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			existing = append(existing, dir)
		}
	}
	return existing
}
