// Package build compiles every discovered source to its output file.
// Sources compile independently and in parallel; a failure in one never
// leaves an output file for it and does not stop the others.
package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"bennypowers.dev/dtsc/internal/compiler"
	"bennypowers.dev/dtsc/internal/lint"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/resolver"
	"bennypowers.dev/dtsc/internal/source"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// Options configures a Builder
type Options struct {
	// Root is the directory source patterns are matched in
	Root      string
	Sources   []string
	OutDir    string
	Style     compiler.Style
	LoadPaths []string
	Variables resolver.Table
	// Validate re-parses each output; Strict turns its problems into failures
	Validate bool
	Strict   bool
	// Jobs bounds parallel compilations; zero means GOMAXPROCS
	Jobs int
}

// Outcome is the result for one source
type Outcome struct {
	Entry  source.Entry
	Output string
	// Written is false when the output already held the compiled text
	Written     bool
	Diagnostics []lint.Diagnostic
	// Diff is set by Check when the output is stale
	Diff string
	Err  error
}

// Report collects the outcomes of a run in source order
type Report struct {
	Outcomes []Outcome
}

// Failed returns the outcomes that ended in an error
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins every failure, or returns nil
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}

// Builder compiles sources. It remembers what it last wrote to each
// output so unchanged results are not rewritten; it is safe for
// concurrent use.
type Builder struct {
	opts    Options
	written *gocache.Cache

	mu   sync.RWMutex
	vars resolver.Table
}

// New creates a Builder
func New(opts Options) *Builder {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	return &Builder{
		opts:    opts,
		written: gocache.New(gocache.NoExpiration, 0),
		vars:    opts.Variables,
	}
}

// SetVariables replaces the table that seeds later compilations, e.g.
// after token files change
func (b *Builder) SetVariables(vars resolver.Table) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vars = vars
}

func (b *Builder) variables() resolver.Table {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.vars
}

// Build discovers and compiles every source. The returned error covers
// discovery and cancellation; compile failures are in the report.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	return b.run(ctx, b.buildOne)
}

// Check compiles every source and compares it with the existing output
// without writing anything. Stale or missing outputs fail with a diff.
func (b *Builder) Check(ctx context.Context) (*Report, error) {
	return b.run(ctx, b.checkOne)
}

func (b *Builder) run(ctx context.Context, fn func(source.Entry) Outcome) (*Report, error) {
	entries, err := source.Discover(b.opts.Root, b.opts.Sources)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcomes := make([]Outcome, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Jobs)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = fn(entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Outcomes: outcomes}
	log.Info("compiled %d stylesheets in %s (%d failed)", len(entries), time.Since(start).Round(time.Millisecond), len(report.Failed()))
	return report, nil
}

// Compile compiles one file, validating the output when configured. HTML
// files compile the contents of their <style> elements.
func (b *Builder) Compile(path string) (string, []lint.Diagnostic, error) {
	text, err := source.Read(path)
	if err != nil {
		return "", nil, err
	}
	return b.CompileText(path, text)
}

// CompileText compiles stylesheet text as if read from path
func (b *Builder) CompileText(path, text string) (string, []lint.Diagnostic, error) {
	result, err := compiler.CompileString(path, text, compiler.Options{
		Style:     b.opts.Style,
		Variables: b.variables(),
		LoadPaths: b.opts.LoadPaths,
	})
	if err != nil {
		return "", nil, err
	}
	css := result.CSS(b.opts.Style)

	if !b.opts.Validate {
		return css, nil, nil
	}
	diags, err := lint.Linter{Strict: b.opts.Strict}.Check(path, css)
	if err != nil {
		return "", diags, err
	}
	return css, diags, nil
}

func (b *Builder) buildOne(entry source.Entry) Outcome {
	out := Outcome{Entry: entry, Output: entry.OutputPath(b.opts.OutDir)}
	if err := b.guard(entry, out.Output); err != nil {
		out.Err = err
		return out
	}

	css, diags, err := b.Compile(entry.Path)
	out.Diagnostics = diags
	if err != nil {
		out.Err = err
		b.discard(out.Output)
		log.Error("%s", err)
		return out
	}

	written, err := b.write(out.Output, css)
	if err != nil {
		out.Err = err
		return out
	}
	out.Written = written
	if written {
		log.Info("wrote %s", out.Output)
	} else {
		log.Debug("%s unchanged", out.Output)
	}
	return out
}

func (b *Builder) checkOne(entry source.Entry) Outcome {
	out := Outcome{Entry: entry, Output: entry.OutputPath(b.opts.OutDir)}
	css, diags, err := b.Compile(entry.Path)
	out.Diagnostics = diags
	if err != nil {
		out.Err = err
		return out
	}

	existing, err := os.ReadFile(out.Output)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		out.Err = err
		return out
	}
	if string(existing) != css {
		out.Diff = LineDiff(string(existing), css)
		out.Err = &StaleError{Output: out.Output}
	}
	return out
}

// guard refuses to overwrite a source with its own output
func (b *Builder) guard(entry source.Entry, output string) error {
	return GuardOutput(entry.Path, output)
}

// GuardOutput fails when output names the same file as the source at src
func GuardOutput(src, output string) error {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	dstAbs, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	if srcAbs == dstAbs {
		return fmt.Errorf("%s: output would overwrite the source; set an output directory", src)
	}
	return nil
}

// stamp records what the builder last wrote to an output, so an
// unchanged output is recognized without reading it back. The file's size
// and modification time must still match for the record to count.
type stamp struct {
	sum  string
	size int64
	mod  time.Time
}

func (w stamp) matches(info os.FileInfo) bool {
	return info.Size() == w.size && info.ModTime().Equal(w.mod)
}

// write stores css at path unless it already holds exactly that text
func (b *Builder) write(path, css string) (bool, error) {
	sum := checksum(css)
	if cached, ok := b.written.Get(path); ok && cached.(stamp).sum == sum {
		if info, err := os.Stat(path); err == nil && cached.(stamp).matches(info) {
			return false, nil
		}
	}
	if existing, err := os.ReadFile(path); err == nil && checksum(string(existing)) == sum {
		b.remember(path, sum)
		return false, nil
	}

	if err := WriteFileAtomic(path, []byte(css)); err != nil {
		b.written.Delete(path)
		return false, err
	}
	b.remember(path, sum)
	return true, nil
}

func (b *Builder) remember(path, sum string) {
	info, err := os.Stat(path)
	if err != nil {
		b.written.Delete(path)
		return
	}
	b.written.Set(path, stamp{sum: sum, size: info.Size(), mod: info.ModTime()}, gocache.NoExpiration)
}

// discard removes an output left by an earlier successful build, so a
// failed source never has an output file
func (b *Builder) discard(path string) {
	b.written.Delete(path)
	if err := os.Remove(path); err == nil {
		log.Info("removed %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warn("removing %s: %v", path, err)
	}
}

func checksum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// StaleError reports an output that differs from what the source compiles to
type StaleError struct {
	Output string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s is out of date", e.Output)
}
