// Package updater applies notice reconciliation to files on disk, one at a
// time or as a bounded concurrent batch.
package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/copyrighter/internal/git"
	"github.com/steveyegge/copyrighter/internal/reconcile"
)

// Skip reasons reported by UpdateFile before the engine runs.
const (
	ReasonBinary   = "binary file"
	ReasonConflict = "unresolved merge conflict"
)

// binarySniffLen is how much of a file is checked for NUL bytes.
const binarySniffLen = 8000

// Reconciler computes the new content of a file.
type Reconciler interface {
	Reconcile(ctx context.Context, path string, content []byte) (*reconcile.Result, error)
}

// Options configures an Updater.
type Options struct {
	// DryRun computes results without writing files
	DryRun bool

	// Workers bounds concurrent files in Run; <= 0 means NumCPU
	Workers int

	// Logger receives per-file warnings; nil discards
	Logger *slog.Logger
}

// Outcome is what happened to one file.
type Outcome struct {
	Path string

	// Result is nil when Err is set
	Result *reconcile.Result

	// Before is the file content as read; nil if it could not be read
	Before []byte

	// Written is true when new content was written to disk
	Written bool

	Err error
}

// Status returns the result status, or zero when the file errored.
func (o Outcome) Status() reconcile.Status {
	if o.Err != nil || o.Result == nil {
		return 0
	}
	return o.Result.Status
}

// Summary tallies the outcomes of a batch.
type Summary struct {
	Updated   int
	Unchanged int
	Skipped   int
	Errored   int
}

// Failed reports whether any file errored.
func (s Summary) Failed() bool { return s.Errored > 0 }

// Total returns the number of files counted.
func (s Summary) Total() int { return s.Updated + s.Unchanged + s.Skipped + s.Errored }

func (s *Summary) add(o Outcome) {
	switch o.Status() {
	case reconcile.StatusUpdated:
		s.Updated++
	case reconcile.StatusUnchanged:
		s.Unchanged++
	case reconcile.StatusSkipped:
		s.Skipped++
	default:
		s.Errored++
	}
}

// Updater reads, reconciles and rewrites files.
type Updater struct {
	engine  Reconciler
	dryRun  bool
	workers int
	logger  *slog.Logger
}

// New creates an Updater around engine.
func New(engine Reconciler, opts Options) *Updater {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Updater{
		engine:  engine,
		dryRun:  opts.DryRun,
		workers: workers,
		logger:  logger,
	}
}

// UpdateFile reconciles one file and, unless this is a dry run, writes the
// result back when it changed. Files that look binary or hold unresolved
// merge conflicts are skipped without consulting the engine.
func (u *Updater) UpdateFile(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path}

	// write through symlinks rather than replacing them
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		out.Err = err
		return out
	}
	info, err := os.Stat(target)
	if err != nil {
		out.Err = err
		return out
	}
	if !info.Mode().IsRegular() {
		out.Err = fmt.Errorf("%s: not a regular file", path)
		return out
	}

	content, err := os.ReadFile(target)
	if err != nil {
		out.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return out
	}
	out.Before = content

	switch {
	case isBinary(content):
		out.Result = skipped(path, content, ReasonBinary)
		return out
	case git.HasConflictMarkers(content):
		out.Result = skipped(path, content, ReasonConflict)
		return out
	}

	res, err := u.engine.Reconcile(ctx, path, content)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res

	for _, w := range res.Warnings {
		u.logger.Debug(w.Message, "path", path, "kind", w.Kind.String(), "error", w.Err)
	}

	if res.Status != reconcile.StatusUpdated || u.dryRun {
		return out
	}
	if err := writeAtomic(target, res.Content, info.Mode().Perm()); err != nil {
		out.Err = fmt.Errorf("failed to write %s: %w", path, err)
		return out
	}
	out.Written = true
	return out
}

func skipped(path string, content []byte, reason string) *reconcile.Result {
	return &reconcile.Result{
		Path:    path,
		Status:  reconcile.StatusSkipped,
		Reason:  reason,
		Content: content,
	}
}

func isBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}

type indexedOutcome struct {
	index   int
	outcome Outcome
}

// Run updates paths with at most Options.Workers files in flight.
//
// Paths are cleaned and de-duplicated first. A failure in one file never
// affects another. When ctx is cancelled no new files are started and the
// remaining ones are reported with the context error; files already in
// flight run to completion. onOutcome, if set, is called from a single
// goroutine as each file finishes.
//
// Outcomes are returned in the order of the de-duplicated paths.
func (u *Updater) Run(ctx context.Context, paths []string, onOutcome func(Outcome)) ([]Outcome, Summary) {
	paths = Dedupe(paths)
	outcomes := make([]Outcome, len(paths))

	var summary Summary
	results := make(chan indexedOutcome, u.workers)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range results {
			outcomes[r.index] = r.outcome
			summary.add(r.outcome)
			if onOutcome != nil {
				onOutcome(r.outcome)
			}
		}
	}()

	// a plain Group: one file's error must not cancel its siblings
	var g errgroup.Group
	g.SetLimit(u.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results <- indexedOutcome{i, Outcome{Path: path, Err: err}}
				return nil
			}
			o := u.UpdateFile(context.WithoutCancel(ctx), path)
			if o.Err != nil {
				u.logger.Debug("file failed", "path", path, "error", o.Err)
			}
			results <- indexedOutcome{i, o}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-collected

	return outcomes, summary
}

// Dedupe cleans paths and drops repeats, keeping first occurrences. Paths
// naming the same file through different relative forms, or through a
// symlink, count as repeats, since UpdateFile writes through symlinks.
func Dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if target, err := filepath.EvalSymlinks(key); err == nil {
			key = target
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// IsCancelled reports whether an outcome was never processed because the
// run was cancelled.
func IsCancelled(o Outcome) bool {
	return errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded)
}
