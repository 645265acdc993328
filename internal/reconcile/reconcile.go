// Package reconcile merges a file's revision-history years with the years of
// its existing copyright notice and rewrites the notice to match.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/steveyegge/copyrighter/internal/comment"
	"github.com/steveyegge/copyrighter/internal/git"
	"github.com/steveyegge/copyrighter/internal/notice"
	"github.com/steveyegge/copyrighter/internal/years"
)

// History reports the years in which a file was modified.
//
// Implementations return an error wrapping git.ErrNoHistory when the file
// has no recorded history (untracked, or the repository has no commits).
type History interface {
	YearsModified(ctx context.Context, path string) (years.Set, error)
}

// Status is the terminal state of reconciling one file.
type Status int

const (
	// StatusUpdated means the notice was inserted or rewritten
	StatusUpdated Status = iota + 1
	// StatusUnchanged means the file already carried the right notice
	StatusUnchanged
	// StatusSkipped means the file was left alone; see Result.Reason
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// WarningKind classifies non-fatal problems found while reconciling.
type WarningKind int

const (
	// WarnNoHistory means history had nothing for the file
	WarnNoHistory WarningKind = iota + 1
	// WarnYearParse means the existing notice's years could not be parsed
	WarnYearParse
)

func (k WarningKind) String() string {
	switch k {
	case WarnNoHistory:
		return "no-history"
	case WarnYearParse:
		return "year-parse"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a non-fatal problem with one file.
type Warning struct {
	Kind    WarningKind
	Message string
	Err     error
}

func (w Warning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("%s: %v", w.Message, w.Err)
	}
	return w.Message
}

// Reason reported for files with neither history nor a parseable notice.
const ReasonNoYears = "no years available"

// Result is the outcome of reconciling one file.
type Result struct {
	Path   string
	Status Status

	// Reason explains StatusSkipped
	Reason string

	// Content is the file's new content; equal to the input unless
	// Status is StatusUpdated
	Content []byte

	// Years is the merged year set written to the notice
	Years years.Set

	// Replaced is true when an existing notice was rewritten rather than
	// a new one inserted
	Replaced bool

	// Style is the comment style of the written notice
	Style comment.Style

	Warnings []Warning
}

func (r *Result) warn(kind WarningKind, msg string, err error) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Message: msg, Err: err})
}

// Options configures an Engine.
type Options struct {
	// Styles maps paths to comment syntaxes; nil uses the built-in table
	Styles *comment.Registry

	// HistoryStart is the year of the repository's first commit. When set,
	// parsed years after it are dropped for files that have history.
	HistoryStart int

	// MaxScanLines bounds the notice search; see notice.ParseOptions
	MaxScanLines int

	// Render controls the statement text
	Render notice.RenderOptions

	// Logger receives per-file debug output; nil discards
	Logger *slog.Logger
}

// Engine reconciles files against one organization and history source.
// It is safe for concurrent use if the History is.
type Engine struct {
	history History
	org     string
	opts    Options
	logger  *slog.Logger
}

// NewEngine returns an engine for org. It fails with
// notice.ErrEmptyOrganization when org is blank.
func NewEngine(history History, org string, opts Options) (*Engine, error) {
	org = strings.TrimSpace(org)
	if org == "" {
		return nil, notice.ErrEmptyOrganization
	}
	if history == nil {
		return nil, fmt.Errorf("history source is required")
	}
	if opts.Styles == nil {
		opts.Styles = comment.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		history: history,
		org:     org,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Reconcile computes the new content of the file at path.
//
// Errors are fatal for this file only: an unsupported file type, a history
// failure other than missing history, or a notice that cannot be rendered
// into the file's comment style.
func (e *Engine) Reconcile(ctx context.Context, path string, content []byte) (*Result, error) {
	syn, err := e.opts.Styles.Lookup(path)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: path, Content: content}

	hist, err := e.history.YearsModified(ctx, path)
	switch {
	case errors.Is(err, git.ErrNoHistory):
		hist = years.NewSet()
		res.warn(WarnNoHistory, "no revision history", nil)
	case err != nil:
		return nil, fmt.Errorf("failed to read history for %s: %w", path, err)
	}
	hasHistory := hist.Len() > 0

	text := string(content)
	existing := notice.Parse(text, syn, notice.ParseOptions{
		MaxLines: e.opts.MaxScanLines,
		Rights:   e.opts.Render.Rights,
	})

	parsed := years.NewSet()
	if existing != nil {
		if existing.YearsErr != nil {
			res.warn(WarnYearParse, fmt.Sprintf("ignoring years on line %d", existing.Line), existing.YearsErr)
		} else {
			parsed = existing.Years
		}
		if hasHistory && e.opts.HistoryStart > 0 {
			start := e.opts.HistoryStart
			parsed = parsed.Filter(func(y int) bool { return y <= start })
		}
	}

	merged := years.Merge(hist, parsed)
	res.Years = merged
	if merged.Len() == 0 {
		res.Status = StatusSkipped
		res.Reason = ReasonNoYears
		return res, nil
	}

	var out string
	if existing != nil {
		stmt, err := notice.Statement(e.org, merged, e.opts.Render)
		if err != nil {
			return nil, err
		}
		if err := notice.CheckDelimiters(stmt, existing.Style); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = text[:existing.Span.Start] + stmt + text[existing.Span.End:]
		res.Replaced = true
		res.Style = existing.Style
	} else {
		style := syn.Default()
		rendered, err := notice.Render(e.org, merged, style, e.opts.Render)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = insertNotice(text, rendered, syn)
		res.Style = style
	}

	e.logger.Debug("reconciled",
		"path", path,
		"history", hist.String(),
		"parsed", parsed.String(),
		"years", years.Format(merged),
		"replaced", res.Replaced)

	if out == text {
		res.Status = StatusUnchanged
		return res, nil
	}
	res.Status = StatusUpdated
	res.Content = []byte(out)
	return res, nil
}

// insertNotice places rendered on its own line after any preamble, using
// the file's line ending. A blank line separates it from whatever follows,
// so it never merges into an existing comment such as a package doc.
func insertNotice(text, rendered string, syn comment.Syntax) string {
	eol := lineEnding(text)
	at := notice.InsertionPoint(text, syn)
	head, rest := text[:at], text[at:]

	var b strings.Builder
	b.Grow(len(text) + len(rendered) + 2*len(eol))
	b.WriteString(head)
	if head != "" && !strings.HasSuffix(head, "\n") {
		b.WriteString(eol)
	}
	b.WriteString(rendered)
	b.WriteString(eol)
	if startsWithText(rest) {
		b.WriteString(eol)
	}
	b.WriteString(rest)
	return b.String()
}

func lineEnding(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// startsWithText reports whether the first line of text is not blank.
func startsWithText(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(first) != ""
}
