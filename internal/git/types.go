package git

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoHistory is returned when a file has no commits: it is untracked, or
// the repository has no commits yet.
var ErrNoHistory = errors.New("no revision history")

// DateField selects which commit timestamp counts as the modification date.
type DateField string

const (
	// DateAuthor uses the author date (%ad), which survives rebases
	DateAuthor DateField = "author"
	// DateCommitter uses the committer date (%cd)
	DateCommitter DateField = "committer"
)

// ParseDateField validates a date field name. Empty means DateAuthor.
func ParseDateField(s string) (DateField, error) {
	switch DateField(strings.ToLower(strings.TrimSpace(s))) {
	case "", DateAuthor:
		return DateAuthor, nil
	case DateCommitter:
		return DateCommitter, nil
	}
	return "", fmt.Errorf("invalid date field %q (want %q or %q)", s, DateAuthor, DateCommitter)
}

// placeholder returns the git log format placeholder for the field.
func (d DateField) placeholder() string {
	if d == DateCommitter {
		return "%cd"
	}
	return "%ad"
}

// HistoryOptions configures NewHistory.
type HistoryOptions struct {
	// DateField selects author or committer dates; empty means author
	DateField DateField

	// IgnoreCommits are commit-ish values whose changes do not count.
	// Each must resolve to a commit.
	IgnoreCommits []string

	// IgnoreRevs are revisions read from an ignore-revs file. Entries that
	// do not resolve are logged and skipped.
	IgnoreRevs []string

	// Concurrency caps concurrent git processes; <= 0 means 8
	Concurrency int

	// Logger receives git invocations at debug level; nil discards
	Logger *slog.Logger
}

// Status lists the paths with uncommitted changes in a working tree.
type Status struct {
	// Modified files (staged or unstaged)
	Modified []string

	// Untracked files
	Untracked []string

	// Deleted files
	Deleted []string

	// Added files (staged)
	Added []string

	// Renamed files, by their new path
	Renamed []string

	// HasChanges is true if any changes exist
	HasChanges bool
}

// Changed returns the paths that still exist and carry changes: modified,
// added, renamed and untracked files, in that order.
func (s *Status) Changed() []string {
	var out []string
	out = append(out, s.Modified...)
	out = append(out, s.Added...)
	out = append(out, s.Renamed...)
	out = append(out, s.Untracked...)
	return out
}
