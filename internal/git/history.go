package git

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/steveyegge/copyrighter/internal/years"
)

// History answers which years a file was modified in, from git log.
// It is safe for concurrent use.
type History struct {
	git        *Git
	root       string
	dateField  DateField
	ignore     map[string]bool
	hasCommits bool
}

// NewHistory opens the repository containing dir. Ignored commits are
// resolved to full SHAs up front, so a typo fails here rather than
// silently ignoring nothing.
func NewHistory(ctx context.Context, dir string, opts HistoryOptions) (*History, error) {
	g, err := NewGit(ctx, opts.Concurrency, opts.Logger)
	if err != nil {
		return nil, err
	}

	root, err := g.RepoRoot(ctx, dir)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	dateField := opts.DateField
	if dateField == "" {
		dateField = DateAuthor
	}

	h := &History{
		git:        g,
		root:       root,
		dateField:  dateField,
		ignore:     make(map[string]bool),
		hasCommits: g.HasCommits(ctx, root),
	}

	for _, c := range opts.IgnoreCommits {
		sha, err := g.ResolveCommit(ctx, root, c)
		if err != nil {
			return nil, fmt.Errorf("invalid ignored commit: %w", err)
		}
		h.ignore[sha] = true
	}
	for _, c := range opts.IgnoreRevs {
		sha, err := g.ResolveCommit(ctx, root, c)
		if err != nil {
			g.logger.Warn("skipping unknown revision from ignore-revs file", "rev", c, "error", err)
			continue
		}
		h.ignore[sha] = true
	}

	return h, nil
}

// Root returns the repository's top-level directory.
func (h *History) Root() string { return h.root }

// Git returns the underlying git runner.
func (h *History) Git() *Git { return h.git }

// Ignored returns the number of distinct commits being ignored.
func (h *History) Ignored() int { return len(h.ignore) }

// YearsModified returns the years of the commits that touched path,
// following renames and copies. path may be absolute or relative to the
// working directory. Files without commits yield an error wrapping
// ErrNoHistory.
func (h *History) YearsModified(ctx context.Context, path string) (years.Set, error) {
	if !h.hasCommits {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHistory)
	}

	rel, err := h.relPath(path)
	if err != nil {
		return nil, err
	}

	out, err := h.git.output(ctx, h.root, "log", "--follow", "-M", "-C",
		"--format=%H "+h.dateField.placeholder(), "--date=short", "--", rel)
	if err != nil {
		return nil, fmt.Errorf("git log failed for %s: %w", path, err)
	}

	ys := years.NewSet()
	commits := 0
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		sha, date, ok := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		if !ok {
			continue
		}
		commits++
		if h.ignore[sha] {
			continue
		}
		year, err := yearOf(date)
		if err != nil {
			return nil, fmt.Errorf("unexpected git log output for %s: %w", path, err)
		}
		ys.Add(year)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse git log: %w", err)
	}

	if commits == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHistory)
	}
	return ys, nil
}

// FirstCommitYear returns the year of the earliest root commit reachable
// from HEAD.
func (h *History) FirstCommitYear(ctx context.Context) (int, error) {
	if !h.hasCommits {
		return 0, ErrNoHistory
	}

	out, err := h.git.output(ctx, h.root, "log", "--max-parents=0",
		"--format="+h.dateField.placeholder(), "--date=short", "HEAD")
	if err != nil {
		return 0, fmt.Errorf("git log failed in %s: %w", h.root, err)
	}

	first := 0
	for _, line := range strings.Fields(string(out)) {
		year, err := yearOf(line)
		if err != nil {
			return 0, fmt.Errorf("unexpected git log output: %w", err)
		}
		if first == 0 || year < first {
			first = year
		}
	}
	if first == 0 {
		return 0, ErrNoHistory
	}
	return first, nil
}

// relPath makes path relative to the repository root.
func (h *History) relPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	// resolve the directory so /tmp and /private/tmp style aliases agree
	// with the root git reports; the file itself may not exist
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	rel, err := filepath.Rel(h.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", path, h.root)
	}
	return filepath.ToSlash(rel), nil
}

// yearOf extracts the year from a YYYY-MM-DD date.
func yearOf(date string) (int, error) {
	y, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(y)
	if err != nil || year < 1 || year > years.MaxYear {
		return 0, fmt.Errorf("bad date %q", date)
	}
	return year, nil
}

// ReadIgnoreRevsFile reads a .git-blame-ignore-revs style file: one
// revision per line, with blank lines and "#" comments ignored.
func ReadIgnoreRevsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var revs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			revs = append(revs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return revs, nil
}
