package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"golang.org/x/sync/semaphore"
)

const defaultConcurrency = 8

// Git runs the git CLI. At most a fixed number of git processes run at once.
type Git struct {
	// gitPath is the path to the git executable
	gitPath string

	sem    *semaphore.Weighted
	logger *slog.Logger
}

// NewGit creates a new Git instance.
// It verifies that git is available on the system.
func NewGit(ctx context.Context, concurrency int, logger *slog.Logger) (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}

	// Verify git works
	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}

	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Git{
		gitPath: gitPath,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		logger:  logger,
	}, nil
}

// output runs git in dir and returns its stdout. On failure the error
// carries git's stderr.
func (g *Git) output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.sem.Release(1)

	g.logger.Debug("git", "dir", dir, "args", args)

	cmd := exec.CommandContext(ctx, g.gitPath, append([]string{"-C", dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// RepoRoot returns the top-level directory of the work tree containing dir.
func (g *Git) RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := g.output(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed in %s: %w", dir, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// HasCommits reports whether HEAD points at a commit.
func (g *Git) HasCommits(ctx context.Context, repoPath string) bool {
	_, err := g.output(ctx, repoPath, "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	return err == nil
}

// ResolveCommit returns the full SHA of the commit commitish names.
func (g *Git) ResolveCommit(ctx context.Context, repoPath, commitish string) (string, error) {
	commitish = strings.TrimSpace(commitish)
	if commitish == "" || strings.HasPrefix(commitish, "-") {
		return "", fmt.Errorf("invalid commit %q", commitish)
	}
	out, err := g.output(ctx, repoPath, "rev-parse", "--verify", "--quiet", commitish+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed to resolve %q in %s: %w", commitish, repoPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetStatus returns the git status of the repository.
// Paths are relative to the repository top level.
func (g *Git) GetStatus(ctx context.Context, repoPath string) (*Status, error) {
	// -z keeps paths verbatim; renames are followed by their source path
	out, err := g.output(ctx, repoPath, "status", "--porcelain", "-z", "--untracked-files=all")
	if err != nil {
		return nil, fmt.Errorf("git status failed in %s: %w", repoPath, err)
	}
	return parseStatus(out), nil
}

func parseStatus(out []byte) *Status {
	status := &Status{}

	entries := strings.Split(string(out), "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 4 {
			continue
		}

		statusCode := entry[0:2]
		filePath := entry[3:]

		// Parse status codes: XY where X=index, Y=working tree
		// Reference: https://git-scm.com/docs/git-status#_short_format
		switch {
		case statusCode == "??":
			status.Untracked = append(status.Untracked, filePath)
		case statusCode[0] == 'R' || statusCode[0] == 'C':
			status.Renamed = append(status.Renamed, filePath)
			i++ // skip the source path
		case statusCode[0] == 'D' || statusCode[1] == 'D':
			status.Deleted = append(status.Deleted, filePath)
		case statusCode[0] == 'A':
			status.Added = append(status.Added, filePath)
		default:
			// modified, type changes, unmerged
			status.Modified = append(status.Modified, filePath)
		}

		status.HasChanges = true
	}
	return status
}

// ListFiles returns the files tracked in the repository, relative to its
// top level.
func (g *Git) ListFiles(ctx context.Context, repoPath string) ([]string, error) {
	out, err := g.output(ctx, repoPath, "ls-files", "-z", "--full-name", "--", ":/")
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed in %s: %w", repoPath, err)
	}

	var files []string
	for _, f := range strings.Split(string(out), "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// conflict markers, each at the start of a line
var conflictMarkers = [][]byte{[]byte("<<<<<<< "), []byte(">>>>>>> ")}

// HasConflictMarkers reports whether content contains unresolved merge
// conflict markers. Both an opening and a closing marker must be present.
func HasConflictMarkers(content []byte) bool {
	found := make([]bool, len(conflictMarkers))
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for scanner.Scan() {
		line := scanner.Bytes()
		for i, marker := range conflictMarkers {
			if bytes.HasPrefix(line, marker) || bytes.Equal(line, bytes.TrimSpace(marker)) {
				found[i] = true
			}
		}
	}
	return found[0] && found[1]
}
