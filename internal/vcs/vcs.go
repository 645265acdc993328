// Package vcs detects the version control system a directory belongs to
// and opens a history source for it.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steveyegge/copyrighter/internal/git"
	"github.com/steveyegge/copyrighter/internal/years"
)

var (
	// ErrNotImplemented is returned when a VCS backend doesn't support an operation.
	ErrNotImplemented = errors.New("operation not implemented")

	// ErrNoVCSFound is returned when no supported VCS is detected.
	ErrNoVCSFound = errors.New("no supported VCS found")
)

// VCSType represents the type of version control system.
type VCSType string

const (
	// VCSTypeGit represents git version control.
	VCSTypeGit VCSType = "git"

	// VCSTypeJJ represents jujutsu version control.
	VCSTypeJJ VCSType = "jj"

	// VCSTypeAuto enables automatic detection of the VCS type.
	VCSTypeAuto VCSType = "auto"
)

// History is a per-file modification history for one repository.
type History interface {
	// YearsModified returns the years path was changed in.
	YearsModified(ctx context.Context, path string) (years.Set, error)

	// FirstCommitYear returns the year of the repository's first commit.
	FirstCommitYear(ctx context.Context) (int, error)

	// Root returns the repository's top-level directory.
	Root() string
}

// Config holds configuration for opening a history source.
type Config struct {
	// Type specifies the VCS type: "git", "jj", or "auto" (the default).
	Type VCSType

	// WorkingDir is the directory to start from.
	// If empty, the current working directory is used.
	WorkingDir string

	// Git configures the git backend
	Git git.HistoryOptions
}

// Detect walks up from dir looking for a repository and returns its type
// and root. A jujutsu repository colocated with git is reported as git,
// since its history is readable with the git CLI.
func Detect(ctx context.Context, dir string) (VCSType, string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		// .git may be a directory or, for worktrees and submodules, a file
		if exists(filepath.Join(dir, ".git")) {
			return VCSTypeGit, dir, nil
		}
		if isDir(filepath.Join(dir, ".jj")) {
			return VCSTypeJJ, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", ErrNoVCSFound
		}
		dir = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// NewHistory opens the history source for cfg.WorkingDir.
func NewHistory(ctx context.Context, cfg Config) (History, error) {
	workingDir := cfg.WorkingDir
	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	vcsType := cfg.Type
	if vcsType == "" || vcsType == VCSTypeAuto {
		detected, _, err := Detect(ctx, workingDir)
		if err != nil {
			return nil, fmt.Errorf("failed to detect VCS in %s: %w", workingDir, err)
		}
		vcsType = detected
	}

	switch vcsType {
	case VCSTypeGit:
		h, err := git.NewHistory(ctx, workingDir, cfg.Git)
		if err != nil {
			return nil, fmt.Errorf("failed to open git history: %w", err)
		}
		return h, nil
	case VCSTypeJJ:
		return nil, fmt.Errorf("jj history without a colocated git repository: %w", ErrNotImplemented)
	default:
		return nil, fmt.Errorf("unsupported VCS type: %s", vcsType)
	}
}
