package vcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("git directory from subdir", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
		sub := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0755))

		typ, found, err := Detect(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, VCSTypeGit, typ)
		assert.Equal(t, root, found)
	})

	t.Run("git file for worktrees", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: /elsewhere\n"), 0644))

		typ, _, err := Detect(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, VCSTypeGit, typ)
	})

	t.Run("jj only", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".jj"), 0755))

		typ, _, err := Detect(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, VCSTypeJJ, typ)
	})

	t.Run("colocated jj is git", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".jj"), 0755))
		require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))

		typ, _, err := Detect(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, VCSTypeGit, typ)
	})
}

func TestNewHistoryJJOnly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".jj"), 0755))

	_, err := NewHistory(context.Background(), Config{WorkingDir: root})
	assert.True(t, errors.Is(err, ErrNotImplemented))
}

func TestNewHistoryGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	root := t.TempDir()
	cmd := exec.Command("git", "init", "-q")
	cmd.Dir = root
	require.NoError(t, cmd.Run())

	h, err := NewHistory(context.Background(), Config{WorkingDir: root, Type: VCSTypeAuto})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, h.Root())
}

func TestNewHistoryUnknownType(t *testing.T) {
	_, err := NewHistory(context.Background(), Config{WorkingDir: t.TempDir(), Type: "svn"})
	assert.Error(t, err)
}
