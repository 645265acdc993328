package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/copyrighter/internal/reconcile"
	"github.com/steveyegge/copyrighter/internal/updater"
	"github.com/steveyegge/copyrighter/internal/years"
)

func init() {
	color.NoColor = true
}

func TestPrinterOutcome(t *testing.T) {
	tests := []struct {
		name    string
		dryRun  bool
		outcome updater.Outcome
		want    string
	}{
		{
			name: "added",
			outcome: updater.Outcome{Path: "a.go", Result: &reconcile.Result{
				Status: reconcile.StatusUpdated, Years: years.NewSet(2019, 2020, 2022),
			}},
			want: "✓ a.go (added, 2019-2020, 2022)\n",
		},
		{
			name:   "replaced dry run",
			dryRun: true,
			outcome: updater.Outcome{Path: "a.go", Result: &reconcile.Result{
				Status: reconcile.StatusUpdated, Years: years.NewSet(2021), Replaced: true,
			}},
			want: "✓ a.go (would be updated, 2021)\n",
		},
		{
			name:    "unchanged",
			outcome: updater.Outcome{Path: "b.go", Result: &reconcile.Result{Status: reconcile.StatusUnchanged}},
			want:    "· b.go (up to date)\n",
		},
		{
			name: "skipped with warning",
			outcome: updater.Outcome{Path: "c.go", Result: &reconcile.Result{
				Status: reconcile.StatusSkipped,
				Reason: reconcile.ReasonNoYears,
				Warnings: []reconcile.Warning{
					{Kind: reconcile.WarnNoHistory, Message: "no revision history"},
				},
			}},
			want: "- c.go (no years available)\n  ⚠ no revision history\n",
		},
		{
			name:    "error",
			outcome: updater.Outcome{Path: "d.png", Err: errors.New("boom")},
			want:    "✗ d.png: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newPrinter(&buf, tt.dryRun, false).outcome(tt.outcome)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestPrinterDiff(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf, false, true).outcome(updater.Outcome{
		Path:   "a.go",
		Before: []byte("package a\n"),
		Result: &reconcile.Result{
			Status:  reconcile.StatusUpdated,
			Years:   years.NewSet(2020),
			Content: []byte("// Copyright 2020 Acme\n\npackage a\n"),
		},
	})

	out := buf.String()
	assert.Contains(t, out, "--- a/a.go")
	assert.Contains(t, out, "+++ b/a.go")
	assert.Contains(t, out, "+// Copyright 2020 Acme\n")
	assert.Contains(t, out, " package a\n")
}

func TestPrinterSummary(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf, false, false).summary(updater.Summary{Updated: 2, Unchanged: 3, Skipped: 1, Errored: 0})
	assert.Equal(t, "\n2 updated, 3 unchanged, 1 skipped, 0 errored\n", buf.String())

	buf.Reset()
	newPrinter(&buf, true, false).summary(updater.Summary{Updated: 1})
	assert.Equal(t, "\n[dry run] 1 updated, 0 unchanged, 0 skipped, 0 errored\n", buf.String())
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, unifiedDiff("a.go", []byte("x\n"), []byte("x\n")))

	diff := unifiedDiff("a.go", []byte("a\nb\n"), []byte("a\nc\n"))
	assert.Contains(t, diff, "-b\n")
	assert.Contains(t, diff, "+c\n")
}

func TestColorDiffPassesThroughWithoutColor(t *testing.T) {
	p := newPrinter(&bytes.Buffer{}, false, true)
	diff := "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-a\n+b\n"
	assert.Equal(t, diff, p.colorDiff(diff))
}
