package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/steveyegge/copyrighter/internal/reconcile"
	"github.com/steveyegge/copyrighter/internal/updater"
)

// printer writes one status line per file and the final summary.
type printer struct {
	w      io.Writer
	dryRun bool
	diff   bool

	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	red    func(a ...interface{}) string
	gray   func(a ...interface{}) string
	cyan   func(a ...interface{}) string
}

func newPrinter(w io.Writer, dryRun, diff bool) *printer {
	return &printer{
		w:      w,
		dryRun: dryRun,
		diff:   diff,
		green:  color.New(color.FgGreen).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		gray:   color.New(color.FgHiBlack).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
	}
}

// outcome prints the status of one file.
func (p *printer) outcome(o updater.Outcome) {
	if o.Err != nil {
		fmt.Fprintf(p.w, "%s %s: %v\n", p.red("✗"), o.Path, o.Err)
		return
	}

	res := o.Result
	switch res.Status {
	case reconcile.StatusUpdated:
		verb := "updated"
		if !res.Replaced {
			verb = "added"
		}
		if p.dryRun {
			verb = "would be " + verb
		}
		fmt.Fprintf(p.w, "%s %s %s\n", p.green("✓"), o.Path, p.gray(fmt.Sprintf("(%s, %s)", verb, res.Years)))
	case reconcile.StatusUnchanged:
		fmt.Fprintf(p.w, "%s %s %s\n", p.gray("·"), o.Path, p.gray("(up to date)"))
	case reconcile.StatusSkipped:
		fmt.Fprintf(p.w, "%s %s %s\n", p.yellow("-"), o.Path, p.yellow("("+res.Reason+")"))
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(p.w, "  %s %s\n", p.yellow("⚠"), w)
	}

	if p.diff && res.Status == reconcile.StatusUpdated {
		fmt.Fprint(p.w, p.colorDiff(unifiedDiff(o.Path, o.Before, res.Content)))
	}
}

// summary prints the totals line.
func (p *printer) summary(s updater.Summary) {
	prefix := ""
	if p.dryRun {
		prefix = p.cyan("[dry run]") + " "
	}
	errored := fmt.Sprintf("%d errored", s.Errored)
	if s.Errored > 0 {
		errored = p.red(errored)
	}
	fmt.Fprintf(p.w, "\n%s%s, %d unchanged, %d skipped, %s\n",
		prefix, p.green(fmt.Sprintf("%d updated", s.Updated)), s.Unchanged, s.Skipped, errored)
}

// colorDiff colors added and removed lines of a unified diff.
func (p *printer) colorDiff(diff string) string {
	if color.NoColor {
		return diff
	}
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		body := strings.TrimSuffix(line, "\n")
		b.WriteString(p.colorDiffLine(body))
		b.WriteString(line[len(body):])
	}
	return b.String()
}

func (p *printer) colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return line
	case strings.HasPrefix(line, "+"):
		return p.green(line)
	case strings.HasPrefix(line, "-"):
		return p.red(line)
	case strings.HasPrefix(line, "@@"):
		return p.cyan(line)
	}
	return line
}

// unifiedDiff returns the unified diff between two versions of path, or ""
// when they are equal.
func unifiedDiff(path string, before, after []byte) string {
	a, b := string(before), string(after)
	if a == b {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), a, b)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+path, "b/"+path, a, edits))
}
