// Command copyrighter updates the copyright notices of files from their
// git history.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// errFilesFailed is returned when at least one file errored. The per-file
// errors have already been printed.
var errFilesFailed = errors.New("some files could not be updated")

// options holds the command-line flags of the root command.
type options struct {
	organization   string
	ignoreCommits  []string
	ignoreRevsFile string
	dryRun         bool
	diff           bool
	workers        int
	configPath     string
	symbol         bool
	dateField      string
	noTrim         bool
	verbose        bool
	noColor        bool
	all            bool
	changed        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "copyrighter -o <organization> [flags] [file...]",
		Short: "Update copyright notices from git history",
		Long: `Update the copyright notice of each file so that it names the organization
and every year the file was modified in, as recorded by git.

Years already present in a notice are kept and merged with the years from
history, then written as ranges ("2018-2020, 2022"). Files without a notice
get one at the top, after any shebang or XML prolog. Only the notice is
rewritten; every other byte of the file is left alone.

Settings are read from .copyrighter.yaml at the repository top (or --config),
then COPYRIGHTER_* environment variables, then flags.

Examples:
  copyrighter -o "Acme Corp" main.go util.go
  copyrighter -o "Acme Corp" --all            # every tracked file
  copyrighter -o "Acme Corp" --changed -n     # preview files with local changes
  git ls-files '*.go' | xargs copyrighter -o "Acme Corp" -i 1a2b3c4`,
		// file arguments, not subcommand names
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.organization, "organization", "o", "", "organization claiming the copyright")
	flags.StringSliceVarP(&opts.ignoreCommits, "ignore-commits", "i", nil, "commits whose changes are ignored (comma-separated commit-ish)")
	flags.StringVar(&opts.ignoreRevsFile, "ignore-revs-file", "", "file of commits to ignore (default .git-blame-ignore-revs if present)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "report changes without writing files")
	flags.BoolVar(&opts.diff, "diff", false, "print a unified diff of each change")
	flags.IntVarP(&opts.workers, "workers", "j", 0, "files processed concurrently (default number of CPUs)")
	flags.StringVar(&opts.configPath, "config", "", "config file (default .copyrighter.yaml at the repository top)")
	flags.BoolVar(&opts.symbol, "symbol", false, `write "Copyright ©"`)
	flags.StringVar(&opts.dateField, "date", "", "commit date to use: author or committer")
	flags.BoolVar(&opts.noTrim, "no-trim", false, "keep notice years later than the first commit")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&opts.all, "all", false, "update every tracked file with a known comment style")
	flags.BoolVar(&opts.changed, "changed", false, "update files with uncommitted changes")
	cmd.MarkFlagsMutuallyExclusive("all", "changed")

	cmd.AddCommand(newStylesCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
