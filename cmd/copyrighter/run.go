package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/copyrighter/internal/comment"
	"github.com/steveyegge/copyrighter/internal/config"
	"github.com/steveyegge/copyrighter/internal/git"
	"github.com/steveyegge/copyrighter/internal/logging"
	"github.com/steveyegge/copyrighter/internal/notice"
	"github.com/steveyegge/copyrighter/internal/reconcile"
	"github.com/steveyegge/copyrighter/internal/updater"
	"github.com/steveyegge/copyrighter/internal/vcs"
)

// defaultIgnoreRevsFile is picked up from the repository top when no
// ignore-revs file is configured.
const defaultIgnoreRevsFile = ".git-blame-ignore-revs"

func runUpdate(cmd *cobra.Command, opts *options, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 && !opts.all && !opts.changed {
		return errors.New("no files given (pass files, --all or --changed)")
	}

	_, root, err := vcs.Detect(ctx, "")
	if err != nil {
		return fmt.Errorf("copyrighter must run inside a repository: %w", err)
	}

	cfg, err := config.Load(opts.configPath, root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Organization == "" {
		return fmt.Errorf("%w (use -o, COPYRIGHTER_ORGANIZATION or organization in %s)",
			notice.ErrEmptyOrganization, config.FileName)
	}

	if opts.noColor {
		color.NoColor = true
	}
	logger := logging.New(cmd.ErrOrStderr(), logging.Options{
		Verbose: opts.verbose,
		NoColor: color.NoColor,
	})
	logger.Debug("configuration", "config", cfg.String(), "root", root)

	ignoreRevs, err := loadIgnoreRevs(cfg.IgnoreRevsFile, root)
	if err != nil {
		return err
	}

	dateField, err := git.ParseDateField(cfg.DateField)
	if err != nil {
		return err
	}
	history, err := vcs.NewHistory(ctx, vcs.Config{
		Type:       vcs.VCSTypeAuto,
		WorkingDir: root,
		Git: git.HistoryOptions{
			DateField:     dateField,
			IgnoreCommits: cfg.IgnoreCommits,
			IgnoreRevs:    ignoreRevs,
			Concurrency:   cfg.GitConcurrency,
			Logger:        logger,
		},
	})
	if err != nil {
		return err
	}

	historyStart := 0
	if cfg.TrimParsedYears {
		historyStart, err = history.FirstCommitYear(ctx)
		switch {
		case errors.Is(err, git.ErrNoHistory):
			historyStart = 0
		case err != nil:
			return fmt.Errorf("failed to find first commit: %w", err)
		}
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	engine, err := reconcile.NewEngine(history, cfg.Organization, reconcile.Options{
		Styles:       registry,
		HistoryStart: historyStart,
		MaxScanLines: cfg.MaxHeaderLines,
		Render:       cfg.RenderOptions(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	paths, err := resolvePaths(ctx, opts, args, history, registry)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No files to update")
		return nil
	}
	logger.Debug("starting", "files", len(paths), "workers", cfg.Workers, "dry_run", opts.dryRun)

	p := newPrinter(out, opts.dryRun, opts.diff)
	_, summary := updater.New(engine, updater.Options{
		DryRun:  opts.dryRun,
		Workers: cfg.Workers,
		Logger:  logger,
	}).Run(ctx, paths, p.outcome)
	p.summary(summary)

	if err := ctx.Err(); err != nil {
		logger.Warn("interrupted; remaining files were not processed", "error", err)
	}
	if summary.Failed() {
		return errFilesFailed
	}
	return nil
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("organization") {
		cfg.Organization = opts.organization
	}
	if flags.Changed("ignore-commits") {
		cfg.IgnoreCommits = append(cfg.IgnoreCommits, opts.ignoreCommits...)
	}
	if flags.Changed("ignore-revs-file") {
		cfg.IgnoreRevsFile = opts.ignoreRevsFile
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("symbol") {
		cfg.Symbol = opts.symbol
	}
	if flags.Changed("date") {
		cfg.DateField = opts.dateField
	}
	if flags.Changed("no-trim") {
		cfg.TrimParsedYears = !opts.noTrim
	}
}

// loadIgnoreRevs reads the configured ignore-revs file, or the default one
// at the repository top if it exists.
func loadIgnoreRevs(path, root string) ([]string, error) {
	if path == "" {
		path = filepath.Join(root, defaultIgnoreRevsFile)
		if _, err := os.Stat(path); err != nil {
			return nil, nil
		}
	}
	revs, err := git.ReadIgnoreRevsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore-revs file: %w", err)
	}
	return revs, nil
}

// resolvePaths returns the files to update: the arguments, plus the tracked
// or changed files for --all and --changed. Listed files are kept only if
// they have a known comment style; explicit arguments are always kept so an
// unsupported type is reported.
func resolvePaths(ctx context.Context, opts *options, args []string, history vcs.History, registry *comment.Registry) ([]string, error) {
	paths := append([]string(nil), args...)
	if !opts.all && !opts.changed {
		return paths, nil
	}

	gh, ok := history.(*git.History)
	if !ok {
		return nil, fmt.Errorf("--all and --changed need a git repository: %w", vcs.ErrNotImplemented)
	}

	var listed []string
	if opts.all {
		files, err := gh.Git().ListFiles(ctx, gh.Root())
		if err != nil {
			return nil, err
		}
		listed = files
	} else {
		status, err := gh.Git().GetStatus(ctx, gh.Root())
		if err != nil {
			return nil, err
		}
		listed = status.Changed()
	}

	for _, rel := range listed {
		if _, err := registry.Lookup(rel); err != nil {
			continue
		}
		path := filepath.Join(gh.Root(), filepath.FromSlash(rel))
		// submodules and files deleted from the working tree
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}
