// Package config holds the copyrighter configuration: defaults, the
// .copyrighter.yaml file, and COPYRIGHTER_* environment overrides.
package config

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/steveyegge/copyrighter/internal/comment"
	"github.com/steveyegge/copyrighter/internal/git"
	"github.com/steveyegge/copyrighter/internal/notice"
)

// Config holds configuration for a copyrighter run
type Config struct {
	// Organization is the copyright holder written into every notice
	Organization string

	// RightsStatement is appended after the organization
	// Default: "All rights reserved.", empty disables it
	RightsStatement string

	// Symbol writes "Copyright ©"
	// Default: false
	Symbol bool

	// IgnoreCommits are commit-ish values whose changes don't count
	IgnoreCommits []string

	// IgnoreRevsFile lists more commits to ignore, one per line.
	// Empty means .git-blame-ignore-revs at the repository top, if present.
	IgnoreRevsFile string

	// Workers is the number of files processed concurrently
	// Default: number of CPUs, Range: 1-256
	Workers int

	// GitConcurrency caps concurrent git processes
	// Default: 8, Range: 1-64
	GitConcurrency int

	// MaxHeaderLines is how many leading lines are searched for a notice
	// Default: 50, Range: 1-1000
	MaxHeaderLines int

	// DateField selects the commit date: "author" or "committer"
	// Default: "author"
	DateField string

	// TrimParsedYears drops notice years after the repository's first
	// commit for files that have history
	// Default: true
	TrimParsedYears bool

	// DefaultStyle is the comment style for unknown file types.
	// Empty makes unknown file types an error.
	DefaultStyle string

	// Extensions maps extensions to comment style names, overriding the
	// built-in table
	Extensions map[string]string
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	workers := runtime.NumCPU()
	if workers > 256 {
		workers = 256
	}
	return Config{
		RightsStatement: notice.DefaultRights,
		Workers:         workers,
		GitConcurrency:  8,
		MaxHeaderLines:  notice.DefaultMaxLines,
		DateField:       string(git.DateAuthor),
		TrimParsedYears: true,
		Extensions:      map[string]string{},
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.Workers < 1 || c.Workers > 256 {
		return fmt.Errorf("workers must be between 1 and 256 (got %d)", c.Workers)
	}
	if c.GitConcurrency < 1 || c.GitConcurrency > 64 {
		return fmt.Errorf("git_concurrency must be between 1 and 64 (got %d)", c.GitConcurrency)
	}
	if c.MaxHeaderLines < 1 || c.MaxHeaderLines > 1000 {
		return fmt.Errorf("max_header_lines must be between 1 and 1000 (got %d)", c.MaxHeaderLines)
	}
	if _, err := git.ParseDateField(c.DateField); err != nil {
		return fmt.Errorf("date_field: %w", err)
	}
	if c.DefaultStyle != "" {
		if _, err := comment.ParseStyle(c.DefaultStyle); err != nil {
			return fmt.Errorf("default_style: %w", err)
		}
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	exts := make([]string, 0, len(c.Extensions))
	for ext, style := range c.Extensions {
		exts = append(exts, ext+"="+style)
	}
	sort.Strings(exts)

	return fmt.Sprintf(
		"Config{Organization: %q, Rights: %q, Symbol: %t, IgnoreCommits: %v, "+
			"IgnoreRevsFile: %q, Workers: %d, GitConcurrency: %d, MaxHeaderLines: %d, "+
			"DateField: %s, TrimParsedYears: %t, DefaultStyle: %q, Extensions: [%s]}",
		c.Organization, c.RightsStatement, c.Symbol, c.IgnoreCommits,
		c.IgnoreRevsFile, c.Workers, c.GitConcurrency, c.MaxHeaderLines,
		c.DateField, c.TrimParsedYears, c.DefaultStyle, strings.Join(exts, ", "),
	)
}

// Registry returns the built-in comment table with the configured
// extension overrides and default style applied.
func (c Config) Registry() (*comment.Registry, error) {
	r := comment.NewRegistry()
	for ext, name := range c.Extensions {
		style, err := comment.ParseStyle(name)
		if err != nil {
			return nil, fmt.Errorf("extensions[%s]: %w", ext, err)
		}
		if err := r.SetExtension(ext, style); err != nil {
			return nil, fmt.Errorf("extensions: %w", err)
		}
	}
	if c.DefaultStyle != "" {
		style, err := comment.ParseStyle(c.DefaultStyle)
		if err != nil {
			return nil, fmt.Errorf("default_style: %w", err)
		}
		r.SetFallback(style)
	}
	return r, nil
}

// RenderOptions returns the notice rendering options.
func (c Config) RenderOptions() notice.RenderOptions {
	return notice.RenderOptions{Symbol: c.Symbol, Rights: c.RightsStatement}
}

// ApplyEnv overrides c from environment variables.
//
// Environment variables:
//   - COPYRIGHTER_ORGANIZATION: Copyright holder
//   - COPYRIGHTER_RIGHTS_STATEMENT: Text after the organization
//   - COPYRIGHTER_SYMBOL: Write "Copyright ©" (default: false)
//   - COPYRIGHTER_IGNORE_COMMITS: Comma-separated commits to ignore
//   - COPYRIGHTER_IGNORE_REVS_FILE: File of commits to ignore
//   - COPYRIGHTER_WORKERS: Files processed concurrently (default: NumCPU)
//   - COPYRIGHTER_GIT_CONCURRENCY: Concurrent git processes (default: 8)
//   - COPYRIGHTER_MAX_HEADER_LINES: Lines searched for a notice (default: 50)
//   - COPYRIGHTER_DATE_FIELD: author or committer (default: author)
//   - COPYRIGHTER_TRIM_PARSED_YEARS: Trust history over notices (default: true)
//   - COPYRIGHTER_DEFAULT_STYLE: Comment style for unknown file types
//
// Returns an error if any environment variable has an invalid value.
func (c *Config) ApplyEnv() error {
	if err := parseEnvString("COPYRIGHTER_ORGANIZATION", &c.Organization); err != nil {
		return err
	}
	if err := parseEnvString("COPYRIGHTER_RIGHTS_STATEMENT", &c.RightsStatement); err != nil {
		return err
	}
	if err := parseEnvBool("COPYRIGHTER_SYMBOL", &c.Symbol); err != nil {
		return err
	}
	if err := parseEnvList("COPYRIGHTER_IGNORE_COMMITS", &c.IgnoreCommits); err != nil {
		return err
	}
	if err := parseEnvString("COPYRIGHTER_IGNORE_REVS_FILE", &c.IgnoreRevsFile); err != nil {
		return err
	}
	if err := parseEnvInt("COPYRIGHTER_WORKERS", &c.Workers); err != nil {
		return err
	}
	if err := parseEnvInt("COPYRIGHTER_GIT_CONCURRENCY", &c.GitConcurrency); err != nil {
		return err
	}
	if err := parseEnvInt("COPYRIGHTER_MAX_HEADER_LINES", &c.MaxHeaderLines); err != nil {
		return err
	}
	if err := parseEnvString("COPYRIGHTER_DATE_FIELD", &c.DateField); err != nil {
		return err
	}
	if err := parseEnvBool("COPYRIGHTER_TRIM_PARSED_YEARS", &c.TrimParsedYears); err != nil {
		return err
	}
	return parseEnvString("COPYRIGHTER_DEFAULT_STYLE", &c.DefaultStyle)
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}

// parseEnvList parses a comma-separated list from an environment variable
func parseEnvList(key string, dest *[]string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = SplitList(value)
	return nil
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
