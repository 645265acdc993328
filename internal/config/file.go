package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked for at the repository top.
const FileName = ".copyrighter.yaml"

// ConfigFile represents the structure of .copyrighter.yaml
type ConfigFile struct {
	Organization string `yaml:"organization"`

	// Pointer so an explicit empty string can disable the statement
	RightsStatement *string `yaml:"rights_statement"`

	Symbol *bool `yaml:"symbol"`

	IgnoreCommits  []string `yaml:"ignore_commits"`
	IgnoreRevsFile string   `yaml:"ignore_revs_file"`

	Workers        int `yaml:"workers"`
	GitConcurrency int `yaml:"git_concurrency"`
	MaxHeaderLines int `yaml:"max_header_lines"`

	DateField       string `yaml:"date_field"`
	TrimParsedYears *bool  `yaml:"trim_parsed_years"`

	// Comment style settings
	DefaultStyle string            `yaml:"default_style"`
	Extensions   map[string]string `yaml:"extensions"`
}

// ParseFile decodes a configuration file. Unknown keys are an error.
func ParseFile(data []byte) (*ConfigFile, error) {
	var cf ConfigFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cf, nil
}

// ApplyTo overrides cfg with the settings present in the file.
// A relative ignore_revs_file is resolved against dir.
func (cf *ConfigFile) ApplyTo(cfg *Config, dir string) {
	if cf.Organization != "" {
		cfg.Organization = cf.Organization
	}
	if cf.RightsStatement != nil {
		cfg.RightsStatement = *cf.RightsStatement
	}
	if cf.Symbol != nil {
		cfg.Symbol = *cf.Symbol
	}
	if len(cf.IgnoreCommits) > 0 {
		cfg.IgnoreCommits = cf.IgnoreCommits
	}
	if cf.IgnoreRevsFile != "" {
		cfg.IgnoreRevsFile = cf.IgnoreRevsFile
		if !filepath.IsAbs(cfg.IgnoreRevsFile) && dir != "" {
			cfg.IgnoreRevsFile = filepath.Join(dir, cfg.IgnoreRevsFile)
		}
	}
	if cf.Workers > 0 {
		cfg.Workers = cf.Workers
	}
	if cf.GitConcurrency > 0 {
		cfg.GitConcurrency = cf.GitConcurrency
	}
	if cf.MaxHeaderLines > 0 {
		cfg.MaxHeaderLines = cf.MaxHeaderLines
	}
	if cf.DateField != "" {
		cfg.DateField = cf.DateField
	}
	if cf.TrimParsedYears != nil {
		cfg.TrimParsedYears = *cf.TrimParsedYears
	}
	if cf.DefaultStyle != "" {
		cfg.DefaultStyle = cf.DefaultStyle
	}
	if len(cf.Extensions) > 0 {
		if cfg.Extensions == nil {
			cfg.Extensions = make(map[string]string)
		}
		for ext, style := range cf.Extensions {
			cfg.Extensions[ext] = style
		}
	}
}

// Load builds the configuration for a run: defaults, then the config file,
// then the environment. path names the file explicitly and must exist;
// otherwise FileName in repoRoot is used if present.
func Load(path, repoRoot string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit && repoRoot != "" {
		path = filepath.Join(repoRoot, FileName)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			cf, err := ParseFile(data)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
			cf.ApplyTo(&cfg, filepath.Dir(path))
		case !explicit && errors.Is(err, os.ErrNotExist):
			// no config file; defaults
		default:
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
