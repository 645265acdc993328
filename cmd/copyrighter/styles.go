package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/copyrighter/internal/config"
	"github.com/steveyegge/copyrighter/internal/vcs"
)

func newStylesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List known file types and their comment styles",
		Long: `List the filenames and extensions copyrighter knows, with the comment
style used for each. Extension overrides from the config file are included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// outside a repository only the built-in table and env apply
			_, root, _ := vcs.Detect(cmd.Context(), "")
			cfg, err := config.Load(configPath, root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}

			bold := color.New(color.Bold).SprintFunc()
			gray := color.New(color.FgHiBlack).SprintFunc()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n", bold("PATTERN"), bold("STYLE"), bold("ALSO"))
			for _, e := range registry.Entries() {
				var also []string
				for _, s := range e.Syntax.Styles() {
					if s != e.Syntax.Default() {
						also = append(also, s.Name())
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Pattern, e.Syntax.Default().Name(), gray(strings.Join(also, ", ")))
			}
			if cfg.DefaultStyle != "" {
				fmt.Fprintf(w, "%s\t%s\t\n", gray("(other)"), cfg.DefaultStyle)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default .copyrighter.yaml at the repository top)")
	return cmd
}
