package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/SimonDaKappa/go-nepattern/patternset"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Compile a pattern-set file and print its patterns",
		Long: `Load a pattern-set file (.toml, .yaml or .yml), compile every definition
and print the resulting patterns. Names not defined in the file are resolved
against the builtins and any --defs files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.output(output)
			if err != nil {
				return err
			}
			reg, err := opts.registry()
			if err != nil {
				return err
			}

			set, err := patternset.NewLoader(reg).Load(args[0])
			if err != nil {
				return err
			}

			var report patternReport
			for _, name := range set.Names() {
				p, _ := set.Pattern(name)
				report.Patterns = append(report.Patterns, describe(name, p))
			}

			st := newStyles(cmd.OutOrStdout(), opts.cfg.Color)
			return writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
				if err := writePatternTable(w, st, report.Patterns); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "%s %d patterns in %s\n", st.valid.Render("ok"), set.Len(), args[0])
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: text, json, yaml, toml")
	return cmd
}
