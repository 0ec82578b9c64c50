package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	nepattern "github.com/SimonDaKappa/go-nepattern"
)

type patternInfo struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Mode    string `json:"mode" yaml:"mode" toml:"mode"`
	Origin  string `json:"origin" yaml:"origin" toml:"origin"`
	Display string `json:"display" yaml:"display" toml:"display"`
}

type patternReport struct {
	Patterns []patternInfo `json:"patterns" yaml:"patterns" toml:"patterns"`
}

func describe(name string, p *nepattern.Pattern) patternInfo {
	return patternInfo{
		Name:    name,
		Mode:    p.Mode().String(),
		Origin:  p.Origin().String(),
		Display: p.String(),
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.output(output)
			if err != nil {
				return err
			}
			reg, err := opts.registry()
			if err != nil {
				return err
			}

			var report patternReport
			for _, name := range reg.Names() {
				p, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				report.Patterns = append(report.Patterns, describe(name, p))
			}

			st := newStyles(cmd.OutOrStdout(), opts.cfg.Color)
			return writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
				return writePatternTable(w, st, report.Patterns)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: text, json, yaml, toml")
	return cmd
}

func writePatternTable(w io.Writer, st styles, patterns []patternInfo) error {
	header := patternInfo{Name: "NAME", Mode: "MODE", Origin: "ORIGIN", Display: "DISPLAY"}

	var widths [3]int
	for _, info := range append([]patternInfo{header}, patterns...) {
		widths[0] = max(widths[0], len(info.Name))
		widths[1] = max(widths[1], len(info.Mode))
		widths[2] = max(widths[2], len(info.Origin))
	}

	row := func(info patternInfo, style func(string) string) error {
		_, err := fmt.Fprintf(w, "%s  %s  %s  %s\n",
			pad(style(info.Name), widths[0]),
			pad(style(info.Mode), widths[1]),
			pad(style(info.Origin), widths[2]),
			style(info.Display))
		return err
	}

	if err := row(header, func(s string) string { return st.header.Render(s) }); err != nil {
		return err
	}
	for _, info := range patterns {
		if err := row(info, func(s string) string { return s }); err != nil {
			return err
		}
	}
	return nil
}
