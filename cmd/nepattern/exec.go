package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	nepattern "github.com/SimonDaKappa/go-nepattern"
)

var (
	ErrTokensFailed   = errors.New("tokens failed to match")
	ErrInvalidDefault = errors.New("default does not match the pattern")
)

type execResult struct {
	Input string `json:"input" yaml:"input" toml:"input"`
	Flag  string `json:"flag" yaml:"flag" toml:"flag"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

type execReport struct {
	Expr    string       `json:"expr" yaml:"expr" toml:"expr"`
	Pattern string       `json:"pattern" yaml:"pattern" toml:"pattern"`
	Results []execResult `json:"results" yaml:"results" toml:"results"`
}

type execFlags struct {
	def     string
	reverse bool
	output  string
}

func newExecCmd(opts *rootOptions) *cobra.Command {
	flags := &execFlags{}

	cmd := &cobra.Command{
		Use:   "exec <expr> <token>...",
		Short: "Run tokens through a pattern expression",
		Long: `Resolve a pattern expression and run every token through it.

The command exits non-zero when a token fails and no --default is given.

Examples:
  nepattern exec int 42 0x10
  nepattern exec 'int|bool' yes 7
  nepattern exec --reverse int abc
  nepattern exec --default 8080 int http --output json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, flags, args[0], args[1:])
		},
	}

	cmd.Flags().StringVar(&flags.def, "default", "", "value used when a token fails; it must match the pattern")
	cmd.Flags().BoolVar(&flags.reverse, "reverse", false, "negate the pattern")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output format: text, json, yaml, toml")

	return cmd
}

func runExec(cmd *cobra.Command, opts *rootOptions, flags *execFlags, expr string, tokens []string) error {
	format, err := opts.output(flags.output)
	if err != nil {
		return err
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	p, err := reg.Resolve(expr)
	if err != nil {
		return err
	}
	if flags.reverse {
		p = p.Reverse()
	}

	hasDefault := cmd.Flags().Changed("default")
	var def any
	if hasDefault {
		res := p.Exec(flags.def)
		if !res.IsSuccess() {
			return fmt.Errorf("%w: %q for %s", ErrInvalidDefault, flags.def, p)
		}
		def = res.Value()
	}

	report := execReport{Expr: expr, Pattern: p.String()}
	failed := 0
	for _, token := range tokens {
		var res nepattern.ValidateResult
		if hasDefault {
			res = p.ExecDefault(token, def)
		} else {
			res = p.Exec(token)
		}

		result := execResult{Input: token, Flag: string(res.Flag())}
		if v, ok := res.TryValue(); ok {
			result.Value = v
			result.Type = fmt.Sprintf("%T", v)
		}
		if res.IsFailed() {
			result.Error = res.Err().Error()
			failed++
		}
		report.Results = append(report.Results, result)
	}

	st := newStyles(cmd.OutOrStdout(), opts.cfg.Color)
	err = writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
		return writeExecText(w, st, report)
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrTokensFailed, failed, len(tokens))
	}
	return nil
}

func writeExecText(w io.Writer, st styles, report execReport) error {
	if _, err := fmt.Fprintln(w, st.header.Render(report.Pattern)); err != nil {
		return err
	}

	width := 0
	for _, r := range report.Results {
		width = max(width, len(r.Flag))
	}

	for _, r := range report.Results {
		flag := pad(st.flag(nepattern.ResultFlag(r.Flag)).Render(r.Flag), width)
		var err error
		if r.Error != "" {
			_, err = fmt.Fprintf(w, "%s %s: %s\n", flag, r.Input, r.Error)
		} else {
			_, err = fmt.Fprintf(w, "%s %s -> %v %s\n", flag, r.Input, r.Value, st.muted.Render("("+r.Type+")"))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
