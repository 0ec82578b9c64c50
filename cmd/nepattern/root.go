package main

import (
	"fmt"

	"github.com/spf13/cobra"

	nepattern "github.com/SimonDaKappa/go-nepattern"
	"github.com/SimonDaKappa/go-nepattern/internal/logging"
	"github.com/SimonDaKappa/go-nepattern/patternset"
)

// rootOptions is the state shared by every command of one invocation.
type rootOptions struct {
	verbosity  int
	configFile string
	defs       []string

	cfg *Config
}

// NewRootCmd builds the nepattern command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "nepattern",
		Short: "Test, convert and validate values with patterns",
		Long: `nepattern runs values through named patterns.

Patterns come from the builtin registry (int, float, bool, uuid, datetime, ...)
and from pattern-set files given with --defs or listed in the config file.
Expressions may negate a pattern with '!' and combine patterns with '|'.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity, cmd.ErrOrStderr())
			log := logging.GetLogger("cli")
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			cfg, err := LoadConfig(opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", fmt.Sprintf("config file (default %s)", DefaultConfigPath()))
	rootCmd.PersistentFlags().StringSliceVar(&opts.defs, "defs", nil, "pattern-set files to register (toml or yaml)")

	rootCmd.AddCommand(
		newExecCmd(opts),
		newListCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// registry returns a fresh registry holding the builtins plus every pattern
// set from the config file and --defs.
func (opts *rootOptions) registry() (*nepattern.PatternRegistry, error) {
	reg, err := nepattern.NewPatternRegistry(nepattern.PatternRegistryOpts{})
	if err != nil {
		return nil, err
	}

	log := logging.GetLogger("cli")
	loader := patternset.NewLoader(reg)
	paths := append(append([]string(nil), opts.cfg.Defs...), opts.defs...)
	for _, path := range paths {
		set, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		if err := set.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", path, err)
		}
		log.Info().Str("path", path).Int("patterns", set.Len()).Msg("Registered pattern set")
	}
	return reg, nil
}

// output picks the --output flag when given and the configured format
// otherwise.
func (opts *rootOptions) output(flag string) (string, error) {
	format := flag
	if format == "" {
		format = opts.cfg.Output
	}
	return format, checkOutput(format)
}
