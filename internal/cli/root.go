package cli

import (
	"github.com/spf13/cobra"

	"github.com/blorm-network/zerepy/internal/config"
	"github.com/blorm-network/zerepy/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// resolved by PersistentPreRunE before any command runs
	paths    config.Paths
	cfg      config.Config
	log      *logging.Logger
	closeLog func() error
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zerepy",
		Short: "ZerePy: autonomous LLM agents for social platforms",
		Long:  "ZerePy loads agent personas from JSON documents and runs them against social platforms and LLM providers, either interactively or as an autonomous posting loop.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			cfg, err = config.Load(paths.Config)
			if err != nil {
				return err
			}
			consoleLevel := cfg.Logging.ConsoleLevel
			if logLevel != "" {
				consoleLevel = logLevel
			}
			log, closeLog, err = logging.Open(logging.Options{
				Level:        cfg.Logging.Level,
				File:         cfg.Logging.File,
				ConsoleLevel: consoleLevel,
				ConsoleStyle: cfg.Logging.ConsoleStyle,
			})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.zerepy/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "console log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newLoadAgentCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newActionCmd())
	cmd.AddCommand(newConnectionCmd())
	cmd.AddCommand(newConfigureConnectionCmd())
	cmd.AddCommand(newMemoryCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
