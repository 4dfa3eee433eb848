package cmd

import (
	"fmt"
	"os"

	"github.com/internhub/server/internal/config"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	serveCmd := newServeCommand(flags)
	root := &cobra.Command{
		Use:   "server",
		Short: "InternHub server - internship marketplace backend",
		Long: `InternHub server is the REST backend of a two-sided internship marketplace.

Students browse postings and apply; employers publish postings and move
applicants through the hiring pipeline; admins can act on any posting.

Running the binary without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file path (optional, uses env vars by default)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (json, console) (default: json)")

	// The serve flags are accepted on the bare root command too.
	root.Flags().AddFlagSet(serveCmd.Flags())

	root.AddCommand(serveCmd)
	root.AddCommand(newMigrateCommand(flags))
	root.AddCommand(newTokenCommand(flags))
	root.AddCommand(newVersionCommand())
	root.AddCommand(newHealthcheckCommand())

	return root
}

// loadConfig reads the environment, overlaid by --config when given, and
// applies the logging flag overrides.
func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.LoadFile(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}
	return cfg, nil
}
