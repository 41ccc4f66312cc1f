package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gigcity/harvester/internal/config"
	"github.com/gigcity/harvester/internal/metrics"
)

var (
	// Global flags
	logLevel  string
	logFormat string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "harvester",
		Short: "Event listings harvester for venue websites",
		Long: `harvester fetches venue listing pages, extracts event candidates, and
normalizes them into clean event records.

Venues are configured one YAML file each under the venues directory. Each
config selects a fetch mode (static crawl or rendered browser), an ordered
list of extraction strategies, and optional junk-title patterns.

Run "harvester scrape --help" for the scraping subcommands.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			metrics.Init(Version, GitCommit, BuildDate)
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: console)")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the CLI logger from env config with flag overrides.
func newLogger() zerolog.Logger {
	logging := config.Load().Logging
	if logLevel != "" {
		logging.Level = logLevel
	}
	if logFormat != "" {
		logging.Format = logFormat
	} else if logging.Format == "" {
		logging.Format = "console"
	}
	return config.NewLogger(logging)
}
