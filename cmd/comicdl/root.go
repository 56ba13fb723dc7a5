package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"comicdl/pkg/config"
	"comicdl/pkg/logger"
	"comicdl/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	noColor    bool
)

// errReported marks an error the command already printed to the console
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "comicdl [key=value ...]",
	Short: "Download daily comic strips, picking up where the last run stopped",
	Long: `comicdl downloads daily comic strip images one date at a time, starting at the
first strip that is not in the save folder yet, and stores them as
{save_folder}/{year}/Comic {date}.gif.

Running without a subcommand is the same as 'comicdl fetch'. The historic
key=value arguments are still accepted:

  comicdl count=all autoclose=true savefolder=/comics readingfolder=/reading`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFetch,
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .comicdl.yaml or $HOME/.config/comicdl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// fetch is the default command
	addFetchFlags(rootCmd)

	rootCmd.SetVersionTemplate(`comicdl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// newConsole returns the stdout console honouring --no-color
func newConsole() *ui.Console {
	console := ui.Default()
	console.SetColor(!noColor)
	return console
}

// globalFlags collects the persistent flags the user set explicitly
func globalFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = logLevel
	}
	if cmd.Flags().Changed("log-file") {
		flags["log-file"] = logFile
	}
	return flags
}

// loadConfig resolves and validates configuration, then sets up logging
func loadConfig(console *ui.Console, flags map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Resolve(configFile, flags)
	if err != nil {
		console.PrintError("Failed to load configuration", err)
		return nil, errReported
	}
	if err := setupConfig(console, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupConfig validates a resolved configuration and initializes logging
func setupConfig(console *ui.Console, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		console.PrintError("Invalid configuration", err)
		return errReported
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		console.PrintError("Failed to initialize logging", err)
		return errReported
	}
	return nil
}
