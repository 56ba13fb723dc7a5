package main

import (
	"fmt"
	"os"
	"path/filepath"

	"comicdl/pkg/config"
	"comicdl/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage comicdl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (COMICDL_*)
  - .env files (./.env and $HOME/.comicdl.env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.comicdl.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources. The result is
not validated; use 'comicdl config validate' for that.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective configuration.

This command checks:
  - YAML syntax
  - Required fields
  - Count, dates, extraction rule and log level
  - Folder accessibility`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# comicdl configuration file
#
# Environment variables prefixed with COMICDL_ override these values,
# for example COMICDL_SAVE_FOLDER or COMICDL_COUNT.

comic:
  # Strip page URL is base_url + YYYY-MM-DD
  base_url: "http://dilbert.com/strip/"

  # Image extraction rule: attribute (data-image attribute) or direct
  # (fully-qualified asset URL). Setting image_pattern overrides the rule.
  rule: "attribute"
  image_pattern: ""
  image_prefix: ""

  # First strip date; nothing earlier is ever downloaded
  start_date: "1989-04-16"

  # Must contain {date}
  file_name_pattern: "Comic {date}.gif"

output:
  # Required. Strips are stored as {save_folder}/{year}/{file_name}
  save_folder: "./comics"

  # Optional mirror with the same {year}/ structure
  reading_folder: ""

download:
  # Number of strips per run, or "all"
  count: "1"

  # HTTP timeout per request
  timeout: 30s

  # Exit without waiting for Enter
  auto_close: false

history:
  # SQLite ledger, default {save_folder}/.comicdl/history.sqlite
  enabled: true
  path: ""

logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional, rotated)
  file: ""
  max_size: 10
  max_backups: 3
  max_age: 28
  compress: true
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	console := newConsole()

	configPath := configFile
	if configPath == "" {
		configPath = ".comicdl.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		console.PrintError("Configuration file already exists: "+configPath, nil)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return errReported
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		console.PrintError("Failed to create configuration file", err)
		return errReported
	}

	console.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Set output.save_folder in the configuration file")
	fmt.Println("2. Run 'comicdl config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'comicdl fetch'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	console := newConsole()

	cfg, err := config.Resolve(configFile, globalFlags(cmd))
	if err != nil {
		console.PrintError("Failed to load configuration", err)
		return errReported
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		console.PrintError("Failed to format configuration", err)
		return errReported
	}

	console.PrintSuccess("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (COMICDL_*)")
	fmt.Println("3. .env files")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (auto-detected)")
	}
	fmt.Println("5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	console := newConsole()
	if configFile != "" {
		console.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, globalFlags(cmd))
	if err != nil {
		console.PrintError("Configuration validation failed", err)
		return errReported
	}

	problems := checkPaths(cfg)
	if len(problems) > 0 {
		console.PrintError("Configuration has errors:", nil)
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return errReported
	}

	console.PrintSuccess("Configuration is valid")
	printSummary(console, cfg)
	return nil
}

// checkPaths makes sure every configured folder can be created
func checkPaths(cfg *config.Config) []string {
	var problems []string
	if err := os.MkdirAll(cfg.Output.SaveFolder, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create save folder: %v", err))
	}
	if cfg.Output.ReadingFolder != "" {
		if err := os.MkdirAll(cfg.Output.ReadingFolder, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create reading folder: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}
	return problems
}

func printSummary(console *ui.Console, cfg *config.Config) {
	fmt.Println("\nConfiguration summary:")
	console.PrintInfo("  Save folder", cfg.Output.SaveFolder)
	if cfg.Output.ReadingFolder != "" {
		console.PrintInfo("  Reading folder", cfg.Output.ReadingFolder)
	}
	console.PrintInfo("  Base URL", cfg.Comic.BaseURL)
	console.PrintInfo("  Extraction rule", cfg.ImageRule())
	console.PrintInfo("  Start date", cfg.Comic.StartDate)
	console.PrintInfo("  Count", displayCount(cfg.Download.Count))
	console.PrintInfo("  Timeout", cfg.Download.Timeout.String())
	if cfg.History.Enabled {
		console.PrintInfo("  History", cfg.HistoryPath())
	} else {
		console.PrintInfo("  History", "disabled")
	}
	console.PrintInfo("  Log level", cfg.Logging.Level)
}
