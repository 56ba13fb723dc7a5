package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"comicdl/pkg/config"
	"comicdl/pkg/logger"
	"comicdl/pkg/scraper"
	"comicdl/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Fetch command flags
	saveFolder    string
	readingFolder string
	count         string
	autoClose     bool
	startDate     string
	baseURL       string
	rule          string
	noHistory     bool
	timeout       time.Duration
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [key=value ...]",
	Short: "Download the next strips that are not on disk yet",
	Long: `Download strips one date at a time, starting at the first date whose file is
missing from the save folder.

The run stops when:
  - the next date is after today
  - a strip page does not contain an image
  - the requested number of strips has been downloaded (--count, default 1)

Network and filesystem errors stop the run with exit code 1; they are never
retried. The next run continues from the first missing date.`,
	Example: `  # Download the next strip
  comicdl fetch --save-folder ~/comics

  # Catch up completely, mirroring every strip into a reading folder
  comicdl fetch -s ~/comics -r ~/reading --count all --auto-close

  # Historic argument style
  comicdl fetch count=5 savefolder=/comics`,
	Args: cobra.ArbitraryArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addFetchFlags(fetchCmd)
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&saveFolder, "save-folder", "s", "", "folder strips are saved to (required)")
	cmd.Flags().StringVarP(&readingFolder, "reading-folder", "r", "", "also copy every new strip to this folder")
	cmd.Flags().StringVarP(&count, "count", "n", "", `number of strips to download, or "all" (default 1)`)
	cmd.Flags().BoolVar(&autoClose, "auto-close", false, "exit without waiting for Enter")
	cmd.Flags().StringVar(&startDate, "start-date", "", "first strip date, YYYY-MM-DD (default 1989-04-16)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "strip page base URL, the date is appended")
	cmd.Flags().StringVar(&rule, "rule", "", "image extraction rule: attribute or direct")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record downloads in the history database")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "HTTP timeout per request (default 30s)")
}

// legacyKeys maps the historic key=value arguments to flag names
var legacyKeys = map[string]string{
	"savefolder":    "save-folder",
	"readingfolder": "reading-folder",
	"count":         "count",
	"autoclose":     "auto-close",
}

// parseLegacyArgs turns key=value arguments into a flags map
func parseLegacyArgs(args []string) (map[string]interface{}, error) {
	flags := make(map[string]interface{})
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("unexpected argument %q, expected key=value", arg)
		}

		name, known := legacyKeys[strings.ToLower(strings.TrimSpace(key))]
		if !known {
			return nil, fmt.Errorf("unknown argument %q", key)
		}

		if name == "auto-close" {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid autoclose value %q: %w", value, err)
			}
			flags[name] = b
			continue
		}
		flags[name] = value
	}
	return flags, nil
}

// fetchFlags merges legacy arguments with explicitly set flags. Flags win.
func fetchFlags(cmd *cobra.Command, args []string) (map[string]interface{}, error) {
	flags, err := parseLegacyArgs(args)
	if err != nil {
		return nil, err
	}

	for k, v := range globalFlags(cmd) {
		flags[k] = v
	}

	changed := cmd.Flags().Changed
	if changed("save-folder") {
		flags["save-folder"] = saveFolder
	}
	if changed("reading-folder") {
		flags["reading-folder"] = readingFolder
	}
	if changed("count") {
		flags["count"] = count
	}
	if changed("auto-close") {
		flags["auto-close"] = autoClose
	}
	if changed("start-date") {
		flags["start-date"] = startDate
	}
	if changed("base-url") {
		flags["base-url"] = baseURL
	}
	if changed("rule") {
		flags["rule"] = rule
	}
	if changed("no-history") {
		flags["history"] = !noHistory
	}
	if changed("timeout") {
		flags["timeout"] = timeout
	}
	return flags, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	console := newConsole()

	flags, err := fetchFlags(cmd, args)
	if err != nil {
		console.PrintError("Invalid arguments", err)
		return errReported
	}

	cfg, err := config.Resolve(configFile, flags)
	if err != nil {
		console.PrintError("Failed to load configuration", err)
		return errReported
	}
	if strings.TrimSpace(cfg.Output.SaveFolder) == "" {
		console.PrintError("Must pass a value for savefolder.", nil)
		return errReported
	}
	if err := setupConfig(console, cfg); err != nil {
		return err
	}

	console.PrintBanner()
	console.PrintInfo("Save folder", cfg.Output.SaveFolder)
	if cfg.Output.ReadingFolder != "" {
		console.PrintInfo("Reading folder", cfg.Output.ReadingFolder)
	}
	console.PrintInfo("Count", displayCount(cfg.Download.Count))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(ctx, cfg, scraper.WithConsole(console))
	if err != nil {
		console.PrintError("Failed to initialize downloader", err)
		return errReported
	}
	defer s.Close()

	logger.WithField("version", version).Info("comicdl starting")
	result, runErr := s.Run(ctx)

	if result.Outcome == scraper.OutcomeImageNotFound && !cfg.Download.AutoClose {
		console.WaitForEnter("Press Enter to continue.")
	}

	if runErr != nil {
		console.PrintError("Download stopped", runErr)
	} else {
		reportOutcome(console, result)
	}

	if !cfg.Download.AutoClose {
		console.WaitForEnter("Press Enter to exit.")
	}

	if runErr != nil {
		return errReported
	}
	return nil
}

func displayCount(c string) string {
	n, all, err := config.ParseCount(c)
	if err != nil {
		return c
	}
	if all {
		return config.CountAll
	}
	return strconv.Itoa(n)
}

func reportOutcome(console *ui.Console, result scraper.Result) {
	switch result.Outcome {
	case scraper.OutcomeReachedCutoff:
		console.PrintSuccess(fmt.Sprintf("Up to date: %d new strip(s)", result.Downloaded))
	case scraper.OutcomeCountReached:
		console.PrintSuccess(fmt.Sprintf("Downloaded %d strip(s), last one %s",
			result.Downloaded, result.LastDate.Format(config.DateLayout)))
	case scraper.OutcomeImageNotFound:
		console.PrintWarning(fmt.Sprintf("Stopped at %s after %d new strip(s)",
			result.MissingDate.Format(config.DateLayout), result.Downloaded))
	}
}
