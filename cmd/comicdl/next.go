package main

import (
	"time"

	"comicdl/pkg/config"
	"comicdl/pkg/storage"

	"github.com/spf13/cobra"
)

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next strip date a fetch would download",
	Long: `Scan the save folder from the start date and print the first date whose strip
file is missing. Nothing is downloaded.`,
	Args: cobra.NoArgs,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().StringVarP(&saveFolder, "save-folder", "s", "", "folder strips are saved to")
	nextCmd.Flags().StringVar(&startDate, "start-date", "", "first strip date, YYYY-MM-DD")
}

func runNext(cmd *cobra.Command, args []string) error {
	console := newConsole()

	flags := globalFlags(cmd)
	if cmd.Flags().Changed("save-folder") {
		flags["save-folder"] = saveFolder
	}
	if cmd.Flags().Changed("start-date") {
		flags["start-date"] = startDate
	}

	cfg, err := loadConfig(console, flags)
	if err != nil {
		return err
	}

	mgr, err := storage.NewManager(cfg.Output.SaveFolder, cfg.Output.ReadingFolder, cfg.Comic.FileNamePattern)
	if err != nil {
		console.PrintError("Invalid storage settings", err)
		return errReported
	}
	start, err := cfg.StartTime()
	if err != nil {
		console.PrintError("Invalid start date", err)
		return errReported
	}

	target, err := mgr.NextPendingDate(start)
	if err != nil {
		console.PrintError("Failed to scan save folder", err)
		return errReported
	}

	console.PrintInfo("Next pending date", target.FormattedDate)
	console.PrintInfo("File", target.FilePath)

	today := config.CalendarDay(time.Now())
	if target.Date.After(today) {
		console.PrintSuccess("Up to date, nothing to download before " + today.AddDate(0, 0, 1).Format(config.DateLayout))
	}
	return nil
}
