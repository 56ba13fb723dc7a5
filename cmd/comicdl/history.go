package main

import (
	"fmt"

	"comicdl/pkg/config"
	"comicdl/pkg/history"

	"github.com/spf13/cobra"
)

var historyYear int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List downloaded strips recorded in the history database",
	Example: `  # Everything
  comicdl history -s ~/comics

  # One year
  comicdl history -s ~/comics --year 1990`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&saveFolder, "save-folder", "s", "", "folder strips are saved to")
	historyCmd.Flags().IntVar(&historyYear, "year", 0, "only list this year")
}

func runHistory(cmd *cobra.Command, args []string) error {
	console := newConsole()

	flags := globalFlags(cmd)
	if cmd.Flags().Changed("save-folder") {
		flags["save-folder"] = saveFolder
	}
	cfg, err := loadConfig(console, flags)
	if err != nil {
		return err
	}

	store, err := history.Open(cmd.Context(), cfg.HistoryPath())
	if err != nil {
		console.PrintError("Failed to open history", err)
		return errReported
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), historyYear)
	if err != nil {
		console.PrintError("Failed to read history", err)
		return errReported
	}

	if len(entries) == 0 {
		console.PrintWarning("No downloads recorded")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %8d  %s  %s\n",
			e.Date.Format(config.DateLayout),
			e.Size,
			e.DownloadedAt.Local().Format("2006-01-02 15:04"),
			e.FilePath)
	}
	console.PrintInfo("Total", fmt.Sprintf("%d strip(s)", len(entries)))
	return nil
}
