package main

import (
	"fmt"

	"comicdl/pkg/export"
	"comicdl/pkg/storage"

	"github.com/spf13/cobra"
)

var (
	exportYear    int
	exportOut     string
	exportCaption bool
	exportMargin  float64
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Bundle one year of downloaded strips into a PDF",
	Long: `Collect every strip stored for a year, in date order, and write them to a
single PDF with one page per strip.

The default output is {save_folder}/{year}/Comic {year}.pdf.`,
	Example: `  comicdl export -s ~/comics --year 1989
  comicdl export -s ~/comics --year 1990 --out ~/Desktop/1990.pdf --caption`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&saveFolder, "save-folder", "s", "", "folder strips are saved to")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "year to export (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output PDF path")
	exportCmd.Flags().BoolVar(&exportCaption, "caption", false, "print the strip date under each image")
	exportCmd.Flags().Float64Var(&exportMargin, "margin", 18, "page margin in points")
	_ = exportCmd.MarkFlagRequired("year")
}

func runExport(cmd *cobra.Command, args []string) error {
	console := newConsole()

	flags := globalFlags(cmd)
	if cmd.Flags().Changed("save-folder") {
		flags["save-folder"] = saveFolder
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

	out := exportOut
	if out == "" {
		out = export.DefaultOutPath(mgr, exportYear)
	}

	pages, err := export.ExportYearPDF(mgr, exportYear, out, export.PDFOptions{
		Title:   fmt.Sprintf("Comic strips %d", exportYear),
		Margin:  exportMargin,
		Caption: exportCaption,
	})
	if err != nil {
		console.PrintError("Export failed", err)
		return errReported
	}

	console.PrintSuccess(fmt.Sprintf("Wrote %d page(s) to %s", pages, out))
	return nil
}
