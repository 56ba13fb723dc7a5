package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cerrors "comicdl/pkg/errors"
	"comicdl/pkg/storage"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls the yearly bundle. Units are points.
type PDFOptions struct {
	Title  string
	Author string
	// Margin around each strip
	Margin float64
	// Caption prints the strip date under the image
	Caption bool
}

const captionHeight = 18.0

// DefaultOutPath returns {save_folder}/{year}/Comic {year}.pdf
func DefaultOutPath(mgr *storage.Manager, year int) string {
	y := strconv.Itoa(year)
	return filepath.Join(mgr.SaveFolder(), y, "Comic "+y+".pdf")
}

// ExportYearPDF writes every strip stored for year into one PDF, one page per
// strip in date order, each page sized to its image. It returns the number of
// pages written.
func ExportYearPDF(mgr *storage.Manager, year int, outPath string, opt PDFOptions) (int, error) {
	if mgr == nil {
		return 0, fmt.Errorf("storage manager is nil")
	}

	targets, err := mgr.YearTargets(year)
	if err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		return 0, cerrors.New(cerrors.ErrorTypeNotFound, fmt.Sprintf("no strips downloaded for %d", year))
	}

	if outPath == "" {
		outPath = DefaultOutPath(mgr, year)
	}
	if opt.Title == "" {
		opt.Title = fmt.Sprintf("Comic strips %d", year)
	}
	if opt.Author == "" {
		opt.Author = "comicdl"
	}
	if opt.Margin < 0 {
		opt.Margin = 0
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: 842, Ht: 595},
	})
	pdf.SetTitle(opt.Title, true)
	pdf.SetAuthor(opt.Author, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 10)

	for _, t := range targets {
		imgOpt := gofpdf.ImageOptions{ImageType: imageType(t.FilePath)}
		info := pdf.RegisterImageOptions(t.FilePath, imgOpt)
		if err := pdf.Error(); err != nil {
			return 0, cerrors.Wrap(cerrors.ErrorTypeParsing, err, "failed to read strip "+t.FormattedDate)
		}

		w, h := info.Width(), info.Height()
		pageW := w + 2*opt.Margin
		pageH := h + 2*opt.Margin
		if opt.Caption {
			pageH += captionHeight
		}

		orientation := "L"
		if pageH > pageW {
			orientation = "P"
		}
		pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: pageW, Ht: pageH})
		pdf.ImageOptions(t.FilePath, opt.Margin, opt.Margin, w, h, false, imgOpt, 0, "")
		if opt.Caption {
			pdf.Text(opt.Margin, opt.Margin+h+captionHeight-5, t.FormattedDate)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to create output folder")
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return 0, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to write pdf")
	}
	return len(targets), nil
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".png":
		return "PNG"
	default:
		return "GIF"
	}
}
