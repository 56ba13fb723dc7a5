package integration

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"comicdl/pkg/config"
	cerrors "comicdl/pkg/errors"
	"comicdl/pkg/export"
	"comicdl/pkg/history"
	"comicdl/pkg/scraper"
	"comicdl/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstThree = []string{"1989-04-16", "1989-04-17", "1989-04-18"}

func TestEndToEndCatchUp(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	result, err := helper.Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, scraper.OutcomeReachedCutoff, result.Outcome)
	assert.Equal(t, 3, result.Downloaded)

	for _, date := range firstThree {
		data, err := os.ReadFile(StripFile(cfg.Output.SaveFolder, date))
		require.NoError(t, err, date)
		assert.Equal(t, StripData(date), data)
	}
	assert.Equal(t, firstThree, helper.Server().PageRequests())
	// one page and one image per strip
	assert.Equal(t, 6, helper.Server().GetRequestCount())
	assert.Contains(t, helper.Output(), "Downloading Comic 1989-04-18.gif ... Done")
}

func TestEndToEndImageNotFound(t *testing.T) {
	helper := NewTestHelper(t)
	helper.Server().SetMissing("1989-04-18")
	cfg := helper.CreateTestConfig()

	result, err := helper.Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, scraper.OutcomeImageNotFound, result.Outcome)
	assert.Equal(t, 2, result.Downloaded)
	assert.FileExists(t, StripFile(cfg.Output.SaveFolder, "1989-04-17"))
	assert.NoFileExists(t, StripFile(cfg.Output.SaveFolder, "1989-04-18"))
	assert.Contains(t, helper.Output(), "Can't find image for Comic 1989-04-18.gif")

	// The next run retries the missing date first
	result, err = helper.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, scraper.OutcomeImageNotFound, result.Outcome)
	assert.Equal(t, 0, result.Downloaded)
	assert.Equal(t, []string{"1989-04-16", "1989-04-17", "1989-04-18", "1989-04-18"}, helper.Server().PageRequests())
}

func TestEndToEndIdempotentAcrossDays(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()

	_, err := helper.Run(cfg)
	require.NoError(t, err)

	result, err := helper.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Downloaded)
	assert.Len(t, helper.Server().PageRequests(), 3)

	// A day later exactly one new strip is fetched
	helper.SetToday(1989, time.April, 19)
	result, err = helper.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, "1989-04-19", result.LastDate.Format(config.DateLayout))
	assert.Equal(t, append(firstThree, "1989-04-19"), helper.Server().PageRequests())
}

func TestEndToEndBoundedCount(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()
	cfg.Download.Count = "2"

	result, err := helper.Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, scraper.OutcomeCountReached, result.Outcome)
	assert.Equal(t, 2, result.Downloaded)
	assert.NoFileExists(t, StripFile(cfg.Output.SaveFolder, "1989-04-18"))

	result, err = helper.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, scraper.OutcomeReachedCutoff, result.Outcome)
	assert.Equal(t, 1, result.Downloaded)
}

func TestEndToEndReadingFolderMirror(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()
	cfg.Output.ReadingFolder = helper.CreateTempSubDir("reading")

	// Already downloaded before the reading folder was configured
	helper.WriteStrip(cfg.Output.SaveFolder, "1989-04-16", StripData("1989-04-16"))

	result, err := helper.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Downloaded)

	assert.NoFileExists(t, StripFile(cfg.Output.ReadingFolder, "1989-04-16"))
	for _, date := range firstThree[1:] {
		saved, err := os.ReadFile(StripFile(cfg.Output.SaveFolder, date))
		require.NoError(t, err)
		mirrored, err := os.ReadFile(StripFile(cfg.Output.ReadingFolder, date))
		require.NoError(t, err)
		assert.Equal(t, saved, mirrored)
	}
}

func TestEndToEndServerErrorStopsRun(t *testing.T) {
	helper := NewTestHelper(t)
	helper.Server().SetErrorResponse("1989-04-17", http.StatusBadGateway)
	cfg := helper.CreateTestConfig()

	result, err := helper.Run(cfg)

	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeServerError))
	assert.Equal(t, scraper.OutcomeFailed, result.Outcome)
	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, []string{"1989-04-16", "1989-04-17"}, helper.Server().PageRequests())
	assert.True(t, helper.Logger().HasError())
}

func TestEndToEndHistoryAndExport(t *testing.T) {
	helper := NewTestHelper(t)
	cfg := helper.CreateTestConfig()
	require.True(t, cfg.History.Enabled)

	result, err := helper.Run(cfg)
	require.NoError(t, err)
	require.Equal(t, 3, result.Downloaded)

	ctx := context.Background()
	store, err := history.Open(ctx, cfg.HistoryPath())
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List(ctx, 1989)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, firstThree[i], e.Date.Format(config.DateLayout))
		assert.Equal(t, "https://assets.amuniversal.com/"+ImageHash(firstThree[i]), e.ImageURL)
		assert.Equal(t, result.RunID, e.RunID)
		assert.Equal(t, int64(len(StripData(firstThree[i]))), e.Size)
	}

	// The mock serves placeholder bytes; swap in decodable images for the PDF
	mgr, err := storage.NewManager(cfg.Output.SaveFolder, "", cfg.Comic.FileNamePattern)
	require.NoError(t, err)
	for _, date := range firstThree {
		writeGIF(t, StripFile(cfg.Output.SaveFolder, date))
	}

	pages, err := export.ExportYearPDF(mgr, 1989, "", export.PDFOptions{Caption: true})
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.FileExists(t, filepath.Join(cfg.Output.SaveFolder, "1989", "Comic 1989.pdf"))

	// The PDF does not count as a strip
	target, err := mgr.NextPendingDate(time.Date(1989, time.April, 16, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, "1989-04-19", target.FormattedDate)
}

func writeGIF(t *testing.T, path string) {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 90, 28), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}
