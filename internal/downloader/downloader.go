package downloader

import (
	"context"
	"fmt"
	"io"
	"time"

	"comicdl/pkg/history"
	"comicdl/pkg/logger"
	"comicdl/pkg/storage"
)

// ImageFetcher starts the binary download of a strip image
type ImageFetcher interface {
	DownloadImage(ctx context.Context, imageURL string) (io.ReadCloser, int64, error)
}

// StripStorage writes strips to disk
type StripStorage interface {
	SaveImage(r io.Reader, t storage.Target) (int64, error)
	Mirror(t storage.Target) error
}

// Recorder stores a download in the ledger
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Result represents the result of one download
type Result struct {
	Target   storage.Target
	URL      string
	Size     int64
	Duration time.Duration
}

// Downloader performs the download step for one strip: fetch the image, save
// it, mirror it and record it.
type Downloader struct {
	client   ImageFetcher
	storage  StripStorage
	recorder Recorder
	runID    string
	logger   logger.Logger
}

// New creates a downloader. recorder may be nil when history is disabled.
func New(client ImageFetcher, store StripStorage, recorder Recorder, runID string, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Downloader{
		client:   client,
		storage:  store,
		recorder: recorder,
		runID:    runID,
		logger:   log,
	}
}

// Download fetches imageURL into the target. Save and mirror failures are
// returned; a history failure is only logged.
func (d *Downloader) Download(ctx context.Context, t storage.Target, imageURL string) (Result, error) {
	start := time.Now()
	result := Result{Target: t, URL: imageURL}

	d.logger.DebugWithFields("Downloading strip", map[string]interface{}{
		"date": t.FormattedDate,
		"url":  imageURL,
		"file": t.FilePath,
	})

	body, _, err := d.client.DownloadImage(ctx, imageURL)
	if err != nil {
		result.Duration = time.Since(start)
		logger.LogDownload(d.logger, t.FormattedDate, t.FilePath, 0, err)
		return result, err
	}
	defer body.Close()

	size, err := d.storage.SaveImage(body, t)
	if err != nil {
		result.Duration = time.Since(start)
		logger.LogDownload(d.logger, t.FormattedDate, t.FilePath, 0, err)
		return result, fmt.Errorf("save failed: %w", err)
	}
	result.Size = size

	if err := d.storage.Mirror(t); err != nil {
		result.Duration = time.Since(start)
		d.logger.ErrorWithFields("Failed to mirror strip", map[string]interface{}{
			"date":   t.FormattedDate,
			"mirror": t.MirrorFilePath,
			"error":  err.Error(),
		})
		return result, fmt.Errorf("mirror failed: %w", err)
	}

	if d.recorder != nil {
		entry := history.Entry{
			Date:         t.Date,
			ImageURL:     imageURL,
			FilePath:     t.FilePath,
			Size:         size,
			RunID:        d.runID,
			DownloadedAt: time.Now(),
		}
		if err := d.recorder.Record(ctx, entry); err != nil {
			d.logger.WarnWithFields("Failed to record download in history", map[string]interface{}{
				"date":  t.FormattedDate,
				"error": err.Error(),
			})
		}
	}

	result.Duration = time.Since(start)
	logger.LogDownload(d.logger, t.FormattedDate, t.FilePath, size, nil)
	return result, nil
}
