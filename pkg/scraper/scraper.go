package scraper

import (
	"context"
	"fmt"
	"time"

	"comicdl/internal/downloader"
	"comicdl/pkg/comic"
	"comicdl/pkg/config"
	"comicdl/pkg/history"
	"comicdl/pkg/logger"
	"comicdl/pkg/storage"
	"comicdl/pkg/ui"

	"github.com/google/uuid"
)

// Outcome is the way a run ended
type Outcome string

const (
	// OutcomeReachedCutoff means the next pending date is after today
	OutcomeReachedCutoff Outcome = "reached_cutoff"
	// OutcomeImageNotFound means a page had no image matching the rule
	OutcomeImageNotFound Outcome = "image_not_found"
	// OutcomeCountReached means the requested number of strips was downloaded
	OutcomeCountReached Outcome = "count_reached"
	// OutcomeFailed means the run stopped on an error
	OutcomeFailed Outcome = "failed"
)

// Result summarises a run
type Result struct {
	Outcome    Outcome
	Downloaded int
	LastDate   time.Time
	// MissingDate is set when Outcome is OutcomeImageNotFound
	MissingDate time.Time
	RunID       string
}

// Scraper orchestrates the daily strip download loop
type Scraper struct {
	config         *config.Config
	client         ComicClient
	storageManager *storage.Manager
	history        *history.Store
	console        *ui.Console
	logger         logger.Logger
	now            func() time.Time
	runID          string
}

// Option customises a Scraper
type Option func(*Scraper)

// WithClient replaces the HTTP strip client
func WithClient(c ComicClient) Option {
	return func(s *Scraper) { s.client = c }
}

// WithClock replaces the clock that decides "today"
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// WithConsole replaces the console output
func WithConsole(c *ui.Console) Option {
	return func(s *Scraper) { s.console = c }
}

// WithLogger replaces the global logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// New creates a new Scraper from a validated configuration. The history
// ledger is opened when enabled; failing to open it only disables it.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Scraper, error) {
	s := &Scraper{
		config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetLogger()
	}
	if s.console == nil {
		s.console = ui.Default()
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	s.runID = id.String()
	s.logger = s.logger.WithField("run_id", s.runID)

	if s.client == nil {
		client, err := comic.NewClientFromConfig(cfg, s.logger)
		if err != nil {
			return nil, err
		}
		s.client = client
	}

	s.storageManager, err = storage.NewManager(cfg.Output.SaveFolder, cfg.Output.ReadingFolder, cfg.Comic.FileNamePattern)
	if err != nil {
		return nil, err
	}

	if cfg.History.Enabled {
		store, err := history.Open(ctx, cfg.HistoryPath())
		if err != nil {
			s.logger.WithError(err).Warn("Download history unavailable, continuing without it")
		} else {
			s.history = store
		}
	}

	return s, nil
}

// Close releases the history ledger
func (s *Scraper) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

// today returns the calendar date of the clock in its own location
func (s *Scraper) today() time.Time {
	return config.CalendarDay(s.now())
}

// Run downloads strips one date at a time, starting at the first date whose
// file is missing, until the next date is after today, a page has no image,
// or the configured count has been downloaded. Network and filesystem errors
// end the run and are returned.
func (s *Scraper) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: s.runID}

	limit, all, err := config.ParseCount(s.config.Download.Count)
	if err != nil {
		return s.fail(result, err)
	}
	if all {
		limit = 0
	}
	start, err := s.config.StartTime()
	if err != nil {
		return s.fail(result, err)
	}
	today := s.today()

	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"save_folder":    s.storageManager.SaveFolder(),
		"reading_folder": s.storageManager.ReadingFolder(),
		"start_date":     start.Format(config.DateLayout),
		"today":          today.Format(config.DateLayout),
		"limit":          limit,
	})

	var recorder downloader.Recorder
	if s.history != nil {
		recorder = s.history
	}
	dl := downloader.New(s.client, s.storageManager, recorder, s.runID, s.logger)
	tracker := ui.NewStatusTracker(limit)

	// Every date before cursor is known to be on disk.
	cursor := start
	for {
		if err := ctx.Err(); err != nil {
			return s.fail(result, err)
		}
		if tracker.LimitReached() {
			return s.finish(result, OutcomeCountReached, tracker)
		}

		target, err := s.storageManager.NextPendingDate(cursor)
		if err != nil {
			return s.fail(result, err)
		}
		if target.Date.After(today) {
			return s.finish(result, OutcomeReachedCutoff, tracker)
		}

		if err := s.storageManager.EnsureFolders(target); err != nil {
			return s.fail(result, err)
		}

		found, imageURL, err := s.client.FetchImageURL(ctx, target.Date)
		if err != nil {
			return s.fail(result, err)
		}
		if !found {
			s.console.PrintWarning("Can't find image for " + target.FileName())
			s.logger.WarnWithFields("Image not found on strip page", map[string]interface{}{
				"date": target.FormattedDate,
			})
			result.MissingDate = target.Date
			return s.finish(result, OutcomeImageNotFound, tracker)
		}

		// Printed after the download so log output cannot split the line
		dlResult, err := dl.Download(ctx, target, imageURL)
		s.console.Downloading(target.FileName())
		if err != nil {
			s.console.Failed()
			return s.fail(result, err)
		}
		s.console.Done()

		tracker.IncrementDownloaded(dlResult.Size)
		result.Downloaded++
		result.LastDate = target.Date
		cursor = target.Date.AddDate(0, 0, 1)
	}
}

func (s *Scraper) finish(result Result, outcome Outcome, tracker *ui.StatusTracker) (Result, error) {
	result.Outcome = outcome
	if result.Downloaded > 0 {
		s.console.PrintDim(tracker.Summary())
	}
	logger.LogComponentStop(s.logger, "scraper", string(outcome))
	s.logger.InfoWithFields("Run finished", map[string]interface{}{
		"outcome":    string(outcome),
		"downloaded": result.Downloaded,
	})
	return result, nil
}

func (s *Scraper) fail(result Result, err error) (Result, error) {
	result.Outcome = OutcomeFailed
	s.logger.WithError(err).ErrorWithFields("Run failed", map[string]interface{}{
		"downloaded": result.Downloaded,
	})
	return result, err
}
