package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"comicdl/pkg/config"
	cerrors "comicdl/pkg/errors"

	// Pure-Go SQLite driver
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339

// Entry is one downloaded strip
type Entry struct {
	Date         time.Time
	ImageURL     string
	FilePath     string
	Size         int64
	RunID        string
	DownloadedAt time.Time
}

// Store is the download ledger
type Store struct {
	db *sql.DB
}

// Open creates or opens the ledger at path, enables WAL mode and makes sure
// the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, cerrors.New(cerrors.ErrorTypeConfig, "history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to create history folder")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to open history database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to enable WAL")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS downloads (
		date          TEXT PRIMARY KEY,
		image_url     TEXT NOT NULL,
		file_path     TEXT NOT NULL,
		size          INTEGER NOT NULL,
		run_id        TEXT NOT NULL,
		downloaded_at TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to create history schema")
	}

	return &Store{db: db}, nil
}

// Record stores an entry. A second download of the same date replaces the
// previous row.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.DownloadedAt.IsZero() {
		e.DownloadedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO downloads (date, image_url, file_path, size, run_id, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			image_url=excluded.image_url,
			file_path=excluded.file_path,
			size=excluded.size,
			run_id=excluded.run_id,
			downloaded_at=excluded.downloaded_at`,
		e.Date.Format(config.DateLayout), e.ImageURL, e.FilePath, e.Size, e.RunID,
		e.DownloadedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to record download")
	}
	return nil
}

// List returns the entries of a year ordered by date; year 0 lists everything
func (s *Store) List(ctx context.Context, year int) ([]Entry, error) {
	query := `SELECT date, image_url, file_path, size, run_id, downloaded_at FROM downloads`
	var args []interface{}
	if year != 0 {
		query += ` WHERE date >= ? AND date < ?`
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to query history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to read history")
	}
	return entries, nil
}

// Last returns the most recent strip date recorded. ok is false when the
// ledger is empty.
func (s *Store) Last(ctx context.Context) (e Entry, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT date, image_url, file_path, size, run_id, downloaded_at
		FROM downloads ORDER BY date DESC LIMIT 1`)

	e, err = scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Count returns the number of recorded downloads
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM downloads`).Scan(&n); err != nil {
		return 0, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to count history")
	}
	return n, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                  Entry
		date, downloadedAt string
	)
	if err := row.Scan(&date, &e.ImageURL, &e.FilePath, &e.Size, &e.RunID, &downloadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to scan history row")
	}

	var err error
	if e.Date, err = config.ParseDate(date); err != nil {
		return Entry{}, cerrors.Wrap(cerrors.ErrorTypeParsing, err, "invalid date in history")
	}
	if e.DownloadedAt, err = time.Parse(timeLayout, downloadedAt); err != nil {
		return Entry{}, cerrors.Wrap(cerrors.ErrorTypeParsing, err, "invalid timestamp in history")
	}
	return e, nil
}
