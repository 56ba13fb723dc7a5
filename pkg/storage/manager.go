package storage

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"comicdl/pkg/config"
	cerrors "comicdl/pkg/errors"
)

// DefaultNamePattern is used when no file name pattern is configured
const DefaultNamePattern = "Comic {date}.gif"

// Target describes where the strip for one date is stored
type Target struct {
	Date             time.Time
	FormattedDate    string
	FolderPath       string
	FilePath         string
	MirrorFolderPath string
	MirrorFilePath   string
}

// HasMirror reports whether the target carries a reading folder copy
func (t Target) HasMirror() bool {
	return t.MirrorFilePath != ""
}

// FileName returns the base name of the strip file
func (t Target) FileName() string {
	return filepath.Base(t.FilePath)
}

// Manager maps dates to files under the save folder and an optional
// reading folder with the same {year}/ structure.
type Manager struct {
	saveFolder    string
	readingFolder string
	namePattern   string
}

// NewManager creates a new storage manager. The folders are created lazily
// by EnsureFolders.
func NewManager(saveFolder, readingFolder, namePattern string) (*Manager, error) {
	if strings.TrimSpace(saveFolder) == "" {
		return nil, cerrors.New(cerrors.ErrorTypeConfig, "save folder is required")
	}
	if namePattern == "" {
		namePattern = DefaultNamePattern
	}
	if !strings.Contains(namePattern, "{date}") {
		return nil, cerrors.New(cerrors.ErrorTypeConfig, "file name pattern must contain {date}")
	}

	return &Manager{
		saveFolder:    filepath.Clean(saveFolder),
		readingFolder: strings.TrimSpace(readingFolder),
		namePattern:   namePattern,
	}, nil
}

// Target computes the download target for the calendar date of date
func (m *Manager) Target(date time.Time) Target {
	date = config.CalendarDay(date)
	formatted := date.Format(config.DateLayout)
	year := strconv.Itoa(date.Year())
	name := strings.ReplaceAll(m.namePattern, "{date}", formatted)

	t := Target{
		Date:          date,
		FormattedDate: formatted,
		FolderPath:    filepath.Join(m.saveFolder, year),
	}
	t.FilePath = filepath.Join(t.FolderPath, name)

	if m.readingFolder != "" {
		t.MirrorFolderPath = filepath.Join(m.readingFolder, year)
		t.MirrorFilePath = filepath.Join(t.MirrorFolderPath, name)
	}
	return t
}

// Exists reports whether the strip file for the target is already on disk
func (m *Manager) Exists(t Target) (bool, error) {
	_, err := os.Stat(t.FilePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to stat "+t.FilePath)
}

// NextPendingDate scans forward from start, one day at a time, and returns
// the first target whose file does not exist yet. The scan is not bounded by
// any cutoff; callers compare the returned date themselves.
func (m *Manager) NextPendingDate(start time.Time) (Target, error) {
	date := config.CalendarDay(start).AddDate(0, 0, -1)
	for {
		date = date.AddDate(0, 0, 1)
		t := m.Target(date)

		exists, err := m.Exists(t)
		if err != nil {
			return Target{}, err
		}
		if !exists {
			return t, nil
		}
	}
}

// EnsureFolders creates the year folder, and its mirror when configured
func (m *Manager) EnsureFolders(t Target) error {
	if err := os.MkdirAll(t.FolderPath, 0755); err != nil {
		return cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to create folder")
	}
	if t.HasMirror() {
		if err := os.MkdirAll(t.MirrorFolderPath, 0755); err != nil {
			return cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to create reading folder")
		}
	}
	return nil
}

// SaveImage writes the strip atomically: data goes to a temporary file that
// is renamed into place, so an interrupted download never leaves a file that
// NextPendingDate would treat as complete.
func (m *Manager) SaveImage(r io.Reader, t Target) (int64, error) {
	tempFile := t.FilePath + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return 0, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to create temporary file")
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, cerrors.Wrap(cerrors.ErrorTypeNetwork, err, "failed to save image data")
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return 0, cerrors.Wrap(cerrors.ErrorTypeFilesystem, closeErr, "failed to close file")
	}

	if err := os.Rename(tempFile, t.FilePath); err != nil {
		os.Remove(tempFile)
		return 0, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to rename temporary file")
	}

	return written, nil
}

// Mirror copies the saved strip into the reading folder
func (m *Manager) Mirror(t Target) error {
	if !t.HasMirror() {
		return nil
	}

	src, err := os.Open(t.FilePath)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to open strip for mirroring")
	}
	defer src.Close()

	dst, err := os.Create(t.MirrorFilePath)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to create mirror file")
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to copy strip to reading folder")
	}
	if err := dst.Close(); err != nil {
		return cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to close mirror file")
	}
	return nil
}

// YearTargets returns the targets of every strip already stored for a year,
// ordered by date.
func (m *Manager) YearTargets(year int) ([]Target, error) {
	folder := filepath.Join(m.saveFolder, strconv.Itoa(year))
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, cerrors.Wrap(cerrors.ErrorTypeFilesystem, err, "failed to read year folder")
	}

	var targets []Target
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := m.dateFromName(entry.Name())
		if !ok || date.Year() != year {
			continue
		}
		targets = append(targets, m.Target(date))
	}

	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Date.Before(targets[j].Date)
	})
	return targets, nil
}

// dateFromName reverses the name pattern
func (m *Manager) dateFromName(name string) (time.Time, bool) {
	idx := strings.Index(m.namePattern, "{date}")
	prefix := m.namePattern[:idx]
	suffix := m.namePattern[idx+len("{date}"):]

	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return time.Time{}, false
	}
	if len(name) < len(prefix)+len(suffix) {
		return time.Time{}, false
	}
	raw := name[len(prefix) : len(name)-len(suffix)]

	date, err := config.ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// SaveFolder returns the root save folder
func (m *Manager) SaveFolder() string {
	return m.saveFolder
}

// ReadingFolder returns the mirror root, empty when mirroring is off
func (m *Manager) ReadingFolder() string {
	return m.readingFolder
}
