package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of download progress within one run
type StatusTracker struct {
	TotalDownloaded int
	Limit           int
	BytesWritten    int64
	StartTime       time.Time
}

// NewStatusTracker creates a new status tracker. limit <= 0 means unbounded.
func NewStatusTracker(limit int) *StatusTracker {
	return &StatusTracker{
		Limit:     limit,
		StartTime: time.Now(),
	}
}

// IncrementDownloaded records one finished strip
func (st *StatusTracker) IncrementDownloaded(size int64) {
	st.TotalDownloaded++
	if size > 0 {
		st.BytesWritten += size
	}
}

// LimitReached reports whether the bounded count has been downloaded
func (st *StatusTracker) LimitReached() bool {
	return st.Limit > 0 && st.TotalDownloaded >= st.Limit
}

// GetProgress returns a progress bar for bounded runs, or the plain count
func (st *StatusTracker) GetProgress() string {
	if st.Limit <= 0 {
		return fmt.Sprintf("%d downloaded", st.TotalDownloaded)
	}

	const width = 20
	done := st.TotalDownloaded
	if done > st.Limit {
		done = st.Limit
	}
	filled := done * width / st.Limit

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.TotalDownloaded, st.Limit)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// Summary returns a one-line run summary
func (st *StatusTracker) Summary() string {
	return fmt.Sprintf("%s, %s in %s",
		st.GetProgress(),
		formatBytes(st.BytesWritten),
		st.GetElapsedTime().Round(time.Millisecond))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
