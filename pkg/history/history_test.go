package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	cerrors "comicdl/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), ".comicdl", "history.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeConfig))
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	entries := []Entry{
		{Date: day(1990, time.January, 2), ImageURL: "https://a/3", FilePath: "/c/1990/3.gif", Size: 30, RunID: "run-2"},
		{Date: day(1989, time.April, 16), ImageURL: "https://a/1", FilePath: "/c/1989/1.gif", Size: 10, RunID: "run-1"},
		{Date: day(1989, time.April, 17), ImageURL: "https://a/2", FilePath: "/c/1989/2.gif", Size: 20, RunID: "run-1"},
	}
	for _, e := range entries {
		require.NoError(t, store.Record(ctx, e))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.Equal(day(1989, time.April, 16)))
	assert.True(t, all[2].Date.Equal(day(1990, time.January, 2)))
	assert.Equal(t, "https://a/1", all[0].ImageURL)
	assert.Equal(t, int64(10), all[0].Size)
	assert.Equal(t, "run-1", all[0].RunID)
	assert.False(t, all[0].DownloadedAt.IsZero())

	y1989, err := store.List(ctx, 1989)
	require.NoError(t, err)
	assert.Len(t, y1989, 2)

	y2000, err := store.List(ctx, 2000)
	require.NoError(t, err)
	assert.Empty(t, y2000)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecordReplacesSameDate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	date := day(1989, time.April, 16)
	require.NoError(t, store.Record(ctx, Entry{Date: date, ImageURL: "https://a/old", FilePath: "f", Size: 1, RunID: "r1"}))
	require.NoError(t, store.Record(ctx, Entry{Date: date, ImageURL: "https://a/new", FilePath: "f", Size: 2, RunID: "r2"}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	last, ok, err := store.Last(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://a/new", last.ImageURL)
	assert.Equal(t, "r2", last.RunID)
}

func TestLast(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, ok, err := store.Last(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Record(ctx, Entry{Date: day(1989, time.April, 18), ImageURL: "u", FilePath: "f"}))
	require.NoError(t, store.Record(ctx, Entry{Date: day(1989, time.April, 16), ImageURL: "u", FilePath: "f"}))

	last, ok, err := store.Last(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1989-04-18", last.Date.Format("2006-01-02"))
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.sqlite")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	require.NoError(t, store.Record(ctx, Entry{Date: day(1989, time.April, 16), ImageURL: "u", FilePath: "f"}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
