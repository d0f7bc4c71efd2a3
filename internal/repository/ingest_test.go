package repository

import (
	"path/filepath"
	"testing"
	"time"

	"ingestmon/internal/db"
	"ingestmon/internal/model"

	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()

	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() {
		_ = db.Close()
	})
}

func TestIngestSaveOnce(t *testing.T) {
	setupDB(t)
	repo := NewIngestRepository()

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := model.CompletedEntry{Filename: "movie.mkv", Throughput: "50.00MB/s", Size: "1.2G", Timestamp: at}

	saved, err := repo.Save(entry)
	require.NoError(t, err)
	require.True(t, saved)

	entry.Timestamp = at.Add(time.Hour)
	saved, err = repo.Save(entry)
	require.NoError(t, err)
	require.False(t, saved)

	exists, err := repo.Exists("movie.mkv")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists("other.mkv")
	require.NoError(t, err)
	require.False(t, exists)

	recent, err := repo.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "movie.mkv", recent[0].Filename)
	require.Equal(t, "50.00MB/s", recent[0].Throughput)
	require.Equal(t, "1.2G", recent[0].Size)
	require.True(t, at.Equal(recent[0].CompletedAt))
}

func TestIngestRecentAndStats(t *testing.T) {
	setupDB(t)
	repo := NewIngestRepository()

	stats, err := repo.GetStats()
	require.NoError(t, err)
	require.Zero(t, stats.Total)
	require.Nil(t, stats.First)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		_, err := repo.Save(model.CompletedEntry{
			Filename:  name,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := repo.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c.mkv", recent[0].Filename)
	require.Equal(t, "b.mkv", recent[1].Filename)

	stats, err = repo.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.Total)
	require.True(t, base.Equal(*stats.First))
	require.True(t, base.Add(2*time.Minute).Equal(*stats.Last))
}
