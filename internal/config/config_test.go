package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ingestmon/internal/parser"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	dir := t.TempDir()

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	require.Equal(t, 3000, cfg.Port)
	require.Equal(t, "/var/log/media-ingest.log", cfg.LogPath)
	require.Equal(t, 200, cfg.TailLines)
	require.Equal(t, time.Second, cfg.PollInterval)
	require.Equal(t, "rsync", cfg.ProcessName)
	require.Equal(t, 5, cfg.HistorySize)
	require.False(t, cfg.OldestFirst)
	require.False(t, cfg.Permissive)
	require.Equal(t, parser.DefaultExtensions, cfg.Extensions)
	require.Equal(t, filepath.Join(dir, "ingestmon.db"), cfg.DBPath)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PORT", "")
	dir := t.TempDir()

	content := `
port: 8080
log_path: /tmp/ingest.log
tail_lines: 50
poll_interval: 2s
history_size: 10
oldest_first: true
permissive: true
extensions: [mkv, mp4]
db_path: /data/ingest.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/tmp/ingest.log", cfg.LogPath)
	require.Equal(t, 50, cfg.TailLines)
	require.Equal(t, 2*time.Second, cfg.PollInterval)
	require.Equal(t, 10, cfg.HistorySize)
	require.True(t, cfg.OldestFirst)
	require.True(t, cfg.Permissive)
	require.Equal(t, []string{"mkv", "mp4"}, cfg.Extensions)
	require.Equal(t, "/data/ingest.db", cfg.DBPath)

	pc := cfg.ParserConfig()
	require.Equal(t, 10, pc.HistorySize)
	require.True(t, pc.OldestFirst)
	require.True(t, pc.Permissive)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("INGESTMON_LOG_PATH", "/srv/ingest.log")
	t.Setenv("INGESTMON_POLL_INTERVAL", "500ms")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 4000, cfg.Port)
	require.Equal(t, "/srv/ingest.log", cfg.LogPath)
	require.Equal(t, 500*time.Millisecond, cfg.PollInterval)

	t.Setenv("INGESTMON_PORT", "4100")

	cfg, err = LoadFrom(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 4100, cfg.Port)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("PORT", "")

	tests := map[string]string{
		"bad yaml":       "port: [",
		"zero lines":     "tail_lines: 0",
		"zero history":   "history_size: 0",
		"zero interval":  "poll_interval: 0s",
		"port too large": "port: 70000",
		"no log path":    `log_path: ""`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

			_, err := LoadFrom(dir)
			require.Error(t, err)
		})
	}
}
