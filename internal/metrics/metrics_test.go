package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ingestmon/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fixedStatus model.Status

func (s fixedStatus) Status() model.Status {
	return model.Status(s)
}

func TestCounters(t *testing.T) {
	m := New()

	m.Completed(2)
	m.Completed(0)
	m.PollError("log")
	m.PollError("log")
	m.PollError("process")

	require.Equal(t, 2.0, testutil.ToFloat64(m.completed))
	require.Equal(t, 2.0, testutil.ToFloat64(m.pollErrors.WithLabelValues("log")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.pollErrors.WithLabelValues("process")))
}

func TestStatusCollectorIdle(t *testing.T) {
	c := NewStatusCollector(fixedStatus{})

	require.Equal(t, 1, testutil.CollectAndCount(c))
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP ingest_syncing Whether the transfer process is running
# TYPE ingest_syncing gauge
ingest_syncing 0
`)))
}

func TestStatusCollectorTransfer(t *testing.T) {
	c := NewStatusCollector(fixedStatus{
		Syncing: true,
		Current: &model.Snapshot{
			Filename:      "movie.mkv",
			Percent:       45,
			Throughput:    "2.00MB/s",
			TimeRemaining: "0:01:10",
		},
	})

	require.Equal(t, 4, testutil.CollectAndCount(c))
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP ingest_progress_percent Progress of the current transfer
# TYPE ingest_progress_percent gauge
ingest_progress_percent{filename="movie.mkv"} 45
# HELP ingest_remaining_seconds Estimated time left for the current transfer
# TYPE ingest_remaining_seconds gauge
ingest_remaining_seconds{filename="movie.mkv"} 70
# HELP ingest_syncing Whether the transfer process is running
# TYPE ingest_syncing gauge
ingest_syncing 1
# HELP ingest_throughput_bytes_per_second Throughput of the current transfer
# TYPE ingest_throughput_bytes_per_second gauge
ingest_throughput_bytes_per_second{filename="movie.mkv"} 2.097152e+06
`)))
}

func TestStatusCollectorInvalidUTF8Filename(t *testing.T) {
	c := NewStatusCollector(fixedStatus{
		Syncing: true,
		Current: &model.Snapshot{
			Filename:      "caf\xe9.mkv",
			Percent:       45,
			Throughput:    "50.00MB/s",
			TimeRemaining: "0:01:10",
		},
	})

	require.Equal(t, 4, testutil.CollectAndCount(c))
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP ingest_progress_percent Progress of the current transfer
# TYPE ingest_progress_percent gauge
ingest_progress_percent{filename="caf�.mkv"} 45
`), "ingest_progress_percent"))
}

func TestHTTPHandler(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(NewStatusCollector(fixedStatus{Syncing: true})))
	m.Completed(3)

	srv := httptest.NewServer(m.HTTPHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ingest_syncing 1")
	require.Contains(t, string(body), "ingest_completed_total 3")

	m.UnregisterAll()

	count, err := testutil.GatherAndCount(m.Gatherer(), "ingest_syncing")
	require.NoError(t, err)
	require.Zero(t, count)
}
