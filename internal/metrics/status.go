package metrics

import (
	"strings"

	"ingestmon/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

type StatusReader interface {
	Status() model.Status
}

type statusCollector struct {
	reader StatusReader

	syncingDesc    *prometheus.Desc
	progressDesc   *prometheus.Desc
	throughputDesc *prometheus.Desc
	remainingDesc  *prometheus.Desc
}

// NewStatusCollector exposes the last published status. The transfer gauges
// are only emitted while a transfer is in flight.
func NewStatusCollector(reader StatusReader) prometheus.Collector {
	return &statusCollector{
		reader: reader,
		syncingDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "syncing"),
			"Whether the transfer process is running",
			nil, nil),
		progressDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "progress_percent"),
			"Progress of the current transfer",
			[]string{"filename"}, nil),
		throughputDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "throughput_bytes_per_second"),
			"Throughput of the current transfer",
			[]string{"filename"}, nil),
		remainingDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "remaining_seconds"),
			"Estimated time left for the current transfer",
			[]string{"filename"}, nil),
	}
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.syncingDesc
	ch <- c.progressDesc
	ch <- c.throughputDesc
	ch <- c.remainingDesc
}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	status := c.reader.Status()

	syncing := 0.0
	if status.Syncing {
		syncing = 1
	}
	ch <- prometheus.MustNewConstMetric(c.syncingDesc, prometheus.GaugeValue, syncing)

	cur := status.Current
	if cur == nil {
		return
	}

	// Log bytes are passed through as-is; label values must be UTF-8.
	filename := strings.ToValidUTF8(cur.Filename, "\uFFFD")

	ch <- prometheus.MustNewConstMetric(c.progressDesc, prometheus.GaugeValue, float64(cur.Percent), filename)
	ch <- prometheus.MustNewConstMetric(c.throughputDesc, prometheus.GaugeValue, cur.BytesPerSecond(), filename)
	ch <- prometheus.MustNewConstMetric(c.remainingDesc, prometheus.GaugeValue, cur.Remaining().Seconds(), filename)
}
