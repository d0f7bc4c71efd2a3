package daemon

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"ingestmon/internal/logger"
	"ingestmon/internal/metrics"
	"ingestmon/internal/model"
	"ingestmon/internal/parser"

	"go.uber.org/zap"
)

type LogSource interface {
	Lines(ctx context.Context) ([]string, error)
}

type ProcessChecker interface {
	Running(ctx context.Context) (bool, error)
}

// Archive keeps completed transfers beyond the log window.
type Archive interface {
	Save(entry model.CompletedEntry) (bool, error)
}

type MonitorOptions struct {
	Source   LogSource
	Checker  ProcessChecker
	Parser   *parser.Parser
	Archive  Archive          // optional
	Metrics  *metrics.Metrics // optional
	Interval time.Duration

	// Events triggers an extra cycle on every receive, e.g. debounced writes
	// to the log file. Optional.
	Events <-chan model.LogEvent
}

// Monitor runs the poll loop: read the log window, check the process, parse,
// publish. One goroutine; cycles never overlap.
type Monitor struct {
	source   LogSource
	checker  ProcessChecker
	parser   *parser.Parser
	archive  Archive
	metrics  *metrics.Metrics
	interval time.Duration
	events   <-chan model.LogEvent
	state    *MonitorState
	now      func() time.Time

	// Completions whose Save failed; retried on every cycle.
	unarchived map[string]model.CompletedEntry
}

func NewMonitor(opts MonitorOptions) *Monitor {
	m := &Monitor{
		source:   opts.Source,
		checker:  opts.Checker,
		parser:   opts.Parser,
		archive:  opts.Archive,
		metrics:  opts.Metrics,
		interval: opts.Interval,
		events:   opts.Events,
		state:    NewMonitorState(),
		now:      time.Now,

		unarchived: make(map[string]model.CompletedEntry),
	}

	if m.parser == nil {
		m.parser = parser.New(parser.Config{})
	}

	if m.interval <= 0 {
		m.interval = time.Second
	}

	return m
}

// Run polls until ctx is done. The first cycle runs immediately.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	events := m.events

	m.Cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			m.Cycle(ctx)

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}

			logger.Log.Debug("log changed",
				zap.String("path", event.Path),
				zap.String("event", string(event.Type)))
			m.Cycle(ctx)
		}
	}
}

// Cycle performs one poll. Failures are logged and published as the status
// error; they never stop the loop.
func (m *Monitor) Cycle(ctx context.Context) {
	result := cycleResult{at: m.now()}

	var errs []error

	lines, err := m.source.Lines(ctx)
	if err != nil {
		result.logErr = err
		errs = append(errs, fmt.Errorf("log: %w", err))
		m.pollError("log", err)
	} else {
		result.lines = lines
	}

	if m.checker != nil {
		running, err := m.checker.Running(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("process: %w", err))
			m.pollError("process", err)
		}
		result.syncing = running
	}

	if result.logErr == nil {
		prev := m.state.Derived()
		next := m.parser.Parse(lines, prev)
		m.recordCompleted(prev, next)
		result.derived = &next
	}

	if err := errors.Join(errs...); err != nil {
		result.errMsg = err.Error()
	}

	m.state.publish(result)
}

func (m *Monitor) recordCompleted(prev, next model.State) {
	known := make(map[string]struct{}, len(prev.Recent))
	for _, e := range prev.Recent {
		known[e.Filename] = struct{}{}
	}

	var fresh []model.CompletedEntry
	for _, e := range next.Recent {
		if _, ok := known[e.Filename]; !ok {
			fresh = append(fresh, e)
			known[e.Filename] = struct{}{}
		}
	}

	count := 0
	if m.archive == nil {
		count = len(fresh)
	} else {
		// Retries go first; they completed earlier.
		pending := make([]model.CompletedEntry, 0, len(m.unarchived)+len(fresh))
		for name, e := range m.unarchived {
			if !slices.ContainsFunc(fresh, func(f model.CompletedEntry) bool { return f.Filename == name }) {
				pending = append(pending, e)
			}
		}
		pending = append(pending, fresh...)

		for _, e := range pending {
			if m.archiveEntry(e) {
				count++
			}
		}
	}

	if m.metrics != nil {
		m.metrics.Completed(count)
	}
}

// archiveEntry saves e and reports whether it was newly archived. Failed
// saves are kept for the next cycle.
func (m *Monitor) archiveEntry(e model.CompletedEntry) bool {
	saved, err := m.archive.Save(e)
	if err != nil {
		m.unarchived[e.Filename] = e
		logger.Log.Error("failed to archive ingest",
			zap.String("filename", e.Filename),
			zap.Int("pending", len(m.unarchived)),
			zap.Error(err))
		return false
	}

	delete(m.unarchived, e.Filename)

	if saved {
		logger.Log.Info("ingest completed",
			zap.String("filename", e.Filename),
			zap.String("throughput", e.Throughput),
			zap.String("size", e.Size))
	}

	return saved
}

func (m *Monitor) pollError(source string, err error) {
	logger.Log.Warn("poll failed",
		zap.String("source", source),
		zap.Error(err))

	if m.metrics != nil {
		m.metrics.PollError(source)
	}
}

func (m *Monitor) Status() model.Status {
	return m.state.Status()
}

func (m *Monitor) Logs() ([]string, error) {
	return m.state.Logs()
}
