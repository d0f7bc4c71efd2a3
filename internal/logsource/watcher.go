package logsource

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ingestmon/internal/logger"
	"ingestmon/internal/model"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports changes to a log file. It watches the parent directory so
// the file may be created late, truncated or rotated.
type Watcher struct {
	fw       *fsnotify.Watcher
	eventCh  chan model.LogEvent
	doneCh   chan struct{}
	stopOnce sync.Once
}

func NewWatcher(bufferSize int) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		fw:      fw,
		eventCh: make(chan model.LogEvent, bufferSize),
		doneCh:  make(chan struct{}),
	}, nil
}

func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("log directory not found: %w", err)
	}

	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.run()

	logger.Log.Info("log watcher started",
		zap.String("path", absPath))
	return nil
}

func (w *Watcher) run() {
	defer close(w.eventCh)

	for {
		select {
		case <-w.doneCh:
			logger.Log.Debug("log watcher stopping")
			return

		case fsEvent, ok := <-w.fw.Events:
			if !ok {
				return
			}

			eventType := toEventType(fsEvent.Op)
			if eventType == "" {
				continue
			}

			event := model.LogEvent{
				Type:      eventType,
				Path:      fsEvent.Name,
				Timestamp: time.Now(),
			}

			select {
			case w.eventCh <- event:
			default:
				logger.Log.Debug("log event channel is full, dropping event",
					zap.String("path", fsEvent.Name))
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			logger.Log.Error("log watcher error",
				zap.Error(err))
		}
	}
}

func (w *Watcher) Events() <-chan model.LogEvent {
	return w.eventCh
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.doneCh)
		_ = w.fw.Close()
	})
}

func toEventType(op fsnotify.Op) model.EventType {
	switch {
	case op.Has(fsnotify.Create):
		return model.EventCreate
	case op.Has(fsnotify.Write):
		return model.EventWrite
	case op.Has(fsnotify.Remove):
		return model.EventRemove
	case op.Has(fsnotify.Rename):
		return model.EventRename
	default:
		return ""
	}
}
