package pipeline

import (
	"path/filepath"

	"ingestmon/internal/model"
)

// Filter passes through events whose file name matches one of patterns
// (filepath.Match syntax, e.g. "media-ingest.log*" to follow rotations).
func Filter(inCh <-chan model.LogEvent, patterns []string) <-chan model.LogEvent {
	outCh := make(chan model.LogEvent, cap(inCh))

	go func() {
		defer close(outCh)

		for event := range inCh {
			if !matches(event.Path, patterns) {
				continue
			}
			outCh <- event
		}
	}()

	return outCh
}

func matches(path string, patterns []string) bool {
	name := filepath.Base(path)

	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}

	return false
}
