package pipeline

import (
	"time"

	"ingestmon/internal/model"
)

// Debounce holds events until inCh has been quiet for delay, then emits the
// latest event per path. A burst of appends to the log becomes one event.
// Events are dropped rather than blocking when the consumer is behind.
func Debounce(inCh <-chan model.LogEvent, delay time.Duration) <-chan model.LogEvent {
	outCh := make(chan model.LogEvent, max(cap(inCh), 1))

	go func() {
		defer close(outCh)

		pending := make(map[string]model.LogEvent)
		order := make([]string, 0)

		timer := time.NewTimer(delay)
		timer.Stop()
		var fire <-chan time.Time

		flush := func() {
			for _, path := range order {
				select {
				case outCh <- pending[path]:
				default:
				}
			}
			clear(pending)
			order = order[:0]
		}

		for {
			select {
			case event, ok := <-inCh:
				if !ok {
					timer.Stop()
					flush()
					return
				}

				if _, seen := pending[event.Path]; !seen {
					order = append(order, event.Path)
				}
				pending[event.Path] = event

				timer.Reset(delay)
				fire = timer.C

			case <-fire:
				fire = nil
				flush()
			}
		}
	}()

	return outCh
}
