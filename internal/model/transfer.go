package model

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Snapshot is the transfer currently in flight. Token fields are copied
// verbatim from the progress line.
type Snapshot struct {
	Filename      string `json:"filename"`
	Percent       int    `json:"progress_percent"`
	Throughput    string `json:"throughput"`
	TimeRemaining string `json:"time_remaining"`
	Size          string `json:"size,omitempty"`
}

// BytesPerSecond decodes the throughput token, e.g. "65.71MB/s". Zero when the
// token cannot be read.
func (s Snapshot) BytesPerSecond() float64 {
	return ParseThroughput(s.Throughput)
}

// Remaining decodes the h:mm:ss remaining token. Zero when malformed.
func (s Snapshot) Remaining() time.Duration {
	return ParseClock(s.TimeRemaining)
}

type CompletedEntry struct {
	Filename   string    `json:"filename"`
	Throughput string    `json:"throughput"`
	Size       string    `json:"size,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// State is everything derived from one log window.
type State struct {
	Current *Snapshot        `json:"current"`
	Recent  []CompletedEntry `json:"recent"`
}

// Clone returns a deep copy so callers can hand it out without sharing.
func (s State) Clone() State {
	out := State{Recent: make([]CompletedEntry, len(s.Recent))}
	copy(out.Recent, s.Recent)

	if s.Current != nil {
		cur := *s.Current
		out.Current = &cur
	}

	return out
}

func ParseThroughput(token string) float64 {
	rate, ok := strings.CutSuffix(strings.TrimSpace(token), "/s")
	if !ok || rate == "" {
		return 0
	}

	// rsync prints kB/MB/GB with 1024 multiples.
	rate = strings.Replace(rate, "kB", "KiB", 1)
	for _, unit := range []string{"MB", "GB", "TB"} {
		if strings.HasSuffix(rate, unit) {
			rate = strings.TrimSuffix(rate, unit) + unit[:1] + "iB"
			break
		}
	}

	n, err := humanize.ParseBytes(rate)
	if err != nil {
		return 0
	}

	return float64(n)
}

func ParseClock(token string) time.Duration {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	const maxSeconds = int64(math.MaxInt64 / time.Second)

	var total int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 || (i > 0 && n > 59) {
			return 0
		}
		if total > (maxSeconds-n)/60 {
			return 0
		}
		total = total*60 + n
	}

	return time.Duration(total) * time.Second
}
