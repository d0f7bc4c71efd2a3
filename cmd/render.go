package cmd

import (
	"fmt"
	"io"
	"time"

	"ingestmon/internal/model"

	"github.com/dustin/go-humanize"
)

func printStatus(w io.Writer, status model.Status, now time.Time) {
	state := "idle"
	if status.Syncing {
		state = "syncing"
	}
	_, _ = fmt.Fprintf(w, "%-10s %s\n", "STATUS", state)

	if status.Error != "" {
		_, _ = fmt.Fprintf(w, "%-10s %s\n", "ERROR", status.Error)
	}

	printState(w, model.State{Current: status.Current, Recent: status.Recent}, now)
}

func printState(w io.Writer, state model.State, now time.Time) {
	if cur := state.Current; cur != nil {
		_, _ = fmt.Fprintf(w, "%-10s %s\n", "CURRENT", cur.Filename)
		_, _ = fmt.Fprintf(w, "%-10s %s %3d%%  %s  eta %s\n",
			"", progressBar(cur.Percent, 20), cur.Percent, cur.Throughput, cur.TimeRemaining)
		if cur.Size != "" {
			_, _ = fmt.Fprintf(w, "%-10s %s\n", "", cur.Size)
		}
	} else {
		_, _ = fmt.Fprintf(w, "%-10s %s\n", "CURRENT", "-")
	}

	if len(state.Recent) == 0 {
		_, _ = fmt.Fprintf(w, "%-10s %s\n", "RECENT", "-")
		return
	}

	_, _ = fmt.Fprintf(w, "%-10s\n", "RECENT")
	for _, e := range state.Recent {
		_, _ = fmt.Fprintf(w, "  %-40s %-12s %s\n", e.Filename, e.Throughput, humanize.RelTime(e.Timestamp, now, "ago", "from now"))
	}
}

func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100

	bar := make([]byte, 0, width+2)
	bar = append(bar, '[')
	for i := 0; i < width; i++ {
		if i < filled {
			bar = append(bar, '#')
		} else {
			bar = append(bar, '.')
		}
	}
	bar = append(bar, ']')

	return string(bar)
}
