// Package parser turns a trailing window of ingest log output into the
// transfer in flight and the recently completed ones.
//
// The log is a stream of filename lines, each followed by one or more
// progress lines:
//
//	DCIM/100GOPRO/GX010123.MP4
//	     1.2G  45%   50.00MB/s    0:01:10
//	     2.7G 100%   52.31MB/s    0:00:00 (xfr#1, to-chk=3/10)
//
// Progress lines never carry the filename, so each one is attributed to the
// nearest filename line above it within the same transfer block.
package parser

import (
	"slices"
	"strings"
	"time"

	"ingestmon/internal/model"
)

const DefaultHistorySize = 5

type Config struct {
	// HistorySize bounds the completed list. Defaults to DefaultHistorySize.
	HistorySize int

	// OldestFirst orders the completed list by completion time ascending
	// instead of most recent first.
	OldestFirst bool

	// Permissive accepts any non-chatter line as a filename. By default only
	// lines ending in one of Extensions are.
	Permissive bool

	// Extensions without the leading dot, case-insensitive. Defaults to
	// DefaultExtensions.
	Extensions []string

	// Now stamps completed entries. Defaults to time.Now.
	Now func() time.Time
}

// Parser holds configuration only; Parse is safe for concurrent use.
type Parser struct {
	historySize int
	oldestFirst bool
	permissive  bool
	extensions  map[string]struct{}
	now         func() time.Time
}

func New(config Config) *Parser {
	p := &Parser{
		historySize: config.HistorySize,
		oldestFirst: config.OldestFirst,
		permissive:  config.Permissive,
		now:         config.Now,
	}

	if p.historySize <= 0 {
		p.historySize = DefaultHistorySize
	}

	if p.now == nil {
		p.now = time.Now
	}

	exts := config.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	p.extensions = make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			p.extensions[ext] = struct{}{}
		}
	}

	return p
}

// Parse derives the state of the given window. prev is the state returned for
// the previous window: its completed entries are carried over, so a file keeps
// its original timestamp and is listed once even while its 100% line is still
// in view.
func (p *Parser) Parse(lines []string, prev model.State) model.State {
	segs := p.segments(lines)
	earlier := p.seed(prev.Recent)

	known := make(map[string]model.CompletedEntry, len(earlier))
	for _, e := range earlier {
		known[e.Filename] = e
	}

	var done []model.CompletedEntry
	seen := make(map[string]struct{})

	var current *model.Snapshot
	filename := ""

	// Look-back never crosses floor: it sits just past the last footer or
	// completion so an unrelated progress line cannot inherit a finished file.
	floor := 0

	for i, seg := range segs {
		switch seg.kind {
		case kindFooter:
			filename = ""
			floor = i + 1

		case kindFilename:
			// Re-resolve on the next progress line.
			filename = ""

		case kindProgress:
			if filename == "" {
				filename = lookBack(segs, i, floor)
			}

			pr := seg.progress

			if pr.percent == 100 {
				floor = i + 1

				if filename == "" {
					continue
				}

				if _, ok := seen[filename]; !ok {
					seen[filename] = struct{}{}

					entry, ok := known[filename]
					if !ok {
						entry = model.CompletedEntry{
							Filename:   filename,
							Throughput: pr.rate,
							Size:       pr.size,
							Timestamp:  p.now(),
						}
					}
					done = append(done, entry)
				}

				current = nil
				filename = ""
				continue
			}

			if filename == "" {
				continue
			}

			current = &model.Snapshot{
				Filename:      filename,
				Percent:       pr.percent,
				Throughput:    pr.rate,
				TimeRemaining: pr.remaining,
				Size:          pr.size,
			}
		}
	}

	// Entries that are no longer in the window finished before anything that
	// still is.
	completed := make([]model.CompletedEntry, 0, len(earlier)+len(done))
	for _, e := range earlier {
		if _, ok := seen[e.Filename]; !ok {
			completed = append(completed, e)
		}
	}
	completed = append(completed, done...)

	if len(completed) > p.historySize {
		completed = completed[len(completed)-p.historySize:]
	}

	if !p.oldestFirst {
		slices.Reverse(completed)
	}

	if current != nil && slices.ContainsFunc(completed, func(e model.CompletedEntry) bool {
		return e.Filename == current.Filename
	}) {
		current = nil
	}

	return model.State{
		Current: current,
		Recent:  completed,
	}
}

// Parse parses a single window with the default configuration.
func Parse(lines []string) model.State {
	return New(Config{}).Parse(lines, model.State{})
}

// segments splits every line on carriage returns: rsync redraws its progress
// line in place, so one logged line can hold many updates.
func (p *Parser) segments(lines []string) []segment {
	segs := make([]segment, 0, len(lines))

	for _, line := range lines {
		for part := range strings.SplitSeq(line, "\r") {
			segs = append(segs, p.classify(part))
		}
	}

	return segs
}

// seed returns prev's entries oldest first, without blanks or repeats.
func (p *Parser) seed(prev []model.CompletedEntry) []model.CompletedEntry {
	in := slices.Clone(prev)
	if !p.oldestFirst {
		slices.Reverse(in)
	}

	out := make([]model.CompletedEntry, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, e := range in {
		if e.Filename == "" {
			continue
		}

		if _, ok := seen[e.Filename]; ok {
			continue
		}

		seen[e.Filename] = struct{}{}
		out = append(out, e)
	}

	return out
}

func lookBack(segs []segment, from, floor int) string {
	for i := from - 1; i >= floor; i-- {
		if segs[i].kind == kindFilename {
			return segs[i].text
		}
	}

	return ""
}
