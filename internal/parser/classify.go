package parser

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

type kind int

const (
	kindBlank kind = iota
	kindProgress
	kindFooter
	kindSyncing
	kindFilename
	kindNoise
)

// DefaultExtensions are the file types a media ingest copies: video, audio,
// camera sidecars, subtitles and stills.
var DefaultExtensions = []string{
	"mkv", "mp4", "m4v", "mov", "avi", "wmv", "webm", "mpg", "mpeg", "ts", "mts", "m2ts", "3gp", "mxf", "insv", "360",
	"wav", "mp3", "flac", "aac", "m4a",
	"lrv", "thm", "xml", "xmp", "nfo", "srt", "ass", "ssa", "sub", "idx", "vtt",
	"jpg", "jpeg", "png", "gif", "heic", "heif", "tif", "tiff", "dng", "cr2", "cr3", "nef", "arw", "raf", "orf", "rw2",
}

// size? percent% rate h:mm:ss [anything rsync appends, e.g. "(xfr#1, to-chk=3/10)"]
var progressRe = regexp.MustCompile(`^\s*(?:(\S+)\s+)?(\d{1,3})%\s+(\d[\d.,]*[kKMGTP]?i?B/s)\s+(\d+:\d{2}:\d{2})(?:\s.*)?$`)

var syncingMarkers = []string{
	"syncing",
	"sending incremental file list",
	"receiving incremental file list",
	"building file list",
}

type progress struct {
	size      string
	percent   int
	rate      string
	remaining string
}

type segment struct {
	text     string
	kind     kind
	progress progress
}

func (p *Parser) classify(text string) segment {
	s := segment{text: strings.TrimSpace(text)}

	if s.text == "" {
		s.kind = kindBlank
		return s
	}

	if m := progressRe.FindStringSubmatch(s.text); m != nil {
		percent, err := strconv.Atoi(m[2])
		if err != nil || percent > 100 {
			s.kind = kindNoise
			return s
		}

		s.kind = kindProgress
		s.progress = progress{
			size:      m[1],
			percent:   percent,
			rate:      m[3],
			remaining: m[4],
		}
		return s
	}

	if isFooter(s.text) {
		s.kind = kindFooter
		return s
	}

	if p.hasKnownExtension(s.text) {
		s.kind = kindFilename
		return s
	}

	lower := strings.ToLower(s.text)
	for _, marker := range syncingMarkers {
		if strings.Contains(lower, marker) {
			s.kind = kindSyncing
			return s
		}
	}

	if p.permissive && !strings.HasSuffix(s.text, "/") {
		s.kind = kindFilename
		return s
	}

	s.kind = kindNoise
	return s
}

// isFooter reports lines that close a transfer block: rsync's summary
// ("sent N bytes  received N bytes  N bytes/sec", "total size is ...") and the
// ingest script's own banner.
func isFooter(line string) bool {
	return strings.HasPrefix(line, "sent ") ||
		strings.HasPrefix(line, "total size is") ||
		strings.Contains(line, "bytes/sec") ||
		strings.Contains(line, "Ingest Complete")
}

func (p *Parser) hasKnownExtension(line string) bool {
	if strings.HasSuffix(line, "/") {
		return false
	}

	ext := strings.TrimPrefix(filepath.Ext(line), ".")
	if ext == "" {
		return false
	}

	_, ok := p.extensions[strings.ToLower(ext)]
	return ok
}
