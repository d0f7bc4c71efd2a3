package logsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

var ErrNotFound = errors.New("log file not found")

const chunkSize = 32 * 1024

// Tail returns the last n lines of the file at path, oldest first. The file is
// read backwards in chunks so a large log costs no more than its tail. The
// empty remainder after a final newline is not a line; a trailing \r is
// stripped but a \r inside a line is kept.
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat log: %w", err)
	}

	if n <= 0 || info.Size() == 0 {
		return []string{}, nil
	}

	var buf []byte
	newlines := 0
	offset := info.Size()

	// n lines are complete once n+1 newlines are in hand, counting the one
	// that usually terminates the file.
	for offset > 0 && newlines <= n {
		size := min(int64(chunkSize), offset)
		offset -= size

		chunk := make([]byte, size)
		if _, err := f.ReadAt(chunk, offset); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read log: %w", err)
		}

		newlines += bytes.Count(chunk, []byte{'\n'})
		buf = append(chunk, buf...)
	}

	text := strings.TrimSuffix(string(buf), "\n")
	lines := strings.Split(text, "\n")

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines, nil
}

// File is a log source backed by a file on disk.
type File struct {
	path  string
	lines int
}

func NewFile(path string, lines int) *File {
	return &File{
		path:  path,
		lines: lines,
	}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Lines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Tail(f.path, f.lines)
}
