package core

// streaming.go provides the reader stack used by Parser.Load.
//
// The file is never held in memory as a whole: Load pulls single bytes from a
// buffered reader layered over a CountingReader, which tracks how far the
// load has progressed.

import (
	"bufio"
	"io"
)

// readBufferSize is the buffer between the file and the byte loop.
const readBufferSize = 64 * 1024

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // If known (0 if unknown)
}

// NewCountingReader creates a counting reader with optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{
		reader: r,
		Total:  total,
	}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// wrapForLoad layers a byte-oriented buffered reader over a counting reader.
func wrapForLoad(r io.Reader, totalSize int64) (*bufio.Reader, *CountingReader) {
	counter := NewCountingReader(r, totalSize)
	return bufio.NewReaderSize(counter, readBufferSize), counter
}
