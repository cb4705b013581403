package feed

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"simvenue/pkg/instrument"
)

// FileSource replays a NDJSON file, one tick or command per line, the way a
// deterministic backtest replays a recorded market-data session. Lines are
// expected in ts order already — FileSource does not sort them.
type FileSource struct {
	file     *os.File
	scanner  *bufio.Scanner
	registry *instrument.Registry
	venue    string
	lineNo   int
}

// NewFileSource opens path and prepares it for line-by-line replay.
// registry resolves each line's instrument to the precision its decimal
// strings should be parsed at.
func NewFileSource(path string, registry *instrument.Registry, venue string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed: open %s: %w", path, err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &FileSource{file: f, scanner: scanner, registry: registry, venue: venue}, nil
}

// Next returns the next decoded Item, or io.EOF once the file is exhausted.
func (s *FileSource) Next() (Item, error) {
	for s.scanner.Scan() {
		s.lineNo++
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		item, err := decodeLine(line, s.registry, s.venue)
		if err != nil {
			return nil, fmt.Errorf("feed: line %d: %w", s.lineNo, err)
		}
		return item, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("feed: scan: %w", err)
	}
	return nil, io.EOF
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}
