// Package trace reads penalty traces: ordered, finite sequences of access
// events consumed exactly once per simulation run.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Borislavv/go-cra-sim/internal/event"
)

const (
	FormatDNS              = "dns"
	FormatLatency          = "latency"
	FormatAddressPenalties = "address-penalties"
)

// Reader yields trace events in order. Next returns io.EOF once the trace is
// exhausted; a reader is not restartable.
type Reader interface {
	Next() (*event.AccessEvent, error)
	// Skipped is the number of malformed lines dropped so far.
	Skipped() int64
	io.Closer
}

// parseFunc turns one whitespace-split trace line into an event.
type parseFunc func(fields []string) (*event.AccessEvent, error)

// Open builds a reader for the given trace format over the file at path.
func Open(format, path string) (Reader, error) {
	parse, minFields, err := parserFor(format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file %s: %w", path, err)
	}
	return &lineReader{
		file:      f,
		scanner:   bufio.NewScanner(f),
		parse:     parse,
		minFields: minFields,
	}, nil
}

func parserFor(format string) (parse parseFunc, minFields int, err error) {
	switch format {
	case FormatDNS:
		return parseDNS, 3, nil
	case FormatLatency:
		return parseLatency, 3, nil
	case FormatAddressPenalties:
		return parseAddressPenalties, 5, nil
	default:
		return nil, 0, fmt.Errorf("unknown trace format %q", format)
	}
}

// lineReader feeds whitespace-split lines into a format parser, skipping
// blank and malformed lines.
type lineReader struct {
	file      *os.File
	scanner   *bufio.Scanner
	parse     parseFunc
	minFields int
	skipped   int64
}

func (r *lineReader) Next() (*event.AccessEvent, error) {
	for r.scanner.Scan() {
		fields := strings.Fields(r.scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < r.minFields {
			r.skipped++
			continue
		}
		ev, err := r.parse(fields)
		if err != nil {
			r.skipped++
			continue
		}
		return ev, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace line: %w", err)
	}
	return nil, io.EOF
}

func (r *lineReader) Skipped() int64 {
	return r.skipped
}

func (r *lineReader) Close() error {
	return r.file.Close()
}
