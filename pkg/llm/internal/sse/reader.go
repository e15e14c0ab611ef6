// ABOUTME: Incremental Server-Sent Events decoder over an io.Reader
// ABOUTME: Handles multi-line data fields, comments, and CRLF line endings

package sse

import (
	"bufio"
	"io"
	"strings"
)

// Event is one decoded Server-Sent Event.
type Event struct {
	Type string
	Data string
	ID   string
}

// Decoder reads events from a byte stream.
type Decoder struct {
	scanner *bufio.Scanner
}

// Lines larger than this abort the stream. Chat completion chunks are
// small; anything past 1MB means a misbehaving server.
const maxLineBytes = 1 << 20

// NewDecoder wraps r in an SSE decoder.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{scanner: s}
}

// Next returns the next event, or io.EOF when the stream ends cleanly.
// A trailing event not terminated by a blank line is still returned.
func (d *Decoder) Next() (*Event, error) {
	var (
		ev        Event
		dataLines []string
		seen      bool
	)

	flush := func() *Event {
		ev.Data = strings.Join(dataLines, "\n")
		return &ev
	}

	for d.scanner.Scan() {
		line := strings.TrimSuffix(d.scanner.Text(), "\r")

		if line == "" {
			if seen {
				return flush(), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue // comment / keep-alive
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Type = value
			seen = true
		case "data":
			dataLines = append(dataLines, value)
			seen = true
		case "id":
			ev.ID = value
			seen = true
		}
	}

	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	if seen {
		return flush(), nil
	}
	return nil, io.EOF
}
