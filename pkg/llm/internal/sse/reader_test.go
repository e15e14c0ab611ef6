// ABOUTME: Tests for the SSE decoder
// ABOUTME: Table-driven coverage of field parsing, comments, and stream termination

package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDecoderNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		{
			name:  "single data event",
			input: "data: {\"x\":1}\n\n",
			want:  []Event{{Data: `{"x":1}`}},
		},
		{
			name:  "typed event with id",
			input: "event: message\nid: 7\ndata: hello\n\n",
			want:  []Event{{Type: "message", ID: "7", Data: "hello"}},
		},
		{
			name:  "multi-line data joined with newline",
			input: "data: first\ndata: second\n\n",
			want:  []Event{{Data: "first\nsecond"}},
		},
		{
			name:  "comments and blank lines skipped",
			input: ": keep-alive\n\n: ping\ndata: ok\n\n",
			want:  []Event{{Data: "ok"}},
		},
		{
			name:  "crlf line endings",
			input: "data: one\r\n\r\ndata: two\r\n\r\n",
			want:  []Event{{Data: "one"}, {Data: "two"}},
		},
		{
			name:  "no space after colon",
			input: "data:tight\n\n",
			want:  []Event{{Data: "tight"}},
		},
		{
			name:  "trailing event without blank line",
			input: "data: last",
			want:  []Event{{Data: "last"}},
		},
		{
			name:  "stream of chunks",
			input: "data: a\n\ndata: b\n\ndata: [DONE]\n\n",
			want:  []Event{{Data: "a"}, {Data: "b"}, {Data: "[DONE]"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := NewDecoder(strings.NewReader(tt.input))
			var got []Event
			for {
				ev, err := d.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("Next: %v", err)
				}
				got = append(got, *ev)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("event %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecoderEmptyStream(t *testing.T) {
	t.Parallel()

	d := NewDecoder(strings.NewReader(""))
	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("want io.EOF on empty stream, got %v", err)
	}
}
