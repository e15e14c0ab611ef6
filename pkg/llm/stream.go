// ABOUTME: Channel-based chunk streaming for LLM completions
// ABOUTME: Producers Send chunks and Finish/Fail; consumers range over Chunks then check Err

package llm

import (
	"sync"
	"sync/atomic"
)

// Stream delivers completion chunks from a provider to a consumer.
// Consumers range over Chunks() and call Err() once the channel closes.
//
// Send writes to an internal channel that is never closed; Finish and Fail
// close only the done channel. A drainer goroutine forwards chunks to the
// consumer-facing channel and closes it after done fires and the buffer is
// empty, so Send can never race a close.
type Stream struct {
	chunks chan Chunk
	out    chan Chunk
	done   chan struct{}
	err    atomic.Pointer[error]
	usage  atomic.Pointer[Usage]
	once   sync.Once
}

// NewStream creates a Stream with the given buffer size.
func NewStream(bufSize int) *Stream {
	s := &Stream{
		chunks: make(chan Chunk, bufSize),
		out:    make(chan Chunk, bufSize),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *Stream) drain() {
	defer close(s.out)
	for {
		select {
		case c := <-s.chunks:
			s.out <- c
		case <-s.done:
			for {
				select {
				case c := <-s.chunks:
					s.out <- c
				default:
					return
				}
			}
		}
	}
}

// Chunks returns the consumer-facing channel. It is closed once the stream
// has finished and all buffered chunks were delivered.
func (s *Stream) Chunks() <-chan Chunk {
	return s.out
}

// Send delivers one chunk. Returns false if the stream already finished.
func (s *Stream) Send(c Chunk) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.chunks <- c:
		return true
	case <-s.done:
		return false
	}
}

// Finish completes the stream successfully, recording final token usage
// when the provider reported it.
func (s *Stream) Finish(usage *Usage) {
	s.once.Do(func() {
		if usage != nil {
			s.usage.Store(usage)
		}
		close(s.done)
	})
}

// Fail completes the stream with a terminal error.
func (s *Stream) Fail(err error) {
	s.once.Do(func() {
		s.err.Store(&err)
		close(s.done)
	})
}

// Err blocks until the stream completes and returns its terminal error,
// or nil on success.
func (s *Stream) Err() error {
	<-s.done
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Usage blocks until the stream completes and returns the reported token
// usage, or nil if the provider did not report any.
func (s *Stream) Usage() *Usage {
	<-s.done
	return s.usage.Load()
}

// Done returns a channel closed when the stream completes.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}
