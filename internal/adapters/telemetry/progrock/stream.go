package progrock

import (
	"io"
	"sync"

	"github.com/vito/progrock"
)

var _ progrock.Writer = (*Stream)(nil)

// Stream is a progrock writer whose updates are read back in write order.
// Writes never block; Read blocks until an update arrives or the stream is closed.
type Stream struct {
	mu      sync.Mutex
	updates []*progrock.StatusUpdate
	closed  bool
	notify  chan struct{}
}

// NewStream creates an open Stream.
func NewStream() *Stream {
	return &Stream{notify: make(chan struct{}, 1)}
}

// WriteStatus queues an update.
func (s *Stream) WriteStatus(update *progrock.StatusUpdate) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return io.ErrClosedPipe
	}
	s.updates = append(s.updates, update)
	s.mu.Unlock()
	s.wake()
	return nil
}

// Read returns the next update. It returns io.EOF once the stream is closed and drained.
func (s *Stream) Read() (*progrock.StatusUpdate, error) {
	for {
		s.mu.Lock()
		if len(s.updates) > 0 {
			update := s.updates[0]
			s.updates[0] = nil
			s.updates = s.updates[1:]
			s.mu.Unlock()
			return update, nil
		}
		if s.closed {
			s.mu.Unlock()
			return nil, io.EOF
		}
		s.mu.Unlock()
		<-s.notify
	}
}

// Close ends the stream. Queued updates remain readable.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
	return nil
}

func (s *Stream) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
