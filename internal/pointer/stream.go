package pointer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// StreamSource adapts a blocking byte stream, such as /dev/input/mice, to
// the non-blocking Source interface. Serve copies bytes into a bounded
// buffer; when the buffer is full, new bytes are dropped and the decoder
// resynchronises on the next packet start.
type StreamSource struct {
	r  io.Reader
	ch chan byte
}

// NewStreamSource buffers up to size bytes read from r.
func NewStreamSource(r io.Reader, size int) *StreamSource {
	if size < PacketSize {
		size = DefaultEmulatorQueue
	}
	return &StreamSource{r: r, ch: make(chan byte, size)}
}

// OpenDevice opens a pointer device node for reading.
func OpenDevice(path string, size int) (*StreamSource, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open pointer device: %w", err)
	}
	return NewStreamSource(f, size), f, nil
}

// TryReadByte implements Source.
func (s *StreamSource) TryReadByte() (byte, bool) {
	select {
	case b := <-s.ch:
		return b, true
	default:
		return 0, false
	}
}

// DataAvailable implements Source.
func (s *StreamSource) DataAvailable() bool {
	return len(s.ch) > 0
}

// Serve reads until the stream ends or ctx is cancelled. Cancelling does not
// interrupt a blocked Read; close the underlying reader for that.
func (s *StreamSource) Serve(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		n, err := s.r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case s.ch <- b:
			default:
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("pointer stream read failed: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// String names the service for supervision logs.
func (s *StreamSource) String() string {
	return "pointer-stream"
}
