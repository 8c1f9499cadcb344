package sink

import (
	"sync"
	"time"

	"github.com/skytonelabs/skytone/pkg/audio/pcm"
)

// Ring is a fixed-capacity Sink that keeps a sliding window of the most
// recent audio. When the buffer is full the oldest bytes are overwritten,
// so a stalled consumer can never block the session read loop.
//
// The consumer side (an audio device callback) calls Read, which never
// blocks either: when the buffer runs dry the remainder of the read is
// filled with silence.
type Ring struct {
	fmt pcm.Format

	mu         sync.Mutex
	buf        []byte
	head, tail int64
	closed     bool
	dropped    int64
}

// NewRing creates a ring sink holding up to window of audio in fmt.
func NewRing(fmt pcm.Format, window int) *Ring {
	if window <= 0 {
		window = fmt.BytesIn(defaultWindow)
	}
	// Keep whole frames so reads stay sample aligned.
	window -= window % fmt.FrameBytes()
	return &Ring{fmt: fmt, buf: make([]byte, window)}
}

const defaultWindow = 2 * time.Second

func (r *Ring) Format() pcm.Format { return r.fmt }

// Write appends data, overwriting the oldest bytes when full. Writes to
// a closed ring are discarded.
func (r *Ring) Write(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}

	size := int64(len(r.buf))
	if int64(len(data)) >= size {
		// Larger than the whole window: keep only the tail.
		r.dropped += r.tail - r.head + int64(len(data)) - size
		copy(r.buf, data[int64(len(data))-size:])
		r.head = 0
		r.tail = size
		return nil
	}

	for _, b := range data {
		r.buf[r.tail%size] = b
		r.tail++
		if r.tail-r.head > size {
			r.head++
			r.dropped++
		}
	}
	return nil
}

// Read fills p with buffered audio, padding with silence when the
// buffer has less than len(p) available. It never blocks.
func (r *Ring) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := int64(len(r.buf))
	n := 0
	for n < len(p) && r.head < r.tail {
		p[n] = r.buf[r.head%size]
		r.head++
		n++
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// Buffered returns the number of bytes currently held.
func (r *Ring) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.tail - r.head)
}

// Dropped returns the total number of bytes overwritten before being
// read.
func (r *Ring) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close discards buffered audio and rejects further writes.
func (r *Ring) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.head = r.tail
	return nil
}
