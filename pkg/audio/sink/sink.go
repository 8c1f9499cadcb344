// Package sink provides playback sinks for decoded PCM audio. The
// session controller pushes chunks into a Sink; sinks never block the
// caller, performing their own buffering or dropping instead.
package sink

import (
	"io"

	"github.com/skytonelabs/skytone/pkg/audio/pcm"
)

// Sink accepts raw PCM bytes for output. Write must not block.
type Sink interface {
	// Format is the PCM format the sink expects.
	Format() pcm.Format

	// Write accepts PCM bytes. It must return promptly; a sink that is
	// falling behind drops data rather than stalling the writer.
	Write(data []byte) error

	// Close releases the sink. Further writes are discarded.
	Close() error
}

// Discard is a Sink that throws all audio away. Useful when running the
// control pipeline without an output device.
type Discard struct {
	Fmt pcm.Format
}

func (d Discard) Format() pcm.Format { return d.Fmt }
func (d Discard) Write([]byte) error { return nil }
func (d Discard) Close() error       { return nil }

// Writer adapts an io.Writer (typically a file) into a Sink. The
// underlying writer is assumed not to block meaningfully.
type Writer struct {
	W   io.Writer
	Fmt pcm.Format
}

func (w *Writer) Format() pcm.Format { return w.Fmt }

func (w *Writer) Write(data []byte) (err error) {
	_, err = w.W.Write(data)
	return err
}

func (w *Writer) Close() error {
	if c, ok := w.W.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
