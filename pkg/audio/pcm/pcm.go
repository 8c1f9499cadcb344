// Package pcm types raw 16-bit linear PCM audio: format descriptors and
// the byte/duration arithmetic the playback path needs.
package pcm

import (
	"fmt"
	"time"
)

// Format describes a raw L16 PCM stream. Samples are 16-bit signed
// little-endian integers, interleaved when Channels > 1.
type Format struct {
	Rate     int `yaml:"rate" json:"rate"`
	Channels int `yaml:"channels" json:"channels"`
}

// Common formats.
var (
	// L16Mono24K is audio/L16; rate=24000; channels=1.
	L16Mono24K = Format{Rate: 24000, Channels: 1}
	// L16Stereo44K is audio/L16; rate=44100; channels=2.
	L16Stereo44K = Format{Rate: 44100, Channels: 2}
	// L16Stereo48K is audio/L16; rate=48000; channels=2. The generative
	// music backend streams in this format.
	L16Stereo48K = Format{Rate: 48000, Channels: 2}
)

// Depth is the sample bit depth. All formats in this package are 16-bit.
const Depth = 16

// FrameBytes returns the byte size of one frame (one sample per channel).
func (f Format) FrameBytes() int {
	return f.Channels * Depth / 8
}

// BytesRate returns the byte rate of the stream.
func (f Format) BytesRate() int {
	return f.Rate * f.FrameBytes()
}

// BytesIn returns the number of bytes in the given duration, rounded
// down to a whole frame.
func (f Format) BytesIn(d time.Duration) int {
	frames := int64(time.Duration(f.Rate) * d / time.Second)
	return int(frames) * f.FrameBytes()
}

// Duration returns the play time of the given number of bytes.
func (f Format) Duration(bytes int) time.Duration {
	frames := bytes / f.FrameBytes()
	return time.Duration(frames) * time.Second / time.Duration(f.Rate)
}

// String returns the MIME-style description of the format.
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.Rate, f.Channels)
}

// Chunk is a block of raw PCM bytes in a known format.
type Chunk struct {
	Format Format
	Data   []byte
}

// Duration returns the play time of the chunk.
func (c Chunk) Duration() time.Duration {
	return c.Format.Duration(len(c.Data))
}
