package sink

import (
	"fmt"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/skytonelabs/skytone/pkg/audio/pcm"
)

// Resample adapts audio written in one PCM format to the format of a
// downstream sink, converting channel count and sample rate. The
// generative backend streams 48 kHz stereo; output devices frequently
// want something else.
type Resample struct {
	src pcm.Format
	dst Sink

	mu sync.Mutex
	rs resampling.Resampler // nil when no rate conversion is needed
}

// NewResample creates a sink accepting src-format audio and forwarding
// it to dst in dst's format.
func NewResample(src pcm.Format, dst Sink) (*Resample, error) {
	r := &Resample{src: src, dst: dst}
	dstFmt := dst.Format()
	if src.Rate != dstFmt.Rate {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(src.Rate),
			OutputRate: float64(dstFmt.Rate),
			Channels:   dstFmt.Channels,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("sink: create resampler: %w", err)
		}
		r.rs = rs
	}
	return r, nil
}

// Format returns the format this sink accepts (the source format).
func (r *Resample) Format() pcm.Format { return r.src }

// Write converts data and forwards it downstream.
func (r *Resample) Write(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dstFmt := r.dst.Format()
	data = convertChannels(data, r.src.Channels, dstFmt.Channels)
	if r.rs == nil {
		return r.dst.Write(data)
	}

	// int16 LE → normalized float64, through the resampler, and back.
	samples := make([]float64, len(data)/2)
	for i := range samples {
		s := int16(data[i*2]) | int16(data[i*2+1])<<8
		samples[i] = float64(s) / 32768.0
	}
	out, err := r.rs.Process(samples)
	if err != nil {
		return fmt.Errorf("sink: resample: %w", err)
	}
	buf := make([]byte, len(out)*2)
	for i, s := range out {
		v := int16(s * 32767.0)
		if s > 1.0 {
			v = 32767
		} else if s < -1.0 {
			v = -32768
		}
		buf[i*2] = byte(v)
		buf[i*2+1] = byte(v >> 8)
	}
	return r.dst.Write(buf)
}

// Close closes the downstream sink.
func (r *Resample) Close() error {
	return r.dst.Close()
}

// convertChannels converts interleaved int16 LE audio between mono and
// stereo. Same channel counts pass through unchanged.
func convertChannels(data []byte, from, to int) []byte {
	switch {
	case from == to:
		return data
	case from == 2 && to == 1:
		// Downmix: average the pair.
		out := make([]byte, len(data)/2)
		for i := 0; i+3 < len(data); i += 4 {
			l := int16(data[i]) | int16(data[i+1])<<8
			rr := int16(data[i+2]) | int16(data[i+3])<<8
			m := int16((int32(l) + int32(rr)) / 2)
			out[i/2] = byte(m)
			out[i/2+1] = byte(m >> 8)
		}
		return out
	case from == 1 && to == 2:
		// Upmix: duplicate each sample.
		out := make([]byte, len(data)*2)
		for i := 0; i+1 < len(data); i += 2 {
			out[i*2] = data[i]
			out[i*2+1] = data[i+1]
			out[i*2+2] = data[i]
			out[i*2+3] = data[i+1]
		}
		return out
	default:
		return data
	}
}
