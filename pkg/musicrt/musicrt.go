// Package musicrt is a client for a realtime generative-music backend:
// a streaming session that continuously renders audio from a weighted
// prompt blend. The caller steers the mix by replacing the prompt set
// while playback runs; the backend answers with a stream of base64 PCM
// chunks.
//
// Both a WebSocket implementation and the Session interface live here so
// the session controller can be tested against a fake backend.
package musicrt

import "iter"

// Session is a live connection to the music backend. Implementations
// must be safe for concurrent use: the controller sends from one
// goroutine while consuming Messages from another.
type Session interface {
	// SetWeightedPrompts replaces the active prompt blend. The backend
	// cross-fades generation toward the new mix; the most recently
	// received set wins.
	SetWeightedPrompts(prompts []WeightedPrompt) error

	// SetMusicGenerationConfig updates generation parameters (BPM,
	// guidance, and so on).
	SetMusicGenerationConfig(cfg GenerationConfig) error

	// Play starts or resumes audio generation.
	Play() error

	// Pause suspends generation without losing context.
	Pause() error

	// Stop halts generation and discards the stream position.
	Stop() error

	// ResetContext discards the backend's generation history while
	// keeping the connection. Used after large scene jumps.
	ResetContext() error

	// Messages yields server messages until the session closes or a
	// read fails. After an error is yielded, iteration stops.
	Messages() iter.Seq2[*ServerMessage, error]

	// Close tears down the connection.
	Close() error
}
