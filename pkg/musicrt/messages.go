package musicrt

import "encoding/json"

// clientMessage is the envelope for everything sent to the backend.
// Exactly one field is set per message.
type clientMessage struct {
	Setup                 *setupPayload     `json:"setup,omitempty"`
	ClientContent         *clientContent    `json:"clientContent,omitempty"`
	MusicGenerationConfig *GenerationConfig `json:"musicGenerationConfig,omitempty"`
	PlaybackControl       string            `json:"playbackControl,omitempty"`
}

// setupPayload opens a session for a model.
type setupPayload struct {
	Model string `json:"model"`
}

// clientContent carries a prompt blend update.
type clientContent struct {
	WeightedPrompts []WeightedPrompt `json:"weightedPrompts"`
}

// ServerMessage is the envelope for everything received from the
// backend. Exactly one field is non-nil.
type ServerMessage struct {
	// SetupComplete acknowledges the setup message.
	SetupComplete *SetupComplete `json:"setupComplete,omitempty"`

	// ServerContent carries generated audio.
	ServerContent *ServerContent `json:"serverContent,omitempty"`

	// FilteredPrompt reports a prompt the backend refused to play.
	FilteredPrompt *FilteredPrompt `json:"filteredPrompt,omitempty"`

	// Raw is the undecoded message for debugging.
	Raw json.RawMessage `json:"-"`
}

// SetupComplete acknowledges session setup.
type SetupComplete struct {
	SessionID string `json:"sessionId,omitempty"`
}

// ServerContent is a batch of generated audio.
type ServerContent struct {
	AudioChunks []AudioChunk `json:"audioChunks"`
}

// AudioChunk is one block of generated audio. Data is base64-encoded
// PCM in OutputFormat.
type AudioChunk struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType,omitempty"`
}

// FilteredPrompt reports a rejected prompt and why.
type FilteredPrompt struct {
	Text           string `json:"text"`
	FilteredReason string `json:"filteredReason,omitempty"`
}
