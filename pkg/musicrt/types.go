package musicrt

import "github.com/skytonelabs/skytone/pkg/audio/pcm"

// OutputFormat is the PCM format the backend streams: 48 kHz stereo
// 16-bit little-endian.
var OutputFormat = pcm.L16Stereo48K

// WeightedPrompt is one entry of the prompt blend. Weight is relative;
// the backend normalizes the set it receives.
type WeightedPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// GenerationConfig tunes the music generator. Zero-valued fields are
// omitted and keep the backend's defaults.
type GenerationConfig struct {
	// BPM fixes the tempo in beats per minute.
	BPM int `json:"bpm,omitempty" yaml:"bpm,omitempty"`

	// Scale pins the musical key, e.g. "C_MAJOR_A_MINOR".
	Scale string `json:"scale,omitempty" yaml:"scale,omitempty"`

	// Temperature controls sampling randomness, typically [0, 3].
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// Guidance controls how strongly generation follows the prompts.
	Guidance float64 `json:"guidance,omitempty" yaml:"guidance,omitempty"`

	// Density steers note density in [0, 1].
	Density float64 `json:"density,omitempty" yaml:"density,omitempty"`

	// Brightness steers tonal brightness in [0, 1].
	Brightness float64 `json:"brightness,omitempty" yaml:"brightness,omitempty"`

	// MuteBass and MuteDrums silence those stems.
	MuteBass  bool `json:"muteBass,omitempty" yaml:"mute_bass,omitempty"`
	MuteDrums bool `json:"muteDrums,omitempty" yaml:"mute_drums,omitempty"`
}

// playback control verbs understood by the backend.
const (
	controlPlay         = "PLAY"
	controlPause        = "PAUSE"
	controlStop         = "STOP"
	controlResetContext = "RESET_CONTEXT"
)
