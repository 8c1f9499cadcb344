package flyover

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/skytonelabs/skytone/pkg/district"
	"github.com/skytonelabs/skytone/pkg/geo"
	"github.com/skytonelabs/skytone/pkg/indicator"
	"github.com/skytonelabs/skytone/pkg/musicrt"
	"github.com/skytonelabs/skytone/pkg/proximity"
	"github.com/skytonelabs/skytone/pkg/tour"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the single YAML document describing a city: its districts
// and tour waypoints plus the tuning of every stage of the pipeline.
type Config struct {
	// Origin centers the local planar frame, usually the city center.
	Origin geo.LatLng `yaml:"origin"`

	// Proximity tunes the weight engine (falloff shape, cap, ambient
	// prompt).
	Proximity proximity.Config `yaml:"proximity,omitempty"`

	// Indicator tunes the area-name overlay timing.
	Indicator indicator.Config `yaml:"indicator,omitempty"`

	// Tour tunes the scripted flythrough.
	Tour tour.Config `yaml:"tour,omitempty"`

	// Generation is the music generation config sent on connect.
	Generation musicrt.GenerationConfig `yaml:"generation,omitempty"`

	// Orchestration tunes the per-tick glue (prompt throttling,
	// teleport detection).
	Orchestration Options `yaml:"orchestration,omitempty"`

	Districts []district.District `yaml:"districts"`
	Waypoints []tour.Waypoint     `yaml:"waypoints,omitempty"`
}

// ParseConfig decodes a city config document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("flyover: parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses a city config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("flyover: read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// DefaultConfig returns the embedded demo city (central Tokyo).
func DefaultConfig() Config {
	cfg, err := ParseConfig(defaultYAML)
	if err != nil {
		// The embedded document is covered by tests; this cannot happen
		// at runtime.
		panic(err)
	}
	return cfg
}
