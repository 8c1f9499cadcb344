package tour

import (
	"fmt"
	"time"

	"github.com/skytonelabs/skytone/pkg/geo"
)

// Waypoint is one stop of the scripted tour. Waypoints are static
// configuration, consumed read-only.
type Waypoint struct {
	// Name is a label for logs and debug UI.
	Name string `yaml:"name,omitempty"`

	// Anchor is the point the camera orbits and looks at.
	Anchor geo.LatLng `yaml:"anchor"`

	// OrbitRadius is the horizontal distance from the anchor, meters.
	OrbitRadius float64 `yaml:"orbit_radius"`

	// OrbitAltitude is the camera height while orbiting, meters.
	OrbitAltitude float64 `yaml:"orbit_altitude"`

	// LookAtAltitude is the height of the point the camera aims at.
	LookAtAltitude float64 `yaml:"look_at_altitude"`

	// Dwell is how long the camera orbits before moving on.
	Dwell time.Duration `yaml:"dwell"`
}

// validate checks a waypoint is usable.
func (w Waypoint) validate(i int) error {
	if w.OrbitRadius <= 0 {
		return fmt.Errorf("tour: waypoint %d: orbit radius must be positive", i)
	}
	if w.Dwell <= 0 {
		return fmt.Errorf("tour: waypoint %d: dwell must be positive", i)
	}
	return nil
}
