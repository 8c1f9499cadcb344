// Package tour drives the scripted first-visit flythrough: an
// autonomous camera path that transitions between waypoints, orbits
// each one, and returns home. While a tour is active the choreographer
// is the only writer of the camera pose.
//
// The state machine is cooperative: the host render loop calls Update
// once per frame with the elapsed wall-clock delta.
package tour

import (
	"log/slog"
	"math"
	"time"

	"github.com/skytonelabs/skytone/pkg/geo"
)

// Phase is the tour state machine phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTransitioning
	PhaseOrbiting
	PhaseReturning
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseOrbiting:
		return "orbiting"
	case PhaseReturning:
		return "returning"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

// Pose is a camera position and orientation in the local frame.
type Pose struct {
	Position geo.Vec3
	Rotation geo.Quat
}

// Camera is the opaque pose handle the host supplies. The choreographer
// mutates it directly while active.
type Camera interface {
	Pose() Pose
	SetPose(Pose)
}

// Config tunes the choreography. Zero fields take defaults.
type Config struct {
	// TransitionDuration is the flight time between waypoints (and for
	// the final return leg). Default 3s.
	TransitionDuration time.Duration `yaml:"transition_duration,omitempty"`

	// OrbitSweep is the angle swept while dwelling at a waypoint, in
	// radians. The angular speed is chosen so the sweep completes
	// exactly when the dwell expires. Default 2π (one full circle).
	OrbitSweep float64 `yaml:"orbit_sweep,omitempty"`

	// MaxDelta clamps the per-tick delta so one stalled frame cannot
	// teleport the interpolation. Default 100ms.
	MaxDelta time.Duration `yaml:"max_delta,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.TransitionDuration <= 0 {
		c.TransitionDuration = 3 * time.Second
	}
	if c.OrbitSweep == 0 {
		c.OrbitSweep = 2 * math.Pi
	}
	if c.MaxDelta <= 0 {
		c.MaxDelta = 100 * time.Millisecond
	}
	return c
}

// Choreographer runs the tour state machine. Not safe for concurrent
// use; it is driven from the render loop only.
type Choreographer struct {
	cfg        Config
	waypoints  []Waypoint
	proj       *geo.Projector
	visited    *VisitedStore
	onComplete func()

	active  bool
	phase   Phase
	index   int
	elapsed time.Duration // time spent in the current phase

	startPose  Pose
	targetPose Pose
	orbitFrom  float64 // orbit start angle, radians
}

// New creates a choreographer. Invalid waypoints are rejected up front
// so a bad registry cannot surface mid-flight.
func New(cfg Config, waypoints []Waypoint, proj *geo.Projector, visited *VisitedStore) (*Choreographer, error) {
	for i, w := range waypoints {
		if err := w.validate(i); err != nil {
			return nil, err
		}
	}
	return &Choreographer{
		cfg:       cfg.withDefaults(),
		waypoints: waypoints,
		proj:      proj,
		visited:   visited,
		phase:     PhaseIdle,
	}, nil
}

// OnComplete registers a callback fired when the tour ends, whether it
// ran to the end or was skipped.
func (c *Choreographer) OnComplete(fn func()) { c.onComplete = fn }

// Active reports whether the choreographer currently owns the camera
// pose. While true, no other writer may touch the camera.
func (c *Choreographer) Active() bool { return c.active }

// Phase returns the current phase.
func (c *Choreographer) Phase() Phase { return c.phase }

// WaypointIndex returns the index of the current waypoint.
func (c *Choreographer) WaypointIndex() int { return c.index }

// Progress returns the position within the current transition leg in
// [0, 1]. Meaningful during transitioning and returning.
func (c *Choreographer) Progress() float64 {
	switch c.phase {
	case PhaseTransitioning, PhaseReturning:
		return math.Min(1, float64(c.elapsed)/float64(c.cfg.TransitionDuration))
	}
	return 0
}

// Start begins the tour from the camera's current pose. Starting with
// no waypoints configured is a no-op; starting while already active is
// ignored.
func (c *Choreographer) Start(cam Camera) {
	if c.active {
		slog.Debug("tour: start ignored: already active")
		return
	}
	if len(c.waypoints) == 0 {
		slog.Warn("tour: start ignored: no waypoints configured")
		return
	}
	c.active = true
	c.index = 0
	c.beginTransition(cam.Pose(), 0, PhaseTransitioning)
	slog.Info("tour: started", "waypoints", len(c.waypoints))
}

// MaybeAutoStart starts the tour only if no completed tour has been
// recorded for this client. Returns whether it started.
func (c *Choreographer) MaybeAutoStart(cam Camera) bool {
	if c.active || c.visited == nil || c.visited.Seen() {
		return false
	}
	c.Start(cam)
	return c.active
}

// Skip ends the tour immediately from any phase: the camera stays where
// it is, the visited flag is written, and the completion callback
// fires.
func (c *Choreographer) Skip() {
	if !c.active {
		return
	}
	slog.Info("tour: skipped", "phase", c.phase.String())
	c.finish(true)
}

// Stop aborts the tour without marking it seen or notifying completion.
// Intended for teardown.
func (c *Choreographer) Stop() {
	if !c.active {
		return
	}
	c.active = false
	c.phase = PhaseIdle
	c.elapsed = 0
}

// Update advances the tour by dt and writes the camera pose. It must be
// called once per frame while the tour is active; it does nothing
// otherwise.
func (c *Choreographer) Update(cam Camera, dt time.Duration) {
	if !c.active {
		return
	}
	if dt < 0 {
		dt = 0
	}
	if dt > c.cfg.MaxDelta {
		dt = c.cfg.MaxDelta
	}

	switch c.phase {
	case PhaseTransitioning, PhaseReturning:
		c.updateTransition(cam, dt)
	case PhaseOrbiting:
		c.updateOrbit(cam, dt)
	}
}

// updateTransition interpolates from the captured start pose to the
// orbit entry pose with smoothstep easing.
func (c *Choreographer) updateTransition(cam Camera, dt time.Duration) {
	c.elapsed += dt
	t := geo.Smoothstep(c.Progress())

	cam.SetPose(Pose{
		Position: c.startPose.Position.LerpTo(c.targetPose.Position, t),
		Rotation: c.startPose.Rotation.SlerpTo(c.targetPose.Rotation, t),
	})

	if c.elapsed < c.cfg.TransitionDuration {
		return
	}
	if c.phase == PhaseReturning {
		c.finish(false)
		return
	}
	// Arrived at the orbit entry: start sweeping.
	c.phase = PhaseOrbiting
	c.elapsed = 0
	slog.Debug("tour: orbiting", "waypoint", c.index)
}

// updateOrbit sweeps the camera around the waypoint anchor at constant
// angular speed, always looking at it.
func (c *Choreographer) updateOrbit(cam Camera, dt time.Duration) {
	w := c.waypoints[c.index]
	c.elapsed += dt

	frac := float64(c.elapsed) / float64(w.Dwell)
	if frac > 1 {
		frac = 1
	}
	angle := c.orbitFrom + c.cfg.OrbitSweep*frac
	pos := c.orbitPosition(w, angle)
	cam.SetPose(Pose{
		Position: pos,
		Rotation: geo.LookAt(pos, c.lookTarget(w)),
	})

	if c.elapsed < w.Dwell {
		return
	}
	if c.index+1 < len(c.waypoints) {
		c.index++
		c.beginTransition(cam.Pose(), c.index, PhaseTransitioning)
		return
	}
	// Last waypoint done: fly back to the first orbit entry.
	c.beginTransition(cam.Pose(), 0, PhaseReturning)
	slog.Debug("tour: returning")
}

// beginTransition captures the current pose and computes the orbit
// entry pose of waypoint wp as the target.
func (c *Choreographer) beginTransition(from Pose, wp int, phase Phase) {
	w := c.waypoints[wp]
	angle := c.entryAngle(from.Position, w)
	pos := c.orbitPosition(w, angle)

	c.startPose = from
	c.targetPose = Pose{
		Position: pos,
		Rotation: geo.LookAt(pos, c.lookTarget(w)),
	}
	c.orbitFrom = angle
	c.phase = phase
	c.elapsed = 0
}

// entryAngle picks the orbit angle closest to the approaching camera so
// the hand-off does not swing around the anchor.
func (c *Choreographer) entryAngle(from geo.Vec3, w Waypoint) float64 {
	anchor := c.proj.Project(w.Anchor, 0)
	d := from.Sub(anchor)
	if d.X == 0 && d.Y == 0 {
		return 0
	}
	return math.Atan2(d.Y, d.X)
}

// orbitPosition is the camera position at the given orbit angle.
func (c *Choreographer) orbitPosition(w Waypoint, angle float64) geo.Vec3 {
	anchor := c.proj.Project(w.Anchor, 0)
	return geo.Vec3{
		X: anchor.X + w.OrbitRadius*math.Cos(angle),
		Y: anchor.Y + w.OrbitRadius*math.Sin(angle),
		Z: w.OrbitAltitude,
	}
}

// lookTarget is the point the camera aims at while orbiting waypoint w.
func (c *Choreographer) lookTarget(w Waypoint) geo.Vec3 {
	anchor := c.proj.Project(w.Anchor, 0)
	anchor.Z = w.LookAtAltitude
	return anchor
}

// finish ends the tour, persists the visited flag, and notifies.
func (c *Choreographer) finish(skipped bool) {
	c.active = false
	c.phase = PhaseComplete
	c.elapsed = 0
	if c.visited != nil {
		c.visited.Mark(Record{
			CompletedAt: time.Now(),
			Waypoints:   len(c.waypoints),
			Skipped:     skipped,
		})
	}
	slog.Info("tour: complete", "skipped", skipped)
	if c.onComplete != nil {
		c.onComplete()
	}
}
