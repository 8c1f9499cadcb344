package tour

import (
	"math"
	"testing"
	"time"

	"github.com/skytonelabs/skytone/pkg/geo"
	"github.com/skytonelabs/skytone/pkg/kv"
)

const tick = 100 * time.Millisecond

type fakeCamera struct {
	pose Pose
	sets int
}

func (f *fakeCamera) Pose() Pose { return f.pose }

func (f *fakeCamera) SetPose(p Pose) {
	f.pose = p
	f.sets++
}

func testWaypoints() []Waypoint {
	return []Waypoint{
		{
			Name:           "north",
			Anchor:         geo.LatLng{Lat: 0.01, Lng: 0},
			OrbitRadius:    200,
			OrbitAltitude:  150,
			LookAtAltitude: 50,
			Dwell:          2 * time.Second,
		},
		{
			Name:           "east",
			Anchor:         geo.LatLng{Lat: 0, Lng: 0.01},
			OrbitRadius:    200,
			OrbitAltitude:  150,
			LookAtAltitude: 50,
			Dwell:          2 * time.Second,
		},
	}
}

func newTestChoreographer(t *testing.T, waypoints []Waypoint) (*Choreographer, *VisitedStore) {
	t.Helper()
	visited := NewVisitedStore(kv.NewMemory())
	c, err := New(Config{TransitionDuration: time.Second}, waypoints, geo.NewProjector(geo.LatLng{}), visited)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, visited
}

func run(c *Choreographer, cam Camera, n int) {
	for i := 0; i < n; i++ {
		c.Update(cam, tick)
	}
}

func TestStartWithoutWaypointsIsNoop(t *testing.T) {
	c, _ := newTestChoreographer(t, nil)
	cam := &fakeCamera{}

	c.Start(cam)
	if c.Active() {
		t.Fatal("empty tour became active")
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", c.Phase())
	}

	run(c, cam, 10)
	if cam.sets != 0 {
		t.Fatalf("camera written %d times with no tour", cam.sets)
	}
}

func TestInvalidWaypointRejected(t *testing.T) {
	visited := NewVisitedStore(kv.NewMemory())
	bad := []Waypoint{{Anchor: geo.LatLng{}, OrbitRadius: 0, Dwell: time.Second}}
	if _, err := New(Config{}, bad, geo.NewProjector(geo.LatLng{}), visited); err == nil {
		t.Fatal("zero orbit radius accepted")
	}
	bad = []Waypoint{{Anchor: geo.LatLng{}, OrbitRadius: 100, Dwell: 0}}
	if _, err := New(Config{}, bad, geo.NewProjector(geo.LatLng{}), visited); err == nil {
		t.Fatal("zero dwell accepted")
	}
}

// TestTwoWaypointFlight walks the full phase sequence at a fixed tick:
// 1s transition, 2s orbit, 1s transition, 2s orbit, 1s return = 7s.
func TestTwoWaypointFlight(t *testing.T) {
	c, visited := newTestChoreographer(t, testWaypoints())
	cam := &fakeCamera{pose: Pose{Position: geo.Vec3{X: -500, Y: -500, Z: 300}, Rotation: geo.Identity}}

	var completed bool
	c.OnComplete(func() { completed = true })
	c.Start(cam)

	checkpoints := []struct {
		ticks int // cumulative
		phase Phase
		index int
	}{
		{5, PhaseTransitioning, 0},
		{15, PhaseOrbiting, 0},
		{35, PhaseTransitioning, 1},
		{45, PhaseOrbiting, 1},
		{65, PhaseReturning, 1},
	}
	done := 0
	for _, cp := range checkpoints {
		run(c, cam, cp.ticks-done)
		done = cp.ticks
		if c.Phase() != cp.phase || c.WaypointIndex() != cp.index {
			t.Fatalf("at %v: phase=%v index=%d, want %v/%d",
				time.Duration(cp.ticks)*tick, c.Phase(), c.WaypointIndex(), cp.phase, cp.index)
		}
		if !c.Active() {
			t.Fatalf("at %v: tour not active", time.Duration(cp.ticks)*tick)
		}
	}

	run(c, cam, 5) // 7s total
	if c.Active() || c.Phase() != PhaseComplete {
		t.Fatalf("after 7s: active=%v phase=%v", c.Active(), c.Phase())
	}
	if !completed {
		t.Fatal("completion callback not fired")
	}
	if !visited.Seen() {
		t.Fatal("visited flag not persisted")
	}
	rec, ok := visited.Record()
	if !ok || rec.Skipped || rec.Waypoints != 2 {
		t.Fatalf("record = %+v ok=%v", rec, ok)
	}

	// The return leg parks the camera on the first waypoint's orbit ring.
	anchor := geo.NewProjector(geo.LatLng{}).Project(testWaypoints()[0].Anchor, 0)
	d := cam.pose.Position.Sub(anchor)
	horiz := math.Hypot(d.X, d.Y)
	if math.Abs(horiz-200) > 1e-6 {
		t.Fatalf("final horizontal distance = %v, want 200", horiz)
	}
	if math.Abs(cam.pose.Position.Z-150) > 1e-6 {
		t.Fatalf("final altitude = %v, want 150", cam.pose.Position.Z)
	}
}

func TestOrbitKeepsRadiusAndAim(t *testing.T) {
	c, _ := newTestChoreographer(t, testWaypoints())
	cam := &fakeCamera{pose: Pose{Position: geo.Vec3{X: 1000, Z: 250}, Rotation: geo.Identity}}
	c.Start(cam)
	run(c, cam, 10) // transition done, orbit entered

	proj := geo.NewProjector(geo.LatLng{})
	w := testWaypoints()[0]
	anchor := proj.Project(w.Anchor, 0)
	target := anchor
	target.Z = w.LookAtAltitude

	for i := 0; i < 19; i++ {
		c.Update(cam, tick)
		if c.Phase() != PhaseOrbiting {
			t.Fatalf("tick %d: phase = %v", i, c.Phase())
		}
		d := cam.pose.Position.Sub(anchor)
		if horiz := math.Hypot(d.X, d.Y); math.Abs(horiz-w.OrbitRadius) > 1e-6 {
			t.Fatalf("tick %d: orbit distance = %v, want %v", i, horiz, w.OrbitRadius)
		}
		if math.Abs(cam.pose.Position.Z-w.OrbitAltitude) > 1e-6 {
			t.Fatalf("tick %d: altitude = %v", i, cam.pose.Position.Z)
		}

		want := target.Sub(cam.pose.Position).Normalized()
		fwd := cam.pose.Rotation.Forward()
		if dot := fwd.Dot(want); dot < 1-1e-9 {
			t.Fatalf("tick %d: camera not aimed at anchor, dot = %v", i, dot)
		}
	}
}

func TestDeltaClamp(t *testing.T) {
	c, _ := newTestChoreographer(t, testWaypoints())
	cam := &fakeCamera{pose: Pose{Position: geo.Vec3{X: -500, Z: 300}, Rotation: geo.Identity}}
	c.Start(cam)

	// One stalled 10s frame must not jump the whole transition.
	c.Update(cam, 10*time.Second)
	if c.Phase() != PhaseTransitioning {
		t.Fatalf("phase = %v, want transitioning", c.Phase())
	}
	if p := c.Progress(); p > 0.11 {
		t.Fatalf("progress = %v after one clamped tick, want ~0.1", p)
	}
}

func TestSkipMarksVisited(t *testing.T) {
	c, visited := newTestChoreographer(t, testWaypoints())
	cam := &fakeCamera{pose: Pose{Rotation: geo.Identity}}

	var completed bool
	c.OnComplete(func() { completed = true })
	c.Start(cam)
	run(c, cam, 13) // mid-orbit

	before := cam.pose
	c.Skip()
	if c.Active() || c.Phase() != PhaseComplete {
		t.Fatalf("after skip: active=%v phase=%v", c.Active(), c.Phase())
	}
	if !completed {
		t.Fatal("completion callback not fired on skip")
	}
	rec, ok := visited.Record()
	if !ok || !rec.Skipped {
		t.Fatalf("record = %+v ok=%v, want skipped", rec, ok)
	}
	if cam.pose != before {
		t.Fatal("skip moved the camera")
	}

	// Once finished, updates no longer touch the camera.
	run(c, cam, 5)
	if cam.pose != before {
		t.Fatal("camera written after tour ended")
	}
}

func TestStopLeavesVisitedUnset(t *testing.T) {
	c, visited := newTestChoreographer(t, testWaypoints())
	cam := &fakeCamera{pose: Pose{Rotation: geo.Identity}}

	c.Start(cam)
	run(c, cam, 5)
	c.Stop()
	if c.Active() || c.Phase() != PhaseIdle {
		t.Fatalf("after stop: active=%v phase=%v", c.Active(), c.Phase())
	}
	if visited.Seen() {
		t.Fatal("stop persisted the visited flag")
	}
}

func TestMaybeAutoStartRunsOnce(t *testing.T) {
	c, _ := newTestChoreographer(t, testWaypoints())
	cam := &fakeCamera{pose: Pose{Rotation: geo.Identity}}

	if !c.MaybeAutoStart(cam) {
		t.Fatal("first auto-start did not run")
	}
	c.Skip()

	if c.MaybeAutoStart(cam) {
		t.Fatal("auto-start ran again after completion")
	}
	if c.Active() {
		t.Fatal("tour active after refused auto-start")
	}
}

func TestVisitedStoreRoundTrip(t *testing.T) {
	v := NewVisitedStore(kv.NewMemory())
	if v.Seen() {
		t.Fatal("fresh store reports seen")
	}
	if _, ok := v.Record(); ok {
		t.Fatal("fresh store has a record")
	}

	rec := Record{CompletedAt: time.Now().UTC(), Waypoints: 3}
	v.Mark(rec)
	if !v.Seen() {
		t.Fatal("marked store not seen")
	}
	got, ok := v.Record()
	if !ok || got.Waypoints != 3 || got.Skipped {
		t.Fatalf("record = %+v ok=%v", got, ok)
	}

	if err := v.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if v.Seen() {
		t.Fatal("cleared store still seen")
	}
}
