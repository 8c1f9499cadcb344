package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	// Shibuya station to Tokyo station is roughly 6.4 km.
	shibuya := LatLng{Lat: 35.6580, Lng: 139.7016}
	tokyo := LatLng{Lat: 35.6812, Lng: 139.7671}

	d := shibuya.Distance(tokyo)
	if d < 6000 || d > 7000 {
		t.Fatalf("Distance = %.0f m, want ~6400 m", d)
	}
	if got := shibuya.Distance(shibuya); got != 0 {
		t.Fatalf("Distance to self = %v, want 0", got)
	}
	if d2 := tokyo.Distance(shibuya); math.Abs(d-d2) > 1e-6 {
		t.Fatalf("Distance not symmetric: %v vs %v", d, d2)
	}
}

func TestProjectorRoundTrip(t *testing.T) {
	origin := LatLng{Lat: 35.6595, Lng: 139.7005}
	pr := NewProjector(origin)

	p := LatLng{Lat: 35.6700, Lng: 139.7100}
	v := pr.Project(p, 120)
	if v.Z != 120 {
		t.Fatalf("Project altitude = %v, want 120", v.Z)
	}

	back := pr.Unproject(v)
	if math.Abs(back.Lat-p.Lat) > 1e-9 || math.Abs(back.Lng-p.Lng) > 1e-9 {
		t.Fatalf("Unproject(Project(p)) = %+v, want %+v", back, p)
	}

	// Planar distance should agree with haversine at city scale.
	planar := v.Sub(pr.Project(origin, 120)).Length()
	sphere := origin.Distance(p)
	if math.Abs(planar-sphere) > sphere*0.01 {
		t.Fatalf("planar %v vs haversine %v differ by more than 1%%", planar, sphere)
	}
}

func TestVecOps(t *testing.T) {
	v := Vec3{3, 4, 0}
	if got := v.Length(); got != 5 {
		t.Fatalf("Length = %v, want 5", got)
	}
	n := v.Normalized()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Fatalf("Normalized length = %v, want 1", n.Length())
	}
	if got := (Vec3{}).Normalized(); got != (Vec3{}) {
		t.Fatalf("Normalized zero = %+v, want zero", got)
	}
	if got := v.LerpTo(Vec3{3, 4, 10}, 0.5); got != (Vec3{3, 4, 5}) {
		t.Fatalf("LerpTo = %+v", got)
	}
}

func TestSmoothstep(t *testing.T) {
	if Smoothstep(-1) != 0 || Smoothstep(2) != 1 {
		t.Fatal("Smoothstep should clamp outside [0,1]")
	}
	if Smoothstep(0.5) != 0.5 {
		t.Fatalf("Smoothstep(0.5) = %v, want 0.5", Smoothstep(0.5))
	}
	// Ease-in: slower than linear in the first half.
	if Smoothstep(0.25) >= 0.25 {
		t.Fatalf("Smoothstep(0.25) = %v, want < 0.25", Smoothstep(0.25))
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 100}
	target := Vec3{0, 200, 0}

	q := LookAt(eye, target)
	fwd := q.Forward()
	want := target.Sub(eye).Normalized()
	if fwd.Sub(want).Length() > 1e-9 {
		t.Fatalf("Forward = %+v, want %+v", fwd, want)
	}

	// Degenerate: eye == target.
	if got := LookAt(eye, eye); got != Identity {
		t.Fatalf("LookAt(eye, eye) = %+v, want Identity", got)
	}

	// Straight down must not produce NaNs.
	q = LookAt(Vec3{0, 0, 100}, Vec3{0, 0, 0})
	if math.IsNaN(q.X) || math.IsNaN(q.W) {
		t.Fatalf("LookAt straight down produced NaN: %+v", q)
	}
}

func TestSlerp(t *testing.T) {
	a := Identity
	b := LookAt(Vec3{}, Vec3{X: 100})

	if got := a.SlerpTo(b, 0); got.Dot(a) < 0.9999 {
		t.Fatalf("SlerpTo(0) = %+v, want %+v", got, a)
	}
	if got := a.SlerpTo(b, 1); math.Abs(got.Dot(b)) < 0.9999 {
		t.Fatalf("SlerpTo(1) = %+v, want %+v", got, b)
	}
	mid := a.SlerpTo(b, 0.5)
	if math.Abs(math.Sqrt(mid.Dot(mid))-1) > 1e-9 {
		t.Fatalf("Slerp result not unit length: %+v", mid)
	}
}
