// Package geo provides the geographic and 3D math primitives used by the
// flyover pipeline: latitude/longitude anchors, a local planar projection
// around a city origin, and the vector/quaternion operations the camera
// choreography needs.
//
// Distances are in meters. The local frame is east-north-up: +X east,
// +Y north, +Z up.
package geo

import "math"

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371000.0

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Distance returns the great-circle (haversine) distance in meters
// between two coordinates.
func (p LatLng) Distance(q LatLng) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := q.Lat * math.Pi / 180
	dLat := (q.Lat - p.Lat) * math.Pi / 180
	dLng := (q.Lng - p.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Projector converts between geographic coordinates and the local planar
// frame centered on Origin. It uses an equirectangular approximation,
// which is accurate to well under a meter at city scale.
type Projector struct {
	Origin LatLng

	cosLat float64
}

// NewProjector creates a Projector centered on origin.
func NewProjector(origin LatLng) *Projector {
	return &Projector{
		Origin: origin,
		cosLat: math.Cos(origin.Lat * math.Pi / 180),
	}
}

// Project converts a geographic coordinate to local planar meters at the
// given altitude.
func (pr *Projector) Project(p LatLng, altitude float64) Vec3 {
	x := (p.Lng - pr.Origin.Lng) * math.Pi / 180 * EarthRadius * pr.cosLat
	y := (p.Lat - pr.Origin.Lat) * math.Pi / 180 * EarthRadius
	return Vec3{X: x, Y: y, Z: altitude}
}

// Unproject converts a local planar position back to a geographic
// coordinate, discarding altitude.
func (pr *Projector) Unproject(v Vec3) LatLng {
	return LatLng{
		Lat: pr.Origin.Lat + v.Y/EarthRadius*180/math.Pi,
		Lng: pr.Origin.Lng + v.X/(EarthRadius*pr.cosLat)*180/math.Pi,
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Smoothstep is the cubic Hermite ease 3t²-2t³ for t clamped to [0,1].
// It accelerates from 0 and decelerates into 1.
func Smoothstep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// Lerp interpolates linearly between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
