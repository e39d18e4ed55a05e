package routemap

import "math"

// EarthRadius is the sphere radius of the Web-Mercator model, in metres.
const EarthRadius = 6378137.0

const degToRad = math.Pi / 180

// SphericalProjector maps geographic positions to planar metric coordinates
// with the spherical Mercator formula:
//
//	x = lon · R · π/180
//	y = ln(tan((90 + lat) · π/360)) · R
//
// The y axis grows northwards. The projector is a plain value and safe for
// concurrent use.
type SphericalProjector struct {
	Radius float64
}

// DefaultProjector returns a projector using EarthRadius.
func DefaultProjector() SphericalProjector {
	return SphericalProjector{Radius: EarthRadius}
}

// Project converts g to metric coordinates.
// Latitudes at or beyond ±90° and non-finite inputs yield a *DomainError.
func (p SphericalProjector) Project(g GeoPoint) (Point, error) {
	if !isFinite(g.Lat) || !isFinite(g.Lon) {
		return Point{}, &DomainError{Lat: g.Lat, Lon: g.Lon, Reason: "non-finite coordinate"}
	}
	if g.Lat <= -90 || g.Lat >= 90 {
		return Point{}, &DomainError{Lat: g.Lat, Lon: g.Lon, Reason: "latitude at or beyond the pole"}
	}
	r := p.Radius
	if r <= 0 || !isFinite(r) {
		r = EarthRadius
	}
	pt := Point{
		X: g.Lon * r * degToRad,
		Y: math.Log(math.Tan((90+g.Lat)*degToRad/2)) * r,
	}
	if !pt.IsFinite() {
		return Point{}, &DomainError{Lat: g.Lat, Lon: g.Lon, Reason: "projection overflow"}
	}
	return pt, nil
}
