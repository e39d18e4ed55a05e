package routemap

import (
	"errors"
	"fmt"
)

// Sentinel errors for routemap.
var (
	// ErrDomain is returned when a coordinate lies outside the domain of the
	// projection (latitude at or beyond ±90°, NaN or infinite values).
	ErrDomain = errors.New("routemap: coordinate outside projection domain")

	// ErrDegenerateGeometry is returned when calibration points do not span
	// a proper quadrilateral (collinear or duplicate corners).
	ErrDegenerateGeometry = errors.New("routemap: degenerate geometry")

	// ErrInvalidRoute is returned for routes that cannot be drawn.
	ErrInvalidRoute = errors.New("routemap: invalid route")

	// ErrInvalidConfig is returned by RenderConfig.Validate.
	ErrInvalidConfig = errors.New("routemap: invalid render config")

	// ErrPointAtInfinity is returned when a projective transform sends a
	// point to the line at infinity.
	ErrPointAtInfinity = errors.New("routemap: point maps to infinity")

	// ErrSizeMismatch is returned when a base image and a GeoTransform
	// disagree on the pixel size.
	ErrSizeMismatch = errors.New("routemap: image size does not match transform")
)

// DomainError reports a coordinate that cannot be projected or a point that
// maps to infinity.
type DomainError struct {
	Lat, Lon float64
	Reason   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("routemap: (%g, %g): %s", e.Lat, e.Lon, e.Reason)
}

// Unwrap returns ErrDomain.
func (e *DomainError) Unwrap() error { return ErrDomain }

// DegenerateGeometryError reports a singular homography.
type DegenerateGeometryError struct {
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	return "routemap: degenerate geometry: " + e.Reason
}

// Unwrap returns ErrDegenerateGeometry.
func (e *DegenerateGeometryError) Unwrap() error { return ErrDegenerateGeometry }

// InvalidRouteError reports a route that cannot be drawn.
type InvalidRouteError struct {
	Route  int
	Name   string
	Reason string
}

func (e *InvalidRouteError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("routemap: route %d (%s): %s", e.Route, e.Name, e.Reason)
	}
	return fmt.Sprintf("routemap: route %d: %s", e.Route, e.Reason)
}

// Unwrap returns ErrInvalidRoute.
func (e *InvalidRouteError) Unwrap() error { return ErrInvalidRoute }
