package routemap

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// TransformOption configures a GeoTransform during creation.
type TransformOption func(*transformOptions)

type transformOptions struct {
	projector SphericalProjector
}

// WithProjector sets the spherical projector used for the metric plane.
// The default is DefaultProjector().
func WithProjector(p SphericalProjector) TransformOption {
	return func(o *transformOptions) {
		o.projector = p
	}
}

// GeoTransform maps geographic positions to pixel coordinates of a
// calibrated image.
//
// It is immutable after construction and safe for concurrent use.
type GeoTransform struct {
	projector SphericalProjector
	origin    Point  // centroid of the projected corners
	toLocal   Matrix // translation by -origin
	matrix    Matrix
	side      float64 // sign of the homogeneous weight over the map
	width     int
	height    int
}

// NewGeoTransform builds the transform for an image of width×height pixels
// whose corners lie at q. The corners map to (0,0), (width,0),
// (width,height) and (0,height) respectively.
//
// Projection failures return a *DomainError. Singular or non-convex corner
// layouts return a *DegenerateGeometryError. No partial transform is ever
// returned.
func NewGeoTransform(q Quadrilateral, width, height int, opts ...TransformOption) (*GeoTransform, error) {
	if width <= 0 || height <= 0 {
		return nil, &DegenerateGeometryError{Reason: fmt.Sprintf("image size %dx%d", width, height)}
	}
	o := transformOptions{projector: DefaultProjector()}
	for _, opt := range opts {
		opt(&o)
	}

	var src [4]Point
	for i, c := range q.Corners() {
		p, err := o.projector.Project(c)
		if err != nil {
			return nil, fmt.Errorf("calibration corner %d: %w", i, err)
		}
		src[i] = p
	}

	// Solve around the centroid: metric values are in the millions and the
	// interesting differences are a few thousand metres.
	var origin Point
	for _, p := range src {
		origin = origin.Add(p)
	}
	origin = origin.Mul(0.25)
	toLocal := Translate(-origin.X, -origin.Y)
	for i := range src {
		// A translation has weight 1 and cannot fail on finite input.
		src[i], _ = toLocal.TransformPoint(src[i])
	}

	w, h := float64(width), float64(height)
	dst := [4]Point{{0, 0}, {w, 0}, {w, h}, {0, h}}

	m, err := SolveHomography(src, dst)
	if err != nil {
		return nil, err
	}

	// Every corner must lie on the same side of the horizon line, where
	// the weight changes sign. Otherwise the quadrilateral is not convex.
	side := 0.0
	for i, p := range src {
		wt := m.MultiplyVector(p.X, p.Y, 1)[2]
		switch {
		case i == 0:
			side = math.Copysign(1, wt)
		case wt*side <= 0:
			return nil, &DegenerateGeometryError{Reason: "calibration quadrilateral is not convex"}
		}
	}

	Logger().Debug("routemap: geo transform built",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Bool("affine", m.IsAffine()))

	return &GeoTransform{
		projector: o.projector,
		origin:    origin,
		toLocal:   toLocal,
		matrix:    m,
		side:      side,
		width:     width,
		height:    height,
	}, nil
}

// Transform returns the pixel position of g.
// Positions the projection cannot handle, and positions on or beyond the
// horizon line of the homography, yield a *DomainError. Beyond the horizon
// the homogeneous division would mirror the point back onto the plane.
func (t *GeoTransform) Transform(g GeoPoint) (Point, error) {
	p, err := t.projector.Project(g)
	if err != nil {
		return Point{}, err
	}
	local, err := t.toLocal.TransformPoint(p)
	if err != nil {
		return Point{}, err
	}
	if w := t.matrix.MultiplyVector(local.X, local.Y, 1)[2]; w*t.side < 0 {
		return Point{}, &DomainError{Lat: g.Lat, Lon: g.Lon, Reason: "point lies beyond the map horizon"}
	}
	px, err := t.matrix.TransformPoint(local)
	if err != nil {
		if errors.Is(err, ErrPointAtInfinity) {
			return Point{}, &DomainError{Lat: g.Lat, Lon: g.Lon, Reason: "point maps to infinity"}
		}
		return Point{}, err
	}
	return px, nil
}

// Width returns the pixel width the transform was built for.
func (t *GeoTransform) Width() int { return t.width }

// Height returns the pixel height the transform was built for.
func (t *GeoTransform) Height() int { return t.height }

// Matrix returns the metric-to-pixel homography. Its input is the projected
// position minus Origin().
func (t *GeoTransform) Matrix() Matrix { return t.matrix }

// Origin returns the metric point the homography is centred on.
func (t *GeoTransform) Origin() Point { return t.origin }
