package routemap

import "math"

// Matrix represents a 2D projective transformation.
// It uses a 3x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//	| g  h  i |
//
// A point (x, y) is lifted to (x, y, 1), multiplied, and divided by the
// resulting weight:
//
//	w  = g*x + h*y + i
//	x' = (a*x + b*y + c) / w
//	y' = (d*x + e*y + f) / w
//
// Matrices are values; every operation returns a new Matrix.
type Matrix struct {
	A, B, C float64
	D, E, F float64
	G, H, I float64
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
		G: 0, H: 0, I: 1,
	}
}

// columns builds a matrix from three column vectors.
func columns(c0, c1, c2 [3]float64) Matrix {
	return Matrix{
		A: c0[0], B: c1[0], C: c2[0],
		D: c0[1], E: c1[1], F: c2[1],
		G: c0[2], H: c1[2], I: c2[2],
	}
}

// Multiply multiplies two matrices (m * other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D + m.C*other.G,
		B: m.A*other.B + m.B*other.E + m.C*other.H,
		C: m.A*other.C + m.B*other.F + m.C*other.I,
		D: m.D*other.A + m.E*other.D + m.F*other.G,
		E: m.D*other.B + m.E*other.E + m.F*other.H,
		F: m.D*other.C + m.E*other.F + m.F*other.I,
		G: m.G*other.A + m.H*other.D + m.I*other.G,
		H: m.G*other.B + m.H*other.E + m.I*other.H,
		I: m.G*other.C + m.H*other.F + m.I*other.I,
	}
}

// MultiplyVector returns m · (x, y, z).
func (m Matrix) MultiplyVector(x, y, z float64) [3]float64 {
	return [3]float64{
		m.A*x + m.B*y + m.C*z,
		m.D*x + m.E*y + m.F*z,
		m.G*x + m.H*y + m.I*z,
	}
}

// Determinant returns the determinant of m.
func (m Matrix) Determinant() float64 {
	return m.A*(m.E*m.I-m.F*m.H) -
		m.B*(m.D*m.I-m.F*m.G) +
		m.C*(m.D*m.H-m.E*m.G)
}

// Adjugate returns the adjugate (transposed cofactor matrix) of m.
// For invertible m, Adjugate equals Determinant() times the inverse, which
// is all a projective transform needs since the scale cancels out.
func (m Matrix) Adjugate() Matrix {
	return Matrix{
		A: m.E*m.I - m.F*m.H,
		B: m.C*m.H - m.B*m.I,
		C: m.B*m.F - m.C*m.E,
		D: m.F*m.G - m.D*m.I,
		E: m.A*m.I - m.C*m.G,
		F: m.C*m.D - m.A*m.F,
		G: m.D*m.H - m.E*m.G,
		H: m.B*m.G - m.A*m.H,
		I: m.A*m.E - m.B*m.D,
	}
}

// Scale returns m with every entry multiplied by s.
// As a projective transform the result is equivalent to m for any s != 0.
func (m Matrix) Scale(s float64) Matrix {
	return Matrix{
		A: m.A * s, B: m.B * s, C: m.C * s,
		D: m.D * s, E: m.E * s, F: m.F * s,
		G: m.G * s, H: m.H * s, I: m.I * s,
	}
}

// MaxAbs returns the largest absolute entry of m.
func (m Matrix) MaxAbs() float64 {
	v := 0.0
	for _, e := range [9]float64{m.A, m.B, m.C, m.D, m.E, m.F, m.G, m.H, m.I} {
		v = math.Max(v, math.Abs(e))
	}
	return v
}

// IsFinite reports whether every entry is a finite number.
func (m Matrix) IsFinite() bool {
	for _, e := range [9]float64{m.A, m.B, m.C, m.D, m.E, m.F, m.G, m.H, m.I} {
		if !isFinite(e) {
			return false
		}
	}
	return true
}

// IsAffine returns true if the bottom row is (0, 0, 1) up to scale,
// i.e. the transform has no perspective component.
func (m Matrix) IsAffine() bool {
	return m.G == 0 && m.H == 0 && m.I != 0
}

// TransformPoint applies the transformation to a point.
// It returns ErrPointAtInfinity when the homogeneous weight is zero or not
// finite. A negative weight is divided through like any other, so points
// beyond the horizon line come back mirrored; GeoTransform rejects them.
func (m Matrix) TransformPoint(p Point) (Point, error) {
	v := m.MultiplyVector(p.X, p.Y, 1)
	w := v[2]
	if w == 0 || !isFinite(w) {
		return Point{}, ErrPointAtInfinity
	}
	out := Point{X: v[0] / w, Y: v[1] / w}
	if !out.IsFinite() {
		return Point{}, ErrPointAtInfinity
	}
	return out, nil
}
