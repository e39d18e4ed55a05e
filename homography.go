package routemap

import (
	"fmt"
	"math"
)

// collinearTolerance bounds |sin θ| between two edges sharing a corner below
// which three calibration points count as collinear.
const collinearTolerance = 1e-9

// quadTriples lists the four ways to pick three of four points.
var quadTriples = [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}

// SolveHomography returns the projective transform that maps each src[i]
// onto dst[i].
//
// The construction maps the canonical projective basis onto each point set
// and composes the two:
//
//	S = basis(src), D = basis(dst), M = D · adj(S)
//
// where basis(p) is [p1 p2 p3] (homogeneous columns) scaled column-wise by
// adj([p1 p2 p3]) · p4. The adjugate stands in for the inverse; the missing
// determinant factor cancels in the homogeneous division.
//
// Both point sets must be in the same cyclic order. If any three points of
// either set are collinear (which includes duplicates) a
// *DegenerateGeometryError is returned.
func SolveHomography(src, dst [4]Point) (Matrix, error) {
	if err := checkQuad("source", src); err != nil {
		return Matrix{}, err
	}
	if err := checkQuad("destination", dst); err != nil {
		return Matrix{}, err
	}

	s, err := basisToPoints(src)
	if err != nil {
		return Matrix{}, fmt.Errorf("source: %w", err)
	}
	d, err := basisToPoints(dst)
	if err != nil {
		return Matrix{}, fmt.Errorf("destination: %w", err)
	}

	m := d.Multiply(s.Adjugate())
	scale := m.MaxAbs()
	if scale == 0 || !isFinite(scale) {
		return Matrix{}, &DegenerateGeometryError{Reason: "singular homography"}
	}
	m = m.Scale(1 / scale)
	if !m.IsFinite() || m.Determinant() == 0 {
		return Matrix{}, &DegenerateGeometryError{Reason: "singular homography"}
	}
	return m, nil
}

// basisToPoints returns the matrix mapping the projective basis
// (1,0,0), (0,1,0), (0,0,1), (1,1,1) onto p[0..3].
func basisToPoints(p [4]Point) (Matrix, error) {
	b := columns(
		[3]float64{p[0].X, p[0].Y, 1},
		[3]float64{p[1].X, p[1].Y, 1},
		[3]float64{p[2].X, p[2].Y, 1},
	)
	v := b.Adjugate().MultiplyVector(p[3].X, p[3].Y, 1)
	for i, w := range v {
		if w == 0 || !isFinite(w) {
			return Matrix{}, &DegenerateGeometryError{
				Reason: fmt.Sprintf("zero basis weight for point %d", i),
			}
		}
	}
	return columns(
		[3]float64{p[0].X * v[0], p[0].Y * v[0], v[0]},
		[3]float64{p[1].X * v[1], p[1].Y * v[1], v[1]},
		[3]float64{p[2].X * v[2], p[2].Y * v[2], v[2]},
	), nil
}

// checkQuad rejects non-finite points and any collinear triple.
// The test is scale-free: the cross product of two edges is compared with
// the product of their lengths.
func checkQuad(name string, p [4]Point) error {
	for i, pt := range p {
		if !pt.IsFinite() {
			return &DegenerateGeometryError{Reason: fmt.Sprintf("%s point %d is not finite", name, i)}
		}
	}
	for _, t := range quadTriples {
		a := p[t[1]].Sub(p[t[0]])
		b := p[t[2]].Sub(p[t[0]])
		la, lb := a.Length(), b.Length()
		if la == 0 || lb == 0 {
			return &DegenerateGeometryError{
				Reason: fmt.Sprintf("%s points %d, %d and %d include duplicates", name, t[0], t[1], t[2]),
			}
		}
		if math.Abs(a.Cross(b)) <= collinearTolerance*la*lb {
			return &DegenerateGeometryError{
				Reason: fmt.Sprintf("%s points %d, %d and %d are collinear", name, t[0], t[1], t[2]),
			}
		}
	}
	return nil
}
