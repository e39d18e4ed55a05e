package routemap

import (
	"errors"
	"math"
	"testing"
)

func applyAll(t *testing.T, m Matrix, pts [4]Point) [4]Point {
	t.Helper()
	var out [4]Point
	for i, p := range pts {
		q, err := m.TransformPoint(p)
		if err != nil {
			t.Fatalf("TransformPoint(%v): %v", p, err)
		}
		out[i] = q
	}
	return out
}

func TestSolveHomography_MapsCorners(t *testing.T) {
	square := [4]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tests := []struct {
		name     string
		src, dst [4]Point
	}{
		{"identity", square, square},
		{"scale", square, [4]Point{{0, 0}, {1000, 0}, {1000, 800}, {0, 800}}},
		{"rotated", square, [4]Point{{0, 0}, {0, 1}, {-1, 1}, {-1, 0}}},
		{
			"perspective",
			[4]Point{{-1200, 900}, {1300, 1000}, {1100, -950}, {-1000, -1100}},
			[4]Point{{0, 0}, {2000, 0}, {2000, 1500}, {0, 1500}},
		},
		{
			"trapezoid",
			[4]Point{{10, 10}, {90, 10}, {70, 60}, {30, 60}},
			[4]Point{{0, 0}, {640, 0}, {640, 480}, {0, 480}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := SolveHomography(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("SolveHomography: %v", err)
			}
			got := applyAll(t, m, tt.src)
			for i := range got {
				if !nearPoint(got[i], tt.dst[i], 1e-6) {
					t.Errorf("corner %d: got %v, want %v", i, got[i], tt.dst[i])
				}
			}
			if s := m.MaxAbs(); math.Abs(s-1) > 1e-12 {
				t.Errorf("MaxAbs = %g, want normalized to 1", s)
			}
		})
	}
}

func TestSolveHomography_PreservesLines(t *testing.T) {
	src := [4]Point{{-3, -2}, {4, -1}, {5, 3}, {-2, 4}}
	dst := [4]Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	m, err := SolveHomography(src, dst)
	if err != nil {
		t.Fatal(err)
	}

	// Three collinear points stay collinear.
	a, b := Pt(-1, 0), Pt(3, 2)
	c := a.Add(b.Sub(a).Mul(0.3))
	pa, _ := m.TransformPoint(a)
	pb, _ := m.TransformPoint(b)
	pc, _ := m.TransformPoint(c)
	if cross := pb.Sub(pa).Cross(pc.Sub(pa)); math.Abs(cross) > 1e-6 {
		t.Errorf("images not collinear, cross = %g", cross)
	}
}

func TestSolveHomography_AffineForParallelogram(t *testing.T) {
	src := [4]Point{{0, 0}, {4, 1}, {5, 4}, {1, 3}}
	dst := [4]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	m, err := SolveHomography(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.G) > 1e-12 || math.Abs(m.H) > 1e-12 {
		t.Errorf("parallelogram should give an affine map, bottom row = (%g, %g, %g)", m.G, m.H, m.I)
	}
}

func TestSolveHomography_Degenerate(t *testing.T) {
	good := [4]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tests := []struct {
		name     string
		src, dst [4]Point
	}{
		{"collinear source", [4]Point{{0, 0}, {1, 1}, {2, 2}, {0, 1}}, good},
		{"all on a line", [4]Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, good},
		{"duplicate source", [4]Point{{0, 0}, {0, 0}, {1, 1}, {0, 1}}, good},
		{"all equal", [4]Point{{5, 5}, {5, 5}, {5, 5}, {5, 5}}, good},
		{"collinear destination", good, [4]Point{{0, 0}, {0, 1}, {0, 2}, {1, 0}}},
		{"nan", [4]Point{{math.NaN(), 0}, {1, 0}, {1, 1}, {0, 1}}, good},
		{"nearly collinear", [4]Point{{0, 0}, {1e6, 0}, {2e6, 1e-6}, {0, 1e6}}, good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolveHomography(tt.src, tt.dst)
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Fatalf("error = %v, want ErrDegenerateGeometry", err)
			}
			var de *DegenerateGeometryError
			if !errors.As(err, &de) {
				t.Errorf("error %T is not *DegenerateGeometryError", err)
			}
		})
	}
}

func TestSolveHomography_ScaleFree(t *testing.T) {
	// The same shape at metre and megametre scale must both pass.
	base := [4]Point{{-1, -1}, {1, -0.8}, {0.9, 1}, {-1.1, 0.9}}
	dst := [4]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	for _, s := range []float64{1e-3, 1, 1e3, 1e6} {
		var src [4]Point
		for i, p := range base {
			src[i] = p.Mul(s)
		}
		if _, err := SolveHomography(src, dst); err != nil {
			t.Errorf("scale %g: %v", s, err)
		}
	}
}
