package routemap

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Layer is a transparent drawing surface. Routes are drawn into layers and
// the layers are composited onto the map afterwards, similar to SVG group
// opacity.
//
// A Layer is not safe for concurrent use.
type Layer struct {
	img *image.RGBA
	src *image.Uniform
	z   vector.Rasterizer
}

// NewLayer creates a fully transparent layer.
func NewLayer(width, height int) *Layer {
	return &Layer{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		src: image.NewUniform(Black.Color()),
	}
}

// Image returns the layer pixels (premultiplied RGBA).
func (l *Layer) Image() *image.RGBA {
	return l.img
}

// Bounds returns the layer rectangle.
func (l *Layer) Bounds() image.Rectangle {
	return l.img.Bounds()
}

// Clear resets every pixel to transparent.
func (l *Layer) Clear() {
	clear(l.img.Pix)
}

// SetColor sets the paint used by subsequent Fill and Stroke calls.
func (l *Layer) SetColor(c RGBA) {
	l.src = image.NewUniform(c.Color())
}

// Color returns the current paint.
func (l *Layer) Color() color.Color {
	return l.src.C
}

// Fill paints the interior of p with the non-zero winding rule.
//
// Each call rasterises only the path's bounding box, clipped to the layer,
// so overlapping shapes from separate calls never cancel each other.
func (l *Layer) Fill(p *Path) {
	minPt, maxPt, ok := p.Bounds()
	if !ok || !minPt.IsFinite() || !maxPt.IsFinite() {
		return
	}
	r := image.Rect(
		int(math.Floor(minPt.X))-1, int(math.Floor(minPt.Y))-1,
		int(math.Ceil(maxPt.X))+1, int(math.Ceil(maxPt.Y))+1,
	).Intersect(l.img.Bounds())
	if r.Empty() {
		return
	}

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	f := func(q Point) (float32, float32) {
		return float32(q.X - ox), float32(q.Y - oy)
	}

	l.z.Reset(r.Dx(), r.Dy())
	l.z.DrawOp = draw.Over
	for _, elem := range p.Elements() {
		switch e := elem.(type) {
		case MoveTo:
			l.z.MoveTo(f(e.Point))
		case LineTo:
			l.z.LineTo(f(e.Point))
		case CubicTo:
			bx, by := f(e.Control1)
			cx, cy := f(e.Control2)
			dx, dy := f(e.Point)
			l.z.CubeTo(bx, by, cx, cy, dx, dy)
		case Close:
			l.z.ClosePath()
		}
	}
	l.z.Draw(l.img, r, l.src, image.Point{})
}

// StrokeLine draws a segment of the given width with butt ends.
func (l *Layer) StrokeLine(a, b Point, width float64) {
	d := b.Sub(a)
	if d.Length() == 0 || width <= 0 {
		return
	}
	n := d.Normalize().Perp().Mul(width / 2)
	p := NewPath()
	p.Polygon(a.Add(n), b.Add(n), b.Sub(n), a.Sub(n))
	l.Fill(p)
}

// StrokeCircle draws a circle outline of radius r centred on c. The stroke
// straddles the radius. A stroke wider than the diameter fills the disc.
func (l *Layer) StrokeCircle(c Point, r, width float64) {
	if r <= 0 || width <= 0 {
		return
	}
	p := NewPath()
	p.Circle(c.X, c.Y, r+width/2)
	if inner := r - width/2; inner > 0 {
		p.CircleReverse(c.X, c.Y, inner)
	}
	l.Fill(p)
}

// StrokeTriangle draws the outline of an equilateral triangle with
// circumradius r centred on c, one vertex pointing in direction angle.
//
// Offsetting the edges of an equilateral triangle by d moves its vertices
// by 2d, so the outer and inner contours of a stroke of the given width
// have circumradius r+width and r-width, with exact miter joins.
func (l *Layer) StrokeTriangle(c Point, r, angle, width float64) {
	if r <= 0 || width <= 0 {
		return
	}
	p := NewPath()
	p.Polygon(trianglePoints(c, r+width, angle)...)
	if inner := r - width; inner > 0 {
		v := trianglePoints(c, inner, angle)
		p.Polygon(v[2], v[1], v[0])
	}
	l.Fill(p)
}

// trianglePoints returns the vertices at angle, angle+120° and angle-120°.
func trianglePoints(c Point, r, angle float64) []Point {
	const third = 2 * math.Pi / 3
	return []Point{
		c.Polar(r, angle),
		c.Polar(r, angle+third),
		c.Polar(r, angle-third),
	}
}

// Composite draws layer over dst with a uniform opacity in [0, 1], aligning
// the top-left corners of both images.
func Composite(dst *image.RGBA, layer image.Image, opacity float64) {
	if math.IsNaN(opacity) || opacity <= 0 {
		return
	}
	if opacity >= 1 {
		draw.Draw(dst, dst.Bounds(), layer, layer.Bounds().Min, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: to8(opacity)})
	draw.DrawMask(dst, dst.Bounds(), layer, layer.Bounds().Min, mask, image.Point{}, draw.Over)
}
