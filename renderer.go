package routemap

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"strconv"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/routemap/internal/parallel"
)

// Renderer draws course overlays onto map images.
//
// A Renderer holds only read-only configuration and can be used by several
// goroutines at once.
type Renderer struct {
	cfg     RenderConfig
	font    *FontSource
	workers int
	interp  draw.Interpolator
}

// NewRenderer validates cfg and creates a Renderer.
func NewRenderer(cfg RenderConfig, opts ...RendererOption) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}

	src := cfg.Font
	if src == nil {
		var err error
		if src, err = DefaultFontSource(); err != nil {
			return nil, err
		}
	}

	return &Renderer{
		cfg:     cfg,
		font:    src,
		workers: o.workers,
		interp:  o.interp,
	}, nil
}

// Config returns the render configuration.
func (r *Renderer) Config() RenderConfig {
	return r.cfg
}

// ScaledSize returns the rendered size of a width×height map at resolution
// res: round(width/res) × round(height/res), at least 1×1. A res that is not
// a positive finite number counts as 1.
func ScaledSize(width, height int, res float64) (int, int) {
	if !(res > 0) || !isFinite(res) {
		res = 1
	}
	w := int(math.Round(float64(width) / res))
	h := int(math.Round(float64(height) / res))
	return max(w, 1), max(h, 1)
}

// RenderMap rescales base to its rendered size at resolution res, builds the
// transform for q at that size and draws routes on it.
func (r *Renderer) RenderMap(base image.Image, q Quadrilateral, routes []Route, res float64) (*image.RGBA, error) {
	b := base.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), res)

	t, err := NewGeoTransform(q, w, h)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(canvas, canvas.Bounds(), base, b.Min, draw.Src)
	} else {
		r.interp.Scale(canvas, canvas.Bounds(), base, b, draw.Src, nil)
	}
	return r.render(canvas, t, routes)
}

// Render draws routes onto a copy of base, which must have the size t was
// built for. base itself is not modified.
func (r *Renderer) Render(base image.Image, t *GeoTransform, routes []Route) (*image.RGBA, error) {
	b := base.Bounds()
	if b.Dx() != t.Width() || b.Dy() != t.Height() {
		return nil, fmt.Errorf("%w: image %dx%d, transform %dx%d",
			ErrSizeMismatch, b.Dx(), b.Dy(), t.Width(), t.Height())
	}
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), base, b.Min, draw.Src)
	return r.render(canvas, t, routes)
}

// render places every control, draws the routes into an overlay and
// composites it onto canvas.
func (r *Renderer) render(canvas *image.RGBA, t *GeoTransform, routes []Route) (*image.RGBA, error) {
	start := time.Now()

	// All fallible work happens before any pixel is touched.
	pixels := make([][]Point, len(routes))
	for i, rt := range routes {
		if len(rt.Controls) == 0 {
			return nil, &InvalidRouteError{Route: i, Name: rt.Name, Reason: "route has no controls"}
		}
		pts := make([]Point, len(rt.Controls))
		for j, c := range rt.Controls {
			p, err := t.Transform(c.Position)
			if err != nil {
				return nil, fmt.Errorf("route %d control %d: %w", i, j, err)
			}
			pts[j] = p
		}
		pixels[i] = pts
	}

	overlay := image.NewRGBA(canvas.Bounds())
	if err := r.drawRoutes(overlay, routes, pixels); err != nil {
		return nil, err
	}
	Composite(canvas, overlay, r.cfg.Alpha)

	Logger().Info("routemap: rendered",
		slog.Int("routes", len(routes)),
		slog.Int("width", canvas.Bounds().Dx()),
		slog.Int("height", canvas.Bounds().Dy()),
		slog.Duration("elapsed", time.Since(start)))
	return canvas, nil
}

// drawRoutes draws each route into its own layer and merges the layers into
// overlay in route order. Routes are processed in batches of r.workers so
// at most that many layers exist at once.
func (r *Renderer) drawRoutes(overlay *image.RGBA, routes []Route, pixels [][]Point) error {
	bounds := overlay.Bounds()
	batch := max(r.workers, 1)

	var pool *parallel.WorkerPool
	if batch > 1 && len(routes) > 1 {
		pool = parallel.NewWorkerPool(min(batch, len(routes)))
		defer pool.Close()
	}

	layers := make([]*Layer, min(batch, len(routes)))
	errs := make([]error, len(layers))

	for first := 0; first < len(routes); first += batch {
		last := min(first+batch, len(routes))
		work := make([]func(), 0, last-first)
		for i := first; i < last; i++ {
			slot := i - first
			if layers[slot] == nil {
				layers[slot] = NewLayer(bounds.Dx(), bounds.Dy())
			} else {
				layers[slot].Clear()
			}
			work = append(work, func() {
				errs[slot] = r.drawRoute(layers[slot], routes[i], pixels[i])
			})
		}

		if pool != nil {
			pool.ExecuteAll(work)
		} else {
			for _, fn := range work {
				fn()
			}
		}

		for slot := 0; slot < last-first; slot++ {
			if errs[slot] != nil {
				return fmt.Errorf("route %d: %w", first+slot, errs[slot])
			}
			draw.Draw(overlay, bounds, layers[slot].Image(), image.Point{}, draw.Over)
		}
	}
	return nil
}

// drawRoute draws legs, markers and labels of one route into l.
// pts holds the pixel positions of rt.Controls.
func (r *Renderer) drawRoute(l *Layer, rt Route, pts []Point) error {
	face, err := r.font.Face(r.cfg.FontSize)
	if err != nil {
		return err
	}
	defer func() { _ = face.Close() }()

	l.SetColor(r.cfg.Color)
	radius := float64(r.cfg.MarkerRadius)
	width := float64(r.cfg.StrokeWidth)
	n := len(pts)

	skipped := 0
	for i := 0; i+1 < n; i++ {
		a, b := pts[i], pts[i+1]
		dist := a.Distance(b)
		// Legs that would vanish inside the markers are left out.
		if dist <= 2*radius {
			skipped++
			continue
		}
		u := b.Sub(a).Mul(1 / dist)
		l.StrokeLine(a.Add(u.Mul(radius)), b.Sub(u.Mul(radius)), width)
	}

	for i, p := range pts {
		for _, m := range Markers(i, n) {
			switch m {
			case MarkerStart:
				l.StrokeTriangle(p, radius, startAngle(pts), width)
			case MarkerControl:
				l.StrokeCircle(p, radius, width)
				at := p.Add(labelDirection(pts[i-1], p, pts[i+1]).Mul(r.cfg.LabelOffset))
				face.DrawStringAnchored(l.Image(), strconv.Itoa(rt.Controls[i].Index), at.X, at.Y, 0.5, 0.5, l.Color())
			case MarkerFinish:
				l.StrokeCircle(p, radius, width)
				l.StrokeCircle(p, float64(r.cfg.FinishRadius), width)
			}
		}
	}

	if skipped > 0 {
		Logger().Debug("routemap: short legs skipped",
			slog.String("route", rt.Name),
			slog.Int("skipped", skipped))
	}
	return nil
}

// startAngle returns the direction from the start to the first control at a
// different position, or 0 when every control coincides with the start.
func startAngle(pts []Point) float64 {
	for _, p := range pts[1:] {
		if d := p.Sub(pts[0]); d.Length() > 0 {
			return d.Angle()
		}
	}
	return 0
}

// labelDirection returns the unit vector from cur pointing away from both
// legs meeting there. On a straight pass it is the left normal of the
// route; with no usable legs it points up and to the right.
func labelDirection(prev, cur, next Point) Point {
	in := cur.Sub(prev).Normalize()
	out := next.Sub(cur).Normalize()

	dir := in.Sub(out)
	if dir.Length() < 1e-9 {
		dir = out.Perp()
	}
	if dir.Length() < 1e-9 {
		dir = in.Perp()
	}
	if dir.Length() < 1e-9 {
		dir = Pt(1, -1)
	}
	return dir.Normalize()
}
