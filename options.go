package routemap

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/image/draw"
)

// RenderConfig holds the presentation parameters of a course overlay.
// Sizes are in pixels of the rendered (possibly rescaled) image.
type RenderConfig struct {
	// StrokeWidth is the line width of legs and marker outlines. Must be ≥ 1.
	StrokeWidth int

	// MarkerRadius is the radius of control circles and the circumradius of
	// the start triangle. Legs stop this far from each control.
	MarkerRadius int

	// FinishRadius is the radius of the inner finish circle,
	// 0 < FinishRadius < MarkerRadius.
	FinishRadius int

	// LabelOffset is the distance from a control to the centre of its number.
	LabelOffset float64

	// Color is the overprint colour.
	Color RGBA

	// Alpha is the opacity of the whole overlay, in [0, 1].
	Alpha float64

	// Font draws the control numbers. Nil selects DefaultFontSource.
	Font *FontSource

	// FontSize is the label size in pixels.
	FontSize float64
}

// DefaultRenderConfig returns the classic overprint style: purple 6px lines,
// 30px circles with a 20px inner finish circle, labels two radii away and
// 70% opacity.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		StrokeWidth:  6,
		MarkerRadius: 30,
		FinishRadius: 20,
		LabelOffset:  60,
		Color:        Purple,
		Alpha:        0.7,
		FontSize:     24,
	}
}

// Validate checks that the configuration describes a drawable style.
// All problems are reported at once.
func (c RenderConfig) Validate() error {
	var errs []string

	if c.StrokeWidth < 1 {
		errs = append(errs, fmt.Sprintf("stroke width must be at least 1, got %d", c.StrokeWidth))
	}
	if c.MarkerRadius <= 0 {
		errs = append(errs, fmt.Sprintf("marker radius must be positive, got %d", c.MarkerRadius))
	}
	if c.FinishRadius <= 0 || c.FinishRadius >= c.MarkerRadius {
		errs = append(errs, fmt.Sprintf("finish radius must be in (0, %d), got %d", c.MarkerRadius, c.FinishRadius))
	}
	if c.LabelOffset < 0 || !isFinite(c.LabelOffset) {
		errs = append(errs, fmt.Sprintf("label offset must be a non-negative number, got %g", c.LabelOffset))
	}
	if !(c.Alpha >= 0 && c.Alpha <= 1) {
		errs = append(errs, fmt.Sprintf("alpha must be in [0, 1], got %g", c.Alpha))
	}
	if !(c.FontSize > 0) || !isFinite(c.FontSize) {
		errs = append(errs, fmt.Sprintf("font size must be positive, got %g", c.FontSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	r, err := routemap.NewRenderer(cfg,
//	    routemap.WithParallelism(4),
//	    routemap.WithInterpolator(draw.BiLinear))
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	workers int
	interp  draw.Interpolator
}

// defaultRendererOptions returns serial drawing and Catmull-Rom resampling.
func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		workers: 1,
		interp:  draw.CatmullRom,
	}
}

// WithParallelism draws up to n routes concurrently, each into its own
// layer. Layers are still merged in route order, so the output does not
// depend on n. n <= 0 selects GOMAXPROCS.
func WithParallelism(n int) RendererOption {
	return func(o *rendererOptions) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithInterpolator sets the resampler used by RenderMap to rescale the map.
func WithInterpolator(i draw.Interpolator) RendererOption {
	return func(o *rendererOptions) {
		if i != nil {
			o.interp = i
		}
	}
}
