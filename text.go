package routemap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyFontData is returned when font data is empty.
var ErrEmptyFontData = errors.New("routemap: empty font data")

// FontSource is a parsed TrueType/OpenType font.
//
// A FontSource is read-only and safe for concurrent use; it hands out Faces,
// which are not. The font is parsed twice: by x/image for rasterisation and
// by go-text/typesetting for HarfBuzz shaping.
type FontSource struct {
	name   string
	raster *opentype.Font
	shape  *gotext.Font
}

// NewFontSource parses font data.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	raster, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("routemap: failed to parse font: %w", err)
	}
	// ParseTTF returns a *Face which embeds the thread-safe *Font.
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("routemap: failed to parse font for shaping: %w", err)
	}
	name, _ := raster.Name(nil, sfnt.NameIDFamily)
	return &FontSource{name: name, raster: raster, shape: face.Font}, nil
}

var defaultFont struct {
	once sync.Once
	src  *FontSource
	err  error
}

// DefaultFontSource returns the embedded Go Regular font.
func DefaultFontSource() (*FontSource, error) {
	defaultFont.once.Do(func() {
		defaultFont.src, defaultFont.err = NewFontSource(goregular.TTF)
	})
	return defaultFont.src, defaultFont.err
}

// Name returns the font family name, if the font declares one.
func (s *FontSource) Name() string {
	return s.name
}

// Face returns a face of the given pixel size.
func (s *FontSource) Face(size float64) (*Face, error) {
	if size <= 0 || !isFinite(size) {
		return nil, fmt.Errorf("routemap: invalid font size %g", size)
	}
	ot, err := opentype.NewFace(s.raster, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("routemap: failed to create face: %w", err)
	}
	return &Face{
		source: s,
		size:   size,
		raster: ot,
		shape:  gotext.NewFace(s.shape),
	}, nil
}

// Face is a sized font used to draw control numbers.
// A Face is not safe for concurrent use.
type Face struct {
	source *FontSource
	size   float64
	raster font.Face
	shape  *gotext.Face
	shaper shaping.HarfbuzzShaper
}

// Size returns the face size in pixels.
func (f *Face) Size() float64 { return f.size }

// Close releases the rasteriser resources of the face.
func (f *Face) Close() error { return f.raster.Close() }

// Advance returns the shaped horizontal advance of s in pixels.
func (f *Face) Advance(s string) float64 {
	if s == "" {
		return 0
	}
	runes := []rune(s)
	out := f.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      f.shape,
		Size:      fixed.Int26_6(f.size * 64),
		Script:    language.LookupScript(runes[0]),
		Language:  language.NewLanguage("en"),
	})
	var adv fixed.Int26_6
	for _, g := range out.Glyphs {
		adv += g.Advance
	}
	return float64(adv) / 64
}

// Metrics returns the ascent and descent of the face in pixels, both
// positive.
func (f *Face) Metrics() (ascent, descent float64) {
	m := f.raster.Metrics()
	return float64(m.Ascent) / 64, float64(m.Descent) / 64
}

// DrawString draws s with its baseline origin at (x, y).
func (f *Face) DrawString(dst draw.Image, s string, x, y float64, c color.Color) {
	if s == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.raster,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(s)
}

// DrawStringAnchored draws s so that the anchor point (ax, ay) of its box
// lands on (x, y). Anchors are in [0, 1]:
//
//	(0, 0)     = top-left
//	(0.5, 0.5) = center
//	(1, 1)     = bottom-right
//
// The box spans the shaped advance horizontally and ascent+descent
// vertically.
func (f *Face) DrawStringAnchored(dst draw.Image, s string, x, y, ax, ay float64, c color.Color) {
	ascent, descent := f.Metrics()
	x -= f.Advance(s) * ax
	y += ascent*(1-ay) - descent*ay
	f.DrawString(dst, s, x, y, c)
}
