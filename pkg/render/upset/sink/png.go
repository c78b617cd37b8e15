package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/layout"
)

const (
	defaultSupersample = 4
	maxPixels          = 64 << 20
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale       float64
	supersample int
}

// WithScale sets the output scale factor (default 1.0).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithSupersample sets how many times larger the scene is drawn before
// downsampling (default 4).
func WithSupersample(n int) PNGOption {
	return func(r *pngRenderer) { r.supersample = n }
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// RenderPNG rasterizes s.
func RenderPNG(s upset.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, supersample: defaultSupersample}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || r.supersample < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale and supersample must be positive")
	}
	w, h := int(math.Ceil(s.Width*r.scale)), int(math.Ceil(s.Height*r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png size must be positive")
	}
	k := r.scale * float64(r.supersample)
	bw, bh := w*r.supersample, h*r.supersample
	if bw*bh > maxPixels {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png too large: %dx%d", w, h)
	}

	fnt, err := goRegular()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse font")
	}
	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, bw, bh)),
		k:     k,
		font:  fnt,
		faces: map[float64]font.Face{},
	}
	defer c.close()

	bg, ok := parseColor(s.Background)
	if !ok {
		bg = color.RGBA{255, 255, 255, 255}
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	for _, e := range s.Elements {
		if err := c.element(e); err != nil {
			return nil, err
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// canvas draws scene elements at k times their scene coordinates.
type canvas struct {
	img   *image.RGBA
	k     float64
	font  *opentype.Font
	faces map[float64]font.Face
}

func (c *canvas) close() {
	for _, f := range c.faces {
		f.Close()
	}
}

func (c *canvas) element(e upset.Element) error {
	switch e.Shape {
	case upset.ShapeRect:
		if fill, ok := parseColor(e.Fill); ok {
			c.fillRect(e.X, e.Y, e.W, e.H, fill)
		}
		if stroke, ok := parseColor(e.Stroke); ok {
			c.strokeRect(e.X, e.Y, e.W, e.H, e.StrokeWidth, stroke)
		}
	case upset.ShapeCircle:
		if fill, ok := parseColor(e.Fill); ok {
			c.fillCircle(e.X, e.Y, e.R, fill)
		}
	case upset.ShapeLine:
		if stroke, ok := parseColor(e.Stroke); ok {
			c.line(e.X, e.Y, e.X2, e.Y2, e.StrokeWidth, stroke)
		}
	case upset.ShapeText:
		fill, ok := parseColor(e.Fill)
		if !ok || e.Text == "" {
			return nil
		}
		return c.text(e, fill)
	}
	return nil
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// pen traces a path in scene coordinates onto a rasterizer covering only
// the shape's pixel bounds.
type pen struct {
	z      *vector.Rasterizer
	k      float64
	ox, oy float64
}

func (p pen) pt(x, y float64) (float32, float32) {
	return float32(x*p.k - p.ox), float32(y*p.k - p.oy)
}

func (p pen) moveTo(x, y float64) { p.z.MoveTo(p.pt(x, y)) }
func (p pen) lineTo(x, y float64) { p.z.LineTo(p.pt(x, y)) }

func (p pen) cubeTo(x1, y1, x2, y2, x3, y3 float64) {
	ax, ay := p.pt(x1, y1)
	bx, by := p.pt(x2, y2)
	cx, cy := p.pt(x3, y3)
	p.z.CubeTo(ax, ay, bx, by, cx, cy)
}

// poly adds a closed polygon. Opposite windings cancel, so a reversed
// inner ring cuts a hole.
func (p pen) poly(pts ...[2]float64) {
	p.moveTo(pts[0][0], pts[0][1])
	for _, q := range pts[1:] {
		p.lineTo(q[0], q[1])
	}
	p.z.ClosePath()
}

// paint fills the path traced by trace, anti-aliased. The bounds are in
// scene coordinates.
func (c *canvas) paint(minX, minY, maxX, maxY float64, col color.Color, trace func(pen)) {
	b := image.Rect(
		int(math.Floor(minX*c.k)), int(math.Floor(minY*c.k)),
		int(math.Ceil(maxX*c.k)), int(math.Ceil(maxY*c.k)),
	).Intersect(c.img.Bounds())
	if b.Empty() {
		return
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	trace(pen{z: z, k: c.k, ox: float64(b.Min.X), oy: float64(b.Min.Y)})
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

func (c *canvas) fillRect(x, y, w, h float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	c.paint(x, y, x+w, y+h, col, func(p pen) {
		p.poly([2]float64{x, y}, [2]float64{x + w, y}, [2]float64{x + w, y + h}, [2]float64{x, y + h})
	})
}

// strokeRect centers the stroke on the rectangle's edge.
func (c *canvas) strokeRect(x, y, w, h, width float64, col color.Color) {
	t := math.Max(width, 1) / 2
	x0, y0, x1, y1 := x-t, y-t, x+w+t, y+h+t
	c.paint(x0, y0, x1, y1, col, func(p pen) {
		p.poly([2]float64{x0, y0}, [2]float64{x1, y0}, [2]float64{x1, y1}, [2]float64{x0, y1})
		if w > 2*t && h > 2*t {
			ix0, iy0, ix1, iy1 := x+t, y+t, x+w-t, y+h-t
			p.poly([2]float64{ix0, iy0}, [2]float64{ix0, iy1}, [2]float64{ix1, iy1}, [2]float64{ix1, iy0})
		}
	})
}

func (c *canvas) fillCircle(cx, cy, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	d := r * kappa
	c.paint(cx-r, cy-r, cx+r, cy+r, col, func(p pen) {
		p.moveTo(cx+r, cy)
		p.cubeTo(cx+r, cy+d, cx+d, cy+r, cx, cy+r)
		p.cubeTo(cx-d, cy+r, cx-r, cy+d, cx-r, cy)
		p.cubeTo(cx-r, cy-d, cx-d, cy-r, cx, cy-r)
		p.cubeTo(cx+d, cy-r, cx+r, cy-d, cx+r, cy)
		p.z.ClosePath()
	})
}

// line strokes a segment as a quad of the given width with butt caps.
func (c *canvas) line(x1, y1, x2, y2, width float64, col color.Color) {
	length := math.Hypot(x2-x1, y2-y1)
	if length == 0 {
		return
	}
	t := math.Max(width, 1) / 2
	nx, ny := -(y2-y1)/length*t, (x2-x1)/length*t
	c.paint(math.Min(x1, x2)-t, math.Min(y1, y2)-t, math.Max(x1, x2)+t, math.Max(y1, y2)+t, col, func(p pen) {
		p.poly(
			[2]float64{x1 + nx, y1 + ny}, [2]float64{x2 + nx, y2 + ny},
			[2]float64{x2 - nx, y2 - ny}, [2]float64{x1 - nx, y1 - ny},
		)
	})
}

func (c *canvas) face(size float64) (font.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size * c.k,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create font face")
	}
	c.faces[size] = f
	return f, nil
}

func (c *canvas) text(e upset.Element, col color.Color) error {
	face, err := c.face(e.FontSize)
	if err != nil {
		return err
	}
	width := font.MeasureString(face, e.Text)
	m := face.Metrics()

	// Offset of the anchor point from the start of the baseline.
	var dx fixed.Int26_6
	switch e.Anchor {
	case layout.AnchorMiddle:
		dx = width / 2
	case layout.AnchorEnd:
		dx = width
	}
	var dy fixed.Int26_6
	if e.Baseline == upset.BaselineMiddle {
		dy = -(m.Ascent - m.Descent) / 2
	}

	x, y := e.X*c.k, e.Y*c.k
	if e.Rotate == 0 {
		d := &font.Drawer{
			Dst:  c.img,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.Int26_6(x*64) - dx, Y: fixed.Int26_6(y*64) - dy},
		}
		d.DrawString(e.Text)
		return nil
	}

	// Rotated text is drawn upright into a scratch image and transformed
	// onto the canvas around its anchor point.
	tw, th := width.Ceil()+2, (m.Ascent + m.Descent).Ceil()+2
	tmp := image.NewRGBA(image.Rect(0, 0, tw, th))
	d := &font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(1), Y: m.Ascent + fixed.I(1)},
	}
	d.DrawString(e.Text)

	ax := 1 + float64(dx)/64
	ay := 1 + float64(m.Ascent+dy)/64
	sin, cos := math.Sincos(e.Rotate * math.Pi / 180)
	aff := f64.Aff3{
		cos, -sin, x - (cos*ax - sin*ay),
		sin, cos, y - (sin*ax + cos*ay),
	}
	draw.BiLinear.Transform(c.img, aff, tmp, tmp.Bounds(), draw.Over, nil)
	return nil
}

// parseColor reads "#rgb" and "#rrggbb". "none", "transparent" and empty
// strings are not painted.
func parseColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
