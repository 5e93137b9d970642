package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/vector"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/report"
)

// ImageOptions sizes an exported image.
type ImageOptions struct {
	Width  int
	Height int
	Margin int
}

// DefaultImageOptions is 1600x1200 with a 20 pixel border.
var DefaultImageOptions = ImageOptions{Width: 1600, Height: 1200, Margin: 20}

// minStroke keeps hairlines visible at small scales.
const minStroke = 1.0

// raster accumulates paths of one colour and composites them onto dst.
type raster struct {
	dst *image.NRGBA
	tf  Transform
	z   *vector.Rasterizer
}

func newRaster(dst *image.NRGBA, tf Transform) *raster {
	b := dst.Bounds()
	return &raster{dst: dst, tf: tf, z: vector.NewRasterizer(b.Dx(), b.Dy())}
}

// flush paints the accumulated coverage in c and starts a new layer.
func (r *raster) flush(c color.NRGBA) {
	b := r.dst.Bounds()
	r.z.DrawOp = draw.Over
	r.z.Draw(r.dst, b, image.NewUniform(c), image.Point{})
	r.z.Reset(b.Dx(), b.Dy())
}

func (r *raster) polygon(pts []geom.Point) {
	if len(pts) < 3 {
		return
	}
	x, y := r.tf.Apply(pts[0])
	r.z.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y = r.tf.Apply(p)
		r.z.LineTo(x, y)
	}
	r.z.ClosePath()
}

// segment adds a stroked segment as a quad; zero-length segments become a
// square dot.
func (r *raster) segment(a, b geom.Point, width float64) {
	ax, ay := r.tf.Apply(a)
	bx, by := r.tf.Apply(b)
	half := math.Max(float64(r.tf.Length(width)), minStroke) / 2

	dx, dy := float64(bx-ax), float64(by-ay)
	l := math.Hypot(dx, dy)
	var nx, ny float64
	if l == 0 {
		nx, ny = 0, half
		ax, bx = ax-float32(half), bx+float32(half)
	} else {
		nx, ny = -dy/l*half, dx/l*half
	}
	r.z.MoveTo(ax+float32(nx), ay+float32(ny))
	r.z.LineTo(bx+float32(nx), by+float32(ny))
	r.z.LineTo(bx-float32(nx), by-float32(ny))
	r.z.LineTo(ax-float32(nx), ay-float32(ny))
	r.z.ClosePath()
}

func (r *raster) polyline(pl polyline) {
	for i := 0; i+1 < len(pl.points); i++ {
		r.segment(pl.points[i], pl.points[i+1], pl.width)
	}
	if pl.closed && len(pl.points) > 2 {
		r.segment(pl.points[len(pl.points)-1], pl.points[0], pl.width)
	}
}

// RenderImage rasterizes the scene: the board in layer colours with flagged
// entities highlighted and the debug outlines on top.
func RenderImage(s Scene, opts ImageOptions) *image.NRGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultImageOptions
	}
	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(ColorBackground), image.Point{}, draw.Src)

	box := geom.EmptyBox()
	if s.Board != nil {
		box = s.Board.Bounds()
	}
	for _, o := range s.Outlines {
		box.ExpandBox(geom.BoxOf(o.Points...).Inflate(o.Width / 2))
	}
	if box.IsEmpty() {
		return img
	}

	r := newRaster(img, FitTransform(box, opts.Width, opts.Height, opts.Margin))

	if b := s.Board; b != nil {
		// Group by colour so overlapping shapes of one layer do not stack alpha.
		paths := map[color.NRGBA][]polyline{}
		var order []color.NRGBA
		add := func(c color.NRGBA, pl polyline) {
			if _, ok := paths[c]; !ok {
				order = append(order, c)
			}
			paths[c] = append(paths[c], pl)
		}
		for i := range b.Zones {
			z := &b.Zones[i]
			if l, ok := s.firstVisible(z.Layers); ok {
				add(dim(LayerColor(l)), zonePath(z))
			}
		}
		for i := range b.Drawings {
			d := &b.Drawings[i]
			if s.Layers.IsVisible(d.Layer) {
				add(s.color(d.ID, LayerColor(d.Layer)), drawingPath(d))
			}
		}
		for i := range b.Tracks {
			t := &b.Tracks[i]
			if s.Layers.IsVisible(t.Layer) {
				add(s.color(t.ID, LayerColor(t.Layer)), trackPath(t))
			}
		}
		for _, c := range order {
			for _, pl := range paths[c] {
				r.polyline(pl)
			}
			r.flush(c)
		}

		renderImagePads(r, s)

		for i := range b.Texts {
			t := &b.Texts[i]
			if !s.Layers.IsVisible(t.Layer) {
				continue
			}
			for _, pl := range textPaths(t) {
				r.polyline(pl)
			}
			r.flush(s.color(t.ID, LayerColor(t.Layer)))
		}
	}

	for _, o := range s.Outlines {
		r.polyline(polyline{points: o.Points, width: o.Width, closed: o.Closed})
	}
	r.flush(ColorOutline)

	return img
}

func renderImagePads(r *raster, s Scene) {
	b := s.Board
	for i := range b.Pads {
		p := &b.Pads[i]
		if !s.anyVisible(p.Layers) {
			continue
		}
		r.polygon(padOutline(p))
		r.flush(s.color(p.ID, ColorPad))
		if p.HasHole() {
			r.polygon(circle(p.Position, min(p.Drill.W, p.Drill.H)/2, circleSteps))
			r.flush(ColorDrill)
		}
	}
	for i := range b.Vias {
		v := &b.Vias[i]
		if !s.anyVisible(v.Layers) {
			continue
		}
		r.polygon(circle(v.Position, v.Diameter/2, circleSteps))
		r.flush(s.color(v.ID, ColorVia))
		r.polygon(circle(v.Position, v.Drill/2, circleSteps))
		r.flush(ColorDrill)
	}
}

// WritePNG encodes RenderImage's output to w.
func WritePNG(w io.Writer, s Scene, opts ImageOptions) error {
	if err := png.Encode(w, RenderImage(s, opts)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes the scene to a PNG file.
func SavePNG(path string, s Scene, opts ImageOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePNG(f, s, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// OutlineScene is a scene of only the outlines a check drew, over the
// board's copper and silk.
func OutlineScene(b *board.Snapshot, flags *board.Flags, outlines []report.Outline) Scene {
	layers := NewLayerConfig()
	layers.ShowOnly("F.Cu", "B.Cu", "F.SilkS", "B.SilkS", "Edge.Cuts")
	return Scene{Board: b, Flags: flags, Outlines: outlines, Layers: layers}
}
