package renderer

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/report"
)

// Scene is what the preview draws: a board, the entities a check flagged
// and the debug outlines it emitted.
type Scene struct {
	Board    *board.Snapshot
	Flags    *board.Flags
	Outlines []report.Outline
	Layers   *LayerConfig

	// DimUnflagged fades everything a check did not flag.
	DimUnflagged bool
}

func (s Scene) color(id board.EntityID, base color.NRGBA) color.NRGBA {
	if s.Flags != nil && s.Flags.IsFlagged(id) {
		return ColorFlagged
	}
	if s.DimUnflagged && s.Flags != nil && s.Flags.Len() > 0 {
		return dim(base)
	}
	return base
}

// Render draws the scene, bottom to top: zone outlines, drawings, tracks,
// pads, vias, text, then debug outlines.
func Render(gtx layout.Context, cam *Camera, s Scene) layout.Dimensions {
	size := gtx.Constraints.Max
	cam.UpdateScreenSize(size.X, size.Y)

	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, ColorBackground)

	b := s.Board
	if b == nil {
		return layout.Dimensions{Size: size}
	}

	for i := range b.Zones {
		z := &b.Zones[i]
		if l, ok := s.firstVisible(z.Layers); ok {
			strokePath(gtx, cam, zonePath(z), dim(LayerColor(l)))
		}
	}

	for i := range b.Drawings {
		d := &b.Drawings[i]
		if !s.Layers.IsVisible(d.Layer) {
			continue
		}
		strokePath(gtx, cam, drawingPath(d), s.color(d.ID, LayerColor(d.Layer)))
	}

	for i := range b.Tracks {
		t := &b.Tracks[i]
		if !s.Layers.IsVisible(t.Layer) {
			continue
		}
		strokePath(gtx, cam, trackPath(t), s.color(t.ID, LayerColor(t.Layer)))
	}

	for i := range b.Pads {
		p := &b.Pads[i]
		if !s.anyVisible(p.Layers) {
			continue
		}
		fillPolygon(gtx, cam, padOutline(p), s.color(p.ID, ColorPad))
		if p.HasHole() {
			fillCircle(gtx, cam, p.Position, min(p.Drill.W, p.Drill.H)/2, ColorDrill)
		}
	}

	for i := range b.Vias {
		v := &b.Vias[i]
		if !s.anyVisible(v.Layers) {
			continue
		}
		fillCircle(gtx, cam, v.Position, v.Diameter/2, s.color(v.ID, ColorVia))
		fillCircle(gtx, cam, v.Position, v.Drill/2, ColorDrill)
	}

	for i := range b.Texts {
		t := &b.Texts[i]
		if !s.Layers.IsVisible(t.Layer) {
			continue
		}
		c := s.color(t.ID, LayerColor(t.Layer))
		for _, pl := range textPaths(t) {
			strokePath(gtx, cam, pl, c)
		}
	}

	for _, o := range s.Outlines {
		strokePath(gtx, cam, polyline{points: o.Points, width: o.Width, closed: o.Closed}, ColorOutline)
	}

	return layout.Dimensions{Size: size}
}

func (s Scene) anyVisible(layers board.LayerSet) bool {
	_, ok := s.firstVisible(layers)
	return ok
}

func (s Scene) firstVisible(layers board.LayerSet) (string, bool) {
	for _, l := range layers {
		if s.Layers.IsVisible(l) {
			return l, true
		}
	}
	return "", false
}

func screenPath(gtx layout.Context, cam *Camera, pts []geom.Point, closed bool) clip.PathSpec {
	var path clip.Path
	path.Begin(gtx.Ops)
	for i, p := range pts {
		x, y := cam.WorldToScreen(p)
		if i == 0 {
			path.MoveTo(f32.Pt(float32(x), float32(y)))
		} else {
			path.LineTo(f32.Pt(float32(x), float32(y)))
		}
	}
	if closed {
		path.Close()
	}
	return path.End()
}

func strokePath(gtx layout.Context, cam *Camera, pl polyline, c color.NRGBA) {
	if len(pl.points) < 2 {
		return
	}
	width := max(cam.Length(pl.width), 1.0)
	stroke := clip.Stroke{
		Path:  screenPath(gtx, cam, pl.points, pl.closed),
		Width: float32(width),
	}.Op()
	paint.FillShape(gtx.Ops, c, stroke)
}

func fillPolygon(gtx layout.Context, cam *Camera, pts []geom.Point, c color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	outline := clip.Outline{Path: screenPath(gtx, cam, pts, true)}.Op()
	paint.FillShape(gtx.Ops, c, outline)
}

func fillCircle(gtx layout.Context, cam *Camera, center geom.Point, radius float64, c color.NRGBA) {
	x, y := cam.WorldToScreen(center)
	r := max(cam.Length(radius), 1.0)

	stack := op.Affine(f32.Affine2D{}.Offset(f32.Pt(float32(x), float32(y)))).Push(gtx.Ops)
	defer stack.Pop()

	rect := image.Rectangle{
		Min: image.Pt(int(-r), int(-r)),
		Max: image.Pt(int(r), int(r)),
	}
	paint.FillShape(gtx.Ops, c, clip.Ellipse(rect).Op(gtx.Ops))
}
