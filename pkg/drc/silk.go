package drc

import (
	"context"
	"math"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/report"
	"github.com/OpenTraceLab/padcheck/pkg/shape"
)

// defaultOutlineWidth is used for "draw all outlines" when no thickness is set.
const defaultOutlineWidth = 15000

// far stands in for "no distance measured yet".
const far = 1e12

// layerPair is a copper layer and the silkscreen printed over it.
type layerPair struct {
	copper, silk string
}

var silkPairs = []layerPair{
	{copper: layerFrontCopper, silk: layerFrontSilk},
	{copper: layerBackCopper, silk: layerBackSilk},
}

// SilkInfo checks silkscreen text sizes and line widths, then the clearance
// of silkscreen text and lines to the pads on the same side.
type SilkInfo struct{}

func (SilkInfo) Name() string { return "silk" }

func (SilkInfo) Total(b *board.Snapshot) int {
	n := 0
	for _, p := range silkPairs {
		n += len(b.PadsOn(p.copper))
	}
	return n
}

// TextDistance is the tiered clearance between a pad and a text: zero when
// the text box overlaps the pad and one of its strokes touches it, otherwise
// the best distance the enabled tiers could establish. In fast mode a
// non-overlapping text is never measured and the result is far.
func TextDistance(pad geom.Polygon, box geom.Polygon, strokes []geom.Point, thickness, spacing float64, slow bool) float64 {
	d, _ := textDistance(pad, box, strokes, thickness, spacing, slow)
	return d
}

// textDistance also reports whether the box tiers came within spacing and
// the strokes were examined.
func textDistance(pad geom.Polygon, box geom.Polygon, strokes []geom.Point, thickness, spacing float64, slow bool) (float64, bool) {
	d := float64(far)
	if geom.PolygonsIntersect(pad, box, true) {
		d = 0
	} else if slow {
		d = math.Sqrt(geom.MinDistanceSquaredPolygonPolygon(box, pad)) - thickness/2
	}
	if d > spacing {
		return d, false
	}

	d = far
	segs := shape.Segments(strokes)
	for _, s := range segs {
		if geom.PolygonsIntersect(geom.Polygon{s.A, s.B}, pad, false) {
			return 0, true
		}
	}
	if slow {
		for _, s := range segs {
			d = math.Min(d, math.Sqrt(geom.MinDistanceSquaredSegmentPolygon(s, pad))-thickness/2)
			if d <= spacing {
				break
			}
		}
	}
	return d, true
}

// LineDistance is the tiered clearance between a pad and a stroked line.
func LineDistance(pad geom.Polygon, line geom.Segment, width float64, slow bool) float64 {
	if geom.PolygonsIntersect(geom.Polygon{line.A, line.B}, pad, false) {
		return 0
	}
	if slow {
		return math.Sqrt(geom.MinDistanceSquaredSegmentPolygon(line, pad)) - width/2
	}
	return far
}

func (SilkInfo) Run(ctx context.Context, env Env) error {
	b := env.Board
	cfg := env.Rules

	required := []string{layerFrontCopper, layerBackCopper, layerFrontSilk, layerBackSilk}
	outlines := cfg.OutlineThickness > 0 || cfg.DrawAllOutlines
	if outlines {
		required = append(required, cfg.DebugLayer)
	}
	if err := b.RequireLayers(required...); err != nil {
		return err
	}

	outlineWidth := cfg.OutlineThickness
	if outlineWidth <= 0 {
		outlineWidth = defaultOutlineWidth
	}
	outline := func(pts []geom.Point, closed bool) {
		env.Sink.Outline(report.Outline{Layer: cfg.DebugLayer, Points: pts, Width: outlineWidth, Closed: closed})
	}
	strokeOutlines := func(strokes []geom.Point) {
		for _, s := range shape.Segments(strokes) {
			outline([]geom.Point{s.A, s.B}, false)
		}
	}

	type sideItems struct {
		pads     []int
		padPolys []geom.Polygon
		texts    []int
		boxes    []geom.Polygon
		strokes  [][]geom.Point
		drawings []int
	}
	sides := make([]sideItems, len(silkPairs))
	for si, pair := range silkPairs {
		s := &sides[si]
		s.pads = b.PadsOn(pair.copper)
		for _, i := range s.pads {
			s.padPolys = append(s.padPolys, b.Pads[i].Polygon())
		}
		s.texts = b.TextsOn(pair.silk)
		for _, i := range s.texts {
			s.boxes = append(s.boxes, b.Texts[i].Polygon())
			s.strokes = append(s.strokes, b.Texts[i].StrokePoints())
		}
		s.drawings = b.DrawingsOn(pair.silk)
	}

	if cfg.DrawAllOutlines {
		for _, s := range sides {
			for _, p := range s.padPolys {
				outline(p, true)
			}
			for _, p := range s.boxes {
				outline(p, true)
			}
			for _, st := range s.strokes {
				strokeOutlines(st)
			}
		}
	}

	for _, s := range sides {
		for _, i := range s.texts {
			checkTextSize(env, &b.Texts[i])
		}
		for _, i := range s.drawings {
			d := &b.Drawings[i]
			if d.Width < cfg.SilkMinWidth {
				env.printf("Item at %s too narrow", pos(d.Anchor()))
				env.Sink.Flag(d.ID)
			}
		}
	}

	checked, failed, progress := 0, 0, 0
	spacing := cfg.SilkToPad
	for si, pair := range silkPairs {
		if Stopped(ctx) {
			return ctx.Err()
		}
		s := &sides[si]
		env.printf("Comparing layers: %s and %s", pair.silk, pair.copper)
		env.printf("Pads: %d; Text Objects: %d", len(s.pads), len(s.texts))

		for pi, pad := range s.padPolys {
			progress++
			env.Sink.Progress(progress)
			padID := b.Pads[s.pads[pi]].ID

			for ti, box := range s.boxes {
				checked++
				text := &b.Texts[s.texts[ti]]
				d, near := textDistance(pad, box, s.strokes[ti], text.Thickness, spacing, cfg.SlowCheck)
				if near && cfg.OutlineThickness > 0 {
					strokeOutlines(s.strokes[ti])
					outline(pad, true)
				}
				if d <= spacing {
					env.Sink.Flag(padID)
					env.Sink.Flag(text.ID)
					failed++
				}
			}
		}

		for _, i := range s.drawings {
			d := &b.Drawings[i]
			if d.Shape != board.ShapeLine {
				env.printf("Shape '%s' at %s not checked.", d.Shape, pos(d.Anchor()))
				continue
			}
			for pi, pad := range s.padPolys {
				checked++
				if LineDistance(pad, d.Segment(), d.Width, cfg.SlowCheck) <= spacing {
					env.Sink.Flag(b.Pads[s.pads[pi]].ID)
					env.Sink.Flag(d.ID)
					failed++
				}
			}
		}
	}

	env.printf("Checked: %d; Failed: %d", checked, failed)
	if failed > 0 {
		env.printf(selectedNote)
	}
	return nil
}

// checkTextSize applies the stroke width, height and width-to-height rules.
func checkTextSize(env Env, t *board.Text) {
	cfg := env.Rules
	w, h := t.Thickness, t.Height
	fail := false

	if w < cfg.SilkMinWidth {
		env.printf("Text at %s too narrow", pos(t.Position))
		fail = true
	}
	if h < cfg.TextMinHeight {
		env.printf("Text at %s too short", pos(t.Position))
		fail = true
	}
	if w*cfg.TextMinWidthToHeight < h {
		env.printf("Text at %s too tall for specified width", pos(t.Position))
		env.printf("Actual aspect = 1:%.2f (w*min)=%.1f; h=%d", h/w, w*cfg.TextMinWidthToHeight, int64(h))
		fail = true
	}
	if fail {
		env.Sink.Flag(t.ID)
	}
}
