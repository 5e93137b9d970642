package drc

import (
	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/report"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
	"github.com/OpenTraceLab/padcheck/pkg/shape"
)

const mmNM = 1e6

func allLayers() []board.Layer {
	return []board.Layer{
		{Number: 0, Name: "F.Cu", Kind: board.LayerCopper},
		{Number: 31, Name: "B.Cu", Kind: board.LayerCopper},
		{Number: 34, Name: "B.Paste", Kind: board.LayerNonCopper},
		{Number: 35, Name: "F.Paste", Kind: board.LayerNonCopper},
		{Number: 36, Name: "B.SilkS", Kind: board.LayerNonCopper},
		{Number: 37, Name: "F.SilkS", Kind: board.LayerNonCopper},
		{Number: 43, Name: "Eco2.User", Kind: board.LayerUser},
		{Number: 44, Name: "Edge.Cuts", Kind: board.LayerNonCopper},
	}
}

// newBoard returns an empty snapshot with the given layers, or the full
// standard set when none are given.
func newBoard(layers ...board.Layer) *board.Snapshot {
	if len(layers) == 0 {
		layers = allLayers()
	}
	return &board.Snapshot{
		Layers: board.NewLayerTable(layers),
		Nets:   map[int]string{1: "GND", 2: "VCC"},
	}
}

func without(name string) []board.Layer {
	var out []board.Layer
	for _, l := range allLayers() {
		if l.Name != name {
			out = append(out, l)
		}
	}
	return out
}

func addFootprint(b *board.Snapshot, ref, value string) int {
	i := len(b.Footprints)
	b.Footprints = append(b.Footprints, board.Footprint{
		ID:        board.EntityID{Kind: board.KindFootprint, Index: i},
		Reference: ref,
		Value:     value,
	})
	return i
}

func addPad(b *board.Snapshot, fp int, name string, at geom.Point, w, h float64, layers ...string) *board.Pad {
	i := len(b.Pads)
	b.Pads = append(b.Pads, board.Pad{
		ID:        board.EntityID{Kind: board.KindPad, Index: i},
		Footprint: fp,
		Name:      name,
		Position:  at,
		Size:      board.Size{W: w, H: h},
		Shape:     board.PadRect,
		Attribute: board.PadSMD,
		Layers:    layers,
	})
	if fp >= 0 {
		b.Footprints[fp].Pads = append(b.Footprints[fp].Pads, i)
	}
	return &b.Pads[i]
}

func addVia(b *board.Snapshot, at geom.Point, drill float64, net int) *board.Via {
	i := len(b.Vias)
	b.Vias = append(b.Vias, board.Via{
		ID:       board.EntityID{Kind: board.KindVia, Index: i},
		Position: at,
		Diameter: 2 * drill,
		Drill:    drill,
		Type:     board.ViaThrough,
		Layers:   board.LayerSet{"F.Cu", "B.Cu"},
		Net:      net,
	})
	return &b.Vias[i]
}

func addTrack(b *board.Snapshot, from, to geom.Point, width float64, net int) *board.Track {
	i := len(b.Tracks)
	b.Tracks = append(b.Tracks, board.Track{
		ID:    board.EntityID{Kind: board.KindTrack, Index: i},
		Start: from,
		End:   to,
		Width: width,
		Layer: "F.Cu",
		Net:   net,
	})
	return &b.Tracks[i]
}

func addDrawing(b *board.Snapshot, kind board.DrawShape, layer string, from, to geom.Point, width float64) *board.Drawing {
	i := len(b.Drawings)
	b.Drawings = append(b.Drawings, board.Drawing{
		ID:        board.EntityID{Kind: board.KindDrawing, Index: i},
		Footprint: -1,
		Shape:     kind,
		Layer:     layer,
		Start:     from,
		End:       to,
		Width:     width,
	})
	return &b.Drawings[i]
}

// addText places a horizontal text whose only stroke runs across its box.
func addText(b *board.Snapshot, layer string, at geom.Point, w, h, thickness float64) *board.Text {
	i := len(b.Texts)
	b.Texts = append(b.Texts, board.Text{
		ID:        board.EntityID{Kind: board.KindText, Index: i},
		Footprint: -1,
		Text:      "T",
		Position:  at,
		Layer:     layer,
		Width:     w,
		Height:    h,
		Thickness: thickness,
		Box:       shape.CenteredRect(at, w, h).Inflate(thickness / 2),
		Strokes:   []geom.Point{geom.Pt(at.X-w/2, at.Y), geom.Pt(at.X+w/2, at.Y)},
	})
	return &b.Texts[i]
}

func newEnv(b *board.Snapshot) (Env, *report.Collector) {
	c := report.NewCollector()
	return Env{Board: b, Rules: rules.Default(), Sink: c}, c
}
