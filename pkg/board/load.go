package board

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/pcb"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp"
	"github.com/OpenTraceLab/padcheck/pkg/shape"
	"github.com/OpenTraceLab/padcheck/pkg/strokefont"
)

// DefaultClearance applies when neither pad nor footprint sets one; the
// board file does not carry net class rules.
const DefaultClearance = 200000

// Load parses a .kicad_pcb file and builds a snapshot.
func Load(path string) (*Snapshot, error) {
	b, err := pcb.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	snap, err := FromPCB(b)
	if err != nil {
		return nil, err
	}
	snap.Source = path
	return snap, nil
}

func nm(mm float64) float64 { return sexp.MMToNM(mm) }

func point(p pcb.Position) geom.Point {
	return geom.Pt(nm(p.X), nm(p.Y))
}

func tenths(a pcb.Angle) float64 {
	return math.Round(a.Decidegrees())
}

// builder carries the conversion state.
type builder struct {
	snap  *Snapshot
	setup pcb.Setup
}

// FromPCB converts a parsed board into a snapshot: nanometre coordinates,
// footprint children placed in board space, effective pad margins and
// stroked silkscreen text.
func FromPCB(b *pcb.Board) (*Snapshot, error) {
	if b == nil {
		return nil, fmt.Errorf("nil board")
	}

	layers := make([]Layer, 0, len(b.Layers))
	for _, l := range b.Layers {
		layers = append(layers, Layer{Number: l.Number, Name: l.Name, Kind: classifyLayer(l)})
	}

	bl := &builder{
		setup: b.Setup,
		snap: &Snapshot{
			Layers: NewLayerTable(layers),
			Nets:   make(map[int]string, len(b.Nets)),
		},
	}
	for _, n := range b.Nets {
		bl.snap.Nets[n.Number] = n.Name
	}

	for i := range b.Footprints {
		bl.addFootprint(&b.Footprints[i])
	}
	for i := range b.Graphics {
		bl.addDrawing(&b.Graphics[i], -1, geom.Point{}, 0)
	}
	for i := range b.Texts {
		bl.addText(&b.Texts[i], -1, geom.Point{}, 0)
	}
	for i := range b.Tracks {
		bl.addTrack(&b.Tracks[i])
	}
	for i := range b.Vias {
		bl.addVia(&b.Vias[i])
	}
	for i := range b.Zones {
		bl.addZone(&b.Zones[i])
	}

	s := bl.snap
	log.Debug("built snapshot",
		"pads", len(s.Pads), "vias", len(s.Vias), "tracks", len(s.Tracks),
		"texts", len(s.Texts), "drawings", len(s.Drawings), "zones", len(s.Zones))
	return s, nil
}

func netNumber(n *pcb.Net) int {
	if n == nil {
		return 0
	}
	return n.Number
}

func (bl *builder) addFootprint(fp *pcb.Footprint) {
	s := bl.snap
	idx := len(s.Footprints)
	origin := point(fp.Position.Position)
	orient := tenths(fp.Position.Angle)

	s.Footprints = append(s.Footprints, Footprint{
		ID:          EntityID{KindFootprint, idx},
		Reference:   fp.Reference,
		Value:       fp.Value,
		Library:     fp.Library,
		Name:        fp.Name,
		Position:    origin,
		Orientation: orient,
		Layer:       fp.Layer,
	})

	for i := range fp.Pads {
		pi := bl.addPad(&fp.Pads[i], fp, idx, origin, orient)
		s.Footprints[idx].Pads = append(s.Footprints[idx].Pads, pi)
	}
	for i := range fp.Graphics {
		bl.addDrawing(&fp.Graphics[i], idx, origin, orient)
	}
	for i := range fp.Texts {
		bl.addText(&fp.Texts[i], idx, origin, orient)
	}
}

// place converts a footprint-local position to board coordinates.
func place(local pcb.Position, origin geom.Point, orient float64) geom.Point {
	return shape.Rotate(point(local), geom.Point{}, orient).Add(origin)
}

func padShape(s string) PadShape {
	switch s {
	case "circle":
		return PadCircle
	case "oval":
		return PadOval
	case "rect":
		return PadRect
	case "trapezoid":
		return PadTrapezoid
	case "roundrect":
		return PadRoundRect
	}
	return PadCustom
}

func (bl *builder) addPad(p *pcb.Pad, fp *pcb.Footprint, fpIndex int, origin geom.Point, orient float64) int {
	s := bl.snap
	idx := len(s.Pads)

	pad := Pad{
		ID:          EntityID{KindPad, idx},
		Footprint:   fpIndex,
		Name:        p.Number,
		Position:    place(p.Position.Position, origin, orient),
		Orientation: tenths(p.Position.Angle),
		Size:        Size{W: nm(p.Size.Width), H: nm(p.Size.Height)},
		Shape:       padShape(p.Shape),
		Attribute:   PadAttribute(p.Type),
		Drill:       Size{W: nm(p.Drill.Width), H: nm(p.Drill.Height)},
		Layers:      s.Layers.Expand(p.Layers),
		Net:         netNumber(p.Net),

		LocalClearance:   nm(p.LocalClearance),
		LocalPasteMargin: nm(p.SolderPasteMargin),
		LocalPasteRatio:  p.SolderPasteRatio,
		LocalMaskMargin:  nm(p.SolderMaskMargin),
	}
	if p.DrillShape == "oval" {
		pad.DrillShape = DrillOblong
	}

	pad.Clearance = firstNonZero(pad.LocalClearance, nm(fp.LocalClearance), DefaultClearance)

	// paste: pad, then footprint, then board; margin and ratio resolve separately
	margin := firstNonZero(pad.LocalPasteMargin, nm(fp.SolderPasteMargin), nm(bl.setup.PadToPasteClearance))
	ratio := firstNonZero(pad.LocalPasteRatio, fp.SolderPasteRatio, bl.setup.PadToPasteClearanceRatio)
	pad.PasteMargin = Size{
		W: math.Max(margin+pad.Size.W*ratio, -pad.Size.W/2),
		H: math.Max(margin+pad.Size.H*ratio, -pad.Size.H/2),
	}

	pad.MaskMargin = firstNonZero(pad.LocalMaskMargin, nm(fp.SolderMaskMargin), nm(bl.setup.PadToMaskClearance))
	if minSize := math.Min(pad.Size.W, pad.Size.H); pad.MaskMargin < -minSize/2 {
		pad.MaskMargin = -minSize / 2
	}

	s.Pads = append(s.Pads, pad)
	return idx
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

var drawShapes = map[string]DrawShape{
	"line":    ShapeLine,
	"arc":     ShapeArc,
	"circle":  ShapeCircle,
	"rect":    ShapeRect,
	"polygon": ShapePolygon,
	"curve":   ShapeBezier,
}

func (bl *builder) addDrawing(g *pcb.Graphic, fpIndex int, origin geom.Point, orient float64) {
	s := bl.snap
	kind, ok := drawShapes[g.Type]
	if !ok {
		log.Debug("ignoring drawing", "type", g.Type)
		return
	}

	d := Drawing{
		ID:        EntityID{KindDrawing, len(s.Drawings)},
		Footprint: fpIndex,
		Shape:     kind,
		Layer:     g.Layer,
		Start:     place(g.Start, origin, orient),
		End:       place(g.End, origin, orient),
		Mid:       place(g.Mid, origin, orient),
		Center:    place(g.Center, origin, orient),
		Width:     nm(g.Width),
	}
	for _, p := range g.Points {
		d.Points = append(d.Points, place(p, origin, orient))
	}
	s.Drawings = append(s.Drawings, d)
}

func (bl *builder) addText(t *pcb.Text, fpIndex int, origin geom.Point, fpOrient float64) {
	s := bl.snap
	if t.Hidden {
		log.Debug("skipping hidden text", "text", t.Text)
		return
	}

	pos := place(t.Position.Position, origin, fpOrient)
	draw := tenths(t.Position.Angle)
	local := draw
	if fpIndex >= 0 {
		local = draw - fpOrient
	}

	font := t.Effects.Font
	text := Text{
		ID:           EntityID{KindText, len(s.Texts)},
		Footprint:    fpIndex,
		Text:         t.Text,
		Position:     pos,
		Layer:        t.Layer,
		Mirror:       t.Effects.Justify.Mirror,
		Width:        nm(font.Size.Width),
		Height:       nm(font.Size.Height),
		Thickness:    nm(font.Thickness),
		TextAngle:    local,
		DrawRotation: draw,
	}

	layout := strokefont.Decompose(text.Text, pos, strokefont.Style{
		Width:     text.Width,
		Height:    text.Height,
		Thickness: text.Thickness,
		Mirror:    text.Mirror,
	})
	text.Box = layout.Box
	text.Strokes = shape.RotatedStrokeSegments(layout.Strokes, pos, local)

	s.Texts = append(s.Texts, text)
}

func (bl *builder) addTrack(t *pcb.Track) {
	s := bl.snap
	s.Tracks = append(s.Tracks, Track{
		ID:    EntityID{KindTrack, len(s.Tracks)},
		Start: point(t.Start),
		End:   point(t.End),
		Mid:   point(t.Mid),
		Arc:   t.Type == "arc",
		Width: nm(t.Width),
		Layer: t.Layer,
		Net:   netNumber(t.Net),
	})
}

func (bl *builder) addVia(v *pcb.Via) {
	s := bl.snap
	via := Via{
		ID:       EntityID{KindVia, len(s.Vias)},
		Position: point(v.Position),
		Diameter: nm(v.Size),
		Drill:    nm(v.Drill),
		Type:     ViaThrough,
		Net:      netNumber(v.Net),
	}
	switch v.Type {
	case "blind":
		via.Type = ViaBlindBuried
	case "micro":
		via.Type = ViaMicro
	}
	if len(v.Layers) == 2 {
		via.Layers = s.Layers.Span(v.Layers[0], v.Layers[1])
	} else {
		via.Layers = s.Layers.Expand(v.Layers)
	}
	s.Vias = append(s.Vias, via)
}

func (bl *builder) addZone(z *pcb.Zone) {
	if len(z.Outline) < 3 {
		return
	}
	s := bl.snap
	zone := Zone{
		Net:     netNumber(z.Net),
		Layers:  s.Layers.Expand(z.Layers),
		Outline: make([]geom.Point, len(z.Outline)),
	}
	for i, p := range z.Outline {
		zone.Outline[i] = point(p)
	}
	s.Zones = append(s.Zones, zone)
}
