// Package board is the read-only view of a loaded PCB that every check
// consumes. Lengths are nanometres and orientations tenths of a degree,
// clockwise in the board's y-down frame. Entities are plain records;
// the only mutable state is the Flags set owned by the caller.
package board

import (
	"fmt"

	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/shape"
)

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Area returns W·H.
func (s Size) Area() float64 { return s.W * s.H }

// Max returns the larger dimension.
func (s Size) Max() float64 { return max(s.W, s.H) }

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool { return s.W == 0 && s.H == 0 }

// PadShape is a pad outline kind.
type PadShape int

const (
	PadCircle PadShape = iota
	PadOval
	PadRect
	PadTrapezoid
	PadRoundRect
	PadCustom
)

// String returns the four-letter code used in reports.
func (s PadShape) String() string {
	switch s {
	case PadCircle:
		return "CIRC"
	case PadOval:
		return "OVAL"
	case PadRect:
		return "RECT"
	case PadTrapezoid:
		return "TPZD"
	case PadRoundRect:
		return "RREC"
	}
	return "CUST"
}

// DrillShape is a hole outline kind.
type DrillShape int

const (
	DrillCircle DrillShape = iota
	DrillOblong
)

func (s DrillShape) String() string {
	if s == DrillOblong {
		return "OBLG"
	}
	return "CIRC"
}

// PadAttribute is the pad's mounting kind.
type PadAttribute string

const (
	PadSMD         PadAttribute = "smd"
	PadThroughHole PadAttribute = "thru_hole"
	PadConnector   PadAttribute = "connect"
	PadNPTH        PadAttribute = "np_thru_hole"
)

// Pad is a footprint pad in board coordinates.
type Pad struct {
	ID          EntityID
	Footprint   int // index into Snapshot.Footprints
	Name        string
	Position    geom.Point
	Orientation float64
	Size        Size
	Shape       PadShape
	Attribute   PadAttribute
	Drill       Size
	DrillShape  DrillShape
	Layers      LayerSet
	Net         int

	LocalClearance float64
	Clearance      float64

	LocalPasteMargin float64
	LocalPasteRatio  float64
	PasteMargin      Size // effective per-side paste expansion

	LocalMaskMargin float64
	MaskMargin      float64 // effective per-side mask expansion
}

// OnLayer reports layer membership.
func (p *Pad) OnLayer(name string) bool { return p.Layers.Has(name) }

// HasHole reports whether the pad is drilled.
func (p *Pad) HasHole() bool { return !p.Drill.IsZero() }

// Polygon returns the pad's rotated bounding rectangle.
func (p *Pad) Polygon() geom.Polygon {
	return shape.RotatedRectangleCorners(shape.CenteredRect(p.Position, p.Size.W, p.Size.H), p.Position, p.Orientation)
}

// PasteAperture is the stencil opening used for ratio grouping: the pad size
// plus the paste margin, counted once per axis.
func (p *Pad) PasteAperture() Size {
	return Size{W: p.Size.W + p.PasteMargin.W, H: p.Size.H + p.PasteMargin.H}
}

// ViaType follows KiCad's numbering.
type ViaType int

const (
	ViaMicro       ViaType = 1
	ViaBlindBuried ViaType = 2
	ViaThrough     ViaType = 3
)

// Via is a plated hole between copper layers.
type Via struct {
	ID       EntityID
	Position geom.Point
	Diameter float64
	Drill    float64
	Type     ViaType
	Layers   LayerSet
	Net      int
}

// OnLayer reports layer membership.
func (v *Via) OnLayer(name string) bool { return v.Layers.Has(name) }

// Track is a copper track. Arcs carry their midpoint and are treated as
// two chords.
type Track struct {
	ID    EntityID
	Start geom.Point
	End   geom.Point
	Mid   geom.Point
	Arc   bool
	Width float64
	Layer string
	Net   int
}

// Segments returns the track's centre line.
func (t *Track) Segments() []geom.Segment {
	if t.Arc {
		return []geom.Segment{geom.Seg(t.Start, t.Mid), geom.Seg(t.Mid, t.End)}
	}
	return []geom.Segment{geom.Seg(t.Start, t.End)}
}

// Text is a silkscreen or documentation text item.
type Text struct {
	ID        EntityID
	Footprint int // -1 for board text
	Text      string
	Position  geom.Point
	Layer     string
	Mirror    bool

	Width     float64 // character width
	Height    float64 // character height
	Thickness float64 // stroke width

	// TextAngle is the text's own rotation; for footprint text it is
	// relative to the footprint. DrawRotation is the absolute rotation.
	TextAngle    float64
	DrawRotation float64

	// Box is the unrotated text extent; Strokes are flat (start, end)
	// pairs already rotated by TextAngle about Position.
	Box     shape.Rect
	Strokes []geom.Point
}

// Polygon returns the rotated text bounding box.
func (t *Text) Polygon() geom.Polygon {
	return shape.RotatedRectangleCorners(t.Box, t.Position, t.DrawRotation)
}

// StrokePoints returns the stroke pairs in final board position.
func (t *Text) StrokePoints() []geom.Point {
	return shape.RotatedStrokeSegments(t.Strokes, t.Position, shape.FootprintTextOrientation(t.DrawRotation, t.TextAngle))
}

// DrawShape names a drawing primitive the way KiCad reports it.
type DrawShape string

const (
	ShapeLine    DrawShape = "Line"
	ShapeArc     DrawShape = "Arc"
	ShapeCircle  DrawShape = "Circle"
	ShapeRect    DrawShape = "Rect"
	ShapePolygon DrawShape = "Polygon"
	ShapeBezier  DrawShape = "Bezier"
)

// Drawing is a graphic primitive on any layer.
type Drawing struct {
	ID        EntityID
	Footprint int // -1 for board drawings
	Shape     DrawShape
	Layer     string
	Start     geom.Point
	End       geom.Point
	Mid       geom.Point
	Center    geom.Point
	Points    []geom.Point
	Width     float64
}

// Segment returns the line as a segment. Only meaningful for ShapeLine.
func (d *Drawing) Segment() geom.Segment {
	return geom.Seg(d.Start, d.End)
}

// Anchor is the position reported for the drawing.
func (d *Drawing) Anchor() geom.Point {
	switch d.Shape {
	case ShapeCircle:
		return d.Center
	case ShapePolygon, ShapeBezier:
		if len(d.Points) > 0 {
			return d.Points[0]
		}
	}
	return d.Start
}

// Footprint is a placed component.
type Footprint struct {
	ID          EntityID
	Reference   string
	Value       string
	Library     string
	Name        string
	Position    geom.Point
	Orientation float64
	Layer       string
	Pads        []int
}

// Snapshot is an immutable view of one board.
type Snapshot struct {
	Source     string
	Layers     *LayerTable
	Nets       map[int]string
	Pads       []Pad
	Vias       []Via
	Tracks     []Track
	Texts      []Text
	Drawings   []Drawing
	Footprints []Footprint
	Zones      []Zone
}

// Zone is a filled area's outline. Checks do not test zones; they are kept
// for the preview.
type Zone struct {
	Net     int
	Layers  LayerSet
	Outline []geom.Point
}

// Layer looks up a layer by name.
func (s *Snapshot) Layer(name string) (Layer, error) {
	return s.Layers.Lookup(name)
}

// RequireLayers fails with ErrLayerNotFound for the first missing name.
func (s *Snapshot) RequireLayers(names ...string) error {
	for _, n := range names {
		if _, err := s.Layers.Lookup(n); err != nil {
			return err
		}
	}
	return nil
}

// PadsOn returns indexes of pads on layer.
func (s *Snapshot) PadsOn(layer string) []int {
	var out []int
	for i := range s.Pads {
		if s.Pads[i].OnLayer(layer) {
			out = append(out, i)
		}
	}
	return out
}

// TextsOn returns indexes of texts on layer.
func (s *Snapshot) TextsOn(layer string) []int {
	var out []int
	for i := range s.Texts {
		if s.Texts[i].Layer == layer {
			out = append(out, i)
		}
	}
	return out
}

// DrawingsOn returns indexes of drawings on layer.
func (s *Snapshot) DrawingsOn(layer string) []int {
	var out []int
	for i := range s.Drawings {
		if s.Drawings[i].Layer == layer {
			out = append(out, i)
		}
	}
	return out
}

// FootprintOf returns the footprint owning a pad or text, or nil.
func (s *Snapshot) FootprintOf(index int) *Footprint {
	if index < 0 || index >= len(s.Footprints) {
		return nil
	}
	return &s.Footprints[index]
}

// NetName returns the name of net n.
func (s *Snapshot) NetName(n int) string {
	return s.Nets[n]
}

// Position returns the reference point of an entity.
func (s *Snapshot) Position(id EntityID) geom.Point {
	switch id.Kind {
	case KindPad:
		return s.Pads[id.Index].Position
	case KindVia:
		return s.Vias[id.Index].Position
	case KindTrack:
		return s.Tracks[id.Index].Start
	case KindText:
		return s.Texts[id.Index].Position
	case KindDrawing:
		return s.Drawings[id.Index].Anchor()
	case KindFootprint:
		return s.Footprints[id.Index].Position
	}
	return geom.Point{}
}

// Describe returns a short human label for an entity.
func (s *Snapshot) Describe(id EntityID) string {
	switch id.Kind {
	case KindPad:
		p := &s.Pads[id.Index]
		if fp := s.FootprintOf(p.Footprint); fp != nil {
			return fmt.Sprintf("%s pad %s", fp.Reference, p.Name)
		}
		return "pad " + p.Name
	case KindText:
		return fmt.Sprintf("text %q", s.Texts[id.Index].Text)
	case KindDrawing:
		return fmt.Sprintf("%s on %s", s.Drawings[id.Index].Shape, s.Drawings[id.Index].Layer)
	case KindFootprint:
		return s.Footprints[id.Index].Reference
	}
	return id.String()
}

// Bounds returns the extent of pads, vias, tracks, drawings and zones.
func (s *Snapshot) Bounds() geom.Box {
	b := geom.EmptyBox()
	for i := range s.Pads {
		b.ExpandBox(geom.BoxOf(s.Pads[i].Polygon()...))
	}
	for i := range s.Vias {
		v := &s.Vias[i]
		b.ExpandBox(geom.BoxOf(v.Position).Inflate(v.Diameter / 2))
	}
	for i := range s.Tracks {
		b.Expand(s.Tracks[i].Start)
		b.Expand(s.Tracks[i].End)
	}
	for i := range s.Drawings {
		d := &s.Drawings[i]
		switch d.Shape {
		case ShapeCircle:
			b.ExpandBox(geom.BoxOf(d.Center).Inflate(geom.Distance(d.Center, d.End)))
		case ShapePolygon, ShapeBezier:
			b.ExpandBox(geom.BoxOf(d.Points...))
		default:
			b.Expand(d.Start)
			b.Expand(d.End)
		}
	}
	for i := range s.Zones {
		b.ExpandBox(geom.BoxOf(s.Zones[i].Outline...))
	}
	return b
}
