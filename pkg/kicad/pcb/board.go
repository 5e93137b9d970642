package pcb

// Board represents a complete KiCad PCB. Lengths are millimetres and
// angles degrees, as written in the file.
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	General    General     // General board properties
	Layers     []Layer     // Layer definitions
	Setup      Setup       // Board setup and configuration
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
	Graphics   []Graphic   // Board-level drawings (gr_*)
	Texts      []Text      // Board-level text (gr_text)
	Tracks     []Track     // Track segments and arcs
	Vias       []Via       // Vias
	Zones      []Zone      // Zone outlines
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string  // Board title
	Date      string  // Design date
	Revision  string  // Board revision
	Company   string  // Company name
}

// Setup holds the board-wide mask and paste defaults.
type Setup struct {
	PadToMaskClearance       float64 // per-side solder mask expansion
	PadToPasteClearance      float64 // per-side solder paste expansion, usually negative
	PadToPasteClearanceRatio float64 // paste expansion as a fraction of pad size
	SolderMaskMinWidth       float64
}

// Footprint represents a component footprint
type Footprint struct {
	Library   string        // Library name
	Name      string        // Footprint name
	Layer     string        // Layer (F.Cu or B.Cu typically)
	Position  PositionAngle // Position and rotation
	Reference string        // Reference designator (e.g., "R1")
	Value     string        // Component value
	Attribute string        // smd, through_hole or empty

	// Local overrides; zero means inherit from the board.
	LocalClearance    float64
	SolderMaskMargin  float64
	SolderPasteMargin float64
	SolderPasteRatio  float64

	Pads     []Pad     // Pads
	Graphics []Graphic // fp_* drawings, footprint-local coordinates
	Texts    []Text    // fp_text and visible properties, footprint-local coordinates
}

// Pad represents a footprint pad. Position is footprint-local; its angle
// is the absolute pad orientation as KiCad writes it.
type Pad struct {
	Number     string        // Pad number/name
	Type       string        // thru_hole, smd, connect, np_thru_hole
	Shape      string        // circle, rect, oval, roundrect, trapezoid, custom
	Position   PositionAngle // Position and rotation
	Size       Size          // Pad size
	Drill      Size          // Drill size, zero for SMD
	DrillShape string        // circle or oval
	Layers     LayerSet      // Layers the pad appears on
	Net        *Net          // Connected net (if any)

	RoundRectRatio float64
	RectDelta      Size // trapezoid deltas

	// Local overrides; zero means inherit from the footprint.
	LocalClearance    float64
	SolderMaskMargin  float64
	SolderPasteMargin float64
	SolderPasteRatio  float64
}

// Graphic is a drawing primitive from gr_* or fp_* nodes.
type Graphic struct {
	Type   string     // line, arc, circle, rect, polygon, curve
	Layer  string     // Layer name
	Start  Position   // Start point (line, arc, rect)
	Mid    Position   // Point on the arc
	End    Position   // End point; for circles a point on the circumference
	Center Position   // Circle centre
	Points []Position // Polygon vertices
	Width  float64    // Stroke width
	Filled bool
}

// Text is a gr_text, fp_text or visible footprint property.
type Text struct {
	Kind     string // reference, value, user, or gr_text
	Text     string
	Position PositionAngle
	Layer    string
	Effects  Effects
	Hidden   bool
}

// Track represents a copper track segment or arc.
type Track struct {
	Type  string   // segment or arc
	Start Position // Start point
	Mid   Position // Arc midpoint
	End   Position // End point
	Width float64  // Track width in mm
	Layer string   // Layer name
	Net   *Net     // Connected net
}

// Via represents a via
type Via struct {
	Type     string   // through, blind or micro
	Position Position // Via position
	Size     float64  // Via diameter
	Drill    float64  // Drill diameter
	Layers   LayerSet // Layer pair
	Net      *Net     // Connected net
}

// Zone is a copper or keepout zone outline.
type Zone struct {
	Net     *Net
	Layers  LayerSet
	Outline []Position
}

// PadCount returns the number of pads across all footprints.
func (b *Board) PadCount() int {
	n := 0
	for i := range b.Footprints {
		n += len(b.Footprints[i].Pads)
	}
	return n
}
