// Package sexp holds the value types and node accessors shared by the
// board and design-rule readers.
package sexp

import "math"

// Unit conversion. KiCad 6+ files store lengths in millimetres and angles
// in degrees; the board snapshot works in nanometres and tenths of a degree.
const (
	NanometersToMM       = 1e-6
	MMToNanometers       = 1e6
	DecidegreesToDegrees = 0.1
	DegreesToDecidegrees = 10.0
)

// MMToNM converts millimetres to whole nanometres.
func MMToNM(mm float64) float64 {
	return math.Round(mm * MMToNanometers)
}

// Position is a file coordinate in millimetres.
type Position struct {
	X float64
	Y float64
}

// Angle is a rotation in degrees as written in the file.
type Angle float64

// Decidegrees converts to tenths of a degree.
func (a Angle) Decidegrees() float64 {
	return float64(a) * DegreesToDecidegrees
}

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// Size represents dimensions in millimetres.
type Size struct {
	Width  float64
	Height float64
}

// Stroke defines line appearance.
type Stroke struct {
	Width float64 // mm
	Type  string  // solid, dash, dot, ...
}

// Effects represents text effects.
type Effects struct {
	Font    Font
	Justify Justify
	Hide    bool
}

// Font represents stroke font properties.
type Font struct {
	Size      Size
	Thickness float64
	Bold      bool
	Italic    bool
}

// Justify represents text justification.
type Justify struct {
	Horizontal string // left, center, right
	Vertical   string // top, center, bottom
	Mirror     bool
}
