package pcb

import (
	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp"
)

// Shared value types (aliases to sexp package)
type Position = sexp.Position
type Angle = sexp.Angle
type PositionAngle = sexp.PositionAngle
type Size = sexp.Size
type Stroke = sexp.Stroke
type Effects = sexp.Effects

// Layer represents a PCB layer
type Layer struct {
	Number   int    // Layer number (ordinal)
	Name     string // Layer name (e.g., "F.Cu", "B.Cu", "F.SilkS")
	Type     string // Layer type (e.g., "signal", "user")
	UserName string // Optional user-visible name
}

// IsCopper reports whether the layer carries copper.
func (l Layer) IsCopper() bool {
	switch l.Type {
	case "signal", "power", "mixed", "jumper":
		return true
	}
	return false
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// LayerSet represents a set of layer names, possibly with wildcards such
// as "*.Cu" or "F&B.Cu".
type LayerSet []string

// NetMap provides efficient lookup of nets by number
type NetMap struct {
	byNumber map[int]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{byNumber: make(map[int]*Net)}
	for i := range nets {
		nm.byNumber[nets[i].Number] = &nets[i]
	}
	return nm
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}
