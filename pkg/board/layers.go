package board

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/pcb"
)

// ErrLayerNotFound is returned when a check names a layer the board lacks.
var ErrLayerNotFound = errors.New("layer not found")

// LayerKind classifies a layer.
type LayerKind int

const (
	LayerCopper LayerKind = iota
	LayerNonCopper
	LayerUser
)

func (k LayerKind) String() string {
	switch k {
	case LayerCopper:
		return "Copper"
	case LayerUser:
		return "User"
	}
	return "not Copper"
}

// Layer is one board layer.
type Layer struct {
	Number int
	Name   string
	Kind   LayerKind
}

// IsCopper reports whether the layer carries copper.
func (l Layer) IsCopper() bool { return l.Kind == LayerCopper }

// LayerTable is the board's layer stack, ordered by layer number.
type LayerTable struct {
	layers []Layer
	byName map[string]int
}

// NewLayerTable builds a table from layers in any order.
func NewLayerTable(layers []Layer) *LayerTable {
	t := &LayerTable{
		layers: slices.Clone(layers),
		byName: make(map[string]int, len(layers)),
	}
	slices.SortFunc(t.layers, func(a, b Layer) int { return a.Number - b.Number })
	for i, l := range t.layers {
		t.byName[l.Name] = i
	}
	return t
}

// All returns every layer in number order.
func (t *LayerTable) All() []Layer {
	return t.layers
}

// Copper returns the copper layers in stack order.
func (t *LayerTable) Copper() []Layer {
	var out []Layer
	for _, l := range t.layers {
		if l.IsCopper() {
			out = append(out, l)
		}
	}
	return out
}

// Lookup finds a layer by name.
func (t *LayerTable) Lookup(name string) (Layer, error) {
	i, ok := t.byName[name]
	if !ok {
		return Layer{}, fmt.Errorf("%w: %q", ErrLayerNotFound, name)
	}
	return t.layers[i], nil
}

// Has reports whether the board defines name.
func (t *LayerTable) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Expand resolves KiCad layer patterns ("*.Cu", "F&B.Cu", "*.Mask") into
// concrete layer names defined on the board. Plain names pass through.
func (t *LayerTable) Expand(patterns []string) LayerSet {
	var out LayerSet
	add := func(name string) {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	for _, p := range patterns {
		switch {
		case strings.HasPrefix(p, "*."):
			suffix := p[1:]
			for _, l := range t.layers {
				if strings.HasSuffix(l.Name, suffix) {
					add(l.Name)
				}
			}
		case strings.HasPrefix(p, "F&B."):
			add("F." + p[4:])
			add("B." + p[4:])
		default:
			add(p)
		}
	}
	return out
}

// Span returns every copper layer between two copper layers inclusive,
// as a via drilled from one to the other passes through them.
func (t *LayerTable) Span(from, to string) LayerSet {
	a, errA := t.Lookup(from)
	b, errB := t.Lookup(to)
	if errA != nil || errB != nil {
		return LayerSet{from, to}
	}
	lo, hi := min(a.Number, b.Number), max(a.Number, b.Number)
	var out LayerSet
	for _, l := range t.Copper() {
		if l.Number >= lo && l.Number <= hi {
			out = append(out, l.Name)
		}
	}
	return out
}

// LayerSet is a resolved list of layer names.
type LayerSet []string

// Has reports layer membership.
func (s LayerSet) Has(name string) bool {
	return slices.Contains(s, name)
}

func (s LayerSet) String() string {
	return strings.Join(s, ",")
}

func classifyLayer(l pcb.Layer) LayerKind {
	switch {
	case l.IsCopper():
		return LayerCopper
	case strings.HasSuffix(l.Name, ".User"), strings.HasPrefix(l.Name, "User."):
		return LayerUser
	}
	return LayerNonCopper
}
