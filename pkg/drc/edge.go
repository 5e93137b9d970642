package drc

import (
	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

// hole is a drilled pad or via.
type hole struct {
	id     board.EntityID
	pos    geom.Point
	size   board.Size
	layers board.LayerSet
}

// extent approximates the hole by its larger drill dimension.
func (h hole) extent() float64 { return h.size.Max() }

func collectHoles(b *board.Snapshot) []hole {
	var out []hole
	for i := range b.Pads {
		p := &b.Pads[i]
		if p.Drill.W == 0 || p.Drill.H == 0 {
			continue
		}
		out = append(out, hole{id: p.ID, pos: p.Position, size: p.Drill, layers: p.Layers})
	}
	for i := range b.Vias {
		v := &b.Vias[i]
		if v.Drill == 0 {
			continue
		}
		out = append(out, hole{id: v.ID, pos: v.Position, size: board.Size{W: v.Drill, H: v.Drill}, layers: v.Layers})
	}
	return out
}

// EdgeClearance is the distance from a hole's rim to an outline segment.
// Negative values mean the hole crosses the edge.
func EdgeClearance(center geom.Point, drill float64, edge geom.Segment) float64 {
	return geom.MinDistancePointSegment(center, edge.A, edge.B) - drill/2
}

// checkEdges tests every hole against the straight board outline segments
// and returns the failure count.
func checkEdges(env Env, holes []hole) int {
	b := env.Board
	limit := env.Rules.DrillToEdge

	failed := 0
	for _, i := range b.DrawingsOn(layerEdgeCuts) {
		d := &b.Drawings[i]
		if d.Shape != board.ShapeLine {
			env.printf("Shape '%s' at %s not checked.", d.Shape, pos(d.Anchor()))
			continue
		}
		for _, h := range holes {
			if EdgeClearance(h.pos, h.extent(), d.Segment()) < limit {
				env.printf("Hole at %s too close to edge", pos(h.pos))
				env.Sink.Flag(h.id)
				env.Sink.Flag(d.ID)
				failed++
			}
		}
	}
	return failed
}
