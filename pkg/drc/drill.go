package drc

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/units"
)

// DrillInfo reports hole statistics and runs the hole clearance checks:
// hole to board edge, hole to hole per layer and via to track.
type DrillInfo struct{}

func (DrillInfo) Name() string { return "drill" }

// Total counts two passes over the distinct pad drill sizes and two over
// the vias.
func (DrillInfo) Total(b *board.Snapshot) int {
	return 2*len(padHoleSizes(b)) + 2*len(b.Vias)
}

// padHoleSizes groups every pad by drill size, undrilled pads included.
func padHoleSizes(b *board.Snapshot) map[sizeKey][]int {
	out := map[sizeKey][]int{}
	for i := range b.Pads {
		k := keyOf(b.Pads[i].Drill)
		out[k] = append(out[k], i)
	}
	return out
}

type holeLayer struct {
	layer board.Layer
	holes []hole
}

func holesByLayer(b *board.Snapshot, holes []hole) []holeLayer {
	var out []holeLayer
	for _, l := range b.Layers.All() {
		var on []hole
		for _, h := range holes {
			if h.layers.Has(l.Name) {
				on = append(on, h)
			}
		}
		if len(on) > 0 {
			out = append(out, holeLayer{layer: l, holes: on})
		}
	}
	return out
}

// HoleSeparation is the rim-to-rim distance between two holes, each taken
// as a circle of its larger drill dimension.
func HoleSeparation(a, b geom.Point, extentA, extentB float64) float64 {
	return geom.Distance(a, b) - (extentA+extentB)/2
}

func (DrillInfo) Run(ctx context.Context, env Env) error {
	b := env.Board
	if err := b.RequireLayers(layerEdgeCuts); err != nil {
		return err
	}
	set, err := env.drillSet()
	if err != nil {
		return err
	}
	cfg := env.Rules

	holes := collectHoles(b)
	layers := holesByLayer(b, holes)

	env.blank()
	env.blank()
	env.printf("***** Quantity of holes by layer and size *****")
	names := make([]string, len(layers))
	for i, hl := range layers {
		names[i] = hl.layer.Name
	}
	env.printf("Layers: %s", strings.Join(names, ", "))

	env.printf("Testing holes near edge (only straight line edge cuts are checked!)")
	if checkEdges(env, holes) > 0 {
		env.printf(selectedNote)
	}

	for _, hl := range layers {
		env.printf("Layer %s (%s):", hl.layer.Name, hl.layer.Kind)
		bySize := map[sizeKey]int{}
		for _, h := range hl.holes {
			bySize[keyOf(h.size)]++
		}
		for _, k := range sortedKeys(bySize) {
			env.printf("Size %.3f,%.3f; Quantity %d", units.MM(float64(k.W)), units.MM(float64(k.H)), bySize[k])
		}
	}

	env.blank()
	env.blank()
	env.printf("***** Check hole separation by layer *****")
	for _, hl := range layers {
		if Stopped(ctx) {
			return ctx.Err()
		}
		var details []string
		for i := 0; i < len(hl.holes); i++ {
			hi := hl.holes[i]
			for j := i + 1; j < len(hl.holes); j++ {
				hj := hl.holes[j]
				gap := HoleSeparation(hi.pos, hj.pos, hi.extent(), hj.extent())
				if gap <= cfg.ViaToVia {
					env.Sink.Flag(hi.id)
					env.Sink.Flag(hj.id)
					details = append(details, fmt.Sprintf("\t%s at %s and %s at %s are %.3f mm apart",
						b.Describe(hi.id), pos(hi.pos), b.Describe(hj.id), pos(hj.pos), units.MM(gap)))
				}
			}
		}
		env.printf("Layer %s => %d errors:", hl.layer.Name, len(details))
		for _, d := range details {
			env.Sink.Line(d)
		}
		if len(details) > 0 {
			env.printf(selectedNote)
		}
	}

	count := 0
	tick := func() {
		count++
		env.Sink.Progress(count)
	}
	env.Sink.Progress(0)

	padHoles := padHoleSizes(b)
	sizes := sortedKeys(padHoles)

	env.blank()
	env.blank()
	env.printf("***** Quantity of Pads By Specified Drill Size, ordered by area *****")
	for _, k := range sizes {
		tick()
		if k.W == 0 && k.H == 0 {
			continue
		}
		env.printf("Size: %.3fmm, Quantity %d", units.MM(float64(k.W)), len(padHoles[k]))
	}

	env.blank()
	env.blank()
	env.printf("***** Quantity of Pads By Standard Drill Size, ordered by area *****")
	env.printf("%s from:", set.Name)
	env.printf("%s", set.Source)
	env.blank()
	for _, k := range sizes {
		tick()
		if k.W == 0 && k.H == 0 {
			continue
		}
		size := float64(k.W)
		d, ok := set.Closest(size)
		if !ok {
			env.printf("Size: %.3fmm (%.1f mils) is larger than every drill in the set, Quantity %d",
				units.MM(size), units.Mils(size), len(padHoles[k]))
			continue
		}
		if d.Nanometers < cfg.DrillMin || d.Nanometers > cfg.DrillMax {
			env.printf("Drill exceeds limits (%.3f mm<-> %.3f mm):", units.MM(cfg.DrillMin), units.MM(cfg.DrillMax))
		}
		env.printf(`Size: %.3fmm (%.1f mils), Drill "%s": %.3fmm  (%.1f mils), Quantity %d`,
			units.MM(size), units.Mils(size), d.Name, units.MM(d.Nanometers), units.Mils(d.Nanometers), len(padHoles[k]))
	}

	env.blank()
	env.blank()
	env.printf("***** Via Holes List (pad #, position (nm), Type, Drill, Drill Value, Via Width) *****")
	for i := range b.Vias {
		tick()
		v := &b.Vias[i]
		env.printf("%d (Type %d) Pos=%.3f mm, %.3f mm; Drill=%.3f mm; DrillValue=%.3f mm; Pad Width=%.3f mm",
			i, v.Type, units.MM(v.Position.X), units.MM(v.Position.Y),
			units.MM(v.Drill), units.MM(v.Drill), units.MM(v.Diameter))
	}

	forward := ForwardViaDistances(b.Vias)
	env.blank()
	env.blank()
	env.printf("***** Distance to next closest via  ***** (looking only *forward* through the list)")
	env.printf("Minimum Via to Via = %.3f mils (%.3f mm)", units.Mils(cfg.ViaToVia), units.MM(cfg.ViaToVia))
	env.blank()
	var tooClose []int
	for i, d := range forward {
		env.printf("%d %.3f mm", i, units.MM(d))
		if d < cfg.ViaToVia {
			tooClose = append(tooClose, i)
		}
	}
	if len(tooClose) > 0 {
		env.blank()
		env.blank()
		env.printf("***** Vias too close to another via *****")
		for _, i := range tooClose {
			env.printf("%d", i)
		}
	}

	if Stopped(ctx) {
		return ctx.Err()
	}
	failures := checkViaTracks(env, tick)
	if len(failures) > 0 {
		env.blank()
		env.blank()
		env.printf("***** Vias too close to track *****")
		for _, f := range failures {
			env.printf("%d %s", f.via, f.message)
		}
		env.printf(selectedNote)
	}

	env.blank()
	env.printf("  ***** DONE *****")
	return nil
}

// ForwardViaDistances returns, for each via, the smallest rim-to-rim
// distance to any via after it in list order. The last via, and any via
// with nothing after it, keeps 1e9.
func ForwardViaDistances(vias []board.Via) []float64 {
	out := make([]float64, len(vias))
	for i := range vias {
		out[i] = 1e9
		for j := i + 1; j < len(vias); j++ {
			d := geom.Distance(vias[i].Position, vias[j].Position) - vias[i].Drill/2 - vias[j].Drill/2
			out[i] = math.Min(out[i], d)
		}
	}
	return out
}
