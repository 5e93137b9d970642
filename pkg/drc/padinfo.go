package drc

import (
	"context"
	"slices"
	"strings"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/units"
)

// PadInfo lists every pad with its geometry and margins, then a size
// histogram.
type PadInfo struct{}

func (PadInfo) Name() string { return "pad" }

func (PadInfo) Total(b *board.Snapshot) int { return len(b.Pads) }

func (PadInfo) Run(ctx context.Context, env Env) error {
	b := env.Board

	env.printf("Number of pads: %d", len(b.Pads))
	env.blank()
	env.printf("  ***** Pads By Footprint Reference, Alphabetical *****")

	order := make([]int, len(b.Pads))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		if c := strings.Compare(reference(b, i), reference(b, j)); c != 0 {
			return c
		}
		return strings.Compare(b.Pads[i].Name, b.Pads[j].Name)
	})

	for n, i := range order {
		if Stopped(ctx) {
			return ctx.Err()
		}
		p := &b.Pads[i]
		env.printf("#%5d\t(%s.%s) X=%g Y=%g P=%s (%g, %g) D=%s (%g, %g) Layers=%s lc=%.4f c=%.4f",
			i, reference(b, i), p.Name,
			units.MM(p.Position.X), units.MM(p.Position.Y),
			p.Shape, units.MM(p.Size.W), units.MM(p.Size.H),
			p.DrillShape, units.MM(p.Drill.W), units.MM(p.Drill.H),
			strings.Join(p.Layers, ","),
			units.MM(p.LocalClearance), units.MM(p.Clearance))
		env.printf("\tPaste: spm=%.4f,%.4f lspm=%.4f lspmr=%.4f | Mask : smm=%.4f lsmm=%.4f",
			units.MM(p.PasteMargin.W), units.MM(p.PasteMargin.H),
			units.MM(p.LocalPasteMargin), p.LocalPasteRatio,
			units.MM(p.MaskMargin), units.MM(p.LocalMaskMargin))
		env.Sink.Progress(n + 1)
	}

	env.blank()
	env.printf("***** Quantity of Pads By Size, ordered by Area *****")
	bySize := map[sizeKey]int{}
	for i := range b.Pads {
		bySize[keyOf(b.Pads[i].Size)]++
	}
	for _, k := range sortedKeys(bySize) {
		env.printf("Size: %.3f %.3f, Quantity %d", units.MM(float64(k.W)), units.MM(float64(k.H)), bySize[k])
	}

	env.blank()
	env.printf("  ***** DONE *****")
	return nil
}

func reference(b *board.Snapshot, pad int) string {
	if fp := b.FootprintOf(b.Pads[pad].Footprint); fp != nil {
		return fp.Reference
	}
	return ""
}

func sortedKeys[V any](m map[sizeKey]V) []sizeKey {
	keys := make([]sizeKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, lessByArea)
	return keys
}
