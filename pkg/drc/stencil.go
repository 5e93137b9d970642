package drc

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/units"
)

// Powder is a solder paste powder type per IPC J-STD-005 with its particle
// size range in micrometres.
type Powder struct {
	Type     int
	Min, Max int
}

// MinAperture is the smallest aperture for the powder: five of its largest
// particles across.
func (p Powder) MinAperture() int { return 5 * p.Max }

// Powders lists types 1 to 8.
var Powders = []Powder{
	{1, 75, 150},
	{2, 45, 75},
	{3, 25, 45},
	{4, 20, 38},
	{5, 10, 25},
	{6, 5, 15},
	{7, 2, 11},
	{8, 2, 8},
}

// Ratios are the stencil figures for one aperture at one thickness.
type Ratios struct {
	Area   float64
	Aspect float64
}

// ApertureRatios computes area ratio L*W / (2(L+W)T) and aspect ratio W/T,
// with W the short side. All lengths share one unit.
func ApertureRatios(w, h, thickness float64) Ratios {
	short, long := min(w, h), max(w, h)
	return Ratios{
		Area:   (long * short) / (2 * (long + short) * thickness),
		Aspect: short / thickness,
	}
}

// aperture is one distinct paste opening size and the pads that share it.
type aperture struct {
	key    sizeKey
	pads   []int
	ratios []Ratios // per thickness
}

func (a *aperture) short() float64 { return float64(min(a.key.W, a.key.H)) }
func (a *aperture) long() float64  { return float64(max(a.key.W, a.key.H)) }

// StencilInfo classifies paste apertures by area and aspect ratio over the
// candidate stencil thicknesses.
type StencilInfo struct{}

func (StencilInfo) Name() string { return "stencil" }

func (StencilInfo) Total(b *board.Snapshot) int { return len(pastePads(b)) }

func pastePads(b *board.Snapshot) []int {
	var out []int
	for i := range b.Pads {
		if b.Pads[i].OnLayer(layerFrontPaste) || b.Pads[i].OnLayer(layerBackPaste) {
			out = append(out, i)
		}
	}
	return out
}

func (StencilInfo) Run(ctx context.Context, env Env) error {
	b := env.Board
	if err := b.RequireLayers(layerFrontPaste); err != nil {
		return err
	}

	thick := env.Rules.StencilThicknessesMil
	minArea, minAspect := env.Rules.MinAreaRatio, env.Rules.MinAspectRatio

	groups := map[sizeKey]*aperture{}
	for n, i := range pastePads(b) {
		k := keyOf(b.Pads[i].PasteAperture())
		a, ok := groups[k]
		if !ok {
			a = &aperture{key: k}
			groups[k] = a
		}
		a.pads = append(a.pads, i)
		env.Sink.Progress(n + 1)
	}
	if Stopped(ctx) {
		return ctx.Err()
	}

	type span struct{ lo, hi float64 }
	areaRange := make([]span, len(thick))
	aspectRange := make([]span, len(thick))
	for t := range thick {
		areaRange[t] = span{math.Inf(1), math.Inf(-1)}
		aspectRange[t] = span{math.Inf(1), math.Inf(-1)}
	}

	failedArea := make([][]*aperture, len(thick))
	failedAspect := make([][]*aperture, len(thick))

	apertures := make([]*aperture, 0, len(groups))
	for _, a := range groups {
		for t, mil := range thick {
			r := ApertureRatios(float64(a.key.W), float64(a.key.H), mil*units.NanometersPerMil)
			a.ratios = append(a.ratios, r)

			areaRange[t].lo = min(areaRange[t].lo, r.Area)
			areaRange[t].hi = max(areaRange[t].hi, r.Area)
			aspectRange[t].lo = min(aspectRange[t].lo, r.Aspect)
			aspectRange[t].hi = max(aspectRange[t].hi, r.Aspect)
		}
		apertures = append(apertures, a)
	}
	slices.SortFunc(apertures, func(x, y *aperture) int {
		if len(thick) > 0 {
			if d := x.ratios[len(thick)-1].Area - y.ratios[len(thick)-1].Area; d != 0 {
				if d < 0 {
					return -1
				}
				return 1
			}
		}
		return lessByArea(x.key, y.key)
	})

	for _, a := range apertures {
		for t := range thick {
			if a.ratios[t].Area < minArea {
				failedArea[t] = append(failedArea[t], a)
			}
			if a.ratios[t].Aspect < minAspect {
				failedAspect[t] = append(failedAspect[t], a)
			}
		}
	}

	env.blank()
	env.printf("***** Pads by Stencil Aperture (Paste Aperture) Ratio *****")
	for _, a := range apertures {
		var line strings.Builder
		fmt.Fprintf(&line, "(qty %d)\tAperture=%.3f,%.3f", len(a.pads), units.MM(a.short()), units.MM(a.long()))
		for t, mil := range thick {
			fmt.Fprintf(&line, " (%.1f %.2f %.2f)", mil, a.ratios[t].Area, a.ratios[t].Aspect)
		}
		env.Sink.Line(line.String())

		names := make([]string, 0, len(a.pads))
		from := map[string]bool{}
		var values []string
		for _, i := range a.pads {
			names = append(names, b.Describe(b.Pads[i].ID))
			if fp := b.FootprintOf(b.Pads[i].Footprint); fp != nil && !from[fp.Value] {
				from[fp.Value] = true
				values = append(values, fp.Value)
			}
		}
		slices.Sort(values)
		env.printf("\tPads: %s", strings.Join(names, ", "))
		env.printf("\tFrom: %s", strings.Join(values, ","))
	}

	env.blank()
	env.printf("***** Aperture Ratio Ranges *****")
	if len(apertures) > 0 {
		for t, mil := range thick {
			env.printf("%.1f mil Aspect: %.3f %.3f\t Area  : %.3f %.3f",
				mil, aspectRange[t].lo, aspectRange[t].hi, areaRange[t].lo, areaRange[t].hi)
		}
	}

	header := false
	for t, mil := range thick {
		if len(failedArea[t]) == 0 && len(failedAspect[t]) == 0 {
			continue
		}
		if !header {
			env.blank()
			env.printf("***** Failed Aperture Test *****")
			header = true
		}
		env.printf("Failed %.1f mil thickness:", mil)
		for _, a := range failedArea[t] {
			env.printf("\tFailed Area  : %.3f %.3f", units.MM(a.long()), units.MM(a.short()))
		}
		for _, a := range failedAspect[t] {
			env.printf("\tFailed Aspect: %.3f %.3f", units.MM(a.long()), units.MM(a.short()))
		}
	}

	// Ratios fall as the stencil thickens; flag what fails even the thinnest.
	if t := thinnest(thick); t >= 0 {
		flagged := 0
		for _, a := range apertures {
			if a.ratios[t].Area < minArea || a.ratios[t].Aspect < minAspect {
				for _, i := range a.pads {
					env.Sink.Flag(b.Pads[i].ID)
					flagged++
				}
			}
		}
		if flagged > 0 {
			env.printf("%d pads fail at %.1f mil. %s", flagged, thick[t], selectedNote)
		}
	}

	env.blank()
	env.printf("***** Max aperture size (μm) by Solder Powder Size *****")
	for _, p := range Powders {
		env.printf("Type %.1f; Range (μm): %d %d; Min Aperture: %d μm (%.3f mil)",
			float64(p.Type), p.Min, p.Max, p.MinAperture(), float64(p.MinAperture())/25.4)
	}

	env.blank()
	env.printf("  ***** DONE *****")
	return nil
}

func thinnest(thick []float64) int {
	best := -1
	for i, t := range thick {
		if best < 0 || t < thick[best] {
			best = i
		}
	}
	return best
}
