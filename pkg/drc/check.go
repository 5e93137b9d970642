// Package drc runs the pad, stencil, drill and silkscreen checks over a
// board snapshot. Failures are report lines and entity flags; only missing
// inputs and cancellation are returned as errors.
package drc

import (
	"context"
	"fmt"
	"math"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/drilltable"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/report"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

// Env is everything a check reads and writes.
type Env struct {
	Board  *board.Snapshot
	Rules  rules.Config
	Drills []drilltable.Set
	Sink   report.Sink
}

// Check is one batch sweep.
type Check interface {
	Name() string
	// Total is the number of progress units Run will report.
	Total(b *board.Snapshot) int
	Run(ctx context.Context, env Env) error
}

// Stopped reports whether the check should give up at the next sweep
// boundary.
func Stopped(ctx context.Context) bool {
	return ctx.Err() != nil
}

const (
	layerFrontCopper = "F.Cu"
	layerBackCopper  = "B.Cu"
	layerFrontSilk   = "F.SilkS"
	layerBackSilk    = "B.SilkS"
	layerFrontPaste  = "F.Paste"
	layerBackPaste   = "B.Paste"
	layerEdgeCuts    = "Edge.Cuts"
)

const selectedNote = "Objects failing check have been selected."

// Lookup returns a check by name: pad, stencil, drill, silk or all.
func Lookup(name string) (Check, error) {
	switch name {
	case "pad":
		return PadInfo{}, nil
	case "stencil":
		return StencilInfo{}, nil
	case "drill":
		return DrillInfo{}, nil
	case "silk":
		return SilkInfo{}, nil
	case "all", "check":
		return All(), nil
	}
	return nil, fmt.Errorf("unknown check %q", name)
}

// Sequence runs checks one after the other against a shared progress total.
type Sequence []Check

// All returns every check in report order.
func All() Sequence {
	return Sequence{PadInfo{}, StencilInfo{}, DrillInfo{}, SilkInfo{}}
}

func (s Sequence) Name() string { return "all" }

func (s Sequence) Total(b *board.Snapshot) int {
	n := 0
	for _, c := range s {
		n += c.Total(b)
	}
	return n
}

// Run reports a failing check as an error line and moves on to the next one.
// Only cancellation ends the sequence early.
func (s Sequence) Run(ctx context.Context, env Env) error {
	offset := 0
	sink := env.Sink
	for _, c := range s {
		if Stopped(ctx) {
			return ctx.Err()
		}
		env.Sink = report.Offset{Sink: sink, By: offset}
		if err := c.Run(ctx, env); err != nil {
			if Stopped(ctx) {
				return ctx.Err()
			}
			report.Printf(sink, "Error: %s: %v", c.Name(), err)
		}
		offset += c.Total(env.Board)
		sink.Progress(offset)
	}
	return nil
}

func (env Env) printf(format string, args ...any) {
	report.Printf(env.Sink, format, args...)
}

func (env Env) blank() {
	env.Sink.Line("")
}

func (env Env) drillSet() (drilltable.Set, error) {
	if len(env.Drills) == 0 {
		return env.Rules.Drills()
	}
	if env.Rules.DrillSet < 0 || env.Rules.DrillSet >= len(env.Drills) {
		return drilltable.Set{}, fmt.Errorf("drill set %d out of range (0-%d)", env.Rules.DrillSet, len(env.Drills)-1)
	}
	return env.Drills[env.Rules.DrillSet], nil
}

// pos renders a board position in nanometres.
func pos(p geom.Point) string {
	return fmt.Sprintf("(%d, %d)", int64(math.Round(p.X)), int64(math.Round(p.Y)))
}

// sizeKey groups sizes that agree to the nanometre.
type sizeKey struct {
	W, H int64
}

func keyOf(s board.Size) sizeKey {
	return sizeKey{W: int64(math.Round(s.W)), H: int64(math.Round(s.H))}
}

func (k sizeKey) area() int64 { return k.W * k.H }

func lessByArea(a, b sizeKey) int {
	if d := a.area() - b.area(); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}
	if a.W != b.W {
		if a.W < b.W {
			return -1
		}
		return 1
	}
	switch {
	case a.H < b.H:
		return -1
	case a.H > b.H:
		return 1
	}
	return 0
}
