package drc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

func TestApertureRatios(t *testing.T) {
	r := ApertureRatios(0.445*mmNM, 0.225*mmNM, 5*25400)
	assert.InDelta(t, 0.588, r.Area, 0.001)
	assert.InDelta(t, 1.772, r.Aspect, 0.001)
	assert.Less(t, r.Area, 0.66)

	// orientation of the aperture does not matter
	assert.Equal(t, r, ApertureRatios(0.225*mmNM, 0.445*mmNM, 5*25400))
}

func TestStencilInfo(t *testing.T) {
	b := newBoard()
	u1 := addFootprint(b, "U1", "TSSOP-8")
	c1 := addFootprint(b, "C1", "0402")
	addPad(b, u1, "1", geom.Pt(0, 0), 0.445*mmNM, 0.225*mmNM, "F.Cu", "F.Paste")
	addPad(b, u1, "2", geom.Pt(0, 1*mmNM), 0.445*mmNM, 0.225*mmNM, "F.Cu", "F.Paste")
	big := addPad(b, c1, "1", geom.Pt(5*mmNM, 0), 1.5*mmNM, 1.5*mmNM, "F.Cu", "F.Paste").ID
	tiny := addPad(b, c1, "2", geom.Pt(7*mmNM, 0), 0.1*mmNM, 0.1*mmNM, "F.Cu", "F.Paste").ID
	addPad(b, -1, "NP", geom.Pt(9*mmNM, 0), 1*mmNM, 1*mmNM, "F.Cu")

	env, out := newEnv(b)
	assert.Equal(t, 4, StencilInfo{}.Total(b))
	require.NoError(t, StencilInfo{}.Run(context.Background(), env))

	lines := out.Lines()
	assert.Contains(t, lines, "***** Pads by Stencil Aperture (Paste Aperture) Ratio *****")
	assert.Contains(t, lines, "Failed 5.0 mil thickness:")
	assert.Contains(t, lines, "\tFailed Area  : 0.445 0.225")
	assert.Contains(t, lines, "\tFailed Area  : 0.100 0.100")
	assert.Contains(t, lines, "\tFrom: TSSOP-8")
	assert.Contains(t, lines, "Type 3.0; Range (μm): 25 45; Min Aperture: 225 μm (8.858 mil)")
	assert.Equal(t, "  ***** DONE *****", lines[len(lines)-1])

	// only the aperture failing even the thinnest stencil is flagged
	assert.True(t, out.Flags.IsFlagged(tiny))
	assert.False(t, out.Flags.IsFlagged(big))
	assert.Equal(t, 1, out.Flags.Len())

	assert.Equal(t, []int{1, 2, 3, 4}, out.Ticks())
}

func TestStencilInfoPasteMargin(t *testing.T) {
	b := newBoard()
	p := addPad(b, -1, "1", geom.Pt(0, 0), 0.5*mmNM, 0.3*mmNM, "F.Cu", "F.Paste")
	p.PasteMargin = board.Size{W: -25000, H: -25000}

	env, out := newEnv(b)
	require.NoError(t, StencilInfo{}.Run(context.Background(), env))
	assert.Contains(t, out.Lines()[2], "Aperture=0.275,0.475")
}

func TestStencilGroupsByMarginAdjustedAperture(t *testing.T) {
	b := newBoard()
	p := addPad(b, -1, "1", geom.Pt(0, 0), 1*mmNM, 1*mmNM, "F.Cu", "F.Paste")
	p.PasteMargin = board.Size{W: -50000, H: -50000}
	addPad(b, -1, "2", geom.Pt(2*mmNM, 0), 0.95*mmNM, 0.95*mmNM, "F.Cu", "F.Paste")

	assert.Equal(t, board.Size{W: 950000, H: 950000}, b.Pads[0].PasteAperture())

	env, out := newEnv(b)
	require.NoError(t, StencilInfo{}.Run(context.Background(), env))
	assert.Contains(t, out.Lines()[2], "(qty 2)\tAperture=0.950,0.950")
}

func TestStencilInfoMissingLayer(t *testing.T) {
	b := newBoard(without("F.Paste")...)
	env, _ := newEnv(b)
	err := StencilInfo{}.Run(context.Background(), env)
	assert.ErrorIs(t, err, board.ErrLayerNotFound)
}
