package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"gioui.org/layout"
	"gioui.org/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/report"
)

const mm = 1e6

func assertPoint(t *testing.T, want, got geom.Point, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
}

func assertColor(t *testing.T, want, got color.NRGBA) {
	t.Helper()
	for _, c := range [][2]uint8{{want.R, got.R}, {want.G, got.G}, {want.B, got.B}, {want.A, got.A}} {
		assert.InDelta(t, float64(c[0]), float64(c[1]), 2, "want %v got %v", want, got)
	}
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.Fit(geom.BoxOf(geom.Pt(0, 0), geom.Pt(100*mm, 50*mm)))

	assertPoint(t, geom.Pt(50*mm, 25*mm), cam.Center, 1e-6)
	assert.InDelta(t, 7.2, cam.Zoom, 1e-9)

	x, y := cam.WorldToScreen(geom.Pt(0, 0))
	assert.InDelta(t, 40, x, 1e-9)
	assert.InDelta(t, 120, y, 1e-9)
}

func TestCameraRoundTrip(t *testing.T) {
	cam := NewCamera(640, 480)
	cam.Center = geom.Pt(12*mm, -3*mm)
	cam.RotationCenter = geom.Pt(5*mm, 5*mm)
	cam.Rotate(90)
	cam.Flip()

	for _, p := range []geom.Point{{}, geom.Pt(1*mm, 2*mm), geom.Pt(-40*mm, 17.5*mm)} {
		x, y := cam.WorldToScreen(p)
		assertPoint(t, p, cam.ScreenToWorld(x, y), 1e-3)
	}
}

func TestCameraZoomAtKeepsCursorPoint(t *testing.T) {
	cam := NewCamera(640, 480)
	before := cam.ScreenToWorld(100, 80)
	cam.ZoomAt(100, 80, 2)
	assert.InDelta(t, 20.0, cam.Zoom, 1e-9)
	assertPoint(t, before, cam.ScreenToWorld(100, 80), 1e-3)

	cam.ZoomAt(0, 0, 1e9)
	assert.Equal(t, 1000.0, cam.Zoom)
}

func TestCameraRotateNormalizes(t *testing.T) {
	cam := NewCamera(1, 1)
	cam.Rotate(-90)
	assert.Equal(t, 270.0, cam.Rotation)
	cam.Rotate(450)
	assert.Equal(t, 0.0, cam.Rotation)
}

func TestFitTransform(t *testing.T) {
	tf := FitTransform(geom.BoxOf(geom.Pt(0, 0), geom.Pt(10*mm, 10*mm)), 120, 100, 10)
	assert.InDelta(t, 80.0/(10*mm), tf.Scale, 1e-15)

	x, y := tf.Apply(geom.Pt(0, 0))
	assert.InDelta(t, 20, x, 1e-4)
	assert.InDelta(t, 10, y, 1e-4)
	x, y = tf.Apply(geom.Pt(10*mm, 10*mm))
	assert.InDelta(t, 100, x, 1e-4)
	assert.InDelta(t, 90, y, 1e-4)

	assertPoint(t, geom.Pt(5*mm, 5*mm), tf.ApplyInverse(60, 50), 1e-3)
}

func TestArcThrough(t *testing.T) {
	h := math.Sqrt2 / 2

	pts := arcThrough(geom.Pt(1, 0), geom.Pt(h, h), geom.Pt(0, 1), 4)
	require.Len(t, pts, 5)
	for _, p := range pts {
		assert.InDelta(t, 1, geom.Distance(geom.Point{}, p), 1e-9)
	}
	assertPoint(t, geom.Pt(h, h), pts[2], 1e-9)

	// Through (0,-1) the arc takes the long way round.
	pts = arcThrough(geom.Pt(1, 0), geom.Pt(0, -1), geom.Pt(0, 1), 4)
	assertPoint(t, geom.Pt(-h, -h), pts[2], 1e-9)

	// Collinear points fall back to chords.
	pts = arcThrough(geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(2, 0), 4)
	assert.Len(t, pts, 3)
}

func TestLayerConfig(t *testing.T) {
	var none *LayerConfig
	assert.True(t, none.IsVisible("F.Cu"))

	lc := NewLayerConfig()
	assert.True(t, lc.IsVisible("F.Cu"))
	lc.SetVisible("F.Cu", false)
	assert.False(t, lc.IsVisible("F.Cu"))

	lc.ShowPasteOnly()
	assert.True(t, lc.IsVisible("F.Paste"))
	assert.False(t, lc.IsVisible("B.Cu"))
	lc.SetVisible("B.Cu", true)
	assert.True(t, lc.IsVisible("B.Cu"))

	lc.ShowAll()
	assert.True(t, lc.IsVisible("F.Cu"))
}

func trackBoard() *board.Snapshot {
	return &board.Snapshot{
		Layers: board.NewLayerTable([]board.Layer{{Number: 0, Name: "F.Cu", Kind: board.LayerCopper}}),
		Tracks: []board.Track{{
			ID:    board.EntityID{Kind: board.KindTrack, Index: 0},
			Start: geom.Pt(0, 0),
			End:   geom.Pt(10*mm, 0),
			Width: 1 * mm,
			Layer: "F.Cu",
		}},
	}
}

func TestRenderImage(t *testing.T) {
	b := trackBoard()

	img := RenderImage(Scene{Board: b}, DefaultImageOptions)
	assert.Equal(t, image.Rect(0, 0, 1600, 1200), img.Bounds())
	assertColor(t, LayerColor("F.Cu"), img.NRGBAAt(800, 600))
	assertColor(t, ColorBackground, img.NRGBAAt(800, 100))

	flags := board.NewFlags()
	flags.Flag(b.Tracks[0].ID)
	img = RenderImage(Scene{Board: b, Flags: flags}, DefaultImageOptions)
	assertColor(t, ColorFlagged, img.NRGBAAt(800, 600))
}

func TestRenderImageOutlinesOnly(t *testing.T) {
	outline := report.Outline{
		Layer:  "Dwgs.User",
		Points: []geom.Point{geom.Pt(0, 0), geom.Pt(10*mm, 0), geom.Pt(10*mm, 10*mm), geom.Pt(0, 10*mm)},
		Width:  0.5 * mm,
		Closed: true,
	}
	img := RenderImage(Scene{Outlines: []report.Outline{outline}}, ImageOptions{Width: 200, Height: 200, Margin: 20})

	// The closing edge runs down the left side.
	assertColor(t, ColorOutline, img.NRGBAAt(25, 100))
	assertColor(t, ColorBackground, img.NRGBAAt(100, 100))
}

func TestRenderImageZoneOutline(t *testing.T) {
	b := &board.Snapshot{
		Layers: board.NewLayerTable([]board.Layer{{Number: 31, Name: "B.Cu", Kind: board.LayerCopper}}),
		Zones: []board.Zone{{
			Net:     1,
			Layers:  board.LayerSet{"B.Cu"},
			Outline: []geom.Point{geom.Pt(0, 0), geom.Pt(10*mm, 0), geom.Pt(10*mm, 10*mm), geom.Pt(0, 10*mm)},
		}},
	}
	opts := ImageOptions{Width: 200, Height: 200, Margin: 20}

	img := RenderImage(Scene{Board: b}, opts)
	assert.NotEqual(t, ColorBackground, img.NRGBAAt(20, 100))
	assertColor(t, ColorBackground, img.NRGBAAt(100, 100))

	layers := NewLayerConfig()
	layers.SetVisible("B.Cu", false)
	img = RenderImage(Scene{Board: b, Layers: layers}, opts)
	assertColor(t, ColorBackground, img.NRGBAAt(20, 100))
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, Scene{Board: trackBoard()}, ImageOptions{Width: 64, Height: 48}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestRenderRecordsOps(t *testing.T) {
	b := trackBoard()
	b.Vias = []board.Via{{
		ID:       board.EntityID{Kind: board.KindVia, Index: 0},
		Position: geom.Pt(5*mm, 0),
		Diameter: 0.6 * mm,
		Drill:    0.3 * mm,
		Layers:   board.LayerSet{"F.Cu"},
	}}

	gtx := layout.Context{Ops: new(op.Ops), Constraints: layout.Exact(image.Pt(320, 240))}
	cam := NewCamera(0, 0)
	dims := Render(gtx, cam, Scene{Board: b, Flags: board.NewFlags(), DimUnflagged: true})

	assert.Equal(t, image.Pt(320, 240), dims.Size)
	assert.Equal(t, 320, cam.ScreenWidth)
	assert.Equal(t, 240, cam.ScreenHeight)
}
