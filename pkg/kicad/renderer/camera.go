package renderer

import (
	"math"

	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

const nmPerMM = 1e6

// Camera maps board coordinates (nanometres, Y down) onto a pixel viewport.
type Camera struct {
	// Center position in board coordinates (nm)
	Center geom.Point

	// Zoom level (pixels per mm)
	Zoom float64

	// Screen dimensions (pixels)
	ScreenWidth  int
	ScreenHeight int

	// View controls
	FlipView bool    // mirrored view, for looking at the back side
	Rotation float64 // degrees

	// View rotates and flips around this point (nm)
	RotationCenter geom.Point
}

// NewCamera creates a camera with default settings.
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         10.0,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// WorldToScreen converts board coordinates to screen pixels.
func (c *Camera) WorldToScreen(pos geom.Point) (float64, float64) {
	pos = c.applyViewTransform(pos)

	x := (pos.X - c.Center.X) / nmPerMM * c.Zoom
	y := (pos.Y - c.Center.Y) / nmPerMM * c.Zoom

	return x + float64(c.ScreenWidth)/2.0, y + float64(c.ScreenHeight)/2.0
}

// ScreenToWorld converts screen pixels to board coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float64) geom.Point {
	x := (screenX - float64(c.ScreenWidth)/2.0) / c.Zoom * nmPerMM
	y := (screenY - float64(c.ScreenHeight)/2.0) / c.Zoom * nmPerMM

	return c.applyInverseViewTransform(geom.Pt(x+c.Center.X, y+c.Center.Y))
}

// Length converts a board length to pixels.
func (c *Camera) Length(nm float64) float64 {
	return nm / nmPerMM * c.Zoom
}

// Pan moves the camera by screen pixel offsets.
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.Center.X -= deltaX / c.Zoom * nmPerMM
	c.Center.Y -= deltaY / c.Zoom * nmPerMM
}

// ZoomAt zooms around a screen position; factor > 1 zooms in.
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	before := c.ScreenToWorld(screenX, screenY)

	c.Zoom = math.Min(math.Max(c.Zoom*factor, 0.1), 1000.0)

	// Keep the point under the cursor stationary.
	after := c.ScreenToWorld(screenX, screenY)
	c.Center = c.Center.Add(before.Sub(after))
}

// Fit centres the box and zooms so it fills 90% of the viewport.
func (c *Camera) Fit(box geom.Box) {
	if box.IsEmpty() || box.Width() <= 0 || box.Height() <= 0 {
		return
	}

	c.Center = box.Center()
	c.RotationCenter = c.Center

	zoomX := float64(c.ScreenWidth) * 0.9 / (box.Width() / nmPerMM)
	zoomY := float64(c.ScreenHeight) * 0.9 / (box.Height() / nmPerMM)
	c.Zoom = math.Min(zoomX, zoomY)
}

// UpdateScreenSize updates camera when window is resized
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}

// Flip toggles the mirrored view.
func (c *Camera) Flip() {
	c.FlipView = !c.FlipView
}

// Rotate rotates the view by the given degrees.
func (c *Camera) Rotate(degrees float64) {
	c.Rotation = math.Mod(c.Rotation+degrees, 360)
	if c.Rotation < 0 {
		c.Rotation += 360
	}
}

func (c *Camera) applyViewTransform(pos geom.Point) geom.Point {
	p := pos.Sub(c.RotationCenter)
	p = rotate(p, c.Rotation)
	if c.FlipView {
		p.X = -p.X
	}
	return p.Add(c.RotationCenter)
}

func (c *Camera) applyInverseViewTransform(pos geom.Point) geom.Point {
	p := pos.Sub(c.RotationCenter)
	if c.FlipView {
		p.X = -p.X
	}
	p = rotate(p, -c.Rotation)
	return p.Add(c.RotationCenter)
}

func rotate(p geom.Point, degrees float64) geom.Point {
	if degrees == 0 {
		return p
	}
	sin, cos := math.Sincos(degrees * math.Pi / 180.0)
	return geom.Pt(p.X*cos-p.Y*sin, p.X*sin+p.Y*cos)
}

// VisibleBounds returns the area of the board currently on screen.
func (c *Camera) VisibleBounds() geom.Box {
	w, h := float64(c.ScreenWidth), float64(c.ScreenHeight)
	return geom.BoxOf(
		c.ScreenToWorld(0, 0),
		c.ScreenToWorld(w, 0),
		c.ScreenToWorld(0, h),
		c.ScreenToWorld(w, h),
	)
}
