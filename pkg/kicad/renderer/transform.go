package renderer

import (
	"math"

	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

// Transform is a uniform scale plus translation from board nanometres to
// image pixels.
type Transform struct {
	Scale      float64 // pixels per nm
	TranslateX float64
	TranslateY float64
}

// FitTransform maps box into a width x height image with margin pixels on
// every side, preserving aspect ratio.
func FitTransform(box geom.Box, width, height, margin int) Transform {
	if box.IsEmpty() {
		return Transform{Scale: 1}
	}
	w := float64(width - 2*margin)
	h := float64(height - 2*margin)
	bw, bh := math.Max(box.Width(), 1), math.Max(box.Height(), 1)
	scale := math.Min(w/bw, h/bh)

	// Centre the board inside the drawable area.
	return Transform{
		Scale:      scale,
		TranslateX: float64(margin) + (w-bw*scale)/2 - box.Min.X*scale,
		TranslateY: float64(margin) + (h-bh*scale)/2 - box.Min.Y*scale,
	}
}

// Apply maps a board point to pixels.
func (t Transform) Apply(p geom.Point) (float32, float32) {
	return float32(p.X*t.Scale + t.TranslateX), float32(p.Y*t.Scale + t.TranslateY)
}

// ApplyInverse maps pixels back to the board.
func (t Transform) ApplyInverse(x, y float64) geom.Point {
	if t.Scale == 0 {
		return geom.Point{}
	}
	return geom.Pt((x-t.TranslateX)/t.Scale, (y-t.TranslateY)/t.Scale)
}

// Length maps a board length to pixels.
func (t Transform) Length(nm float64) float32 {
	return float32(nm * t.Scale)
}
