// Package strokefont decomposes silkscreen text into centre-line stroke
// segments. Glyph shapes come from the 7x13 bitmap face in
// golang.org/x/image/font/basicfont: horizontal and vertical pixel runs
// become strokes, isolated pixels become zero-length strokes.
package strokefont

import (
	"image"
	"strings"
	"sync"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/OpenTraceLab/padcheck/pkg/geom"
	"github.com/OpenTraceLab/padcheck/pkg/shape"
)

// Glyph rows spanned by capitals in the 7x13 face.
const (
	capTop    = 2
	capBottom = 11
	capRows   = capBottom - capTop

	lineSpacing = 1.6
)

// Style describes how text is laid out.
type Style struct {
	Width     float64 // character width
	Height    float64 // capital height
	Thickness float64 // stroke width
	Mirror    bool    // mirrored about the anchor, as on bottom-side silk
}

// Layout is text decomposed at its anchor, before any rotation.
type Layout struct {
	// Strokes is a flat list of (start, end) pairs.
	Strokes []geom.Point
	// Box covers the text block and every stroke, inflated by half the
	// stroke thickness.
	Box shape.Rect
}

type glyph struct {
	// stroke endpoints in pixel-centre coordinates relative to the cell
	pts [][2]float64
}

var (
	cacheMu sync.Mutex
	cache   = map[rune]glyph{}
)

// Decompose lays text out centred on anchor.
func Decompose(text string, anchor geom.Point, st Style) Layout {
	face := basicfont.Face7x13
	sx := st.Width / float64(face.Width)
	sy := st.Height / capRows
	advance := float64(face.Advance) * sx
	pitch := st.Height * lineSpacing

	lines := strings.Split(text, "\n")
	maxChars := 0
	for _, l := range lines {
		maxChars = max(maxChars, len([]rune(l)))
	}

	blockH := st.Height + float64(len(lines)-1)*pitch
	blockW := 0.0
	if maxChars > 0 {
		blockW = float64(maxChars-1)*advance + st.Width
	}

	var out Layout
	top := anchor.Y - blockH/2
	for li, l := range lines {
		runes := []rune(l)
		lineW := 0.0
		if len(runes) > 0 {
			lineW = float64(len(runes)-1)*advance + st.Width
		}
		left := anchor.X - lineW/2
		capY := top + float64(li)*pitch
		for ci, r := range runes {
			g := lookup(r)
			ox := left + float64(ci)*advance
			for _, p := range g.pts {
				x := ox + p[0]*sx
				y := capY + (p[1]-capTop)*sy
				if st.Mirror {
					x = 2*anchor.X - x
				}
				out.Strokes = append(out.Strokes, geom.Pt(x, y))
			}
		}
	}

	// the nominal block, grown to cover descenders and anything else that
	// leaves the capital rows
	nominal := shape.CenteredRect(anchor, blockW, blockH)
	ext := geom.BoxOf(geom.Pt(nominal.X, nominal.Y), geom.Pt(nominal.X+nominal.W, nominal.Y+nominal.H))
	for _, p := range out.Strokes {
		ext.Expand(p)
	}
	out.Box = shape.Rect{X: ext.Min.X, Y: ext.Min.Y, W: ext.Width(), H: ext.Height()}.Inflate(st.Thickness / 2)
	return out
}

func lookup(r rune) glyph {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if g, ok := cache[r]; ok {
		return g
	}
	g := rasterToStrokes(r)
	cache[r] = g
	return g
}

func rasterToStrokes(r rune) glyph {
	face := basicfont.Face7x13
	dot := fixed.P(0, face.Ascent)
	dr, mask, maskp, _, ok := face.Glyph(dot, r)
	if !ok {
		dr, mask, maskp, _, _ = face.Glyph(dot, '?')
	}

	w, h := dr.Dx(), dr.Dy()
	on := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return lit(mask, maskp.X+x, maskp.Y+y)
	}

	var g glyph
	used := make(map[image.Point]bool)
	add := func(x0, y0, x1, y1 int) {
		// pixel centres
		g.pts = append(g.pts,
			[2]float64{float64(x0) + 0.5, float64(y0) + 0.5},
			[2]float64{float64(x1) + 0.5, float64(y1) + 0.5})
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !on(x, y) || on(x-1, y) {
				continue
			}
			end := x
			for on(end+1, y) {
				end++
			}
			if end > x {
				add(x, y, end, y)
				for i := x; i <= end; i++ {
					used[image.Pt(i, y)] = true
				}
			}
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if !on(x, y) || on(x, y-1) {
				continue
			}
			end := y
			for on(x, end+1) {
				end++
			}
			if end > y {
				add(x, y, x, end)
				for i := y; i <= end; i++ {
					used[image.Pt(x, i)] = true
				}
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if on(x, y) && !used[image.Pt(x, y)] {
				add(x, y, x, y)
			}
		}
	}
	return g
}

func lit(m image.Image, x, y int) bool {
	_, _, _, a := m.At(x, y).RGBA()
	return a > 0x7fff
}
