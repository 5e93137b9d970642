package renderer

import "image/color"

// ColorTheme selects the layer palette.
type ColorTheme int

const (
	ThemeClassic ColorTheme = iota
	ThemeNord
)

// ThemeNames maps theme enum to display name
var ThemeNames = map[ColorTheme]string{
	ThemeClassic: "Classic",
	ThemeNord:    "Nord",
}

// CurrentTheme is the active color theme
var CurrentTheme = ThemeClassic

// KiCad Classic theme colors
var classicColors = map[string]color.NRGBA{
	"F.Cu":      {R: 200, G: 52, B: 52, A: 255},
	"B.Cu":      {R: 77, G: 127, B: 196, A: 255},
	"In1.Cu":    {R: 127, G: 200, B: 127, A: 255},
	"In2.Cu":    {R: 206, G: 125, B: 44, A: 255},
	"F.SilkS":   {R: 242, G: 237, B: 161, A: 255},
	"B.SilkS":   {R: 232, G: 178, B: 167, A: 255},
	"F.Mask":    {R: 216, G: 100, B: 255, A: 102},
	"B.Mask":    {R: 2, G: 255, B: 238, A: 102},
	"F.Paste":   {R: 180, G: 160, B: 154, A: 230},
	"B.Paste":   {R: 0, G: 194, B: 194, A: 230},
	"F.Fab":     {R: 175, G: 175, B: 175, A: 255},
	"B.Fab":     {R: 88, G: 93, B: 132, A: 255},
	"F.CrtYd":   {R: 255, G: 38, B: 226, A: 255},
	"B.CrtYd":   {R: 38, G: 233, B: 255, A: 255},
	"Dwgs.User": {R: 194, G: 194, B: 194, A: 255},
	"Cmts.User": {R: 89, G: 148, B: 220, A: 255},
	"Eco1.User": {R: 180, G: 219, B: 210, A: 255},
	"Eco2.User": {R: 216, G: 200, B: 82, A: 255},
	"Edge.Cuts": {R: 208, G: 210, B: 205, A: 255},
	"Margin":    {R: 255, G: 38, B: 226, A: 255},
}

// Nord theme (based on Nord color palette)
var nordColors = map[string]color.NRGBA{
	"F.Cu":      {R: 191, G: 97, B: 106, A: 255},  // Nord11
	"B.Cu":      {R: 129, G: 161, B: 193, A: 255}, // Nord9
	"In1.Cu":    {R: 163, G: 190, B: 140, A: 255}, // Nord14
	"In2.Cu":    {R: 235, G: 203, B: 139, A: 255}, // Nord13
	"F.SilkS":   {R: 236, G: 239, B: 244, A: 255}, // Nord6
	"B.SilkS":   {R: 216, G: 222, B: 233, A: 255}, // Nord4
	"F.Mask":    {R: 180, G: 142, B: 173, A: 102}, // Nord15
	"B.Mask":    {R: 136, G: 192, B: 208, A: 102}, // Nord8
	"F.Paste":   {R: 208, G: 135, B: 112, A: 230}, // Nord12
	"B.Paste":   {R: 143, G: 188, B: 187, A: 230}, // Nord7
	"Edge.Cuts": {R: 229, G: 233, B: 240, A: 255}, // Nord5
	"Dwgs.User": {R: 229, G: 233, B: 240, A: 255}, // Nord5
	"Cmts.User": {R: 94, G: 129, B: 172, A: 255},  // Nord10
}

// Special colors
var (
	ColorPad        = color.NRGBA{R: 227, G: 183, B: 46, A: 255}  // gold
	ColorDrill      = color.NRGBA{R: 0, G: 0, B: 0, A: 255}       // hole
	ColorVia        = color.NRGBA{R: 236, G: 236, B: 236, A: 255} // light gray
	ColorFlagged    = color.NRGBA{R: 255, G: 255, B: 0, A: 255}   // failing entity
	ColorOutline    = color.NRGBA{R: 0, G: 255, B: 128, A: 255}   // debug outline
	ColorBackground = color.NRGBA{R: 0, G: 16, B: 35, A: 255}
)

// LayerColor returns the color for a layer in the current theme.
func LayerColor(layer string) color.NRGBA {
	colors := classicColors
	if CurrentTheme == ThemeNord {
		colors = nordColors
	}
	if c, ok := colors[layer]; ok {
		return c
	}
	if c, ok := classicColors[layer]; ok {
		return c
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

// SetTheme changes the active color theme
func SetTheme(theme ColorTheme) {
	CurrentTheme = theme
}

// ThemeByName returns the theme with the given display name.
func ThemeByName(name string) (ColorTheme, bool) {
	for t, n := range ThemeNames {
		if n == name {
			return t, true
		}
	}
	return ThemeClassic, false
}

func dim(c color.NRGBA) color.NRGBA {
	c.A = c.A / 3
	return c
}
