package pcb

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp/kicadsexp"
)

func mustParse(t *testing.T, input string) kicadsexp.Sexp {
	t.Helper()
	sexps, err := kicadsexp.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse s-expression: %v", err)
	}
	return sexps[0]
}

// Test parseHeader function
func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantGen     string
		wantErr     bool
	}{
		{
			name:        "valid KiCad 6.0 with generator",
			input:       "(kicad_pcb (version 20211014) (generator pcbnew))",
			wantVersion: 20211014,
			wantGen:     "pcbnew",
		},
		{
			name:        "valid KiCad 6.0 with host",
			input:       "(kicad_pcb (version 20221018) (host pcbnew \"(6.0.10)\"))",
			wantVersion: 20221018,
			wantGen:     "pcbnew",
		},
		{
			name:    "missing version",
			input:   "(kicad_pcb (generator pcbnew))",
			wantErr: true,
		},
		{
			name:    "old version (KiCad 5)",
			input:   "(kicad_pcb (version 20171130))",
			wantErr: true,
		},
		{
			name:        "no generator (should default to unknown)",
			input:       "(kicad_pcb (version 20211014))",
			wantVersion: 20211014,
			wantGen:     "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, gen, err := parseHeader(mustParse(t, tt.input))

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseHeader() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHeader() unexpected error: %v", err)
			}
			if version != tt.wantVersion {
				t.Errorf("parseHeader() version = %d, want %d", version, tt.wantVersion)
			}
			if gen != tt.wantGen {
				t.Errorf("parseHeader() generator = %q, want %q", gen, tt.wantGen)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a board", "(kicad_sch (version 20211014))"},
		{"unbalanced", "(kicad_pcb (version 20211014)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Errorf("Parse(%q) expected error, got nil", tt.input)
			}
		})
	}
}

func TestParseLayers(t *testing.T) {
	layers, err := parseLayers(mustParse(t, `(layers
		(0 "F.Cu" signal)
		(31 "B.Cu" power)
		(37 "F.SilkS" user "F.Silkscreen")
		(44 "Edge.Cuts"))`))
	if err != nil {
		t.Fatalf("parseLayers() unexpected error: %v", err)
	}
	if len(layers) != 4 {
		t.Fatalf("parseLayers() returned %d layers, want 4", len(layers))
	}

	tests := []struct {
		idx      int
		name     string
		copper   bool
		userName string
	}{
		{0, "F.Cu", true, ""},
		{1, "B.Cu", true, ""},
		{2, "F.SilkS", false, "F.Silkscreen"},
		{3, "Edge.Cuts", false, ""},
	}
	for _, tt := range tests {
		l := layers[tt.idx]
		if l.Name != tt.name || l.IsCopper() != tt.copper || l.UserName != tt.userName {
			t.Errorf("layer %d = %+v, want name %q copper %v user %q", tt.idx, l, tt.name, tt.copper, tt.userName)
		}
	}
	if layers[3].Type != "user" {
		t.Errorf("missing type should default to user, got %q", layers[3].Type)
	}

}

func TestParseNets(t *testing.T) {
	nets, err := parseNets(mustParse(t, `(kicad_pcb (net 0 "") (net 1 "GND") (net 2 "Net-(R1-Pad2)"))`))
	if err != nil {
		t.Fatalf("parseNets() unexpected error: %v", err)
	}
	if len(nets) != 3 {
		t.Fatalf("parseNets() returned %d nets, want 3", len(nets))
	}
	if nets[2].Name != "Net-(R1-Pad2)" {
		t.Errorf("nets[2].Name = %q", nets[2].Name)
	}

	nm := NewNetMap(nets)
	if n, ok := nm.GetByNumber(1); !ok || n.Name != "GND" {
		t.Errorf("GetByNumber(1) = %v, %v", n, ok)
	}
}

func TestParseSetup(t *testing.T) {
	setup := parseSetup(mustParse(t, `(setup (pad_to_mask_clearance 0.05) (pad_to_paste_clearance -0.02) (pad_to_paste_clearance_ratio -0.1))`))
	if setup.PadToMaskClearance != 0.05 || setup.PadToPasteClearance != -0.02 || setup.PadToPasteClearanceRatio != -0.1 {
		t.Errorf("parseSetup() = %+v", setup)
	}
}

func TestParseGraphic(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    string
		wantErr bool
		check   func(t *testing.T, g *Graphic)
	}{
		{
			name:  "line with stroke",
			input: `(gr_line (start 1 2) (end 3 4) (stroke (width 0.2) (type solid)) (layer "Edge.Cuts"))`,
			kind:  "line",
			check: func(t *testing.T, g *Graphic) {
				if g.Start != (Position{X: 1, Y: 2}) || g.End != (Position{X: 3, Y: 4}) || g.Width != 0.2 {
					t.Errorf("line = %+v", g)
				}
			},
		},
		{
			name:  "KiCad 6 bare width",
			input: `(fp_line (start 0 0) (end 1 0) (layer "F.SilkS") (width 0.12))`,
			kind:  "line",
			check: func(t *testing.T, g *Graphic) {
				if g.Width != 0.12 || g.Layer != "F.SilkS" {
					t.Errorf("line = %+v", g)
				}
			},
		},
		{
			name:  "circle",
			input: `(gr_circle (center 5 5) (end 6 5) (stroke (width 0.1)) (fill solid) (layer "F.SilkS"))`,
			kind:  "circle",
			check: func(t *testing.T, g *Graphic) {
				if g.Center != (Position{X: 5, Y: 5}) || !g.Filled {
					t.Errorf("circle = %+v", g)
				}
			},
		},
		{
			name:  "polygon",
			input: `(gr_poly (pts (xy 0 0) (xy 1 0) (xy 1 1)) (stroke (width 0.1)) (fill (type none)) (layer "F.Cu"))`,
			kind:  "polygon",
			check: func(t *testing.T, g *Graphic) {
				if len(g.Points) != 3 || g.Filled {
					t.Errorf("polygon = %+v", g)
				}
			},
		},
		{
			name:    "line missing end",
			input:   `(gr_line (start 1 2) (layer "Edge.Cuts"))`,
			kind:    "line",
			wantErr: true,
		},
		{
			name:    "missing layer",
			input:   `(gr_line (start 1 2) (end 3 4))`,
			kind:    "line",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := parseGraphic(mustParse(t, tt.input), tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseGraphic() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGraphic() unexpected error: %v", err)
			}
			tt.check(t, g)
		})
	}
}

func TestParseText(t *testing.T) {
	text, err := parseText(mustParse(t, `(fp_text reference "U1" (at 0 -2 180) (layer "B.SilkS") hide
		(effects (font (size 1.2 1.0) (thickness 0.18)) (justify mirror)))`), "reference", 2)
	if err != nil {
		t.Fatalf("parseText() unexpected error: %v", err)
	}
	if text.Text != "U1" || text.Layer != "B.SilkS" || text.Position.Angle != 180 {
		t.Errorf("parseText() = %+v", text)
	}
	if !text.Hidden || !text.Effects.Justify.Mirror {
		t.Errorf("hide/mirror not parsed: %+v", text)
	}
	if text.Effects.Font.Size.Height != 1.2 || text.Effects.Font.Size.Width != 1.0 || text.Effects.Font.Thickness != 0.18 {
		t.Errorf("font = %+v", text.Effects.Font)
	}
}

func TestParsePad(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantDrill Size
		wantShape string
	}{
		{
			name:      "smd",
			input:     `(pad "1" smd rect (at 1 0) (size 1 0.5) (layers "F.Cu" "F.Paste" "F.Mask"))`,
			wantShape: "rect",
		},
		{
			name:      "round drill",
			input:     `(pad "2" thru_hole circle (at 0 0) (size 1.6 1.6) (drill 0.8) (layers "*.Cu" "*.Mask"))`,
			wantDrill: Size{Width: 0.8, Height: 0.8},
			wantShape: "circle",
		},
		{
			name:      "oval drill with offset",
			input:     `(pad "3" thru_hole oval (at 0 0) (size 2 3) (drill oval 1 1.5 (offset 0 0.2)) (layers "*.Cu"))`,
			wantDrill: Size{Width: 1, Height: 1.5},
			wantShape: "oval",
		},
		{
			name:    "missing size",
			input:   `(pad "4" smd rect (at 0 0) (layers "F.Cu"))`,
			wantErr: true,
		},
		{
			name:    "missing layers",
			input:   `(pad "5" smd rect (at 0 0) (size 1 1))`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad, err := parsePad(mustParse(t, tt.input), nil)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePad() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePad() unexpected error: %v", err)
			}
			if pad.Drill != tt.wantDrill {
				t.Errorf("parsePad() drill = %+v, want %+v", pad.Drill, tt.wantDrill)
			}
			if pad.Shape != tt.wantShape {
				t.Errorf("parsePad() shape = %q, want %q", pad.Shape, tt.wantShape)
			}
		})
	}
}

func TestParsePadMargins(t *testing.T) {
	pad, err := parsePad(mustParse(t, `(pad "1" smd roundrect (at 0 0 90) (size 1 2) (layers "F.Cu" "F.Paste")
		(roundrect_rratio 0.25) (clearance 0.2) (solder_mask_margin 0.05)
		(solder_paste_margin -0.03) (solder_paste_margin_ratio -0.1))`), nil)
	if err != nil {
		t.Fatalf("parsePad() unexpected error: %v", err)
	}
	if pad.Position.Angle != 90 || pad.RoundRectRatio != 0.25 {
		t.Errorf("angle/ratio = %v/%v", pad.Position.Angle, pad.RoundRectRatio)
	}
	if pad.LocalClearance != 0.2 || pad.SolderMaskMargin != 0.05 || pad.SolderPasteMargin != -0.03 || pad.SolderPasteRatio != -0.1 {
		t.Errorf("margins = %+v", pad)
	}
}

func TestParseVia(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantErr  bool
	}{
		{"through", `(via (at 1 2) (size 0.8) (drill 0.4) (layers "F.Cu" "B.Cu") (net 1))`, "through", false},
		{"blind", `(via blind (at 1 2) (size 0.6) (drill 0.3) (layers "F.Cu" "In1.Cu"))`, "blind", false},
		{"micro", `(via micro (at 1 2) (size 0.3) (drill 0.1) (layers "F.Cu" "In1.Cu"))`, "micro", false},
		{"missing drill", `(via (at 1 2) (size 0.8))`, "", true},
	}
	nets := NewNetMap([]Net{{Number: 1, Name: "GND"}})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			via, err := parseVia(mustParse(t, tt.input), nets)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseVia() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVia() unexpected error: %v", err)
			}
			if via.Type != tt.wantType {
				t.Errorf("parseVia() type = %q, want %q", via.Type, tt.wantType)
			}
		})
	}
}

func TestParseFootprint(t *testing.T) {
	fp, err := parseFootprint(mustParse(t, `(footprint "Package_SO:SOIC-8" (layer "F.Cu") (at 50 60 180)
		(property "Reference" "U3" (at 0 -3.4 0) (layer "F.SilkS") (effects (font (size 1 1) (thickness 0.15))))
		(property "Value" "LM358" (at 0 3.4 0) (layer "F.Fab") (effects (font (size 1 1) (thickness 0.15))))
		(property "Datasheet" "")
		(solder_paste_margin -0.04)
		(pad "1" smd rect (at -2.475 -1.905 180) (size 1.95 0.6) (layers "F.Cu" "F.Paste" "F.Mask"))
		(pad "2" smd rect (at -2.475 -0.635 180) (size 1.95 0.6) (layers "F.Cu" "F.Paste" "F.Mask"))
		(pad "bad" smd rect (layers "F.Cu"))
		(fp_line (start -1 -2) (end 1 -2) (stroke (width 0.12) (type solid)) (layer "F.SilkS")))`), nil)
	if err != nil {
		t.Fatalf("parseFootprint() unexpected error: %v", err)
	}
	if fp.Library != "Package_SO" || fp.Name != "SOIC-8" {
		t.Errorf("library/name = %q/%q", fp.Library, fp.Name)
	}
	if fp.Reference != "U3" || fp.Value != "LM358" {
		t.Errorf("reference/value = %q/%q", fp.Reference, fp.Value)
	}
	if len(fp.Pads) != 2 {
		t.Errorf("pads = %d, want 2 (malformed pad skipped)", len(fp.Pads))
	}
	if len(fp.Texts) != 2 {
		t.Errorf("texts = %d, want 2 (properties without layer skipped)", len(fp.Texts))
	}
	if len(fp.Graphics) != 1 {
		t.Errorf("graphics = %d, want 1", len(fp.Graphics))
	}
	if fp.Position.Angle != 180 || fp.SolderPasteMargin != -0.04 {
		t.Errorf("angle/paste = %v/%v", fp.Position.Angle, fp.SolderPasteMargin)
	}
}

func TestParseFile(t *testing.T) {
	board, err := ParseFile("testdata/small.kicad_pcb")
	if err != nil {
		t.Fatalf("ParseFile() unexpected error: %v", err)
	}

	if board.Version != 20221018 || board.Generator != "pcbnew" {
		t.Errorf("header = %d/%q", board.Version, board.Generator)
	}
	if board.General.Thickness != 1.6 {
		t.Errorf("thickness = %v", board.General.Thickness)
	}
	if len(board.Layers) != 18 {
		t.Errorf("layers = %d, want 18", len(board.Layers))
	}
	if len(board.Nets) != 3 {
		t.Errorf("nets = %d, want 3", len(board.Nets))
	}
	if len(board.Footprints) != 2 || board.PadCount() != 4 {
		t.Errorf("footprints/pads = %d/%d, want 2/4", len(board.Footprints), board.PadCount())
	}
	if len(board.Graphics) != 5 {
		t.Errorf("graphics = %d, want 5", len(board.Graphics))
	}
	if len(board.Texts) != 1 || board.Texts[0].Text != "TOP" {
		t.Errorf("texts = %+v", board.Texts)
	}
	if len(board.Tracks) != 3 || len(board.Vias) != 2 || len(board.Zones) != 1 {
		t.Errorf("tracks/vias/zones = %d/%d/%d", len(board.Tracks), len(board.Vias), len(board.Zones))
	}
	if board.Setup.PadToPasteClearance != -0.02 {
		t.Errorf("setup = %+v", board.Setup)
	}

	j1 := board.Footprints[1]
	if j1.Reference != "J1" || j1.Pads[1].DrillShape != "oval" {
		t.Errorf("J1 = %q, pad 2 drill %q", j1.Reference, j1.Pads[1].DrillShape)
	}
	if board.Vias[1].Net == nil || board.Vias[1].Net.Name != "VCC" {
		t.Errorf("via net = %v", board.Vias[1].Net)
	}
}

func TestParseZones(t *testing.T) {
	netMap := NewNetMap([]Net{{Number: 1, Name: "GND"}})

	tests := []struct {
		name       string
		input      string
		wantZones  int
		wantLayers []string
		wantPoints int
		wantNet    string
	}{
		{
			name:       "single layer",
			input:      `(kicad_pcb (zone (net 1) (net_name "GND") (layer "B.Cu") (polygon (pts (xy 0 0) (xy 10 0) (xy 10 5)))))`,
			wantZones:  1,
			wantLayers: []string{"B.Cu"},
			wantPoints: 3,
			wantNet:    "GND",
		},
		{
			name:       "layer list",
			input:      `(kicad_pcb (zone (net 0) (layers "F&B.Cu") (polygon (pts (xy 0 0) (xy 1 0) (xy 1 1) (xy 0 1)))))`,
			wantZones:  1,
			wantLayers: []string{"F&B.Cu"},
			wantPoints: 4,
		},
		{
			name:      "missing outline is skipped",
			input:     `(kicad_pcb (zone (net 1) (layer "F.Cu")))`,
			wantZones: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones := parseZones(mustParse(t, tt.input), netMap)
			if len(zones) != tt.wantZones {
				t.Fatalf("zones = %d, want %d", len(zones), tt.wantZones)
			}
			if tt.wantZones == 0 {
				return
			}
			z := zones[0]
			if strings.Join(z.Layers, ",") != strings.Join(tt.wantLayers, ",") {
				t.Errorf("layers = %v, want %v", z.Layers, tt.wantLayers)
			}
			if len(z.Outline) != tt.wantPoints {
				t.Errorf("outline points = %d, want %d", len(z.Outline), tt.wantPoints)
			}
			net := ""
			if z.Net != nil {
				net = z.Net.Name
			}
			if net != tt.wantNet {
				t.Errorf("net = %q, want %q", net, tt.wantNet)
			}
		})
	}
}
