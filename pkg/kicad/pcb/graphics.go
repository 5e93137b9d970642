package pcb

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp/kicadsexp"
)

// graphicKinds maps node suffixes to Graphic.Type.
var graphicKinds = []struct {
	suffix string
	kind   string
}{
	{"line", "line"},
	{"arc", "arc"},
	{"circle", "circle"},
	{"rect", "rect"},
	{"poly", "polygon"},
	{"curve", "curve"},
}

// parseGraphics finds every prefix+kind child of node (gr_line, fp_arc, ...)
// and parses it. Malformed items are skipped with a warning.
func parseGraphics(node kicadsexp.Sexp, prefix string) []Graphic {
	var graphics []Graphic

	for _, gk := range graphicKinds {
		for _, n := range sexp.FindAllNodes(node, prefix+gk.suffix) {
			g, err := parseGraphic(n, gk.kind)
			if err != nil {
				log.Warn("skipping drawing", "node", prefix+gk.suffix, "err", err)
				continue
			}
			graphics = append(graphics, *g)
		}
	}

	return graphics
}

// parseGraphic extracts one drawing primitive
// Expected format: (gr_line (start x y) (end x y) (stroke (width w) (type solid)) (layer "Edge.Cuts"))
func parseGraphic(node kicadsexp.Sexp, kind string) (*Graphic, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected %s list, got leaf", kind)
	}

	g := &Graphic{Type: kind}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	layer, err := sexp.GetString(layerNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}
	g.Layer = layer

	// Width: (stroke (width w)) in KiCad 7+, bare (width w) in KiCad 6
	if strokeNode, found := sexp.FindNode(node, "stroke"); found {
		g.Width = sexp.GetStroke(strokeNode).Width
	} else {
		g.Width = sexp.FloatField(node, "width", 0.15)
	}

	if fillNode, found := sexp.FindNode(node, "fill"); found {
		fill, _ := sexp.GetString(fillNode, 1)
		if fill == "" {
			if typeNode, ok := sexp.FindNode(fillNode, "type"); ok {
				fill, _ = sexp.GetString(typeNode, 1)
			}
		}
		g.Filled = fill == "solid" || fill == "yes"
	}

	point := func(key string, required bool) (Position, error) {
		n, found := sexp.FindNode(node, key)
		if !found {
			if required {
				return Position{}, fmt.Errorf("missing required '%s' point", key)
			}
			return Position{}, nil
		}
		p, err := sexp.GetPositionXY(n)
		if err != nil {
			return Position{}, fmt.Errorf("failed to parse %s: %w", key, err)
		}
		return p, nil
	}

	switch kind {
	case "line", "rect":
		if g.Start, err = point("start", true); err != nil {
			return nil, err
		}
		if g.End, err = point("end", true); err != nil {
			return nil, err
		}

	case "arc":
		if g.Start, err = point("start", true); err != nil {
			return nil, err
		}
		if g.Mid, err = point("mid", true); err != nil {
			return nil, err
		}
		if g.End, err = point("end", true); err != nil {
			return nil, err
		}

	case "circle":
		if g.Center, err = point("center", true); err != nil {
			return nil, err
		}
		if g.End, err = point("end", true); err != nil {
			return nil, err
		}

	case "polygon", "curve":
		ptsNode, found := sexp.FindNode(node, "pts")
		if !found {
			return nil, fmt.Errorf("missing required 'pts' list")
		}
		g.Points = parsePoints(ptsNode)
		if len(g.Points) < 2 {
			return nil, fmt.Errorf("%s has %d points", kind, len(g.Points))
		}
	}

	return g, nil
}

// parsePoints reads (pts (xy x y) (xy x y) ...). Arc segments inside
// outlines contribute their end points only.
func parsePoints(node kicadsexp.Sexp) []Position {
	var pts []Position
	for _, item := range sexp.GetListItems(node) {
		name, err := sexp.GetNodeName(item)
		if err != nil {
			continue
		}
		switch name {
		case "xy":
			if p, err := sexp.GetPositionXY(item); err == nil {
				pts = append(pts, p)
			}
		case "arc":
			for _, key := range []string{"start", "mid", "end"} {
				if n, ok := sexp.FindNode(item, key); ok {
					if p, err := sexp.GetPositionXY(n); err == nil {
						pts = append(pts, p)
					}
				}
			}
		}
	}
	return pts
}

// parseTexts extracts board-level gr_text items.
func parseTexts(root kicadsexp.Sexp) []Text {
	var texts []Text
	for _, n := range sexp.FindAllNodes(root, "gr_text") {
		text, err := parseText(n, "gr_text", 1)
		if err != nil {
			log.Warn("skipping text", "err", err)
			continue
		}
		texts = append(texts, *text)
	}
	return texts
}

// parseText extracts a text item whose string is at index textAt
// Expected format: (gr_text "text" (at x y angle) (layer "F.SilkS") (effects ...))
// or (fp_text reference "R1" (at x y) (layer "F.SilkS") hide (effects ...))
func parseText(node kicadsexp.Sexp, kind string, textAt int) (*Text, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected text list, got leaf")
	}

	content, err := sexp.GetString(node, textAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text content: %w", err)
	}
	text := &Text{Kind: kind, Text: content}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("text %q missing 'at' position", content)
	}
	if text.Position, err = sexp.GetPosition(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse text position: %w", err)
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("text %q missing 'layer'", content)
	}
	if text.Layer, err = sexp.GetString(layerNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse text layer: %w", err)
	}

	effectsNode, _ := sexp.FindNode(node, "effects")
	text.Effects = sexp.GetEffects(effectsNode)
	text.Hidden = text.Effects.Hide || sexp.HasSymbol(node, "hide")

	return text, nil
}
