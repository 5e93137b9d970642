package pcb

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp/kicadsexp"
)

// parseTracks extracts segment and arc tracks
// Expected format: (segment (start x y) (end x y) (width w) (layer "F.Cu") (net n))
func parseTracks(root kicadsexp.Sexp, netMap *NetMap) ([]Track, error) {
	var tracks []Track

	for _, kind := range []string{"segment", "arc"} {
		for i, node := range sexp.FindAllNodes(root, kind) {
			track, err := parseTrack(node, kind, netMap)
			if err != nil {
				log.Warn("skipping track", "type", kind, "index", i, "err", err)
				continue
			}
			tracks = append(tracks, *track)
		}
	}

	return tracks, nil
}

func parseTrack(node kicadsexp.Sexp, kind string, netMap *NetMap) (*Track, error) {
	track := &Track{Type: kind}

	startNode, found := sexp.FindNode(node, "start")
	if !found {
		return nil, fmt.Errorf("missing required 'start' point")
	}
	start, err := sexp.GetPositionXY(startNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start: %w", err)
	}
	track.Start = start

	endNode, found := sexp.FindNode(node, "end")
	if !found {
		return nil, fmt.Errorf("missing required 'end' point")
	}
	end, err := sexp.GetPositionXY(endNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end: %w", err)
	}
	track.End = end

	if kind == "arc" {
		midNode, found := sexp.FindNode(node, "mid")
		if !found {
			return nil, fmt.Errorf("arc missing 'mid' point")
		}
		if track.Mid, err = sexp.GetPositionXY(midNode); err != nil {
			return nil, fmt.Errorf("failed to parse mid: %w", err)
		}
	}

	widthNode, found := sexp.FindNode(node, "width")
	if !found {
		return nil, fmt.Errorf("missing required 'width' field")
	}
	if track.Width, err = sexp.GetFloat(widthNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse width: %w", err)
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	if track.Layer, err = sexp.GetString(layerNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}

	track.Net = lookupNet(node, netMap)
	return track, nil
}

// parseVias extracts vias
// Expected format: (via [blind|micro] (at x y) (size s) (drill d) (layers "F.Cu" "B.Cu") (net n))
func parseVias(root kicadsexp.Sexp, netMap *NetMap) ([]Via, error) {
	var vias []Via

	for i, node := range sexp.FindAllNodes(root, "via") {
		via, err := parseVia(node, netMap)
		if err != nil {
			log.Warn("skipping via", "index", i, "err", err)
			continue
		}
		vias = append(vias, *via)
	}

	return vias, nil
}

func parseVia(node kicadsexp.Sexp, netMap *NetMap) (*Via, error) {
	via := &Via{Type: "through"}
	switch {
	case sexp.HasSymbol(node, "blind"):
		via.Type = "blind"
	case sexp.HasSymbol(node, "micro"):
		via.Type = "micro"
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	pos, err := sexp.GetPositionXY(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}
	via.Position = pos

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	if via.Size, err = sexp.GetFloat(sizeNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse size: %w", err)
	}

	drillNode, found := sexp.FindNode(node, "drill")
	if !found {
		return nil, fmt.Errorf("missing required 'drill' field")
	}
	if via.Drill, err = sexp.GetFloat(drillNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse drill: %w", err)
	}

	if layersNode, found := sexp.FindNode(node, "layers"); found {
		layers, err := sexp.GetLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers: %w", err)
		}
		via.Layers = LayerSet(layers)
	} else {
		via.Layers = LayerSet{"F.Cu", "B.Cu"}
	}

	via.Net = lookupNet(node, netMap)
	return via, nil
}
