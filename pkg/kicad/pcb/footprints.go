package pcb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp/kicadsexp"
)

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n) ...)
func parsePad(node kicadsexp.Sexp, netMap *NetMap) (*Pad, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected pad list, got leaf")
	}

	pad := &Pad{}

	number, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	pad.Number = number

	// Pad type: thru_hole, smd, connect, np_thru_hole
	if pad.Type, err = sexp.GetString(node, 2); err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}

	// Pad shape: circle, rect, oval, roundrect, trapezoid, custom
	if pad.Shape, err = sexp.GetString(node, 3); err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if pad.Position, err = sexp.GetPosition(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse pad position: %w", err)
	}

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	if pad.Size, err = sexp.GetSize(sizeNode); err != nil {
		return nil, fmt.Errorf("failed to parse pad size: %w", err)
	}

	// Drill: (drill d), (drill oval w h), optionally followed by (offset x y)
	if drillNode, found := sexp.FindNode(node, "drill"); found {
		pad.Drill, pad.DrillShape = parseDrill(drillNode)
	}

	layersNode, found := sexp.FindNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("missing required 'layers' field")
	}
	layers, err := sexp.GetLayers(layersNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad layers: %w", err)
	}
	pad.Layers = LayerSet(layers)

	pad.Net = lookupNet(node, netMap)

	pad.RoundRectRatio = sexp.FloatField(node, "roundrect_rratio", 0)
	if deltaNode, found := sexp.FindNode(node, "rect_delta"); found {
		pad.RectDelta, _ = sexp.GetSize(deltaNode)
	}

	pad.LocalClearance = sexp.FloatField(node, "clearance", 0)
	pad.SolderMaskMargin = sexp.FloatField(node, "solder_mask_margin", 0)
	pad.SolderPasteMargin = sexp.FloatField(node, "solder_paste_margin", 0)
	pad.SolderPasteRatio = sexp.FloatField(node, "solder_paste_margin_ratio", 0)

	return pad, nil
}

func parseDrill(node kicadsexp.Sexp) (Size, string) {
	var nums []float64
	shape := "circle"
	for _, item := range sexp.GetListItems(node) {
		sym, ok := item.(kicadsexp.Symbol)
		if !ok {
			continue
		}
		if sym == "oval" {
			shape = "oval"
			continue
		}
		if v, err := strconv.ParseFloat(string(sym), 64); err == nil {
			nums = append(nums, v)
		}
	}

	switch {
	case len(nums) == 0:
		return Size{}, shape
	case shape == "oval" && len(nums) >= 2:
		return Size{Width: nums[0], Height: nums[1]}, shape
	}
	return Size{Width: nums[0], Height: nums[0]}, shape
}

// parseFootprint extracts a footprint (component) definition
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected footprint list, got leaf")
	}

	footprint := &Footprint{}

	fpName, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}

	// Split library:name format
	// Example: "Resistor_SMD:R_0603_1608Metric"
	if lib, name, ok := strings.Cut(fpName, ":"); ok && lib != "" {
		footprint.Library = lib
		footprint.Name = name
	} else {
		footprint.Name = fpName
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	if footprint.Layer, err = sexp.GetString(layerNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if footprint.Position, err = sexp.GetPosition(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse footprint position: %w", err)
	}

	if attrNode, found := sexp.FindNode(node, "attr"); found {
		footprint.Attribute, _ = sexp.GetString(attrNode, 1)
	}

	footprint.LocalClearance = sexp.FloatField(node, "clearance", 0)
	footprint.SolderMaskMargin = sexp.FloatField(node, "solder_mask_margin", 0)
	footprint.SolderPasteMargin = sexp.FloatField(node, "solder_paste_margin", 0)
	footprint.SolderPasteRatio = sexp.FloatField(node, "solder_paste_ratio", 0)

	// KiCad 6/7 reference and value live in fp_text
	for _, textNode := range sexp.FindAllNodes(node, "fp_text") {
		kind, err := sexp.GetString(textNode, 1)
		if err != nil {
			continue
		}
		text, err := parseText(textNode, kind, 2)
		if err != nil {
			log.Warn("skipping footprint text", "footprint", fpName, "err", err)
			continue
		}
		switch kind {
		case "reference":
			footprint.Reference = text.Text
		case "value":
			footprint.Value = text.Text
		}
		footprint.Texts = append(footprint.Texts, *text)
	}

	// KiCad 8 moved them to properties, which are drawn when they carry a layer
	for _, propNode := range sexp.FindAllNodes(node, "property") {
		propName, err := sexp.GetString(propNode, 1)
		if err != nil {
			continue
		}
		propValue, _ := sexp.GetString(propNode, 2)

		switch propName {
		case "Reference":
			footprint.Reference = propValue
		case "Value":
			footprint.Value = propValue
		}

		if _, hasLayer := sexp.FindNode(propNode, "layer"); !hasLayer {
			continue
		}
		if _, hasAt := sexp.FindNode(propNode, "at"); !hasAt {
			continue
		}
		text, err := parseText(propNode, strings.ToLower(propName), 2)
		if err != nil {
			log.Warn("skipping footprint property", "footprint", fpName, "property", propName, "err", err)
			continue
		}
		footprint.Texts = append(footprint.Texts, *text)
	}

	for _, padNode := range sexp.FindAllNodes(node, "pad") {
		pad, err := parsePad(padNode, netMap)
		if err != nil {
			log.Warn("skipping pad", "footprint", fpName, "err", err)
			continue
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}

	footprint.Graphics = parseGraphics(node, "fp_")

	return footprint, nil
}

// parseFootprints extracts all footprint definitions from the root node
func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) ([]Footprint, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	footprintNodes := sexp.FindAllNodes(root, "footprint")
	// KiCad 6 files written by early nightlies still use "module"
	footprintNodes = append(footprintNodes, sexp.FindAllNodes(root, "module")...)

	footprints := make([]Footprint, 0, len(footprintNodes))
	for i, fpNode := range footprintNodes {
		footprint, err := parseFootprint(fpNode, netMap)
		if err != nil {
			log.Warn("skipping footprint", "index", i, "err", err)
			continue
		}
		footprints = append(footprints, *footprint)
	}

	return footprints, nil
}
