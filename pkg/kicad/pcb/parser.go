// Package pcb reads KiCad 6+ board files (.kicad_pcb) into plain records.
package pcb

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_pcb ...) expression
	root := sexps[0]

	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}

	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if generalNode, found := sexp.FindNode(root, "general"); found {
		general, err := parseGeneral(generalNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse general section: %w", err)
		}
		board.General = *general
	}

	if layersNode, found := sexp.FindNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	if setupNode, found := sexp.FindNode(root, "setup"); found {
		board.Setup = parseSetup(setupNode)
	}

	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	board.Nets = nets
	netMap := NewNetMap(board.Nets)

	board.Graphics = parseGraphics(root, "gr_")
	board.Texts = parseTexts(root)

	tracks, err := parseTracks(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tracks: %w", err)
	}
	board.Tracks = tracks

	vias, err := parseVias(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vias: %w", err)
	}
	board.Vias = vias

	footprints, err := parseFootprints(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprints: %w", err)
	}
	board.Footprints = footprints

	board.Zones = parseZones(root, netMap)

	log.Debug("parsed board",
		"version", board.Version,
		"footprints", len(board.Footprints),
		"pads", board.PadCount(),
		"vias", len(board.Vias),
		"tracks", len(board.Tracks))

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	// Validate version (must be KiCad 6.0 or later)
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	// Find generator/host node (optional in some files)
	gen := "unknown"
	if hostNode, found := sexp.FindNode(root, "host"); found {
		// Example: (host pcbnew "(6.0.0)")
		if toolName, err := sexp.GetString(hostNode, 1); err == nil {
			gen = toolName
		}
	} else if genNode, found := sexp.FindNode(root, "generator"); found {
		if generatorName, err := sexp.GetString(genNode, 1); err == nil {
			gen = generatorName
		}
	}

	return ver, gen, nil
}

// parseGeneral extracts general board properties
// Expected format: (general (thickness 1.6) (title "Board") ...)
func parseGeneral(node kicadsexp.Sexp) (*General, error) {
	general := &General{}

	if thicknessNode, found := sexp.FindNode(node, "thickness"); found {
		thickness, err := sexp.GetFloat(thicknessNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse thickness: %w", err)
		}
		general.Thickness = thickness
	}

	for key, dst := range map[string]*string{
		"title":   &general.Title,
		"date":    &general.Date,
		"rev":     &general.Revision,
		"company": &general.Company,
	} {
		if n, found := sexp.FindNode(node, key); found {
			if v, err := sexp.GetString(n, 1); err == nil {
				*dst = v
			}
		}
	}

	return general, nil
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node kicadsexp.Sexp) ([]Layer, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected (layers ...) list")
	}

	layerNodes := sexp.GetListItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer

	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}

		// Parse individual layer: (number "name" type ["user name"])
		number, err := sexp.GetInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}

		name, err := sexp.GetString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}

		layerType, err := sexp.GetString(layerNode, 2)
		if err != nil {
			layerType = "user"
		}

		userName, _ := sexp.GetString(layerNode, 3)

		layers = append(layers, Layer{
			Number:   number,
			Name:     name,
			Type:     layerType,
			UserName: userName,
		})
	}

	return layers, nil
}

// parseSetup extracts the board-wide mask and paste defaults
// Expected format: (setup (pad_to_mask_clearance 0.05) (pad_to_paste_clearance -0.02) ...)
func parseSetup(node kicadsexp.Sexp) Setup {
	return Setup{
		PadToMaskClearance:       sexp.FloatField(node, "pad_to_mask_clearance", 0),
		PadToPasteClearance:      sexp.FloatField(node, "pad_to_paste_clearance", 0),
		PadToPasteClearanceRatio: sexp.FloatField(node, "pad_to_paste_clearance_ratio", 0),
		SolderMaskMinWidth:       sexp.FloatField(node, "solder_mask_min_width", 0),
	}
}

// parseNets extracts net definitions from the root node
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root kicadsexp.Sexp) ([]Net, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	netNodes := sexp.FindAllNodes(root, "net")
	nets := make([]Net, 0, len(netNodes))

	for _, netNode := range netNodes {
		number, err := sexp.GetInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}

		// Name is optional (net 0 often has empty name)
		name, _ := sexp.GetString(netNode, 2)

		nets = append(nets, Net{Number: number, Name: name})
	}

	return nets, nil
}

// parseZones extracts zone outlines; fills are not needed.
func parseZones(root kicadsexp.Sexp, netMap *NetMap) []Zone {
	zoneNodes := sexp.FindAllNodes(root, "zone")
	zones := make([]Zone, 0, len(zoneNodes))

	for i, zoneNode := range zoneNodes {
		zone := Zone{Net: lookupNet(zoneNode, netMap)}

		if n, found := sexp.FindNode(zoneNode, "layers"); found {
			layers, _ := sexp.GetLayers(n)
			zone.Layers = layers
		} else if n, found := sexp.FindNode(zoneNode, "layer"); found {
			layers, _ := sexp.GetLayers(n)
			zone.Layers = layers
		}

		polyNode, found := sexp.FindNode(zoneNode, "polygon")
		if !found {
			log.Warn("zone has no outline", "index", i)
			continue
		}
		if pts, found := sexp.FindNode(polyNode, "pts"); found {
			zone.Outline = parsePoints(pts)
		}
		zones = append(zones, zone)
	}

	return zones
}

// lookupNet resolves a (net N) child through netMap.
func lookupNet(node kicadsexp.Sexp, netMap *NetMap) *Net {
	netNode, found := sexp.FindNode(node, "net")
	if !found || netMap == nil {
		return nil
	}
	num, err := sexp.GetInt(netNode, 1)
	if err != nil {
		return nil
	}
	net, _ := netMap.GetByNumber(num)
	return net
}
