package renderer

// LayerConfig controls which layers the preview draws. Layers are visible
// unless hidden.
type LayerConfig struct {
	hidden map[string]bool
	only   map[string]bool
}

// NewLayerConfig returns a configuration showing every layer.
func NewLayerConfig() *LayerConfig {
	return &LayerConfig{hidden: make(map[string]bool)}
}

// SetVisible sets the visibility of a specific layer.
func (lc *LayerConfig) SetVisible(layer string, visible bool) {
	if lc.only != nil {
		lc.only[layer] = visible
		return
	}
	lc.hidden[layer] = !visible
}

// IsVisible reports whether layer is drawn.
func (lc *LayerConfig) IsVisible(layer string) bool {
	if lc == nil {
		return true
	}
	if lc.only != nil {
		return lc.only[layer]
	}
	return !lc.hidden[layer]
}

// ShowAll shows all layers.
func (lc *LayerConfig) ShowAll() {
	lc.hidden = make(map[string]bool)
	lc.only = nil
}

// ShowOnly shows only the specified layers, hiding all others.
func (lc *LayerConfig) ShowOnly(layers ...string) {
	lc.only = make(map[string]bool, len(layers))
	for _, layer := range layers {
		lc.only[layer] = true
	}
}

func (lc *LayerConfig) ShowCopperOnly() {
	lc.ShowOnly("F.Cu", "B.Cu", "In1.Cu", "In2.Cu", "In3.Cu", "In4.Cu", "Edge.Cuts")
}

func (lc *LayerConfig) ShowSilkscreenOnly() {
	lc.ShowOnly("F.SilkS", "B.SilkS", "F.Cu", "B.Cu", "Edge.Cuts")
}

func (lc *LayerConfig) ShowPasteOnly() {
	lc.ShowOnly("F.Paste", "B.Paste", "Edge.Cuts")
}
