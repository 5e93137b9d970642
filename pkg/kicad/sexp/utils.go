package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp/kicadsexp"
)

// FindNode returns the first child list whose head symbol is key, or a
// bare child symbol equal to key.
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	if s == nil || s.IsLeaf() {
		return nil, false
	}

	for _, item := range SexpToSlice(s) {
		if item == nil {
			continue
		}
		if item.IsLeaf() {
			if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == key {
				return item, true
			}
			continue
		}
		if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == key {
			return item, true
		}
	}

	return nil, false
}

// FindAllNodes finds all child lists with the given head symbol.
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	if s == nil || s.IsLeaf() {
		return results
	}

	for _, item := range SexpToSlice(s) {
		if item == nil || item.IsLeaf() {
			continue
		}
		if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == key {
			results = append(results, item)
		}
	}

	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	items := SexpToSlice(s)
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// SexpToSlice converts an s-expression list to a Go slice. Lists from
// this module's parser are returned directly; anything else is walked with
// Head/Tail.
func SexpToSlice(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if s == nil || s.IsLeaf() {
		return nil
	}
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Elements()
	}

	var items []kicadsexp.Sexp
	for s != nil && !s.IsLeaf() {
		n := s.LeafCount()
		if n == 0 {
			break
		}
		if head := s.Head(); head != nil {
			items = append(items, head)
		}
		if n <= 1 {
			break
		}
		s = s.Tail()
	}
	return items
}

// GetString extracts the atom at index. Index 0 is the key.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	if s == nil || s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}

	items := SexpToSlice(s)
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	if sym, ok := items[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at index %d, got %T", index, items[index])
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}
	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}
	return val, nil
}

// FloatField returns the first value of the child (key v), or def when
// the child is absent or malformed.
func FloatField(s kicadsexp.Sexp, key string, def float64) float64 {
	node, ok := FindNode(s, key)
	if !ok {
		return def
	}
	v, err := GetFloat(node, 1)
	if err != nil {
		return def
	}
	return v
}

// GetPosition extracts a PositionAngle from an (at X Y [angle]) node.
func GetPosition(s kicadsexp.Sexp) (PositionAngle, error) {
	key, err := GetString(s, 0)
	if err != nil {
		return PositionAngle{}, err
	}
	if key != "at" {
		return PositionAngle{}, fmt.Errorf("expected 'at', got %q", key)
	}

	pos, err := GetPositionXY(s)
	if err != nil {
		return PositionAngle{}, err
	}
	result := PositionAngle{Position: pos}

	// angle is optional; "unlocked" may follow in its place
	if angle, err := GetFloat(s, 3); err == nil {
		result.Angle = Angle(angle)
	}
	return result, nil
}

// GetPositionXY extracts X,Y from (start X Y), (end X Y), (center X Y) etc.
func GetPositionXY(s kicadsexp.Sexp) (Position, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}
	y, err := GetFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}
	return Position{X: x, Y: y}, nil
}

// GetSize extracts (size W H).
func GetSize(s kicadsexp.Sexp) (Size, error) {
	w, err := GetFloat(s, 1)
	if err != nil {
		return Size{}, fmt.Errorf("failed to parse width: %w", err)
	}
	h, err := GetFloat(s, 2)
	if err != nil {
		return Size{}, fmt.Errorf("failed to parse height: %w", err)
	}
	return Size{Width: w, Height: h}, nil
}

// GetStroke extracts stroke properties from (stroke ...). KiCad 6 early
// files use a bare (width W) on the parent instead, so callers fall back
// to that.
func GetStroke(s kicadsexp.Sexp) Stroke {
	stroke := Stroke{Width: 0.15, Type: "solid"}
	if s == nil || s.IsLeaf() {
		return stroke
	}
	stroke.Width = FloatField(s, "width", stroke.Width)
	if typeNode, ok := FindNode(s, "type"); ok {
		if t, err := GetString(typeNode, 1); err == nil {
			stroke.Type = t
		}
	}
	return stroke
}

// GetLayers extracts (layer "F.Cu") or (layers "F.Cu" "B.Cu" "*.Mask").
func GetLayers(s kicadsexp.Sexp) ([]string, error) {
	keyword, err := GetString(s, 0)
	if err != nil {
		return nil, err
	}

	switch keyword {
	case "layer":
		layer, err := GetString(s, 1)
		if err != nil {
			return nil, err
		}
		return []string{layer}, nil
	case "layers":
		var layers []string
		for _, item := range GetListItems(s) {
			if sym, ok := item.(kicadsexp.Symbol); ok && sym != "" {
				layers = append(layers, string(sym))
			}
		}
		return layers, nil
	}
	return nil, fmt.Errorf("expected 'layer' or 'layers', got %q", keyword)
}

// HasSymbol checks if a list contains a specific bare symbol, or a
// (symbol yes) child as newer files write it.
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range SexpToSlice(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
		if !item.IsLeaf() {
			if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == symbol {
				v, err := GetString(item, 1)
				return err != nil || v == "yes"
			}
		}
	}
	return false
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil node")
	}
	if s.IsLeaf() {
		if sym, ok := s.(kicadsexp.Symbol); ok {
			return string(sym), nil
		}
		return "", fmt.Errorf("expected symbol leaf")
	}

	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at head of list")
}

// GetEffects extracts text effects from an (effects ...) node
func GetEffects(s kicadsexp.Sexp) Effects {
	effects := Effects{Justify: Justify{Horizontal: "center", Vertical: "center"}}
	if s == nil || s.IsLeaf() {
		return effects
	}

	if fontNode, ok := FindNode(s, "font"); ok {
		effects.Font = GetFont(fontNode)
	}
	if justifyNode, ok := FindNode(s, "justify"); ok {
		effects.Justify = GetJustify(justifyNode)
	}
	effects.Hide = HasSymbol(s, "hide")
	return effects
}

// GetFont extracts font properties from a (font ...) node. Missing sizes
// take KiCad's defaults of 1 mm and 0.15 mm.
func GetFont(s kicadsexp.Sexp) Font {
	font := Font{Size: Size{Width: 1, Height: 1}, Thickness: 0.15}

	if sizeNode, ok := FindNode(s, "size"); ok {
		if size, err := GetSize(sizeNode); err == nil {
			// KiCad writes (size H W)
			font.Size = Size{Width: size.Height, Height: size.Width}
		}
	}
	font.Thickness = FloatField(s, "thickness", font.Thickness)
	font.Bold = HasSymbol(s, "bold")
	font.Italic = HasSymbol(s, "italic")
	return font
}

// GetJustify extracts justification from a (justify ...) node
func GetJustify(s kicadsexp.Sexp) Justify {
	justify := Justify{Horizontal: "center", Vertical: "center"}

	for _, item := range GetListItems(s) {
		sym, ok := item.(kicadsexp.Symbol)
		if !ok {
			continue
		}
		switch string(sym) {
		case "left", "right":
			justify.Horizontal = string(sym)
		case "top", "bottom":
			justify.Vertical = string(sym)
		case "mirror":
			justify.Mirror = true
		}
	}
	return justify
}
