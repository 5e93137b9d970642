package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/padcheck/pkg/units"
)

type kind int

const (
	kindLength kind = iota
	kindRatio
	kindBool
	kindString
	kindInt
	kindRatioList
)

// field binds a document key to a Config member. Lengths carry the unit
// used when a value has none.
type field struct {
	key  string
	kind kind
	unit string

	length func(*Config) *float64
	ratio  func(*Config) *float64
	flag   func(*Config) *bool
	str    func(*Config) *string
	num    func(*Config) *int
	list   func(*Config) *[]float64
}

var fields = []field{
	{key: "via_to_via", kind: kindLength, unit: "mil", length: func(c *Config) *float64 { return &c.ViaToVia }},
	{key: "via_to_track", kind: kindLength, unit: "mil", length: func(c *Config) *float64 { return &c.ViaToTrack }},
	{key: "drill_to_edge", kind: kindLength, unit: "mm", length: func(c *Config) *float64 { return &c.DrillToEdge }},
	{key: "silk_to_pad", kind: kindLength, unit: "mm", length: func(c *Config) *float64 { return &c.SilkToPad }},
	{key: "silk_min_width", kind: kindLength, unit: "mm", length: func(c *Config) *float64 { return &c.SilkMinWidth }},
	{key: "text_min_height", kind: kindLength, unit: "mm", length: func(c *Config) *float64 { return &c.TextMinHeight }},
	{key: "text_min_width_to_height", kind: kindRatio, ratio: func(c *Config) *float64 { return &c.TextMinWidthToHeight }},
	{key: "slow_check", kind: kindBool, flag: func(c *Config) *bool { return &c.SlowCheck }},
	{key: "outline_thickness", kind: kindLength, unit: "mm", length: func(c *Config) *float64 { return &c.OutlineThickness }},
	{key: "draw_all_outlines", kind: kindBool, flag: func(c *Config) *bool { return &c.DrawAllOutlines }},
	{key: "debug_layer", kind: kindString, str: func(c *Config) *string { return &c.DebugLayer }},
	{key: "drill_min", kind: kindLength, unit: "mm", length: func(c *Config) *float64 { return &c.DrillMin }},
	{key: "drill_max", kind: kindLength, unit: "mm", length: func(c *Config) *float64 { return &c.DrillMax }},
	{key: "drill_set", kind: kindInt, num: func(c *Config) *int { return &c.DrillSet }},
	{key: "via_track_tolerance", kind: kindLength, unit: "nm", length: func(c *Config) *float64 { return &c.ViaTrackTolerance }},
	{key: "stencil_thicknesses_mil", kind: kindRatioList, list: func(c *Config) *[]float64 { return &c.StencilThicknessesMil }},
	{key: "min_area_ratio", kind: kindRatio, ratio: func(c *Config) *float64 { return &c.MinAreaRatio }},
	{key: "min_aspect_ratio", kind: kindRatio, ratio: func(c *Config) *float64 { return &c.MinAspectRatio }},
}

func lookupField(key string) (field, bool) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// Keys lists the recognised setting names.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	sort.Strings(keys)
	return keys
}

// Apply copies every key of a decoded document onto c.
func (c *Config) Apply(doc map[string]any) error {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f, ok := lookupField(k)
		if !ok {
			return fmt.Errorf("unknown setting %q", k)
		}
		if err := f.assign(c, doc[k]); err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return nil
}

// Set assigns one setting from its textual form, as given on a command line.
func (c *Config) Set(key, value string) error {
	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}

	var v any = value
	switch f.kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		v = b
	case kindRatioList:
		var list []any
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		v = list
	}

	if err := f.assign(c, v); err != nil {
		return fmt.Errorf("%s: %w", f.key, err)
	}
	return nil
}

// Get returns a setting in the textual form Set accepts.
func (c Config) Get(key string) (string, error) {
	f, ok := lookupField(key)
	if !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	switch v := f.value(&c).(type) {
	case []float64:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		return strings.Join(parts, ","), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (f field) assign(c *Config, v any) error {
	switch f.kind {
	case kindLength:
		nm, err := toLength(v, f.unit)
		if err != nil {
			return err
		}
		*f.length(c) = nm
	case kindRatio:
		r, err := toFloat(v)
		if err != nil {
			return err
		}
		*f.ratio(c) = r
	case kindBool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected boolean, got %T", v)
		}
		*f.flag(c) = b
	case kindString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		*f.str(c) = s
	case kindInt:
		n, err := toFloat(v)
		if err != nil {
			return err
		}
		if n != float64(int(n)) {
			return fmt.Errorf("expected integer, got %g", n)
		}
		*f.num(c) = int(n)
	case kindRatioList:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected list, got %T", v)
		}
		list := make([]float64, 0, len(items))
		for _, item := range items {
			r, err := toFloat(item)
			if err != nil {
				return err
			}
			list = append(list, r)
		}
		*f.list(c) = list
	}
	return nil
}

// value renders the member for encoding. Lengths keep their unit.
func (f field) value(c *Config) any {
	switch f.kind {
	case kindLength:
		return units.Format(*f.length(c), f.unit)
	case kindRatio:
		return *f.ratio(c)
	case kindBool:
		return *f.flag(c)
	case kindString:
		return *f.str(c)
	case kindInt:
		return *f.num(c)
	case kindRatioList:
		return append([]float64(nil), *f.list(c)...)
	}
	return nil
}

func toLength(v any, unit string) (float64, error) {
	if s, ok := v.(string); ok {
		return units.ToNanometers(s, unit)
	}
	n, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	factor, err := units.Factor(unit)
	if err != nil {
		return 0, err
	}
	return n * factor, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}
