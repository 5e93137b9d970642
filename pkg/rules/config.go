// Package rules holds the check thresholds and reads them from TOML, YAML,
// JSON and KiCad custom rule (.kicad_dru) files.
package rules

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/padcheck/pkg/drilltable"
)

// Config is the full set of thresholds. Lengths are nanometres.
type Config struct {
	ViaToVia             float64
	ViaToTrack           float64
	DrillToEdge          float64
	SilkToPad            float64
	SilkMinWidth         float64
	TextMinHeight        float64
	TextMinWidthToHeight float64

	SlowCheck        bool
	OutlineThickness float64
	DrawAllOutlines  bool
	DebugLayer       string

	DrillMin float64
	DrillMax float64
	DrillSet int

	// ViaTrackTolerance hides via-track distances this close to zero.
	ViaTrackTolerance float64

	StencilThicknessesMil []float64
	MinAreaRatio          float64
	MinAspectRatio        float64
}

// Default returns the built-in thresholds.
func Default() Config {
	return Config{
		ViaToVia:             12 * 25400,
		ViaToTrack:           12 * 25400,
		DrillToEdge:          300000,
		SilkToPad:            0,
		SilkMinWidth:         150000,
		TextMinHeight:        800000,
		TextMinWidthToHeight: 5,

		DebugLayer: "Eco2.User",

		DrillMin: 0,
		DrillMax: 1000e6,
		DrillSet: 0,

		ViaTrackTolerance: 1000,

		StencilThicknessesMil: []float64{2, 3, 4, 5, 6, 7},
		MinAreaRatio:          0.66,
		MinAspectRatio:        1.5,
	}
}

// Validate reports every out-of-range threshold.
func (c Config) Validate() error {
	var errs []error

	for _, f := range fields {
		if f.kind != kindLength {
			continue
		}
		if v := *f.length(&c); v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative (got %g nm)", f.key, v))
		}
	}

	ratios := map[string]float64{
		"text_min_width_to_height": c.TextMinWidthToHeight,
		"min_area_ratio":           c.MinAreaRatio,
		"min_aspect_ratio":         c.MinAspectRatio,
	}
	for key, v := range ratios {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive (got %g)", key, v))
		}
	}
	for _, t := range c.StencilThicknessesMil {
		if t <= 0 {
			errs = append(errs, fmt.Errorf("stencil thickness must be positive (got %g mil)", t))
		}
	}

	if c.DrillMin > c.DrillMax {
		errs = append(errs, fmt.Errorf("drill_min %g nm exceeds drill_max %g nm", c.DrillMin, c.DrillMax))
	}
	if _, err := drilltable.Lookup(c.DrillSet); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Drills returns the configured standard drill set.
func (c Config) Drills() (drilltable.Set, error) {
	return drilltable.Lookup(c.DrillSet)
}
