// Package drilltable holds the standard drill sets used to round specified
// hole sizes up to a drill that a fab house stocks.
package drilltable

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/OpenTraceLab/padcheck/pkg/units"
)

//go:embed sets.toml
var setsTOML string

// Drill is one standard drill bit.
type Drill struct {
	Name string  `toml:"name"`
	Size float64 `toml:"size"` // in the owning set's unit

	// Nanometers is Size converted at load time.
	Nanometers float64 `toml:"-"`
}

// Set is a named list of drills sorted by size.
type Set struct {
	Name   string  `toml:"name"`
	Unit   string  `toml:"unit"`
	Source string  `toml:"source"`
	Drills []Drill `toml:"drills"`
}

type document struct {
	Sets []Set `toml:"set"`
}

var (
	loadOnce sync.Once
	loaded   []Set
	loadErr  error
)

// Sets returns the embedded drill sets in file order. The slice is shared.
func Sets() []Set {
	loadOnce.Do(func() {
		loaded, loadErr = Decode(setsTOML)
	})
	if loadErr != nil {
		panic(fmt.Sprintf("drilltable: embedded sets: %v", loadErr))
	}
	return loaded
}

// Decode parses a TOML drill set document.
func Decode(data string) ([]Set, error) {
	var doc document
	if _, err := toml.Decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode drill sets: %w", err)
	}

	for i := range doc.Sets {
		set := &doc.Sets[i]
		factor, err := units.Factor(set.Unit)
		if err != nil {
			return nil, fmt.Errorf("drill set %q: %w", set.Name, err)
		}
		for j := range set.Drills {
			set.Drills[j].Nanometers = set.Drills[j].Size * factor
		}
		sort.SliceStable(set.Drills, func(a, b int) bool {
			return set.Drills[a].Nanometers < set.Drills[b].Nanometers
		})
	}
	return doc.Sets, nil
}

// Lookup returns the set at index i.
func Lookup(i int) (Set, error) {
	sets := Sets()
	if i < 0 || i >= len(sets) {
		return Set{}, fmt.Errorf("drill set %d out of range (0-%d)", i, len(sets)-1)
	}
	return sets[i], nil
}

// Closest returns the smallest drill at least nm wide. ok is false when the
// hole is larger than every drill in the set.
func (s Set) Closest(nm float64) (Drill, bool) {
	i := sort.Search(len(s.Drills), func(i int) bool {
		return s.Drills[i].Nanometers >= nm
	})
	if i == len(s.Drills) {
		return Drill{}, false
	}
	return s.Drills[i], true
}

// Range returns the smallest and largest drill in nanometres.
func (s Set) Range() (min, max float64) {
	if len(s.Drills) == 0 {
		return 0, 0
	}
	return s.Drills[0].Nanometers, s.Drills[len(s.Drills)-1].Nanometers
}
