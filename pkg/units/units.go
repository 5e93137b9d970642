// Package units parses user-entered lengths such as "12 mil", "0.3mm" or
// "1e-3 in" into nanometres.
package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// ErrUnknownUnit is returned for a unit outside the vocabulary.
var ErrUnknownUnit = errors.New("unknown unit")

// Measurement is a parsed number with its unit as written.
type Measurement struct {
	Value float64 `@Number`
	Unit  string  `@Unit?`
}

var parser = participle.MustBuild[Measurement](
	participle.Lexer(MeasurementLexer),
	participle.Elide("Whitespace"),
)

// Parse reads a measurement. The unit may be empty.
func Parse(s string) (Measurement, error) {
	m, err := parser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid measurement %q: %w", s, err)
	}
	return *m, nil
}

// Nanometers converts m, taking defaultUnit when m has none. Squared units
// yield square nanometres.
func (m Measurement) Nanometers(defaultUnit string) (float64, error) {
	unit := m.Unit
	if unit == "" {
		unit = defaultUnit
	}
	f, err := Factor(unit)
	if err != nil {
		return 0, err
	}
	return m.Value * f, nil
}

func (m Measurement) String() string {
	if m.Unit == "" {
		return fmt.Sprint(m.Value)
	}
	return fmt.Sprintf("%v %s", m.Value, m.Unit)
}

// ToNanometers parses s and converts it. An empty string is zero.
func ToNanometers(s, defaultUnit string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	m, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return m.Nanometers(defaultUnit)
}

// Factor returns nanometres per unit, squared for area units.
func Factor(unit string) (float64, error) {
	base, squared := splitSquared(unit)
	key := strings.ToLower(strings.NewReplacer("µ", "u", "μ", "u").Replace(base))

	f, ok := lengths[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	if squared {
		return f * f, nil
	}
	return f, nil
}

func splitSquared(unit string) (string, bool) {
	for _, suffix := range []string{"**2", "^2", "2"} {
		if base, ok := strings.CutSuffix(unit, suffix); ok && base != "" {
			return base, true
		}
	}
	return unit, false
}

// Known reports whether unit is in the vocabulary.
func Known(unit string) bool {
	_, err := Factor(unit)
	return err == nil
}

const (
	NanometersPerMM  = 1e6
	NanometersPerMil = 25400
)

// MM converts nanometres to millimetres.
func MM(nm float64) float64 { return nm / NanometersPerMM }

// Mils converts nanometres to thousandths of an inch.
func Mils(nm float64) float64 { return nm / NanometersPerMil }

// Format renders nm in unit with three decimals.
func Format(nm float64, unit string) string {
	f, err := Factor(unit)
	if err != nil {
		return fmt.Sprintf("%.0f nm", nm)
	}
	return fmt.Sprintf("%.3f %s", nm/f, unit)
}
