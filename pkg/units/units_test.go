package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNanometers(t *testing.T) {
	tests := []struct {
		input string
		def   string
		want  float64
	}{
		{"12 mil", "mm", 304800},
		{"12mil", "mm", 304800},
		{"0.3mm", "mil", 300000},
		{"0.3", "mm", 300000},
		{"5", "", 5},
		{"", "mm", 0},
		{"1.5 um", "mm", 1500},
		{"2 µm", "mm", 2000},
		{"1 in", "mm", 25.4e6},
		{`1"`, "mm", 25.4e6},
		{"1'", "mm", 304.8e6},
		{"3 dmils", "mm", 7620},
		{"10 cmil", "mm", 2540},
		{"-0.05 mm", "mm", -50000},
		{".5mm", "mm", 500000},
		{"1e-3 m", "mm", 1e6},
		{"2 MM", "mm", 2e6},
		{"4 decimicrons", "mm", 400},
		{"1 km", "mm", 1e12},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ToNanometers(tt.input, tt.def)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6*max(1, tt.want))
		})
	}
}

func TestSquaredUnits(t *testing.T) {
	for _, in := range []string{"1 mm2", "1 mm^2", "1 mm**2"} {
		got, err := ToNanometers(in, "")
		require.NoError(t, err, in)
		assert.Equal(t, 1e12, got, in)
	}

	got, err := ToNanometers("2 mil^2", "")
	require.NoError(t, err)
	assert.InDelta(t, 2*25400.0*25400.0, got, 1e-3)
}

func TestDefaultSquaredUnit(t *testing.T) {
	got, err := ToNanometers("3", "um2")
	require.NoError(t, err)
	assert.Equal(t, 3e6, got)
}

func TestParseErrors(t *testing.T) {
	_, err := ToNanometers("12 furlongs", "mm")
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = ToNanometers("mm", "mm")
	assert.Error(t, err)

	_, err = ToNanometers("1.2.3", "mm")
	assert.Error(t, err)

	_, err = ToNanometers("4", "bogus")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestParse(t *testing.T) {
	m, err := Parse("  7.5 mils ")
	require.NoError(t, err)
	assert.Equal(t, Measurement{Value: 7.5, Unit: "mils"}, m)
	assert.Equal(t, "7.5 mils", m.String())
}

func TestConversions(t *testing.T) {
	assert.Equal(t, 0.3, MM(300000))
	assert.Equal(t, 12.0, Mils(304800))
	assert.Equal(t, "0.300 mm", Format(300000, "mm"))
	assert.Equal(t, "12.000 mil", Format(304800, "mil"))
	assert.True(t, Known("thou"))
	assert.False(t, Known("parsec"))
}
