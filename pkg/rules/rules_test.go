package rules

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 304800.0, cfg.ViaToVia)
	assert.Equal(t, 304800.0, cfg.ViaToTrack)
	assert.Equal(t, 300000.0, cfg.DrillToEdge)
	assert.Equal(t, 150000.0, cfg.SilkMinWidth)
	assert.Equal(t, 800000.0, cfg.TextMinHeight)
	assert.Equal(t, 5.0, cfg.TextMinWidthToHeight)
	assert.Equal(t, "Eco2.User", cfg.DebugLayer)
	assert.Equal(t, 1000.0, cfg.ViaTrackTolerance)
	assert.Equal(t, []float64{2, 3, 4, 5, 6, 7}, cfg.StencilThicknessesMil)
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load("testdata/board.toml")
	require.NoError(t, err)

	assert.InDelta(t, 254000, cfg.ViaToVia, 1e-6)
	assert.Equal(t, 500000.0, cfg.DrillToEdge)
	assert.InDelta(t, 120000, cfg.SilkMinWidth, 1e-6)
	assert.True(t, cfg.SlowCheck)
	assert.Equal(t, 2, cfg.DrillSet)
	assert.Equal(t, []float64{4, 5}, cfg.StencilThicknessesMil)

	// untouched keys keep their defaults
	assert.Equal(t, 304800.0, cfg.ViaToTrack)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load("testdata/board.yaml")
	require.NoError(t, err)

	assert.InDelta(t, 203200, cfg.ViaToTrack, 1e-6)
	assert.Equal(t, 1e6, cfg.TextMinHeight)
	assert.Equal(t, 6.0, cfg.TextMinWidthToHeight)
	assert.Equal(t, "Eco1.User", cfg.DebugLayer)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load("testdata/board.json")
	require.NoError(t, err)

	assert.InDelta(t, 100000, cfg.SilkToPad, 1e-6)
	assert.Equal(t, 0.7, cfg.MinAreaRatio)
	assert.True(t, cfg.DrawAllOutlines)
}

func TestLoadKiCadRules(t *testing.T) {
	cfg, err := Load("testdata/fab.kicad_dru")
	require.NoError(t, err)

	assert.InDelta(t, 250000, cfg.ViaToVia, 1e-6)
	assert.InDelta(t, 400000, cfg.DrillToEdge, 1e-6)
	assert.InDelta(t, 200000, cfg.ViaToTrack, 1e-6, "pad clearance rule must not apply")
	assert.InDelta(t, 200000, cfg.DrillMin, 1e-6)
	assert.InDelta(t, 6.3e6, cfg.DrillMax, 1e-6)
	assert.InDelta(t, 100000, cfg.SilkMinWidth, 1e-6)
	assert.InDelta(t, 700000, cfg.TextMinHeight, 1e-6)
	assert.InDelta(t, 50000, cfg.SilkToPad, 1e-6)
}

func TestSchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", `via_to_moon = "1 mm"`},
		{"bad length", `via_to_via = "twelve"`},
		{"wrong type", `slow_check = "yes"`},
		{"negative set", `drill_set = -1`},
		{"empty thicknesses", `stencil_thicknesses_mil = []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.Read(strings.NewReader(tt.doc), FormatTOML)
			require.Error(t, err)
			assert.Equal(t, Default(), cfg, "failed read must leave config untouched")
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.ViaToVia = -1
	cfg.MinAreaRatio = 0
	cfg.DrillMin = 2e6
	cfg.DrillMax = 1e6
	cfg.DrillSet = 99

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "via_to_via")
	assert.Contains(t, msg, "min_area_ratio")
	assert.Contains(t, msg, "drill_min")
	assert.Contains(t, msg, "drill set 99")
}

func TestSet(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Set("via-to-via", "0.2mm"))
	require.NoError(t, cfg.Set("slow_check", "true"))
	require.NoError(t, cfg.Set("drill_set", "3"))
	require.NoError(t, cfg.Set("stencil_thicknesses_mil", "4, 5,6"))
	require.NoError(t, cfg.Set("via_to_track", "10"))

	assert.Equal(t, 200000.0, cfg.ViaToVia)
	assert.True(t, cfg.SlowCheck)
	assert.Equal(t, 3, cfg.DrillSet)
	assert.Equal(t, []float64{4, 5, 6}, cfg.StencilThicknessesMil)
	assert.InDelta(t, 254000, cfg.ViaToTrack, 1e-6)

	assert.Error(t, cfg.Set("nope", "1"))
	assert.Error(t, cfg.Set("slow_check", "maybe"))
	assert.Error(t, cfg.Set("drill_set", "1.5"))
}

func TestGet(t *testing.T) {
	cfg := Default()
	v, err := cfg.Get("via_to_via")
	require.NoError(t, err)
	assert.Equal(t, "12.000 mil", v)

	v, err = cfg.Get("stencil-thicknesses-mil")
	require.NoError(t, err)
	assert.Equal(t, "2,3,4,5,6,7", v)

	_, err = cfg.Get("nope")
	assert.Error(t, err)

	for _, key := range Keys() {
		want, err := cfg.Get(key)
		require.NoError(t, err, key)

		other := Default()
		require.NoError(t, other.Set(key, want), key)
		got, err := other.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			want := Default()
			want.ViaToVia = 254000
			want.SlowCheck = true

			var buf bytes.Buffer
			require.NoError(t, want.Encode(&buf, format))

			got := Default()
			got.ViaToVia = 0
			require.NoError(t, got.Read(&buf, format))
			assert.InDelta(t, want.ViaToVia, got.ViaToVia, 1e-6)
			assert.Equal(t, want.SlowCheck, got.SlowCheck)
			assert.Equal(t, want.StencilThicknessesMil, got.StencilThicknessesMil)
		})
	}
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("x/board.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatOf("board.ini")
	assert.Error(t, err)
}
