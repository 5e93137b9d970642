package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

func TestLoadPrefsMissingFile(t *testing.T) {
	p, err := LoadPrefs(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefs(), p)
	assert.Equal(t, "Classic", p.Theme)
}

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padcheck", "ui.json")
	want := Prefs{Theme: "Nord", DarkMode: true, Settings: map[string]string{"via_to_via": "10.000 mil"}}
	require.NoError(t, SavePrefs(path, want))

	got, err := LoadPrefs(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadPrefsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	p, err := LoadPrefs(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultPrefs(), p)
}

func TestPrefsApply(t *testing.T) {
	cfg := rules.Default()
	p := Prefs{Settings: map[string]string{
		"via_to_via": "0.2mm",
		"bogus":      "1",
		"slow_check": "true",
	}}

	err := p.Apply(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Equal(t, 200000.0, cfg.ViaToVia)
	assert.True(t, cfg.SlowCheck)
}

func TestPrefsRemember(t *testing.T) {
	base := rules.Default()
	cfg := base
	cfg.ViaToVia = 10 * 25400
	cfg.DrawAllOutlines = true

	var p Prefs
	p.Remember(cfg, base)
	assert.Equal(t, map[string]string{
		"via_to_via":        "10.000 mil",
		"draw_all_outlines": "true",
	}, p.Settings)

	restored := rules.Default()
	require.NoError(t, p.Apply(&restored))
	assert.Equal(t, cfg.ViaToVia, restored.ViaToVia)
	assert.True(t, restored.DrawAllOutlines)
}
