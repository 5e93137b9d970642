package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/renderer"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

// Prefs stores persistent dialog settings.
type Prefs struct {
	Theme    string `json:"theme"`
	DarkMode bool   `json:"dark_mode"`

	// Settings are threshold overrides keyed by rule name, in the textual
	// form rules.Config.Set accepts.
	Settings map[string]string `json:"settings,omitempty"`
}

// DefaultPrefs is used when no preference file exists yet.
func DefaultPrefs() Prefs {
	return Prefs{Theme: renderer.ThemeNames[renderer.ThemeClassic]}
}

// PrefsPath returns the preference file under the user config directory.
func PrefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "padcheck", "ui.json"), nil
}

// LoadPrefs reads preferences from path. A missing file yields defaults.
func LoadPrefs(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPrefs(), nil
	}
	if err != nil {
		return DefaultPrefs(), fmt.Errorf("failed to read preferences: %w", err)
	}

	p := DefaultPrefs()
	if err := json.Unmarshal(data, &p); err != nil {
		return DefaultPrefs(), fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	return p, nil
}

// SavePrefs writes preferences to path, creating its directory.
func SavePrefs(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Apply copies the stored overrides onto cfg. Every bad entry is reported;
// the good ones are still applied.
func (p Prefs) Apply(cfg *rules.Config) error {
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := cfg.Set(k, p.Settings[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remember records the settings of cfg that differ from base.
func (p *Prefs) Remember(cfg, base rules.Config) {
	p.Settings = make(map[string]string)
	for _, k := range rules.Keys() {
		v, _ := cfg.Get(k)
		if d, _ := base.Get(k); v != d {
			p.Settings[k] = v
		}
	}
}
