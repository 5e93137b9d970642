package cmd

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixture = "../../../pkg/kicad/pcb/testdata/small.kicad_pcb"

// execute runs the root command with fresh global flags and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose, rulesFile, settings, quiet = false, "", nil, false
	failOnFlag, slowSilk, outlinePNG = false, false, ""
	rulesFormat = "toml"

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestChecksE2E runs each check against the fixture board
func TestChecksE2E(t *testing.T) {
	if _, err := os.Stat(fixture); err != nil {
		t.Skipf("fixture missing: %v", err)
	}

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "pad info",
			args: []string{"pad", "-q", fixture},
			wantContain: []string{
				"Number of pads: 4",
				"***** DONE *****",
				"No objects selected.",
			},
		},
		{
			name: "drill",
			args: []string{"drill", "-q", fixture},
			wantContain: []string{
				"***** DONE *****",
				"objects selected:",
				"via",
			},
		},
		{
			name:    "drill fails on flagged vias",
			args:    []string{"drill", "-q", "--fail-on-flag", fixture},
			wantErr: true,
		},
		{
			name:        "metric overrides",
			args:        []string{"drill", "-q", "--set", "via_to_via=0.1mm", "--set", "via_to_track=0.1mm", fixture},
			wantContain: []string{"***** DONE *****"},
		},
		{
			name:        "every check",
			args:        []string{"check", "-q", fixture},
			wantContain: []string{"Number of pads: 4", "***** DONE *****"},
		},
		{
			name:    "missing board",
			args:    []string{"pad", "-q", "does-not-exist.kicad_pcb"},
			wantErr: true,
		},
		{
			name:    "malformed override",
			args:    []string{"pad", "-q", "--set", "via_to_via", fixture},
			wantErr: true,
		},
		{
			name:    "unknown threshold",
			args:    []string{"pad", "-q", "--set", "no_such_rule=1", fixture},
			wantErr: true,
		},
		{
			name:    "missing board argument",
			args:    []string{"silk"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v\noutput:\n%s", err, tt.wantErr, out)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\ngot:\n%s", want, out)
				}
			}
		})
	}
}

func TestRulesE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "show toml",
			args:        []string{"rules", "show"},
			wantContain: []string{"via_to_via", "debug_layer = \"Eco2.User\""},
		},
		{
			name:        "show json",
			args:        []string{"rules", "show", "--format", "json"},
			wantContain: []string{"\"via_to_via\"", "\"debug_layer\": \"Eco2.User\""},
		},
		{
			name:        "show yaml",
			args:        []string{"rules", "show", "-f", "yaml"},
			wantContain: []string{"debug_layer: Eco2.User"},
		},
		{
			name:    "show unknown format",
			args:    []string{"rules", "show", "--format", "ini"},
			wantErr: true,
		},
		{
			name:        "keys",
			args:        []string{"rules", "keys"},
			wantContain: []string{"via_to_via", "12.000 mil", "drill_set"},
		},
		{
			name:        "keys with override",
			args:        []string{"rules", "keys", "--set", "debug_layer=Cmts.User"},
			wantContain: []string{"Cmts.User"},
		},
		{
			name:        "drill sets",
			args:        []string{"rules", "drills"},
			wantContain: []string{"* 0", "drills,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v\noutput:\n%s", err, tt.wantErr, out)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\ngot:\n%s", want, out)
				}
			}
		})
	}
}

func TestOutlinePNG(t *testing.T) {
	if _, err := os.Stat(fixture); err != nil {
		t.Skipf("fixture missing: %v", err)
	}

	path := filepath.Join(t.TempDir(), "outlines.png")
	if _, err := execute(t, "silk", "-q", "--outline-png", path, "--set", "draw_all_outlines=true", fixture); err != nil {
		t.Fatalf("silk: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 1600 || cfg.Height != 1200 {
		t.Errorf("size = %dx%d, want 1600x1200", cfg.Width, cfg.Height)
	}
}
