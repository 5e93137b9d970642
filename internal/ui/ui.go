// Package ui is the gio check dialog: threshold editors, one Run button per
// check, a progress bar, a console and a board preview that highlights the
// objects a check selected.
package ui

import (
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/padcheck/pkg/board"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

// Run opens the dialog for b and blocks until the window closes. The
// process exits when it does.
func Run(b *board.Snapshot, cfg rules.Config) error {
	path, err := PrefsPath()
	if err != nil {
		return err
	}
	prefs, err := LoadPrefs(path)
	if err != nil {
		log.Warn("using default preferences", "err", err)
	}

	go func() {
		w := new(app.Window)
		w.Option(app.Title("padcheck: "+b.Source), app.Size(unit.Dp(1280), unit.Dp(840)))
		ui := New(w, NewSession(b), cfg, prefs, path)
		if err := ui.Run(); err != nil {
			log.Error("ui", "err", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}
