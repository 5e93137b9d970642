package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/charmbracelet/log"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/padcheck/pkg/drilltable"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/renderer"
	"github.com/OpenTraceLab/padcheck/pkg/rules"
)

// checkButton is one of the Run buttons.
type checkButton struct {
	check string
	label string
	click widget.Clickable
}

// setting is an editable threshold.
type setting struct {
	key    string
	editor widget.Editor
}

// App drives the check dialog.
type App struct {
	window *app.Window
	ops    op.Ops

	th       *theme.Theme
	darkMode widget.Bool

	session *Session
	base    rules.Config // configuration before stored overrides
	prefs   Prefs
	path    string // preferences file

	settings  []*setting
	slowCheck widget.Bool
	outlines  widget.Bool
	drillSet  int
	drillMenu *menu.DropdownMenu
	drillBtn  widget.Clickable

	checks   []*checkButton
	stopBtn  widget.Clickable
	saveBtn  widget.Clickable
	clearBtn widget.Clickable
	fitBtn   widget.Clickable
	themeBtn widget.Clickable

	runIcon, stopIcon, saveIcon, clearIcon, fitIcon *widget.Icon

	settingsList widget.List
	console      widget.List

	camera   *renderer.Camera
	layers   *renderer.LayerConfig
	dragging bool
	lastDrag f32.Point
}

// New wires the window, theme and session together. cfg is the
// configuration from the command line; prefs overrides it.
func New(w *app.Window, session *Session, cfg rules.Config, prefs Prefs, prefsPath string) *App {
	a := &App{
		window:  w,
		th:      theme.NewTheme("", nil, true),
		session: session,
		base:    cfg,
		prefs:   prefs,
		path:    prefsPath,
		layers:  renderer.NewLayerConfig(),
		checks: []*checkButton{
			{check: "pad", label: "Pad Info"},
			{check: "stencil", label: "Stencil"},
			{check: "drill", label: "Drill"},
			{check: "silk", label: "Silk"},
			{check: "all", label: "All"},
		},
	}
	a.settingsList.Axis = layout.Vertical
	a.console.Axis = layout.Vertical
	a.console.ScrollToEnd = true

	if t, ok := renderer.ThemeByName(prefs.Theme); ok {
		renderer.SetTheme(t)
	}
	a.darkMode.Value = prefs.DarkMode
	a.applyPalette()

	effective := cfg
	if err := prefs.Apply(&effective); err != nil {
		log.Warn("ignoring stored settings", "err", err)
		session.State.Append(0, []string{"Stored settings ignored: " + err.Error()})
	}
	a.loadSettings(effective)

	a.runIcon = makeIcon(icons.AVPlayArrow, "run")
	a.stopIcon = makeIcon(icons.AVStop, "stop")
	a.saveIcon = makeIcon(icons.ContentSave, "save")
	a.clearIcon = makeIcon(icons.ActionDelete, "clear")
	a.fitIcon = makeIcon(icons.ActionZoomIn, "fit")
	a.drillMenu = a.buildDrillMenu()

	session.Invalidate = a.invalidate
	return a
}

func makeIcon(data []byte, name string) *widget.Icon {
	icon, err := widget.NewIcon(data)
	if err != nil {
		log.Error("failed to load icon", "icon", name, "err", err)
		return nil
	}
	return icon
}

func (a *App) loadSettings(cfg rules.Config) {
	a.settings = a.settings[:0]
	for _, k := range rules.Keys() {
		v, _ := cfg.Get(k)
		switch k {
		case "slow_check":
			a.slowCheck.Value = cfg.SlowCheck
		case "draw_all_outlines":
			a.outlines.Value = cfg.DrawAllOutlines
		case "drill_set":
			a.drillSet = cfg.DrillSet
		default:
			s := &setting{key: k}
			s.editor.SingleLine = true
			s.editor.SetText(v)
			a.settings = append(a.settings, s)
		}
	}
}

// config reads the widgets back into a configuration.
func (a *App) config() (rules.Config, error) {
	cfg := a.base
	cfg.StencilThicknessesMil = append([]float64(nil), a.base.StencilThicknessesMil...)
	for _, s := range a.settings {
		if err := cfg.Set(s.key, strings.TrimSpace(s.editor.Text())); err != nil {
			return cfg, err
		}
	}
	cfg.SlowCheck = a.slowCheck.Value
	cfg.DrawAllOutlines = a.outlines.Value
	cfg.DrillSet = a.drillSet
	return cfg, cfg.Validate()
}

// Run processes window events until the window is closed.
func (a *App) Run() error {
	for {
		switch ev := a.window.Event().(type) {
		case app.DestroyEvent:
			a.session.Stop()
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&a.ops, ev)
			a.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

func (a *App) invalidate() {
	if a.window != nil {
		a.window.Invalidate()
	}
}

func (a *App) applyPalette() {
	if a.darkMode.Value {
		a.th.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 18, G: 20, B: 26, A: 255},
			Fg:         color.NRGBA{R: 233, G: 236, B: 245, A: 255},
			ContrastBg: color.NRGBA{R: 120, G: 150, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 12, G: 16, B: 24, A: 255},
			Bg2:        color.NRGBA{R: 34, G: 40, B: 50, A: 255},
		})
		return
	}
	a.th.WithPalette(theme.Palette{
		Bg:         color.NRGBA{R: 245, G: 247, B: 253, A: 255},
		Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
		ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Bg2:        color.NRGBA{R: 225, G: 230, B: 244, A: 255},
	})
}

func (a *App) buildDrillMenu() *menu.DropdownMenu {
	sets := drilltable.Sets()
	opts := make([]menu.MenuOption, 0, len(sets))
	for i, set := range sets {
		idx, label := i, set.Name
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				a.drillSet = idx
				a.invalidate()
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, label)
				if idx == a.drillSet {
					lbl.Color = th.Palette.ContrastBg
				}
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(260)
	return drop
}

func (a *App) handleClicks(gtx layout.Context) {
	for _, b := range a.checks {
		if b.click.Clicked(gtx) {
			a.start(b.check)
		}
	}
	if a.stopBtn.Clicked(gtx) {
		a.session.Stop()
	}
	if a.clearBtn.Clicked(gtx) {
		a.session.State.ClearConsole()
	}
	if a.saveBtn.Clicked(gtx) {
		a.save()
	}
	if a.fitBtn.Clicked(gtx) && a.camera != nil {
		a.camera.Fit(a.session.Board.Bounds())
	}
	if a.themeBtn.Clicked(gtx) {
		next := (renderer.CurrentTheme + 1) % renderer.ColorTheme(len(renderer.ThemeNames))
		renderer.SetTheme(next)
		a.prefs.Theme = renderer.ThemeNames[next]
	}
	if a.darkMode.Update(gtx) {
		a.prefs.DarkMode = a.darkMode.Value
		a.applyPalette()
	}
}

func (a *App) start(check string) {
	cfg, err := a.config()
	if err != nil {
		a.session.State.SetStatus("Invalid settings")
		a.session.State.Append(0, []string{"Error: " + err.Error()})
		return
	}
	if _, err := a.session.Run(context.Background(), check, cfg); err != nil {
		a.session.State.SetStatus(err.Error())
	}
}

func (a *App) save() {
	cfg, err := a.config()
	if err != nil {
		a.session.State.SetStatus("Not saved: " + err.Error())
		return
	}
	a.prefs.Remember(cfg, a.base)
	if err := SavePrefs(a.path, a.prefs); err != nil {
		log.Error("failed to save preferences", "path", a.path, "err", err)
		a.session.State.SetStatus(err.Error())
		return
	}
	a.session.State.SetStatus("Saved " + a.path)
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	a.handleClicks(gtx)
	state := a.session.State.Snapshot()

	paint.FillShape(gtx.Ops, a.th.Palette.Bg, clip.Rect{Max: gtx.Constraints.Max}.Op())

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutToolbar(gtx, state)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					width := gtx.Dp(unit.Dp(300))
					gtx.Constraints.Min.X = width
					gtx.Constraints.Max.X = width
					return a.layoutPanel(gtx, a.layoutSettings)
				}),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
						layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
							return a.layoutPreview(gtx, state)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							height := gtx.Dp(unit.Dp(240))
							gtx.Constraints.Min.Y = height
							gtx.Constraints.Max.Y = height
							return a.layoutConsole(gtx, state)
						}),
					)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutStatus(gtx, state)
		}),
	)
}

func (a *App) iconButton(gtx layout.Context, click *widget.Clickable, icon *widget.Icon, label string) layout.Dimensions {
	if icon == nil {
		return material.Button(a.th.Theme, click, label).Layout(gtx)
	}
	btn := material.IconButton(a.th.Theme, click, icon, label)
	btn.Size = unit.Dp(20)
	btn.Inset = layout.UniformInset(unit.Dp(8))
	return btn.Layout(gtx)
}

func (a *App) layoutToolbar(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	children := make([]layout.FlexChild, 0, len(a.checks)*2+12)
	for _, b := range a.checks {
		b := b
		children = append(children,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if state.Running {
					gtx = gtx.Disabled()
				}
				btn := material.Button(a.th.Theme, &b.click, "Run "+b.label)
				btn.Inset = layout.UniformInset(unit.Dp(8))
				return btn.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
		)
	}
	children = append(children,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !state.Running {
				gtx = gtx.Disabled()
			}
			return a.iconButton(gtx, &a.stopBtn, a.stopIcon, "Stop")
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Center.Layout(gtx, material.ProgressBar(a.th.Theme, state.Fraction()).Layout)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.iconButton(gtx, &a.fitBtn, a.fitIcon, "Fit")
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.iconButton(gtx, &a.clearBtn, a.clearIcon, "Clear console")
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.iconButton(gtx, &a.saveBtn, a.saveIcon, "Save settings")
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.Button(a.th.Theme, &a.themeBtn, renderer.ThemeNames[renderer.CurrentTheme]).Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
		layout.Rigid(material.Switch(a.th.Theme, &a.darkMode, "Dark mode").Layout),
	)
	return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
	})
}

func (a *App) layoutPanel(gtx layout.Context, body layout.Widget) layout.Dimensions {
	return layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			rr := gtx.Dp(unit.Dp(10))
			paint.FillShape(gtx.Ops, a.th.Bg2, clip.RRect{
				Rect: image.Rectangle{Max: gtx.Constraints.Max},
				NW:   rr, NE: rr, SW: rr, SE: rr,
			}.Op(gtx.Ops))
			return layout.Dimensions{Size: gtx.Constraints.Max}
		}),
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(10)).Layout(gtx, body)
		}),
	)
}

func (a *App) layoutSettings(gtx layout.Context) layout.Dimensions {
	gtx.Constraints.Min = gtx.Constraints.Max
	// Editors, then drill set, slow check and outlines.
	n := len(a.settings) + 3
	return material.List(a.th.Theme, &a.settingsList).Layout(gtx, n, func(gtx layout.Context, i int) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			switch i - len(a.settings) {
			case 0:
				return a.layoutDrillSet(gtx)
			case 1:
				return material.CheckBox(a.th.Theme, &a.slowCheck, "Slow silk check").Layout(gtx)
			case 2:
				return material.CheckBox(a.th.Theme, &a.outlines, "Draw all outlines").Layout(gtx)
			}
			s := a.settings[i]
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(material.Caption(a.th.Theme, strings.ReplaceAll(s.key, "_", " ")).Layout),
				layout.Rigid(material.Editor(a.th.Theme, &s.editor, s.key).Layout),
			)
		})
	})
}

func (a *App) layoutDrillSet(gtx layout.Context) layout.Dimensions {
	label := fmt.Sprintf("drill set %d", a.drillSet)
	if set, err := drilltable.Lookup(a.drillSet); err == nil {
		label = set.Name
	}
	if a.drillBtn.Clicked(gtx) {
		a.drillMenu.ToggleVisibility(gtx)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(material.Caption(a.th.Theme, "drill set").Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			dims := material.Button(a.th.Theme, &a.drillBtn, label).Layout(gtx)
			a.drillMenu.Layout(gtx, a.th)
			return dims
		}),
	)
}

func (a *App) layoutPreview(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	size := gtx.Constraints.Max
	if a.camera == nil {
		a.camera = renderer.NewCamera(size.X, size.Y)
		a.camera.Fit(a.session.Board.Bounds())
	}
	a.handleViewport(gtx)

	area := clip.Rect{Max: size}.Push(gtx.Ops)
	event.Op(gtx.Ops, a)
	area.Pop()

	return renderer.Render(gtx, a.camera, renderer.Scene{
		Board:        a.session.Board,
		Flags:        state.Flags,
		Outlines:     state.Outlines,
		Layers:       a.layers,
		DimUnflagged: true,
	})
}

func (a *App) handleViewport(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "F"},
			key.Filter{Name: "R"},
			key.Filter{Name: key.NameSpace},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		switch ke.Name {
		case "F":
			a.camera.Flip()
		case "R":
			a.camera.Rotate(90)
		case key.NameSpace:
			a.camera.Fit(a.session.Board.Bounds())
		}
		gtx.Execute(op.InvalidateCmd{})
	}

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  a,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			a.dragging = true
			a.lastDrag = pe.Position
		case pointer.Drag:
			if a.dragging {
				d := pe.Position.Sub(a.lastDrag)
				a.camera.Pan(float64(d.X), float64(d.Y))
				a.lastDrag = pe.Position
			}
		case pointer.Release:
			a.dragging = false
		case pointer.Scroll:
			if pe.Scroll.Y != 0 {
				a.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), 1.0-float64(pe.Scroll.Y)*0.01)
			}
		}
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (a *App) layoutConsole(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	paint.FillShape(gtx.Ops, a.th.Bg2, clip.Rect{Max: gtx.Constraints.Max}.Op())
	return layout.Inset{Left: unit.Dp(12), Right: unit.Dp(12), Top: unit.Dp(6), Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = gtx.Constraints.Max
		return material.List(a.th.Theme, &a.console).Layout(gtx, len(state.Lines), func(gtx layout.Context, i int) layout.Dimensions {
			line := material.Body2(a.th.Theme, strings.ReplaceAll(state.Lines[i], "\t", "    "))
			line.Font.Typeface = font.Typeface("Go Mono")
			return line.Layout(gtx)
		})
	})
}

func (a *App) layoutStatus(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	status := state.Status
	if state.Running && state.Total > 0 {
		status = fmt.Sprintf("%s (%d/%d)", status, state.Progress, state.Total)
	}
	if !state.Running && state.Flags != nil {
		status = fmt.Sprintf("%s; %d selected", status, state.Flags.Len())
	}
	return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(4), Bottom: unit.Dp(6)}.Layout(gtx,
		material.Caption(a.th.Theme, status).Layout)
}
