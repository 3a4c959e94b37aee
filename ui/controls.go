package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Controller is the set of live training controls the panel edits.
type Controller interface {
	Paused() bool
	SetPaused(bool)
	CycleTime() float64
	SetCycleTime(float64)
	Rates() (copyRate, mutateRate, evolveRate float32)
	SetRates(copyRate, mutateRate, evolveRate float32)
	Hyper() bool
	HyperSpeed() int
	SetHyper(on bool, speed int)
}

// Ranges of the panel sliders.
type ControlLimits struct {
	MinCycleTime, MaxCycleTime float32
	MaxHyperSpeed              int
}

// ControlsPanel renders the right-side panel of training controls.
type ControlsPanel struct {
	renderer *Renderer
	limits   ControlLimits
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32, limits ControlLimits) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		limits:   limits,
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point falls on the visible panel.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return p.X >= float32(c.x) && p.X <= float32(c.x+c.width) &&
		p.Y >= float32(c.y) && p.Y <= float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	return 7*46 + 2*c.renderer.Theme.Padding + 30
}

// Draw renders the panel and applies any edits to ctl.
func (c *ControlsPanel) Draw(ctl Controller) {
	if !c.visible {
		return
	}
	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	px := float32(c.x + pad)
	py := float32(c.y + pad)
	sliderW := float32(c.width - 2*pad - 50)

	rl.DrawText("Training", int32(px), int32(py), 16, rl.White)
	py += 26

	slider := func(label string, value, lo, hi float32, format string) float32 {
		rl.DrawText(label, int32(px), int32(py), r.Theme.FontSize, r.Theme.Label)
		py += 16
		v := gui.SliderBar(
			rl.Rectangle{X: px, Y: py, Width: sliderW, Height: 18},
			"", "",
			value, lo, hi,
		)
		rl.DrawText(fmt.Sprintf(format, v), int32(px+sliderW+6), int32(py+2), r.Theme.FontSize, r.Theme.Value)
		py += 30
		return v
	}

	cycle := float32(ctl.CycleTime())
	if v := slider("Cycle time (s)", cycle, c.limits.MinCycleTime, c.limits.MaxCycleTime, "%.1f"); v != cycle {
		ctl.SetCycleTime(float64(v))
	}

	cp, mu, ev := ctl.Rates()
	ncp := slider("Copy rate", cp, 0, 1, "%.3f")
	nmu := slider("Mutate rate", mu, 0, 1, "%.3f")
	nev := slider("Evolve rate", ev, 0, 1, "%.3f")
	if ncp != cp || nmu != mu || nev != ev {
		ctl.SetRates(ncp, nmu, nev)
	}

	hyper := ctl.Hyper()
	speed := ctl.HyperSpeed()
	if v := int(slider("Hyper speed (ticks/frame)", float32(speed), 0, float32(c.limits.MaxHyperSpeed), "%.0f")); v != speed {
		ctl.SetHyper(hyper, v)
	}

	btnW := (float32(c.width) - float32(3*pad)) / 2
	if gui.Button(rl.Rectangle{X: px, Y: py, Width: btnW, Height: 28}, toggleText(hyper, "Realtime", "Hyper")) {
		ctl.SetHyper(!hyper, speed)
	}
	if gui.Button(rl.Rectangle{X: px + btnW + float32(pad), Y: py, Width: btnW, Height: 28}, toggleText(ctl.Paused(), "Resume", "Pause")) {
		ctl.SetPaused(!ctl.Paused())
	}
}
