package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/umlaut/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Generation     int
	Tick           int
	EvalTicks      int
	Population     int
	ChampionID     int
	ChampionScore  float64
	WinnerScore    float64
	Improved       bool
	Hyper          bool
	Speed          int
	FPS            int32
	TicksPerSecond float64
	Paused         bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Generation: %d | Tick: %d/%d | Population: %d", data.Generation, data.Tick, data.EvalTicks, data.Population),
		10, 35, 16, rl.LightGray,
	)

	champ := "none"
	if data.ChampionID >= 0 {
		champ = fmt.Sprintf("#%d (%s)", data.ChampionID, formatScore(data.ChampionScore))
	}
	last := formatScore(data.WinnerScore)
	if data.Improved {
		last += " *"
	}
	rl.DrawText(fmt.Sprintf("Champion: %s | Last winner: %s", champ, last), 10, 55, 16, rl.LightGray)

	mode := "Realtime"
	if data.Hyper {
		mode = fmt.Sprintf("Hyper %dx", data.Speed)
	}
	rl.DrawText(
		fmt.Sprintf("%s | FPS: %d | Ticks/s: %.0f", mode, data.FPS, data.TicksPerSecond),
		10, 75, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 95, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	height := int32(len(telemetry.Phases))*r.Theme.LineHeight + 3*r.Theme.LineHeight + 2*pad
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Generation Timing")
	y = r.DrawLabelValue(x, y, "avg", stats.AvgGeneration.String())
	y = r.DrawLabelValue(x, y, "gen/s", fmt.Sprintf("%.2f", stats.GenerationsPerSecond))

	for _, phase := range telemetry.Phases {
		color := rl.LightGray
		pct := stats.PhasePct[phase]
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-9s %5.1f%%", phase, pct), x, y, r.Theme.FontSize, color)
		y += r.Theme.LineHeight
	}
}

func formatScore(s float64) string {
	if math.IsInf(s, 1) || math.IsNaN(s) {
		return "-"
	}
	return fmt.Sprintf("%.3f", s)
}
