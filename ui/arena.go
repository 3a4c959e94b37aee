package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/umlaut/camera"
	"github.com/pthm-cable/umlaut/components"
)

// ArenaAgent is one agent as drawn in the arena.
type ArenaAgent struct {
	Pos      components.Position
	Color    color.RGBA
	Champion bool
}

// ArenaView draws the arena from above. Height is shown as the agent's size.
type ArenaView struct {
	renderer  *Renderer
	Camera    *camera.Camera
	AgentSize float32 // world radius at height 0
	GridStep  float32 // world units between grid lines
}

// NewArenaView creates an arena view over cam.
func NewArenaView(cam *camera.Camera) *ArenaView {
	return &ArenaView{
		renderer:  NewRenderer(),
		Camera:    cam,
		AgentSize: 0.35,
		GridStep:  5,
	}
}

// Draw renders the grid, the target and every agent. The champion is drawn
// last so it stays on top.
func (a *ArenaView) Draw(target components.Position, agents []ArenaAgent) {
	a.drawGrid()

	champ := -1
	for i, ag := range agents {
		if ag.Champion {
			champ = i
			continue
		}
		a.drawAgent(ag)
	}
	a.drawTarget(target)
	if champ >= 0 {
		a.drawAgent(agents[champ])
	}
}

func (a *ArenaView) drawGrid() {
	cam := a.Camera
	if a.GridStep <= 0 || cam.WorldLength(a.GridStep) < 8 {
		return
	}
	minX, minZ := cam.ScreenToWorld(0, 0)
	maxX, maxZ := cam.ScreenToWorld(cam.ViewportW, cam.ViewportH)

	col := a.renderer.Theme.Grid
	for gx := float32(int(minX/a.GridStep)) * a.GridStep; gx <= maxX; gx += a.GridStep {
		sx, _ := cam.WorldToScreen(gx, 0)
		rl.DrawLine(int32(sx), 0, int32(sx), int32(cam.ViewportH), col)
	}
	for gz := float32(int(minZ/a.GridStep)) * a.GridStep; gz <= maxZ; gz += a.GridStep {
		_, sy := cam.WorldToScreen(0, gz)
		rl.DrawLine(0, int32(sy), int32(cam.ViewportW), int32(sy), col)
	}
}

func (a *ArenaView) drawAgent(ag ArenaAgent) {
	radius := a.AgentSize * (1 + max(ag.Pos.Y, 0)*0.1)
	if !a.Camera.IsVisible(ag.Pos.X, ag.Pos.Z, radius) {
		return
	}
	sx, sy := a.Camera.WorldToScreen(ag.Pos.X, ag.Pos.Z)
	r := max(a.Camera.WorldLength(radius), 2)

	rl.DrawCircle(int32(sx), int32(sy), r, rl.Color{R: ag.Color.R, G: ag.Color.G, B: ag.Color.B, A: ag.Color.A})
	if ag.Champion {
		rl.DrawCircleLines(int32(sx), int32(sy), r+3, a.renderer.Theme.Champion)
		rl.DrawCircleLines(int32(sx), int32(sy), r+4, a.renderer.Theme.Champion)
	}
}

func (a *ArenaView) drawTarget(t components.Position) {
	sx, sy := a.Camera.WorldToScreen(t.X, t.Z)
	col := a.renderer.Theme.Target
	const arm = 8
	rl.DrawLineEx(rl.Vector2{X: sx - arm, Y: sy}, rl.Vector2{X: sx + arm, Y: sy}, 2, col)
	rl.DrawLineEx(rl.Vector2{X: sx, Y: sy - arm}, rl.Vector2{X: sx, Y: sy + arm}, 2, col)
	rl.DrawCircleLines(int32(sx), int32(sy), arm+2, col)
}
