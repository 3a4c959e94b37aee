package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/umlaut/camera"
)

// ControlsLegend lists the keyboard and mouse bindings handled by HandleInput.
const ControlsLegend = "SPACE: Pause | H: Hyper | ,/.: Speed | TAB: Panel | N: Network | Wheel: Zoom | Right drag: Pan | R: Reset view"

// InputState carries view toggles between frames.
type InputState struct {
	ShowNetwork bool
}

// HandleInput applies keyboard and mouse input for one frame.
func HandleInput(ctl Controller, cam *camera.Camera, panel *ControlsPanel, state *InputState) {
	if rl.IsKeyPressed(rl.KeySpace) {
		ctl.SetPaused(!ctl.Paused())
	}
	if rl.IsKeyPressed(rl.KeyH) {
		ctl.SetHyper(!ctl.Hyper(), ctl.HyperSpeed())
	}
	if rl.IsKeyPressed(rl.KeyComma) {
		ctl.SetHyper(ctl.Hyper(), ctl.HyperSpeed()-1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		ctl.SetHyper(ctl.Hyper(), ctl.HyperSpeed()+1)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		panel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		state.ShowNetwork = !state.ShowNetwork
	}
	if rl.IsKeyPressed(rl.KeyR) {
		cam.Reset()
	}

	if rl.IsWindowResized() {
		cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}

	mouse := rl.GetMousePosition()
	if panel.Contains(mouse) {
		return
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := float32(1.1)
		if wheel < 0 {
			factor = 1 / factor
		}
		cam.ZoomBy(factor)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		cam.Pan(-d.X, -d.Y)
	}
}
