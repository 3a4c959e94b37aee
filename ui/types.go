// Package ui draws the training window: the arena seen from above, a HUD,
// the champion's network and a live control panel.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds the colors and metrics shared by every panel.
type Theme struct {
	Background rl.Color
	Grid       rl.Color
	Champion   rl.Color
	Target     rl.Color

	PanelBg, PanelBorder rl.Color
	Header, Label, Value rl.Color
	FontSize, HeaderSize int32
	Padding, LineHeight  int32
	LabelWidth           int32
}

// DefaultTheme returns the dark theme used by the training window.
func DefaultTheme() Theme {
	return Theme{
		Background:  rl.Color{R: 15, G: 18, B: 22, A: 255},
		Grid:        rl.Color{R: 35, G: 40, B: 48, A: 255},
		Champion:    rl.Gold,
		Target:      rl.Color{R: 240, G: 80, B: 80, A: 255},
		PanelBg:     rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder: rl.Color{R: 60, G: 70, B: 80, A: 255},
		Header:      rl.Yellow,
		Label:       rl.LightGray,
		Value:       rl.White,
		FontSize:    12,
		HeaderSize:  14,
		Padding:     10,
		LineHeight:  16,
		LabelWidth:  90,
	}
}
