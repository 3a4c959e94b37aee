package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panel furniture in a shared theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel fills a bordered panel rectangle.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader writes a header line and returns the next line's Y.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderSize, r.Theme.Header)
	return y + r.Theme.LineHeight
}

// DrawLabelValue writes "label: value" with the value in its own column
// and returns the next line's Y.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	th := r.Theme
	rl.DrawText(label+":", x, y, th.FontSize, th.Label)
	rl.DrawText(value, x+th.LabelWidth, y, th.FontSize, th.Value)
	return y + th.LineHeight
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
