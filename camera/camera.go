// Package camera provides a 2D camera for viewing the arena from above.
package camera

// Camera maps the horizontal plane of the arena onto the screen.
// World X maps to screen X and world Z to screen Y. The arena is unbounded,
// so the camera only pans and zooms.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Z float32

	// Scale is pixels per world unit at zoom 1
	Scale float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world origin.
func New(viewportW, viewportH, scale float32) *Camera {
	if scale <= 0 {
		scale = 1
	}
	return &Camera{
		Scale:     scale,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   0.1,
		MaxZoom:   10.0,
	}
}

func (c *Camera) pixelsPerUnit() float32 {
	return c.Scale * c.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wz float32) (sx, sy float32) {
	k := c.pixelsPerUnit()
	sx = c.ViewportW/2 + (wx-c.X)*k
	sy = c.ViewportH/2 + (wz-c.Z)*k
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wz float32) {
	k := c.pixelsPerUnit()
	wx = c.X + (sx-c.ViewportW/2)/k
	wz = c.Z + (sy-c.ViewportH/2)/k
	return wx, wz
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(d float32) float32 {
	return d * c.pixelsPerUnit()
}

// IsVisible returns true if a circle at (wx, wz) with given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wz, radius float32) bool {
	k := c.pixelsPerUnit()
	halfW := c.ViewportW/(2*k) + radius
	halfH := c.ViewportH/(2*k) + radius
	return absf(wx-c.X) <= halfW && absf(wz-c.Z) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	k := c.pixelsPerUnit()
	c.X += dx / k
	c.Z += dy / k
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the origin at zoom 1.
func (c *Camera) Reset() {
	c.X = 0
	c.Z = 0
	c.Zoom = 1.0
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
