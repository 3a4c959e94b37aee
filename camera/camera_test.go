package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 15)

	if cam.X != 0 || cam.Z != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Z)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 15)

	sx, sy := cam.WorldToScreen(0, 0)
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}

	// 10 units right at 15 px/unit
	sx, _ = cam.WorldToScreen(10, 0)
	if math.Abs(float64(sx-790)) > 0.01 {
		t.Errorf("expected x=790, got %f", sx)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 15)
	cam.Pan(37, -12)
	cam.SetZoom(2.5)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wz := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wz)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wz, sx, sy)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 15)

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("zoom = %f, want max %f", cam.Zoom, cam.MaxZoom)
	}
	cam.ZoomBy(0.0001)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("zoom = %f, want min %f", cam.Zoom, cam.MinZoom)
	}

	cam.Pan(100, 100)
	cam.Reset()
	if cam.X != 0 || cam.Z != 0 || cam.Zoom != 1 {
		t.Errorf("reset camera = %+v", cam)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 10)

	// Half-width is 64 units
	if !cam.IsVisible(60, 0, 1) {
		t.Error("expected point inside the viewport to be visible")
	}
	if cam.IsVisible(80, 0, 1) {
		t.Error("expected point outside the viewport to be culled")
	}
	if !cam.IsVisible(65, 0, 2) {
		t.Error("radius should extend visibility")
	}
}

func TestWorldLength(t *testing.T) {
	cam := New(100, 100, 4)
	cam.SetZoom(2)
	if got := cam.WorldLength(3); got != 24 {
		t.Errorf("WorldLength(3) = %f, want 24", got)
	}
}
