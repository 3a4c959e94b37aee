package env

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/umlaut/config"
)

func newTestFollow(t *testing.T, n int) *Follow {
	t.Helper()
	f, err := NewFollow(ParamsFromConfig(config.Default().Env))
	if err != nil {
		t.Fatalf("NewFollow: %v", err)
	}
	f.Reset(rand.New(rand.NewSource(1)), n)
	return f
}

func TestResetSpawnRing(t *testing.T) {
	f := newTestFollow(t, 64)
	if f.Len() != 64 {
		t.Fatalf("Len = %d, want 64", f.Len())
	}
	for id := 0; id < f.Len(); id++ {
		p := f.Position(id)
		r := math.Hypot(float64(p.X), float64(p.Z))
		if r < 10-1e-4 || r > 20+1e-4 {
			t.Errorf("agent %d radius %v outside [10, 20]", id, r)
		}
		if p.Y < 1 || p.Y > 2 {
			t.Errorf("agent %d height %v outside [1, 2]", id, p.Y)
		}
	}
	if tg := f.Target(); tg.X != 0 || tg.Y != 0 || tg.Z != 0 {
		t.Errorf("target = %+v, want origin with zero spread", tg)
	}
}

func TestResetResizes(t *testing.T) {
	f := newTestFollow(t, 8)
	f.Reset(rand.New(rand.NewSource(2)), 3)
	if f.Len() != 3 {
		t.Errorf("Len = %d after resize, want 3", f.Len())
	}
}

func TestResetDeterministic(t *testing.T) {
	a := newTestFollow(t, 16)
	b := newTestFollow(t, 16)
	for id := 0; id < 16; id++ {
		if a.Position(id) != b.Position(id) {
			t.Fatalf("agent %d differs for the same seed", id)
		}
	}
}

func TestObserve(t *testing.T) {
	f := newTestFollow(t, 2)
	p := f.Position(1)

	dst := make([]float32, 8)
	for i := range dst {
		dst[i] = 99
	}
	f.Observe(1, dst)

	want := []float32{p.X, p.Y, p.Z, 0, 0, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	short := make([]float32, 2)
	f.Observe(1, short)
	if short[0] != p.X || short[1] != p.Y {
		t.Errorf("short observation = %v", short)
	}
}

func TestActuateAndAdvance(t *testing.T) {
	f := newTestFollow(t, 1)
	start := f.Position(0)

	f.Actuate(0, []float32{1, 0, float32(math.NaN())})
	f.Advance(0.1)

	// v = 1*10*0.1 = 1, x += 1*0.1
	got := f.Position(0)
	if d := got.X - start.X; math.Abs(float64(d-0.1)) > 1e-5 {
		t.Errorf("x moved %v, want 0.1", d)
	}
	if got.Z != start.Z {
		t.Errorf("NaN output moved z: %v -> %v", start.Z, got.Z)
	}
}

func TestBrakeStopsAgent(t *testing.T) {
	params := ParamsFromConfig(config.Default().Env)
	params.BrakeFactor = 10
	f, err := NewFollow(params)
	if err != nil {
		t.Fatal(err)
	}
	f.Reset(rand.New(rand.NewSource(1)), 1)

	f.Actuate(0, []float32{1, 0, 0, 0})
	f.Advance(0.1)
	moved := f.Position(0)

	// Full brake with factor*dt = 1 zeroes velocity before integration.
	f.Actuate(0, []float32{0, 0, 0, 1})
	f.Advance(0.1)
	if f.Position(0) != moved {
		t.Errorf("braked agent moved from %+v to %+v", moved, f.Position(0))
	}
}

func TestScore(t *testing.T) {
	f := newTestFollow(t, 1)
	p := f.Position(0)
	d2 := float64(p.X*p.X + p.Y*p.Y + p.Z*p.Z)

	if got := f.Score(0); math.Abs(got-d2) > 1e-3 {
		t.Errorf("squared score = %v, want %v", got, d2)
	}

	f.params.Score = ScoreEuclidean
	if got := f.Score(0); math.Abs(got-math.Sqrt(d2)) > 1e-3 {
		t.Errorf("euclidean score = %v, want %v", got, math.Sqrt(d2))
	}
}

func TestNewFollowRejectsUnknownScore(t *testing.T) {
	params := ParamsFromConfig(config.Default().Env)
	params.Score = "manhattan"
	if _, err := NewFollow(params); err == nil {
		t.Error("expected error for unknown score metric")
	}
}
