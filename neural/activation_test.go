package neural

import (
	"math"
	"testing"
)

func TestTanhApproxZero(t *testing.T) {
	if got := TanhApprox(0); got != 0 {
		t.Errorf("TanhApprox(0) = %v, want 0", got)
	}
}

func TestTanhApproxOdd(t *testing.T) {
	for x := float32(-20); x <= 20; x += 0.37 {
		if TanhApprox(-x) != -TanhApprox(x) {
			t.Fatalf("TanhApprox(-%v) = %v, -TanhApprox(%v) = %v", x, TanhApprox(-x), x, -TanhApprox(x))
		}
	}
}

func TestTanhApproxTolerance(t *testing.T) {
	const tol = 1e-3
	for x := -5.0; x <= 5.0; x += 0.01 {
		got := float64(TanhApprox(float32(x)))
		want := math.Tanh(x)
		if math.Abs(got-want) > tol {
			t.Fatalf("TanhApprox(%v) = %v, want %v ± %v", x, got, want, tol)
		}
	}
}

func TestActivationByName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
		at1     float32
	}{
		{"", false, TanhApprox(1)},
		{"approx", false, TanhApprox(1)},
		{"exact", false, float32(math.Tanh(1))},
		{"relu", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := ActivationByName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := act(1); got != tt.at1 {
				t.Errorf("act(1) = %v, want %v", got, tt.at1)
			}
		})
	}
}

func BenchmarkTanhApprox(b *testing.B) {
	var sink float32
	for i := 0; i < b.N; i++ {
		sink += TanhApprox(float32(i%100) * 0.05)
	}
	_ = sink
}
