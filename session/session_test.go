package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/umlaut/config"
	"github.com/pthm-cable/umlaut/telemetry"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Population.Size = 16
	cfg.Network.Hidden = 8
	cfg.Evaluation.CycleTime = 0.2
	cfg.Evaluation.DT = 0.02
	cfg.Parallel.Workers = 2
	cfg.Parallel.Threshold = 4
	cfg.ComputeDerived()
	return cfg
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 11
	}
	s, err := New(testConfig(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunHeadlessStopsAtMaxGenerations(t *testing.T) {
	s := newTestSession(t, Options{})

	var seen []telemetry.GenerationStats
	s.SetStatsCallback(func(st telemetry.GenerationStats) { seen = append(seen, st) })

	if err := s.RunHeadless(context.Background(), 4); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if s.Generation() != 4 {
		t.Errorf("generation = %d, want 4", s.Generation())
	}
	if len(seen) != 4 {
		t.Fatalf("callback saw %d generations, want 4", len(seen))
	}
	for i, st := range seen {
		if st.Generation != i || st.RunID != s.RunID() {
			t.Errorf("stats %d = generation %d run %q", i, st.Generation, st.RunID)
		}
		if st.Ticks != 10 {
			t.Errorf("stats %d ticks = %d, want 10", i, st.Ticks)
		}
	}
	if !s.Population().Champion().Valid() {
		t.Error("expected a champion after training")
	}
}

func TestRunHeadlessCancelled(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.RunHeadless(ctx, 0); err == nil {
		t.Error("expected context error")
	}
}

func TestSessionWritesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	s := newTestSession(t, Options{OutputDir: dir})

	if err := s.RunHeadless(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"generations.csv", "perf.csv", "bookmarks.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSameSeedSameChampion(t *testing.T) {
	run := func() *Session {
		s := newTestSession(t, Options{Seed: 99})
		if err := s.RunHeadless(context.Background(), 3); err != nil {
			t.Fatal(err)
		}
		return s
	}
	a, b := run(), run()
	if a.Population().Champion() != b.Population().Champion() {
		t.Errorf("champions differ: %+v vs %+v", a.Population().Champion(), b.Population().Champion())
	}
}

func TestPauseStopsUpdates(t *testing.T) {
	s := newTestSession(t, Options{})
	s.SetPaused(true)
	for i := 0; i < 5; i++ {
		if err := s.Update(); err != nil {
			t.Fatal(err)
		}
	}
	if s.Trainer().TotalTicks() != 0 {
		t.Errorf("paused session simulated %d ticks", s.Trainer().TotalTicks())
	}
}

func TestControls(t *testing.T) {
	s := newTestSession(t, Options{})

	s.SetCycleTime(100)
	if s.CycleTime() != MaxCycleTime {
		t.Errorf("cycle time = %v, want clamp to %v", s.CycleTime(), MaxCycleTime)
	}
	if got := s.Trainer().Options().EvalTicks; got != 500 {
		t.Errorf("eval ticks = %d, want 500", got)
	}

	s.SetRates(2, -1, 0.25)
	c, m, e := s.Rates()
	if c != 1 || m != 0 || e != 0.25 {
		t.Errorf("rates = %v %v %v", c, m, e)
	}

	s.SetHyper(false, 20)
	if s.Hyper() || s.Trainer().Options().BurstTicks != 1 {
		t.Errorf("realtime burst = %d", s.Trainer().Options().BurstTicks)
	}
	s.SetHyper(true, 20)
	if !s.Hyper() || s.Trainer().Options().BurstTicks != 20 {
		t.Errorf("hyper burst = %d, want 20", s.Trainer().Options().BurstTicks)
	}
	s.SetHyper(true, 0)
	if s.Trainer().Options().BurstTicks != 0 {
		t.Errorf("hyper speed 0 burst = %d, want 0", s.Trainer().Options().BurstTicks)
	}
}

func TestRunHeadlessRepeated(t *testing.T) {
	s := newTestSession(t, Options{})

	var seen int
	s.SetStatsCallback(func(telemetry.GenerationStats) { seen++ })

	if err := s.RunHeadless(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if err := s.RunHeadless(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if s.Generation() != 5 || seen != 5 {
		t.Errorf("generation = %d, callbacks = %d, want 5 and 5", s.Generation(), seen)
	}

	// A limit from an earlier run must not stop a later one.
	ctx, cancel := context.WithCancel(context.Background())
	s.SetStatsCallback(func(st telemetry.GenerationStats) {
		if st.Generation == 7 {
			cancel()
		}
	})
	if err := s.RunHeadless(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("unlimited run err = %v, want context.Canceled", err)
	}
	if s.Generation() != 8 {
		t.Errorf("generation = %d, want 8", s.Generation())
	}
}
