package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Network.Inputs != 6 || cfg.Network.Hidden != 24 || cfg.Network.Outputs != 3 {
		t.Errorf("topology = %d-%d-%d, want 6-24-3", cfg.Network.Inputs, cfg.Network.Hidden, cfg.Network.Outputs)
	}
	if cfg.Population.Size != 256 {
		t.Errorf("population size = %d, want 256", cfg.Population.Size)
	}
	if cfg.Derived.EvalTicks != 250 {
		t.Errorf("EvalTicks = %d, want 250", cfg.Derived.EvalTicks)
	}
	if cfg.Derived.BurstTicks != 10 {
		t.Errorf("BurstTicks = %d, want 10", cfg.Derived.BurstTicks)
	}
	if !cfg.HasOperator(OpMutate) || !cfg.HasOperator(OpEvolve) || !cfg.HasOperator(OpLerp) {
		t.Errorf("default operators = %v", cfg.Update.Operators)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	overlay := []byte("population:\n  size: 12\nevaluation:\n  mode: realtime\nupdate:\n  operators: [mutate]\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Population.Size != 12 {
		t.Errorf("size = %d, want 12", cfg.Population.Size)
	}
	if cfg.Network.Hidden != 24 {
		t.Errorf("hidden = %d, want default 24", cfg.Network.Hidden)
	}
	if cfg.Derived.BurstTicks != 1 {
		t.Errorf("realtime BurstTicks = %d, want 1", cfg.Derived.BurstTicks)
	}
	if cfg.HasOperator(OpLerp) || !cfg.HasOperator(OpMutate) {
		t.Errorf("operators = %v, want [mutate]", cfg.Update.Operators)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero hidden", func(c *Config) { c.Network.Hidden = 0 }},
		{"empty population", func(c *Config) { c.Population.Size = 0 }},
		{"bad mode", func(c *Config) { c.Evaluation.Mode = "turbo" }},
		{"bad operator", func(c *Config) { c.Update.Operators = []string{"crossover"} }},
		{"rate above one", func(c *Config) { c.Update.MutateRate = 1.5 }},
		{"bad policy", func(c *Config) { c.Update.MutatePolicy = "gaussian" }},
		{"zero dt", func(c *Config) { c.Evaluation.DT = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Population.Size = 33

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Population.Size != 33 {
		t.Errorf("size = %d, want 33", loaded.Population.Size)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()

	cp.Population.Size = 7
	cp.Update.Operators[0] = OpEvolve
	if cfg.Population.Size == 7 {
		t.Error("clone shares population settings")
	}
	if cfg.Update.Operators[0] == OpEvolve {
		t.Error("clone shares the operator slice")
	}
}
