package main

import (
	"github.com/pthm-cable/umlaut/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable training parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "copy_rate", Path: "update.copy_rate", Min: 0, Max: 1, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Update.CopyRate },
				set: func(c *config.Config, v float64) { c.Update.CopyRate = v },
			},
			{
				Name: "mutate_rate", Path: "update.mutate_rate", Min: 0, Max: 0.5, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Update.MutateRate },
				set: func(c *config.Config, v float64) { c.Update.MutateRate = v },
			},
			{
				Name: "evolve_rate", Path: "update.evolve_rate", Min: 0, Max: 1, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Update.EvolveRate },
				set: func(c *config.Config, v float64) { c.Update.EvolveRate = v },
			},
			{
				Name: "accept_slack", Path: "selection.accept_slack", Min: 0, Max: 1, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Selection.AcceptSlack },
				set: func(c *config.Config, v float64) { c.Selection.AcceptSlack = v },
			},
			{
				Name: "reject_slack", Path: "selection.reject_slack", Min: 0, Max: 5, Default: 1.0,
				get: func(c *config.Config) float64 { return c.Selection.RejectSlack },
				set: func(c *config.Config, v float64) { c.Selection.RejectSlack = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
