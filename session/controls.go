package session

import (
	"github.com/pthm-cable/umlaut/config"
)

// Limits of the live controls.
const (
	MinCycleTime  = 0.5
	MaxCycleTime  = 10.0
	MaxHyperSpeed = 50
)

// Paused reports whether training is paused.
func (s *Session) Paused() bool { return s.paused }

// SetPaused pauses or resumes training.
func (s *Session) SetPaused(p bool) { s.paused = p }

// CycleTime returns the evaluation window length in seconds.
func (s *Session) CycleTime() float64 { return s.cfg.Evaluation.CycleTime }

// SetCycleTime changes the evaluation window. A window already past the
// new length ends at the next Update.
func (s *Session) SetCycleTime(sec float64) {
	sec = min(max(sec, MinCycleTime), MaxCycleTime)
	s.cfg.Evaluation.CycleTime = sec
	s.cfg.ComputeDerived()
	s.trainer.Options().EvalTicks = s.cfg.Derived.EvalTicks
}

// Rates returns the copy, mutate and evolve rates.
func (s *Session) Rates() (copyRate, mutateRate, evolveRate float32) {
	o := s.trainer.Options()
	return o.CopyRate, o.MutateRate, o.EvolveRate
}

// SetRates changes the operator rates from the next Updating phase on.
func (s *Session) SetRates(copyRate, mutateRate, evolveRate float32) {
	o := s.trainer.Options()
	o.CopyRate = clamp01(copyRate)
	o.MutateRate = clamp01(mutateRate)
	o.EvolveRate = clamp01(evolveRate)

	s.cfg.Update.CopyRate = float64(o.CopyRate)
	s.cfg.Update.MutateRate = float64(o.MutateRate)
	s.cfg.Update.EvolveRate = float64(o.EvolveRate)
}

// Hyper reports whether evaluation runs in batched mode.
func (s *Session) Hyper() bool { return s.cfg.Evaluation.Mode == config.ModeBatched }

// HyperSpeed returns the ticks per update in batched mode.
func (s *Session) HyperSpeed() int { return s.cfg.Evaluation.BatchTicks }

// SetHyper switches between one tick per update and batched bursts of
// speed ticks. A speed of 0 stalls evaluation in batched mode.
func (s *Session) SetHyper(on bool, speed int) {
	speed = min(max(speed, 0), MaxHyperSpeed)
	s.cfg.Evaluation.BatchTicks = speed
	s.cfg.Evaluation.Mode = config.ModeRealtime
	if on {
		s.cfg.Evaluation.Mode = config.ModeBatched
	}
	s.cfg.ComputeDerived()

	o := s.trainer.Options()
	o.BurstTicks = s.cfg.Derived.BurstTicks
	if on && speed == 0 {
		o.BurstTicks = 0
	}
}

func clamp01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}
