// Package trainer drives generational evolution of a population: reset,
// evaluate in an environment, score, select a champion, and update every
// other individual towards it.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/umlaut/config"
	"github.com/pthm-cable/umlaut/neural"
	"github.com/pthm-cable/umlaut/population"
)

// Phase is a state of the generational loop.
type Phase int

const (
	PhaseResetting Phase = iota
	PhaseEvaluating
	PhaseScoring
	PhaseSelecting
	PhaseUpdating
)

func (p Phase) String() string {
	switch p {
	case PhaseResetting:
		return "resetting"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseScoring:
		return "scoring"
	case PhaseSelecting:
		return "selecting"
	case PhaseUpdating:
		return "updating"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Options configures a Trainer. Rates and pacing may be changed between
// Update calls through (*Trainer).Options.
type Options struct {
	Seed int64

	EvalTicks  int     // ticks per evaluation window
	BurstTicks int     // ticks per Update while evaluating
	DT         float32 // seconds per tick

	AcceptSlack float64
	RejectSlack float64

	Lerp       bool
	Mutate     bool
	Evolve     bool
	CopyRate   float32
	MutateRate float32
	EvolveRate float32
	Blend      bool // use blend instead of gated replacement for mutation

	Workers   int // 0 = GOMAXPROCS
	Threshold int // minimum population size for parallel stepping
}

// OptionsFromConfig maps the loaded configuration onto trainer options.
func OptionsFromConfig(cfg *config.Config, seed int64) Options {
	return Options{
		Seed:        seed,
		EvalTicks:   cfg.Derived.EvalTicks,
		BurstTicks:  cfg.Derived.BurstTicks,
		DT:          cfg.Derived.DT32,
		AcceptSlack: cfg.Selection.AcceptSlack,
		RejectSlack: cfg.Selection.RejectSlack,
		Lerp:        cfg.HasOperator(config.OpLerp),
		Mutate:      cfg.HasOperator(config.OpMutate),
		Evolve:      cfg.HasOperator(config.OpEvolve),
		CopyRate:    float32(cfg.Update.CopyRate),
		MutateRate:  float32(cfg.Update.MutateRate),
		EvolveRate:  float32(cfg.Update.EvolveRate),
		Blend:       cfg.Update.MutatePolicy == config.MutateBlend,
		Workers:     cfg.Parallel.Workers,
		Threshold:   cfg.Parallel.Threshold,
	}
}

// PhaseTimings holds the wall time spent in each phase of one generation.
type PhaseTimings struct {
	Reset    time.Duration
	Evaluate time.Duration
	Score    time.Duration
	Select   time.Duration
	Update   time.Duration
}

// Total returns the sum of all phases.
func (p PhaseTimings) Total() time.Duration {
	return p.Reset + p.Evaluate + p.Score + p.Select + p.Update
}

// GenerationResult summarizes one completed generation.
type GenerationResult struct {
	Generation int
	Ranked     []population.FitnessRecord
	Winner     population.FitnessRecord
	Improved   bool
	Champion   population.Champion
	Degenerate int
	Ticks      int
	Skipped    int // operators skipped on shape mismatch
	Timings    PhaseTimings
}

// Trainer runs the generational state machine over a population.
type Trainer struct {
	opts  Options
	pop   *population.Population
	env   Environment
	rng   *rand.Rand
	sched *Scheduler

	phase      Phase
	generation int
	tick       int
	totalTicks int64

	stepFn  func(i int) error
	seeds   []int64
	skipped int

	// failed marks individuals whose network produced a non-finite state
	// this generation. They score as degenerate whatever the environment says.
	failed []bool

	current GenerationResult
	last    GenerationResult
	hooks   []func(GenerationResult)
}

// New creates a trainer. Every network in the population must be configured.
func New(pop *population.Population, env Environment, opts Options) (*Trainer, error) {
	if pop == nil || pop.Len() == 0 {
		return nil, errors.New("trainer: empty population")
	}
	if env == nil {
		return nil, errors.New("trainer: nil environment")
	}
	for id := 0; id < pop.Len(); id++ {
		if !pop.Network(id).Configured() {
			return nil, fmt.Errorf("trainer: individual %d: %w", id, neural.ErrUninitialized)
		}
	}
	if opts.EvalTicks < 1 {
		opts.EvalTicks = 1
	}
	if opts.BurstTicks < 1 {
		opts.BurstTicks = 1
	}

	t := &Trainer{
		opts:   opts,
		pop:    pop,
		env:    env,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		sched:  NewScheduler(opts.Workers, opts.Threshold),
		seeds:  make([]int64, pop.Len()),
		failed: make([]bool, pop.Len()),
	}
	t.stepFn = func(i int) error {
		nn := t.pop.Network(i)
		if err := nn.Step(); err != nil {
			return err
		}
		if !t.failed[i] && (!allFinite(nn.Hidden()) || !allFinite(nn.Outputs())) {
			t.failed[i] = true
		}
		return nil
	}
	return t, nil
}

// Close stops the worker pool.
func (t *Trainer) Close() {
	t.sched.Close()
}

// Options returns the live options. Changes apply from the next Update.
func (t *Trainer) Options() *Options {
	return &t.opts
}

// Population returns the trained population.
func (t *Trainer) Population() *population.Population {
	return t.pop
}

// Phase returns the phase the next Update will start in.
func (t *Trainer) Phase() Phase {
	return t.phase
}

// Generation returns the number of completed generations.
func (t *Trainer) Generation() int {
	return t.generation
}

// Tick returns the tick within the current evaluation window.
func (t *Trainer) Tick() int {
	return t.tick
}

// TotalTicks returns the number of ticks simulated since creation.
func (t *Trainer) TotalTicks() int64 {
	return t.totalTicks
}

// Last returns the result of the most recent completed generation.
func (t *Trainer) Last() GenerationResult {
	return t.last
}

// OnGeneration registers a callback invoked after each generation's
// Updating phase, from the goroutine calling Update.
func (t *Trainer) OnGeneration(fn func(GenerationResult)) {
	t.hooks = append(t.hooks, fn)
}

// Update advances the state machine to its next suspension point: the end
// of an evaluation burst, the end of the evaluation window, or the end of
// the Updating phase.
func (t *Trainer) Update() error {
	for {
		switch t.phase {
		case PhaseResetting:
			start := time.Now()
			t.reset()
			t.current.Timings.Reset = time.Since(start)
			t.phase = PhaseEvaluating

		case PhaseEvaluating:
			start := time.Now()
			done, err := t.evaluate(t.opts.BurstTicks)
			t.current.Timings.Evaluate += time.Since(start)
			if err != nil {
				return err
			}
			if done {
				t.phase = PhaseScoring
			}
			return nil

		case PhaseScoring:
			start := time.Now()
			t.score()
			t.current.Timings.Score = time.Since(start)
			t.phase = PhaseSelecting

		case PhaseSelecting:
			start := time.Now()
			t.selectChampion()
			t.current.Timings.Select = time.Since(start)
			t.phase = PhaseUpdating

		case PhaseUpdating:
			start := time.Now()
			err := t.updatePopulation()
			t.current.Timings.Update = time.Since(start)
			if err != nil {
				return err
			}
			t.finishGeneration()
			t.phase = PhaseResetting
			return nil
		}
	}
}

// Run calls Update until ctx is cancelled, waiting on clock before each
// call. Cancellation is only observed between Updates, so a generation is
// never left half-updated.
func (t *Trainer) Run(ctx context.Context, clock Clock) error {
	if clock == nil {
		clock = Unpaced{}
	}
	for {
		if err := clock.Wait(ctx); err != nil {
			return err
		}
		if err := t.Update(); err != nil {
			return err
		}
	}
}

// RunGeneration calls Update until one more generation has completed.
func (t *Trainer) RunGeneration(ctx context.Context) (GenerationResult, error) {
	target := t.generation + 1
	for t.generation < target {
		if err := ctx.Err(); err != nil {
			return GenerationResult{}, err
		}
		if err := t.Update(); err != nil {
			return GenerationResult{}, err
		}
	}
	return t.last, nil
}

// reset starts a new generation.
func (t *Trainer) reset() {
	t.current = GenerationResult{Generation: t.generation}
	t.tick = 0
	t.skipped = 0
	clear(t.failed)
	t.env.Reset(t.rng, t.pop.Len())
	t.pop.ClearRecords()
}

// evaluate runs up to burst ticks and reports whether the window is over.
func (t *Trainer) evaluate(burst int) (bool, error) {
	n := min(burst, t.opts.EvalTicks-t.tick)
	for k := 0; k < n; k++ {
		if err := t.stepTick(); err != nil {
			return false, err
		}
	}
	return t.tick >= t.opts.EvalTicks, nil
}

// stepTick observes, steps every network in parallel, actuates, and
// advances the environment by one tick.
func (t *Trainer) stepTick() error {
	n := t.pop.Len()

	for id := 0; id < n; id++ {
		t.env.Observe(id, t.pop.Network(id).Inputs())
	}

	if err := t.sched.ForEach(n, t.stepFn); err != nil {
		return fmt.Errorf("generation %d tick %d: %w", t.generation, t.tick, err)
	}

	for id := 0; id < n; id++ {
		t.env.Actuate(id, t.pop.Network(id).Outputs())
	}

	t.env.Advance(t.opts.DT)
	t.tick++
	t.totalTicks++
	t.current.Ticks++
	return nil
}

// score collects one fitness value per individual. An individual whose
// network went non-finite during evaluation is recorded as degenerate.
func (t *Trainer) score() {
	for id := 0; id < t.pop.Len(); id++ {
		s := t.env.Score(id)
		if t.failed[id] {
			s = math.Inf(1)
		}
		if err := t.pop.SetScore(id, s); err != nil {
			t.current.Degenerate++
			slog.Debug("degenerate score",
				"generation", t.generation,
				"id", id,
				"nonfinite_output", t.failed[id],
				"error", err,
			)
		}
	}
}

func allFinite(v []float32) bool {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}

// selectChampion ranks the generation and updates the champion.
func (t *Trainer) selectChampion() {
	sel := t.pop.Select(t.opts.AcceptSlack, t.opts.RejectSlack)

	t.current.Ranked = sel.Ranked
	t.current.Winner = sel.Winner
	t.current.Improved = sel.Improved
	t.current.Champion = sel.Champion
}

// finishGeneration publishes the result and moves to the next generation.
func (t *Trainer) finishGeneration() {
	t.current.Skipped = t.skipped
	t.last = t.current
	t.generation++

	for _, fn := range t.hooks {
		fn(t.last)
	}
}
