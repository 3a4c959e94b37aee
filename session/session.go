// Package session wires a population, the follow environment, the trainer
// and telemetry into one training run.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/umlaut/config"
	"github.com/pthm-cable/umlaut/env"
	"github.com/pthm-cable/umlaut/neural"
	"github.com/pthm-cable/umlaut/population"
	"github.com/pthm-cable/umlaut/telemetry"
	"github.com/pthm-cable/umlaut/trainer"
)

// Options configures a session.
type Options struct {
	Seed      int64 // 0 = time-based
	LogStats  bool
	OutputDir string
}

// Session is one training run.
type Session struct {
	cfg     *config.Config
	runID   string
	rngSeed int64

	pop     *population.Population
	env     *env.Follow
	trainer *trainer.Trainer

	// Telemetry
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.GenerationStats)
	lastStats     telemetry.GenerationStats
	writeErr      error

	paused bool

	// Set while RunHeadless runs with a generation limit.
	stopAt  int
	stopRun context.CancelFunc
}

// New builds a session from cfg. The config is owned by the session and
// may be edited at runtime through the control methods.
func New(cfg *config.Config, opts Options) (*Session, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	act, err := neural.ActivationByName(cfg.Network.Activation)
	if err != nil {
		return nil, err
	}
	topo := neural.Topology{L0: cfg.Network.Inputs, L1: cfg.Network.Hidden, L2: cfg.Network.Outputs}

	// Population draws come from their own stream so trainer seeds stay
	// independent of population size.
	pop, err := population.New(cfg.Population.Size, topo, act, rand.New(rand.NewSource(seed^0x5eed)))
	if err != nil {
		return nil, fmt.Errorf("creating population: %w", err)
	}

	follow, err := env.NewFollow(env.ParamsFromConfig(cfg.Env))
	if err != nil {
		return nil, err
	}

	tr, err := trainer.New(pop, follow, trainer.OptionsFromConfig(cfg, seed))
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		tr.Close()
		return nil, err
	}

	s := &Session{
		cfg:       cfg,
		runID:     uuid.NewString(),
		rngSeed:   seed,
		pop:       pop,
		env:       follow,
		trainer:   tr,
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		output:    output,
		logStats:  opts.LogStats,
	}
	tr.OnGeneration(s.onGeneration)
	tr.OnGeneration(s.checkStop)

	if err := output.WriteConfig(cfg); err != nil {
		s.Close()
		return nil, err
	}

	slog.Info("session created",
		"run_id", s.runID,
		"seed", seed,
		"population", pop.Len(),
		"topology", topo.String(),
		"workers", cfg.Parallel.Workers,
		"mode", cfg.Evaluation.Mode,
	)
	return s, nil
}

// Close stops the trainer workers and flushes output files.
func (s *Session) Close() error {
	s.trainer.Close()
	return s.output.Close()
}

// RunID returns the unique identifier of this run.
func (s *Session) RunID() string { return s.runID }

// Seed returns the master seed.
func (s *Session) Seed() int64 { return s.rngSeed }

// Config returns the live configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Population returns the trained population.
func (s *Session) Population() *population.Population { return s.pop }

// Env returns the follow environment.
func (s *Session) Env() *env.Follow { return s.env }

// Trainer returns the underlying trainer.
func (s *Session) Trainer() *trainer.Trainer { return s.trainer }

// Generation returns the number of completed generations.
func (s *Session) Generation() int { return s.trainer.Generation() }

// LastStats returns the stats of the most recent generation.
func (s *Session) LastStats() telemetry.GenerationStats { return s.lastStats }

// Perf returns the rolling performance statistics.
func (s *Session) Perf() telemetry.PerfStats { return s.perf.Stats() }

// RecordFrame feeds frame timing into the perf collector.
func (s *Session) RecordFrame() { s.perf.RecordFrame() }

// SetStatsCallback registers a function called with each generation's stats.
func (s *Session) SetStatsCallback(fn func(telemetry.GenerationStats)) {
	s.statsCallback = fn
}

// Update advances training to the next trainer suspension point unless
// paused. Returns the first telemetry write error, if any.
func (s *Session) Update() error {
	if s.paused {
		return nil
	}
	if err := s.trainer.Update(); err != nil {
		return err
	}
	return s.takeWriteErr()
}

// RunHeadless trains until ctx is cancelled or maxGenerations more
// generations have completed (0 = unlimited).
func (s *Session) RunHeadless(ctx context.Context, maxGenerations int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := s.Generation() + maxGenerations
	if maxGenerations > 0 {
		s.stopAt = stop
		s.stopRun = cancel
		defer func() { s.stopRun = nil }()
	}

	err := s.trainer.Run(ctx, trainer.Unpaced{})
	if errors.Is(err, context.Canceled) && maxGenerations > 0 && s.Generation() >= stop {
		err = nil
	}
	if err != nil {
		return err
	}
	return s.takeWriteErr()
}

// checkStop ends a limited RunHeadless once its last generation completes.
func (s *Session) checkStop(res trainer.GenerationResult) {
	if s.stopRun != nil && res.Generation+1 >= s.stopAt {
		s.stopRun()
	}
}

func (s *Session) takeWriteErr() error {
	err := s.writeErr
	s.writeErr = nil
	return err
}
