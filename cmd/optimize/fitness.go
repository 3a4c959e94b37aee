package main

import (
	"context"
	"math"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/umlaut/config"
	"github.com/pthm-cable/umlaut/session"
	"github.com/pthm-cable/umlaut/telemetry"
)

// failedRunFitness is charged to runs that error or end with degenerate winners.
const failedRunFitness = 1e12

// FitnessEvaluator runs headless training sessions and scores a parameter
// vector by the generation winner scores they reach.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	mu          sync.Mutex
	bestFitness float64
	bestRun     []telemetry.GenerationStats
	lastWinner  float64 // mean final winner score of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestRun returns the per-generation stats of the best seed seen so far.
func (fe *FitnessEvaluator) BestRun() []telemetry.GenerationStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRun
}

// LastWinner returns the mean final winner score of the most recent evaluation.
func (fe *FitnessEvaluator) LastWinner() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWinner
}

// runResult holds the results from a single training run.
type runResult struct {
	fitness float64
	winner  float64
	history []telemetry.GenerationStats
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel, each session stepping single-threaded.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	p := pool.New()
	for i, seed := range fe.seeds {
		p.Go(func() {
			results[i] = fe.runTraining(x, seed)
		})
	}
	p.Wait()

	var totalFitness, totalWinner float64
	best := 0
	for i, r := range results {
		totalFitness += r.fitness
		totalWinner += r.winner
		if r.fitness < results[best].fitness {
			best = i
		}
	}
	n := float64(len(results))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestRun = results[best].history
	}
	fe.lastWinner = totalWinner / n
	fe.mu.Unlock()

	return avgFitness
}

// runTraining trains one session for the configured number of generations.
func (fe *FitnessEvaluator) runTraining(x []float64, seed int64) runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Parallel.Workers = 1
	cfg.ComputeDerived()

	s, err := session.New(cfg, session.Options{Seed: seed})
	if err != nil {
		return runResult{fitness: failedRunFitness, winner: math.Inf(1)}
	}
	defer s.Close()

	var res runResult
	s.SetStatsCallback(func(st telemetry.GenerationStats) {
		res.history = append(res.history, st)
	})
	if err := s.RunHeadless(context.Background(), fe.generations); err != nil {
		return runResult{fitness: failedRunFitness, winner: math.Inf(1), history: res.history}
	}

	res.fitness = computeFitness(res.history)
	res.winner = math.Inf(1)
	if len(res.history) > 0 {
		res.winner = res.history[len(res.history)-1].WinnerScore
	}
	return res
}

// computeFitness averages the winner score over the last quarter of the run.
// Winner scores carry no slack, so slack settings are compared fairly.
func computeFitness(history []telemetry.GenerationStats) float64 {
	if len(history) == 0 {
		return failedRunFitness
	}
	tail := history[len(history)-max(len(history)/4, 1):]

	var sum float64
	for _, st := range tail {
		if math.IsInf(st.WinnerScore, 0) || math.IsNaN(st.WinnerScore) {
			return failedRunFitness
		}
		sum += st.WinnerScore
	}
	return sum / float64(len(tail))
}
