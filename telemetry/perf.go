package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/umlaut/trainer"
)

// Phase names of one generation.
const (
	PhaseReset    = "reset"
	PhaseEvaluate = "evaluate"
	PhaseScore    = "score"
	PhaseSelect   = "select"
	PhaseUpdate   = "update"
)

// Phases lists the phase names in execution order.
var Phases = []string{PhaseReset, PhaseEvaluate, PhaseScore, PhaseSelect, PhaseUpdate}

// PerfSample holds timing data for a single generation.
type PerfSample struct {
	Duration time.Duration
	Ticks    int
	Phases   map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window of generations.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of generations to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 20
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// Record adds the phase timings of a finished generation.
func (p *PerfCollector) Record(timings trainer.PhaseTimings, ticks int) {
	p.samples[p.writeIndex] = PerfSample{
		Duration: timings.Total(),
		Ticks:    ticks,
		Phases: map[string]time.Duration{
			PhaseReset:    timings.Reset,
			PhaseEvaluate: timings.Evaluate,
			PhaseScore:    timings.Score,
			PhaseSelect:   timings.Select,
			PhaseUpdate:   timings.Update,
		},
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Generation timing
	AvgGeneration time.Duration
	MinGeneration time.Duration
	MaxGeneration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total generation time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond       float64
	GenerationsPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var total time.Duration
	var minGen, maxGen time.Duration
	var ticks int
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration
		ticks += s.Ticks

		if i == 0 || s.Duration < minGen {
			minGen = s.Duration
		}
		if s.Duration > maxGen {
			maxGen = s.Duration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var ticksPerSec, gensPerSec float64
	if total > 0 {
		ticksPerSec = float64(ticks) / total.Seconds()
		gensPerSec = float64(p.sampleCount) / total.Seconds()
	}

	return PerfStats{
		AvgGeneration:        avg,
		MinGeneration:        minGen,
		MaxGeneration:        maxGen,
		PhaseAvg:             phaseAvg,
		PhasePct:             phasePct,
		TicksPerSecond:       ticksPerSec,
		GenerationsPerSecond: gensPerSec,
		FrameDuration:        p.frameDuration,
		FPS:                  fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_generation_ms", s.AvgGeneration.Milliseconds(),
		"min_generation_ms", s.MinGeneration.Milliseconds(),
		"max_generation_ms", s.MaxGeneration.Milliseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_generation_ms", s.AvgGeneration.Milliseconds()),
		slog.Int64("min_generation_ms", s.MinGeneration.Milliseconds()),
		slog.Int64("max_generation_ms", s.MaxGeneration.Milliseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("generations_per_sec", s.GenerationsPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	RunID       string  `csv:"run_id"`
	Generation  int     `csv:"generation"`
	AvgGenMS    float64 `csv:"avg_generation_ms"`
	MinGenMS    float64 `csv:"min_generation_ms"`
	MaxGenMS    float64 `csv:"max_generation_ms"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
	GensPerSec  float64 `csv:"generations_per_sec"`
	FPS         float64 `csv:"fps"`
	ResetPct    float64 `csv:"reset_pct"`
	EvaluatePct float64 `csv:"evaluate_pct"`
	ScorePct    float64 `csv:"score_pct"`
	SelectPct   float64 `csv:"select_pct"`
	UpdatePct   float64 `csv:"update_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(runID string, generation int) PerfStatsCSV {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return PerfStatsCSV{
		RunID:       runID,
		Generation:  generation,
		AvgGenMS:    ms(s.AvgGeneration),
		MinGenMS:    ms(s.MinGeneration),
		MaxGenMS:    ms(s.MaxGeneration),
		TicksPerSec: s.TicksPerSecond,
		GensPerSec:  s.GenerationsPerSecond,
		FPS:         s.FPS,
		ResetPct:    s.PhasePct[PhaseReset],
		EvaluatePct: s.PhasePct[PhaseEvaluate],
		ScorePct:    s.PhasePct[PhaseScore],
		SelectPct:   s.PhasePct[PhaseSelect],
		UpdatePct:   s.PhasePct[PhaseUpdate],
	}
}
