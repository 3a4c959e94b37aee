package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/umlaut/population"
	"github.com/pthm-cable/umlaut/trainer"
)

// GenerationStats holds aggregated statistics for one generation.
type GenerationStats struct {
	RunID      string  `csv:"run_id"`
	Generation int     `csv:"generation"`
	Ticks      int     `csv:"ticks"`
	SimTimeSec float64 `csv:"sim_time"`

	// Selection outcome
	WinnerID      int     `csv:"winner_id"`
	WinnerScore   float64 `csv:"winner_score"`
	Improved      bool    `csv:"improved"`
	ChampionID    int     `csv:"champion_id"`
	ChampionScore float64 `csv:"champion_score"` // includes slack

	// Score distribution over finite scores
	ScoreMean float64 `csv:"score_mean"`
	ScoreStd  float64 `csv:"score_std"`
	ScoreP10  float64 `csv:"score_p10"`
	ScoreP50  float64 `csv:"score_p50"`
	ScoreP90  float64 `csv:"score_p90"`

	Degenerate int `csv:"degenerate"`
	Skipped    int `csv:"skipped_ops"`
	Population int `csv:"population"`
}

// NewGenerationStats summarizes a trainer result. dt converts ticks to
// simulated seconds.
func NewGenerationStats(runID string, res trainer.GenerationResult, dt float64) GenerationStats {
	s := GenerationStats{
		RunID:         runID,
		Generation:    res.Generation,
		Ticks:         res.Ticks,
		SimTimeSec:    float64(res.Ticks) * dt,
		WinnerID:      res.Winner.ID,
		WinnerScore:   res.Winner.Score,
		Improved:      res.Improved,
		ChampionID:    res.Champion.ID,
		ChampionScore: res.Champion.Score,
		Degenerate:    res.Degenerate,
		Skipped:       res.Skipped,
		Population:    len(res.Ranked),
	}
	s.ScoreMean, s.ScoreStd, s.ScoreP10, s.ScoreP50, s.ScoreP90 = ComputeScoreStats(population.Scores(res.Ranked))
	return s
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeScoreStats calculates mean, population std, and percentiles.
func ComputeScoreStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, variance := stat.PopMeanVariance(values, nil)
	std = math.Sqrt(variance)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("generation", s.Generation),
		slog.Int("ticks", s.Ticks),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("winner_id", s.WinnerID),
		slog.Float64("winner_score", s.WinnerScore),
		slog.Bool("improved", s.Improved),
		slog.Int("champion_id", s.ChampionID),
		slog.Float64("champion_score", s.ChampionScore),
		slog.Float64("score_mean", s.ScoreMean),
		slog.Float64("score_std", s.ScoreStd),
		slog.Float64("score_p10", s.ScoreP10),
		slog.Float64("score_p50", s.ScoreP50),
		slog.Float64("score_p90", s.ScoreP90),
		slog.Int("degenerate", s.Degenerate),
		slog.Int("skipped_ops", s.Skipped),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"run_id", s.RunID,
		"generation", s.Generation,
		"winner_id", s.WinnerID,
		"winner_score", s.WinnerScore,
		"improved", s.Improved,
		"champion_id", s.ChampionID,
		"champion_score", s.ChampionScore,
		"score_mean", s.ScoreMean,
		"score_p50", s.ScoreP50,
		"degenerate", s.Degenerate,
	)
}
