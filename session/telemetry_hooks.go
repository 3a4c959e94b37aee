package session

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/umlaut/telemetry"
	"github.com/pthm-cable/umlaut/trainer"
)

// onGeneration records stats, perf and bookmarks after each generation.
func (s *Session) onGeneration(res trainer.GenerationResult) {
	stats := telemetry.NewGenerationStats(s.runID, res, s.cfg.Evaluation.DT)
	s.lastStats = stats

	s.perf.Record(res.Timings, res.Ticks)
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.output != nil {
		if err := s.output.WriteGeneration(stats); err != nil {
			slog.Error("failed to write generation", "error", err)
			s.writeErr = errors.Join(s.writeErr, err)
		}
		if err := s.output.WritePerf(perfStats, s.runID, res.Generation); err != nil {
			slog.Error("failed to write perf", "error", err)
			s.writeErr = errors.Join(s.writeErr, err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.output != nil {
			if err := s.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
				s.writeErr = errors.Join(s.writeErr, err)
			}
		}
	}
}
