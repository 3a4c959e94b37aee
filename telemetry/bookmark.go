package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/umlaut/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBreakthrough BookmarkType = "breakthrough"
	BookmarkStagnation   BookmarkType = "stagnation"
	BookmarkCollapse     BookmarkType = "collapse"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a training run.
type BookmarkDetector struct {
	thresholds config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	sinceImproved int  // generations since the champion last changed
	collapsed     bool // latched while the degenerate fraction stays high
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, thresholds config.BookmarksConfig) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for a rolling mean
	}
	return &BookmarkDetector{
		thresholds:  thresholds,
		history:     make([]GenerationStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	var bookmarks []Bookmark

	// Breakthrough: winner well below the rolling mean winner score
	if b := bd.checkBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Stagnation: champion kept for N generations
	if b := bd.checkStagnation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Collapse: a large share of the population scored NaN or Inf
	if b := bd.checkCollapse(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	for i := range bookmarks {
		bookmarks[i].RunID = stats.RunID
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []GenerationStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkBreakthrough(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Degenerate == stats.Population {
		return nil
	}

	var total float64
	var n int
	for _, h := range history {
		if h.Degenerate == h.Population {
			continue
		}
		total += h.WinnerScore
		n++
	}
	if n == 0 {
		return nil
	}
	avg := total / float64(n)
	if avg <= 0 {
		return nil
	}

	ratio := bd.thresholds.Breakthrough.Ratio
	if stats.WinnerScore <= avg*ratio {
		return &Bookmark{
			Type:        BookmarkBreakthrough,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Winner score %.4g is %.2fx rolling mean (%.4g)", stats.WinnerScore, stats.WinnerScore/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStagnation(stats GenerationStats) *Bookmark {
	if stats.Improved {
		bd.sinceImproved = 0
		return nil
	}
	bd.sinceImproved++

	limit := bd.thresholds.Stagnation.Generations
	if limit > 0 && bd.sinceImproved == limit { // trigger once per plateau
		return &Bookmark{
			Type:        BookmarkStagnation,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Champion %d unbeaten for %d generations", stats.ChampionID, limit),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCollapse(stats GenerationStats) *Bookmark {
	if stats.Population == 0 {
		return nil
	}
	frac := float64(stats.Degenerate) / float64(stats.Population)
	if frac < bd.thresholds.Collapse.DegenerateFraction || bd.thresholds.Collapse.DegenerateFraction <= 0 {
		bd.collapsed = false
		return nil
	}
	if bd.collapsed {
		return nil
	}
	bd.collapsed = true
	return &Bookmark{
		Type:        BookmarkCollapse,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("%.0f%% of the population scored NaN or Inf", frac*100),
	}
}
