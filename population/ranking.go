package population

import (
	"errors"
	"math"
	"slices"
)

// ErrDegenerateScore marks a NaN or infinite fitness score.
var ErrDegenerateScore = errors.New("population: degenerate score")

// FitnessRecord is the score of one individual for the current generation.
// Lower is better; a fresh record has score 0.
type FitnessRecord struct {
	ID         int     `csv:"id"`
	Score      float64 `csv:"score"`
	Degenerate bool    `csv:"degenerate"`
}

// Less orders records by ascending score. NaN sorts after every number so a
// stray unsanitized score can never win.
func Less(a, b FitnessRecord) bool {
	return compare(a, b) < 0
}

func compare(a, b FitnessRecord) int {
	an, bn := math.IsNaN(a.Score), math.IsNaN(b.Score)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a.Score < b.Score:
		return -1
	case a.Score > b.Score:
		return 1
	}
	return 0
}

// Rank sorts records ascending by score in place and returns them.
// Equal scores keep their input order.
func Rank(records []FitnessRecord) []FitnessRecord {
	slices.SortStableFunc(records, compare)
	return records
}

// Scores extracts the finite scores from records, skipping degenerate ones.
func Scores(records []FitnessRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Degenerate || math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			continue
		}
		out = append(out, r.Score)
	}
	return out
}
