package population

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/umlaut/neural"
)

var testTopo = neural.Topology{L0: 6, L1: 24, L2: 3}

func newTestPopulation(t *testing.T, n int) *Population {
	t.Helper()
	p, err := New(n, testTopo, neural.TanhApprox, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	p := newTestPopulation(t, 8)

	if p.Len() != 8 {
		t.Fatalf("Len = %d, want 8", p.Len())
	}
	for i := 0; i < p.Len(); i++ {
		ind := p.Individual(i)
		if ind.ID != i {
			t.Errorf("individual %d has ID %d", i, ind.ID)
		}
		if ind.Network.Topology() != testTopo {
			t.Errorf("individual %d topology = %s", i, ind.Network.Topology())
		}
	}

	c := p.Champion()
	if c.Valid() || !math.IsInf(c.Score, 1) {
		t.Errorf("initial champion = %+v, want none with +Inf score", c)
	}
	if p.ChampionNetwork() != nil {
		t.Error("ChampionNetwork should be nil before selection")
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(0, testTopo, nil, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for empty population")
	}
}

func TestRank(t *testing.T) {
	records := []FitnessRecord{
		{ID: 0, Score: 3.0},
		{ID: 1, Score: 1.0},
		{ID: 2, Score: 2.0},
	}

	ranked := Rank(records)

	wantScores := []float64{1.0, 2.0, 3.0}
	for i, want := range wantScores {
		if ranked[i].Score != want {
			t.Errorf("ranked[%d].Score = %v, want %v", i, ranked[i].Score, want)
		}
	}
	if ranked[0].ID != 1 {
		t.Errorf("winner ID = %d, want 1", ranked[0].ID)
	}
}

func TestRankStable(t *testing.T) {
	records := []FitnessRecord{
		{ID: 0, Score: 2},
		{ID: 1, Score: 1},
		{ID: 2, Score: 2},
		{ID: 3, Score: 1},
	}

	ranked := Rank(records)

	wantIDs := []int{1, 3, 0, 2}
	for i, want := range wantIDs {
		if ranked[i].ID != want {
			t.Errorf("ranked[%d].ID = %d, want %d", i, ranked[i].ID, want)
		}
	}
}

func TestRankNaNLast(t *testing.T) {
	records := []FitnessRecord{
		{ID: 0, Score: math.NaN()},
		{ID: 1, Score: math.Inf(1)},
		{ID: 2, Score: 5},
	}

	ranked := Rank(records)

	if ranked[0].ID != 2 || ranked[1].ID != 1 || ranked[2].ID != 0 {
		t.Errorf("ranked IDs = %d,%d,%d, want 2,1,0", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
}

func TestSetScoreDegenerate(t *testing.T) {
	p := newTestPopulation(t, 3)

	tests := []struct {
		name  string
		score float64
		bad   bool
	}{
		{"finite", 1.5, false},
		{"nan", math.NaN(), true},
		{"pos inf", math.Inf(1), true},
		{"neg inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.SetScore(0, tt.score)
			rec := p.Individual(0).Record

			if tt.bad {
				if !errors.Is(err, ErrDegenerateScore) {
					t.Errorf("error = %v, want ErrDegenerateScore", err)
				}
				if !rec.Degenerate || !math.IsInf(rec.Score, 1) {
					t.Errorf("record = %+v, want degenerate +Inf", rec)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if rec.Score != tt.score || rec.Degenerate {
				t.Errorf("record = %+v, want score %v", rec, tt.score)
			}
		})
	}
}

func TestClearRecords(t *testing.T) {
	p := newTestPopulation(t, 3)
	_ = p.SetScore(1, 7)
	_ = p.SetScore(2, math.NaN())

	p.ClearRecords()

	for _, r := range p.Records() {
		if r.Score != 0 || r.Degenerate {
			t.Errorf("record %d = %+v after clear", r.ID, r)
		}
	}
}

func TestSelectAdoptsBetterWinner(t *testing.T) {
	p := newTestPopulation(t, 4)
	p.SetChampion(Champion{ID: 0, Score: 5.0})

	scores := []float64{6.0, 4.5, 7.0, 5.5}
	for id, s := range scores {
		_ = p.SetScore(id, s)
	}

	sel := p.Select(0.1, 1.0)

	if !sel.Improved {
		t.Fatal("expected improvement")
	}
	if sel.Winner.ID != 1 {
		t.Errorf("winner = %d, want 1", sel.Winner.ID)
	}
	c := p.Champion()
	if c.ID != 1 {
		t.Errorf("champion ID = %d, want 1", c.ID)
	}
	if math.Abs(c.Score-4.6) > 1e-9 {
		t.Errorf("champion score = %v, want 4.6", c.Score)
	}
}

func TestSelectKeepsChampionAndRelaxes(t *testing.T) {
	p := newTestPopulation(t, 4)
	p.SetChampion(Champion{ID: 2, Score: 3.0})

	for id := 0; id < 4; id++ {
		_ = p.SetScore(id, 3.5+float64(id))
	}

	sel := p.Select(0.1, 1.0)

	if sel.Improved {
		t.Fatal("did not expect improvement")
	}
	c := p.Champion()
	if c.ID != 2 || c.Score != 4.0 {
		t.Errorf("champion = %+v, want ID 2 score 4.0", c)
	}
}

func TestSelectAllDegenerate(t *testing.T) {
	p := newTestPopulation(t, 4)
	p.SetChampion(Champion{ID: 3, Score: 2.0})

	for id := 0; id < 4; id++ {
		_ = p.SetScore(id, math.NaN())
	}

	sel := p.Select(0.1, 1.0)

	if sel.Improved {
		t.Fatal("degenerate generation must not improve")
	}
	if c := p.Champion(); c.ID != 3 || c.Score != 3.0 {
		t.Errorf("champion = %+v, want ID 3 score 3.0", c)
	}
}

func TestSelectFirstGeneration(t *testing.T) {
	p := newTestPopulation(t, 3)
	_ = p.SetScore(0, 10)
	_ = p.SetScore(1, 2)
	_ = p.SetScore(2, 8)

	sel := p.Select(0.1, 1.0)

	if !sel.Improved || p.Champion().ID != 1 {
		t.Errorf("first selection = %+v, want champion 1", sel)
	}
	if !p.IsChampion(1) || p.IsChampion(0) {
		t.Error("IsChampion disagrees with Champion")
	}
	if p.ChampionNetwork() != p.Network(1) {
		t.Error("ChampionNetwork should be individual 1's network")
	}
}

func TestScores(t *testing.T) {
	records := []FitnessRecord{
		{ID: 0, Score: 1},
		{ID: 1, Score: math.Inf(1), Degenerate: true},
		{ID: 2, Score: 3},
	}
	got := Scores(records)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Scores = %v, want [1 3]", got)
	}
}
