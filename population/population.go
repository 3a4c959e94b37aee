// Package population holds the arena of networks being trained, their
// per-generation fitness records, and the persistent champion.
package population

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/umlaut/neural"
)

// NoChampion is the champion ID before any generation has been selected.
const NoChampion = -1

// Individual is one network plus its fitness record for the current generation.
type Individual struct {
	ID      int
	Network *neural.Network
	Record  FitnessRecord
}

// Champion is the best individual found so far. Score carries the
// acceptance slack, so it is usually above the score the champion achieved.
type Champion struct {
	ID    int
	Score float64
}

// Valid reports whether a champion has been chosen.
func (c Champion) Valid() bool {
	return c.ID != NoChampion
}

// Population is a fixed-size arena of individuals indexed by stable IDs.
type Population struct {
	topo        neural.Topology
	individuals []Individual
	champion    Champion
}

// New creates n randomized networks of the given topology.
func New(n int, topo neural.Topology, act neural.Activation, rng *rand.Rand) (*Population, error) {
	if n <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", n)
	}

	p := &Population{
		topo:        topo,
		individuals: make([]Individual, n),
		champion:    Champion{ID: NoChampion, Score: math.Inf(1)},
	}

	for i := range p.individuals {
		nn, err := neural.New(topo)
		if err != nil {
			return nil, fmt.Errorf("creating individual %d: %w", i, err)
		}
		nn.SetActivation(act)
		if err := nn.Randomize(rng); err != nil {
			return nil, err
		}
		p.individuals[i] = Individual{
			ID:      i,
			Network: nn,
			Record:  FitnessRecord{ID: i},
		}
	}

	return p, nil
}

// Len returns the number of individuals.
func (p *Population) Len() int {
	return len(p.individuals)
}

// Topology returns the shared network topology.
func (p *Population) Topology() neural.Topology {
	return p.topo
}

// Individual returns the individual with the given ID.
func (p *Population) Individual(id int) *Individual {
	return &p.individuals[id]
}

// Network returns the network of the given individual.
func (p *Population) Network(id int) *neural.Network {
	return p.individuals[id].Network
}

// Champion returns the current champion reference.
func (p *Population) Champion() Champion {
	return p.champion
}

// ChampionNetwork returns the champion's network, or nil before the first
// successful selection.
func (p *Population) ChampionNetwork() *neural.Network {
	if !p.champion.Valid() {
		return nil
	}
	return p.individuals[p.champion.ID].Network
}

// IsChampion reports whether id is the current champion.
func (p *Population) IsChampion(id int) bool {
	return p.champion.Valid() && p.champion.ID == id
}

// SetChampion overrides the champion. Used by tests and tools that seed a
// known state.
func (p *Population) SetChampion(c Champion) {
	p.champion = c
}

// ClearRecords resets every fitness record to score 0.
func (p *Population) ClearRecords() {
	for i := range p.individuals {
		p.individuals[i].Record = FitnessRecord{ID: i}
	}
}

// SetScore stores an environment score for one individual. Non-finite
// scores are recorded as +Inf and flagged degenerate; the returned error
// wraps ErrDegenerateScore so callers can log it.
func (p *Population) SetScore(id int, score float64) error {
	rec := &p.individuals[id].Record
	if math.IsNaN(score) || math.IsInf(score, 0) {
		rec.Score = math.Inf(1)
		rec.Degenerate = true
		return fmt.Errorf("individual %d scored %v: %w", id, score, ErrDegenerateScore)
	}
	rec.Score = score
	rec.Degenerate = false
	return nil
}

// Records returns a copy of every fitness record in ID order.
func (p *Population) Records() []FitnessRecord {
	out := make([]FitnessRecord, len(p.individuals))
	for i := range p.individuals {
		out[i] = p.individuals[i].Record
	}
	return out
}

// Selection describes the outcome of one Select call.
type Selection struct {
	Ranked   []FitnessRecord // ascending by score
	Winner   FitnessRecord
	Improved bool
	Champion Champion
}

// Select ranks the current records and updates the champion.
//
// A finite winner strictly better than the champion's score becomes the
// new champion with acceptSlack added to its score. Otherwise the champion
// is kept and rejectSlack is added to its score, relaxing the bar.
func (p *Population) Select(acceptSlack, rejectSlack float64) Selection {
	ranked := Rank(p.Records())
	winner := ranked[0]

	if !winner.Degenerate && winner.Score < p.champion.Score {
		p.champion = Champion{ID: winner.ID, Score: winner.Score + acceptSlack}
		return Selection{Ranked: ranked, Winner: winner, Improved: true, Champion: p.champion}
	}

	p.champion.Score += rejectSlack
	return Selection{Ranked: ranked, Winner: winner, Improved: false, Champion: p.champion}
}
