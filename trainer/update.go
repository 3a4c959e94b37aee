package trainer

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/umlaut/neural"
)

// updatePopulation applies lerp, mutate and evolve, in that order, to every
// individual except the champion. Each individual draws from its own rng
// seeded from the master stream in ID order, so results do not depend on
// the number of workers.
func (t *Trainer) updatePopulation() error {
	n := t.pop.Len()
	for id := 0; id < n; id++ {
		t.seeds[id] = t.rng.Int63()
	}

	champ := t.pop.ChampionNetwork()
	opts := t.opts
	var skipped atomic.Int64

	p := pool.New().WithErrors().WithMaxGoroutines(t.sched.Workers())
	for id := 0; id < n; id++ {
		if t.pop.IsChampion(id) {
			continue
		}
		nn := t.pop.Network(id)
		seed := t.seeds[id]
		p.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			skips, err := updateIndividual(nn, champ, rng, &opts)
			skipped.Add(int64(skips))
			if err != nil {
				slog.Warn("operator skipped", "generation", t.generation, "id", id, "error", err)
			}
			return nil
		})
	}
	err := p.Wait()

	t.skipped += int(skipped.Load())
	return err
}

// updateIndividual runs the operator chain on one network. With no
// champion only mutation applies. Operators that fail on shape or an
// unconfigured network are skipped and their errors returned joined so the
// caller can log them.
func updateIndividual(nn, champ *neural.Network, rng *rand.Rand, opts *Options) (int, error) {
	var errs []error

	if champ != nil && opts.Lerp {
		if err := nn.LerpTowards(champ, opts.CopyRate); err != nil {
			errs = append(errs, err)
		}
	}

	if opts.Mutate {
		mutate := nn.Mutate
		if opts.Blend {
			mutate = nn.Blend
		}
		if err := mutate(rng, opts.MutateRate); err != nil {
			errs = append(errs, err)
		}
	}

	if champ != nil && opts.Evolve {
		if err := nn.Evolve(rng, champ, opts.EvolveRate); err != nil {
			errs = append(errs, err)
		}
	}

	return len(errs), errors.Join(errs...)
}
