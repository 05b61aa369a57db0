package evolve

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/vovakirdan/dinoevo/internal/config"
)

// Selector chooses parents from genomes ranked best first.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []*Genome) (*Genome, error)
}

var errNoRandom = errors.New("evolve: random source is required")

// EliteSelector picks uniformly from the top Count genomes.
type EliteSelector struct {
	Count int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) PickParent(rng *rand.Rand, ranked []*Genome) (*Genome, error) {
	if rng == nil {
		return nil, errNoRandom
	}
	if s.Count <= 0 || s.Count > len(ranked) {
		return nil, fmt.Errorf("evolve: invalid elite count %d for %d genomes", s.Count, len(ranked))
	}
	return ranked[rng.Intn(s.Count)], nil
}

// TournamentSelector samples Size genomes and keeps the fittest.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []*Genome) (*Genome, error) {
	if rng == nil {
		return nil, errNoRandom
	}
	if len(ranked) == 0 {
		return nil, errors.New("evolve: no genomes to select from")
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}
	if size > len(ranked) {
		size = len(ranked)
	}

	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < size; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Fitness() > best.Fitness() {
			best = candidate
		}
	}
	return best, nil
}

// NewSelector builds the parent selector named by evolution.selector.
// The elite pool is the elitism count, with a floor of one genome.
func NewSelector(cfg config.EvolutionConfig) (Selector, error) {
	switch cfg.Selector {
	case "", config.SelectorTournament:
		return TournamentSelector{Size: cfg.TournamentSize}, nil
	case config.SelectorElite:
		return EliteSelector{Count: max(cfg.Elitism, 1)}, nil
	default:
		return nil, fmt.Errorf("evolve: unknown selector %q", cfg.Selector)
	}
}

// rank returns genomes sorted by fitness, best first. Ties keep id order.
func rank(genomes []*Genome) []*Genome {
	ranked := append([]*Genome(nil), genomes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Fitness() != ranked[j].Fitness() {
			return ranked[i].Fitness() > ranked[j].Fitness()
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
