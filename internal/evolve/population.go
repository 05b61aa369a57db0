package evolve

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/dino"
)

// Evaluator simulates one generation and writes fitness into every genome.
// dino.Runner.Run satisfies it.
type Evaluator func(ctx context.Context, generation int, candidates []dino.Candidate) (dino.Episode, error)

// Population holds the genomes of the current generation and breeds the next.
type Population struct {
	cfg       config.EvolutionConfig
	topology  Topology
	rng       *rand.Rand
	selector  Selector
	reporters []Reporter
	genomes   []*Genome
	nextID    int
	best      *Genome
}

// Option customizes a Population.
type Option func(*Population)

// WithReporter adds a reporter.
func WithReporter(r Reporter) Option {
	return func(p *Population) {
		if r != nil {
			p.reporters = append(p.reporters, r)
		}
	}
}

// WithSelector replaces the tournament selector.
func WithSelector(s Selector) Option {
	return func(p *Population) {
		if s != nil {
			p.selector = s
		}
	}
}

// NewPopulation creates the initial random population.
func NewPopulation(cfg config.EvolutionConfig, topology Topology, seed int64, opts ...Option) (*Population, error) {
	if cfg.Population <= 0 {
		return nil, fmt.Errorf("evolve: population must be positive, got %d", cfg.Population)
	}
	if cfg.Elitism < 0 || cfg.Elitism > cfg.Population {
		return nil, fmt.Errorf("evolve: elitism %d out of range for population %d", cfg.Elitism, cfg.Population)
	}

	p := &Population{
		cfg:      cfg,
		topology: topology,
		rng:      rand.New(rand.NewSource(seed)),
		selector: TournamentSelector{Size: cfg.TournamentSize},
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := 0; i < cfg.Population; i++ {
		p.genomes = append(p.genomes, NewGenome(p.newID(), topology, p.rng, cfg.WeightInit))
	}
	return p, nil
}

// Genomes returns the current generation.
func (p *Population) Genomes() []*Genome {
	return p.genomes
}

// Best returns a snapshot of the fittest genome seen so far, or nil before
// any generation was evaluated.
func (p *Population) Best() *Genome {
	return p.best
}

// Candidates pairs every genome with its id.
func (p *Population) Candidates() []dino.Candidate {
	out := make([]dino.Candidate, len(p.genomes))
	for i, g := range p.genomes {
		out[i] = dino.Candidate{ID: g.ID, Genome: g}
	}
	return out
}

// Run evaluates and breeds up to generations generations. It stops early when
// the fittest genome reaches the fitness threshold and returns the best
// genome seen. An evaluator error ends the run; the best genome of the
// generations completed so far is returned with it.
func (p *Population) Run(ctx context.Context, eval Evaluator, generations int) (*Genome, error) {
	if generations <= 0 {
		return nil, errors.New("evolve: generations must be positive")
	}

	for gen := 0; gen < generations; gen++ {
		for _, r := range p.reporters {
			r.StartGeneration(gen)
		}

		start := time.Now()
		ep, err := eval(ctx, gen, p.Candidates())
		if err != nil {
			return p.best, fmt.Errorf("evolve: evaluate generation %d: %w", gen, err)
		}
		stats := Summarize(gen, p.genomes, ep, time.Since(start))

		ranked := rank(p.genomes)
		if p.best == nil || ranked[0].Fitness() > p.best.Fitness() {
			p.best = ranked[0].Clone(ranked[0].ID)
		}
		for _, r := range p.reporters {
			r.EndGeneration(stats, p.best)
		}

		if p.cfg.FitnessThreshold > 0 && p.best.Fitness() >= p.cfg.FitnessThreshold {
			for _, r := range p.reporters {
				r.FoundSolution(gen, p.best)
			}
			break
		}
		if gen == generations-1 {
			break
		}
		if err := p.reproduce(ranked); err != nil {
			return p.best, err
		}
	}
	return p.best, nil
}

// reproduce replaces the population with the elites of ranked plus children
// of tournament-selected parents.
func (p *Population) reproduce(ranked []*Genome) error {
	next := make([]*Genome, 0, len(ranked))
	for i := 0; i < p.cfg.Elitism && i < len(ranked); i++ {
		next = append(next, ranked[i].Clone(p.newID()))
	}

	params := MutationParams{
		Rate:     p.cfg.MutationRate,
		Sigma:    p.cfg.MutationSigma,
		BigRate:  p.cfg.BigMutationRate,
		BigSigma: p.cfg.BigMutationSigma,
	}
	for len(next) < p.cfg.Population {
		a, err := p.selector.PickParent(p.rng, ranked)
		if err != nil {
			return err
		}
		genes := append([]float64(nil), a.Genes...)
		if p.rng.Float64() < p.cfg.CrossoverRate {
			b, err := p.selector.PickParent(p.rng, ranked)
			if err != nil {
				return err
			}
			if genes, err = Crossover(p.rng, a.Genes, b.Genes); err != nil {
				return err
			}
		}
		Mutate(p.rng, genes, params)
		next = append(next, &Genome{ID: p.newID(), Genes: genes})
	}

	p.genomes = next
	return nil
}

func (p *Population) newID() int {
	p.nextID++
	return p.nextID
}
