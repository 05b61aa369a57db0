package evolve

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/dino"
)

func testEvolution() config.EvolutionConfig {
	cfg := config.DefaultConfig().Evolution
	cfg.Population = 12
	cfg.Elitism = 2
	return cfg
}

// distanceEval scores genomes by closeness of their genes to a fixed target.
func distanceEval(ctx context.Context, generation int, cs []dino.Candidate) (dino.Episode, error) {
	for _, c := range cs {
		g := c.Genome.(*Genome)
		var d float64
		for _, v := range g.Genes {
			d += (v - 1) * (v - 1)
		}
		c.Genome.SetFitness(-d)
	}
	return dino.Episode{Generation: generation, Ticks: 1, Score: 1}, nil
}

func TestNewPopulation(t *testing.T) {
	topology := Topology{Inputs: InputCount, Hidden: 2, Outputs: OutputCount}
	p, err := NewPopulation(testEvolution(), topology, 1)
	if err != nil {
		t.Fatalf("NewPopulation() error = %v", err)
	}
	if len(p.Genomes()) != 12 {
		t.Fatalf("len(Genomes()) = %d, want 12", len(p.Genomes()))
	}
	seen := map[int]bool{}
	for _, c := range p.Candidates() {
		if seen[c.ID] {
			t.Fatalf("duplicate candidate id %d", c.ID)
		}
		seen[c.ID] = true
		if len(c.Genome.(*Genome).Genes) != topology.GeneCount() {
			t.Fatalf("genome %d has wrong gene count", c.ID)
		}
	}

	bad := testEvolution()
	bad.Elitism = 20
	if _, err := NewPopulation(bad, topology, 1); err == nil {
		t.Error("NewPopulation() with elitism above population should fail")
	}
	bad = testEvolution()
	bad.Population = 0
	if _, err := NewPopulation(bad, topology, 1); err == nil {
		t.Error("NewPopulation() with empty population should fail")
	}
}

func TestPopulationRunKeepsElites(t *testing.T) {
	stats := &StatsReporter{}
	topology := Topology{Inputs: InputCount, Hidden: 2, Outputs: OutputCount}
	p, err := NewPopulation(testEvolution(), topology, 7, WithReporter(stats))
	if err != nil {
		t.Fatalf("NewPopulation() error = %v", err)
	}

	best, err := p.Run(context.Background(), distanceEval, 30)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	series := stats.BestSeries()
	if len(series) != 30 {
		t.Fatalf("recorded %d generations, want 30", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i] < series[i-1] {
			t.Errorf("best fitness dropped from %v to %v at generation %d", series[i-1], series[i], i)
		}
	}
	if series[len(series)-1] <= series[0] {
		t.Errorf("best fitness did not improve: %v -> %v", series[0], series[len(series)-1])
	}
	if best.Fitness() != series[len(series)-1] {
		t.Errorf("Run() best = %v, want %v", best.Fitness(), series[len(series)-1])
	}
	if len(p.Genomes()) != 12 {
		t.Errorf("population size changed to %d", len(p.Genomes()))
	}
}

func TestPopulationRunThreshold(t *testing.T) {
	cfg := testEvolution()
	cfg.FitnessThreshold = 5
	stats := &StatsReporter{}
	p, err := NewPopulation(cfg, Topology{Inputs: 2, Outputs: 1}, 1, WithReporter(stats))
	if err != nil {
		t.Fatalf("NewPopulation() error = %v", err)
	}

	eval := func(_ context.Context, gen int, cs []dino.Candidate) (dino.Episode, error) {
		for i, c := range cs {
			c.Genome.SetFitness(float64(gen*10 + i))
		}
		return dino.Episode{}, nil
	}
	best, err := p.Run(context.Background(), eval, 50)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(stats.History()) != 1 {
		t.Errorf("ran %d generations, want 1", len(stats.History()))
	}
	if best.Fitness() != 11 {
		t.Errorf("best fitness = %v, want 11", best.Fitness())
	}
}

func TestPopulationRunErrors(t *testing.T) {
	p, err := NewPopulation(testEvolution(), Topology{Inputs: 2, Outputs: 1}, 1)
	if err != nil {
		t.Fatalf("NewPopulation() error = %v", err)
	}

	if _, err := p.Run(context.Background(), distanceEval, 0); err == nil {
		t.Error("Run() with zero generations should fail")
	}

	calls := 0
	eval := func(ctx context.Context, gen int, cs []dino.Candidate) (dino.Episode, error) {
		calls++
		if gen == 2 {
			return dino.Episode{}, dino.ErrStopped
		}
		return distanceEval(ctx, gen, cs)
	}
	best, err := p.Run(context.Background(), eval, 10)
	if !errors.Is(err, dino.ErrStopped) {
		t.Fatalf("Run() error = %v, want ErrStopped", err)
	}
	if calls != 3 {
		t.Errorf("evaluator called %d times, want 3", calls)
	}
	if best == nil {
		t.Error("Run() should return the best genome of completed generations")
	}
}

func TestPopulationWithRunner(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Episode.MaxTicks = 300
	cfg.Evolution.Population = 8
	cfg.Evolution.Elitism = 1

	factory, err := NewFactory(cfg.Evolution.Hidden, cfg.Evolution.Activation, cfg.Evolution.InputScale)
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	p, err := NewPopulation(cfg.Evolution, factory.Topology(), 11,
		WithReporter(NewLogReporter(log.New(io.Discard))))
	if err != nil {
		t.Fatalf("NewPopulation() error = %v", err)
	}
	runner := dino.NewRunner(cfg, factory, dino.WithSeed(11))

	best, err := p.Run(context.Background(), runner.Run, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Every agent survives at least the first tick before any obstacle reaches it.
	if best == nil || best.Fitness() <= 0 {
		t.Errorf("best = %v, want a genome with positive fitness", best)
	}
}
