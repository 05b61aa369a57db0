package evolve

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/dinoevo/internal/dino"
)

// Genome is a flat weight vector plus the fitness the simulation wrote into it.
type Genome struct {
	ID      int
	Genes   []float64
	fitness float64
}

// NewGenome creates a genome with gaussian weights scaled by sigma.
func NewGenome(id int, t Topology, rng *rand.Rand, sigma float64) *Genome {
	genes := make([]float64, t.GeneCount())
	for i := range genes {
		genes[i] = rng.NormFloat64() * sigma
	}
	return &Genome{ID: id, Genes: genes}
}

// Fitness returns the fitness accumulated by the last episode.
func (g *Genome) Fitness() float64 {
	return g.fitness
}

// SetFitness overwrites the fitness.
func (g *Genome) SetFitness(f float64) {
	g.fitness = f
}

// AddFitness adds delta to the fitness.
func (g *Genome) AddFitness(delta float64) {
	g.fitness += delta
}

// Clone copies the genome under a new id, keeping its fitness.
func (g *Genome) Clone(id int) *Genome {
	return &Genome{
		ID:      id,
		Genes:   append([]float64(nil), g.Genes...),
		fitness: g.fitness,
	}
}

// String summarizes the genome for logs.
func (g *Genome) String() string {
	return fmt.Sprintf("genome %d (fitness %.2f, %d genes)", g.ID, g.fitness, len(g.Genes))
}

// Factory turns genomes into networks. It implements dino.NetworkFactory and
// owns the network configuration the simulation never sees.
type Factory struct {
	topology Topology
	act      Activation
	scale    []float64
}

// NewFactory creates a factory for the dino controller topology.
func NewFactory(hidden int, activation string, inputScale []float64) (*Factory, error) {
	act, err := GetActivation(activation)
	if err != nil {
		return nil, err
	}
	t := Topology{Inputs: InputCount, Hidden: hidden, Outputs: OutputCount}
	if len(inputScale) != 0 && len(inputScale) != t.Inputs {
		return nil, fmt.Errorf("evolve: input scale needs %d entries, got %d", t.Inputs, len(inputScale))
	}
	return &Factory{
		topology: t,
		act:      act,
		scale:    append([]float64(nil), inputScale...),
	}, nil
}

// Topology returns the network shape built by the factory.
func (f *Factory) Topology() Topology {
	return f.topology
}

// New builds the decision function for a genome.
func (f *Factory) New(g dino.Genome) (dino.DecisionFunc, error) {
	genome, ok := g.(*Genome)
	if !ok {
		return nil, fmt.Errorf("evolve: unsupported genome type %T", g)
	}
	return NewNetwork(f.topology, genome.Genes, f.act, f.scale)
}
