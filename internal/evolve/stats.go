package evolve

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/dinoevo/internal/dino"
)

// GenerationStats summarizes the fitness of one evaluated generation.
type GenerationStats struct {
	Generation int
	Size       int
	Best       float64
	Worst      float64
	Mean       float64
	StdDev     float64
	BestID     int
	Ticks      int
	Score      int
	Survivors  int
	Capped     bool
	Elapsed    time.Duration
}

// Summarize computes statistics for genomes after an episode.
func Summarize(generation int, genomes []*Genome, ep dino.Episode, elapsed time.Duration) GenerationStats {
	s := GenerationStats{
		Generation: generation,
		Size:       len(genomes),
		Ticks:      ep.Ticks,
		Score:      ep.Score,
		Survivors:  ep.Survivors,
		Capped:     ep.Capped,
		Elapsed:    elapsed,
	}
	if len(genomes) == 0 {
		return s
	}

	fitness := make([]float64, len(genomes))
	for i, g := range genomes {
		fitness[i] = g.Fitness()
	}
	best := floats.MaxIdx(fitness)
	s.Best = fitness[best]
	s.BestID = genomes[best].ID
	s.Worst = floats.Min(fitness)
	if len(fitness) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(fitness, nil)
	} else {
		s.Mean = fitness[0]
	}
	return s
}
