package main

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dinoevo/internal/evolve"
	"github.com/vovakirdan/dinoevo/internal/storage"
)

// runRecorder persists generation statistics and the champion of a run.
// Storage errors are logged and the first one is kept for the caller.
type runRecorder struct {
	store    *storage.Store
	runID    int64
	logger   *log.Logger
	champion *evolve.Genome
	solved   bool
	err      error
}

func (r *runRecorder) StartGeneration(int) {}

func (r *runRecorder) EndGeneration(s evolve.GenerationStats, best *evolve.Genome) {
	r.keep(r.store.SaveGeneration(storage.Generation{
		RunID:      r.runID,
		Generation: s.Generation,
		Best:       s.Best,
		Mean:       s.Mean,
		StdDev:     s.StdDev,
		Worst:      s.Worst,
		BestGenome: s.BestID,
		Ticks:      s.Ticks,
		Score:      s.Score,
		Capped:     s.Capped,
		Elapsed:    s.Elapsed,
	}))

	if r.champion == best {
		return
	}
	r.champion = best
	r.keep(r.store.SaveChampion(storage.Champion{
		RunID:      r.runID,
		GenomeID:   best.ID,
		Generation: s.Generation,
		Fitness:    best.Fitness(),
		Genes:      best.Genes,
	}))
}

func (r *runRecorder) FoundSolution(int, *evolve.Genome) {
	r.solved = true
}

func (r *runRecorder) keep(err error) {
	if err == nil {
		return
	}
	r.logger.Error("cannot persist run", "run", r.runID, "err", err)
	if r.err == nil {
		r.err = err
	}
}
