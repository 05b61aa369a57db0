package evolve

import (
	"time"

	"github.com/charmbracelet/log"
)

// Reporter observes a population run.
type Reporter interface {
	StartGeneration(generation int)
	EndGeneration(stats GenerationStats, best *Genome)
	FoundSolution(generation int, best *Genome)
}

// LogReporter writes one line per generation.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter creates a reporter writing to logger.
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) StartGeneration(generation int) {
	r.logger.Debug("generation started", "generation", generation)
}

func (r *LogReporter) EndGeneration(s GenerationStats, best *Genome) {
	r.logger.Info("generation finished",
		"generation", s.Generation,
		"best", s.Best,
		"mean", s.Mean,
		"stddev", s.StdDev,
		"ticks", s.Ticks,
		"elapsed", s.Elapsed.Round(time.Millisecond),
		"champion", best.ID,
	)
}

func (r *LogReporter) FoundSolution(generation int, best *Genome) {
	r.logger.Info("fitness threshold reached", "generation", generation, "genome", best.ID, "fitness", best.Fitness())
}

// StatsReporter keeps the statistics of every generation.
type StatsReporter struct {
	history []GenerationStats
}

func (r *StatsReporter) StartGeneration(int) {}

func (r *StatsReporter) EndGeneration(s GenerationStats, _ *Genome) {
	r.history = append(r.history, s)
}

func (r *StatsReporter) FoundSolution(int, *Genome) {}

// History returns the recorded generations in order.
func (r *StatsReporter) History() []GenerationStats {
	return append([]GenerationStats(nil), r.history...)
}

// BestSeries returns the best fitness of every generation.
func (r *StatsReporter) BestSeries() []float64 {
	out := make([]float64, len(r.history))
	for i, s := range r.history {
		out[i] = s.Best
	}
	return out
}

// MeanSeries returns the mean fitness of every generation.
func (r *StatsReporter) MeanSeries() []float64 {
	out := make([]float64, len(r.history))
	for i, s := range r.history {
		out[i] = s.Mean
	}
	return out
}
