package dino

import (
	"errors"

	"github.com/vovakirdan/dinoevo/internal/core"
)

// Sentinel errors returned by the runner.
var (
	// ErrStopped reports that the stop signal ended the episode.
	ErrStopped = errors.New("dino: stopped")
	// ErrNoObstacle reports an empty stream at sensing time.
	ErrNoObstacle = errors.New("dino: no obstacle to sense")
	// ErrDecisionContract reports a decision function that broke its output contract.
	ErrDecisionContract = errors.New("dino: decision function contract violated")
	// ErrEmptyPopulation reports a generation with no genomes.
	ErrEmptyPopulation = errors.New("dino: empty population")
)

// Genome is the evolver-side record the runner writes fitness into.
type Genome interface {
	Fitness() float64
	SetFitness(f float64)
	AddFitness(delta float64)
}

// Candidate pairs a genome with its identifier for one generation.
type Candidate struct {
	ID     int
	Genome Genome
}

// DecisionFunc is an evolved controller. The runner feeds it
// (vertical position, distance to the nearest obstacle) and reads outputs[0].
type DecisionFunc interface {
	Activate(inputs []float64) ([]float64, error)
}

// NetworkFactory turns a genome into a decision function. The network
// configuration lives inside the factory and is opaque to the runner.
type NetworkFactory interface {
	New(g Genome) (DecisionFunc, error)
}

// Presenter receives one frame per tick and exposes the user's stop request.
type Presenter interface {
	Present(f Frame)
	StopRequested() bool
}

// Frame is a read-only snapshot of an episode after a tick.
type Frame struct {
	Generation int
	Tick       int
	Score      int
	Speed      float64
	Background float64
	Population int
	Agents     []AgentView
	Obstacles  []ObstacleView
}

// Alive returns the number of agents still in the episode.
func (f Frame) Alive() int {
	return len(f.Agents)
}

// AgentView describes one surviving agent.
type AgentView struct {
	ID      int
	Rect    core.Rect
	Jumping bool
	Step    int
	Fitness float64
}

// ObstacleView describes one obstacle in flight.
type ObstacleView struct {
	Rect core.Rect
	Size SizeClass
}

type nopPresenter struct{}

func (nopPresenter) Present(Frame)       {}
func (nopPresenter) StopRequested() bool { return false }
