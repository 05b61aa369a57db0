package dino

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/core"
)

// contestant is one surviving genome of an episode. Keeping agent, decision
// function and genome in one value keeps them index-aligned by construction.
type contestant struct {
	id     int
	agent  *Agent
	decide DecisionFunc
	genome Genome
}

// Episode summarizes one finished generation.
type Episode struct {
	Generation int
	Ticks      int  // Ticks simulated
	Score      int  // World score at the end
	Survivors  int  // Agents alive when the episode ended
	Capped     bool // Whether episode.max_ticks ended the episode
}

// Runner simulates whole generations. It holds the random source that picks
// obstacle sizes, so two runners built with the same seed replay identically
// given identical decisions.
type Runner struct {
	cfg       config.Config
	factory   NetworkFactory
	presenter Presenter
	logger    *log.Logger
	rng       *rand.Rand
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithPresenter attaches a presenter that receives a frame per tick and may
// request a stop.
func WithPresenter(p Presenter) RunnerOption {
	return func(r *Runner) {
		if p != nil {
			r.presenter = p
		}
	}
}

// WithLogger sets the logger used for episode diagnostics.
func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSeed seeds the obstacle size source.
func WithSeed(seed int64) RunnerOption {
	return func(r *Runner) {
		r.rng = rand.New(rand.NewSource(seed))
	}
}

// NewRunner creates a runner for the given configuration and network factory.
func NewRunner(cfg config.Config, factory NetworkFactory, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:       cfg,
		factory:   factory,
		presenter: nopPresenter{},
		logger:    log.New(io.Discard),
		rng:       rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run simulates one generation. Every genome's fitness is reset to zero and
// then accumulates the survival reward each tick plus the collision penalty
// when its agent is eliminated. Run returns once no agent is left, when the
// optional tick cap is reached, or with ErrStopped when ctx is cancelled or
// the presenter requests a stop.
func (r *Runner) Run(ctx context.Context, generation int, candidates []Candidate) (Episode, error) {
	ep := Episode{Generation: generation}
	if len(candidates) == 0 {
		return ep, ErrEmptyPopulation
	}

	active := make([]contestant, 0, len(candidates))
	for _, c := range candidates {
		c.Genome.SetFitness(0)
		decide, err := r.factory.New(c.Genome)
		if err != nil {
			return ep, fmt.Errorf("dino: build decision function for genome %d: %w", c.ID, err)
		}
		active = append(active, contestant{
			id:     c.ID,
			agent:  NewAgent(r.cfg.Agent),
			decide: decide,
			genome: c.Genome,
		})
	}

	world := NewWorld(r.cfg, r.rng)
	population := len(active)
	r.logger.Debug("episode started", "generation", generation, "population", population)

	for len(active) > 0 {
		if err := r.checkStop(ctx); err != nil {
			return ep, err
		}
		if r.cfg.Episode.MaxTicks > 0 && ep.Ticks >= r.cfg.Episode.MaxTicks {
			ep.Capped = true
			break
		}

		world.Advance()
		active = r.collide(world, active)

		if len(active) > 0 {
			if err := r.decide(world, active); err != nil {
				return ep, err
			}
		}

		world.EndTick()
		ep.Ticks++
		if r.presenting() {
			r.presenter.Present(r.frame(generation, population, world, active))
		}
	}

	ep.Score = world.Score()
	ep.Survivors = len(active)
	r.logger.Debug("episode finished",
		"generation", generation,
		"ticks", ep.Ticks,
		"survivors", ep.Survivors,
		"capped", ep.Capped,
	)
	return ep, nil
}

// checkStop polls the two stop sources once per tick.
func (r *Runner) checkStop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStopped, err)
	}
	if r.presenter.StopRequested() {
		return ErrStopped
	}
	return nil
}

// presenting reports whether a real presenter is attached.
func (r *Runner) presenting() bool {
	_, nop := r.presenter.(nopPresenter)
	return !nop
}

// collide tests every agent against the current obstacle snapshot. Colliders
// take the penalty and are left out of the returned active set.
func (r *Runner) collide(world *World, active []contestant) []contestant {
	next := active[:0]
	for _, c := range active {
		if world.Collides(c.agent.Rect()) {
			c.genome.AddFitness(r.cfg.Fitness.CollisionPenalty)
			r.logger.Debug("agent eliminated", "genome", c.id, "tick", world.Score(), "fitness", c.genome.Fitness())
			continue
		}
		next = append(next, c)
	}
	// Drop references held by the tail so eliminated networks can be collected
	for i := len(next); i < len(active); i++ {
		active[i] = contestant{}
	}
	return next
}

// decide rewards survival, steps every agent and lets its controller jump.
func (r *Runner) decide(world *World, active []contestant) error {
	nearest, err := world.Nearest()
	if err != nil {
		return err
	}

	inputs := make([]float64, 2)
	for _, c := range active {
		c.genome.AddFitness(r.cfg.Fitness.SurvivalReward)
		c.agent.Update(false)

		inputs[0] = c.agent.Y
		inputs[1] = math.Abs(c.agent.X - nearest.X)
		out, err := c.decide.Activate(inputs)
		if err != nil {
			return fmt.Errorf("%w: genome %d: %v", ErrDecisionContract, c.id, err)
		}
		if len(out) == 0 {
			return fmt.Errorf("%w: genome %d returned no outputs", ErrDecisionContract, c.id)
		}
		if !core.Finite(out[0]) {
			return fmt.Errorf("%w: genome %d returned non-finite output %v", ErrDecisionContract, c.id, out[0])
		}

		if out[0] > r.cfg.Fitness.JumpThreshold {
			c.agent.Update(true)
		}
	}
	return nil
}

// frame snapshots the world and the surviving agents.
func (r *Runner) frame(generation, population int, world *World, active []contestant) Frame {
	f := Frame{
		Generation: generation,
		Tick:       world.Score() - 1,
		Score:      world.Score(),
		Speed:      world.Speed(),
		Background: world.Background(),
		Population: population,
		Agents:     make([]AgentView, len(active)),
		Obstacles:  make([]ObstacleView, len(world.Obstacles())),
	}
	for i, c := range active {
		f.Agents[i] = AgentView{
			ID:      c.id,
			Rect:    c.agent.Rect(),
			Jumping: c.agent.Jumping(),
			Step:    c.agent.Step(),
			Fitness: c.genome.Fitness(),
		}
	}
	for i, o := range world.Obstacles() {
		f.Obstacles[i] = ObstacleView{Rect: o.Rect(), Size: o.Size}
	}
	return f
}
