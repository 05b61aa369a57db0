package dino

import "github.com/vovakirdan/dinoevo/internal/config"

// Agent is the dino: a two-state (running / jumping) actor that never moves
// horizontally. A jump follows a closed-form arc so every agent given the same
// decisions traces exactly the same path.
type Agent struct {
	Entity
	running  bool
	jumping  bool
	velocity float64
	step     int
	cfg      config.AgentConfig
}

// NewAgent creates an agent standing on the ground in the running state.
func NewAgent(cfg config.AgentConfig) *Agent {
	return &Agent{
		Entity: Entity{
			X: cfg.X,
			Y: cfg.GroundY,
			W: cfg.Width,
			H: cfg.Height,
		},
		running:  true,
		velocity: cfg.JumpVelocity,
		cfg:      cfg,
	}
}

// Update advances the state machine one step. A true jump starts a jump only
// from the running state; while airborne the input is ignored.
func (a *Agent) Update(jump bool) {
	if a.jumping {
		a.jumpStep()
	} else if a.running {
		a.runStep()
	}

	if a.step >= a.cfg.StepWrap {
		a.step = 0
	}

	if jump && !a.jumping {
		a.jumping = true
		a.running = false
	}
}

// jumpStep rises by the current velocity, then applies gravity. Once the
// velocity passes -JumpVelocity the agent snaps back onto the ground.
func (a *Agent) jumpStep() {
	a.Y -= a.velocity * a.cfg.JumpScale
	a.velocity -= a.cfg.Gravity
	if a.velocity < -a.cfg.JumpVelocity {
		a.jumping = false
		a.running = true
		a.velocity = a.cfg.JumpVelocity
		a.Y = a.cfg.GroundY
	}
}

func (a *Agent) runStep() {
	a.Y = a.cfg.GroundY
	a.step++
}

// Running reports whether the agent is on the ground.
func (a *Agent) Running() bool {
	return a.running
}

// Jumping reports whether the agent is airborne.
func (a *Agent) Jumping() bool {
	return a.jumping
}

// Velocity returns the current vertical velocity (positive = rising).
func (a *Agent) Velocity() float64 {
	return a.velocity
}

// Step returns the running animation phase.
func (a *Agent) Step() int {
	return a.step
}
