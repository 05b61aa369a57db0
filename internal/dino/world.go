package dino

import (
	"math/rand"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/core"
)

// World owns the state shared by every agent of an episode: game speed,
// background scroll, the score counter and the obstacle stream.
type World struct {
	speed      float64
	policy     config.SpeedPolicy
	background float64
	bgWidth    float64
	score      int
	stream     *ObstacleStream
}

// NewWorld creates a world at score zero with an empty obstacle stream.
func NewWorld(cfg config.Config, rng *rand.Rand) *World {
	policy := config.NewSpeedPolicy(cfg.World)
	return &World{
		speed:   policy.Speed(0),
		policy:  policy,
		bgWidth: cfg.World.BackgroundWidth,
		stream:  NewObstacleStream(rng, cfg),
	}
}

// Advance runs the first half of a tick: scroll the background, spawn an
// obstacle if none is in flight, then move obstacles and mark the ones that
// have left the screen.
func (w *World) Advance() {
	w.speed = w.policy.Speed(w.score)

	w.background -= w.speed
	if w.background <= -w.bgWidth {
		w.background = 0
	}

	w.stream.SpawnIfEmpty()
	w.stream.Advance(w.speed)
}

// Collides reports whether r overlaps any obstacle currently in the stream.
func (w *World) Collides(r core.Rect) bool {
	for _, o := range w.stream.Obstacles() {
		if r.Intersects(o.Rect()) {
			return true
		}
	}
	return false
}

// Nearest returns the obstacle the agents are sensing. The spawn policy
// keeps exactly one in flight between Advance and EndTick.
func (w *World) Nearest() (Obstacle, error) {
	obstacles := w.stream.Obstacles()
	if len(obstacles) == 0 {
		return Obstacle{}, ErrNoObstacle
	}
	return obstacles[0], nil
}

// EndTick closes a tick: retire marked obstacles and bump the score.
func (w *World) EndTick() {
	w.stream.Sweep()
	w.score++
}

// Speed returns the scroll rate used by the current tick.
func (w *World) Speed() float64 {
	return w.speed
}

// Background returns the background scroll offset.
func (w *World) Background() float64 {
	return w.background
}

// Score returns the number of completed ticks.
func (w *World) Score() int {
	return w.score
}

// Obstacles returns the obstacles currently in flight.
func (w *World) Obstacles() []Obstacle {
	return w.stream.Obstacles()
}
