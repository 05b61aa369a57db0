package dino

import (
	"math/rand"

	"github.com/vovakirdan/dinoevo/internal/config"
)

// SizeClass tags an obstacle variant. Variants differ only by the geometry
// looked up in the config table.
type SizeClass int

const (
	Small SizeClass = iota
	Large
)

// String returns a human-readable name for the size class.
func (s SizeClass) String() string {
	switch s {
	case Small:
		return "small"
	case Large:
		return "large"
	default:
		return "unknown"
	}
}

// Obstacle is a cactus scrolling towards the agents.
type Obstacle struct {
	Entity
	Size SizeClass
}

// advance moves the obstacle left and reports whether it has fully left the screen.
func (o *Obstacle) advance(speed float64) bool {
	o.X -= speed
	return o.X < -o.W
}

// ObstacleStream spawns, moves and retires obstacles. A new obstacle is
// spawned only once the stream is empty, so at most one is ever in flight.
type ObstacleStream struct {
	obstacles []Obstacle
	expired   []bool
	rng       *rand.Rand
	shapes    [2]config.ObstacleShape
	spawnX    float64
}

// NewObstacleStream creates an empty stream drawing size classes from rng.
func NewObstacleStream(rng *rand.Rand, cfg config.Config) *ObstacleStream {
	return &ObstacleStream{
		obstacles: make([]Obstacle, 0, 2),
		rng:       rng,
		shapes:    [2]config.ObstacleShape{Small: cfg.Obstacles.Small, Large: cfg.Obstacles.Large},
		spawnX:    cfg.SpawnX(),
	}
}

// SpawnIfEmpty adds one obstacle at the spawn position when none remain.
// The size class is chosen uniformly at random.
func (s *ObstacleStream) SpawnIfEmpty() {
	if len(s.obstacles) > 0 {
		return
	}
	size := SizeClass(s.rng.Intn(2))
	shape := s.shapes[size]
	s.obstacles = append(s.obstacles, Obstacle{
		Entity: Entity{
			X: s.spawnX,
			Y: shape.Y,
			W: shape.Width,
			H: shape.Height,
		},
		Size: size,
	})
}

// Advance moves every obstacle left by speed and marks those that have left
// the screen. Marked obstacles stay visible until Sweep.
func (s *ObstacleStream) Advance(speed float64) {
	s.expired = s.expired[:0]
	for i := range s.obstacles {
		s.expired = append(s.expired, s.obstacles[i].advance(speed))
	}
}

// Sweep removes the obstacles marked by the last Advance.
func (s *ObstacleStream) Sweep() {
	kept := s.obstacles[:0]
	for i, o := range s.obstacles {
		if i < len(s.expired) && s.expired[i] {
			continue
		}
		kept = append(kept, o)
	}
	s.obstacles = kept
	s.expired = s.expired[:0]
}

// Obstacles returns the obstacles currently in the stream, in spawn order.
func (s *ObstacleStream) Obstacles() []Obstacle {
	return s.obstacles
}

// Len returns the number of obstacles in the stream.
func (s *ObstacleStream) Len() int {
	return len(s.obstacles)
}
