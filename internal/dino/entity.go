// Package dino implements the simulation half of a neuroevolved dino runner:
// the agent state machine, the shared obstacle stream, and the generation
// runner that turns one population of genomes into fitness scores.
package dino

import "github.com/vovakirdan/dinoevo/internal/core"

// Entity is a positioned, axis-aligned actor.
type Entity struct {
	X, Y float64 // Top-left corner in world pixels
	W, H float64
}

// Rect returns the bounding box. It is derived from the position on every
// call, so it cannot go stale.
func (e Entity) Rect() core.Rect {
	return core.NewRect(e.X, e.Y, e.W, e.H)
}
