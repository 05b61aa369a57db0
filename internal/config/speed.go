package config

import "github.com/vovakirdan/dinoevo/internal/core"

// Speed policy names.
const (
	SpeedConstant = "constant"
	SpeedScore    = "score"
)

// SpeedPolicy computes the world speed for the current score.
type SpeedPolicy struct {
	base float64
	cfg  SpeedConfig
}

// NewSpeedPolicy creates a policy from the world configuration.
func NewSpeedPolicy(world WorldConfig) SpeedPolicy {
	return SpeedPolicy{base: world.BaseSpeed, cfg: world.Speed}
}

// IsConstant reports whether the speed never changes during an episode.
func (p SpeedPolicy) IsConstant() bool {
	return p.cfg.Policy != SpeedScore || p.cfg.Multiplier == 0
}

// Level returns the ramp progress in [0, 1] for the given score.
func (p SpeedPolicy) Level(score int) float64 {
	if p.IsConstant() {
		return 0
	}
	maxAt := float64(p.cfg.MaxAt)
	if maxAt <= 0 {
		maxAt = 1 // Prevent division by zero
	}
	return core.ClampF(float64(score)/maxAt, 0.0, 1.0)
}

// Speed returns the pixels-per-tick scroll rate at the given score.
func (p SpeedPolicy) Speed(score int) float64 {
	return p.base * (1.0 + p.Level(score)*p.cfg.Multiplier)
}

