package config

import (
	_ "embed"
)

//go:embed defaults/sim.yaml
var defaultSimYAML []byte

// DefaultConfig returns the built-in configuration. It mirrors defaults/sim.yaml
// and is used when the embedded YAML cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Screen: ScreenConfig{
			Width:  1100,
			Height: 600,
			FPS:    30,
		},
		World: WorldConfig{
			BaseSpeed:       20,
			BackgroundWidth: 1100,
			SpawnOffset:     400,
			Speed: SpeedConfig{
				Policy:     SpeedConstant,
				Multiplier: 1.0,
				MaxAt:      2000,
			},
		},
		Agent: AgentConfig{
			X:            80,
			GroundY:      310,
			Width:        50,
			Height:       60,
			JumpVelocity: 8.5,
			Gravity:      0.8,
			JumpScale:    4,
			StepWrap:     10,
		},
		Obstacles: ObstacleConfig{
			Small: ObstacleShape{Y: 325, Width: 50, Height: 70},
			Large: ObstacleShape{Y: 300, Width: 50, Height: 70},
		},
		Fitness: FitnessConfig{
			SurvivalReward:   0.1,
			CollisionPenalty: -1,
			JumpThreshold:    0.5,
		},
		Episode: EpisodeConfig{
			MaxTicks: 0,
		},
		Evolution: EvolutionConfig{
			Population:       50,
			Generations:      50,
			Hidden:           4,
			Activation:       "sigmoid",
			InputScale:       []float64{0.01, 0.01},
			WeightInit:       1.0,
			Elitism:          2,
			Selector:         SelectorTournament,
			TournamentSize:   3,
			CrossoverRate:    0.5,
			MutationRate:     0.8,
			MutationSigma:    0.5,
			BigMutationRate:  0.05,
			BigMutationSigma: 2.0,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultSimYAML
}
