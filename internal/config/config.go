// Package config provides YAML-based simulation and evolution configuration
// together with the speed policy that drives the world scroll rate.
package config

import (
	"errors"
	"fmt"
)

// Config contains every tunable of a training run.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Agent     AgentConfig     `yaml:"agent"`
	Obstacles ObstacleConfig  `yaml:"obstacles"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Episode   EpisodeConfig   `yaml:"episode"`
	Evolution EvolutionConfig `yaml:"evolution"`
}

// ScreenConfig describes the visible play field in world pixels.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"` // Frame rate of the watch view; headless runs are unthrottled
}

// WorldConfig defines scrolling and obstacle spawning.
type WorldConfig struct {
	BaseSpeed       float64     `yaml:"base_speed"`       // Pixels per tick
	BackgroundWidth float64     `yaml:"background_width"` // Scroll offset wraps at this width
	SpawnOffset     float64     `yaml:"spawn_offset"`     // Obstacles spawn at screen width + offset
	Speed           SpeedConfig `yaml:"speed"`
}

// SpeedConfig selects how game speed evolves during an episode.
type SpeedConfig struct {
	Policy     string  `yaml:"policy"`     // "constant" or "score"
	Multiplier float64 `yaml:"multiplier"` // Extra speed fraction reached at max_at
	MaxAt      int     `yaml:"max_at"`     // Score at which the ramp saturates
}

// AgentConfig defines the dino body and its jump arc.
type AgentConfig struct {
	X            float64 `yaml:"x"`
	GroundY      float64 `yaml:"ground_y"`
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	JumpVelocity float64 `yaml:"jump_velocity"`
	Gravity      float64 `yaml:"gravity"`    // Velocity lost per tick while airborne
	JumpScale    float64 `yaml:"jump_scale"` // Pixels risen per unit of velocity
	StepWrap     int     `yaml:"step_wrap"`  // Running animation cycle length
}

// ObstacleConfig holds the size-class lookup table.
type ObstacleConfig struct {
	Small ObstacleShape `yaml:"small"`
	Large ObstacleShape `yaml:"large"`
}

// ObstacleShape is the fixed geometry of one size class.
type ObstacleShape struct {
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FitnessConfig defines how fitness accrues during an episode.
type FitnessConfig struct {
	SurvivalReward   float64 `yaml:"survival_reward"`
	CollisionPenalty float64 `yaml:"collision_penalty"`
	JumpThreshold    float64 `yaml:"jump_threshold"`
}

// EpisodeConfig bounds a single generation episode.
type EpisodeConfig struct {
	MaxTicks int `yaml:"max_ticks"` // 0 = run until every agent is eliminated
}

// EvolutionConfig configures the population search.
type EvolutionConfig struct {
	Population       int       `yaml:"population"`
	Generations      int       `yaml:"generations"`
	Hidden           int       `yaml:"hidden"`
	Activation       string    `yaml:"activation"`
	InputScale       []float64 `yaml:"input_scale"`
	WeightInit       float64   `yaml:"weight_init"`
	Elitism          int       `yaml:"elitism"`
	Selector         string    `yaml:"selector"` // "tournament" or "elite"
	TournamentSize   int       `yaml:"tournament_size"`
	CrossoverRate    float64   `yaml:"crossover_rate"`
	MutationRate     float64   `yaml:"mutation_rate"`
	MutationSigma    float64   `yaml:"mutation_sigma"`
	BigMutationRate  float64   `yaml:"big_mutation_rate"`
	BigMutationSigma float64   `yaml:"big_mutation_sigma"`
	FitnessThreshold float64   `yaml:"fitness_threshold"` // 0 disables early stop
}

// Parent selector names.
const (
	SelectorTournament = "tournament"
	SelectorElite      = "elite"
)

var activationNames = map[string]bool{"sigmoid": true, "tanh": true, "relu": true, "identity": true}

// SpawnX returns the x-coordinate at which new obstacles appear.
func (c Config) SpawnX() float64 {
	return float64(c.Screen.Width) + c.World.SpawnOffset
}

// Validate checks that the configuration can drive a simulation.
func (c Config) Validate() error {
	var errs []error

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.World.BaseSpeed <= 0 {
		errs = append(errs, fmt.Errorf("world.base_speed must be positive, got %v", c.World.BaseSpeed))
	}
	if c.World.BackgroundWidth <= 0 {
		errs = append(errs, fmt.Errorf("world.background_width must be positive, got %v", c.World.BackgroundWidth))
	}
	switch c.World.Speed.Policy {
	case "", SpeedConstant, SpeedScore:
	default:
		errs = append(errs, fmt.Errorf("world.speed.policy %q is not one of constant, score", c.World.Speed.Policy))
	}
	if c.Agent.Width <= 0 || c.Agent.Height <= 0 {
		errs = append(errs, errors.New("agent size must be positive"))
	}
	if c.Agent.JumpVelocity <= 0 || c.Agent.Gravity <= 0 {
		errs = append(errs, errors.New("agent.jump_velocity and agent.gravity must be positive"))
	}
	if c.Agent.JumpScale <= 0 {
		errs = append(errs, fmt.Errorf("agent.jump_scale must be positive, got %v", c.Agent.JumpScale))
	}
	if c.Agent.StepWrap <= 0 {
		errs = append(errs, errors.New("agent.step_wrap must be positive"))
	}
	for name, shape := range map[string]ObstacleShape{"small": c.Obstacles.Small, "large": c.Obstacles.Large} {
		if shape.Width <= 0 || shape.Height <= 0 {
			errs = append(errs, fmt.Errorf("obstacles.%s size must be positive", name))
		}
	}
	if c.Episode.MaxTicks < 0 {
		errs = append(errs, errors.New("episode.max_ticks must not be negative"))
	}
	if c.Evolution.Population <= 0 {
		errs = append(errs, fmt.Errorf("evolution.population must be positive, got %d", c.Evolution.Population))
	}
	if c.Evolution.Generations <= 0 {
		errs = append(errs, fmt.Errorf("evolution.generations must be positive, got %d", c.Evolution.Generations))
	}
	if c.Evolution.Hidden < 0 {
		errs = append(errs, errors.New("evolution.hidden must not be negative"))
	}
	if c.Evolution.Elitism < 0 || c.Evolution.Elitism > c.Evolution.Population {
		errs = append(errs, fmt.Errorf("evolution.elitism must be within [0, %d]", c.Evolution.Population))
	}
	if !activationNames[c.Evolution.Activation] {
		errs = append(errs, fmt.Errorf("evolution.activation %q is not one of sigmoid, tanh, relu, identity", c.Evolution.Activation))
	}
	switch c.Evolution.Selector {
	case "", SelectorTournament, SelectorElite:
	default:
		errs = append(errs, fmt.Errorf("evolution.selector %q is not one of tournament, elite", c.Evolution.Selector))
	}
	if c.Evolution.TournamentSize < 0 {
		errs = append(errs, errors.New("evolution.tournament_size must not be negative"))
	}
	for name, rate := range map[string]float64{
		"crossover_rate":    c.Evolution.CrossoverRate,
		"mutation_rate":     c.Evolution.MutationRate,
		"big_mutation_rate": c.Evolution.BigMutationRate,
	} {
		if rate < 0 || rate > 1 {
			errs = append(errs, fmt.Errorf("evolution.%s must be within [0, 1], got %v", name, rate))
		}
	}
	if c.Evolution.MutationSigma < 0 || c.Evolution.BigMutationSigma < 0 {
		errs = append(errs, errors.New("evolution mutation sigmas must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
