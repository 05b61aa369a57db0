package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/dino"
	"github.com/vovakirdan/dinoevo/internal/evolve"
	"github.com/vovakirdan/dinoevo/internal/platform/tui"
	"github.com/vovakirdan/dinoevo/internal/storage"
)

// defaultReplayTicks caps the replay of a run trained without a tick limit.
const defaultReplayTicks = 10000

var (
	flagHeadless bool
	flagMaxTicks int
)

var replayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Watch the champion of a stored run",
	Long: `Replay the champion genome of a stored run in a single-agent episode,
using the configuration the run was trained with. The obstacle sequence is
seeded with the run seed unless --seed is given.

Examples:
  dinoevo replay 3
  dinoevo replay 3 --seed 99
  dinoevo replay 3 --headless --max-ticks 5000`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Simulate without the live view and print the result")
	replayCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 0, "Stop the episode after this many ticks (overrides config; unlimited runs default to 10000)")
}

// replayOptions configures one replay episode.
type replayOptions struct {
	DBPath    string
	RunID     int64
	Seed      int64 // 0 uses the run seed
	MaxTicks  int   // 0 keeps the stored config, or defaultReplayTicks when it is unlimited
	Presenter dino.Presenter
}

// replayResult describes a finished replay.
type replayResult struct {
	Champion storage.Champion
	Episode  dino.Episode
	Fitness  float64
	Stopped  bool
}

func runReplay(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := replayOptions{
		DBPath:   flagDBPath,
		RunID:    runID,
		Seed:     flagSeed,
		MaxTicks: flagMaxTicks,
	}

	if !flagHeadless {
		cfg, err := loadRunConfig(flagDBPath, runID)
		if err != nil {
			return err
		}
		width, height := terminalSize()
		w := tui.NewWatcher(tui.WatchOptions{
			Title:  fmt.Sprintf("dinoevo replay %d", runID),
			Scene:  tui.NewScene(cfg),
			FPS:    cfg.Screen.FPS,
			Width:  width,
			Height: height,
		})
		w.Start()
		opts.Presenter = w
		res, err := replay(ctx, opts)
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		printReplay(cmd, res)
		return nil
	}

	res, err := replay(ctx, opts)
	if err != nil {
		return err
	}
	printReplay(cmd, res)
	return nil
}

func printReplay(cmd *cobra.Command, res replayResult) {
	out := cmd.OutOrStdout()
	state := "crashed"
	switch {
	case res.Stopped:
		state = "stopped"
	case res.Episode.Capped:
		state = "reached the tick cap"
	}
	fmt.Fprintf(out, "Genome %d (trained fitness %.2f) %s after %d ticks, fitness %.2f\n",
		res.Champion.GenomeID, res.Champion.Fitness, state, res.Episode.Ticks, res.Fitness)
}

// loadRunConfig reads the configuration a run was trained with.
func loadRunConfig(dbPath string, runID int64) (config.Config, error) {
	store, err := storage.Open(dbPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		return config.Config{}, err
	}
	return config.Parse([]byte(run.Config))
}

// replay runs the champion of a stored run alone. A stop request is not an
// error.
func replay(ctx context.Context, opts replayOptions) (replayResult, error) {
	store, err := storage.Open(opts.DBPath)
	if err != nil {
		return replayResult{}, fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(opts.RunID)
	if err != nil {
		return replayResult{}, err
	}
	champion, err := store.LoadChampion(opts.RunID)
	if err != nil {
		return replayResult{}, err
	}
	cfg, err := config.Parse([]byte(run.Config))
	if err != nil {
		return replayResult{}, fmt.Errorf("run %d config: %w", opts.RunID, err)
	}
	cfg.Episode.MaxTicks = replayTicks(cfg.Episode.MaxTicks, opts.MaxTicks)

	factory, err := evolve.NewFactory(cfg.Evolution.Hidden, cfg.Evolution.Activation, cfg.Evolution.InputScale)
	if err != nil {
		return replayResult{}, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = run.Seed
	}
	runner := dino.NewRunner(cfg, factory,
		dino.WithSeed(seed),
		dino.WithPresenter(opts.Presenter),
	)

	genome := &evolve.Genome{ID: champion.GenomeID, Genes: champion.Genes}
	res := replayResult{Champion: champion}
	res.Episode, err = runner.Run(ctx, 0, []dino.Candidate{{ID: genome.ID, Genome: genome}})
	res.Fitness = genome.Fitness()
	if errors.Is(err, dino.ErrStopped) {
		res.Stopped = true
		return res, nil
	}
	return res, err
}

// replayTicks picks the tick limit of a replay episode.
func replayTicks(stored, override int) int {
	switch {
	case override > 0:
		return override
	case stored == 0:
		return defaultReplayTicks
	default:
		return stored
	}
}
