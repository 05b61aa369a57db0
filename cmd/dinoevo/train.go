package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gonum.org/v1/gonum/floats"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/dino"
	"github.com/vovakirdan/dinoevo/internal/evolve"
	"github.com/vovakirdan/dinoevo/internal/platform/tui"
	"github.com/vovakirdan/dinoevo/internal/storage"
	"github.com/vovakirdan/dinoevo/internal/telemetry"
)

var (
	flagWatch       bool
	flagGenerations int
	flagPopulation  int
	flagCSV         string
	flagLogFile     string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve a population of dino controllers",
	Long: `Evolve a population of neural networks. Each generation plays one shared
episode; fitness grows with every survived tick and drops on a collision.
Generation statistics and the champion genome are stored in the database.

Controls (with --watch):
  F/Space    - Toggle frame pacing
  ?          - Help
  Q/Ctrl+C   - Stop training

Examples:
  dinoevo train
  dinoevo train --watch --generations 20
  dinoevo train --population 100 --seed 42
  dinoevo train --csv out/generations.csv`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().BoolVar(&flagWatch, "watch", false, "Watch episodes live in the terminal")
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generations to run (overrides config)")
	trainCmd.Flags().IntVar(&flagPopulation, "population", 0, "Population size (overrides config)")
	trainCmd.Flags().StringVar(&flagCSV, "csv", "", "Write generation statistics to this CSV file")
	trainCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Log file (default with --watch: ~/.dinoevo/train.log)")
}

// trainOptions configures one training session.
type trainOptions struct {
	Config    config.Config
	Seed      int64
	DBPath    string
	CSVPath   string
	Logger    *log.Logger
	Presenter dino.Presenter
	Reporters []evolve.Reporter
}

// trainResult describes a finished session.
type trainResult struct {
	RunID  int64
	Status string
	Best   *evolve.Genome
	Stats  *evolve.StatsReporter
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagGenerations > 0 {
		cfg.Evolution.Generations = flagGenerations
	}
	if flagPopulation > 0 {
		cfg.Evolution.Population = flagPopulation
		cfg.Evolution.Elitism = min(cfg.Evolution.Elitism, flagPopulation)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logOut := io.Writer(os.Stderr)
	logPath := flagLogFile
	if logPath == "" && flagWatch {
		logPath = "~/.dinoevo/train.log"
	}
	if logPath != "" {
		f, err := openLogFile(logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(logOut, flagLogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := trainOptions{
		Config:  cfg,
		Seed:    resolveSeed(flagSeed),
		DBPath:  flagDBPath,
		CSVPath: flagCSV,
		Logger:  logger,
	}

	if flagWatch {
		width, height := terminalSize()
		w := tui.NewWatcher(tui.WatchOptions{
			Title:  "dinoevo train",
			Scene:  tui.NewScene(cfg),
			FPS:    cfg.Screen.FPS,
			Width:  width,
			Height: height,
		})
		w.Start()
		defer w.Close()
		opts.Presenter = w
		opts.Reporters = append(opts.Reporters, w)
	}

	res, err := train(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d %s\n", res.RunID, res.Status)
	if res.Best != nil {
		fmt.Fprintf(out, "Champion: genome %d, fitness %.2f\n", res.Best.ID, res.Best.Fitness())
		fmt.Fprintf(out, "Replay with 'dinoevo replay %d'\n", res.RunID)
	}
	if res.Stats != nil {
		printSummary(out, res.Stats)
	}
	return nil
}

// printSummary writes how best and mean fitness moved over the run.
func printSummary(out io.Writer, stats *evolve.StatsReporter) {
	history := stats.History()
	if len(history) == 0 {
		return
	}
	best, mean := stats.BestSeries(), stats.MeanSeries()
	fmt.Fprintf(out, "Generations: %d\n", len(history))
	fmt.Fprintf(out, "Best fitness: %.2f -> %.2f (peak %.2f)\n", best[0], best[len(best)-1], floats.Max(best))
	fmt.Fprintf(out, "Mean fitness: %.2f -> %.2f (peak %.2f)\n", mean[0], mean[len(mean)-1], floats.Max(mean))
}

// train evolves a population and records the run. A stop request ends the
// run with StatusStopped and no error; the generation in progress is dropped.
func train(ctx context.Context, opts trainOptions) (trainResult, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	store, err := storage.Open(opts.DBPath)
	if err != nil {
		return trainResult{}, fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	yml, err := config.Marshal(cfg)
	if err != nil {
		return trainResult{}, err
	}
	runID, err := store.CreateRun(storage.Run{
		Seed:        opts.Seed,
		Population:  cfg.Evolution.Population,
		Generations: cfg.Evolution.Generations,
		Config:      string(yml),
	})
	if err != nil {
		return trainResult{}, err
	}
	res := trainResult{RunID: runID, Status: storage.StatusFailed, Stats: &evolve.StatsReporter{}}
	defer func() {
		best := 0.0
		if res.Best != nil {
			best = res.Best.Fitness()
		}
		if err := store.FinishRun(runID, res.Status, best); err != nil {
			logger.Error("cannot finish run", "run", runID, "err", err)
		}
	}()

	factory, err := evolve.NewFactory(cfg.Evolution.Hidden, cfg.Evolution.Activation, cfg.Evolution.InputScale)
	if err != nil {
		return res, err
	}

	selector, err := evolve.NewSelector(cfg.Evolution)
	if err != nil {
		return res, err
	}

	recorder := &runRecorder{store: store, runID: runID, logger: logger}
	popOpts := []evolve.Option{
		evolve.WithSelector(selector),
		evolve.WithReporter(evolve.NewLogReporter(logger)),
		evolve.WithReporter(recorder),
		evolve.WithReporter(res.Stats),
	}
	for _, r := range opts.Reporters {
		popOpts = append(popOpts, evolve.WithReporter(r))
	}

	var csv *telemetry.Reporter
	if opts.CSVPath != "" {
		w, err := telemetry.Create(opts.CSVPath)
		if err != nil {
			return res, err
		}
		defer w.Close()
		csv = telemetry.NewReporter(w)
		popOpts = append(popOpts, evolve.WithReporter(csv))
	}

	pop, err := evolve.NewPopulation(cfg.Evolution, factory.Topology(), opts.Seed, popOpts...)
	if err != nil {
		return res, err
	}
	runner := dino.NewRunner(cfg, factory,
		dino.WithSeed(opts.Seed),
		dino.WithLogger(logger),
		dino.WithPresenter(opts.Presenter),
	)

	logger.Info("training started",
		"run", runID,
		"seed", opts.Seed,
		"population", cfg.Evolution.Population,
		"generations", cfg.Evolution.Generations,
		"genes", factory.Topology().GeneCount(),
		"selector", selector.Name(),
	)

	best, err := pop.Run(ctx, runner.Run, cfg.Evolution.Generations)
	res.Best = best
	switch {
	case errors.Is(err, dino.ErrStopped):
		res.Status = storage.StatusStopped
		logger.Warn("training stopped", "run", runID)
	case err != nil:
		return res, err
	case recorder.solved:
		res.Status = storage.StatusSolved
	default:
		res.Status = storage.StatusFinished
	}

	if recorder.err != nil {
		return res, recorder.err
	}
	if csv != nil && csv.Err() != nil {
		return res, csv.Err()
	}
	return res, nil
}

// openLogFile opens path for appending, creating parent directories.
func openLogFile(path string) (*os.File, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (width, height int) {
	width, height = 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}
