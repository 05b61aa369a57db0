// dinoevo evolves neural controllers that play a side-scrolling dino runner.
//
// Usage:
//
//	dinoevo train              - Evolve a population and store the run
//	dinoevo replay <run-id>    - Watch the champion of a stored run
//	dinoevo runs               - List stored runs
//	dinoevo history <run-id>   - Show per-generation statistics of a run
//	dinoevo serve              - Serve stored runs over SSH
//	dinoevo config             - Print the default configuration
//
// Global flags:
//
//	--seed <value>       - RNG seed for reproducible runs (default: time based)
//	--db <path>          - Database path (default: ~/.dinoevo/runs.db)
//	--config <path>      - Simulation config YAML
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dinoevo",
	Short: "Neuroevolution for a terminal dino runner",
	Long: `dinoevo evolves small neural networks that decide when a dino should
jump over cacti. Every generation plays one shared episode; the networks that
survive longest breed the next generation.

Available commands:
  train    - Evolve a population
  replay   - Watch a stored champion play
  runs     - List stored runs
  history  - Per-generation statistics of a run
  serve    - Browse and replay runs over SSH
  config   - Print the default configuration

Examples:
  dinoevo train --generations 20 --watch
  dinoevo train --seed 7 --csv out/generations.csv
  dinoevo runs
  dinoevo history 3
  dinoevo replay 3`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.dinoevo/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom simulation config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger creates the process logger writing to w.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "dinoevo",
	})
	logger.SetLevel(lvl)
	return logger, nil
}

// resolveSeed returns the seed flag, or a time based one when it is zero.
func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}
