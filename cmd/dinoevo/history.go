package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/dinoevo/internal/platform/tui"
	"github.com/vovakirdan/dinoevo/internal/storage"
)

var flagPlain bool

var historyCmd = &cobra.Command{
	Use:   "history <run-id>",
	Short: "Show per-generation statistics of a run",
	Long: `Browse the fitness statistics of every generation of a stored run.
On a terminal this opens a scrollable table; use --plain or a pipe for text.

Examples:
  dinoevo history 3
  dinoevo history 3 --plain > gens.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain text table")
}

func runHistory(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	generations, err := store.History(runID)
	if err != nil {
		return err
	}

	if !flagPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := terminalSize()
		return tui.RunHistory(run, generations, width, height)
	}
	printHistory(cmd.OutOrStdout(), run, generations)
	return nil
}

// printHistory writes the generations of a run as a text table.
func printHistory(out io.Writer, run storage.Run, generations []storage.Generation) {
	fmt.Fprintf(out, "Run %d - %s - seed %d\n\n", run.ID, run.Status, run.Seed)
	if len(generations) == 0 {
		fmt.Fprintln(out, "No generations recorded.")
		return
	}

	fmt.Fprintf(out, "  %-4s  %-10s  %-10s  %-8s  %-7s  %s\n", "Gen", "Best", "Mean", "StdDev", "Genome", "Ticks")
	fmt.Fprintf(out, "  %-4s  %-10s  %-10s  %-8s  %-7s  %s\n", "---", "----", "----", "------", "------", "-----")
	for _, row := range tui.HistoryRows(generations) {
		fmt.Fprintf(out, "  %-4s  %-10s  %-10s  %-8s  %-7s  %s\n", row[0], row[1], row[2], row[3], row[5], row[6])
	}
}
