package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinoevo/internal/storage"
)

var flagLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored training runs",
	Long: `Display the most recent training runs, newest first.

Examples:
  dinoevo runs
  dinoevo runs --limit 50`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
}

func runRuns(cmd *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(flagLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'dinoevo train' to start one.")
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-9s  %-5s  %-5s  %-10s  %s\n", "ID", "Status", "Pop", "Gens", "Best", "Started")
	fmt.Fprintf(out, "  %-4s  %-9s  %-5s  %-5s  %-10s  %s\n", "--", "------", "---", "----", "----", "-------")
	for _, r := range runs {
		fmt.Fprintf(out, "  %-4d  %-9s  %-5d  %-5d  %-10.2f  %s\n",
			r.ID, r.Status, r.Population, r.Generations, r.BestFitness, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
