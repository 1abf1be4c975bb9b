package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockdude-evo/internal/storage"
)

var flagLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show training run history",
	Long: `Without arguments, lists the most recent training runs.
With a run ID, shows the generation history of that run.

Examples:
  blockdude runs
  blockdude runs --limit 50
  blockdude runs 6f1c2a4e-0d1b-4c55-9a51-2b1f7e9d3c10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of runs to list")
}

func runRuns(_ *cobra.Command, args []string) error {
	_, paths, err := settings()
	if err != nil {
		return err
	}

	store, err := storage.Open(paths.DB)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showRun(store, args[0])
	}

	runs, err := store.RecentRuns(flagLimit)
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No training runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'blockdude train <map>' to start one!")
		return nil
	}

	fmt.Printf("  %-36s  %-12s  %-5s  %-9s  %-8s  %s\n", "Run", "Map", "Gens", "Best", "Result", "Started")
	fmt.Printf("  %-36s  %-12s  %-5s  %-9s  %-8s  %s\n", "---", "---", "----", "----", "------", "-------")
	for _, r := range runs {
		fmt.Printf("  %-36s  %-12s  %-5d  %-9.1f  %-8s  %s\n",
			r.ID, r.MapID, r.Generations, r.BestFitness, runResult(r), r.StartedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runResult(r storage.Run) string {
	switch {
	case r.Solved:
		return "solved"
	case r.Finished():
		return "done"
	}
	return "running"
}

func showRun(store *storage.Store, id string) error {
	run, err := store.RunByID(id)
	if err != nil {
		return fmt.Errorf("retrieving run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("unknown run %q", id)
	}

	fmt.Printf("Run %s on %s\n", run.ID, run.MapID)
	fmt.Printf("Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.Finished() {
		fmt.Printf("Finished: %s (%s)\n", run.FinishedAt.Format("2006-01-02 15:04:05"), runResult(*run))
	}
	if run.ReplayPath != "" {
		fmt.Printf("Replay:   %s\n", run.ReplayPath)
	}
	fmt.Println()

	stats, err := store.Generations(run.ID)
	if err != nil {
		return fmt.Errorf("retrieving generations: %w", err)
	}
	if len(stats) == 0 {
		fmt.Println("No generations recorded.")
		return nil
	}

	fmt.Printf("  %-4s  %-9s  %-9s  %-7s  %-4s  %s\n", "Gen", "Best", "Mean", "Genome", "Pop", "Species")
	fmt.Printf("  %-4s  %-9s  %-9s  %-7s  %-4s  %s\n", "---", "----", "----", "------", "---", "-------")
	for _, g := range stats {
		fmt.Printf("  %-4d  %-9.1f  %-9.1f  %-7d  %-4d  %d\n",
			g.Generation, g.BestFitness, g.MeanFitness, g.BestGenome, g.PopSize, g.Species)
	}
	fmt.Println()
	fmt.Printf("Best: %.1f after %d generations\n", run.BestFitness, run.Generations)
	return nil
}
