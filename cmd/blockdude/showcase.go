package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude"
	"github.com/vovakirdan/blockdude-evo/internal/platform/tui"
	"github.com/vovakirdan/blockdude-evo/internal/replay"
)

var showcaseCmd = &cobra.Command{
	Use:   "showcase [replay]",
	Short: "Watch a saved replay",
	Long: `Play back a trained network on the map it was trained on.
[replay] is a replay name in the replays directory or a file path;
it defaults to the last winner.

A playback that reaches the door is saved again as the winner replay.

Examples:
  blockdude showcase
  blockdude showcase failure
  blockdude showcase ./old/winner.replay`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShowcase,
}

func runShowcase(_ *cobra.Command, args []string) error {
	cfg, paths, err := settings()
	if err != nil {
		return err
	}

	path := replay.PathFor(paths.ReplaysDir, replay.WinnerName)
	if len(args) == 1 {
		path = args[0]
		if _, err := os.Stat(path); err != nil {
			path = replay.PathFor(paths.ReplaysDir, args[0])
		}
	}

	rec, err := replay.Load(path)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%s is empty or truncated; train again to replace it", path)
	}

	opts := showcaseOptions(cfg)
	opts.WinnerPath = replay.PathFor(paths.ReplaysDir, replay.WinnerName)

	store := openStore(paths.DB)
	if store != nil {
		defer store.Close()
	}
	if err := tui.Run(blockdude.NewShowcase(rec, opts), store, runtimeConfig()); err != nil {
		return fmt.Errorf("running showcase: %w", err)
	}
	return nil
}
