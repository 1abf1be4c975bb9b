package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play <map>",
	Short: "Play a map",
	Long: `Play a map yourself. <map> is a map ID or a path to a map file.

Controls:
  Left/Right   - Walk (climbs when already facing a block)
  Up           - Climb
  Down/Space   - Pick up or put down a block
  P            - Pause
  R            - Restart (after game over)
  Esc/Q        - Quit

Examples:
  blockdude play map_test
  blockdude play ./maps/level1.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	_, paths, err := settings()
	if err != nil {
		return err
	}

	lvl, err := levels.Resolve(loaderFor(paths), args[0])
	if err != nil {
		return fmt.Errorf("%w\nRun 'blockdude maps' to see available maps", err)
	}

	store := openStore(paths.DB)
	if store != nil {
		defer store.Close()
	}
	if err := tui.Run(blockdude.NewPlay(lvl), store, runtimeConfig()); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
