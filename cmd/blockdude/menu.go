package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/platform/tui"
	"github.com/vovakirdan/blockdude-evo/internal/replay"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick maps and replays interactively",
	Long: `Start in interactive menu mode.

The menu lists the maps to play, the saved replays to watch, and the
records board. After a game ends you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Tab          - Records
  Q            - Quit

Examples:
  blockdude menu
  blockdude menu --fps 60`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	cfg, paths, err := settings()
	if err != nil {
		return err
	}
	loader := loaderFor(paths)

	store := openStore(paths.DB)
	if store != nil {
		defer store.Close()
	}

	rc := runtimeConfig()
	for {
		items, err := tui.BuildMenuItems(loader, paths.ReplaysDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		menuResult, err := tui.RunMenu(items, rc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		rc = menuResult.Config

		if menuResult.Quit {
			break
		}

		if menuResult.WantsRecords {
			ids, _ := loader.ListIDs()
			goBack, recErr := tui.RunRecords(store, ids, rc.ScreenW, rc.ScreenH)
			if recErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", recErr)
			}
			if goBack {
				continue
			}
			break
		}

		game, err := openMenuItem(loader, *menuResult.Item, showcaseOptions(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		if err := tui.Run(game, store, rc); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
			break
		}
	}
	return nil
}

func openMenuItem(loader *levels.Loader, item tui.MenuItem, opts blockdude.ShowcaseOptions) (core.Game, error) {
	if item.Kind == tui.ItemWatch {
		rec, err := replay.Load(item.Path)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, errors.New(item.Path + " is empty or truncated")
		}
		return blockdude.NewShowcase(rec, opts), nil
	}
	lvl, err := loader.LoadByID(item.ID)
	if err != nil {
		return nil, err
	}
	return blockdude.NewPlay(lvl), nil
}
