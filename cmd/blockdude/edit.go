package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels/formats"
	"github.com/vovakirdan/blockdude-evo/internal/platform/tui"
)

var (
	flagEditWidth  int
	flagEditHeight int
)

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Edit a map file",
	Long: `Edit a map in the terminal. <file> is a .json, .yaml or .yml map file;
a blank map of --width x --height cells is started when it does not exist.
The map is validated before it is written.

Controls:
  Arrows       - Move the cursor
  1/2/3/4      - Brush: Brick, Block, Door, Player
  Space        - Paint the brush under the cursor
  Enter        - Pick the brush from the cell under the cursor
  X/0/Delete   - Clear the cell under the cursor
  F            - Flip the spawn direction
  O/Ctrl+S     - Save
  R            - Revert to the last saved map
  Esc/Q        - Quit

Examples:
  blockdude edit ./maps/level9.json
  blockdude edit ./maps/wide.yaml --width 30 --height 10`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().IntVar(&flagEditWidth, "width", blockdude.DefaultEditWidth, "Width of a new map")
	editCmd.Flags().IntVar(&flagEditHeight, "height", blockdude.DefaultEditHeight, "Height of a new map")
}

func runEdit(_ *cobra.Command, args []string) error {
	path := args[0]
	if ext := strings.ToLower(filepath.Ext(path)); !slices.Contains(formats.FormatExtensions(), ext) {
		return fmt.Errorf("unsupported map extension %q", ext)
	}

	var editor *blockdude.EditGame
	lvl, err := levels.Load(path)
	switch {
	case err == nil:
		editor = blockdude.NewEditor(path, lvl.Name, lvl.Map)
	case errors.Is(err, fs.ErrNotExist):
		if flagEditWidth < 3 || flagEditHeight < 2 {
			return fmt.Errorf("a new map needs at least 3x2 cells, got %dx%d", flagEditWidth, flagEditHeight)
		}
		editor = blockdude.NewEditor(path, "", blockdude.BlankMap(flagEditWidth, flagEditHeight))
	default:
		return err
	}

	if err := tui.Run(editor, nil, runtimeConfig()); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	if editor.Dirty() {
		fmt.Fprintf(os.Stderr, "Unsaved changes to %s were discarded.\n", path)
	}
	return nil
}
