package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List available maps",
	Long: `Shows every map file in the maps directory (or the bundled maps)
with its size and whether it is valid.`,
	Args: cobra.NoArgs,
	RunE: runMaps,
}

var mapsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a map file",
	Long: `Checks that a JSON or YAML map file is rectangular, has exactly one
door and a legal spawn point. Exits with status 1 when it is invalid.

Examples:
  blockdude maps validate ./maps/level1.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMapsValidate,
}

func init() {
	mapsCmd.AddCommand(mapsValidateCmd)
}

func runMaps(_ *cobra.Command, _ []string) error {
	_, paths, err := settings()
	if err != nil {
		return err
	}
	loader := loaderFor(paths)

	entries, err := loader.Scan()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No maps found in %s.\n", loader.Root)
		return nil
	}

	fmt.Printf("Maps in %s:\n", loader.Root)
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, e := range entries {
		if len(e.Level.ID) > maxIDLen {
			maxIDLen = len(e.Level.ID)
		}
	}

	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "ID", "Size", "Name")
	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "--", "----", "----")
	for _, e := range entries {
		if e.Err != nil {
			fmt.Printf("  %-*s  %-7s  invalid: %v\n", maxIDLen, e.Path, "-", e.Err)
			continue
		}
		lvl := e.Level
		size := fmt.Sprintf("%dx%d", lvl.Width(), lvl.Height())
		fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, lvl.ID, size, lvl.Title())
	}

	fmt.Println()
	fmt.Println("Run 'blockdude play <id>' to play a map.")
	return nil
}

func runMapsValidate(_ *cobra.Command, args []string) error {
	lvl, err := levels.Load(args[0])
	if err != nil {
		var verr core.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s is invalid (%s): %s", args[0], verr.Code, verr.Message)
		}
		return err
	}

	fmt.Printf("%s: valid %dx%d map %q\n", args[0], lvl.Width(), lvl.Height(), lvl.Title())
	state, err := lvl.NewState()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(state.RenderASCII())
	return nil
}
