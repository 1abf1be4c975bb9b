// blockdude plays, trains and replays Block Dude puzzles in the terminal.
//
// Usage:
//
//	blockdude maps                  - List available maps
//	blockdude maps validate <file>  - Validate a map file
//	blockdude play <map>            - Play a map
//	blockdude edit <file>           - Edit a map file
//	blockdude train <map>           - Train a population on a map
//	blockdude showcase [replay]     - Watch a saved replay
//	blockdude runs [run-id]         - Show training run history
//	blockdude menu                  - Pick maps and replays interactively
//	blockdude serve                 - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 30)
//	--db <path>          - Set database path (default: ~/.blockdude/runs.db)
//	--config <path>      - Use a custom blockdude.yaml
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockdude-evo/internal/config"
	"github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockdude",
	Short: "Block Dude Evo - Evolve puzzle solvers in your terminal",
	Long: `Block Dude Evo plays the Block Dude puzzle game in the terminal and
trains neural networks to solve its maps.

Available commands:
  maps      - List and validate maps
  play      - Play a map yourself
  edit      - Create or edit a map file
  train     - Evolve a population on a map
  showcase  - Watch a trained network play
  runs      - Training history
  menu      - Interactive picker
  serve     - Start SSH server for remote play

Examples:
  blockdude maps
  blockdude play map_test
  blockdude train map3 --generations 50
  blockdude showcase winner
  blockdude serve --ssh :2222`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to runs database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom blockdude.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(showcaseCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
}

// settings loads the application config and resolves its paths,
// applying the global flags.
func settings() (config.Config, config.PathsConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, config.PathsConfig{}, err
	}
	paths := cfg.Paths.Resolve()
	if flagDBPath != "" {
		paths.DB = flagDBPath
	}
	return cfg, paths, nil
}

// newLogger creates the CLI logger writing to w at the --log-level level.
func newLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", flagLogLevel)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}

// openStore opens the runs database. Failure is only a warning: play
// still works without history.
func openStore(path string) *storage.Store {
	store, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		return nil
	}
	return store
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	return cfg
}

func loaderFor(paths config.PathsConfig) *levels.Loader {
	return levels.ForDir(paths.MapsDir)
}

func showcaseOptions(cfg config.Config) blockdude.ShowcaseOptions {
	return blockdude.ShowcaseOptions{
		ActionInterval: cfg.Showcase.ActionInterval(),
		MaxTurns:       cfg.Showcase.MaxTurns,
		RepeatWindow:   cfg.Showcase.RepeatWindow,
	}
}
