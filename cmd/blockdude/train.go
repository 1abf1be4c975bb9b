package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockdude-evo/internal/config"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/neat"
	"github.com/vovakirdan/blockdude-evo/internal/platform/tui"
	"github.com/vovakirdan/blockdude-evo/internal/replay"
	"github.com/vovakirdan/blockdude-evo/internal/storage"
	"github.com/vovakirdan/blockdude-evo/internal/trainer"
)

var (
	flagGenerations int
	flagHeadless    bool
	flagNEATConfig  string
)

var trainCmd = &cobra.Command{
	Use:   "train <map>",
	Short: "Train a population on a map",
	Long: `Evolve neural networks that solve a map.

The policy configuration (NEAT style key = value file) is created in the
data directory on first use; its num_inputs line is rewritten to match
the map size before every run.

In the terminal UI, training runs in slices between frames so the progress
stays live. Press S to save the current best network as the "failure"
replay, Esc to stop. When the run ends the winner is saved and played back.

With --headless, whole generations run back to back and progress is logged
to stderr.

Examples:
  blockdude train map_test
  blockdude train map3 --generations 200
  blockdude train ./maps/level1.json --headless
  blockdude train map3 --neat-config ./config-feedforward.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Maximum generations (default from config, 0 = until solved)")
	trainCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Train without the terminal UI")
	trainCmd.Flags().StringVar(&flagNEATConfig, "neat-config", "", "Path to the policy configuration file")
}

// trainingRun ties one scheduler run to its map, replays and history.
type trainingRun struct {
	level    levels.Level
	neatCfg  *neat.Config
	paths    config.PathsConfig
	store    *storage.Store
	run      storage.Run
	sched    *trainer.Scheduler
	logger   *log.Logger
	finished bool
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, paths, err := settings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fps") {
		cfg.Training.TargetFPS = flagFPS
	}
	if cmd.Flags().Changed("generations") {
		cfg.Training.MaxGenerations = flagGenerations
	}
	if flagNEATConfig != "" {
		cfg.Training.NEATConfig = flagNEATConfig
	}

	lvl, err := levels.Resolve(loaderFor(paths), args[0])
	if err != nil {
		return err
	}

	neatPath := cfg.NEATConfigPath()
	if err := neat.EnsureConfig(neatPath); err != nil {
		return err
	}
	if err := neat.ModifyConfig(neatPath, lvl.Width(), lvl.Height()); err != nil {
		return err
	}
	neatCfg, err := neat.LoadConfig(neatPath)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; log to a file instead.
	var logOut io.Writer = os.Stderr
	if !flagHeadless {
		f, err := openLogFile(cfg.LogPath())
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(logOut, "trainer")
	if err != nil {
		return err
	}

	pop, err := trainer.NewNEATPopulation(neatCfg)
	if err != nil {
		return err
	}

	tr := &trainingRun{
		level:   lvl,
		neatCfg: neatCfg,
		paths:   paths,
		store:   openStore(paths.DB),
		logger:  logger,
	}
	if tr.store != nil {
		defer tr.store.Close()
	}

	reporters := trainer.Reporters{trainer.NewLogReporter(logger)}
	if tr.store != nil {
		run, err := tr.store.StartRun(lvl.ID)
		if err != nil {
			logger.Warn("could not record run", "error", err)
		} else {
			tr.run = run
			reporters = append(reporters, &trainer.StoreReporter{Store: tr.store, RunID: run.ID, Logger: logger})
		}
	}

	tr.sched = trainer.NewScheduler(pop, cfg.Evaluator(lvl.Map), cfg.Training.MaxGenerations, trainer.WithReporter(reporters))
	logger.Info("training started",
		"map", lvl.ID,
		"size", fmt.Sprintf("%dx%d", lvl.Width(), lvl.Height()),
		"pop_size", neatCfg.Neat.PopSize,
		"generations", cfg.Training.MaxGenerations,
		"neat_config", neatPath,
	)

	if flagHeadless {
		err = tr.headless()
	} else {
		err = tr.interactive(cfg)
	}
	if !tr.finished {
		tr.record("")
	}
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return f, nil
}

func (tr *trainingRun) headless() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	winner, err := tr.sched.Run(ctx)
	if errors.Is(err, context.Canceled) {
		tr.logger.Warn("training interrupted", "generation", tr.sched.CurrentGeneration())
		if best := tr.sched.CurrentBest(); best != nil {
			_, err = tr.saveReplay(replay.FailureName, best)
		}
		return err
	}
	if err != nil {
		return err
	}

	rec, err := tr.finish(winner)
	if err != nil {
		return err
	}
	fmt.Printf("Trained %d generations on %s: best fitness %.1f", tr.sched.CurrentGeneration(), tr.level.ID, tr.sched.BestFitness())
	if rec != nil && rec.Won {
		fmt.Print(" (solved)")
	}
	fmt.Println()
	fmt.Printf("Run 'blockdude showcase %s' to watch it.\n", replay.WinnerName)
	return nil
}

func (tr *trainingRun) interactive(cfg config.Config) error {
	if err := tr.sched.StartRunning(); err != nil {
		return err
	}
	showcase := showcaseOptions(cfg)
	showcase.WinnerPath = replay.PathFor(tr.paths.ReplaysDir, replay.WinnerName)

	return tui.RunTraining(tui.TrainingOptions{
		Scheduler:    tr.sched,
		MapID:        tr.level.ID,
		TargetFPS:    cfg.Training.TargetFPS,
		BudgetMargin: cfg.Training.BudgetMargin(),
		MinBudget:    cfg.Training.MinBudget(),
		SaveReplay:   tr.saveReplay,
		Finish:       tr.finish,
		Showcase:     showcase,
	}, tr.store, runtimeConfig())
}

// saveReplay writes best as the replay called name.
func (tr *trainingRun) saveReplay(name string, best trainer.Genome) (*replay.Record, error) {
	return tr.save(name, best, false)
}

func (tr *trainingRun) save(name string, best trainer.Genome, won bool) (*replay.Record, error) {
	ng, ok := best.(*trainer.NEATGenome)
	if !ok {
		return nil, fmt.Errorf("cannot save genome of type %T", best)
	}
	rec, err := replay.New(tr.neatCfg, ng.Genome(), ng.Fitness(), tr.level.ID, tr.level.Map)
	if err != nil {
		return nil, err
	}
	rec.Won = won
	path := replay.PathFor(tr.paths.ReplaysDir, name)
	if err := replay.Save(path, rec); err != nil {
		return nil, err
	}
	tr.logger.Info("replay saved", "name", name, "genome", ng.Key(), "fitness", ng.Fitness(), "path", path)
	return rec, nil
}

// finish saves the winner replay and closes the run record.
func (tr *trainingRun) finish(winner trainer.Genome) (*replay.Record, error) {
	if winner == nil {
		tr.record("")
		return nil, nil
	}
	rec, err := tr.save(replay.WinnerName, winner, tr.sched.Solved())
	if err != nil {
		return nil, err
	}
	tr.record(replay.PathFor(tr.paths.ReplaysDir, replay.WinnerName))
	return rec, nil
}

// record stores the outcome of the run once.
func (tr *trainingRun) record(replayPath string) {
	if tr.finished {
		return
	}
	tr.finished = true
	if tr.store == nil || tr.run.ID == "" {
		return
	}
	err := tr.store.FinishRun(tr.run.ID, tr.sched.CurrentGeneration(), tr.sched.BestFitness(), tr.sched.Solved(), replayPath)
	if err != nil {
		tr.logger.Warn("could not finish run", "run", tr.run.ID, "error", err)
	}
}
