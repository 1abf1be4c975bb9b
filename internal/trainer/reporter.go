package trainer

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockdude-evo/internal/storage"
)

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	Generation  int
	BestFitness float64
	MeanFitness float64
	BestGenome  int
	PopSize     int
	Species     int
}

// Reporter receives lifecycle events from the scheduler.
type Reporter interface {
	StartGeneration(generation int)
	PostEvaluate(stats GenerationStats, best Genome)
	FoundSolution(generation int, best Genome)
	CompleteExtinction()
	EndGeneration(generation, popSize, species int)
}

// Reporters fans events out to every reporter in order.
type Reporters []Reporter

func (rs Reporters) StartGeneration(generation int) {
	for _, r := range rs {
		r.StartGeneration(generation)
	}
}

func (rs Reporters) PostEvaluate(stats GenerationStats, best Genome) {
	for _, r := range rs {
		r.PostEvaluate(stats, best)
	}
}

func (rs Reporters) FoundSolution(generation int, best Genome) {
	for _, r := range rs {
		r.FoundSolution(generation, best)
	}
}

func (rs Reporters) CompleteExtinction() {
	for _, r := range rs {
		r.CompleteExtinction()
	}
}

func (rs Reporters) EndGeneration(generation, popSize, species int) {
	for _, r := range rs {
		r.EndGeneration(generation, popSize, species)
	}
}

// NewLogger creates the structured logger used by the trainer.
// A nil writer discards everything.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "trainer",
		Level:           level,
	})
}

// LogReporter writes lifecycle events to a charm logger.
type LogReporter struct {
	Logger *log.Logger

	started time.Time
	now     func() time.Time
}

// NewLogReporter returns a reporter logging to logger.
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = NewLogger(nil, log.InfoLevel)
	}
	return &LogReporter{Logger: logger, now: time.Now}
}

func (r *LogReporter) StartGeneration(generation int) {
	r.started = r.now()
	r.Logger.Debug("generation started", "generation", generation)
}

func (r *LogReporter) PostEvaluate(stats GenerationStats, best Genome) {
	r.Logger.Info("generation evaluated",
		"generation", stats.Generation,
		"best", stats.BestFitness,
		"mean", stats.MeanFitness,
		"genome", stats.BestGenome,
		"elapsed", r.now().Sub(r.started).Round(time.Millisecond),
	)
}

func (r *LogReporter) FoundSolution(generation int, best Genome) {
	if best == nil {
		r.Logger.Warn("run finished without a best genome", "generation", generation)
		return
	}
	r.Logger.Info("solution found", "generation", generation, "genome", best.Key(), "fitness", best.Fitness())
}

func (r *LogReporter) CompleteExtinction() {
	r.Logger.Warn("all species went extinct")
}

func (r *LogReporter) EndGeneration(generation, popSize, species int) {
	r.Logger.Debug("generation finished", "generation", generation, "population", popSize, "species", species)
}

// StoreReporter persists generation statistics of one run.
// Storage failures are logged, never propagated: training continues.
type StoreReporter struct {
	Store  *storage.Store
	RunID  string
	Logger *log.Logger
}

func (r *StoreReporter) StartGeneration(int) {}

func (r *StoreReporter) PostEvaluate(stats GenerationStats, _ Genome) {
	_, err := r.Store.SaveGeneration(storage.GenerationStat{
		RunID:       r.RunID,
		Generation:  stats.Generation,
		BestFitness: stats.BestFitness,
		MeanFitness: stats.MeanFitness,
		BestGenome:  stats.BestGenome,
		PopSize:     stats.PopSize,
		Species:     stats.Species,
	})
	if err != nil && r.Logger != nil {
		r.Logger.Error("cannot save generation", "run", r.RunID, "err", err)
	}
}

func (r *StoreReporter) FoundSolution(int, Genome)   {}
func (r *StoreReporter) CompleteExtinction()         {}
func (r *StoreReporter) EndGeneration(int, int, int) {}
