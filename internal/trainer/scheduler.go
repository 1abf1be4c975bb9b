package trainer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfiguration means the run has neither a generation cap nor a
	// fitness threshold and would never end.
	ErrConfiguration = errors.New("trainer: no generation limit and no fitness termination")
	// ErrCompleteExtinction means reproduction left no species and the
	// population may not reset.
	ErrCompleteExtinction = errors.New("trainer: complete extinction")
	// ErrNotRunning is returned when slicing before StartRunning.
	ErrNotRunning = errors.New("trainer: scheduler not running")
)

// Scheduler owns the generation lifecycle of one training run.
type Scheduler struct {
	pop      Population
	runner   EpisodeRunner
	reporter Reporter
	now      func() time.Time

	maxGenerations int
	current        int
	running        bool
	solved         bool

	best        Genome
	bestFitness float64
	evaluator   *GenomeEvaluator
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithReporter sets the lifecycle reporter.
func WithReporter(r Reporter) Option {
	return func(s *Scheduler) { s.reporter = r }
}

// WithClock replaces time.Now for budget accounting.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler returns a scheduler for pop. maxGenerations <= 0 means the
// run only ends on the fitness threshold.
func NewScheduler(pop Population, runner EpisodeRunner, maxGenerations int, opts ...Option) *Scheduler {
	s := &Scheduler{
		pop:            pop,
		runner:         runner,
		reporter:       Reporters(nil),
		now:            time.Now,
		maxGenerations: maxGenerations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRunning checks that the run can terminate.
func (s *Scheduler) StartRunning() error {
	if s.pop.Termination().NoFitnessTermination && s.maxGenerations <= 0 {
		return ErrConfiguration
	}
	s.running = true
	return nil
}

// StartGeneration announces a new generation and creates its evaluator.
func (s *Scheduler) StartGeneration() {
	s.reporter.StartGeneration(s.pop.Generation())
	s.evaluator = NewGenomeEvaluator(s.pop.Genomes(), s.runner)
}

// Evaluator returns the evaluator of the current generation, or nil
// between generations.
func (s *Scheduler) Evaluator() *GenomeEvaluator { return s.evaluator }

// EndGeneration closes a fully evaluated generation. It picks the best
// genome (first seen wins ties), updates the best ever, checks the fitness
// threshold, and otherwise breeds and speciates the next generation.
func (s *Scheduler) EndGeneration() error {
	if s.evaluator == nil || !s.evaluator.Exhausted() {
		return fmt.Errorf("trainer: generation %d is not fully evaluated", s.pop.Generation())
	}
	genomes := s.evaluator.Genomes()
	s.evaluator = nil

	var best Genome
	fitnesses := make([]float64, 0, len(genomes))
	sum := 0.0
	for _, g := range genomes {
		f := g.Fitness()
		fitnesses = append(fitnesses, f)
		sum += f
		if best == nil || f > best.Fitness() {
			best = g
		}
	}

	if best != nil {
		s.reporter.PostEvaluate(GenerationStats{
			Generation:  s.pop.Generation(),
			BestFitness: best.Fitness(),
			MeanFitness: sum / float64(len(genomes)),
			BestGenome:  best.Key(),
			PopSize:     len(genomes),
			Species:     s.pop.SpeciesCount(),
		}, best)

		if s.best == nil || best.Fitness() > s.bestFitness {
			s.best = best
			s.bestFitness = best.Fitness()
		}
	}

	term := s.pop.Termination()
	if !term.NoFitnessTermination && len(fitnesses) > 0 {
		if s.pop.FitnessCriterion(fitnesses) >= term.FitnessThreshold {
			s.reporter.FoundSolution(s.pop.Generation(), best)
			s.solved = true
			return nil
		}
	}

	species, err := s.pop.Reproduce()
	if err != nil {
		return fmt.Errorf("trainer: reproduce generation %d: %w", s.pop.Generation(), err)
	}
	if species == 0 {
		s.reporter.CompleteExtinction()
		if !term.ResetOnExtinction {
			return ErrCompleteExtinction
		}
		if err := s.pop.Reset(); err != nil {
			return fmt.Errorf("trainer: reset population: %w", err)
		}
	}
	s.pop.Speciate()
	s.reporter.EndGeneration(s.pop.Generation(), len(s.pop.Genomes()), s.pop.SpeciesCount())

	s.pop.Advance()
	s.current++
	return nil
}

// IsOver reports whether the generation cap or the fitness threshold
// was reached.
func (s *Scheduler) IsOver() bool {
	return s.solved || (s.maxGenerations > 0 && s.current >= s.maxGenerations)
}

// EndRun stops the run and returns the best genome ever evaluated.
func (s *Scheduler) EndRun() Genome {
	if s.pop.Termination().NoFitnessTermination {
		s.reporter.FoundSolution(s.pop.Generation(), s.best)
	}
	s.running = false
	return s.best
}

// CurrentGeneration is the number of generations completed by this run.
func (s *Scheduler) CurrentGeneration() int { return s.current }

// MaxGenerations is the generation cap; 0 means none.
func (s *Scheduler) MaxGenerations() int { return s.maxGenerations }

// CurrentBest returns the best genome so far, or nil before the first
// generation ends.
func (s *Scheduler) CurrentBest() Genome { return s.best }

// BestFitness is the fitness of CurrentBest at the time it was recorded.
func (s *Scheduler) BestFitness() float64 { return s.bestFitness }

// Solved reports whether the fitness threshold ended the run.
func (s *Scheduler) Solved() bool { return s.solved }

// SliceStats describes the work done by one RunFor call.
type SliceStats struct {
	Evaluated   int
	Generations int
	Elapsed     time.Duration
}

// RunFor evaluates genomes until budget is spent or the run is over.
// Every call evaluates at least one genome unless the run is over, and a
// genome is never interrupted, so a call returns within budget plus the
// cost of one episode. Exhausted generations are closed and the next one
// is started within the same call.
func (s *Scheduler) RunFor(budget time.Duration) (stats SliceStats, err error) {
	if !s.running {
		return stats, ErrNotRunning
	}

	start := s.now()
	defer func() { stats.Elapsed = s.now().Sub(start) }()

	for !s.IsOver() {
		if s.evaluator == nil {
			s.StartGeneration()
		}
		if s.evaluator.Exhausted() {
			if err := s.EndGeneration(); err != nil {
				return stats, err
			}
			stats.Generations++
			continue
		}

		if err := s.evaluator.EvaluateOne(); err != nil {
			return stats, err
		}
		stats.Evaluated++

		if s.now().Sub(start) >= budget {
			break
		}
	}
	return stats, nil
}

// Run trains whole generations back to back until the run is over and
// returns the best genome. The context is checked between genomes.
func (s *Scheduler) Run(ctx context.Context) (Genome, error) {
	if err := s.StartRunning(); err != nil {
		return nil, err
	}
	for !s.IsOver() {
		s.StartGeneration()
		for !s.evaluator.Exhausted() {
			if err := ctx.Err(); err != nil {
				return s.best, err
			}
			if err := s.evaluator.EvaluateOne(); err != nil {
				return s.best, err
			}
		}
		if err := s.EndGeneration(); err != nil {
			return s.best, err
		}
	}
	return s.EndRun(), nil
}
