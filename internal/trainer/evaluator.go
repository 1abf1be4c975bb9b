package trainer

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/blockdude-evo/internal/fitness"
	"github.com/vovakirdan/blockdude-evo/internal/policy"
)

// ErrExhausted is returned by EvaluateOne once every genome has a fitness.
var ErrExhausted = errors.New("trainer: generation already evaluated")

// EpisodeRunner plays one episode with a policy.
// *fitness.Evaluator is the production implementation.
type EpisodeRunner interface {
	Evaluate(net policy.Network) (fitness.Result, error)
}

// GenomeEvaluator walks one generation a genome at a time.
type GenomeEvaluator struct {
	genomes []Genome
	runner  EpisodeRunner
	cursor  int
	wins    int
	last    fitness.Result
}

// NewGenomeEvaluator returns a cursor at the first of genomes.
func NewGenomeEvaluator(genomes []Genome, runner EpisodeRunner) *GenomeEvaluator {
	return &GenomeEvaluator{genomes: genomes, runner: runner}
}

// EvaluateOne plays the genome at the cursor, records its fitness and
// compiled network, and advances the cursor. The cursor does not move
// when the episode fails.
func (e *GenomeEvaluator) EvaluateOne() error {
	if e.Exhausted() {
		return ErrExhausted
	}
	g := e.genomes[e.cursor]
	net := g.Compile()
	res, err := e.runner.Evaluate(net)
	if err != nil {
		return fmt.Errorf("trainer: genome %d: %w", g.Key(), err)
	}
	g.SetFitness(res.Fitness)
	g.AttachNetwork(net)

	e.cursor++
	e.last = res
	if res.Won {
		e.wins++
	}
	return nil
}

// Exhausted reports whether the whole generation has been evaluated.
func (e *GenomeEvaluator) Exhausted() bool {
	return e.cursor >= len(e.genomes)
}

// Progress returns how many genomes are done out of the generation size.
func (e *GenomeEvaluator) Progress() (done, total int) {
	return e.cursor, len(e.genomes)
}

// Wins is the number of evaluated genomes that reached the door.
func (e *GenomeEvaluator) Wins() int { return e.wins }

// Last is the result of the most recent episode.
func (e *GenomeEvaluator) Last() fitness.Result { return e.last }

// Genomes returns the generation being evaluated.
func (e *GenomeEvaluator) Genomes() []Genome { return e.genomes }
