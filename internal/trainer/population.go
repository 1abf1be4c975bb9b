// Package trainer drives a population through generations of Block Dude
// episodes, one genome at a time, so a frame loop can interleave training
// with rendering.
package trainer

import (
	"context"
	"math"

	goneat "github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/vovakirdan/blockdude-evo/internal/neat"
	"github.com/vovakirdan/blockdude-evo/internal/policy"
)

// Genome is one evolvable policy as seen by the scheduler.
type Genome interface {
	Key() int
	Fitness() float64
	SetFitness(float64)
	// Compile builds the policy network for an evaluation.
	Compile() policy.Network
	// Network returns the network attached by the last evaluation, or nil.
	Network() policy.Network
	AttachNetwork(policy.Network)
}

// Termination is the stop configuration of a population.
type Termination struct {
	NoFitnessTermination bool
	FitnessThreshold     float64
	ResetOnExtinction    bool
}

// Population is the generation lifecycle the scheduler drives.
// Reproduction, speciation and genome storage belong to the implementation.
type Population interface {
	Generation() int
	// Genomes returns the current generation in a stable order.
	Genomes() []Genome
	Termination() Termination
	FitnessCriterion(fitnesses []float64) float64
	// Reproduce replaces the genomes with the next generation and
	// returns the number of surviving species.
	Reproduce() (int, error)
	Reset() error
	Speciate()
	Advance()
	SpeciesCount() int
}

// minOrganismFitness keeps goNEAT's fitness sharing positive; episode
// fitness can go negative on a fall.
const minOrganismFitness = 1e-3

// NEATGenome adapts a goNEAT organism. The episode fitness is kept apart
// from the organism's, which goNEAT rescales during reproduction.
type NEATGenome struct {
	Org     *genetics.Organism
	fitness float64
	net     policy.Network
}

// WrapOrganism adapts org.
func WrapOrganism(org *genetics.Organism) *NEATGenome {
	return &NEATGenome{Org: org, fitness: org.Fitness}
}

func (g *NEATGenome) Key() int         { return g.Org.Genotype.Id }
func (g *NEATGenome) Fitness() float64 { return g.fitness }

// SetFitness records the episode fitness and hands goNEAT a positive copy.
func (g *NEATGenome) SetFitness(f float64) {
	g.fitness = f
	g.Org.Fitness = math.Max(f, minOrganismFitness)
}

// Genome returns the genotype of the organism.
func (g *NEATGenome) Genome() *genetics.Genome { return g.Org.Genotype }

// Compile wraps the organism's phenotype, building it when missing.
func (g *NEATGenome) Compile() policy.Network {
	if g.Org.Phenotype != nil {
		return neat.WrapNetwork(g.Org.Phenotype, g.Org.Genotype)
	}
	net, err := neat.NewNetwork(g.Org.Genotype)
	if err != nil {
		return brokenNetwork{err}
	}
	return net
}

// Network returns the attached network.
func (g *NEATGenome) Network() policy.Network { return g.net }

// AttachNetwork keeps n with the genome.
func (g *NEATGenome) AttachNetwork(n policy.Network) { g.net = n }

// brokenNetwork reports a phenotype that could not be built, so the
// episode ends with a policy error instead of stopping the run.
type brokenNetwork struct{ err error }

func (n brokenNetwork) Activate([]float64) ([]float64, error) { return nil, n.err }

// NEATPopulation adapts a goNEAT population. goNEAT draws from the
// process-wide random source, so runs are not reproducible.
type NEATPopulation struct {
	Pop    *genetics.Population
	Config *neat.Config

	opts       *goneat.Options
	ctx        context.Context
	start      *genetics.Genome
	epoch      *genetics.SequentialPopulationEpochExecutor
	generation int
	genomes    []Genome
}

// NewNEATPopulation spawns a population from the start genome of cfg.
func NewNEATPopulation(cfg *neat.Config) (*NEATPopulation, error) {
	start, err := neat.StartGenome(cfg)
	if err != nil {
		return nil, err
	}
	// goNEAT logs to stdout, which belongs to the terminal UI.
	goneat.LogLevel = goneat.LogLevelError

	opts := cfg.Options()
	p := &NEATPopulation{
		Config: cfg,
		opts:   opts,
		ctx:    goneat.NewContext(context.Background(), opts),
		start:  start,
		epoch:  &genetics.SequentialPopulationEpochExecutor{},
	}
	if err := p.Reset(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *NEATPopulation) Generation() int { return p.generation }

// Genomes returns the organisms of the current generation in population
// order. Wrappers are reused until the next reproduction.
func (p *NEATPopulation) Genomes() []Genome {
	if p.genomes == nil {
		p.genomes = make([]Genome, len(p.Pop.Organisms))
		for i, org := range p.Pop.Organisms {
			p.genomes[i] = WrapOrganism(org)
		}
	}
	return p.genomes
}

func (p *NEATPopulation) Termination() Termination {
	n := p.Config.Neat
	return Termination{
		NoFitnessTermination: n.NoFitnessTermination,
		FitnessThreshold:     n.FitnessThreshold,
		ResetOnExtinction:    n.ResetOnExtinction,
	}
}

func (p *NEATPopulation) FitnessCriterion(f []float64) float64 { return p.Config.FitnessCriterion(f) }

// Reproduce runs one goNEAT epoch: fitness sharing, culling, offspring
// and speciation of the offspring.
func (p *NEATPopulation) Reproduce() (int, error) {
	p.genomes = nil
	if err := p.epoch.NextEpoch(p.ctx, p.generation, p.Pop); err != nil {
		return 0, err
	}
	return len(p.Pop.Species), nil
}

// Reset spawns a fresh population from the start genome.
func (p *NEATPopulation) Reset() error {
	pop, err := genetics.NewPopulation(p.start, p.opts)
	if err != nil {
		return err
	}
	p.Pop = pop
	p.genomes = nil
	return nil
}

// Speciate is part of Reproduce: goNEAT places offspring into species
// while the epoch runs.
func (p *NEATPopulation) Speciate() {}

func (p *NEATPopulation) Advance()          { p.generation++ }
func (p *NEATPopulation) SpeciesCount() int { return len(p.Pop.Species) }
