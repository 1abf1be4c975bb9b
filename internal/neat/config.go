// Package neat binds the policy configuration file to the goNEAT library:
// it parses the file, rewrites its input count for a map, and builds the
// start genome and phenotype networks the trainer evolves.
package neat

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	goneat "github.com/yaricom/goNEAT/v4/neat"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"gopkg.in/ini.v1"
)

//go:embed config-feedforward.txt
var defaultConfigText []byte

// DefaultConfigText returns the bundled policy configuration.
func DefaultConfigText() []byte {
	return bytes.Clone(defaultConfigText)
}

// ErrNoInputsKey is returned by ModifyConfig when the file has no num_inputs line.
var ErrNoInputsKey = errors.New("neat: config has no num_inputs line")

// Config is the parsed policy configuration.
type Config struct {
	Neat         NeatConfig         `ini:"NEAT"`
	Genome       GenomeConfig       `ini:"DefaultGenome"`
	SpeciesSet   SpeciesSetConfig   `ini:"DefaultSpeciesSet"`
	Stagnation   StagnationConfig   `ini:"DefaultStagnation"`
	Reproduction ReproductionConfig `ini:"DefaultReproduction"`
}

// NeatConfig is the [NEAT] section.
type NeatConfig struct {
	FitnessCriterion     string  `ini:"fitness_criterion"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	PopSize              int     `ini:"pop_size"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`
}

// GenomeConfig is the [DefaultGenome] section.
type GenomeConfig struct {
	NumInputs         int     `ini:"num_inputs"`
	NumOutputs        int     `ini:"num_outputs"`
	ActivationDefault string  `ini:"activation_default"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	EnabledMutateRate float64 `ini:"enabled_mutate_rate"`
	ConnAddProb       float64 `ini:"conn_add_prob"`
	NodeAddProb       float64 `ini:"node_add_prob"`

	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`
}

// SpeciesSetConfig is the [DefaultSpeciesSet] section.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

// StagnationConfig is the [DefaultStagnation] section.
type StagnationConfig struct {
	MaxStagnation int `ini:"max_stagnation"`
}

// ReproductionConfig is the [DefaultReproduction] section.
type ReproductionConfig struct {
	SurvivalThreshold float64 `ini:"survival_threshold"`
}

// DefaultConfig returns the bundled configuration, parsed.
func DefaultConfig() *Config {
	cfg, err := ParseConfig(defaultConfigText)
	if err != nil {
		panic(fmt.Sprintf("neat: bundled config: %v", err))
	}
	return cfg
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("neat: open config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("neat: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses "key = value" lines grouped in [Section] blocks.
// Keys the policy does not use are ignored; malformed values are errors.
func ParseConfig(data []byte) (*Config, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg := &Config{}
	if err := f.StrictMapTo(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the population cannot work without.
func (c *Config) Validate() error {
	switch {
	case c.Neat.PopSize <= 0:
		return errors.New("pop_size must be positive")
	case c.Genome.NumInputs <= 0:
		return errors.New("num_inputs must be positive")
	case c.Genome.NumOutputs <= 0:
		return errors.New("num_outputs must be positive")
	case c.SpeciesSet.CompatibilityThreshold <= 0:
		return errors.New("compatibility_threshold must be positive")
	}
	if _, err := criterion(c.Neat.FitnessCriterion); err != nil {
		return err
	}
	if _, err := activation(c.Genome.ActivationDefault); err != nil {
		return err
	}
	return nil
}

// FitnessCriterion aggregates the fitnesses of a generation with the
// configured fitness_criterion, for comparison with fitness_threshold.
func (c *Config) FitnessCriterion(fitnesses []float64) float64 {
	fn, err := criterion(c.Neat.FitnessCriterion)
	if err != nil || len(fitnesses) == 0 {
		return 0
	}
	return fn(fitnesses)
}

func criterion(name string) (func([]float64) float64, error) {
	switch name {
	case "max":
		return func(v []float64) float64 { return slices.Max(v) }, nil
	case "min":
		return func(v []float64) float64 { return slices.Min(v) }, nil
	case "mean":
		return func(v []float64) float64 {
			sum := 0.0
			for _, f := range v {
				sum += f
			}
			return sum / float64(len(v))
		}, nil
	default:
		return nil, fmt.Errorf("unknown fitness criterion %q", name)
	}
}

// Options translates the configuration into goNEAT options. Operators the
// file has no key for keep the values of the classic NEAT parameter set.
func (c *Config) Options() *goneat.Options {
	act, _ := activation(c.Genome.ActivationDefault)
	return &goneat.Options{
		PopSize:         c.Neat.PopSize,
		CompatThreshold: c.SpeciesSet.CompatibilityThreshold,
		DisjointCoeff:   c.Genome.CompatibilityDisjointCoefficient,
		ExcessCoeff:     c.Genome.CompatibilityDisjointCoefficient,
		MutdiffCoeff:    c.Genome.CompatibilityWeightCoefficient,
		SurvivalThresh:  c.Reproduction.SurvivalThreshold,
		DropOffAge:      c.Stagnation.MaxStagnation,
		AgeSignificance: 1.0,

		MutateLinkWeightsProb:  c.Genome.WeightMutateRate,
		WeightMutPower:         c.Genome.WeightMutatePower,
		MutateToggleEnableProb: c.Genome.EnabledMutateRate,
		MutateAddLinkProb:      c.Genome.ConnAddProb,
		MutateAddNodeProb:      c.Genome.NodeAddProb,
		NewLinkTries:           20,

		MutateOnlyProb:        0.25,
		MateOnlyProb:          0.2,
		MateMultipointProb:    0.6,
		MateMultipointAvgProb: 0.4,
		InterspeciesMateRate:  0.001,

		EpochExecutorType:  goneat.EpochExecutorTypeSequential,
		GenCompatMethod:    goneat.GenomeCompatibilityMethodFast,
		NodeActivators:     []neatmath.NodeActivationType{act},
		NodeActivatorsProb: []float64{1.0},
	}
}

// InputCount is the network input size for a width x height map.
func InputCount(width, height int) int {
	return 4 + width*height
}

// ModifyConfig rewrites the num_inputs line of the file at path to
// 4 + width*height. Every other line is kept byte for byte.
func ModifyConfig(path string, width, height int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("neat: read config: %w", err)
	}

	lines := bytes.SplitAfter(data, []byte("\n"))
	found := false
	for i, line := range lines {
		key, _, ok := strings.Cut(string(line), "=")
		if !ok || strings.TrimSpace(key) != "num_inputs" {
			continue
		}
		eol := ""
		if bytes.HasSuffix(line, []byte("\r\n")) {
			eol = "\r\n"
		} else if bytes.HasSuffix(line, []byte("\n")) {
			eol = "\n"
		}
		lines[i] = []byte(fmt.Sprintf("num_inputs              = %d%s", InputCount(width, height), eol))
		found = true
	}
	if !found {
		return ErrNoInputsKey
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("neat: stat config: %w", err)
	}
	if err := os.WriteFile(path, bytes.Join(lines, nil), info.Mode().Perm()); err != nil {
		return fmt.Errorf("neat: write config: %w", err)
	}
	return nil
}

// EnsureConfig writes the bundled configuration to path unless a file
// already exists there.
func EnsureConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("neat: create config dir: %w", err)
	}
	if err := os.WriteFile(path, defaultConfigText, 0o644); err != nil {
		return fmt.Errorf("neat: write default config: %w", err)
	}
	return nil
}
