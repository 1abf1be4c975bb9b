package config

import (
	_ "embed"

	"github.com/vovakirdan/blockdude-evo/internal/fitness"
)

//go:embed defaults/blockdude.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Training: TrainingConfig{
			TargetFPS:      10,
			BudgetMarginMS: 50,
			MinBudgetMS:    15,
		},
		Episode: EpisodeConfig{
			MaxTurns:        fitness.DefaultMaxTurns,
			RepeatWindow:    fitness.DefaultRepeatWindow,
			RepeatThreshold: fitness.DefaultRepeatThreshold,
			NoFloorFitness:  fitness.DefaultNoFloorFitness,
		},
		Fitness: fitness.DefaultShaping(),
		Showcase: ShowcaseConfig{
			ActionIntervalMS: 250,
			MaxTurns:         100,
			RepeatWindow:     15,
		},
		Paths: PathsConfig{
			DataDir: "~/.blockdude",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultYAML
}
