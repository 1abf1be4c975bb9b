// Package config provides YAML-based application configuration for
// training and replay playback.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vovakirdan/blockdude-evo/internal/fitness"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid configuration")

// Config contains all application settings.
type Config struct {
	Training TrainingConfig  `yaml:"training"`
	Episode  EpisodeConfig   `yaml:"episode"`
	Fitness  fitness.Shaping `yaml:"fitness"`
	Showcase ShowcaseConfig  `yaml:"showcase"`
	Paths    PathsConfig     `yaml:"paths"`
}

// TrainingConfig controls the generation scheduler and its frame budget.
type TrainingConfig struct {
	MaxGenerations int    `yaml:"max_generations"` // 0 = no cap
	TargetFPS      int    `yaml:"target_fps"`
	BudgetMarginMS int    `yaml:"budget_margin_ms"`
	MinBudgetMS    int    `yaml:"min_budget_ms"`
	NEATConfig     string `yaml:"neat_config"` // empty = embedded default
}

// EpisodeConfig bounds a single fitness episode.
type EpisodeConfig struct {
	MaxTurns        int     `yaml:"max_turns"`
	RepeatWindow    int     `yaml:"repeat_window"`
	RepeatThreshold int     `yaml:"repeat_threshold"`
	NoFloorFitness  float64 `yaml:"no_floor_fitness"`
}

// ShowcaseConfig controls replay playback.
type ShowcaseConfig struct {
	ActionIntervalMS int `yaml:"action_interval_ms"`
	MaxTurns         int `yaml:"max_turns"`
	RepeatWindow     int `yaml:"repeat_window"`
}

// PathsConfig locates data on disk. A leading "~" expands to the home
// directory; empty values are derived from DataDir.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir"`
	MapsDir    string `yaml:"maps_dir"` // empty = bundled maps
	ReplaysDir string `yaml:"replays_dir"`
	DB         string `yaml:"db"`
}

// BudgetMargin returns the frame budget safety margin.
func (t TrainingConfig) BudgetMargin() time.Duration {
	return time.Duration(t.BudgetMarginMS) * time.Millisecond
}

// MinBudget returns the smallest training slice per frame.
func (t TrainingConfig) MinBudget() time.Duration {
	return time.Duration(t.MinBudgetMS) * time.Millisecond
}

// ActionInterval returns the delay between showcase moves.
func (s ShowcaseConfig) ActionInterval() time.Duration {
	return time.Duration(s.ActionIntervalMS) * time.Millisecond
}

// Evaluator builds a fitness evaluator for m from the episode and shaping
// settings.
func (c Config) Evaluator(m core.GridMap) *fitness.Evaluator {
	ev := fitness.NewEvaluator(m)
	ev.Shaping = c.Fitness
	ev.MaxTurns = c.Episode.MaxTurns
	ev.RepeatWindow = c.Episode.RepeatWindow
	ev.RepeatThreshold = c.Episode.RepeatThreshold
	ev.NoFloorFitness = c.Episode.NoFloorFitness
	return ev
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if c.Training.MaxGenerations < 0 {
		problems = append(problems, "training.max_generations must not be negative")
	}
	if c.Training.TargetFPS <= 0 {
		problems = append(problems, "training.target_fps must be positive")
	}
	if c.Training.BudgetMarginMS < 0 || c.Training.MinBudgetMS <= 0 {
		problems = append(problems, "training budget values must be positive")
	}
	if c.Episode.MaxTurns <= 0 {
		problems = append(problems, "episode.max_turns must be positive")
	}
	if c.Episode.RepeatWindow <= 0 || c.Episode.RepeatThreshold <= 0 {
		problems = append(problems, "episode repeat window and threshold must be positive")
	} else if c.Episode.RepeatThreshold > c.Episode.RepeatWindow {
		// The trace never holds more than RepeatWindow states.
		problems = append(problems, "episode.repeat_threshold must not exceed episode.repeat_window")
	}
	if c.Showcase.MaxTurns <= 0 || c.Showcase.RepeatWindow <= 0 {
		problems = append(problems, "showcase turns and window must be positive")
	}
	if c.Showcase.ActionIntervalMS <= 0 {
		problems = append(problems, "showcase.action_interval_ms must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Resolve expands "~" and fills derived paths.
func (p PathsConfig) Resolve() PathsConfig {
	p.DataDir = expandHome(p.DataDir)
	if p.DataDir == "" {
		p.DataDir = filepath.Join(homeDir(), ".blockdude")
	}
	p.MapsDir = expandHome(p.MapsDir)
	p.ReplaysDir = expandHome(p.ReplaysDir)
	if p.ReplaysDir == "" {
		p.ReplaysDir = filepath.Join(p.DataDir, "replays")
	}
	p.DB = expandHome(p.DB)
	if p.DB == "" {
		p.DB = filepath.Join(p.DataDir, "runs.db")
	}
	return p
}

// NEATConfigPath returns the policy configuration file in use.
func (c Config) NEATConfigPath() string {
	if c.Training.NEATConfig != "" {
		return expandHome(c.Training.NEATConfig)
	}
	return filepath.Join(c.Paths.Resolve().DataDir, "config-feedforward.txt")
}

// LogPath is where training logs go while the terminal UI is active.
func (c Config) LogPath() string {
	return filepath.Join(c.Paths.Resolve().DataDir, "blockdude.log")
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
