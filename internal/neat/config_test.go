package neat

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestModifyConfigRewritesInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config-feedforward.txt")
	if err := os.WriteFile(path, DefaultConfigText(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// A 4x5 map needs 4 + 20 inputs.
	if err := ModifyConfig(path, 4, 5); err != nil {
		t.Fatalf("ModifyConfig: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Genome.NumInputs != 24 {
		t.Errorf("expected num_inputs 24, got %d", cfg.Genome.NumInputs)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	before := strings.Split(string(DefaultConfigText()), "\n")
	after := strings.Split(string(data), "\n")
	if len(before) != len(after) {
		t.Fatalf("line count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if strings.HasPrefix(before[i], "num_inputs") {
			continue
		}
		if before[i] != after[i] {
			t.Errorf("line %d changed: %q -> %q", i+1, before[i], after[i])
		}
	}
}

func TestModifyConfigKeepsCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.txt")
	in := "[DefaultGenome]\r\nnum_inputs = 3\r\nnum_outputs = 4\r\n"
	if err := os.WriteFile(path, []byte(in), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ModifyConfig(path, 2, 2); err != nil {
		t.Fatalf("ModifyConfig: %v", err)
	}
	data, _ := os.ReadFile(path)
	want := "[DefaultGenome]\r\nnum_inputs              = 8\r\nnum_outputs = 4\r\n"
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, data)
	}
}

func TestModifyConfigWithoutKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.txt")
	if err := os.WriteFile(path, []byte("[NEAT]\npop_size = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ModifyConfig(path, 2, 2); !errors.Is(err, ErrNoInputsKey) {
		t.Errorf("expected ErrNoInputsKey, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Neat.PopSize != 100 {
		t.Errorf("expected pop_size 100, got %d", cfg.Neat.PopSize)
	}
	if cfg.Neat.NoFitnessTermination {
		t.Error("expected fitness termination enabled")
	}
	if !cfg.Neat.ResetOnExtinction {
		t.Error("expected reset_on_extinction")
	}
	if cfg.Genome.NumOutputs != 4 {
		t.Errorf("expected 4 outputs, got %d", cfg.Genome.NumOutputs)
	}
	if cfg.Reproduction.SurvivalThreshold != 0.2 || cfg.Stagnation.MaxStagnation != 20 {
		t.Errorf("unexpected reproduction/stagnation: %+v %+v", cfg.Reproduction, cfg.Stagnation)
	}
}

func TestParseConfigIgnoresUnusedKeys(t *testing.T) {
	text := string(DefaultConfigText()) + "\n[DefaultGenome]\nbias_mutate_rate = 0.7\n"
	cfg, err := ParseConfig([]byte(text))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Genome.NumInputs != 24 {
		t.Errorf("expected num_inputs 24, got %d", cfg.Genome.NumInputs)
	}
}

func TestParseConfigErrors(t *testing.T) {
	base := string(DefaultConfigText())

	testCases := []struct {
		name string
		text string
	}{
		{"bad int", strings.Replace(base, "pop_size              = 100", "pop_size = many", 1)},
		{"bad bool", strings.Replace(base, "reset_on_extinction   = True", "reset_on_extinction = maybe", 1)},
		{"no equals", base + "\n[NEAT]\npop_size\n"},
		{"bad criterion", strings.Replace(base, "fitness_criterion     = max", "fitness_criterion = median", 1)},
		{"bad activation", strings.Replace(base, "activation_default      = sigmoid", "activation_default = swish", 1)},
		{"no outputs", strings.Replace(base, "num_outputs             = 4", "num_outputs = 0", 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tc.text)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestFitnessCriterion(t *testing.T) {
	fitnesses := []float64{3, -1, 10}
	testCases := []struct {
		name string
		want float64
	}{
		{"max", 10},
		{"min", -1},
		{"mean", 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Neat.FitnessCriterion = tc.name
			if got := cfg.FitnessCriterion(fitnesses); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.Options()

	if opts.PopSize != 100 || opts.CompatThreshold != 3.0 || opts.DropOffAge != 20 {
		t.Errorf("unexpected population options: %+v", opts)
	}
	if opts.MutateAddNodeProb != 0.2 || opts.MutateAddLinkProb != 0.5 || opts.MutateLinkWeightsProb != 0.8 {
		t.Errorf("unexpected mutation options: %+v", opts)
	}
	if len(opts.NodeActivators) != 1 || len(opts.NodeActivatorsProb) != 1 {
		t.Errorf("expected one node activator, got %v", opts.NodeActivators)
	}
}

func TestEnsureConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.txt")
	if err := EnsureConfig(path); err != nil {
		t.Fatalf("EnsureConfig: %v", err)
	}
	if err := os.WriteFile(path, []byte("custom"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := EnsureConfig(path); err != nil {
		t.Fatalf("EnsureConfig again: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "custom" {
		t.Error("EnsureConfig overwrote an existing file")
	}
}
