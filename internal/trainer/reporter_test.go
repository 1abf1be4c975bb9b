package trainer

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockdude-evo/internal/fitness"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/neat"
	"github.com/vovakirdan/blockdude-evo/internal/storage"
)

type recordingReporter struct {
	events []string
	stats  []GenerationStats
}

func (r *recordingReporter) StartGeneration(int) { r.events = append(r.events, "start") }

func (r *recordingReporter) PostEvaluate(s GenerationStats, _ Genome) {
	r.events = append(r.events, "post")
	r.stats = append(r.stats, s)
}

func (r *recordingReporter) FoundSolution(int, Genome) { r.events = append(r.events, "solution") }
func (r *recordingReporter) CompleteExtinction()       { r.events = append(r.events, "extinction") }
func (r *recordingReporter) EndGeneration(int, int, int) {
	r.events = append(r.events, "end")
}

func TestReportersFanOut(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	pop := newFakePopulation(2, noThreshold)
	runner := &fakeRunner{fitness: map[int]float64{1: 3, 2: 7}}
	s := NewScheduler(pop, runner, 1, WithReporter(Reporters{a, b}))

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"start", "post", "end", "solution"}
	for i, r := range []*recordingReporter{a, b} {
		if !equalStrings(r.events, want) {
			t.Errorf("reporter %d: expected %v, got %v", i, want, r.events)
		}
	}
	st := a.stats[0]
	if st.BestFitness != 7 || st.MeanFitness != 5 || st.BestGenome != 2 || st.PopSize != 2 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(NewLogger(&buf, log.DebugLevel))

	r.StartGeneration(0)
	r.PostEvaluate(GenerationStats{Generation: 0, BestFitness: 42, BestGenome: 7}, nil)
	r.EndGeneration(0, 100, 3)
	r.FoundSolution(0, &fakeGenome{key: 7, fitness: 42})
	r.CompleteExtinction()

	out := buf.String()
	for _, want := range []string{"generation started", "generation evaluated", "generation finished", "solution found", "extinct"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestStoreReporter(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer store.Close()

	run, err := store.StartRun("map_test")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	pop := newFakePopulation(3, noThreshold)
	runner := &fakeRunner{fitness: map[int]float64{1: 10, 2: 20, 3: 30, 4: 40, 5: 50, 6: 60}}
	rep := &StoreReporter{Store: store, RunID: run.ID}
	s := NewScheduler(pop, runner, 2, WithReporter(rep))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats, err := store.Generations(run.ID)
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 generation rows, got %d", len(stats))
	}
	if stats[0].BestFitness != 30 || stats[1].BestFitness != 60 {
		t.Errorf("unexpected rows: %+v", stats)
	}
}

func TestNEATPopulationOnBundledMap(t *testing.T) {
	level, err := levels.Bundled().LoadByID("map_test")
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}

	cfg := neat.DefaultConfig()
	cfg.Neat.PopSize = 12
	cfg.Genome.NumInputs = neat.InputCount(level.Width(), level.Height())

	pop, err := NewNEATPopulation(cfg)
	if err != nil {
		t.Fatalf("NewNEATPopulation: %v", err)
	}
	s := NewScheduler(pop, fitness.NewEvaluator(level.Map), 3)

	best, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if best == nil {
		t.Fatal("expected a best genome")
	}
	if s.CurrentGeneration() != 3 && !s.Solved() {
		t.Errorf("expected 3 generations or a solution, got %d", s.CurrentGeneration())
	}

	ng, ok := best.(*NEATGenome)
	if !ok {
		t.Fatalf("expected *NEATGenome, got %T", best)
	}
	if ng.Network() == nil {
		t.Error("best genome should carry its compiled network")
	}
	if ng.Genome() == nil || ng.Key() != ng.Genome().Id {
		t.Error("best genome should expose its genotype")
	}

	// Replaying the compiled network reproduces the recorded fitness.
	res, err := fitness.NewEvaluator(level.Map).Evaluate(ng.Compile())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Fitness != s.BestFitness() {
		t.Errorf("replay fitness %v differs from recorded %v", res.Fitness, s.BestFitness())
	}
}

func TestNEATGenomeKeepsEpisodeFitness(t *testing.T) {
	cfg := neat.DefaultConfig()
	cfg.Neat.PopSize = 4
	pop, err := NewNEATPopulation(cfg)
	if err != nil {
		t.Fatalf("NewNEATPopulation: %v", err)
	}
	g := pop.Genomes()[0].(*NEATGenome)

	g.SetFitness(-100)
	if g.Fitness() != -100 {
		t.Errorf("expected episode fitness -100, got %v", g.Fitness())
	}
	if g.Org.Fitness <= 0 {
		t.Errorf("organism fitness must stay positive, got %v", g.Org.Fitness)
	}
	if pop.Genomes()[0] != Genome(g) {
		t.Error("genomes should be stable within a generation")
	}
}
