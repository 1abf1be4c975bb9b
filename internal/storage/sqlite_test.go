package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fakeClock advances one second per call.
func fakeClock() func() time.Time {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	run, err := store.StartRun("map_test")
	if err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	got, err := store.RunByID(run.ID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil || got.MapID != "map_test" {
		t.Errorf("Expected run on map_test after reopen, got %+v", got)
	}
}

func TestStoreRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	store.now = fakeClock()

	run, err := store.StartRun("map3")
	if err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected a run ID")
	}
	if run.Finished() {
		t.Error("New run should not be finished")
	}

	for gen, best := range []float64{-20, 35, 80} {
		_, err := store.SaveGeneration(GenerationStat{
			RunID:       run.ID,
			Generation:  gen,
			BestFitness: best,
			MeanFitness: best / 2,
			BestGenome:  gen + 1,
			PopSize:     100,
			Species:     3,
		})
		if err != nil {
			t.Fatalf("SaveGeneration(%d) failed: %v", gen, err)
		}
	}

	got, err := store.RunByID(run.ID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got.Generations != 3 {
		t.Errorf("Expected 3 generations, got %d", got.Generations)
	}
	if got.BestFitness != 80 {
		t.Errorf("Expected best fitness 80, got %v", got.BestFitness)
	}

	if err := store.FinishRun(run.ID, 3, 519, true, "/tmp/winner.replay"); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}
	got, _ = store.RunByID(run.ID)
	if !got.Finished() || !got.Solved || got.BestFitness != 519 || got.ReplayPath != "/tmp/winner.replay" {
		t.Errorf("Unexpected finished run: %+v", got)
	}
	if !got.FinishedAt.After(got.StartedAt) {
		t.Errorf("FinishedAt %v should be after StartedAt %v", got.FinishedAt, got.StartedAt)
	}

	stats, err := store.Generations(run.ID)
	if err != nil {
		t.Fatalf("Generations() failed: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("Expected 3 generation rows, got %d", len(stats))
	}
	for i, g := range stats {
		if g.Generation != i {
			t.Errorf("Row %d: expected generation %d, got %d", i, i, g.Generation)
		}
	}
	if stats[0].BestFitness != -20 || stats[0].MeanFitness != -10 {
		t.Errorf("Unexpected first generation: %+v", stats[0])
	}
}

func TestStoreNegativeBestFitness(t *testing.T) {
	store := openTestStore(t)

	run, _ := store.StartRun("map_test")
	if _, err := store.SaveGeneration(GenerationStat{RunID: run.ID, BestFitness: -100}); err != nil {
		t.Fatalf("SaveGeneration() failed: %v", err)
	}

	got, _ := store.RunByID(run.ID)
	if got.BestFitness != -100 {
		t.Errorf("Expected best fitness -100, got %v", got.BestFitness)
	}
}

func TestStoreRunNotFound(t *testing.T) {
	store := openTestStore(t)

	got, err := store.RunByID("missing")
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing run, got %+v", got)
	}

	if err := store.FinishRun("missing", 1, 0, false, ""); err == nil {
		t.Error("FinishRun() on a missing run should fail")
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)
	store.now = fakeClock()

	var ids []string
	for _, m := range []string{"a", "b", "c", "d"} {
		run, err := store.StartRun(m)
		if err != nil {
			t.Fatalf("StartRun(%s) failed: %v", m, err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := store.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs with limit, got %d", len(runs))
	}

	// Newest first
	if runs[0].ID != ids[3] || runs[1].ID != ids[2] || runs[2].ID != ids[1] {
		t.Errorf("Runs not in expected order: %v", runs)
	}
}

func TestStoreDeleteRun(t *testing.T) {
	store := openTestStore(t)

	run, _ := store.StartRun("map_test")
	store.SaveGeneration(GenerationStat{RunID: run.ID, Generation: 0, BestFitness: 10})

	if err := store.DeleteRun(run.ID); err != nil {
		t.Fatalf("DeleteRun() failed: %v", err)
	}

	got, _ := store.RunByID(run.ID)
	if got != nil {
		t.Error("Run should be gone after DeleteRun")
	}
	stats, _ := store.Generations(run.ID)
	if len(stats) != 0 {
		t.Errorf("Expected no generation rows, got %d", len(stats))
	}
}

func TestStorePlays(t *testing.T) {
	store := openTestStore(t)

	plays := []Play{
		{MapID: "map_test", Mode: "manual", Won: false, Turns: 100},
		{MapID: "map_test", Mode: "manual", Won: true, Turns: 14},
		{MapID: "map_test", Mode: "showcase", Won: true, Turns: 9},
		{MapID: "map3", Mode: "manual", Won: true, Turns: 30},
	}
	for _, p := range plays {
		if _, err := store.SavePlay(p); err != nil {
			t.Fatalf("SavePlay() failed: %v", err)
		}
	}

	best, err := store.BestPlays("map_test", 10)
	if err != nil {
		t.Fatalf("BestPlays() failed: %v", err)
	}
	if len(best) != 3 {
		t.Fatalf("Expected 3 plays, got %d", len(best))
	}

	// Wins first, fewest turns first
	if best[0].Turns != 9 || best[1].Turns != 14 || best[2].Won {
		t.Errorf("Plays not in expected order: %+v", best)
	}
	if best[0].Mode != "showcase" {
		t.Errorf("Expected showcase mode, got %q", best[0].Mode)
	}

	turns, err := store.BestTurns("map_test")
	if err != nil {
		t.Fatalf("BestTurns() failed: %v", err)
	}
	if turns != 9 {
		t.Errorf("Expected best turns 9, got %d", turns)
	}
}

func TestStoreBestTurnsNeverWon(t *testing.T) {
	store := openTestStore(t)

	turns, err := store.BestTurns("nonexistent")
	if err != nil {
		t.Fatalf("BestTurns() failed: %v", err)
	}
	if turns != 0 {
		t.Errorf("Expected 0 for a map never won, got %d", turns)
	}

	store.SavePlay(Play{MapID: "lost", Mode: "manual", Turns: 100})
	turns, _ = store.BestTurns("lost")
	if turns != 0 {
		t.Errorf("Expected 0 when only losses are stored, got %d", turns)
	}
}

func TestStoreClearPlays(t *testing.T) {
	store := openTestStore(t)

	store.SavePlay(Play{MapID: "clear", Mode: "manual", Won: true, Turns: 5})
	store.SavePlay(Play{MapID: "clear", Mode: "manual", Won: true, Turns: 6})
	store.SavePlay(Play{MapID: "keep", Mode: "manual", Won: true, Turns: 7})

	if err := store.ClearPlays("clear"); err != nil {
		t.Fatalf("ClearPlays() failed: %v", err)
	}

	plays, _ := store.BestPlays("clear", 10)
	if len(plays) != 0 {
		t.Errorf("Expected 0 plays after clear, got %d", len(plays))
	}

	plays, _ = store.BestPlays("keep", 10)
	if len(plays) != 1 {
		t.Errorf("Other maps should be unaffected, got %d plays", len(plays))
	}
}
