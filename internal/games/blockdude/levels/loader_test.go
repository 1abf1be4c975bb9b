package levels_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels/formats"
)

func TestLoaderLoadAllSkipsInvalid(t *testing.T) {
	loader := levels.NewLoader("testdata")

	lvls, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(lvls) != 2 {
		t.Fatalf("expected 2 valid maps, got %d", len(lvls))
	}
	for i := 1; i < len(lvls); i++ {
		if lvls[i-1].ID >= lvls[i].ID {
			t.Errorf("maps not sorted: %s >= %s", lvls[i-1].ID, lvls[i].ID)
		}
	}
}

func TestLoaderScanReportsErrors(t *testing.T) {
	entries, err := levels.NewLoader("testdata").Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var bad int
	for _, e := range entries {
		if e.Err == nil {
			continue
		}
		bad++
		if !errors.Is(e.Err, core.ErrInvalidMap) {
			t.Errorf("%s: expected ErrInvalidMap, got %v", e.Path, e.Err)
		}
	}
	if bad != 1 {
		t.Errorf("expected 1 invalid map, got %d", bad)
	}
}

func TestLoaderLoadByID(t *testing.T) {
	loader := levels.NewLoader("testdata")

	testCases := []struct {
		id     string
		name   string
		width  int
		height int
	}{
		{"ledge", "Ledge", 4, 4},
		{"hop", "Hop", 6, 4},
	}

	for _, tc := range testCases {
		lvl, err := loader.LoadByID(tc.id)
		if err != nil {
			t.Fatalf("LoadByID(%q): %v", tc.id, err)
		}
		if lvl.Name != tc.name {
			t.Errorf("%s: expected name %q, got %q", tc.id, tc.name, lvl.Name)
		}
		if lvl.Width() != tc.width || lvl.Height() != tc.height {
			t.Errorf("%s: expected %dx%d, got %dx%d", tc.id, tc.width, tc.height, lvl.Width(), lvl.Height())
		}
	}

	if _, err := loader.LoadByID("missing"); err == nil {
		t.Error("expected error for unknown ID")
	}
}

func TestBundledMapsAreValid(t *testing.T) {
	ids, err := levels.Bundled().ListIDs()
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}

	want := map[string]bool{"map3": false, "map_test": false, "map_test2": false}
	for _, id := range ids {
		if _, ok := want[id]; ok {
			want[id] = true
		}
	}
	for id, found := range want {
		if !found {
			t.Errorf("bundled map %s missing", id)
		}
	}
}

func TestLoadFromDisk(t *testing.T) {
	lvl, err := levels.Load(filepath.Join("testdata", "hop.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lvl.ID != "hop" {
		t.Errorf("expected ID from file name, got %q", lvl.ID)
	}
	if _, err := lvl.NewState(); err != nil {
		t.Errorf("NewState: %v", err)
	}

	_, err = levels.Load(filepath.Join("testdata", "two_doors.json"))
	if !errors.Is(err, core.ErrInvalidMap) {
		t.Errorf("expected ErrInvalidMap, got %v", err)
	}
}

func TestEncodeJSONRoundTrip(t *testing.T) {
	lvl, err := levels.Bundled().LoadByID("map3")
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}

	data, err := formats.EncodeJSON(formats.Level{ID: lvl.ID, Name: lvl.Name, Map: lvl.Map})
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	path := filepath.Join(t.TempDir(), "copy.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := levels.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.ID != "map3" {
		t.Errorf("expected stored ID map3, got %q", back.ID)
	}
	if back.Map.StartX != lvl.Map.StartX || back.Map.StartY != lvl.Map.StartY {
		t.Error("spawn changed across encode")
	}
	a, _ := lvl.NewState()
	b, _ := back.NewState()
	if !a.Equal(b) {
		t.Error("decoded map differs from the original")
	}
}

func TestResolve(t *testing.T) {
	loader := levels.NewLoader("testdata")

	lvl, err := levels.Resolve(loader, "ledge")
	if err != nil || lvl.ID != "ledge" {
		t.Errorf("Resolve by ID: %v %q", err, lvl.ID)
	}
	lvl, err = levels.Resolve(loader, filepath.Join("testdata", "hop.json"))
	if err != nil || lvl.ID != "hop" {
		t.Errorf("Resolve by path: %v %q", err, lvl.ID)
	}
}
