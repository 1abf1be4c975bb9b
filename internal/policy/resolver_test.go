package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

func stateFrom(t *testing.T, rows [][]int, x, y int, dir core.Facing) *core.State {
	t.Helper()
	s, err := core.NewState(core.GridMap{
		Cells:          core.CellsFromInts(rows),
		StartX:         x,
		StartY:         y,
		StartDirection: dir,
	}, true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

// flat has only Left and Right legal from its spawn.
var flat = [][]int{
	{0, 0, 0, 3},
	{1, 1, 1, 1},
}

func TestResolvePicksHighestLegal(t *testing.T) {
	testCases := []struct {
		name    string
		outputs []float64
		want    core.Action
	}{
		{"right preferred", []float64{0, 0, 0.2, 0.9}, core.ActionRight},
		{"illegal best skipped", []float64{5, 4, 0.1, 0.2}, core.ActionRight},
		{"tie goes to left", []float64{0, 0, 1, 1}, core.ActionLeft},
		{"missing outputs", nil, core.ActionLeft},
		{"nan loses", []float64{0, 0, math.NaN(), -3}, core.ActionRight},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := stateFrom(t, flat, 1, 0, core.FacingRight)
			got, ok := Resolve(s, ScoresFrom(tc.outputs))
			if !ok {
				t.Fatal("expected a legal action")
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestResolveTieOrder(t *testing.T) {
	// Every action is legal here: block in front with room above.
	s := stateFrom(t, [][]int{
		{0, 0, 0},
		{0, 2, 3},
		{1, 1, 1},
	}, 0, 1, core.FacingRight)

	legal := s.LegalActions()
	for _, a := range core.Actions {
		if !legal[a] {
			t.Fatalf("%s should be legal", a)
		}
	}

	got, _ := Resolve(s, ScoresFrom([]float64{1, 1, 1, 1}))
	if got != core.ActionDown {
		t.Errorf("expected Down on a full tie, got %s", got)
	}
	got, _ = Resolve(s, ScoresFrom([]float64{0, 1, 1, 1}))
	if got != core.ActionUp {
		t.Errorf("expected Up, got %s", got)
	}
}

func TestDecideOneUpWins(t *testing.T) {
	s := stateFrom(t, [][]int{
		{0, 3, 0},
		{0, 2, 0},
		{1, 1, 1},
	}, 0, 1, core.FacingRight)

	a, ok, err := Decide(Constant{0, 1, 0, 0}, s)
	if err != nil || !ok {
		t.Fatalf("Decide: %v %v", ok, err)
	}
	if a != core.ActionUp {
		t.Fatalf("expected Up, got %s", a)
	}
	if _, err := s.Apply(a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !s.Won() {
		t.Error("expected the door to be reached in one Up")
	}
}

type failingNet struct{}

func (failingNet) Activate([]float64) ([]float64, error) {
	return nil, errors.New("boom")
}

func TestDecidePropagatesNetworkError(t *testing.T) {
	s := stateFrom(t, flat, 1, 0, core.FacingRight)
	if _, _, err := Decide(failingNet{}, s); err == nil {
		t.Error("expected error from network")
	}
}

func TestResolveAvoiding(t *testing.T) {
	s := stateFrom(t, flat, 1, 0, core.FacingRight)
	scores := ScoresFrom([]float64{0, 0, 0, 1})

	trace := NewTrace(DefaultTraceSize)
	trace.Push(s.Snapshot())
	trace.Tag(core.ActionRight)

	got, _ := ResolveAvoiding(s, scores, trace)
	if got != core.ActionLeft {
		t.Errorf("expected Left once Right was taken here, got %s", got)
	}

	trace.Push(s.Snapshot())
	trace.Tag(core.ActionLeft)
	got, _ = ResolveAvoiding(s, scores, trace)
	if got != core.ActionRight {
		t.Errorf("expected fallback to Right, got %s", got)
	}

	// A different state is not affected by the history.
	other := stateFrom(t, flat, 2, 0, core.FacingRight)
	got, _ = ResolveAvoiding(other, scores, trace)
	if got != core.ActionRight {
		t.Errorf("expected Right for an unseen state, got %s", got)
	}
}
