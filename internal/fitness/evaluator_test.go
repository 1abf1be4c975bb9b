package fitness

import (
	"errors"
	"testing"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/policy"
)

func gridMap(rows [][]int, x, y int, dir core.Facing) core.GridMap {
	return core.GridMap{
		Cells:          core.CellsFromInts(rows),
		StartX:         x,
		StartY:         y,
		StartDirection: dir,
	}
}

var (
	alwaysLeft  = policy.Constant{0, 0, 1, 0}
	alwaysRight = policy.Constant{0, 0, 0, 1}
	alwaysUp    = policy.Constant{0, 1, 0, 0}
)

func TestEvaluateOneUpWin(t *testing.T) {
	e := NewEvaluator(gridMap([][]int{
		{0, 3, 0},
		{0, 2, 0},
		{1, 1, 1},
	}, 0, 1, core.FacingRight))

	res, err := e.Evaluate(alwaysUp)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Won || res.Reason != ReasonWon {
		t.Fatalf("expected a win, got %+v", res)
	}
	if res.Turns != 1 {
		t.Errorf("expected 1 turn, got %d", res.Turns)
	}
	if want := 120.0 + 399; res.Fitness != want {
		t.Errorf("expected fitness %v, got %v", want, res.Fitness)
	}
}

func TestEvaluateCycleAtThreshold(t *testing.T) {
	// Facing a wall and always turning into it never changes the state.
	e := NewEvaluator(gridMap([][]int{
		{0, 0, 0, 3},
		{1, 1, 1, 1},
	}, 0, 0, core.FacingLeft))

	res, err := e.Evaluate(alwaysLeft)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Reason != ReasonCycle {
		t.Fatalf("expected cycle, got %v", res.Reason)
	}
	// The initial state plus 14 repeats fill the 15-state window.
	if res.Turns != 14 {
		t.Errorf("expected 14 turns, got %d", res.Turns)
	}
	if want := 120.0 - 5*3; res.Fitness != want {
		t.Errorf("expected fitness from the last turn %v, got %v", want, res.Fitness)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	e := NewEvaluator(gridMap([][]int{
		{0, 0, 0, 3},
		{1, 1, 1, 1},
	}, 0, 0, core.FacingLeft))
	e.MaxTurns = 5

	res, err := e.Evaluate(alwaysLeft)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Reason != ReasonTimeout || res.Turns != 5 {
		t.Errorf("expected timeout after 5 turns, got %v after %d", res.Reason, res.Turns)
	}
}

func TestEvaluateNoFloor(t *testing.T) {
	e := NewEvaluator(gridMap([][]int{
		{0, 0, 3},
		{1, 0, 1},
	}, 0, 0, core.FacingRight))

	res, err := e.Evaluate(alwaysRight)
	if err != nil {
		t.Fatalf("NoFloor must not be returned as an error: %v", err)
	}
	if res.Reason != ReasonNoFloor {
		t.Errorf("expected no_floor, got %v", res.Reason)
	}
	if res.Fitness != DefaultNoFloorFitness {
		t.Errorf("expected fitness %v, got %v", float64(DefaultNoFloorFitness), res.Fitness)
	}
}

type shortNet struct{}

func (shortNet) Activate([]float64) ([]float64, error) {
	return nil, errors.New("input size mismatch")
}

func TestEvaluatePolicyError(t *testing.T) {
	e := NewEvaluator(gridMap([][]int{{0, 3}, {1, 1}}, 0, 0, core.FacingRight))

	res, err := e.Evaluate(shortNet{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Reason != ReasonPolicyError || res.Err == nil {
		t.Errorf("expected policy error result, got %+v", res)
	}
}

func TestEvaluateInvalidMap(t *testing.T) {
	e := NewEvaluator(gridMap([][]int{{0, 0}}, 0, 0, core.FacingRight))
	if _, err := e.Evaluate(alwaysLeft); err == nil {
		t.Error("expected error for a map without a door")
	}
}

func TestEpisodeCarryProgress(t *testing.T) {
	ep, err := NewEpisode(gridMap([][]int{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 2, 0, 0, 3},
		{1, 1, 1, 0, 1},
		{1, 1, 1, 0, 1},
		{1, 1, 1, 1, 1},
	}, 0, 2, core.FacingRight), DefaultShaping())
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}

	for _, a := range []core.Action{core.ActionDown, core.ActionRight, core.ActionRight, core.ActionDown} {
		if _, err := ep.Step(a); err != nil {
			t.Fatalf("Step(%s): %v", a, err)
		}
	}

	// Lifted in column 1, dropped in column 3, door in column 4.
	if ep.Carry != 10 {
		t.Errorf("expected carry reward 10, got %v", ep.Carry)
	}
	if want := 120.0 - 5*2 + 10; ep.Fitness != want {
		t.Errorf("expected fitness %v, got %v", want, ep.Fitness)
	}
	if ep.Turns != 4 {
		t.Errorf("expected 4 turns, got %d", ep.Turns)
	}
}

func TestEpisodeUselessStack(t *testing.T) {
	ep, err := NewEpisode(gridMap([][]int{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{2, 0, 2, 0, 3},
		{1, 1, 1, 1, 1},
	}, 1, 2, core.FacingRight), DefaultShaping())
	if err != nil {
		t.Fatalf("NewEpisode: %v", err)
	}

	if _, err := ep.Step(core.ActionDown); err != nil {
		t.Fatalf("pick up: %v", err)
	}
	// Holding with a free drop spot: hold bonus plus drop-ready bonus.
	if want := 120.0 - 5*3 + 10 + 5; ep.Fitness != want {
		t.Errorf("expected holding fitness %v, got %v", want, ep.Fitness)
	}

	if _, err := ep.Step(core.ActionLeft); err != nil {
		t.Fatalf("turn: %v", err)
	}
	if _, err := ep.Step(core.ActionDown); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if ep.State.Cell(0, 1) != core.CellBlock {
		t.Fatalf("expected block stacked at (0,1), got %v", ep.State.Cell(0, 1))
	}
	if ep.Carry != -15 {
		t.Errorf("expected useless stack penalty -15, got %v", ep.Carry)
	}
}

func TestScoreWinBonusFloor(t *testing.T) {
	s, err := core.NewState(gridMap([][]int{{0, 3}, {1, 1}}, 1, 0, core.FacingRight), true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	sh := DefaultShaping()

	if got := sh.Score(s, 10, 0); got != 120+390 {
		t.Errorf("turn 10: expected 510, got %v", got)
	}
	if got := sh.Score(s, 100, 0); got != 120+350 {
		t.Errorf("turn 100: expected 470, got %v", got)
	}
}

func TestAdjustedDistanceWhileCarrying(t *testing.T) {
	s, err := core.NewState(gridMap([][]int{
		{0, 0, 0, 0, 3},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 1},
		{0, 2, 0, 0, 1},
		{1, 1, 1, 1, 1},
	}, 0, 3, core.FacingRight), true)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	if got := AdjustedDistance(s); got != 4+3 {
		t.Errorf("empty handed: expected 7, got %d", got)
	}
	if _, err := s.Apply(core.ActionDown); err != nil {
		t.Fatalf("pick up: %v", err)
	}
	if got := AdjustedDistance(s); got != 4+2 {
		t.Errorf("carrying: expected 6, got %d", got)
	}
}
