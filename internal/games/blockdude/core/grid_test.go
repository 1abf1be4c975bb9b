package core_test

import (
	"errors"
	"testing"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

func TestValidateGridDoorCount(t *testing.T) {
	testCases := []struct {
		name  string
		cells [][]core.Cell
		valid bool
	}{
		{"no door", [][]core.Cell{{0, 0, 0}, {1, 1, 1}}, false},
		{"one door", [][]core.Cell{{0, 0, 3}, {1, 1, 1}}, true},
		{"two doors", [][]core.Cell{{3, 0, 3}, {1, 1, 1}}, false},
		{"three doors", [][]core.Cell{{3, 3, 3}, {1, 1, 1}}, false},
		{"single cell door", [][]core.Cell{{3}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := core.IsValidGrid(tc.cells); got != tc.valid {
				t.Errorf("IsValidGrid: expected %v, got %v", tc.valid, got)
			}
			err := core.ValidateGrid(tc.cells)
			if tc.valid && err != nil {
				t.Errorf("ValidateGrid: unexpected error %v", err)
			}
			if !tc.valid {
				if !errors.Is(err, core.ErrInvalidMap) {
					t.Fatalf("ValidateGrid: expected ErrInvalidMap, got %v", err)
				}
				var verr core.ValidationError
				if !errors.As(err, &verr) || verr.Code != core.CodeDoorCount {
					t.Errorf("expected code %s, got %v", core.CodeDoorCount, err)
				}
			}
		})
	}
}

func TestValidateGridShape(t *testing.T) {
	testCases := []struct {
		name  string
		cells [][]core.Cell
		code  string
	}{
		{"nil", nil, core.CodeEmptyGrid},
		{"empty row", [][]core.Cell{{}}, core.CodeEmptyGrid},
		{"ragged", [][]core.Cell{{0, 3}, {1}}, core.CodeNotRectangular},
		{"unknown kind", [][]core.Cell{{0, 3, 7}}, core.CodeBadCell},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := core.ValidateGrid(tc.cells)
			var verr core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, verr.Code)
			}
		})
	}
}

func TestMapSize(t *testing.T) {
	cells := [][]core.Cell{
		{0, 0, 0, 0},
		{0, 0, 0, 3},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{1, 1, 1, 1},
	}
	w, h, err := core.MapSize(cells)
	if err != nil {
		t.Fatalf("MapSize: %v", err)
	}
	if w != 4 || h != 5 {
		t.Errorf("expected 4x5, got %dx%d", w, h)
	}
}

func TestValidateMapSpawn(t *testing.T) {
	cells := [][]core.Cell{
		{0, 0, 3},
		{1, 1, 1},
	}

	testCases := []struct {
		name string
		m    core.GridMap
		code string
	}{
		{"ok", core.GridMap{Cells: cells, StartX: 0, StartY: 0, StartDirection: core.FacingRight}, ""},
		{"outside", core.GridMap{Cells: cells, StartX: 3, StartY: 0, StartDirection: core.FacingRight}, core.CodeBadSpawn},
		{"in brick", core.GridMap{Cells: cells, StartX: 0, StartY: 1, StartDirection: core.FacingRight}, core.CodeBadSpawn},
		{"zero direction", core.GridMap{Cells: cells, StartX: 0, StartY: 0}, core.CodeBadDirection},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := core.ValidateMap(tc.m)
			if tc.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var verr core.ValidationError
			if !errors.As(err, &verr) || verr.Code != tc.code {
				t.Errorf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestCellsIntRoundTrip(t *testing.T) {
	rows := [][]int{{0, 1, 2, 3}, {-1, 300, 0, 0}}
	cells := core.CellsFromInts(rows)

	if cells[0][3] != core.CellDoor {
		t.Errorf("expected door, got %v", cells[0][3])
	}
	if cells[1][0].Valid() || cells[1][1].Valid() {
		t.Error("out of range values should convert to invalid cells")
	}

	back := core.CellsToInts(cells[:1])
	for x, v := range rows[0] {
		if back[0][x] != v {
			t.Errorf("at %d: expected %d, got %d", x, v, back[0][x])
		}
	}
}

func TestGridMapCloneIsDeep(t *testing.T) {
	m := core.GridMap{Cells: [][]core.Cell{{0, 3}}, StartDirection: core.FacingRight}
	c := m.Clone()
	c.Cells[0][0] = core.CellBrick
	if m.Cells[0][0] != core.CellEmpty {
		t.Error("clone shares cells with the original")
	}
}
