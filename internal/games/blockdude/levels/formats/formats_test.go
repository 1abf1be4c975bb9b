package formats

import (
	"errors"
	"testing"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`{"map": [[0, 2, 3], [1, 1, 1]], "start_x": 0, "start_y": 0, "start_direction": -1}`)

	lvl, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if lvl.Map.Width() != 3 || lvl.Map.Height() != 2 {
		t.Errorf("expected 3x2, got %dx%d", lvl.Map.Width(), lvl.Map.Height())
	}
	if lvl.Map.StartDirection != core.FacingLeft {
		t.Errorf("expected facing left, got %d", lvl.Map.StartDirection)
	}
	if lvl.Map.Cells[0][2] != core.CellDoor {
		t.Errorf("expected door at (2,0), got %v", lvl.Map.Cells[0][2])
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		parse func([]byte) (Level, error)
		data  string
		code  string
	}{
		{"json syntax", ParseJSON, `{"map": [[0, 3]`, core.CodeParse},
		{"json no door", ParseJSON, `{"map": [[0, 0]], "start_direction": 1}`, core.CodeDoorCount},
		{"json bad cell", ParseJSON, `{"map": [[0, 3, 9]], "start_direction": 1}`, core.CodeBadCell},
		{"yaml syntax", ParseYAML, "map: [[0, 3]\n", core.CodeParse},
		{"yaml ragged", ParseYAML, "map:\n  - [0, 3]\n  - [1]\nstart_direction: 1\n", core.CodeNotRectangular},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.parse([]byte(tc.data))
			if !errors.Is(err, core.ErrInvalidMap) {
				t.Fatalf("expected ErrInvalidMap, got %v", err)
			}
			var verr core.ValidationError
			if !errors.As(err, &verr) || verr.Code != tc.code {
				t.Errorf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	in := Level{
		ID:   "tiny",
		Name: "Tiny",
		Map: core.GridMap{
			Cells:          [][]core.Cell{{0, 3}, {1, 1}},
			StartDirection: core.FacingRight,
		},
	}
	data, err := EncodeYAML(in)
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	out, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if out.ID != "tiny" || out.Name != "Tiny" {
		t.Errorf("metadata lost: %+v", out)
	}
	if out.Map.Cells[0][1] != core.CellDoor {
		t.Error("door lost across YAML encode")
	}
}
