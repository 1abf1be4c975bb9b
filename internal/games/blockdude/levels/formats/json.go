// Package formats provides pluggable map file format parsers.
package formats

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

// FileMap is the on-disk structure shared by every map format.
// Cells are plain integers: 0=Empty, 1=Brick, 2=Block, 3=Door.
type FileMap struct {
	ID             string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string  `json:"name,omitempty" yaml:"name,omitempty"`
	Map            [][]int `json:"map" yaml:"map"`
	StartX         int     `json:"start_x" yaml:"start_x"`
	StartY         int     `json:"start_y" yaml:"start_y"`
	StartDirection int     `json:"start_direction" yaml:"start_direction"`
}

// Level represents a parsed map ready for use.
type Level struct {
	ID   string
	Name string
	Map  core.GridMap
}

// ParseJSON parses and validates a JSON map file.
func ParseJSON(data []byte) (Level, error) {
	var fm FileMap
	if err := json.Unmarshal(data, &fm); err != nil {
		return Level{}, core.ParseError(fmt.Errorf("json unmarshal: %w", err))
	}
	return fm.toLevel()
}

// EncodeJSON writes a level in the JSON map format.
func EncodeJSON(l Level) ([]byte, error) {
	data, err := json.MarshalIndent(fromLevel(l), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return append(data, '\n'), nil
}

func (fm FileMap) toLevel() (Level, error) {
	m := core.GridMap{
		Cells:          core.CellsFromInts(fm.Map),
		StartX:         fm.StartX,
		StartY:         fm.StartY,
		StartDirection: core.Facing(fm.StartDirection),
	}
	if err := m.Validate(); err != nil {
		return Level{}, err
	}
	return Level{ID: fm.ID, Name: fm.Name, Map: m}, nil
}

func fromLevel(l Level) FileMap {
	return FileMap{
		ID:             l.ID,
		Name:           l.Name,
		Map:            core.CellsToInts(l.Map.Cells),
		StartX:         l.Map.StartX,
		StartY:         l.Map.StartY,
		StartDirection: int(l.Map.StartDirection),
	}
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".json", ".yaml", ".yml"}
}
