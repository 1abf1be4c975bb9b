package core

import "strings"

// ObservationSize is the length of Observation for a w x h grid.
func ObservationSize(width, height int) int {
	return width*height + 4
}

// Observation flattens the state for a policy network:
// grid cells in row-major order, then x, y, direction and holding (0 or 1).
func (s *State) Observation() []float64 {
	out := make([]float64, 0, ObservationSize(s.width, s.height))
	for _, row := range s.grid {
		for _, c := range row {
			out = append(out, float64(c))
		}
	}
	holding := 0.0
	if s.holding {
		holding = 1
	}
	return append(out,
		float64(s.player.X),
		float64(s.player.Y),
		float64(s.direction),
		holding,
	)
}

// asciiCells maps cell kinds to terminal glyphs.
var asciiCells = [cellCount]byte{' ', '-', 'O', 'D'}

// RenderASCII draws the grid with the player overlaid.
// The carried block is drawn in the cell above the player.
func (s *State) RenderASCII() string {
	var b strings.Builder
	for y, row := range s.grid {
		line := make([]byte, len(row))
		for x, c := range row {
			if c.Valid() {
				line[x] = asciiCells[c]
			} else {
				line[x] = '?'
			}
		}
		if s.holding && y == s.player.Y-1 {
			line[s.player.X] = asciiCells[CellBlock]
		}
		if y == s.player.Y {
			if s.direction == FacingLeft {
				line[s.player.X] = '<'
			} else {
				line[s.player.X] = '>'
			}
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}
