package core

import "fmt"

// GridMap is a level layout: rows of cells plus the player spawn.
// Cells are indexed as Cells[y][x].
type GridMap struct {
	Cells          [][]Cell
	StartX         int
	StartY         int
	StartDirection Facing
}

// Width returns the number of columns (0 for an empty map).
func (m GridMap) Width() int {
	if len(m.Cells) == 0 {
		return 0
	}
	return len(m.Cells[0])
}

// Height returns the number of rows.
func (m GridMap) Height() int {
	return len(m.Cells)
}

// Start returns the spawn coordinate.
func (m GridMap) Start() Coord {
	return C(m.StartX, m.StartY)
}

// Clone returns a deep copy of the map.
func (m GridMap) Clone() GridMap {
	m.Cells = CloneCells(m.Cells)
	return m
}

// Validate checks the grid and the spawn metadata.
func (m GridMap) Validate() error {
	if err := ValidateGrid(m.Cells); err != nil {
		return err
	}
	w, h := m.Width(), m.Height()
	if m.StartX < 0 || m.StartX >= w || m.StartY < 0 || m.StartY >= h {
		return ValidationError{
			Code:    CodeBadSpawn,
			Message: fmt.Sprintf("spawn (%d,%d) outside %dx%d grid", m.StartX, m.StartY, w, h),
		}
	}
	if m.Cells[m.StartY][m.StartX].Solid() {
		return ValidationError{
			Code:    CodeBadSpawn,
			Message: fmt.Sprintf("spawn (%d,%d) is inside a %s", m.StartX, m.StartY, m.Cells[m.StartY][m.StartX]),
		}
	}
	if !m.StartDirection.Valid() {
		return ValidationError{
			Code:    CodeBadDirection,
			Message: fmt.Sprintf("start direction %d is not -1 or 1", m.StartDirection),
		}
	}
	return nil
}

// ValidateGrid performs validation of a grid on its own.
// Checks:
//   - Grid is non-empty and rectangular
//   - Every cell is a known kind
//   - Exactly one door exists
func ValidateGrid(cells [][]Cell) error {
	if _, _, err := MapSize(cells); err != nil {
		return err
	}

	doors := 0
	for y, row := range cells {
		for x, cell := range row {
			if !cell.Valid() {
				return ValidationError{
					Code:    CodeBadCell,
					Message: fmt.Sprintf("cell (%d,%d) has unknown kind %d", x, y, uint8(cell)),
				}
			}
			if cell == CellDoor {
				doors++
			}
		}
	}

	if doors != 1 {
		return ValidationError{
			Code:    CodeDoorCount,
			Message: fmt.Sprintf("map has %d doors instead of 1", doors),
		}
	}
	return nil
}

// IsValidGrid is the non-strict form of ValidateGrid.
func IsValidGrid(cells [][]Cell) bool {
	return ValidateGrid(cells) == nil
}

// MapSize returns the grid dimensions.
// A grid whose rows differ in length is rejected.
func MapSize(cells [][]Cell) (width, height int, err error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return 0, 0, ValidationError{Code: CodeEmptyGrid, Message: "grid has no cells"}
	}
	width = len(cells[0])
	for y, row := range cells {
		if len(row) != width {
			return 0, 0, ValidationError{
				Code:    CodeNotRectangular,
				Message: fmt.Sprintf("row %d has %d cells, expected %d", y, len(row), width),
			}
		}
	}
	return width, len(cells), nil
}

// FindDoor returns the coordinate of the first door in row-major order.
func FindDoor(cells [][]Cell) (Coord, bool) {
	for y, row := range cells {
		for x, cell := range row {
			if cell == CellDoor {
				return C(x, y), true
			}
		}
	}
	return Coord{}, false
}

// CloneCells returns a deep copy of a grid.
func CloneCells(cells [][]Cell) [][]Cell {
	if cells == nil {
		return nil
	}
	out := make([][]Cell, len(cells))
	for y, row := range cells {
		out[y] = make([]Cell, len(row))
		copy(out[y], row)
	}
	return out
}

// CellsFromInts converts the integer rows of a map file into cells.
// Values outside the byte range are kept invalid so ValidateGrid reports them.
func CellsFromInts(rows [][]int) [][]Cell {
	out := make([][]Cell, len(rows))
	for y, row := range rows {
		out[y] = make([]Cell, len(row))
		for x, v := range row {
			if v < 0 || v > 255 {
				v = 255
			}
			out[y][x] = Cell(v)
		}
	}
	return out
}

// CellsToInts converts cells to the integer rows used by map files.
func CellsToInts(cells [][]Cell) [][]int {
	out := make([][]int, len(cells))
	for y, row := range cells {
		out[y] = make([]int, len(row))
		for x, c := range row {
			out[y][x] = int(c)
		}
	}
	return out
}

// cellsEqual compares two grids cell by cell.
func cellsEqual(a, b [][]Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for y := range a {
		if len(a[y]) != len(b[y]) {
			return false
		}
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				return false
			}
		}
	}
	return true
}

// ValidateMap is the strict check run before any simulation.
func ValidateMap(m GridMap) error {
	return m.Validate()
}
