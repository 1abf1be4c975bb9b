package core

// MaxFallSteps bounds a single fall of the player or of a dropped block.
const MaxFallSteps = 9999

// State is the mutable simulation state of one episode.
// It owns its grid; Legal and Apply are the only ways to change it.
type State struct {
	grid      [][]Cell
	width     int
	height    int
	player    Coord
	direction Facing
	holding   bool
	door      Coord
}

// NewState builds a state at the map spawn.
// With copyGrid set the map cells are deep-copied so the episode
// never mutates the caller's map.
func NewState(m GridMap, copyGrid bool) (*State, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	cells := m.Cells
	if copyGrid {
		cells = CloneCells(cells)
	}
	door, _ := FindDoor(cells)
	return &State{
		grid:      cells,
		width:     m.Width(),
		height:    m.Height(),
		player:    m.Start(),
		direction: m.StartDirection,
		door:      door,
	}, nil
}

// Player returns the player position.
func (s *State) Player() Coord { return s.player }

// Direction returns the facing direction.
func (s *State) Direction() Facing { return s.direction }

// Holding reports whether the player carries a block.
func (s *State) Holding() bool { return s.holding }

// DoorCoords returns the cached door position.
func (s *State) DoorCoords() Coord { return s.door }

// Width returns the grid width.
func (s *State) Width() int { return s.width }

// Height returns the grid height.
func (s *State) Height() int { return s.height }

// Won reports whether the player stands on the door.
func (s *State) Won() bool {
	return s.player == s.door
}

// Cell returns the cell at (x, y). Cells beside or above the grid read
// as Brick. Cells below the grid read as Empty: there is no floor there.
func (s *State) Cell(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 {
		return CellBrick
	}
	if y >= s.height {
		return CellEmpty
	}
	return s.grid[y][x]
}

// Cells returns a copy of the grid.
func (s *State) Cells() [][]Cell {
	return CloneCells(s.grid)
}

func (s *State) front() Cell {
	return s.Cell(s.player.X+int(s.direction), s.player.Y)
}

func (s *State) aboveFront() Cell {
	return s.Cell(s.player.X+int(s.direction), s.player.Y-1)
}

func (s *State) above() Cell {
	return s.Cell(s.player.X, s.player.Y-1)
}

// Clone returns a deep copy that can be advanced independently.
func (s *State) Clone() *State {
	c := *s
	c.grid = CloneCells(s.grid)
	return &c
}

// Equal reports whether two states have the same grid, player position,
// direction and holding flag.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.player == other.player &&
		s.direction == other.direction &&
		s.holding == other.holding &&
		cellsEqual(s.grid, other.grid)
}

// Snapshot is an immutable copy of a state, used by episode traces.
type Snapshot struct {
	Cells     [][]Cell
	Player    Coord
	Direction Facing
	Holding   bool
}

// Snapshot captures the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Cells:     CloneCells(s.grid),
		Player:    s.player,
		Direction: s.direction,
		Holding:   s.holding,
	}
}

// Equal compares two snapshots with the same rules as State.Equal.
func (a Snapshot) Equal(b Snapshot) bool {
	return a.Player == b.Player &&
		a.Direction == b.Direction &&
		a.Holding == b.Holding &&
		cellsEqual(a.Cells, b.Cells)
}

// Matches reports whether the snapshot equals the live state.
func (a Snapshot) Matches(s *State) bool {
	return a.Player == s.player &&
		a.Direction == s.direction &&
		a.Holding == s.holding &&
		cellsEqual(a.Cells, s.grid)
}
