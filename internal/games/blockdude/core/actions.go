package core

import "fmt"

// actionRule pairs the legality predicate of an action with its transition.
type actionRule struct {
	legal func(*State) bool
	apply func(*State) error
}

// rules is indexed by Action ordinal.
var rules = [ActionCount]actionRule{
	ActionDown:  {legal: (*State).downLegal, apply: (*State).down},
	ActionUp:    {legal: (*State).upLegal, apply: (*State).up},
	ActionLeft:  {legal: alwaysLegal, apply: func(s *State) error { return s.walk(FacingLeft) }},
	ActionRight: {legal: alwaysLegal, apply: func(s *State) error { return s.walk(FacingRight) }},
}

func alwaysLegal(*State) bool { return true }

// Legal reports whether a can be applied in the current state.
func (s *State) Legal(a Action) bool {
	if int(a) >= ActionCount {
		return false
	}
	return rules[a].legal(s)
}

// LegalActions returns the legality of every action, indexed by ordinal.
func (s *State) LegalActions() [ActionCount]bool {
	var out [ActionCount]bool
	for _, a := range Actions {
		out[a] = rules[a].legal(s)
	}
	return out
}

// Apply performs a if it is legal and reports whether it was applied.
// Illegal actions leave the state untouched. ErrNoFloor is returned,
// again without mutation, when a fall would leave the grid.
func (s *State) Apply(a Action) (bool, error) {
	if !s.Legal(a) {
		return false, nil
	}
	if err := rules[a].apply(s); err != nil {
		return false, fmt.Errorf("apply %s: %w", a, err)
	}
	return true, nil
}

func (s *State) upLegal() bool {
	return s.front().Solid() && !s.aboveFront().Solid()
}

func (s *State) up() error {
	s.player = s.player.Add(int(s.direction), -1)
	return nil
}

// walk turns the player to dir and steps forward when the way is free.
// A carried block that no longer fits above the player is dropped from
// the cell the player left. Gravity applies only after an actual step.
func (s *State) walk(dir Facing) error {
	from := s.player
	to := from.Add(int(dir), 0)
	if s.Cell(to.X, to.Y).Solid() {
		s.direction = dir
		return nil
	}

	forceDrop := s.holding && s.Cell(to.X, to.Y-1) != CellEmpty
	var dropAt Coord
	if forceDrop {
		var err error
		if dropAt, err = s.dropLanding(from); err != nil {
			return err
		}
	}
	landing, err := s.fallLanding(to)
	if err != nil {
		return err
	}

	s.direction = dir
	if forceDrop {
		s.holding = false
		s.grid[dropAt.Y][dropAt.X] = CellBlock
	}
	s.player = landing
	return nil
}

func (s *State) downLegal() bool {
	if s.holding {
		return s.aboveFront() == CellEmpty
	}
	return s.front() == CellBlock &&
		s.aboveFront() == CellEmpty &&
		s.above() == CellEmpty
}

func (s *State) down() error {
	front := s.player.Add(int(s.direction), 0)
	if !s.holding {
		s.grid[front.Y][front.X] = CellEmpty
		s.holding = true
		return nil
	}
	at, err := s.dropLanding(front.Add(0, -1))
	if err != nil {
		return err
	}
	s.grid[at.Y][at.X] = CellBlock
	s.holding = false
	return nil
}

// fallLanding returns where the player comes to rest when falling from p.
func (s *State) fallLanding(p Coord) (Coord, error) {
	for steps := 0; !s.Cell(p.X, p.Y+1).Solid(); steps++ {
		p.Y++
		if p.Y >= s.height || steps >= MaxFallSteps {
			return Coord{}, ErrNoFloor
		}
	}
	return p, nil
}

// dropLanding returns where a block released at p comes to rest.
// A block keeps falling only through empty cells, so it settles on a door.
func (s *State) dropLanding(p Coord) (Coord, error) {
	for steps := 0; s.Cell(p.X, p.Y+1) == CellEmpty; steps++ {
		p.Y++
		if p.Y >= s.height || steps >= MaxFallSteps {
			return Coord{}, ErrNoFloor
		}
	}
	return p, nil
}
