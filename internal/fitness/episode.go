package fitness

import "github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"

// Episode is one run of the simulation with running fitness bookkeeping.
// It owns a private copy of the map.
type Episode struct {
	State   *core.State
	Turns   int
	Carry   float64
	Fitness float64

	shaping Shaping
	pickupX int
}

// NewEpisode starts an episode at the map spawn.
func NewEpisode(m core.GridMap, sh Shaping) (*Episode, error) {
	s, err := core.NewState(m, true)
	if err != nil {
		return nil, err
	}
	ep := &Episode{State: s, shaping: sh}
	ep.Fitness = sh.Score(s, 0, 0)
	return ep, nil
}

// Step applies a, counts the turn and recomputes the fitness.
// On ErrNoFloor the state and fitness are left as they were.
func (ep *Episode) Step(a core.Action) (bool, error) {
	s := ep.State
	wasHolding := s.Holding()
	front := s.Player().X + int(s.Direction())
	applied, err := s.Apply(a)
	if err != nil {
		return false, err
	}
	ep.Turns++

	if applied && a == core.ActionDown {
		switch {
		case !wasHolding && s.Holding():
			ep.pickupX = front
		case wasHolding && !s.Holding():
			ep.Carry += ep.shaping.dropReward(ep.pickupX, front, s.DoorCoords().X, ep.landedOnBlock(front))
		}
	}

	ep.Fitness = ep.shaping.Score(s, ep.Turns, ep.Carry)
	return applied, nil
}

// landedOnBlock reports whether the block just dropped in column x rests
// on another block.
func (ep *Episode) landedOnBlock(x int) bool {
	s := ep.State
	y := s.Player().Y - 1
	for y < s.Height() && s.Cell(x, y) == core.CellEmpty {
		y++
	}
	return s.Cell(x, y+1) == core.CellBlock
}
