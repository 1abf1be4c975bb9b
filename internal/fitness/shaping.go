// Package fitness scores Block Dude episodes played by a policy.
package fitness

import (
	"math"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

// Shaping holds the reward constants.
type Shaping struct {
	Base                float64 `yaml:"base"`
	DistanceWeight      float64 `yaml:"distance_weight"`
	WinBonus            float64 `yaml:"win_bonus"`
	MinWinBonus         float64 `yaml:"min_win_bonus"`
	HoldBonus           float64 `yaml:"hold_bonus"`
	DropReadyBonus      float64 `yaml:"drop_ready_bonus"`
	DropBlockedPenalty  float64 `yaml:"drop_blocked_penalty"`
	CarryProgressWeight float64 `yaml:"carry_progress_weight"`
	UselessStackPenalty float64 `yaml:"useless_stack_penalty"`
}

// DefaultShaping returns the standard constants.
func DefaultShaping() Shaping {
	return Shaping{
		Base:                120,
		DistanceWeight:      5,
		WinBonus:            400,
		MinWinBonus:         350,
		HoldBonus:           10,
		DropReadyBonus:      5,
		DropBlockedPenalty:  5,
		CarryProgressWeight: 5,
		UselessStackPenalty: 15,
	}
}

// AdjustedDistance is the Manhattan distance from the player to the door.
// While a block is carried and the door lies above, the vertical part is
// measured from the carried block's row.
func AdjustedDistance(s *core.State) int {
	p, door := s.Player(), s.DoorCoords()
	y := p.Y
	if s.Holding() && door.Y < p.Y {
		y = p.Y - 1
	}
	return abs(p.X-door.X) + abs(y-door.Y)
}

// Score computes the fitness of a state after turns moves.
// carry is the cumulative carry-progress reward of the episode.
func (sh Shaping) Score(s *core.State, turns int, carry float64) float64 {
	score := sh.Base - sh.DistanceWeight*float64(AdjustedDistance(s))
	if s.Won() {
		score += math.Max(sh.WinBonus-float64(turns), sh.MinWinBonus)
	}
	if s.Holding() {
		score += sh.HoldBonus
		if s.Legal(core.ActionDown) {
			score += sh.DropReadyBonus
		} else {
			score -= sh.DropBlockedPenalty
		}
	}
	return score + carry
}

// dropReward is the carry-progress reward for releasing a block in column
// dropX that was lifted in column pickupX. A block that lands on another
// block without getting closer to the door is penalized instead.
func (sh Shaping) dropReward(pickupX, dropX, doorX int, onBlock bool) float64 {
	progress := abs(pickupX-doorX) - abs(dropX-doorX)
	if onBlock && progress <= 0 {
		return -sh.UselessStackPenalty
	}
	return sh.CarryProgressWeight * float64(progress)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
