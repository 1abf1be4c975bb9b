package fitness

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/policy"
)

// Default episode limits.
const (
	DefaultMaxTurns        = 100
	DefaultRepeatWindow    = policy.DefaultTraceSize
	DefaultRepeatThreshold = 15
	DefaultNoFloorFitness  = -100
)

// Reason tells why an episode ended.
type Reason int

const (
	ReasonTimeout Reason = iota
	ReasonWon
	ReasonCycle
	ReasonNoFloor
	ReasonPolicyError
)

// String returns the string representation of a reason.
func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonWon:
		return "won"
	case ReasonCycle:
		return "cycle"
	case ReasonNoFloor:
		return "no_floor"
	case ReasonPolicyError:
		return "policy_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one episode.
type Result struct {
	Fitness float64
	Turns   int
	Won     bool
	Reason  Reason
	// Err holds the network error for ReasonPolicyError.
	Err error
}

// Evaluator plays one episode per policy on a fixed map.
type Evaluator struct {
	Map             core.GridMap
	Shaping         Shaping
	MaxTurns        int
	RepeatWindow    int
	RepeatThreshold int
	NoFloorFitness  float64
}

// NewEvaluator returns an evaluator with the default limits.
func NewEvaluator(m core.GridMap) *Evaluator {
	return &Evaluator{
		Map:             m,
		Shaping:         DefaultShaping(),
		MaxTurns:        DefaultMaxTurns,
		RepeatWindow:    DefaultRepeatWindow,
		RepeatThreshold: DefaultRepeatThreshold,
		NoFloorFitness:  DefaultNoFloorFitness,
	}
}

// Evaluate runs a full episode for net.
// The episode ends on a win, when the current state has been seen
// RepeatThreshold times within the trace window, or after MaxTurns.
// A fall out of the map ends it with NoFloorFitness. Only an invalid map
// is returned as an error.
func (e *Evaluator) Evaluate(net policy.Network) (Result, error) {
	ep, err := NewEpisode(e.Map, e.Shaping)
	if err != nil {
		return Result{}, fmt.Errorf("fitness: %w", err)
	}

	trace := policy.NewTrace(e.RepeatWindow)
	trace.Push(ep.State.Snapshot())

	for ep.Turns < e.MaxTurns {
		a, ok, err := policy.Decide(net, ep.State)
		if err != nil {
			return Result{Fitness: e.NoFloorFitness, Turns: ep.Turns, Reason: ReasonPolicyError, Err: err}, nil
		}
		if ok {
			trace.Tag(a)
			if _, err := ep.Step(a); err != nil {
				if errors.Is(err, core.ErrNoFloor) {
					return Result{Fitness: e.NoFloorFitness, Turns: ep.Turns, Reason: ReasonNoFloor}, nil
				}
				return Result{}, fmt.Errorf("fitness: %w", err)
			}
		} else {
			ep.Turns++
		}

		if ep.State.Won() {
			return Result{Fitness: ep.Fitness, Turns: ep.Turns, Won: true, Reason: ReasonWon}, nil
		}
		trace.Push(ep.State.Snapshot())
		if trace.Count(ep.State) >= e.RepeatThreshold {
			return Result{Fitness: ep.Fitness, Turns: ep.Turns, Reason: ReasonCycle}, nil
		}
	}

	return Result{Fitness: ep.Fitness, Turns: ep.Turns, Reason: ReasonTimeout}, nil
}
