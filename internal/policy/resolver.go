// Package policy turns network outputs into Block Dude actions.
package policy

import (
	"fmt"
	"math"

	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

// Network is a compiled policy: one preference score per action,
// computed from a flattened observation.
type Network interface {
	Activate(inputs []float64) ([]float64, error)
}

// Constant is a Network that ignores its inputs. Useful for scripted play.
type Constant []float64

// Activate returns a copy of the constant outputs.
func (c Constant) Activate([]float64) ([]float64, error) {
	out := make([]float64, len(c))
	copy(out, c)
	return out, nil
}

// Legality is implemented by *core.State.
type Legality interface {
	LegalActions() [core.ActionCount]bool
}

// Scores holds one preference per action, indexed by ordinal.
type Scores [core.ActionCount]float64

// ScoresFrom maps network outputs to actions by position.
// Missing or NaN outputs never win.
func ScoresFrom(outputs []float64) Scores {
	var s Scores
	for i := range s {
		s[i] = math.Inf(-1)
		if i < len(outputs) && !math.IsNaN(outputs[i]) {
			s[i] = outputs[i]
		}
	}
	return s
}

// Resolve picks the legal action with the highest score.
// Ties go to the lower ordinal: Down, Up, Left, Right.
// It reports false when no action is legal.
func Resolve(state Legality, scores Scores) (core.Action, bool) {
	return resolve(state.LegalActions(), scores)
}

// ResolveAvoiding is Resolve without the actions already taken from an
// identical state in the trace. When that leaves nothing, it falls back
// to the unfiltered choice.
func ResolveAvoiding(state *core.State, scores Scores, trace *Trace) (core.Action, bool) {
	legal := state.LegalActions()
	if trace != nil {
		filtered := legal
		taken := trace.TakenFrom(state)
		for i := range filtered {
			filtered[i] = filtered[i] && !taken[i]
		}
		if a, ok := resolve(filtered, scores); ok {
			return a, true
		}
	}
	return resolve(legal, scores)
}

func resolve(legal [core.ActionCount]bool, scores Scores) (core.Action, bool) {
	var (
		best  core.Action
		found bool
	)
	for _, a := range core.Actions {
		if !legal[a] {
			continue
		}
		if !found || scores[a] > scores[best] {
			best, found = a, true
		}
	}
	return best, found
}

// Decide observes the state, runs the network and resolves one action.
func Decide(net Network, state *core.State) (core.Action, bool, error) {
	scores, err := Evaluate(net, state)
	if err != nil {
		return 0, false, err
	}
	a, ok := Resolve(state, scores)
	return a, ok, nil
}

// DecideAvoiding is Decide with duplicate avoidance over the trace.
func DecideAvoiding(net Network, state *core.State, trace *Trace) (core.Action, bool, error) {
	scores, err := Evaluate(net, state)
	if err != nil {
		return 0, false, err
	}
	a, ok := ResolveAvoiding(state, scores, trace)
	return a, ok, nil
}

// Evaluate runs the network on the state observation.
func Evaluate(net Network, state *core.State) (Scores, error) {
	out, err := net.Activate(state.Observation())
	if err != nil {
		return Scores{}, fmt.Errorf("policy: activate: %w", err)
	}
	return ScoresFrom(out), nil
}
