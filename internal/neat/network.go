package neat

import (
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// Network runs a goNEAT phenotype as a policy network. The bias sensor is
// fed 1.0 ahead of the inputs, and the network is flushed after every
// activation so no state carries over between decisions.
type Network struct {
	net    *network.Network
	inputs int
	// steps bounds the longest sensor to output path.
	steps int
}

// NewNetwork builds the phenotype of g.
func NewNetwork(g *genetics.Genome) (*Network, error) {
	phenotype, err := g.Genesis(g.Id)
	if err != nil {
		return nil, fmt.Errorf("neat: build network for genome %d: %w", g.Id, err)
	}
	return WrapNetwork(phenotype, g), nil
}

// WrapNetwork adapts a phenotype already built from g.
func WrapNetwork(net *network.Network, g *genetics.Genome) *Network {
	n := &Network{net: net}
	for _, node := range g.Nodes {
		switch node.NeuronType {
		case network.InputNeuron:
			n.inputs++
		case network.BiasNeuron:
		default:
			n.steps++
		}
	}
	n.steps = max(n.steps, 1)
	return n
}

// Inputs is the number of values Activate expects.
func (n *Network) Inputs() int { return n.inputs }

// Activate feeds inputs forward and returns the output activations.
func (n *Network) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.inputs {
		return nil, fmt.Errorf("neat: expected %d inputs, got %d", n.inputs, len(inputs))
	}
	sensors := make([]float64, 0, len(inputs)+1)
	sensors = append(sensors, 1.0)
	sensors = append(sensors, inputs...)

	if err := n.net.LoadSensors(sensors); err != nil {
		return nil, fmt.Errorf("neat: load sensors: %w", err)
	}
	if _, err := n.net.ForwardSteps(n.steps); err != nil {
		n.net.Flush()
		return nil, fmt.Errorf("neat: activate: %w", err)
	}
	out := append([]float64(nil), n.net.ReadOutputs()...)
	if _, err := n.net.Flush(); err != nil {
		return nil, fmt.Errorf("neat: flush: %w", err)
	}
	return out, nil
}
