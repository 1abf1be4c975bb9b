package neat

import (
	"bytes"
	"fmt"

	goneat "github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

func activation(name string) (neatmath.NodeActivationType, error) {
	switch name {
	case "sigmoid":
		return neatmath.SigmoidSteepenedActivation, nil
	case "tanh":
		return neatmath.TanhActivation, nil
	case "identity":
		return neatmath.LinearActivation, nil
	default:
		return 0, fmt.Errorf("unknown activation %q", name)
	}
}

// StartGenome builds the genome every population is spawned from: a bias
// node and num_inputs sensors, each linked to every one of num_outputs
// outputs. goNEAT randomizes the weights when it spawns the population.
func StartGenome(cfg *Config) (*genetics.Genome, error) {
	act, err := activation(cfg.Genome.ActivationDefault)
	if err != nil {
		return nil, err
	}

	trait := goneat.NewTrait()
	trait.Id = 1

	var nodes []*network.NNode
	nextID := 1
	newNode := func(t network.NodeNeuronType) *network.NNode {
		n := network.NewNNode(nextID, t)
		n.ActivationType = act
		nextID++
		nodes = append(nodes, n)
		return n
	}

	sensors := []*network.NNode{newNode(network.BiasNeuron)}
	for range cfg.Genome.NumInputs {
		sensors = append(sensors, newNode(network.InputNeuron))
	}
	outputs := make([]*network.NNode, 0, cfg.Genome.NumOutputs)
	for range cfg.Genome.NumOutputs {
		outputs = append(outputs, newNode(network.OutputNeuron))
	}

	genes := make([]*genetics.Gene, 0, len(sensors)*len(outputs))
	innovation := int64(1)
	for _, out := range outputs {
		for _, in := range sensors {
			genes = append(genes, genetics.NewGeneWithTrait(trait, 0, in, out, false, innovation, 0))
			innovation++
		}
	}
	return genetics.NewGenome(1, []*goneat.Trait{trait}, nodes, genes), nil
}

// EncodeGenome serializes g in goNEAT's YAML genome encoding.
func EncodeGenome(g *genetics.Genome) ([]byte, error) {
	var buf bytes.Buffer
	w, err := genetics.NewGenomeWriter(&buf, genetics.YAMLGenomeEncoding)
	if err != nil {
		return nil, fmt.Errorf("neat: genome writer: %w", err)
	}
	if err := w.WriteGenome(g); err != nil {
		return nil, fmt.Errorf("neat: encode genome %d: %w", g.Id, err)
	}
	return buf.Bytes(), nil
}

// DecodeGenome reads a genome written by EncodeGenome.
func DecodeGenome(data []byte) (*genetics.Genome, error) {
	r, err := genetics.NewGenomeReader(bytes.NewReader(data), genetics.YAMLGenomeEncoding)
	if err != nil {
		return nil, fmt.Errorf("neat: genome reader: %w", err)
	}
	g, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("neat: decode genome: %w", err)
	}
	return g, nil
}
