// Package evolve is the population search behind the dino runner: fixed
// topology feed-forward networks whose weights are evolved by elitism,
// tournament selection, uniform crossover and sparse gaussian mutation.
package evolve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/vovakirdan/dinoevo/internal/core"
)

// Sensor and actuator counts of the dino controller.
const (
	InputCount  = 2 // vertical position, distance to the nearest obstacle
	OutputCount = 1 // jump signal
)

// Topology describes the layer sizes of a network.
type Topology struct {
	Inputs  int
	Hidden  int // 0 connects inputs straight to outputs
	Outputs int
}

// layerShapes returns (rows, cols) of every weight matrix.
func (t Topology) layerShapes() [][2]int {
	if t.Hidden == 0 {
		return [][2]int{{t.Outputs, t.Inputs}}
	}
	return [][2]int{{t.Hidden, t.Inputs}, {t.Outputs, t.Hidden}}
}

// GeneCount returns the number of weights and biases a genome carries.
func (t Topology) GeneCount() int {
	n := 0
	for _, s := range t.layerShapes() {
		n += s[0]*s[1] + s[0]
	}
	return n
}

// Activation is a scalar node transfer function.
type Activation func(float64) float64

var activations = map[string]Activation{
	"sigmoid": func(x float64) float64 {
		return 1 / (1 + math.Exp(-core.ClampF(x, -60, 60)))
	},
	"tanh": math.Tanh,
	"relu": func(x float64) float64 {
		return math.Max(0, x)
	},
	"identity": func(x float64) float64 {
		return x
	},
}

// GetActivation looks up an activation function by name.
func GetActivation(name string) (Activation, error) {
	fn, ok := activations[name]
	if !ok {
		return nil, fmt.Errorf("evolve: unsupported activation %q", name)
	}
	return fn, nil
}

type layer struct {
	w *mat.Dense
	b *mat.VecDense
}

// Network is the phenotype of a genome. The matrices view the genome's
// gene slice directly, so building a network does not copy weights.
type Network struct {
	topology Topology
	layers   []layer
	act      Activation
	scale    []float64
}

// NewNetwork builds a network over genes laid out layer by layer as
// row-major weights followed by biases.
func NewNetwork(t Topology, genes []float64, act Activation, scale []float64) (*Network, error) {
	if len(genes) != t.GeneCount() {
		return nil, fmt.Errorf("evolve: topology needs %d genes, got %d", t.GeneCount(), len(genes))
	}
	if len(scale) != 0 && len(scale) != t.Inputs {
		return nil, fmt.Errorf("evolve: input scale has %d entries for %d inputs", len(scale), t.Inputs)
	}

	n := &Network{topology: t, act: act, scale: scale}
	offset := 0
	for _, s := range t.layerShapes() {
		rows, cols := s[0], s[1]
		w := mat.NewDense(rows, cols, genes[offset:offset+rows*cols])
		offset += rows * cols
		b := mat.NewVecDense(rows, genes[offset:offset+rows])
		offset += rows
		n.layers = append(n.layers, layer{w: w, b: b})
	}
	return n, nil
}

// Activate runs a forward pass. It implements dino.DecisionFunc.
func (n *Network) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.topology.Inputs {
		return nil, fmt.Errorf("evolve: expected %d inputs, got %d", n.topology.Inputs, len(inputs))
	}

	data := make([]float64, len(inputs))
	for i, v := range inputs {
		if len(n.scale) > 0 {
			v *= n.scale[i]
		}
		data[i] = v
	}
	x := mat.NewVecDense(len(data), data)

	for _, l := range n.layers {
		var y mat.VecDense
		y.MulVec(l.w, x)
		y.AddVec(&y, l.b)
		for i := 0; i < y.Len(); i++ {
			y.SetVec(i, n.act(y.AtVec(i)))
		}
		x = &y
	}

	out := make([]float64, x.Len())
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, nil
}
