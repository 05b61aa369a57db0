package evolve

import (
	"fmt"
	"math"
	"math/rand"
)

// MutationParams controls sparse gaussian mutation.
type MutationParams struct {
	Rate     float64 // probability each gene mutates
	Sigma    float64 // standard deviation of a normal perturbation
	BigRate  float64 // probability a mutation is a large one
	BigSigma float64 // standard deviation of a large perturbation
}

// Mutate perturbs genes in place and returns the mean absolute delta of the
// applied mutations, or zero when none fired.
func Mutate(rng *rand.Rand, genes []float64, p MutationParams) float64 {
	var total float64
	var count int
	for i := range genes {
		if rng.Float64() >= p.Rate {
			continue
		}
		var delta float64
		if rng.Float64() < p.BigRate {
			delta = rng.NormFloat64() * p.BigSigma
		} else {
			delta = rng.NormFloat64() * p.Sigma
		}
		genes[i] += delta
		total += math.Abs(delta)
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// Crossover builds a child taking each gene from either parent with equal
// probability.
func Crossover(rng *rand.Rand, a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("evolve: crossover of %d and %d genes", len(a), len(b))
	}
	child := make([]float64, len(a))
	for i := range child {
		if rng.Intn(2) == 0 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child, nil
}
