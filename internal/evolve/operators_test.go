package evolve

import (
	"math/rand"
	"testing"
)

func TestMutate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	genes := []float64{1, 2, 3, 4}
	if d := Mutate(rng, genes, MutationParams{Rate: 0, Sigma: 1}); d != 0 {
		t.Errorf("Mutate() with zero rate = %v, want 0", d)
	}
	for i, g := range genes {
		if g != float64(i+1) {
			t.Fatalf("gene %d changed to %v with zero rate", i, g)
		}
	}

	if d := Mutate(rng, genes, MutationParams{Rate: 1, Sigma: 0.5, BigRate: 0.5, BigSigma: 3}); d <= 0 {
		t.Errorf("Mutate() with full rate = %v, want a positive mean delta", d)
	}
	changed := 0
	for i, g := range genes {
		if g != float64(i+1) {
			changed++
		}
	}
	if changed != len(genes) {
		t.Errorf("%d of %d genes changed with full rate", changed, len(genes))
	}
}

func TestCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	b := []float64{2, 2, 2, 2, 2, 2, 2, 2}

	child, err := Crossover(rng, a, b)
	if err != nil {
		t.Fatalf("Crossover() error = %v", err)
	}
	if len(child) != len(a) {
		t.Fatalf("len(child) = %d, want %d", len(child), len(a))
	}
	for i, g := range child {
		if g != a[i] && g != b[i] {
			t.Errorf("child[%d] = %v, not inherited from a parent", i, g)
		}
	}

	if _, err := Crossover(rng, a, b[:3]); err == nil {
		t.Error("Crossover() of mismatched parents should fail")
	}
}
