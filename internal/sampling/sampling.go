// Package sampling holds the random-draw primitives shared by the population
// components: seeded per-node sub-streams, cumulative histogram selection and
// truncated normal draws.
package sampling

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"feeder-populator/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Tolerance is how far a probability table may stray from summing to 1.
const Tolerance = 0.01

// Stream returns a deterministic sub-stream for one node. The same seed and
// key always yield the same sequence, independent of how many other streams
// were drawn from before.
func Stream(seed uint64, key string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}

// PickIndex walks probs in order, accumulating until the running sum reaches
// u. If the table is exhausted first, the last index is returned.
func PickIndex(probs []float64, u float64) int {
	total := 0.0
	for i, p := range probs {
		total += p
		if total >= u {
			return i
		}
	}
	return len(probs) - 1
}

// PickCell is PickIndex over a 2-D table scanned row by row.
func PickCell(table [][]float64, u float64) (row, col int) {
	total := 0.0
	for r := range table {
		for c, p := range table[r] {
			total += p
			if total >= u {
				return r, c
			}
		}
	}
	row = len(table) - 1
	return row, len(table[row]) - 1
}

// ValidateDistribution checks that probs is non-negative and sums to 1
// within Tolerance.
func ValidateDistribution(name string, probs []float64) error {
	if len(probs) == 0 {
		return model.Configf("sampling", name, "distribution is empty")
	}
	for i, p := range probs {
		if p < 0 || math.IsNaN(p) {
			return model.Configf("sampling", name, "probability %d is negative", i)
		}
	}
	if sum := floats.Sum(probs); math.Abs(sum-1) > Tolerance {
		return model.Configf("sampling", name, "probabilities sum to %.4f, want 1", sum)
	}
	return nil
}

// ValidateTable checks a 2-D table as one joint distribution.
func ValidateTable(name string, table [][]float64) error {
	flat := make([]float64, 0, len(table)*8)
	for _, row := range table {
		flat = append(flat, row...)
	}
	return ValidateDistribution(name, flat)
}

// Normalize scales probs to sum to 1. A zero-sum input is returned unchanged.
func Normalize(probs []float64) []float64 {
	out := append([]float64(nil), probs...)
	sum := floats.Sum(out)
	if sum == 0 {
		return out
	}
	floats.Scale(1/sum, out)
	return out
}

// Uniform draws from [lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// TruncNormal is a normal distribution restricted to [Min, Max].
type TruncNormal struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Mean float64 `yaml:"mean" json:"mean"`
	Std  float64 `yaml:"std" json:"std"`
}

// Draw samples by inverting the normal CDF over the truncated interval.
func (d TruncNormal) Draw(rng *rand.Rand) float64 {
	return d.Quantile(rng.Float64())
}

// Quantile maps u in [0,1] onto the truncated distribution.
func (d TruncNormal) Quantile(u float64) float64 {
	if d.Std <= 0 {
		return clamp(d.Mean, d.Min, d.Max)
	}
	n := distuv.Normal{Mu: d.Mean, Sigma: d.Std}
	lo, hi := n.CDF(d.Min), n.CDF(d.Max)
	if hi-lo < 1e-12 {
		return clamp(d.Mean, d.Min, d.Max)
	}
	p := lo + u*(hi-lo)
	p = math.Min(math.Max(p, 1e-12), 1-1e-12)
	return clamp(n.Quantile(p), d.Min, d.Max)
}

func (d TruncNormal) Validate(name string) error {
	if d.Max < d.Min {
		return model.Configf("sampling", name, "max %.3f below min %.3f", d.Max, d.Min)
	}
	if d.Std < 0 {
		return model.Configf("sampling", name, "std must be >= 0")
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
