package sampling

import (
	"testing"

	"feeder-populator/internal/model"

	"gotest.tools/v3/assert"
)

func TestPickIndexCumulative(t *testing.T) {
	probs := []float64{0.2, 0.3, 0.5}
	assert.Equal(t, PickIndex(probs, 0.1), 0)
	assert.Equal(t, PickIndex(probs, 0.35), 1)
	assert.Equal(t, PickIndex(probs, 0.99), 2)
}

func TestPickIndexExhaustionReturnsLast(t *testing.T) {
	// Table sums to 0.98; a draw beyond that falls through to the last row.
	assert.Equal(t, PickIndex([]float64{0.5, 0.48}, 0.995), 1)
}

func TestPickCellScansRowMajor(t *testing.T) {
	table := [][]float64{
		{0.1, 0.2},
		{0.3, 0.4},
	}
	r, c := PickCell(table, 0.05)
	assert.Equal(t, [2]int{r, c}, [2]int{0, 0})
	r, c = PickCell(table, 0.25)
	assert.Equal(t, [2]int{r, c}, [2]int{0, 1})
	r, c = PickCell(table, 0.55)
	assert.Equal(t, [2]int{r, c}, [2]int{1, 0})
	r, c = PickCell([][]float64{{0.1}, {0.1}}, 0.9)
	assert.Equal(t, [2]int{r, c}, [2]int{1, 0})
}

func TestValidateDistribution(t *testing.T) {
	assert.NilError(t, ValidateDistribution("ok", []float64{0.2, 0.3, 0.5}))
	assert.NilError(t, ValidateDistribution("within tolerance", []float64{0.2, 0.3, 0.509}))

	err := ValidateDistribution("short", []float64{0.2, 0.3, 0.4})
	assert.Assert(t, model.IsConfigurationError(err))
	assert.ErrorContains(t, err, "sum to 0.9000")

	err = ValidateDistribution("negative", []float64{1.2, -0.2})
	assert.ErrorContains(t, err, "negative")
}

func TestStreamIsKeyedAndReproducible(t *testing.T) {
	a1 := Stream(7, "node_a").Float64()
	a2 := Stream(7, "node_a").Float64()
	b := Stream(7, "node_b").Float64()
	assert.Equal(t, a1, a2)
	assert.Assert(t, a1 != b)
}

func TestTruncNormalStaysInBounds(t *testing.T) {
	d := TruncNormal{Min: 500, Max: 4000, Mean: 2100, Std: 900}
	for _, u := range []float64{0, 1e-9, 0.25, 0.5, 0.75, 1} {
		x := d.Quantile(u)
		assert.Assert(t, x >= d.Min && x <= d.Max, "u=%v x=%v", u, x)
	}
	mid := d.Quantile(0.5)
	assert.Assert(t, mid > 1900 && mid < 2300, "median %v", mid)
}

func TestTruncNormalDegenerate(t *testing.T) {
	assert.Equal(t, TruncNormal{Min: 1, Max: 3, Mean: 2}.Quantile(0.9), 2.0)
	assert.Equal(t, TruncNormal{Min: 1, Max: 3, Mean: 50, Std: 0.001}.Quantile(0.9), 3.0)
}

func TestNormalize(t *testing.T) {
	assert.DeepEqual(t, Normalize([]float64{1, 1, 2}), []float64{0.25, 0.25, 0.5})
}
