package commercial

import (
	"math"
	"testing"

	"feeder-populator/internal/model"
	"feeder-populator/internal/sampling"

	"gotest.tools/v3/assert"
)

func newClassifier(t *testing.T, pool []PoolEntry) *Classifier {
	t.Helper()
	c, err := NewClassifier(pool, 30, &model.Warnings{Component: "Commercial"})
	assert.NilError(t, err)
	return c
}

func TestClassifyPicksLargestFittingArea(t *testing.T) {
	c := newClassifier(t, []PoolEntry{
		{"office", 4000},
		{"lodging", 9000},
		{"strip_mall", 12000},
		{"education", 9000},
	})
	// 50 kVA at 0.005 kVA/sqft plans 10000 sqft.
	a := c.Classify("c1", 50, model.ParsePhases("ABC"))
	assert.Assert(t, math.Abs(a.TargetSqFt-10000) < 1e-6)
	assert.Equal(t, a.TypeTag, "lodging")
	assert.Equal(t, a.FloorAreaSqFt, 9000.0)
	assert.Equal(t, a.Zones, 2)
	assert.Assert(t, !a.Unclassified)

	// The tie partner is still available to the next point.
	a = c.Classify("c2", 50, model.ParsePhases("ABC"))
	assert.Equal(t, a.TypeTag, "education")
	assert.Equal(t, c.Remaining().Count, 2)
}

func TestClassifyFallsBackToUnclassified(t *testing.T) {
	w := &model.Warnings{Component: "Commercial"}
	c, err := NewClassifier([]PoolEntry{{"office", 8000}}, 30, w)
	assert.NilError(t, err)

	a := c.Classify("tiny", 10, model.ParsePhases("AN"))
	assert.Equal(t, a.TypeTag, Unclassified)
	assert.Equal(t, a.FloorAreaSqFt, 0.0)
	assert.Assert(t, a.Unclassified)
	assert.Equal(t, w.Len(), 1)
	assert.Equal(t, w.Items()[0].Kind, model.WarnUnclassifiedLoad)
	assert.Equal(t, c.Remaining().Count, 1)
}

func TestPoolEntriesAreNeverReused(t *testing.T) {
	pool, err := GeneratePool(sampling.Stream(4, "pool"), DefaultPoolSpec(), 40)
	assert.NilError(t, err)
	c := newClassifier(t, pool)
	seen := map[PoolEntry]int{}
	for _, e := range pool {
		seen[e]++
	}

	matched := 0
	for i := 0; i < 25; i++ {
		a := c.Classify("c", 300, model.ParsePhases("ABC"))
		if a.Unclassified {
			continue
		}
		matched++
		e := PoolEntry{a.TypeTag, a.FloorAreaSqFt}
		assert.Assert(t, seen[e] > 0, "%+v reused", e)
		seen[e]--
	}
	assert.Equal(t, c.Remaining().Count, len(pool)-matched)
}

func TestRemainingReportsPlanningLoad(t *testing.T) {
	c := newClassifier(t, []PoolEntry{{"office", 2000}, {"big_box", 50000}})
	assert.DeepEqual(t, c.Remaining(), PoolSummary{Count: 2, KVA: 260})
	c.Classify("c", 20, model.ParsePhases("ABC"))
	assert.DeepEqual(t, c.Remaining(), PoolSummary{Count: 1, KVA: 250})
}

func TestClassifierDoesNotModifyCallerPool(t *testing.T) {
	pool := []PoolEntry{{"office", 2000}, {"lodging", 3000}}
	c := newClassifier(t, pool)
	c.Classify("c", 100, model.ParsePhases("ABC"))
	assert.DeepEqual(t, pool, []PoolEntry{{"office", 2000}, {"lodging", 3000}})
}

func TestGeneratePoolStaysInsideBins(t *testing.T) {
	spec := DefaultPoolSpec()
	pool, err := GeneratePool(sampling.Stream(8, "pool"), spec, 500)
	assert.NilError(t, err)
	assert.Equal(t, len(pool), 500)

	tags := map[string]bool{}
	for _, wt := range spec.Types {
		tags[wt.Tag] = true
	}
	for _, e := range pool {
		assert.Assert(t, tags[e.TypeTag], e.TypeTag)
		assert.Assert(t, e.FloorAreaSqFt >= 1000 && e.FloorAreaSqFt < 55000, "area %.0f", e.FloorAreaSqFt)
	}

	again, err := GeneratePool(sampling.Stream(8, "pool"), spec, 500)
	assert.NilError(t, err)
	assert.DeepEqual(t, pool, again)
}

func TestPoolSpecValidation(t *testing.T) {
	bad := DefaultPoolSpec()
	bad.AreaBins[0].Max = 10
	_, err := GeneratePool(sampling.Stream(1, "p"), bad, 1)
	assert.Assert(t, model.IsConfigurationError(err))

	_, err = NewClassifier(nil, 0, nil)
	assert.Assert(t, model.IsConfigurationError(err))
}

func TestZonesRoundHalfUp(t *testing.T) {
	c := newClassifier(t, nil)
	for kva, zones := range map[float64]int{14: 0, 15: 1, 44.9: 1, 45: 2, 120: 4} {
		a := c.Classify("z", kva, model.ParsePhases("ABC"))
		assert.Equal(t, a.Zones, zones, "kva %.1f", kva)
		assert.Assert(t, math.Abs(a.TargetSqFt-kva/DesignLoadDensity) < 1e-9)
	}
}
