package commercial

import (
	"math/rand/v2"

	"feeder-populator/internal/model"
	"feeder-populator/internal/sampling"
)

// PoolEntry is one candidate commercial building footprint.
type PoolEntry struct {
	TypeTag       string  `yaml:"type" json:"type"`
	FloorAreaSqFt float64 `yaml:"floor_area_sqft" json:"floor_area_sqft"`
}

// WeightedType is one building type with its share of the stock.
type WeightedType struct {
	Tag    string  `yaml:"tag" json:"tag"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// AreaBin is a floor-area range in ft² with its share of the stock.
type AreaBin struct {
	Label  string  `yaml:"label" json:"label"`
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// PoolSpec describes how a synthetic building pool is drawn.
type PoolSpec struct {
	Types    []WeightedType `yaml:"types" json:"types"`
	AreaBins []AreaBin      `yaml:"area_bins" json:"area_bins"`
}

// DefaultPoolSpec is the built-in commercial stock. Weights are normalized
// before use.
func DefaultPoolSpec() PoolSpec {
	return PoolSpec{
		Types: []WeightedType{
			{"office", .20},
			{"warehouse_storage", .15},
			{"big_box", .05},
			{"strip_mall", .10},
			{"education", .10},
			{"food_service", .10},
			{"food_sales", .05},
			{"lodging", .05},
			{"healthcare_inpatient", .02},
			{"low_occupancy", .18},
		},
		AreaBins: []AreaBin{
			{"1-5", 1000, 5000, .50},
			{"5-10", 5001, 10000, .20},
			{"10-25", 10001, 25000, .15},
			{"25-50", 25001, 50000, .10},
			{"50_more", 50001, 55000, .05},
		},
	}
}

func (p PoolSpec) Validate() error {
	if len(p.Types) == 0 || len(p.AreaBins) == 0 {
		return model.Configf("commercial", "pool", "need at least one type and one area bin")
	}
	total := 0.0
	for _, t := range p.Types {
		if t.Weight < 0 {
			return model.Configf("commercial", t.Tag, "negative weight")
		}
		total += t.Weight
	}
	if total <= 0 {
		return model.Configf("commercial", "types", "weights sum to zero")
	}
	total = 0
	for _, b := range p.AreaBins {
		if b.Weight < 0 || b.Max < b.Min || b.Min <= 0 {
			return model.Configf("commercial", b.Label, "area bin needs 0 < min <= max and a non-negative weight")
		}
		total += b.Weight
	}
	if total <= 0 {
		return model.Configf("commercial", "area_bins", "weights sum to zero")
	}
	return nil
}

// GeneratePool draws n buildings: a type, then an area bin, then a uniform
// area inside the bin.
func GeneratePool(rng *rand.Rand, spec PoolSpec, n int) ([]PoolEntry, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	types := make([]float64, len(spec.Types))
	for i, t := range spec.Types {
		types[i] = t.Weight
	}
	areas := make([]float64, len(spec.AreaBins))
	for i, b := range spec.AreaBins {
		areas[i] = b.Weight
	}
	types, areas = sampling.Normalize(types), sampling.Normalize(areas)

	pool := make([]PoolEntry, n)
	for i := range pool {
		t := spec.Types[sampling.PickIndex(types, rng.Float64())]
		b := spec.AreaBins[sampling.PickIndex(areas, rng.Float64())]
		pool[i] = PoolEntry{TypeTag: t.Tag, FloorAreaSqFt: sampling.Uniform(rng, b.Min, b.Max)}
	}
	return pool, nil
}
