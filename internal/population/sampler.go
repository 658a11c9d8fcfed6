// Package population turns residential load points into dwellings whose
// building type, vintage, thermal shell and thermostat setpoints are drawn
// from weighted histograms.
package population

import (
	"fmt"
	"math/rand/v2"

	"feeder-populator/internal/ev"
	"feeder-populator/internal/model"
	"feeder-populator/internal/sampling"
)

// DefaultDeadbandF is the minimum cooling-minus-heating gap in °F.
const DefaultDeadbandF = 2.0

// Options are the per-run sampler parameters.
type Options struct {
	AvgHouseKVA   float64
	Region        int // 1-based index into RegionNames
	DeadbandF     float64
	EVProbability float64
}

func (o Options) Validate() error {
	if o.AvgHouseKVA <= 0 {
		return model.Configf("population", "avg_house_kva", "must be > 0")
	}
	if o.Region < 1 || o.Region > len(RegionNames) {
		return model.Configf("population", "region", "must be between 1 and %d", len(RegionNames))
	}
	if o.DeadbandF < 0 {
		return model.Configf("population", "deadband_f", "must be >= 0")
	}
	if o.EVProbability < 0 || o.EVProbability > 1 {
		return model.Configf("population", "ev_probability", "must be in [0, 1]")
	}
	return nil
}

// LoadPoint is one residential service location.
type LoadPoint struct {
	Node        string
	Transformer string
	KVA         float64
	Phases      model.PhaseSet
	VNom        float64
}

// Plan is the first-phase decision for a load point. Small plans carry no
// dwellings.
type Plan struct {
	Point      LoadPoint
	Small      bool
	HouseCount int
	Residual   float64
	Income     int
	Building   BuildingType
	Vintage    int
}

// SmallLoadAssignment is a load point too small for a dwelling.
type SmallLoadAssignment struct {
	Node   string         `json:"node"`
	KVA    float64        `json:"kva"`
	Phases model.PhaseSet `json:"phases"`
}

// HouseAssignment is the populated record for one residential load point.
type HouseAssignment struct {
	Node                 string         `json:"node"`
	Transformer          string         `json:"transformer,omitempty"`
	HouseCount           int            `json:"house_count"`
	Region               int            `json:"region"`
	RegionName           string         `json:"region_name"`
	RoundingResidual     float64        `json:"rounding_residual"`
	Phases               model.PhaseSet `json:"phases"`
	BuildingType         string         `json:"building_type"`
	Vintage              string         `json:"vintage"`
	ThermalIntegrity     int            `json:"thermal_integrity"`
	ThermalIntegrityName string         `json:"thermal_integrity_name"`
	IncomeLevel          string         `json:"income_level"`
	Parent               string         `json:"parent"`
	VNom                 float64        `json:"v_nom"`
	Dwellings            []Dwelling     `json:"dwellings"`
}

// Sampler draws dwellings from validated metadata. The conditional heating
// tables are derived once at construction.
type Sampler struct {
	meta    Metadata
	opts    Options
	cond    [3][][]float64
	incomes []float64
	matcher *ev.Matcher
}

// NewSampler validates meta and opts. matcher may be nil when no dwelling
// should receive a driving schedule.
func NewSampler(meta Metadata, opts Options, matcher *ev.Matcher) (*Sampler, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.EVProbability > 0 && matcher == nil {
		return nil, model.Configf("population", "ev_probability", "set to %.2f but no trip survey is loaded", opts.EVProbability)
	}
	s := &Sampler{meta: meta, opts: opts, matcher: matcher}
	for _, b := range buildingTypes {
		cond, err := ConditionalHeating(meta.Cooling.At(b), meta.Heating.At(b), meta.AllowedHeatingBins)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b, err)
		}
		s.cond[b] = cond
	}
	s.incomes = make([]float64, len(meta.IncomeLevels))
	for i, lvl := range meta.IncomeLevels {
		s.incomes[i] = lvl.Probability
	}
	return s, nil
}

// Conditional returns P(heating bin | cooling bin) for a building type.
func (s *Sampler) Conditional(b BuildingType) [][]float64 { return s.cond[b] }

// Plan decides the house count, income level, building type and vintage of
// a load point.
func (s *Sampler) Plan(rng *rand.Rand, pt LoadPoint) Plan {
	ratio := pt.KVA / s.opts.AvgHouseKVA
	n := int(ratio + 0.5)
	p := Plan{Point: pt, HouseCount: n, Residual: ratio - float64(n)}
	if n <= 0 {
		p.Small = true
		return p
	}
	p.Income = sampling.PickIndex(s.incomes, rng.Float64())
	row, col := sampling.PickCell(s.meta.IncomeLevels[p.Income].table(), rng.Float64())
	p.Building, p.Vintage = BuildingType(row), col
	return p
}

// SmallLoad converts a small plan into its assignment.
func (p Plan) SmallLoad() SmallLoadAssignment {
	return SmallLoadAssignment{Node: p.Point.Node, KVA: p.Point.KVA, Phases: p.Point.Phases}
}

// Populate draws every dwelling of a non-small plan. rng must be the stream
// the plan was drawn from.
func (s *Sampler) Populate(rng *rand.Rand, p Plan, res *Reservation) (HouseAssignment, error) {
	if p.Small {
		return HouseAssignment{}, model.Configf("population", p.Point.Node, "cannot populate a small load point")
	}
	h := HouseAssignment{
		Node:                 p.Point.Node,
		Transformer:          p.Point.Transformer,
		HouseCount:           p.HouseCount,
		Region:               s.opts.Region,
		RegionName:           RegionNames[s.opts.Region-1],
		RoundingResidual:     p.Residual,
		Phases:               p.Point.Phases,
		BuildingType:         p.Building.String(),
		Vintage:              VintageNames[p.Vintage],
		ThermalIntegrity:     p.Vintage,
		ThermalIntegrityName: ThermalIntegrityNames[p.Vintage],
		IncomeLevel:          s.meta.IncomeLevels[p.Income].Name,
		Parent:               p.Point.Node,
		VNom:                 p.Point.VNom,
		Dwellings:            make([]Dwelling, 0, p.HouseCount),
	}
	for i := 0; i < p.HouseCount; i++ {
		d, err := s.dwelling(rng, p, i)
		if err != nil {
			return HouseAssignment{}, fmt.Errorf("%s dwelling %d: %w", p.Point.Node, i, err)
		}
		res.Take(p.Building, d.CoolingBin, d.HeatingBin)
		h.Dwellings = append(h.Dwellings, d)
	}
	return h, nil
}
