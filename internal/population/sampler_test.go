package population

import (
	"math"
	"testing"

	"feeder-populator/internal/ev"
	"feeder-populator/internal/model"
	"feeder-populator/internal/sampling"

	"gotest.tools/v3/assert"
)

func defaultOptions() Options {
	return Options{AvgHouseKVA: 1, Region: 1, DeadbandF: DefaultDeadbandF}
}

func newSampler(t *testing.T, meta Metadata, opts Options, m *ev.Matcher) *Sampler {
	t.Helper()
	s, err := NewSampler(meta, opts, m)
	assert.NilError(t, err)
	return s
}

func point(node string, kva float64) LoadPoint {
	return LoadPoint{Node: node, Transformer: "xf_" + node, KVA: kva, Phases: model.ParsePhases("AS"), VNom: 120}
}

func TestPlanRoundsHouseCount(t *testing.T) {
	s := newSampler(t, DefaultMetadata(), defaultOptions(), nil)
	tests := []struct {
		kva      float64
		houses   int
		residual float64
		small    bool
	}{
		{3.4, 3, 0.4, false},
		{3.6, 4, -0.4, false},
		{0.4, 0, 0.4, true},
		{0, 0, 0, true},
	}
	for _, tt := range tests {
		p := s.Plan(sampling.Stream(1, "n"), point("n", tt.kva))
		assert.Equal(t, p.HouseCount, tt.houses, "kva %.1f", tt.kva)
		assert.Equal(t, p.Small, tt.small, "kva %.1f", tt.kva)
		assert.Assert(t, math.Abs(p.Residual-tt.residual) < 1e-9, "kva %.1f residual %.3f", tt.kva, p.Residual)
	}
}

func TestSmallPlanCannotBePopulated(t *testing.T) {
	s := newSampler(t, DefaultMetadata(), defaultOptions(), nil)
	p := s.Plan(sampling.Stream(1, "n"), point("n", 0.3))
	assert.DeepEqual(t, p.SmallLoad(), SmallLoadAssignment{Node: "n", KVA: 0.3, Phases: model.ParsePhases("AS")})
	_, err := s.Populate(sampling.Stream(1, "n"), p, nil)
	assert.Assert(t, model.IsConfigurationError(err))
}

func TestConditionalHeatingVectors(t *testing.T) {
	meta := DefaultMetadata()
	cool, heat := meta.Cooling.SingleFamily, meta.Heating.SingleFamily
	cond, err := ConditionalHeating(cool, heat, meta.AllowedHeatingBins)
	assert.NilError(t, err)

	assert.DeepEqual(t, cond[0], []float64{1, 0, 0, 0, 0, 0})

	margin := heat[0].Probability - cool[0].Probability
	denom := margin + heat[1].Probability + heat[2].Probability
	assert.Assert(t, math.Abs(cond[1][0]-margin/denom) < 1e-12)
	assert.Assert(t, math.Abs(cond[1][2]-heat[2].Probability/denom) < 1e-12)
	assert.Equal(t, cond[1][3], 0.0)

	for c, row := range cond {
		sum := 0.0
		for h, p := range row {
			sum += p
			if h > 0 && h >= meta.AllowedHeatingBins[c] {
				assert.Equal(t, p, 0.0, "cooling %d heating %d", c, h)
			}
		}
		assert.Assert(t, math.Abs(sum-1) < 1e-9, "cooling bin %d sums to %f", c, sum)
	}
}

func TestConditionalHeatingWithoutWeightIsFatal(t *testing.T) {
	cool := []SetpointBin{{Probability: .6}, {Probability: .4}}
	heat := []SetpointBin{{Probability: .5}, {Probability: .5}}
	// Cooling bin 1 may only use heating bin 0, whose margin is zero.
	_, err := ConditionalHeating(cool, heat, []int{1, 1})
	assert.Assert(t, model.IsConfigurationError(err))
}

func TestEnforceDeadband(t *testing.T) {
	c, h := EnforceDeadband(70, 69, 2)
	assert.Equal(t, c, 70.5)
	assert.Equal(t, h, 68.5)

	c, h = EnforceDeadband(76, 66, 2)
	assert.Equal(t, c, 76.0)
	assert.Equal(t, h, 66.0)
}

func TestDwellingsRespectBinsAndDeadband(t *testing.T) {
	meta := DefaultMetadata()
	s := newSampler(t, meta, defaultOptions(), nil)
	for i := 0; i < 50; i++ {
		rng := sampling.Stream(uint64(i), "tn")
		p := s.Plan(rng, point("tn", 6))
		h, err := s.Populate(rng, p, nil)
		assert.NilError(t, err)
		assert.Equal(t, len(h.Dwellings), 6)
		assert.Equal(t, h.ThermalIntegrity, p.Vintage)
		assert.Equal(t, h.Vintage, VintageNames[p.Vintage])

		shell := meta.Shell.At(p.Building)[p.Vintage]
		for _, d := range h.Dwellings {
			assert.Assert(t, d.CoolingSetpoint-d.HeatingSetpoint >= DefaultDeadbandF-1e-9,
				"cool %.2f heat %.2f", d.CoolingSetpoint, d.HeatingSetpoint)
			assert.Assert(t, d.HeatingBin == 0 || d.HeatingBin < meta.AllowedHeatingBins[d.CoolingBin])

			assert.Assert(t, d.Rroof >= 0.8*shell.Rroof && d.Rroof < 1.2*shell.Rroof)
			assert.Assert(t, d.Rwall >= 0.8*shell.Rwall && d.Rwall < 1.2*shell.Rwall)
			assert.Assert(t, d.AirChange >= 0.8*shell.AirChange && d.AirChange < 1.2*shell.AirChange)
			assert.Equal(t, d.WindowLayers, shell.WindowLayers)
			assert.Assert(t, d.COP >= shell.COPLow && d.COP <= shell.COPHigh)

			area := meta.FloorArea.At(p.Building)
			assert.Assert(t, d.FloorAreaSqFt >= area.Min && d.FloorAreaSqFt <= area.Max, "area %.0f", d.FloorAreaSqFt)
			assert.Assert(t, d.CeilingHeightFt == 8 || d.CeilingHeightFt == 9)
			assert.Assert(t, d.InitialTempF >= 68 && d.InitialTempF < 72)
			assert.Assert(t, math.Abs(d.ScheduleSkewSecs) <= meta.SkewMaxSecs)
			assert.Assert(t, d.Driving == nil)
		}
	}
}

func TestPopulateIsReproducible(t *testing.T) {
	s := newSampler(t, DefaultMetadata(), defaultOptions(), nil)
	run := func() HouseAssignment {
		rng := sampling.Stream(42, "tn_7")
		h, err := s.Populate(rng, s.Plan(rng, point("tn_7", 4.2)), nil)
		assert.NilError(t, err)
		return h
	}
	assert.DeepEqual(t, run(), run())
}

func TestApartmentExteriorFractions(t *testing.T) {
	meta := DefaultMetadata()
	meta.IncomeLevels = []IncomeLevel{{Name: "Renters", Probability: 1, Vintage: PerBuilding[[]float64]{
		SingleFamily: make([]float64, 8),
		Apartment:    []float64{0, 0, 0, 0, 1, 0, 0, 0},
		MobileHome:   make([]float64, 8),
	}}}
	s := newSampler(t, meta, defaultOptions(), nil)
	rng := sampling.Stream(3, "apt")
	p := s.Plan(rng, point("apt", 40))
	assert.Equal(t, p.Building, Apartment)
	assert.Equal(t, p.Vintage, 4)

	h, err := s.Populate(rng, p, nil)
	assert.NilError(t, err)
	assert.Equal(t, h.BuildingType, "MULTI_FAMILY")
	for _, d := range h.Dwellings {
		assert.Assert(t, d.ExteriorCeilFraction+d.ExteriorFloorFraction == 1)
		assert.Assert(t, d.ExteriorWallFraction <= 0.5)
		assert.Equal(t, d.WindowWallRatio, meta.WindowWallRatio.Apartment)
	}
}

func TestMobileHomeAspectRatioFollowsWidth(t *testing.T) {
	meta := DefaultMetadata()
	meta.IncomeLevels = []IncomeLevel{{Name: "Any", Probability: 1, Vintage: PerBuilding[[]float64]{
		SingleFamily: make([]float64, 8),
		Apartment:    make([]float64, 8),
		MobileHome:   []float64{1, 0, 0, 0, 0, 0, 0, 0},
	}}}
	s := newSampler(t, meta, defaultOptions(), nil)
	rng := sampling.Stream(9, "mh")
	h, err := s.Populate(rng, s.Plan(rng, point("mh", 30)), nil)
	assert.NilError(t, err)
	for _, d := range h.Dwellings {
		if d.FloorAreaSqFt > meta.SingleWideMaxSqFt {
			assert.Assert(t, d.AspectRatio <= meta.MobileHomeDoubleWide.Max)
		} else {
			assert.Assert(t, d.AspectRatio >= meta.AspectRatio.MobileHome.Min)
		}
		assert.Equal(t, d.ExteriorWallFraction, 1.0)
	}
}

func TestOversizedResidualClampsFloorArea(t *testing.T) {
	meta := DefaultMetadata()
	s := newSampler(t, meta, defaultOptions(), nil)
	rng := sampling.Stream(5, "big")
	for i := 0; i < 100; i++ {
		a := s.floorArea(rng, SingleFamily, 10)
		assert.Assert(t, a <= meta.FloorArea.SingleFamily.Max && a >= meta.FloorArea.SingleFamily.Max-200, "area %.0f", a)
	}
}

func TestReservationCountsDraws(t *testing.T) {
	s := newSampler(t, DefaultMetadata(), defaultOptions(), nil)
	res := s.NewReservation([3]int{100, 20, 5})
	before := res.Report()
	assert.Assert(t, before.Reserved > 0)
	assert.Equal(t, before.Remaining, before.Reserved)
	assert.Equal(t, before.Drawn, 0)

	drawn := 0
	for i := 0; i < 10; i++ {
		rng := sampling.Stream(uint64(i), "r")
		h, err := s.Populate(rng, s.Plan(rng, point("r", 5)), res)
		assert.NilError(t, err)
		drawn += len(h.Dwellings)
	}
	after := res.Report()
	assert.Equal(t, after.Drawn, drawn)
	assert.Equal(t, after.Remaining, before.Reserved-drawn)
}

func TestReservationReportsOverdraw(t *testing.T) {
	s := newSampler(t, DefaultMetadata(), defaultOptions(), nil)
	res := s.NewReservation([3]int{})
	res.Take(MobileHome, 0, 0)
	rep := res.Report()
	assert.Equal(t, rep.Remaining, -1)
	assert.DeepEqual(t, rep.Overdrawn, []ReservationCell{{BuildingType: "MOBILE_HOME", Remaining: -1}})
}

func TestEVProbabilityAttachesSchedules(t *testing.T) {
	trips := []ev.Trip{{DailyMiles: 30, Departure: 7 * 3600, Arrival: 18 * 3600}}
	m, err := ev.NewMatcher(trips, ev.DefaultFleet())
	assert.NilError(t, err)
	opts := defaultOptions()
	opts.EVProbability = 1
	s := newSampler(t, DefaultMetadata(), opts, m)

	rng := sampling.Stream(2, "evn")
	h, err := s.Populate(rng, s.Plan(rng, point("evn", 3)), nil)
	assert.NilError(t, err)
	for _, d := range h.Dwellings {
		assert.Assert(t, d.Driving != nil)
		assert.NilError(t, ev.ValidateSchedule(*d.Driving))
	}
}

func TestEVProbabilityNeedsSurvey(t *testing.T) {
	opts := defaultOptions()
	opts.EVProbability = 0.3
	_, err := NewSampler(DefaultMetadata(), opts, nil)
	assert.Assert(t, model.IsConfigurationError(err))
}

func TestMetadataValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Metadata)
	}{
		{"income sum", func(m *Metadata) { m.IncomeLevels[0].Probability = .5 }},
		{"vintage sum", func(m *Metadata) { m.IncomeLevels[1].Vintage.SingleFamily[0] = .5 }},
		{"vintage shape", func(m *Metadata) { m.IncomeLevels[2].Vintage.MobileHome = []float64{.04} }},
		{"cooling sum", func(m *Metadata) { m.Cooling.Apartment[0].Probability = .5 }},
		{"shell rows", func(m *Metadata) { m.Shell.MobileHome = m.Shell.MobileHome[:3] }},
		{"allowed bins", func(m *Metadata) { m.AllowedHeatingBins = []int{1, 2} }},
		{"inverted bin", func(m *Metadata) { m.Heating.SingleFamily[2].High = 60 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMetadata()
			tt.mutate(&m)
			assert.Assert(t, model.IsConfigurationError(m.Validate()))
		})
	}
	m := DefaultMetadata()
	assert.NilError(t, m.Validate())
}

func TestOptionsValidation(t *testing.T) {
	for _, o := range []Options{
		{AvgHouseKVA: 0, Region: 1},
		{AvgHouseKVA: 1, Region: 0},
		{AvgHouseKVA: 1, Region: 6},
		{AvgHouseKVA: 1, Region: 1, DeadbandF: -1},
		{AvgHouseKVA: 1, Region: 1, EVProbability: 2},
	} {
		assert.Assert(t, model.IsConfigurationError(o.Validate()), "%+v", o)
	}
}
