package population

import (
	"fmt"
	"math/rand/v2"

	"feeder-populator/internal/ev"
	"feeder-populator/internal/sampling"
)

// Dwelling is one synthesized house.
// Units:
// - areas: ft²; heights: ft
// - setpoints and temperatures: °F
// - R-values: h·ft²·°F/Btu; AirChange: 1/h
// - ScheduleSkewSecs: seconds
type Dwelling struct {
	Name                  string  `json:"name"`
	FloorAreaSqFt         float64 `json:"floor_area_sqft"`
	CeilingHeightFt       int     `json:"ceiling_height_ft"`
	Stories               int     `json:"stories"`
	AspectRatio           float64 `json:"aspect_ratio"`
	ExteriorWallFraction  float64 `json:"exterior_wall_fraction"`
	ExteriorCeilFraction  float64 `json:"exterior_ceiling_fraction"`
	ExteriorFloorFraction float64 `json:"exterior_floor_fraction"`
	WindowWallRatio       float64 `json:"window_wall_ratio"`
	HVACOversize          float64 `json:"hvac_oversize"`
	WindowTransmission    float64 `json:"window_transmission_coefficient"`

	Rroof        float64 `json:"r_roof"`
	Rwall        float64 `json:"r_wall"`
	Rfloor       float64 `json:"r_floor"`
	Rdoor        float64 `json:"r_door"`
	AirChange    float64 `json:"air_change"`
	WindowLayers int     `json:"window_layers"`
	WindowGlass  int     `json:"window_glass"`
	Glazing      int     `json:"glazing"`
	WindowFrame  int     `json:"window_frame"`
	COP          float64 `json:"cop"`

	InitialTempF     float64 `json:"initial_temp_f"`
	ThermalMass      float64 `json:"thermal_mass"`
	CoolingBin       int     `json:"cooling_bin"`
	HeatingBin       int     `json:"heating_bin"`
	CoolingSetpoint  float64 `json:"cooling_setpoint"`
	HeatingSetpoint  float64 `json:"heating_setpoint"`
	CoolingNightDiff float64 `json:"cooling_night_diff"`
	HeatingNightDiff float64 `json:"heating_night_diff"`
	ScheduleSkewSecs float64 `json:"schedule_skew_secs"`

	Driving *ev.Schedule `json:"driving,omitempty"`
}

// dwelling draws one house. The draw order is fixed so that a stream
// reproduces the same dwelling.
func (s *Sampler) dwelling(rng *rand.Rand, p Plan, index int) (Dwelling, error) {
	b := p.Building
	d := Dwelling{Name: houseName(p.Point.Node, index), Stories: 1}

	cool := s.meta.Cooling.At(b)
	heat := s.meta.Heating.At(b)
	d.CoolingBin = sampling.PickIndex(binProbs(cool), rng.Float64())
	d.HeatingBin = sampling.PickIndex(s.cond[b][d.CoolingBin], rng.Float64())
	cb, hb := cool[d.CoolingBin], heat[d.HeatingBin]
	d.CoolingSetpoint = cb.Low + rng.Float64()*(cb.High-cb.Low)
	d.HeatingSetpoint = hb.Low + rng.Float64()*(hb.High-hb.Low)
	d.CoolingNightDiff = 2 * cb.NightDiff * rng.Float64()
	d.HeatingNightDiff = 2 * hb.NightDiff * rng.Float64()
	d.CoolingSetpoint, d.HeatingSetpoint = EnforceDeadband(d.CoolingSetpoint, d.HeatingSetpoint, s.opts.DeadbandF)

	d.FloorAreaSqFt = s.floorArea(rng, b, p.Residual)
	d.AspectRatio = s.aspectRatio(rng, b, d.FloorAreaSqFt)
	d.ExteriorWallFraction, d.ExteriorCeilFraction, d.ExteriorFloorFraction = s.exteriorFractions(rng, b, d.AspectRatio)
	d.WindowWallRatio = s.meta.WindowWallRatio.At(b)
	d.HVACOversize = s.meta.HVACOversize.Draw(rng)
	d.WindowTransmission = s.meta.WindowShading.Draw(rng)
	d.CeilingHeightFt = 8 + rng.IntN(2)

	row := s.meta.Shell.At(b)[p.Vintage]
	d.Rroof = row.Rroof * jitter(rng)
	d.Rwall = row.Rwall * jitter(rng)
	d.Rfloor = row.Rfloor * jitter(rng)
	d.Rdoor = row.Rdoor * jitter(rng)
	d.AirChange = row.AirChange * jitter(rng)
	d.WindowLayers = row.WindowLayers
	d.WindowGlass = row.WindowGlass
	d.Glazing = row.Glazing
	d.WindowFrame = row.WindowFrame
	d.COP = row.COPLow + rng.Float64()*(row.COPHigh-row.COPLow)

	d.InitialTempF = 68 + 4*rng.Float64()
	d.ThermalMass = 2.5 + 1.5*rng.Float64()
	skew := sampling.TruncNormal{Min: -s.meta.SkewMaxSecs, Max: s.meta.SkewMaxSecs, Std: s.meta.SkewStdSecs}
	d.ScheduleSkewSecs = skew.Draw(rng)

	if s.matcher != nil && s.opts.EVProbability > 0 && rng.Float64() < s.opts.EVProbability {
		sched, err := s.matcher.Assign(rng)
		if err != nil {
			return Dwelling{}, err
		}
		d.Driving = &sched
	}
	return d, nil
}

// jitter scales a table value by a factor in [0.8, 1.2).
func jitter(rng *rand.Rand) float64 { return 0.8 + 0.4*rng.Float64() }

func (s *Sampler) floorArea(rng *rand.Rand, b BuildingType, residual float64) float64 {
	dist := s.meta.FloorArea.At(b)
	area := dist.Draw(rng) * (1 + residual)
	u := rng.Float64()
	switch {
	case area > dist.Max:
		area = dist.Max - 200*u
	case area < dist.Min:
		area = dist.Min + 100*u
	}
	return area
}

func (s *Sampler) aspectRatio(rng *rand.Rand, b BuildingType, area float64) float64 {
	if b == MobileHome && area > s.meta.SingleWideMaxSqFt {
		return s.meta.MobileHomeDoubleWide.Draw(rng)
	}
	return s.meta.AspectRatio.At(b).Draw(rng)
}

// exteriorFractions places an apartment unit in a small (8 unit) or large
// (16 unit) building. Bottom-floor units have an exterior floor, upper-floor
// units an exterior ceiling; middle units of a large building share two
// walls.
func (s *Sampler) exteriorFractions(rng *rand.Rand, b BuildingType, aspect float64) (wall, ceil, floor float64) {
	if b != Apartment {
		return 1, 1, 1
	}
	small := rng.Float64() < s.meta.SmallApartmentShare
	u := rng.Float64()
	if small {
		if u < 0.5 {
			return 0.5, 0, 1
		}
		return 0.5, 1, 0
	}
	middle := aspect / (1 + aspect) / 2
	switch {
	case u < 0.25:
		return 0.5, 0, 1
	case u < 0.5:
		return 0.5, 1, 0
	case u < 0.75:
		return middle, 0, 1
	default:
		return middle, 1, 0
	}
}

func houseName(node string, index int) string {
	return fmt.Sprintf("%s_house%d", node, index)
}
