package population

import (
	"fmt"

	"feeder-populator/internal/model"
	"feeder-populator/internal/sampling"
)

// BuildingType indexes the three residential building families.
type BuildingType int

const (
	SingleFamily BuildingType = iota
	Apartment
	MobileHome
)

var buildingTypes = []BuildingType{SingleFamily, Apartment, MobileHome}

var buildingTypeNames = [...]string{"SINGLE_FAMILY", "MULTI_FAMILY", "MOBILE_HOME"}

func (b BuildingType) String() string {
	if b < 0 || int(b) >= len(buildingTypeNames) {
		return fmt.Sprintf("BuildingType(%d)", int(b))
	}
	return buildingTypeNames[b]
}

// VintageNames label the vintage bins; the bin index doubles as the thermal
// integrity level.
var VintageNames = []string{"pre_1950", "1950-1959", "1960-1969", "1970-1979", "1980-1989", "1990-1999", "2000-2009", "2010-2015"}

var ThermalIntegrityNames = []string{"VERY_LITTLE", "VERY_LITTLE", "LITTLE", "BELOW_NORMAL", "NORMAL", "ABOVE_NORMAL", "GOOD", "VERY_GOOD"}

var RegionNames = []string{"West_Coast", "North_Central_Northeast", "Southwest", "Southeast_Central", "Southeast_Coastal"}

// PerBuilding holds one value per building type.
type PerBuilding[T any] struct {
	SingleFamily T `yaml:"single_family" json:"single_family"`
	Apartment    T `yaml:"apartment" json:"apartment"`
	MobileHome   T `yaml:"mobile_home" json:"mobile_home"`
}

func (p PerBuilding[T]) At(b BuildingType) T {
	switch b {
	case Apartment:
		return p.Apartment
	case MobileHome:
		return p.MobileHome
	default:
		return p.SingleFamily
	}
}

// SetpointBin is one thermostat histogram bin.
// Units: °F; NightDiff is the maximum night-time offset.
type SetpointBin struct {
	Probability float64 `yaml:"probability" json:"probability"`
	NightDiff   float64 `yaml:"night_diff" json:"night_diff"`
	High        float64 `yaml:"high" json:"high"`
	Low         float64 `yaml:"low" json:"low"`
}

// ThermalShell is one row of building-shell properties for a thermal
// integrity level. R-values are h·ft²·°F/Btu; AirChange is per hour.
type ThermalShell struct {
	Rroof        float64 `yaml:"r_roof" json:"r_roof"`
	Rwall        float64 `yaml:"r_wall" json:"r_wall"`
	Rfloor       float64 `yaml:"r_floor" json:"r_floor"`
	WindowLayers int     `yaml:"window_layers" json:"window_layers"`
	WindowGlass  int     `yaml:"window_glass" json:"window_glass"`
	Glazing      int     `yaml:"glazing" json:"glazing"`
	WindowFrame  int     `yaml:"window_frame" json:"window_frame"`
	Rdoor        float64 `yaml:"r_door" json:"r_door"`
	AirChange    float64 `yaml:"air_change" json:"air_change"`
	COPHigh      float64 `yaml:"cop_high" json:"cop_high"`
	COPLow       float64 `yaml:"cop_low" json:"cop_low"`
}

// IncomeLevel carries the joint building-type × vintage distribution of one
// demographic bucket.
type IncomeLevel struct {
	Name        string                 `yaml:"name" json:"name"`
	Probability float64                `yaml:"probability" json:"probability"`
	Vintage     PerBuilding[[]float64] `yaml:"vintage" json:"vintage"`
}

func (l IncomeLevel) table() [][]float64 {
	return [][]float64{l.Vintage.SingleFamily, l.Vintage.Apartment, l.Vintage.MobileHome}
}

// Metadata is the statistical description of the residential stock.
type Metadata struct {
	IncomeLevels         []IncomeLevel                     `yaml:"income_levels" json:"income_levels"`
	Cooling              PerBuilding[[]SetpointBin]        `yaml:"cooling_setpoints" json:"cooling_setpoints"`
	Heating              PerBuilding[[]SetpointBin]        `yaml:"heating_setpoints" json:"heating_setpoints"`
	AllowedHeatingBins   []int                             `yaml:"allowed_heating_bins" json:"allowed_heating_bins"`
	Shell                PerBuilding[[]ThermalShell]       `yaml:"thermal_shell" json:"thermal_shell"`
	FloorArea            PerBuilding[sampling.TruncNormal] `yaml:"floor_area" json:"floor_area"`
	AspectRatio          PerBuilding[sampling.TruncNormal] `yaml:"aspect_ratio" json:"aspect_ratio"`
	// MobileHomeDoubleWide replaces the mobile-home aspect ratio above
	// SingleWideMaxSqFt.
	MobileHomeDoubleWide sampling.TruncNormal              `yaml:"mobile_home_double_wide" json:"mobile_home_double_wide"`
	SingleWideMaxSqFt    float64                           `yaml:"single_wide_max_sqft" json:"single_wide_max_sqft"`
	WindowWallRatio      PerBuilding[float64]              `yaml:"window_wall_ratio" json:"window_wall_ratio"`
	SmallApartmentShare  float64                           `yaml:"small_apartment_share" json:"small_apartment_share"`
	HVACOversize         sampling.TruncNormal              `yaml:"hvac_oversize" json:"hvac_oversize"`
	WindowShading        sampling.TruncNormal              `yaml:"window_shading" json:"window_shading"`
	SkewStdSecs          float64                           `yaml:"skew_std_secs" json:"skew_std_secs"`
	SkewMaxSecs          float64                           `yaml:"skew_max_secs" json:"skew_max_secs"`
}

// Validate checks every probability table and the table shapes.
func (m *Metadata) Validate() error {
	if len(m.IncomeLevels) == 0 {
		return model.Configf("population", "income_levels", "no income levels")
	}
	incomes := make([]float64, len(m.IncomeLevels))
	for i, lvl := range m.IncomeLevels {
		incomes[i] = lvl.Probability
		for _, b := range buildingTypes {
			if n := len(lvl.Vintage.At(b)); n != len(VintageNames) {
				return model.Configf("population", lvl.Name, "%s vintage row has %d bins, want %d", b, n, len(VintageNames))
			}
		}
		if err := sampling.ValidateTable("vintage "+lvl.Name, lvl.table()); err != nil {
			return err
		}
	}
	if err := sampling.ValidateDistribution("income_levels", incomes); err != nil {
		return err
	}

	for _, b := range buildingTypes {
		cool, heat := m.Cooling.At(b), m.Heating.At(b)
		if len(cool) == 0 || len(heat) != len(cool) {
			return model.Configf("population", b.String(), "cooling and heating histograms need the same, non-zero number of bins")
		}
		if err := sampling.ValidateDistribution("cooling "+b.String(), binProbs(cool)); err != nil {
			return err
		}
		if err := sampling.ValidateDistribution("heating "+b.String(), binProbs(heat)); err != nil {
			return err
		}
		for i, bin := range append(append([]SetpointBin(nil), cool...), heat...) {
			if bin.High < bin.Low {
				return model.Configf("population", b.String(), "setpoint bin %d has high %.1f below low %.1f", i, bin.High, bin.Low)
			}
		}
		if n := len(m.Shell.At(b)); n != len(VintageNames) {
			return model.Configf("population", b.String(), "thermal shell table has %d rows, want %d", n, len(VintageNames))
		}
		if err := m.FloorArea.At(b).Validate("floor_area " + b.String()); err != nil {
			return err
		}
		if err := m.AspectRatio.At(b).Validate("aspect_ratio " + b.String()); err != nil {
			return err
		}
	}
	if len(m.AllowedHeatingBins) != len(m.Cooling.SingleFamily) {
		return model.Configf("population", "allowed_heating_bins", "need one cutoff per cooling bin")
	}
	for c, a := range m.AllowedHeatingBins {
		if a < 1 || a > len(m.Heating.SingleFamily) {
			return model.Configf("population", "allowed_heating_bins", "cutoff %d for cooling bin %d out of range", a, c)
		}
	}
	if m.SmallApartmentShare < 0 || m.SmallApartmentShare > 1 {
		return model.Configf("population", "small_apartment_share", "must be in [0, 1]")
	}
	return nil
}

func binProbs(bins []SetpointBin) []float64 {
	out := make([]float64, len(bins))
	for i, b := range bins {
		out[i] = b.Probability
	}
	return out
}
