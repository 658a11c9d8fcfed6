package ev

import (
	"errors"
	"fmt"

	"feeder-populator/internal/model"
	"feeder-populator/internal/sampling"
)

// Model describes one vehicle model on sale.
// Units:
// - RangeMiles: miles on a full charge
// - MilesPerKWh: driving efficiency
// - Level2KW: on-board charger limit on a level-2 outlet
type Model struct {
	Name            string  `yaml:"name" json:"name"`
	SaleProbability float64 `yaml:"sale_probability" json:"sale_probability"`
	RangeMiles      float64 `yaml:"range_miles" json:"range_miles"`
	MilesPerKWh     float64 `yaml:"miles_per_kwh" json:"miles_per_kwh"`
	Level2KW        float64 `yaml:"level2_kw" json:"level2_kw"`
}

// Fleet is the vehicle population electrified dwellings draw from.
type Fleet struct {
	Models             []Model `yaml:"models" json:"models"`
	Level1Usage        float64 `yaml:"level1_usage" json:"level1_usage"`
	Level1KW           float64 `yaml:"level1_kw" json:"level1_kw"`
	ReserveSOCPct      float64 `yaml:"reserve_soc_pct" json:"reserve_soc_pct"`
	ChargingEfficiency float64 `yaml:"charging_efficiency" json:"charging_efficiency"`
}

func DefaultFleet() Fleet {
	return Fleet{
		Models: []Model{
			{Name: "Tesla Model 3", SaleProbability: 0.30, RangeMiles: 272, MilesPerKWh: 4.0, Level2KW: 11.5},
			{Name: "Chevy Bolt", SaleProbability: 0.20, RangeMiles: 259, MilesPerKWh: 3.6, Level2KW: 7.2},
			{Name: "Nissan Leaf", SaleProbability: 0.20, RangeMiles: 150, MilesPerKWh: 3.5, Level2KW: 6.6},
			{Name: "Ford Mustang Mach-E", SaleProbability: 0.15, RangeMiles: 247, MilesPerKWh: 3.0, Level2KW: 10.5},
			{Name: "Hyundai Kona", SaleProbability: 0.15, RangeMiles: 258, MilesPerKWh: 3.7, Level2KW: 7.2},
		},
		Level1Usage:        0.10,
		Level1KW:           1.92,
		ReserveSOCPct:      20,
		ChargingEfficiency: 0.90,
	}
}

func (f Fleet) Validate() error {
	if len(f.Models) == 0 {
		return errors.New("fleet has no vehicle models")
	}
	probs := make([]float64, len(f.Models))
	for i, m := range f.Models {
		if m.RangeMiles <= 0 || m.MilesPerKWh <= 0 || m.Level2KW <= 0 {
			return model.Configf("ev", m.Name, "range, efficiency and level-2 rate must be > 0")
		}
		probs[i] = m.SaleProbability
	}
	if err := sampling.ValidateDistribution("ev sale distribution", probs); err != nil {
		return err
	}
	if f.Level1Usage < 0 || f.Level1Usage > 1 {
		return errors.New("level1_usage must be in [0, 1]")
	}
	if f.Level1Usage > 0 && f.Level1KW <= 0 {
		return errors.New("level1_kw must be > 0 when level-1 charging is used")
	}
	// Daily miles are floored at 20% of range, which must stay below the reserve.
	if f.ReserveSOCPct < 0 || f.ReserveSOCPct >= 80 {
		return fmt.Errorf("reserve_soc_pct must be in [0, 80), got %.1f", f.ReserveSOCPct)
	}
	return nil
}

// SelectModel walks the sale distribution cumulatively.
func (f Fleet) SelectModel(u float64) Model {
	probs := make([]float64, len(f.Models))
	for i, m := range f.Models {
		probs[i] = m.SaleProbability
	}
	return f.Models[sampling.PickIndex(probs, u)]
}

// MaxRange is the longest range in the fleet.
func (f Fleet) MaxRange() float64 {
	out := 0.0
	for _, m := range f.Models {
		out = max(out, m.RangeMiles)
	}
	return out
}
