package models

import (
	"feeder-populator/internal/config"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/model"
	"feeder-populator/internal/network"
)

// PopulateRequest represents the request body for a population run.
// Exactly one of Model and ModelFile must be given.
type PopulateRequest struct {
	Model     *model.ParsedModel `json:"model,omitempty"`
	ModelFile string             `json:"model_file,omitempty"` // file name inside the server's model directory
	Config    RunConfig          `json:"config"`
	Trips     []ev.Trip          `json:"trips,omitempty"`
	Options   PopulateOptions    `json:"options,omitempty"`
}

// RunConfig overrides the server defaults. Zero fields keep the default.
type RunConfig struct {
	Seed             uint64              `json:"seed,omitempty"`
	Region           int                 `json:"region,omitempty"`
	AvgHouseKVA      float64             `json:"avg_house_kva,omitempty"`
	AvgCommercialKVA float64             `json:"avg_commercial_kva,omitempty"`
	DeadbandF        float64             `json:"deadband_f,omitempty"`
	FeederVLL        float64             `json:"feeder_vll,omitempty"`
	FeederVLN        float64             `json:"feeder_vln,omitempty"`
	Sizing           SizingConfig        `json:"sizing,omitempty"`
	EV               EVConfig            `json:"ev,omitempty"`
	PoolSize         int                 `json:"commercial_pool_size,omitempty"`
	Injections       []network.Injection `json:"injections,omitempty"`
}

// SizingConfig defines the sizing margins
type SizingConfig struct {
	TransformerMargin    float64 `json:"transformer_margin,omitempty"`
	FuseMargin           float64 `json:"fuse_margin,omitempty"`
	VoltageBreakpointKVA float64 `json:"voltage_breakpoint_kva,omitempty"`
	DefaultInstallType   string  `json:"default_install_type,omitempty"`
}

// EVConfig defines EV adoption
type EVConfig struct {
	Probability   float64 `json:"probability,omitempty"`
	MaxDraws      int     `json:"max_draws,omitempty"`
	ReserveSOCPct float64 `json:"reserve_soc_pct,omitempty"`
	Level1Usage   float64 `json:"level1_usage,omitempty"`
}

// PopulateOptions contains optional response parameters
type PopulateOptions struct {
	IncludeHouses bool `json:"include_houses,omitempty"` // default: false
}

// ToConfig lays the request overrides over the server defaults.
func (r RunConfig) ToConfig() config.Config {
	override := config.Config{
		Seed:             r.Seed,
		Region:           r.Region,
		AvgHouseKVA:      r.AvgHouseKVA,
		AvgCommercialKVA: r.AvgCommercialKVA,
		DeadbandF:        r.DeadbandF,
		Feeder:           config.FeederConfig{VLL: r.FeederVLL, VLN: r.FeederVLN},
		Sizing: config.SizingConfig{
			TransformerMargin:    r.Sizing.TransformerMargin,
			FuseMargin:           r.Sizing.FuseMargin,
			VoltageBreakpointKVA: r.Sizing.VoltageBreakpointKVA,
			DefaultInstallType:   r.Sizing.DefaultInstallType,
		},
		EV: config.EVConfig{
			Probability:   r.EV.Probability,
			MaxDraws:      r.EV.MaxDraws,
			ReserveSOCPct: r.EV.ReserveSOCPct,
			Level1Usage:   r.EV.Level1Usage,
		},
		Commercial: config.CommercialConfig{PoolSize: r.PoolSize},
		Injections: r.Injections,
	}
	return config.Merge(config.Defaults(), override)
}
