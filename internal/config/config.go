package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"feeder-populator/internal/commercial"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/network"
	"feeder-populator/internal/population"
	"feeder-populator/internal/sizing"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Seed             uint64  `yaml:"seed"`
	Region           int     `yaml:"region"`
	AvgHouseKVA      float64 `yaml:"avg_house_kva"`
	AvgCommercialKVA float64 `yaml:"avg_commercial_kva"`
	DeadbandF        float64 `yaml:"deadband_f"`

	// Optional side files. Relative paths are resolved against the config
	// file directory first, then the working directory.
	CatalogFile  string `yaml:"catalog_file"`
	MetadataFile string `yaml:"metadata_file"`
	SurveyFile   string `yaml:"survey_file"`

	Feeder     FeederConfig        `yaml:"feeder"`
	Sizing     SizingConfig        `yaml:"sizing"`
	EV         EVConfig            `yaml:"ev"`
	Commercial CommercialConfig    `yaml:"commercial"`
	Injections []network.Injection `yaml:"injections"`
}

// FeederConfig holds the primary voltages in volts.
type FeederConfig struct {
	VLL float64 `yaml:"vll"`
	VLN float64 `yaml:"vln"`
}

type SizingConfig struct {
	TransformerMargin    float64 `yaml:"transformer_margin"`
	FuseMargin           float64 `yaml:"fuse_margin"`
	VoltageBreakpointKVA float64 `yaml:"voltage_breakpoint_kva"`
	MaxSecondaryVoltage  float64 `yaml:"max_secondary_voltage"`
	DefaultInstallType   string  `yaml:"default_install_type"`
}

type EVConfig struct {
	Probability   float64 `yaml:"probability"`
	MaxDraws      int     `yaml:"max_draws"`
	ReserveSOCPct float64 `yaml:"reserve_soc_pct"`
	Level1Usage   float64 `yaml:"level1_usage"`
}

type CommercialConfig struct {
	// PoolSize is a floor; the pool is never smaller than twice the number
	// of commercial load points.
	PoolSize int                  `yaml:"pool_size"`
	Pool     *commercial.PoolSpec `yaml:"pool"`
}

// Defaults returns a configuration with every scalar set.
func Defaults() Config {
	so := sizing.DefaultOptions()
	return Config{
		Seed:             1,
		Region:           1,
		AvgHouseKVA:      4.5,
		AvgCommercialKVA: 30,
		DeadbandF:        population.DefaultDeadbandF,
		Feeder:           FeederConfig{VLL: so.PrimaryVLL, VLN: so.PrimaryVLN},
		Sizing: SizingConfig{
			TransformerMargin:    so.TransformerMargin,
			FuseMargin:           so.FuseMargin,
			VoltageBreakpointKVA: so.VoltageBreakpointKVA,
			MaxSecondaryVoltage:  so.MaxSecondaryVoltage,
			DefaultInstallType:   so.DefaultInstallType,
		},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	*c = Merge(Defaults(), *c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the file and resolves side-file paths, but applies no
// defaults and does not validate.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	c.CatalogFile = resolve(dir, c.CatalogFile)
	c.MetadataFile = resolve(dir, c.MetadataFile)
	c.SurveyFile = resolve(dir, c.SurveyFile)
	return &c, nil
}

// resolve prefers a path relative to the config file directory, but falls
// back to the provided path (relative to cwd) if that doesn't exist.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.PopulationOptions().Validate(); err != nil {
		return fmt.Errorf("population config invalid: %w", err)
	}
	if err := c.SizingOptions().Validate(); err != nil {
		return fmt.Errorf("sizing config invalid: %w", err)
	}
	if c.AvgCommercialKVA <= 0 {
		return errors.New("avg_commercial_kva must be > 0")
	}
	if c.EV.MaxDraws < 0 {
		return errors.New("ev.max_draws must be >= 0")
	}
	if err := c.EV.Fleet().Validate(); err != nil {
		return fmt.Errorf("ev config invalid: %w", err)
	}
	if c.Commercial.PoolSize < 0 {
		return errors.New("commercial.pool_size must be >= 0")
	}
	if c.Commercial.Pool != nil {
		if err := c.Commercial.Pool.Validate(); err != nil {
			return fmt.Errorf("commercial pool invalid: %w", err)
		}
	}
	for i, inj := range c.Injections {
		if inj.Bus == "" || inj.KVA < 0 {
			return fmt.Errorf("injection %d needs a bus and a non-negative kva", i)
		}
	}
	return nil
}

func (c *Config) SizingOptions() sizing.Options {
	return sizing.Options{
		TransformerMargin:    c.Sizing.TransformerMargin,
		FuseMargin:           c.Sizing.FuseMargin,
		VoltageBreakpointKVA: c.Sizing.VoltageBreakpointKVA,
		PrimaryVLL:           c.Feeder.VLL,
		PrimaryVLN:           c.Feeder.VLN,
		MaxSecondaryVoltage:  c.Sizing.MaxSecondaryVoltage,
		DefaultInstallType:   c.Sizing.DefaultInstallType,
	}
}

func (c *Config) PopulationOptions() population.Options {
	return population.Options{
		AvgHouseKVA:   c.AvgHouseKVA,
		Region:        c.Region,
		DeadbandF:     c.DeadbandF,
		EVProbability: c.EV.Probability,
	}
}

// Merge overlays non-zero fields from override onto base.
// This is used to apply defaults on load and request overrides in the API.
func Merge(base, override Config) Config {
	out := base
	if override.Seed != 0 {
		out.Seed = override.Seed
	}
	if override.Region != 0 {
		out.Region = override.Region
	}
	if override.AvgHouseKVA != 0 {
		out.AvgHouseKVA = override.AvgHouseKVA
	}
	if override.AvgCommercialKVA != 0 {
		out.AvgCommercialKVA = override.AvgCommercialKVA
	}
	if override.DeadbandF != 0 {
		out.DeadbandF = override.DeadbandF
	}
	if override.CatalogFile != "" {
		out.CatalogFile = override.CatalogFile
	}
	if override.MetadataFile != "" {
		out.MetadataFile = override.MetadataFile
	}
	if override.SurveyFile != "" {
		out.SurveyFile = override.SurveyFile
	}
	if override.Feeder.VLL != 0 {
		out.Feeder.VLL = override.Feeder.VLL
	}
	if override.Feeder.VLN != 0 {
		out.Feeder.VLN = override.Feeder.VLN
	}
	out.Sizing = MergeSizing(base.Sizing, override.Sizing)
	out.EV = MergeEV(base.EV, override.EV)
	if override.Commercial.PoolSize != 0 {
		out.Commercial.PoolSize = override.Commercial.PoolSize
	}
	if override.Commercial.Pool != nil {
		out.Commercial.Pool = override.Commercial.Pool
	}
	if len(override.Injections) > 0 {
		out.Injections = append([]network.Injection(nil), override.Injections...)
	}
	return out
}

func MergeSizing(base, override SizingConfig) SizingConfig {
	out := base
	if override.TransformerMargin != 0 {
		out.TransformerMargin = override.TransformerMargin
	}
	if override.FuseMargin != 0 {
		out.FuseMargin = override.FuseMargin
	}
	if override.VoltageBreakpointKVA != 0 {
		out.VoltageBreakpointKVA = override.VoltageBreakpointKVA
	}
	if override.MaxSecondaryVoltage != 0 {
		out.MaxSecondaryVoltage = override.MaxSecondaryVoltage
	}
	if override.DefaultInstallType != "" {
		out.DefaultInstallType = override.DefaultInstallType
	}
	return out
}

// Fleet applies the EV overrides to the default vehicle population.
func (e EVConfig) Fleet() ev.Fleet {
	f := ev.DefaultFleet()
	if e.ReserveSOCPct != 0 {
		f.ReserveSOCPct = e.ReserveSOCPct
	}
	if e.Level1Usage != 0 {
		f.Level1Usage = e.Level1Usage
	}
	return f
}

// MergeEV overlays EV settings. A zero probability cannot switch EVs off
// through a merge; leave the base at zero instead.
func MergeEV(base, override EVConfig) EVConfig {
	out := base
	if override.Probability != 0 {
		out.Probability = override.Probability
	}
	if override.MaxDraws != 0 {
		out.MaxDraws = override.MaxDraws
	}
	if override.ReserveSOCPct != 0 {
		out.ReserveSOCPct = override.ReserveSOCPct
	}
	if override.Level1Usage != 0 {
		out.Level1Usage = override.Level1Usage
	}
	return out
}
