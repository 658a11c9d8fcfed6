package catalog

import (
	"errors"
	"fmt"
	"os"

	"feeder-populator/internal/model"

	"gopkg.in/yaml.v3"
)

// OversizeAmps is assigned to a protective device when no catalog rating can
// carry the target current.
const OversizeAmps = 999999.0

// Entry is one standard equipment rating.
// Units:
// - Rating: kVA for transformers, A for protective devices
// - Pct*: percent on the transformer's own base
type Entry struct {
	Rating  float64 `yaml:"rating" json:"rating"`
	PctR    float64 `yaml:"pct_r" json:"pct_r"`
	PctX    float64 `yaml:"pct_x" json:"pct_x"`
	PctNLL  float64 `yaml:"pct_nll" json:"pct_nll"`
	PctImag float64 `yaml:"pct_imag" json:"pct_imag"`
}

// Table is a strictly ascending list of entries.
type Table []Entry

// Lookup returns the first entry whose rating is >= target.
// Margins must already be folded into target.
func (t Table) Lookup(target float64) (Entry, bool) {
	for _, e := range t {
		if e.Rating >= target {
			return e, true
		}
	}
	return Entry{}, false
}

// Largest returns the last (largest) entry.
func (t Table) Largest() Entry {
	if len(t) == 0 {
		return Entry{}
	}
	return t[len(t)-1]
}

func (t Table) validate(name string, needImpedance bool) error {
	if len(t) == 0 {
		return model.Configf("catalog", name, "table is empty")
	}
	for i, e := range t {
		if e.Rating <= 0 {
			return model.Configf("catalog", name, "entry %d rating must be > 0", i)
		}
		if i > 0 && e.Rating <= t[i-1].Rating {
			return model.Configf("catalog", name, "entry %d rating %.2f is not ascending", i, e.Rating)
		}
		if needImpedance && (e.PctNLL <= 0 || e.PctImag <= 0) {
			return model.Configf("catalog", name, "entry %d needs positive no-load loss and magnetizing current", i)
		}
	}
	return nil
}

// Device names the protective-device family a rating came from.
type Device string

const (
	DeviceFuse     Device = "fuse"
	DeviceRecloser Device = "recloser"
	DeviceBreaker  Device = "breaker"
	DeviceOversize Device = "oversize"
)

// Catalog bundles the transformer and protective-device tables.
// Treat a Catalog as immutable once constructed; Default returns a fresh copy.
type Catalog struct {
	ThreePhase  Table     `yaml:"three_phase" json:"three_phase"`
	SinglePhase Table     `yaml:"single_phase" json:"single_phase"`
	Fuses       []float64 `yaml:"fuses" json:"fuses"`
	Reclosers   []float64 `yaml:"reclosers" json:"reclosers"`
	Breakers    []float64 `yaml:"breakers" json:"breakers"`
}

// Transformers picks the three-phase table for multi-phase loads and the
// single-phase table otherwise.
func (c *Catalog) Transformers(phaseCount int) Table {
	if phaseCount > 1 {
		return c.ThreePhase
	}
	return c.SinglePhase
}

// ProtectiveDevice scans fuses, then reclosers, then breakers for the first
// rating >= targetAmps. When nothing qualifies it returns OversizeAmps.
func (c *Catalog) ProtectiveDevice(targetAmps float64) (Device, float64) {
	families := []struct {
		device  Device
		ratings []float64
	}{
		{DeviceFuse, c.Fuses},
		{DeviceRecloser, c.Reclosers},
		{DeviceBreaker, c.Breakers},
	}
	for _, f := range families {
		for _, r := range f.ratings {
			if r >= targetAmps {
				return f.device, r
			}
		}
	}
	return DeviceOversize, OversizeAmps
}

func (c *Catalog) Validate() error {
	if c == nil {
		return errors.New("catalog is nil")
	}
	if err := c.ThreePhase.validate("three_phase", true); err != nil {
		return err
	}
	if err := c.SinglePhase.validate("single_phase", true); err != nil {
		return err
	}
	for _, f := range []struct {
		name    string
		ratings []float64
	}{
		{"fuses", c.Fuses},
		{"reclosers", c.Reclosers},
		{"breakers", c.Breakers},
	} {
		if len(f.ratings) == 0 {
			return model.Configf("catalog", f.name, "table is empty")
		}
		for i, r := range f.ratings {
			if r <= 0 || (i > 0 && r <= f.ratings[i-1]) {
				return model.Configf("catalog", f.name, "ratings must be positive and ascending (entry %d)", i)
			}
		}
	}
	return nil
}

// LoadFile reads a YAML catalog. Tables missing from the file keep their
// default contents.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var override Catalog
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	c := Merge(Default(), &override)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Merge overlays the non-empty tables of override onto a copy of base.
func Merge(base, override *Catalog) *Catalog {
	out := *base
	if len(override.ThreePhase) > 0 {
		out.ThreePhase = append(Table(nil), override.ThreePhase...)
	}
	if len(override.SinglePhase) > 0 {
		out.SinglePhase = append(Table(nil), override.SinglePhase...)
	}
	if len(override.Fuses) > 0 {
		out.Fuses = append([]float64(nil), override.Fuses...)
	}
	if len(override.Reclosers) > 0 {
		out.Reclosers = append([]float64(nil), override.Reclosers...)
	}
	if len(override.Breakers) > 0 {
		out.Breakers = append([]float64(nil), override.Breakers...)
	}
	return &out
}
