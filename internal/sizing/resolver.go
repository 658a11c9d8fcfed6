// Package sizing upgrades transformers and protective devices to standard
// catalog ratings based on the load aggregated onto each link.
package sizing

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"feeder-populator/internal/catalog"
	"feeder-populator/internal/model"
	"feeder-populator/internal/network"
)

// Options are the sizing scalars.
// Units:
// - VoltageBreakpointKVA: kVA; above it three-wire secondaries move to 480/277 V
// - PrimaryVLL / PrimaryVLN: V
// - MaxSecondaryVoltage: V; transformers above it (substation units) are left alone
type Options struct {
	TransformerMargin    float64
	FuseMargin           float64
	VoltageBreakpointKVA float64
	PrimaryVLL           float64
	PrimaryVLN           float64
	MaxSecondaryVoltage  float64
	DefaultInstallType   string
}

func DefaultOptions() Options {
	return Options{
		TransformerMargin:    1.20,
		FuseMargin:           2.50,
		VoltageBreakpointKVA: 100,
		PrimaryVLL:           12470,
		PrimaryVLN:           7200,
		MaxSecondaryVoltage:  500,
		DefaultInstallType:   "PADMOUNT",
	}
}

func (o Options) Validate() error {
	if o.TransformerMargin <= 0 {
		return errors.New("TransformerMargin must be > 0")
	}
	if o.FuseMargin <= 0 {
		return errors.New("FuseMargin must be > 0")
	}
	if o.VoltageBreakpointKVA <= 0 {
		return errors.New("VoltageBreakpointKVA must be > 0")
	}
	if o.PrimaryVLL <= 0 || o.PrimaryVLN <= 0 {
		return errors.New("PrimaryVLL and PrimaryVLN must be > 0")
	}
	return nil
}

// Resolver picks catalog ratings. It holds no per-run state, so Resolve is
// idempotent for an unchanged aggregation.
type Resolver struct {
	cat  *catalog.Catalog
	opts Options
}

func NewResolver(cat *catalog.Catalog, opts Options) (*Resolver, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("sizing options invalid: %w", err)
	}
	if opts.MaxSecondaryVoltage <= 0 {
		opts.MaxSecondaryVoltage = DefaultOptions().MaxSecondaryVoltage
	}
	if opts.DefaultInstallType == "" {
		opts.DefaultInstallType = DefaultOptions().DefaultInstallType
	}
	return &Resolver{cat: cat, opts: opts}, nil
}

// Result is the equipment side table for one aggregation.
type Result struct {
	Transformers  []TransformerAssignment `json:"transformers"`
	Configs       []TransformerConfig     `json:"configs"`
	Fuses         []FuseAssignment        `json:"fuses"`
	ServicePoints []ServicePoint          `json:"service_points"`
	Warnings      []model.Warning         `json:"warnings,omitempty"`
}

// ServicePoint returns the service point hosted at node, if any.
func (r *Result) ServicePoint(node string) (ServicePoint, bool) {
	for _, sp := range r.ServicePoints {
		if sp.Node == node {
			return sp, true
		}
	}
	return ServicePoint{}, false
}

// Resolve sizes every transformer and fuse in g.
func (r *Resolver) Resolve(g *network.Graph, agg *network.Aggregation) (*Result, error) {
	if g == nil || agg == nil {
		return nil, errors.New("graph and aggregation are required")
	}
	warns := model.Warnings{Component: "Sizing"}
	out := &Result{}
	configs := map[string]TransformerConfig{}

	for _, e := range g.EdgesOf(model.ClassTransformer) {
		load, ok := agg.Load(e.Name)
		if !ok {
			warns.Add(model.WarnSkippedTransformer, e.Name, "no downstream load; left at its backbone rating")
			continue
		}
		installType := r.opts.DefaultInstallType
		if cfg, found := g.Config(e.Configuration); found {
			if v, err := strconv.ParseFloat(cfg["secondary_voltage"], 64); err == nil && v > r.opts.MaxSecondaryVoltage {
				warns.Add(model.WarnSkippedTransformer, e.Name, "secondary voltage %.0f V exceeds %.0f V; not a distribution transformer", v, r.opts.MaxSecondaryVoltage)
				continue
			}
			if it := strings.TrimSpace(cfg["install_type"]); it != "" {
				installType = it
			}
		}

		a, cfg := r.sizeTransformer(e, load, installType)
		if a.Oversize {
			warns.Add(model.WarnOversizeEquipment, e.Name, "%.2f kVA target exceeds the largest catalog unit; assigned %.1f kVA", a.TargetKVA, a.RatedKVA)
		}
		out.Transformers = append(out.Transformers, a)
		if _, seen := configs[a.ConfigKey]; !seen {
			configs[a.ConfigKey] = cfg
		}
		if a.IsService() {
			out.ServicePoints = append(out.ServicePoints, ServicePoint{
				Node:        e.To,
				Transformer: e.Name,
				LoadKVA:     load.KVA,
				RatedKVA:    a.RatedKVA,
				Phases:      a.Phases,
				VNom:        a.VNom,
			})
		}
	}

	keys := make([]string, 0, len(configs))
	for k := range configs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.Configs = append(out.Configs, configs[k])
	}

	for _, e := range g.EdgesOf(model.ClassFuse) {
		load, ok := agg.Load(e.Name)
		if !ok {
			continue
		}
		f := r.sizeFuse(e, load)
		if f.Device == catalog.DeviceOversize {
			warns.Add(model.WarnOversizeEquipment, e.Name, "%.1f A target exceeds every protective device; assigned sentinel %.0f A", f.TargetAmps, f.CurrentLimit)
		}
		out.Fuses = append(out.Fuses, f)
	}

	out.Warnings = warns.Items()
	log.Printf("[Sizing] Resized %d transformers into %d configurations, %d fuses",
		len(out.Transformers), len(out.Configs), len(out.Fuses))
	return out, nil
}

// TransformerRating returns the catalog rating for a load on phaseCount
// phases, along with the entry whose impedances apply. When the target
// exceeds the table, the rating is the smallest multiple of the largest entry
// that covers it and oversize is true.
func (r *Resolver) TransformerRating(kva float64, phaseCount int) (rating float64, entry catalog.Entry, oversize bool) {
	table := r.cat.Transformers(phaseCount)
	target := kva * r.opts.TransformerMargin
	if e, ok := table.Lookup(target); ok {
		return e.Rating, e, false
	}
	largest := table.Largest()
	n := math.Ceil(target / largest.Rating)
	return n * largest.Rating, largest, true
}

// FuseAmps converts a load into line current at the primary voltage.
func (r *Resolver) FuseAmps(kva float64, phaseCount int) float64 {
	switch phaseCount {
	case 3:
		return 1000 * kva / math.Sqrt(3) / r.opts.PrimaryVLL
	case 2:
		return 1000 * kva / 2 / r.opts.PrimaryVLN
	default:
		return 1000 * kva / r.opts.PrimaryVLN
	}
}

func (r *Resolver) sizeFuse(e *model.NetworkEdge, load network.AggregatedLoad) FuseAssignment {
	nphs := load.Phases.Count()
	amps := r.FuseAmps(load.KVA, nphs)
	target := amps * r.opts.FuseMargin
	device, limit := r.cat.ProtectiveDevice(target)
	return FuseAssignment{
		Edge:         e.Name,
		LoadKVA:      load.KVA,
		Phases:       load.Phases,
		Amps:         amps,
		TargetAmps:   target,
		Device:       device,
		CurrentLimit: limit,
	}
}
