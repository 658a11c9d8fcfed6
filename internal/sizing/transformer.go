package sizing

import (
	"fmt"
	"strings"

	"feeder-populator/internal/catalog"
	"feeder-populator/internal/model"
	"feeder-populator/internal/network"
)

// TransformerAssignment records the rating chosen for one transformer link.
type TransformerAssignment struct {
	Edge        string         `json:"edge"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	LoadKVA     float64        `json:"load_kva"`
	TargetKVA   float64        `json:"target_kva"`
	RatedKVA    float64        `json:"rated_kva"`
	Phases      model.PhaseSet `json:"phases"`
	PhaseCount  int            `json:"phase_count"`
	VNom        float64        `json:"v_nom"`
	VSec        float64        `json:"v_sec"`
	InstallType string         `json:"install_type"`
	ConfigKey   string         `json:"config_key"`
	Oversize    bool           `json:"oversize,omitempty"`
}

// TransformerConfig is a de-duplicated electrical configuration.
// Impedances are per-unit on the transformer's own base.
type TransformerConfig struct {
	Key              string         `json:"key"`
	ConnectType      string         `json:"connect_type"`
	InstallType      string         `json:"install_type"`
	Phases           model.PhaseSet `json:"phases"`
	PowerRating      float64        `json:"power_rating"`
	PowerA           float64        `json:"power_a_rating"`
	PowerB           float64        `json:"power_b_rating"`
	PowerC           float64        `json:"power_c_rating"`
	PrimaryVoltage   float64        `json:"primary_voltage"`
	SecondaryVoltage float64        `json:"secondary_voltage"`
	Resistance       float64        `json:"resistance"`
	Reactance        float64        `json:"reactance"`
	Resistance1      float64        `json:"resistance1,omitempty"`
	Resistance2      float64        `json:"resistance2,omitempty"`
	Reactance1       float64        `json:"reactance1,omitempty"`
	Reactance2       float64        `json:"reactance2,omitempty"`
	ShuntResistance  float64        `json:"shunt_resistance"`
	ShuntReactance   float64        `json:"shunt_reactance"`
}

// ServicePoint is the secondary bus of a single-phase or split-phase service
// transformer, where dwellings are attached.
type ServicePoint struct {
	Node        string         `json:"node"`
	Transformer string         `json:"transformer"`
	LoadKVA     float64        `json:"load_kva"`
	RatedKVA    float64        `json:"rated_kva"`
	Phases      model.PhaseSet `json:"phases"`
	VNom        float64        `json:"v_nom"`
}

// FuseAssignment records the current limit chosen for one fuse link.
type FuseAssignment struct {
	Edge         string         `json:"edge"`
	LoadKVA      float64        `json:"load_kva"`
	Phases       model.PhaseSet `json:"phases"`
	Amps         float64        `json:"amps"`
	TargetAmps   float64        `json:"target_amps"`
	Device       catalog.Device `json:"device"`
	CurrentLimit float64        `json:"current_limit"`
}

// ConfigKey builds the canonical configuration name, e.g. XF1_POLETOP_AS_15p0.
func ConfigKey(phaseCount int, installType string, phases model.PhaseSet, rating float64) string {
	raw := fmt.Sprintf("XF%d_%s_%s_%s", phaseCount, installType, phases, formatRating(rating))
	return strings.ReplaceAll(raw, ".", "p")
}

func formatRating(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%g", v)
}

// IsService reports whether the transformer feeds customers directly: a
// single-phase or split-phase unit whose secondary hosts a load point.
func (a TransformerAssignment) IsService() bool {
	return a.PhaseCount <= 1 || a.Phases.IsCenterTapped()
}

func (r *Resolver) sizeTransformer(e *model.NetworkEdge, load network.AggregatedLoad, installType string) (TransformerAssignment, TransformerConfig) {
	nphs := load.Phases.Count()
	rated, entry, oversize := r.TransformerRating(load.KVA, nphs)

	phases := load.Phases
	var vnom, vsec float64
	if phases.IsCenterTapped() {
		vnom, vsec = 120, 120
	} else {
		phases = phases.WithNeutral()
		if rated > r.opts.VoltageBreakpointKVA {
			vsec, vnom = 480, 277
		} else {
			vsec, vnom = 208, 120
		}
	}

	a := TransformerAssignment{
		Edge:        e.Name,
		From:        e.From,
		To:          e.To,
		LoadKVA:     load.KVA,
		TargetKVA:   load.KVA * r.opts.TransformerMargin,
		RatedKVA:    rated,
		Phases:      phases,
		PhaseCount:  nphs,
		VNom:        vnom,
		VSec:        vsec,
		InstallType: installType,
		ConfigKey:   ConfigKey(nphs, installType, phases, rated),
		Oversize:    oversize,
	}
	return a, r.buildConfig(a, entry)
}

func (r *Resolver) buildConfig(a TransformerAssignment, entry catalog.Entry) TransformerConfig {
	c := TransformerConfig{
		Key:              a.ConfigKey,
		InstallType:      a.InstallType,
		Phases:           a.Phases,
		PowerRating:      a.RatedKVA,
		SecondaryVoltage: a.VSec,
		ShuntResistance:  100 / entry.PctNLL,
		ShuntReactance:   100 / entry.PctImag,
	}
	perPhase := a.RatedKVA
	if a.PhaseCount > 1 {
		perPhase /= float64(a.PhaseCount)
	}
	if a.Phases.Has(model.PhaseA) {
		c.PowerA = perPhase
	}
	if a.Phases.Has(model.PhaseB) {
		c.PowerB = perPhase
	}
	if a.Phases.Has(model.PhaseC) {
		c.PowerC = perPhase
	}

	pr, px := entry.PctR/100, entry.PctX/100
	if a.Phases.IsCenterTapped() {
		c.ConnectType = "SINGLE_PHASE_CENTER_TAPPED"
		c.PrimaryVoltage = r.opts.PrimaryVLN
		c.Resistance = pr * 0.5
		c.Resistance1 = pr
		c.Resistance2 = pr
		c.Reactance = px * 0.8
		c.Reactance1 = px * 0.4
		c.Reactance2 = px * 0.4
	} else {
		c.ConnectType = "WYE_WYE"
		c.PrimaryVoltage = r.opts.PrimaryVLL
		c.Resistance = pr
		c.Reactance = px
	}
	return c
}
