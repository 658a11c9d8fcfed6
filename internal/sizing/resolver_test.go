package sizing

import (
	"math"
	"testing"

	"feeder-populator/internal/catalog"
	"feeder-populator/internal/model"
	"feeder-populator/internal/network"

	"gotest.tools/v3/assert"
)

type objs = map[string]map[string]model.Properties

func resolve(t *testing.T, o objs, opts Options) *Result {
	t.Helper()
	g, err := network.Build(&model.ParsedModel{Objects: o})
	assert.NilError(t, err)
	agg, err := g.Aggregate(nil)
	assert.NilError(t, err)
	r, err := NewResolver(catalog.Default(), opts)
	assert.NilError(t, err)
	res, err := r.Resolve(g, agg)
	assert.NilError(t, err)
	return res
}

func serviceFeeder() objs {
	return objs{
		"substation": {"S": {"bustype": "SWING", "phases": "ABCN"}},
		"triplex_node": {"N": {"phases": "AS"}},
		"triplex_meter": {
			"L1": {"phases": "AS", "power_1": "5000+0j"},
			"L2": {"phases": "AS", "power_1": "7000+0j"},
		},
		"transformer": {"T": {"from": "S", "to": "N", "configuration": "xc"}},
		"triplex_line": {
			"tl1": {"from": "N", "to": "L1"},
			"tl2": {"from": "N", "to": "L2"},
		},
		"transformer_configuration": {"xc": {"secondary_voltage": "120", "install_type": "POLETOP"}},
	}
}

func TestWorkedExamplePicks15KVA(t *testing.T) {
	res := resolve(t, serviceFeeder(), DefaultOptions())
	assert.Equal(t, len(res.Transformers), 1)
	xf := res.Transformers[0]
	assert.Equal(t, xf.RatedKVA, 15.0)
	assert.Equal(t, xf.Phases.String(), "AS")
	assert.Equal(t, xf.VNom, 120.0)
	assert.Equal(t, xf.VSec, 120.0)
	assert.Equal(t, xf.ConfigKey, "XF1_POLETOP_AS_15p0")

	assert.Equal(t, len(res.Configs), 1)
	cfg := res.Configs[0]
	assert.Equal(t, cfg.ConnectType, "SINGLE_PHASE_CENTER_TAPPED")
	assert.Equal(t, cfg.PrimaryVoltage, 7200.0)
	assert.Assert(t, math.Abs(cfg.Resistance-0.0085) < 1e-12)
	assert.Assert(t, math.Abs(cfg.Resistance1-0.017) < 1e-12)
	assert.Assert(t, math.Abs(cfg.Reactance-0.01176) < 1e-12)
	assert.Assert(t, math.Abs(cfg.ShuntResistance-100/0.60) < 1e-9)
	assert.Equal(t, cfg.PowerA, 15.0)

	sp, ok := res.ServicePoint("N")
	assert.Assert(t, ok)
	assert.Equal(t, sp.Transformer, "T")
	assert.Assert(t, math.Abs(sp.LoadKVA-12) < 1e-9)
}

func TestThreePhaseGetsNeutralAndVoltageClass(t *testing.T) {
	o := objs{
		"substation":  {"S": {"bustype": "SWING"}},
		"load":        {"big": {"phases": "ABC", "constant_power_A": "40000+0j", "constant_power_B": "40000+0j", "constant_power_C": "40000+0j"}, "small": {"phases": "ABC", "constant_power_A": "20000+0j"}},
		"transformer": {"T1": {"from": "S", "to": "big"}, "T2": {"from": "S", "to": "small"}},
	}
	res := resolve(t, o, DefaultOptions())
	assert.Equal(t, len(res.Transformers), 2)

	t1, t2 := res.Transformers[0], res.Transformers[1]
	// 120 kVA * 1.2 = 144 -> 150 kVA, above the 100 kVA breakpoint.
	assert.Equal(t, t1.RatedKVA, 150.0)
	assert.Equal(t, t1.Phases.String(), "ABCN")
	assert.Equal(t, t1.VSec, 480.0)
	assert.Equal(t, t1.VNom, 277.0)
	assert.Equal(t, t1.ConfigKey, "XF3_PADMOUNT_ABCN_150p0")
	// 20 kVA * 1.2 = 24 -> 30 kVA three-phase.
	assert.Equal(t, t2.RatedKVA, 30.0)
	assert.Equal(t, t2.VSec, 208.0)
	assert.Equal(t, t2.VNom, 120.0)

	assert.Equal(t, res.Configs[0].ConnectType, "WYE_WYE")
	assert.Equal(t, res.Configs[0].PowerB, 50.0)
	assert.Equal(t, res.Configs[1].PowerB, 10.0)
	assert.Equal(t, len(res.ServicePoints), 0)
}

func TestConfigsAreDeduplicated(t *testing.T) {
	o := serviceFeeder()
	o["triplex_node"]["N2"] = model.Properties{"phases": "AS"}
	o["triplex_meter"]["L3"] = model.Properties{"phases": "AS", "power_1": "12000+0j"}
	o["transformer"]["T2"] = model.Properties{"from": "S", "to": "N2", "configuration": "xc"}
	o["triplex_line"]["tl3"] = model.Properties{"from": "N2", "to": "L3"}

	res := resolve(t, o, DefaultOptions())
	assert.Equal(t, len(res.Transformers), 2)
	assert.Equal(t, len(res.Configs), 1)
	assert.Equal(t, res.Transformers[0].ConfigKey, res.Transformers[1].ConfigKey)
}

func TestSubstationTransformerIsSkipped(t *testing.T) {
	o := serviceFeeder()
	o["node"] = map[string]model.Properties{"hv": {"bustype": "SWING"}}
	o["substation"]["S"] = model.Properties{"phases": "ABCN"}
	o["transformer"]["SUB"] = model.Properties{"from": "hv", "to": "S", "configuration": "subcfg"}
	o["transformer_configuration"]["subcfg"] = model.Properties{"secondary_voltage": "7200"}

	res := resolve(t, o, DefaultOptions())
	assert.Equal(t, len(res.Transformers), 1)
	assert.Equal(t, res.Transformers[0].Edge, "T")
	assert.Equal(t, len(res.Warnings), 1)
	assert.Equal(t, res.Warnings[0].Kind, model.WarnSkippedTransformer)
	assert.Equal(t, res.Warnings[0].Subject, "SUB")
}

func TestSinglePhaseTransformerIsAServicePoint(t *testing.T) {
	o := objs{
		"substation": {"S": {"bustype": "SWING", "phases": "ABCN"}},
		"node":       {"N": {"phases": "AN"}},
		"load": {
			"L1": {"phases": "AN", "constant_power_A": "5000+0j"},
			"L2": {"phases": "AN", "constant_power_A": "7000+0j"},
		},
		"transformer":   {"T": {"from": "S", "to": "N"}},
		"overhead_line": {"ol1": {"from": "N", "to": "L1"}, "ol2": {"from": "N", "to": "L2"}},
	}
	res := resolve(t, o, DefaultOptions())
	assert.Equal(t, len(res.Transformers), 1)
	xf := res.Transformers[0]
	assert.Equal(t, xf.PhaseCount, 1)
	assert.Equal(t, xf.RatedKVA, 15.0)
	assert.Assert(t, xf.IsService())

	sp, ok := res.ServicePoint("N")
	assert.Assert(t, ok)
	assert.Equal(t, sp.Transformer, "T")
	assert.Assert(t, math.Abs(sp.LoadKVA-12) < 1e-9)
}

func TestUnloadedTransformerWarns(t *testing.T) {
	o := serviceFeeder()
	o["triplex_node"]["idle"] = model.Properties{"phases": "BS"}
	o["transformer"]["T0"] = model.Properties{"from": "S", "to": "idle"}
	res := resolve(t, o, DefaultOptions())
	assert.Equal(t, len(res.Warnings), 1)
	assert.Equal(t, res.Warnings[0].Kind, model.WarnSkippedTransformer)
	assert.Equal(t, res.Warnings[0].Subject, "T0")
}

func TestTransformerRatingIsTight(t *testing.T) {
	r, err := NewResolver(catalog.Default(), DefaultOptions())
	assert.NilError(t, err)
	for _, nphs := range []int{1, 3} {
		table := catalog.Default().Transformers(nphs)
		for kva := 0.5; kva < 300; kva *= 1.37 {
			rating, _, oversize := r.TransformerRating(kva, nphs)
			target := kva * 1.2
			assert.Assert(t, rating >= target)
			if oversize {
				continue
			}
			for _, e := range table {
				if e.Rating < rating {
					assert.Assert(t, e.Rating < target, "%.1f would also carry %.2f", e.Rating, target)
				}
			}
		}
	}
}

func TestOversizeTransformerUsesMultipleOfLargest(t *testing.T) {
	r, err := NewResolver(catalog.Default(), DefaultOptions())
	assert.NilError(t, err)
	rating, entry, oversize := r.TransformerRating(900, 1)
	assert.Assert(t, oversize)
	assert.Equal(t, entry.Rating, 500.0)
	assert.Equal(t, rating, 1500.0)
}

func TestFuseAmpsAndDeviceScan(t *testing.T) {
	r, err := NewResolver(catalog.Default(), DefaultOptions())
	assert.NilError(t, err)

	assert.Assert(t, math.Abs(r.FuseAmps(7200, 1)-1000) < 1e-9)
	assert.Assert(t, math.Abs(r.FuseAmps(14400, 2)-1000) < 1e-9)
	assert.Assert(t, math.Abs(r.FuseAmps(12470*math.Sqrt(3), 3)-1000) < 1e-9)

	o := objs{
		"substation": {"S": {"bustype": "SWING"}},
		"node":       {"a": {}, "b": {}},
		"load": {
			"la": {"parent": "a", "phases": "A", "constant_power_A": "72000+0j"},
			"lb": {"parent": "b", "phases": "ABC", "constant_power_A": "9000000+0j"},
		},
		"fuse": {"f1": {"from": "S", "to": "a"}, "f2": {"from": "S", "to": "b"}},
	}
	res := resolve(t, o, DefaultOptions())
	assert.Equal(t, len(res.Fuses), 2)

	// 72 kVA on one phase: 10 A, target 25 A -> 40 A fuse.
	assert.Equal(t, res.Fuses[0].Device, catalog.DeviceFuse)
	assert.Equal(t, res.Fuses[0].CurrentLimit, 40.0)
	// 9 MVA three-phase: ~417 A, target ~1042 A -> 1200 A breaker.
	assert.Equal(t, res.Fuses[1].Device, catalog.DeviceBreaker)
	assert.Equal(t, res.Fuses[1].CurrentLimit, 1200.0)
}

func TestResolveIsIdempotent(t *testing.T) {
	g, err := network.Build(&model.ParsedModel{Objects: serviceFeeder()})
	assert.NilError(t, err)
	agg, err := g.Aggregate(nil)
	assert.NilError(t, err)
	r, err := NewResolver(catalog.Default(), DefaultOptions())
	assert.NilError(t, err)

	first, err := r.Resolve(g, agg)
	assert.NilError(t, err)
	second, err := r.Resolve(g, agg)
	assert.NilError(t, err)
	assert.DeepEqual(t, first, second)
}
