package main

import (
	"flag"
	"fmt"

	"feeder-populator/internal/config"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/model"
	"feeder-populator/internal/populate"
)

// Demo:
// - Build a small radial feeder in memory
// - Populate it with houses, EVs and commercial buildings
// - Print a few rows to show how the pieces fit together
func main() {
	services := flag.Int("services", 6, "Number of service transformers on the feeder")
	seed := flag.Uint64("seed", 1, "Run seed")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	evShare := flag.Float64("ev", 0.3, "EV adoption probability")
	outCSV := flag.String("out", "", "Optional path to write the houses CSV (e.g. results/houses.csv)")
	flag.Parse()

	cfg := config.Defaults()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		cfg = *loaded
	}
	cfg.Seed = *seed
	cfg.EV.Probability = *evShare

	res, err := populate.New().Run(populate.Inputs{
		Model:  demoFeeder(*services),
		Config: cfg,
		Trips:  demoSurvey(),
	})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Feeder with %d service transformers, seed=%d\n", *services, res.Seed)
	fmt.Printf("Total load %.1f kVA, %d transformers sized, %d fuses\n\n", res.Summary.TotalKVA, res.Summary.Transformers, res.Summary.Fuses)

	for _, t := range res.Sizing.Transformers {
		fmt.Printf("%-6s load=%6.2f kVA  rated=%5.1f kVA  config=%s\n", t.Edge, t.LoadKVA, t.RatedKVA, t.ConfigKey)
	}
	fmt.Println()

	shown := 0
	for _, h := range res.Houses {
		for _, d := range h.Dwellings {
			if shown == 10 {
				break
			}
			shown++
			car := "-"
			if d.Driving != nil {
				car = fmt.Sprintf("%s L%d %.0fmi", d.Driving.Model, d.Driving.ChargerLevel, d.Driving.DailyMiles)
			}
			fmt.Printf(
				"%-12s %-13s %-10s area=%6.0f  cool=%4.1f  heat=%4.1f  ev=%s\n",
				d.Name,
				h.BuildingType,
				h.IncomeLevel,
				d.FloorAreaSqFt,
				d.CoolingSetpoint,
				d.HeatingSetpoint,
				car,
			)
		}
	}
	fmt.Println()

	for _, c := range res.Commercial {
		fmt.Printf("%-6s %6.1f kVA  type=%-14s area=%7.0f sqft  zones=%d\n", c.Node, c.KVA, c.TypeTag, c.FloorAreaSqFt, c.Zones)
	}

	if *outCSV != "" {
		if err := populate.WriteHousesCSV(*outCSV, res.Houses); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	fmt.Printf("\nDone. %d dwellings, %d EVs, %d commercial, %d warnings\n",
		res.Summary.Dwellings, res.Summary.EVs, res.Summary.CommercialPoints, res.Summary.Warnings)
}

// demoFeeder lays n split-phase services along one primary, cycling the
// phases, plus two commercial loads at the end.
func demoFeeder(n int) *model.ParsedModel {
	objs := map[string]map[string]model.Properties{
		"substation":                {"sub": {"bustype": "SWING", "phases": "ABCN", "nominal_voltage": "7200"}},
		"node":                      {},
		"triplex_node":              {},
		"triplex_meter":             {},
		"load":                      {},
		"overhead_line":             {},
		"transformer":               {},
		"triplex_line":              {},
		"transformer_configuration": {"xc": {"secondary_voltage": "120", "install_type": "POLETOP"}},
	}
	prev := "sub"
	phases := []string{"A", "B", "C"}
	for i := 0; i < n; i++ {
		bus := fmt.Sprintf("p%d", i+1)
		ph := phases[i%3]
		objs["node"][bus] = model.Properties{"phases": "ABCN", "nominal_voltage": "7200"}
		objs["overhead_line"][fmt.Sprintf("ol%d", i+1)] = model.Properties{"from": prev, "to": bus, "phases": "ABCN"}

		sec := fmt.Sprintf("s%d", i+1)
		objs["triplex_node"][sec] = model.Properties{"phases": ph + "S"}
		objs["transformer"][fmt.Sprintf("xf%d", i+1)] = model.Properties{"from": bus, "to": sec, "phases": ph + "S", "configuration": "xc"}
		for j := 0; j < 2; j++ {
			meter := fmt.Sprintf("m%d_%d", i+1, j+1)
			kva := 3000 + 1500*((i+j)%4)
			objs["triplex_meter"][meter] = model.Properties{"phases": ph + "S", "power_12": fmt.Sprintf("%d+%dj", kva, kva/5)}
			objs["triplex_line"][fmt.Sprintf("tl%d_%d", i+1, j+1)] = model.Properties{"from": sec, "to": meter, "phases": ph + "S"}
		}
		prev = bus
	}
	objs["load"]["shop"] = model.Properties{"phases": "ABCN", "constant_power_A": "8000+2000j", "constant_power_B": "8000+2000j", "constant_power_C": "8000+2000j", "load_class": "C"}
	objs["load"]["office"] = model.Properties{"phases": "AN", "constant_power_A": "15000+3000j", "load_class": "C"}
	objs["overhead_line"]["ol_shop"] = model.Properties{"from": prev, "to": "shop", "phases": "ABCN"}
	objs["overhead_line"]["ol_office"] = model.Properties{"from": prev, "to": "office", "phases": "AN"}
	return &model.ParsedModel{Objects: objs}
}

// demoSurvey is a handful of commutes standing in for a household travel survey.
func demoSurvey() []ev.Trip {
	out := []ev.Trip{}
	for i, miles := range []float64{12, 18, 24, 31, 36, 42, 55, 8, 27, 63} {
		depart := 6*3600 + 15*60*(i%4)
		arrive := 16*3600 + 30*60 + 10*60*(i%3)
		out = append(out, ev.Trip{DailyMiles: miles, Departure: depart, Arrival: arrive})
	}
	return out
}
