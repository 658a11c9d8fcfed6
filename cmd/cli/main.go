package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"feeder-populator/internal/catalog"
	"feeder-populator/internal/config"
	"feeder-populator/internal/data"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/network"
	"feeder-populator/internal/population"
	"feeder-populator/internal/populate"
	"feeder-populator/internal/sizing"
	"feeder-populator/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "populate":
		cmdPopulate(os.Args[2:])
	case "size":
		cmdSize(os.Args[2:])
	case "catalog":
		cmdCatalog(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli populate --model feeder.json --config examples/config.yaml --out results/")
	fmt.Println("  cli size --model feeder.json --out results/equipment.csv")
	fmt.Println("  cli catalog --file examples/catalog.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - populate writes houses.csv, equipment.csv, commercial.csv and result.json")
	fmt.Println("  - EVs need a trip survey: survey_file in the config, --survey, or TRIP_SURVEY_FILE")
}

func cmdPopulate(args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	modelPath := fs.String("model", "", "Path to the parsed backbone (JSON or YAML)")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	seed := fs.Uint64("seed", 0, "Optional: override the config seed (0=keep)")
	surveyPath := fs.String("survey", "", "Optional: trip survey CSV")
	outDir := fs.String("out", "results", "Output directory")
	dbPath := fs.String("db", "", "Optional: also store the run in this SQLite file")
	_ = fs.Parse(args)

	if *modelPath == "" {
		fmt.Println("--model is required")
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	if *seed != 0 {
		cfg.Seed = *seed
	}
	pm, err := data.LoadModel(*modelPath)
	if err != nil {
		panic(err)
	}

	in := populate.Inputs{
		Model:   pm,
		Config:  *cfg,
		Catalog: loadCatalog(cfg.CatalogFile),
	}
	if cfg.MetadataFile != "" {
		meta, err := population.LoadMetadataFile(cfg.MetadataFile)
		if err != nil {
			panic(err)
		}
		in.Metadata = &meta
	}
	if cfg.EV.Probability > 0 {
		in.Trips = loadSurvey(*surveyPath, cfg)
	}

	res, err := populate.New().Run(in)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}
	if err := populate.WriteHousesCSV(filepath.Join(*outDir, "houses.csv"), res.Houses); err != nil {
		panic(err)
	}
	if err := populate.WriteEquipmentCSV(filepath.Join(*outDir, "equipment.csv"), res.Sizing); err != nil {
		panic(err)
	}
	if err := populate.WriteCommercialCSV(filepath.Join(*outDir, "commercial.csv"), res.Commercial); err != nil {
		panic(err)
	}
	if err := data.SaveJSON(res, filepath.Join(*outDir, "result.json")); err != nil {
		panic(err)
	}

	if *dbPath != "" {
		st, err := store.NewStore(*dbPath)
		if err != nil {
			panic(err)
		}
		defer st.Close()
		if err := st.SaveRun(context.Background(), res); err != nil {
			panic(err)
		}
		fmt.Printf("Stored run %s in %s\n", res.RunID, *dbPath)
	}

	s := res.Summary
	fmt.Printf("Run %s seed=%d\n", res.RunID, res.Seed)
	fmt.Printf("Network: %d nodes, %d edges, %d loaded, %.1f kVA\n", s.Nodes, s.Edges, s.LoadedNodes, s.TotalKVA)
	fmt.Printf("Sizing: %d transformers (%d configs), %d fuses\n", s.Transformers, s.TransformerConfigs, s.Fuses)
	fmt.Printf("Residential: %d dwellings at %d points, %d small loads, %d EVs\n", s.Dwellings, s.HousePoints, s.SmallLoads, s.EVs)
	fmt.Printf("Commercial: %d points (%d unclassified), pool left %d (%.1f kVA)\n", s.CommercialPoints, s.Unclassified, res.Pool.Count, res.Pool.KVA)
	fmt.Printf("Warnings: %d\n", s.Warnings)
	fmt.Printf("Wrote results to %s\n", *outDir)
}

func cmdSize(args []string) {
	fs := flag.NewFlagSet("size", flag.ExitOnError)
	modelPath := fs.String("model", "", "Path to the parsed backbone (JSON or YAML)")
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	outPath := fs.String("out", "", "Optional: write equipment CSV here")
	_ = fs.Parse(args)

	if *modelPath == "" {
		fmt.Println("--model is required")
		os.Exit(2)
	}

	cfg := loadConfig(*cfgPath)
	pm, err := data.LoadModel(*modelPath)
	if err != nil {
		panic(err)
	}
	g, err := network.Build(pm)
	if err != nil {
		panic(err)
	}
	agg, err := g.Aggregate(cfg.Injections)
	if err != nil {
		panic(err)
	}
	resolver, err := sizing.NewResolver(loadCatalog(cfg.CatalogFile), cfg.SizingOptions())
	if err != nil {
		panic(err)
	}
	res, err := resolver.Resolve(g, agg)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%-20s %-8s %-10s %-10s %-10s %-24s\n", "transformer", "phases", "load_kva", "rated_kva", "v_sec", "config")
	for _, t := range res.Transformers {
		fmt.Printf("%-20s %-8s %-10.2f %-10.1f %-10.1f %-24s\n", t.Edge, t.Phases, t.LoadKVA, t.RatedKVA, t.VSec, t.ConfigKey)
	}
	fmt.Printf("%-20s %-8s %-10s %-10s %-10s\n", "fuse", "phases", "load_kva", "limit_a", "device")
	for _, f := range res.Fuses {
		fmt.Printf("%-20s %-8s %-10.2f %-10.0f %-10s\n", f.Edge, f.Phases, f.LoadKVA, f.CurrentLimit, f.Device)
	}
	fmt.Printf("Total load %.1f kVA over %d loaded nodes, %d warnings\n", agg.TotalKVA, agg.LoadedNodes, len(res.Warnings))

	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			panic(err)
		}
		if err := populate.WriteEquipmentCSV(*outPath, res); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote equipment to %s\n", *outPath)
	}
}

func cmdCatalog(args []string) {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	file := fs.String("file", "", "Optional: catalog YAML; its tables replace the built-in ones")
	_ = fs.Parse(args)

	cat := loadCatalog(*file)
	printTable := func(name string, t catalog.Table) {
		fmt.Printf("%s:\n", name)
		fmt.Printf("  %-10s %-8s %-8s %-8s %-8s\n", "kva", "%r", "%x", "%nll", "%imag")
		for _, e := range t {
			fmt.Printf("  %-10.1f %-8.3f %-8.3f %-8.3f %-8.3f\n", e.Rating, e.PctR, e.PctX, e.PctNLL, e.PctImag)
		}
	}
	printTable("three_phase", cat.ThreePhase)
	printTable("single_phase", cat.SinglePhase)
	fmt.Printf("fuses (A): %v\n", cat.Fuses)
	fmt.Printf("reclosers (A): %v\n", cat.Reclosers)
	fmt.Printf("breakers (A): %v\n", cat.Breakers)
	fmt.Printf("oversize placeholder (A): %.0f\n", catalog.OversizeAmps)
}

func loadConfig(path string) *config.Config {
	if path == "" {
		cfg := config.Defaults()
		return &cfg
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func loadCatalog(path string) *catalog.Catalog {
	if path == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		panic(err)
	}
	return cat
}

// loadSurvey prefers the flag, then the config, then TRIP_SURVEY_FILE.
func loadSurvey(flagPath string, cfg *config.Config) []ev.Trip {
	path := flagPath
	if path == "" {
		path = cfg.SurveyFile
	}
	if path == "" {
		path = data.GetDefaultSurveyPath()
	}
	if path == "" {
		panic(fmt.Errorf("ev probability is %.2f but no trip survey was given", cfg.EV.Probability))
	}
	trips, err := data.LoadTripSurveyCSV(path, cfg.EV.Fleet().MaxRange())
	if err != nil {
		panic(err)
	}
	return trips
}
