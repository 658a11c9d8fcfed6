// Package populate runs the full pipeline over one backbone: graph build,
// load aggregation, equipment sizing, residential population and commercial
// classification.
package populate

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"time"

	"feeder-populator/internal/catalog"
	"feeder-populator/internal/commercial"
	"feeder-populator/internal/config"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/model"
	"feeder-populator/internal/network"
	"feeder-populator/internal/population"
	"feeder-populator/internal/sampling"
	"feeder-populator/internal/sizing"

	"github.com/google/uuid"
)

// poolStreamKey seeds the commercial pool draw; it cannot collide with a
// node name because node names never contain spaces.
const poolStreamKey = "commercial pool"

// Inputs are the run inputs. Nil tables fall back to the built-in defaults;
// a nil survey disables EV schedules.
type Inputs struct {
	Model    *model.ParsedModel
	Config   config.Config
	Catalog  *catalog.Catalog
	Metadata *population.Metadata
	Trips    []ev.Trip
	Pool     []commercial.PoolEntry
}

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run executes one population over in.Model.
func (e *Engine) Run(in Inputs) (*Result, error) {
	if in.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}
	cfg := in.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cat := in.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	meta := population.DefaultMetadata()
	if in.Metadata != nil {
		meta = *in.Metadata
	}

	g, err := network.Build(in.Model)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	agg, err := g.Aggregate(cfg.Injections)
	if err != nil {
		return nil, fmt.Errorf("aggregate load: %w", err)
	}

	resolver, err := sizing.NewResolver(cat, cfg.SizingOptions())
	if err != nil {
		return nil, err
	}
	sized, err := resolver.Resolve(g, agg)
	if err != nil {
		return nil, fmt.Errorf("size equipment: %w", err)
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Seed:      cfg.Seed,
		CreatedAt: time.Now().UTC(),
		EdgeLoads: edgeLoads(g, agg),
		Sizing:    sized,
	}

	if err := e.populateResidential(res, g, sized, cfg, meta, in.Trips); err != nil {
		return nil, err
	}

	classifier, err := e.classifyCommercial(res, g, cfg, in.Pool)
	if err != nil {
		return nil, err
	}

	res.Warnings = append(res.Warnings, g.Warnings()...)
	res.Warnings = append(res.Warnings, agg.Warnings...)
	res.Warnings = append(res.Warnings, sized.Warnings...)
	res.Warnings = append(res.Warnings, classifier.Warnings().Items()...)
	res.Summary = summarize(res, len(g.Nodes()), len(g.Edges()), agg.LoadedNodes, agg.TotalKVA)

	log.Printf("[Populate] Run %s: %d dwellings at %d points, %d small loads, %d commercial (%d unclassified), %d warnings",
		res.RunID, res.Summary.Dwellings, res.Summary.HousePoints, res.Summary.SmallLoads,
		res.Summary.CommercialPoints, res.Summary.Unclassified, res.Summary.Warnings)
	return res, nil
}

func edgeLoads(g *network.Graph, agg *network.Aggregation) []EdgeLoad {
	var out []EdgeLoad
	for _, e := range g.Edges() {
		load, ok := agg.Load(e.Name)
		if !ok {
			continue
		}
		out = append(out, EdgeLoad{
			Edge:   e.Name,
			Class:  string(e.Class),
			From:   e.From,
			To:     e.To,
			KVA:    load.KVA,
			Phases: load.Phases,
		})
	}
	return out
}

// residentialPoints lists the secondary bus of every sized service
// transformer (single-phase or split-phase), plus residential loads that no
// service transformer feeds. Industrial and commercial loads are never
// populated, and neither is a service point whose load they supply.
func residentialPoints(g *network.Graph, sized *sizing.Result) []population.LoadPoint {
	isService := map[string]bool{}
	for _, sp := range sized.ServicePoints {
		isService[sp.Transformer] = true
	}
	service := func(e *model.NetworkEdge) bool { return isService[e.Name] }
	nonResidential := map[string]string{}
	for _, n := range g.Nodes() {
		if n.LoadKVA <= 0 || (n.LoadClass != model.LoadCommercial && n.LoadClass != model.LoadIndustrial) {
			continue
		}
		class := n.LoadClass
		g.FedBy(n.Name, func(e *model.NetworkEdge) bool {
			if service(e) {
				nonResidential[e.Name] = string(class)
			}
			return false
		})
	}

	var pts []population.LoadPoint
	served := map[string]bool{}
	for _, sp := range sized.ServicePoints {
		served[sp.Node] = true
		if class, ok := nonResidential[sp.Transformer]; ok {
			log.Printf("[Populate] Skipping service point %s: feeds load class %s", sp.Node, class)
			continue
		}
		pts = append(pts, population.LoadPoint{
			Node:        sp.Node,
			Transformer: sp.Transformer,
			KVA:         sp.LoadKVA,
			Phases:      sp.Phases,
			VNom:        sp.VNom,
		})
	}

	for _, n := range g.Nodes() {
		if n.LoadKVA <= 0 || n.IsSwing() || served[n.Name] {
			continue
		}
		if n.LoadClass != model.LoadResidential {
			continue
		}
		if n.Phases.IsCenterTapped() || g.FedBy(n.Name, service) {
			continue
		}
		pts = append(pts, population.LoadPoint{
			Node:   n.Name,
			KVA:    n.LoadKVA,
			Phases: n.Phases,
			VNom:   n.NominalVoltage,
		})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Node < pts[j].Node })
	return pts
}

func (e *Engine) populateResidential(res *Result, g *network.Graph, sized *sizing.Result, cfg config.Config, meta population.Metadata, trips []ev.Trip) error {
	var matcher *ev.Matcher
	if len(trips) > 0 {
		m, err := ev.NewMatcher(trips, cfg.EV.Fleet())
		if err != nil {
			return fmt.Errorf("ev matcher: %w", err)
		}
		if cfg.EV.MaxDraws > 0 {
			m.MaxDraws = cfg.EV.MaxDraws
		}
		matcher = m
	}
	sampler, err := population.NewSampler(meta, cfg.PopulationOptions(), matcher)
	if err != nil {
		return err
	}

	points := residentialPoints(g, sized)
	plans := make([]population.Plan, len(points))
	streams := make([]*rand.Rand, len(points))
	var planned [3]int
	for i, pt := range points {
		streams[i] = sampling.Stream(cfg.Seed, pt.Node)
		plans[i] = sampler.Plan(streams[i], pt)
		if !plans[i].Small {
			planned[plans[i].Building] += plans[i].HouseCount
		}
	}

	reservation := sampler.NewReservation(planned)
	for i, p := range plans {
		if p.Small {
			res.SmallLoads = append(res.SmallLoads, p.SmallLoad())
			continue
		}
		h, err := sampler.Populate(streams[i], p, reservation)
		if err != nil {
			return fmt.Errorf("populate %s: %w", p.Point.Node, err)
		}
		res.Houses = append(res.Houses, h)
	}
	res.Reservation = reservation.Report()
	if n := len(res.Reservation.Overdrawn); n > 0 {
		log.Printf("[Populate] %d setpoint cells drew more dwellings than reserved", n)
	}
	return nil
}

func (e *Engine) classifyCommercial(res *Result, g *network.Graph, cfg config.Config, pool []commercial.PoolEntry) (*commercial.Classifier, error) {
	var nodes []*model.NetworkNode
	for _, n := range g.Nodes() {
		if n.LoadClass == model.LoadCommercial && n.LoadKVA > 0 {
			nodes = append(nodes, n)
		}
	}
	if pool == nil {
		spec := commercial.DefaultPoolSpec()
		if cfg.Commercial.Pool != nil {
			spec = *cfg.Commercial.Pool
		}
		size := max(cfg.Commercial.PoolSize, 2*len(nodes))
		p, err := commercial.GeneratePool(sampling.Stream(cfg.Seed, poolStreamKey), spec, size)
		if err != nil {
			return nil, fmt.Errorf("commercial pool: %w", err)
		}
		pool = p
	}
	classifier, err := commercial.NewClassifier(pool, cfg.AvgCommercialKVA, &model.Warnings{Component: "Commercial"})
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		res.Commercial = append(res.Commercial, classifier.Classify(n.Name, n.LoadKVA, n.Phases))
	}
	res.Pool = classifier.Remaining()
	return classifier, nil
}
