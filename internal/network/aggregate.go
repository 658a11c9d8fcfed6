package network

import (
	"log"
	"sort"

	"feeder-populator/internal/model"

	"gonum.org/v1/gonum/graph/path"
)

// AggregatedLoad is the load carried by one link: the sum of every loaded
// node whose path to swing crosses it.
type AggregatedLoad struct {
	KVA    float64        `json:"kva"`
	Phases model.PhaseSet `json:"phases"`
}

// Injection is load attached at a named bus from outside the backbone, such as
// a large commercial building modelled separately.
type Injection struct {
	Bus    string         `yaml:"bus" json:"bus"`
	KVA    float64        `yaml:"kva" json:"kva"`
	Phases model.PhaseSet `yaml:"phases" json:"phases"`
}

// Aggregation holds per-link loads. It is computed once and read-only afterward.
type Aggregation struct {
	Edges       map[string]AggregatedLoad
	TotalKVA    float64
	LoadedNodes int
	// Warnings covers injections that could not be placed.
	Warnings []model.Warning
}

// Load returns the aggregated load on a link and whether any load crosses it.
func (a *Aggregation) Load(edge string) (AggregatedLoad, bool) {
	l, ok := a.Edges[edge]
	return l, ok
}

type source struct {
	name   string
	kva    float64
	phases model.PhaseSet
}

// Aggregate adds each loaded node's kVA (and each injection) to every link on
// its unique path to swing. Parent attachments carry reachability only and are
// never charged. The graph is not modified, so repeated calls are independent.
func (gr *Graph) Aggregate(injections []Injection) (*Aggregation, error) {
	warns := model.Warnings{Component: "Network"}
	sources := make([]source, 0, len(gr.nodes)+len(injections))
	for _, n := range gr.Nodes() {
		if n.LoadKVA > 0 {
			sources = append(sources, source{name: n.Name, kva: n.LoadKVA, phases: n.Phases})
		}
	}
	inj := append([]Injection(nil), injections...)
	sort.SliceStable(inj, func(i, j int) bool { return inj[i].Bus < inj[j].Bus })
	for _, in := range inj {
		n, ok := gr.byName[in.Bus]
		if !ok {
			warns.Add(model.WarnUnknownInjection, in.Bus, "injection of %.2f kVA targets an unknown bus; ignored", in.KVA)
			continue
		}
		phases := in.Phases
		if phases == 0 {
			phases = n.Phases
		}
		sources = append(sources, source{name: n.Name, kva: in.KVA, phases: phases})
	}

	swingID := gr.ids[gr.swing.Name]
	tree := gr.shortest()

	agg := &Aggregation{Edges: map[string]AggregatedLoad{}, Warnings: warns.Items()}
	for _, s := range sources {
		id := gr.ids[s.name]
		agg.TotalKVA += s.kva
		agg.LoadedNodes++
		if id == swingID {
			continue
		}
		route, _ := tree.To(id)
		if len(route) == 0 {
			return nil, model.Configf("network", s.name, "loaded node (%.2f kVA) has no path to swing %s", s.kva, gr.swing.Name)
		}
		for i := 1; i < len(route); i++ {
			e := gr.byPair[keyOf(route[i-1].ID(), route[i].ID())]
			if e == nil || e.IsParent() {
				continue
			}
			cur := agg.Edges[e.Name]
			cur.KVA += s.kva
			cur.Phases = cur.Phases.Union(s.phases)
			agg.Edges[e.Name] = cur
		}
	}
	for name, l := range agg.Edges {
		l.Phases = l.Phases.Normalize()
		agg.Edges[name] = l
	}

	log.Printf("[Network] Aggregated %.2f kVA from %d sources onto %d links", agg.TotalKVA, agg.LoadedNodes, len(agg.Edges))
	return agg, nil
}

// buildTree computes the shortest-path tree rooted at swing. Build calls it
// once so that later reads never write to the graph.
func (gr *Graph) buildTree() {
	t := path.DijkstraFrom(gr.g.Node(gr.ids[gr.swing.Name]), gr.g)
	gr.tree = &t
}

func (gr *Graph) shortest() *path.Shortest { return gr.tree }

// FedBy reports whether any link on node's path to swing satisfies match.
func (gr *Graph) FedBy(node string, match func(*model.NetworkEdge) bool) bool {
	id, ok := gr.ids[node]
	if !ok {
		return false
	}
	route, _ := gr.shortest().To(id)
	for i := 1; i < len(route); i++ {
		if e := gr.byPair[keyOf(route[i-1].ID(), route[i].ID())]; e != nil && match(e) {
			return true
		}
	}
	return false
}
