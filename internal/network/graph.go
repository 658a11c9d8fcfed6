// Package network classifies a parsed backbone into a graph of nodes and
// links and aggregates downstream load onto every link.
package network

import (
	"log"
	"sort"
	"strconv"

	"feeder-populator/internal/model"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

type pairKey struct{ a, b int64 }

func keyOf(x, y int64) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{x, y}
}

// Graph is the classified network. It is read-only after Build.
type Graph struct {
	nodes   []*model.NetworkNode
	byName  map[string]*model.NetworkNode
	ids     map[string]int64
	edges   []*model.NetworkEdge
	byPair  map[pairKey]*model.NetworkEdge
	degree  map[int64]int
	configs map[string]model.Properties
	swing   *model.NetworkNode

	g        *simple.UndirectedGraph
	tree     *path.Shortest
	warnings model.Warnings
}

// Build classifies every object of pm and validates the topology: exactly one
// swing node, no loops. The parsed model is never modified.
func Build(pm *model.ParsedModel) (*Graph, error) {
	if pm == nil {
		return nil, model.Configf("network", "", "parsed model is nil")
	}
	gr := &Graph{
		byName:   map[string]*model.NetworkNode{},
		ids:      map[string]int64{},
		byPair:   map[pairKey]*model.NetworkEdge{},
		degree:   map[int64]int{},
		configs:  map[string]model.Properties{},
		g:        simple.NewUndirectedGraph(),
		warnings: model.Warnings{Component: "Network"},
	}

	classes := pm.Classes()
	for _, class := range classes {
		oc := model.ObjectClass(class)
		if !oc.IsNode() {
			continue
		}
		for _, name := range pm.Names(class) {
			if err := gr.addNode(oc, name, pm.Objects[class][name]); err != nil {
				return nil, err
			}
		}
	}
	for _, name := range pm.Names(string(model.ClassTransformerConfiguration)) {
		gr.configs[name] = pm.Objects[string(model.ClassTransformerConfiguration)][name].Clone()
	}
	for _, class := range classes {
		oc := model.ObjectClass(class)
		if !oc.IsEdge() {
			continue
		}
		for _, name := range pm.Names(class) {
			if err := gr.addLink(oc, name, pm.Objects[class][name]); err != nil {
				return nil, err
			}
		}
	}
	orphans := map[string]bool{}
	for _, n := range gr.nodes {
		if n.Parent == "" {
			continue
		}
		if _, ok := gr.ids[n.Parent]; !ok {
			gr.warnings.Add(model.WarnOrphanObject, n.Name, "parent %s not found", n.Parent)
			orphans[n.Name] = true
			continue
		}
		if err := gr.addParent(n); err != nil {
			return nil, err
		}
	}

	if err := gr.findSwing(); err != nil {
		return nil, err
	}
	for _, n := range gr.nodes {
		if gr.degree[gr.ids[n.Name]] == 0 && len(gr.nodes) > 1 && !orphans[n.Name] {
			gr.warnings.Add(model.WarnOrphanObject, n.Name, "%s is not attached to the network", n.Class)
		}
	}
	if err := gr.checkLoopFree(); err != nil {
		return nil, err
	}
	gr.buildTree()

	log.Printf("[Network] Built graph: %d nodes, %d links, swing=%s, warnings=%d",
		len(gr.nodes), len(gr.edges), gr.swing.Name, gr.warnings.Len())
	return gr, nil
}

func (gr *Graph) addNode(class model.ObjectClass, name string, props model.Properties) error {
	if _, dup := gr.byName[name]; dup {
		return model.Configf("network", name, "object name used by more than one node-like object")
	}
	kva, err := model.LoadKVA(props)
	if err != nil {
		return model.Configf("network", name, "bad load: %v", err)
	}
	vnom, _ := strconv.ParseFloat(props["nominal_voltage"], 64)
	n := &model.NetworkNode{
		Name:           name,
		Class:          class,
		Phases:         model.ParsePhases(props["phases"]),
		Role:           model.RoleOrdinary,
		LoadKVA:        kva,
		LoadClass:      model.LoadClassFromProperty(props["load_class"]),
		NominalVoltage: vnom,
		Parent:         props["parent"],
		Props:          props.Clone(),
	}
	if props["bustype"] == "SWING" {
		n.Role = model.RoleSwing
	}
	id := int64(len(gr.nodes))
	gr.nodes = append(gr.nodes, n)
	gr.byName[name] = n
	gr.ids[name] = id
	gr.g.AddNode(simple.Node(id))
	return nil
}

func (gr *Graph) addLink(class model.ObjectClass, name string, props model.Properties) error {
	from, to := props["from"], props["to"]
	fid, okF := gr.ids[from]
	tid, okT := gr.ids[to]
	if !okF || !okT {
		gr.warnings.Add(model.WarnUnknownEndpoint, name, "%s %s -> %s references an unknown node; link skipped", class, from, to)
		return nil
	}
	if fid == tid {
		return model.Configf("network", name, "link connects %s to itself", from)
	}
	if prev, dup := gr.byPair[keyOf(fid, tid)]; dup {
		return model.Configf("network", name, "parallel to %s between %s and %s; the network must be loop-free", prev.Name, from, to)
	}
	e := &model.NetworkEdge{
		Name:          name,
		Class:         class,
		From:          from,
		To:            to,
		Phases:        model.ParsePhases(props["phases"]),
		Configuration: props["configuration"],
		Props:         props.Clone(),
	}
	gr.connect(e, fid, tid)
	return nil
}

func (gr *Graph) addParent(child *model.NetworkNode) error {
	pid := gr.ids[child.Parent]
	cid := gr.ids[child.Name]
	if pid == cid {
		return model.Configf("network", child.Name, "object is its own parent")
	}
	if _, dup := gr.byPair[keyOf(pid, cid)]; dup {
		// Already linked; the attachment adds no reachability.
		return nil
	}
	e := &model.NetworkEdge{
		Name:   "parent:" + child.Name,
		Class:  model.ClassParent,
		From:   child.Parent,
		To:     child.Name,
		Phases: child.Phases,
	}
	gr.connect(e, pid, cid)
	return nil
}

func (gr *Graph) connect(e *model.NetworkEdge, a, b int64) {
	gr.edges = append(gr.edges, e)
	gr.byPair[keyOf(a, b)] = e
	gr.degree[a]++
	gr.degree[b]++
	gr.g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
}

func (gr *Graph) findSwing() error {
	var swings []string
	for _, n := range gr.nodes {
		if n.IsSwing() {
			swings = append(swings, n.Name)
		}
	}
	switch len(swings) {
	case 0:
		return model.Configf("network", "", "no swing node (bustype SWING) found")
	case 1:
		gr.swing = gr.byName[swings[0]]
		return nil
	default:
		return model.Configf("network", "", "multiple swing nodes: %v", swings)
	}
}

// checkLoopFree requires every connected component to be a tree.
func (gr *Graph) checkLoopFree() error {
	for _, comp := range topo.ConnectedComponents(gr.g) {
		links := 0
		first := ""
		for _, n := range comp {
			links += gr.degree[n.ID()]
			name := gr.nodes[n.ID()].Name
			if first == "" || name < first {
				first = name
			}
		}
		links /= 2
		if links > len(comp)-1 {
			return model.Configf("network", first, "component has %d links for %d nodes; the network must be loop-free", links, len(comp))
		}
	}
	return nil
}

// Swing returns the source node.
func (gr *Graph) Swing() *model.NetworkNode { return gr.swing }

// Node looks up a node by name.
func (gr *Graph) Node(name string) (*model.NetworkNode, bool) {
	n, ok := gr.byName[name]
	return n, ok
}

// Nodes returns all nodes sorted by name.
func (gr *Graph) Nodes() []*model.NetworkNode {
	out := append([]*model.NetworkNode(nil), gr.nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Edges returns every edge, including parent attachments, sorted by name.
func (gr *Graph) Edges() []*model.NetworkEdge {
	out := append([]*model.NetworkEdge(nil), gr.edges...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EdgesOf returns the edges of one class sorted by name.
func (gr *Graph) EdgesOf(class model.ObjectClass) []*model.NetworkEdge {
	var out []*model.NetworkEdge
	for _, e := range gr.Edges() {
		if e.Class == class {
			out = append(out, e)
		}
	}
	return out
}

// Config returns a transformer configuration's properties.
func (gr *Graph) Config(name string) (model.Properties, bool) {
	p, ok := gr.configs[name]
	return p, ok
}

// Warnings returns the data-quality findings raised while building.
func (gr *Graph) Warnings() []model.Warning { return gr.warnings.Items() }
