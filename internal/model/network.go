package model

import "sort"

// Properties is the property bag of one parsed object.
type Properties map[string]string

// Clone returns a copy so callers can keep a read-only snapshot.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ParsedModel is the pre-parsed backbone: class name -> object name -> properties.
//
// Example (JSON):
//
//	{
//	  "objects": {
//	    "substation": {"sub": {"bustype": "SWING", "phases": "ABCN"}},
//	    "transformer": {"xf1": {"from": "sub", "to": "n1", "configuration": "xc1"}}
//	  }
//	}
type ParsedModel struct {
	Objects map[string]map[string]Properties `json:"objects" yaml:"objects"`
}

// Classes returns class names in sorted order.
func (m *ParsedModel) Classes() []string {
	out := make([]string, 0, len(m.Objects))
	for c := range m.Objects {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Names returns the object names of one class in sorted order.
func (m *ParsedModel) Names(class string) []string {
	objs := m.Objects[class]
	out := make([]string, 0, len(objs))
	for n := range objs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Object looks up a single object's properties.
func (m *ParsedModel) Object(class, name string) (Properties, bool) {
	objs, ok := m.Objects[class]
	if !ok {
		return nil, false
	}
	p, ok := objs[name]
	return p, ok
}

// NodeRole distinguishes the source bus from every other node.
type NodeRole string

const (
	RoleOrdinary NodeRole = "ordinary"
	RoleSwing    NodeRole = "swing"
)

// NetworkNode is a node-like object after classification.
// Units:
// - LoadKVA: kVA (apparent power magnitude, summed over load properties)
// - NominalVoltage: V (line-to-neutral, as carried by the backbone)
type NetworkNode struct {
	Name           string
	Class          ObjectClass
	Phases         PhaseSet
	Role           NodeRole
	LoadKVA        float64
	LoadClass      LoadClass
	NominalVoltage float64
	Parent         string
	Props          Properties
}

func (n *NetworkNode) IsSwing() bool { return n.Role == RoleSwing }

// NetworkEdge is a link-like object, or the synthetic attachment between a
// child node and its parent (Class == ClassParent).
type NetworkEdge struct {
	Name          string
	Class         ObjectClass
	From          string
	To            string
	Phases        PhaseSet
	Configuration string
	Props         Properties
}

// IsParent reports whether the edge is a reachability-only parent attachment.
func (e *NetworkEdge) IsParent() bool { return e.Class == ClassParent }
