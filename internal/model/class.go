package model

// ObjectClass is the class name of a parsed backbone object.
// Keep these values stable; they match the names used by the backbone format.
type ObjectClass string

const (
	ClassSubstation   ObjectClass = "substation"
	ClassNode         ObjectClass = "node"
	ClassLoad         ObjectClass = "load"
	ClassMeter        ObjectClass = "meter"
	ClassTriplexNode  ObjectClass = "triplex_node"
	ClassTriplexMeter ObjectClass = "triplex_meter"
	ClassHouse        ObjectClass = "house"

	ClassSwitch          ObjectClass = "switch"
	ClassFuse            ObjectClass = "fuse"
	ClassRecloser        ObjectClass = "recloser"
	ClassSectionalizer   ObjectClass = "sectionalizer"
	ClassRegulator       ObjectClass = "regulator"
	ClassTransformer     ObjectClass = "transformer"
	ClassOverheadLine    ObjectClass = "overhead_line"
	ClassUndergroundLine ObjectClass = "underground_line"
	ClassTriplexLine     ObjectClass = "triplex_line"
	ClassSeriesReactor   ObjectClass = "series_reactor"

	// ClassParent marks the synthetic edge between a child object and its parent.
	ClassParent ObjectClass = "parent"

	ClassTransformerConfiguration ObjectClass = "transformer_configuration"
)

var nodeClasses = map[ObjectClass]bool{
	ClassSubstation:   true,
	ClassNode:         true,
	ClassLoad:         true,
	ClassMeter:        true,
	ClassTriplexNode:  true,
	ClassTriplexMeter: true,
	ClassHouse:        true,
}

var edgeClasses = map[ObjectClass]bool{
	ClassSwitch:          true,
	ClassFuse:            true,
	ClassRecloser:        true,
	ClassSectionalizer:   true,
	ClassRegulator:       true,
	ClassTransformer:     true,
	ClassOverheadLine:    true,
	ClassUndergroundLine: true,
	ClassTriplexLine:     true,
	ClassSeriesReactor:   true,
}

// IsNode reports whether objects of this class become graph nodes.
func (c ObjectClass) IsNode() bool { return nodeClasses[c] }

// IsEdge reports whether objects of this class become graph edges.
func (c ObjectClass) IsEdge() bool { return edgeClasses[c] }

// LoadClass is the coarse category routing a load point to a population algorithm.
type LoadClass string

const (
	LoadResidential LoadClass = "R"
	LoadCommercial  LoadClass = "C"
	LoadIndustrial  LoadClass = "I"
)

// LoadClassFromProperty normalizes a load_class property value.
// Anything unrecognized is treated as residential, matching the backbone default.
func LoadClassFromProperty(v string) LoadClass {
	switch v {
	case "C", "c":
		return LoadCommercial
	case "I", "i":
		return LoadIndustrial
	default:
		return LoadResidential
	}
}
