// Package commercial maps commercial load points onto a finite pool of
// building footprints. Each footprint is used at most once.
package commercial

import "feeder-populator/internal/model"

// DesignLoadDensity is the planning load per floor area, kVA/ft².
const DesignLoadDensity = 0.005

// Unclassified is the type tag of a load point no footprint fits.
const Unclassified = "unclassified"

// Assignment is the classification of one commercial load point.
type Assignment struct {
	Node          string         `json:"node"`
	KVA           float64        `json:"kva"`
	Phases        model.PhaseSet `json:"phases"`
	TargetSqFt    float64        `json:"target_sqft"`
	TypeTag       string         `json:"type"`
	FloorAreaSqFt float64        `json:"floor_area_sqft"`
	Zones         int            `json:"zones"`
	Unclassified  bool           `json:"unclassified"`
}

// PoolSummary reports what is left of the pool.
type PoolSummary struct {
	Count int     `json:"count"`
	KVA   float64 `json:"kva"`
}

// Classifier owns the pool. It is not safe for concurrent use; callers
// classify load points in a fixed order.
type Classifier struct {
	pool             []PoolEntry
	avgCommercialKVA float64
	warnings         *model.Warnings
}

// NewClassifier copies pool so the caller's slice is never modified.
func NewClassifier(pool []PoolEntry, avgCommercialKVA float64, warnings *model.Warnings) (*Classifier, error) {
	if avgCommercialKVA <= 0 {
		return nil, model.Configf("commercial", "avg_commercial_kva", "must be > 0")
	}
	for i, e := range pool {
		if e.FloorAreaSqFt <= 0 {
			return nil, model.Configf("commercial", e.TypeTag, "pool entry %d has non-positive floor area", i)
		}
	}
	if warnings == nil {
		warnings = &model.Warnings{Component: "Commercial"}
	}
	return &Classifier{
		pool:             append([]PoolEntry(nil), pool...),
		avgCommercialKVA: avgCommercialKVA,
		warnings:         warnings,
	}, nil
}

// Classify matches the remaining entry with the largest floor area not
// exceeding kva/DesignLoadDensity and removes it from the pool. Ties keep
// the entry that comes first in pool order.
func (c *Classifier) Classify(node string, kva float64, phases model.PhaseSet) Assignment {
	a := Assignment{
		Node:       node,
		KVA:        kva,
		Phases:     phases,
		TargetSqFt: kva / DesignLoadDensity,
		Zones:      int(kva/c.avgCommercialKVA + 0.5),
	}
	best := -1
	for i, e := range c.pool {
		if e.FloorAreaSqFt > a.TargetSqFt {
			continue
		}
		if best < 0 || e.FloorAreaSqFt > c.pool[best].FloorAreaSqFt {
			best = i
		}
	}
	if best < 0 {
		a.TypeTag = Unclassified
		a.Unclassified = true
		c.warnings.Add(model.WarnUnclassifiedLoad, node, "no pool building fits %.0f sqft (%.1f kVA)", a.TargetSqFt, kva)
		return a
	}
	e := c.pool[best]
	c.pool = append(c.pool[:best], c.pool[best+1:]...)
	a.TypeTag = e.TypeTag
	a.FloorAreaSqFt = e.FloorAreaSqFt
	return a
}

// Remaining returns the unmatched entry count and their planning load.
func (c *Classifier) Remaining() PoolSummary {
	area := 0.0
	for _, e := range c.pool {
		area += e.FloorAreaSqFt
	}
	return PoolSummary{Count: len(c.pool), KVA: area * DesignLoadDensity}
}

func (c *Classifier) Warnings() *model.Warnings { return c.warnings }
