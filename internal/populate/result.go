package populate

import (
	"time"

	"feeder-populator/internal/commercial"
	"feeder-populator/internal/model"
	"feeder-populator/internal/population"
	"feeder-populator/internal/sizing"
)

// EdgeLoad is one link's aggregated downstream load.
type EdgeLoad struct {
	Edge   string         `json:"edge"`
	Class  string         `json:"class"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	KVA    float64        `json:"kva"`
	Phases model.PhaseSet `json:"phases"`
}

// Summary holds the headline counts of a run.
type Summary struct {
	Nodes              int     `json:"nodes"`
	Edges              int     `json:"edges"`
	LoadedNodes        int     `json:"loaded_nodes"`
	TotalKVA           float64 `json:"total_kva"`
	Transformers       int     `json:"transformers"`
	TransformerConfigs int     `json:"transformer_configs"`
	Fuses              int     `json:"fuses"`
	HousePoints        int     `json:"house_points"`
	Dwellings          int     `json:"dwellings"`
	SmallLoads         int     `json:"small_loads"`
	EVs                int     `json:"evs"`
	CommercialPoints   int     `json:"commercial_points"`
	Unclassified       int     `json:"unclassified"`
	Warnings           int     `json:"warnings"`
}

// Result is everything one run produced. The parsed input is never
// modified; every table here is a side table keyed by object name.
type Result struct {
	RunID     string    `json:"run_id"`
	Seed      uint64    `json:"seed"`
	CreatedAt time.Time `json:"created_at"`

	EdgeLoads []EdgeLoad     `json:"edge_loads"`
	Sizing    *sizing.Result `json:"sizing"`

	Houses      []population.HouseAssignment     `json:"houses"`
	SmallLoads  []population.SmallLoadAssignment `json:"small_loads"`
	Reservation population.ReservationReport     `json:"reservation"`

	Commercial []commercial.Assignment `json:"commercial"`
	Pool       commercial.PoolSummary  `json:"pool_remaining"`

	Warnings []model.Warning `json:"warnings"`
	Summary  Summary         `json:"summary"`
}

func summarize(r *Result, nodes, edges, loaded int, total float64) Summary {
	s := Summary{
		Nodes:       nodes,
		Edges:       edges,
		LoadedNodes: loaded,
		TotalKVA:    total,
		HousePoints: len(r.Houses),
		SmallLoads:  len(r.SmallLoads),
		Warnings:    len(r.Warnings),
	}
	if r.Sizing != nil {
		s.Transformers = len(r.Sizing.Transformers)
		s.TransformerConfigs = len(r.Sizing.Configs)
		s.Fuses = len(r.Sizing.Fuses)
	}
	for _, h := range r.Houses {
		s.Dwellings += len(h.Dwellings)
		for _, d := range h.Dwellings {
			if d.Driving != nil {
				s.EVs++
			}
		}
	}
	s.CommercialPoints = len(r.Commercial)
	for _, c := range r.Commercial {
		if c.Unclassified {
			s.Unclassified++
		}
	}
	return s
}
