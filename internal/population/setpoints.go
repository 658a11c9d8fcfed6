package population

import (
	"math"

	"feeder-populator/internal/model"
)

// ConditionalHeating derives P(heating bin | cooling bin) from the marginal
// histograms so that no dwelling heats above where it cools.
//
// Cooling bin 0 only admits heating bin 0. For cooling bin c > 0 the heating
// bins 1..allowed[c]-1 keep their marginal weight and bin 0 gets the margin
// left after cooling bin 0 took its share, all renormalized.
func ConditionalHeating(cool, heat []SetpointBin, allowed []int) ([][]float64, error) {
	if len(allowed) != len(cool) {
		return nil, model.Configf("population", "allowed_heating_bins", "need %d cutoffs, have %d", len(cool), len(allowed))
	}
	margin := math.Max(heat[0].Probability-cool[0].Probability, 0)
	out := make([][]float64, len(cool))
	for c := range cool {
		row := make([]float64, len(heat))
		if c == 0 {
			row[0] = 1
			out[c] = row
			continue
		}
		limit := min(allowed[c], len(heat))
		denom := margin
		for h := 1; h < limit; h++ {
			denom += heat[h].Probability
		}
		if denom <= 0 {
			return nil, model.Configf("population", "heating_setpoints", "cooling bin %d leaves no heating bin with weight", c)
		}
		row[0] = margin / denom
		for h := 1; h < limit; h++ {
			row[h] = heat[h].Probability / denom
		}
		out[c] = row
	}
	return out, nil
}

// EnforceDeadband widens a cooling/heating pair symmetrically about its
// midpoint until cooling sits at least deadband above heating.
func EnforceDeadband(cooling, heating, deadband float64) (float64, float64) {
	if cooling-heating >= deadband {
		return cooling, heating
	}
	mid := (cooling + heating) / 2
	return mid + deadband/2, mid - deadband/2
}

// Reservation tracks how many dwellings each (building, cooling, heating)
// cell was expected to receive. Draws decrement the counters; the counters
// are diagnostics only and may go negative.
type Reservation struct {
	initial [3][][]int
	counts  [3][][]int
}

// ReservationCell is one over-drawn cell.
type ReservationCell struct {
	BuildingType string `json:"building_type"`
	CoolingBin   int    `json:"cooling_bin"`
	HeatingBin   int    `json:"heating_bin"`
	Reserved     int    `json:"reserved"`
	Remaining    int    `json:"remaining"`
}

// ReservationReport summarizes the counters after a run.
type ReservationReport struct {
	Reserved  int               `json:"reserved"`
	Drawn     int               `json:"drawn"`
	Remaining int               `json:"remaining"`
	Overdrawn []ReservationCell `json:"overdrawn,omitempty"`
}

// NewReservation splits planned dwelling counts per building type across
// the setpoint cells: round(n_b × P(cool) × P(heat | cool)).
func (s *Sampler) NewReservation(planned [3]int) *Reservation {
	r := &Reservation{}
	for _, b := range buildingTypes {
		cool := s.meta.Cooling.At(b)
		cond := s.cond[b]
		r.initial[b] = make([][]int, len(cool))
		r.counts[b] = make([][]int, len(cool))
		for c := range cool {
			r.initial[b][c] = make([]int, len(cond[c]))
			r.counts[b][c] = make([]int, len(cond[c]))
			for h, p := range cond[c] {
				n := int(math.Round(float64(planned[b]) * cool[c].Probability * p))
				r.initial[b][c][h] = n
				r.counts[b][c][h] = n
			}
		}
	}
	return r
}

// Take records one dwelling drawn into a cell.
func (r *Reservation) Take(b BuildingType, cool, heat int) {
	if r == nil {
		return
	}
	r.counts[b][cool][heat]--
}

func (r *Reservation) Report() ReservationReport {
	var rep ReservationReport
	if r == nil {
		return rep
	}
	for _, b := range buildingTypes {
		for c := range r.counts[b] {
			for h, left := range r.counts[b][c] {
				init := r.initial[b][c][h]
				rep.Reserved += init
				rep.Remaining += left
				rep.Drawn += init - left
				if left < 0 {
					rep.Overdrawn = append(rep.Overdrawn, ReservationCell{
						BuildingType: b.String(),
						CoolingBin:   c,
						HeatingBin:   h,
						Reserved:     init,
						Remaining:    left,
					})
				}
			}
		}
	}
	return rep
}
