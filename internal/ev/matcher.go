// Package ev matches electrified dwellings to feasible daily driving and
// charging schedules drawn from a travel survey.
package ev

import (
	"errors"
	"math"
	"math/rand/v2"

	"feeder-populator/internal/model"
)

// Trip is one surveyed vehicle-day anchored at home.
// Times are seconds after midnight.
type Trip struct {
	DailyMiles float64 `json:"daily_miles"`
	Departure  int     `json:"departure"`
	Arrival    int     `json:"arrival"`
}

// DefaultMaxDraws bounds the rejection loop over the survey.
const DefaultMaxDraws = 10000

// Matcher draws schedules from a survey for vehicles of a fleet.
type Matcher struct {
	trips    []Trip
	fleet    Fleet
	MaxDraws int
}

func NewMatcher(trips []Trip, fleet Fleet) (*Matcher, error) {
	if len(trips) == 0 {
		return nil, errors.New("trip survey is empty")
	}
	if err := fleet.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{trips: trips, fleet: fleet, MaxDraws: DefaultMaxDraws}, nil
}

// Fleet returns the matcher's vehicle population.
func (m *Matcher) Fleet() Fleet { return m.fleet }

// Assign picks a vehicle model and charger level, then matches a schedule.
func (m *Matcher) Assign(rng *rand.Rand) (Schedule, error) {
	vehicle := m.fleet.SelectModel(rng.Float64())
	level, kw := 2, vehicle.Level2KW
	if rng.Float64() <= m.fleet.Level1Usage {
		level, kw = 1, m.fleet.Level1KW
	}
	s, err := m.Match(rng, vehicle.RangeMiles, vehicle.MilesPerKWh, kw)
	if err != nil {
		return Schedule{}, err
	}
	s.Model = vehicle.Name
	s.ChargerLevel = level
	s.ChargingEfficiency = m.fleet.ChargingEfficiency
	if err := ValidateSchedule(s); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Match draws survey trips until one fits inside the usable range, then
// stretches the home stay so the vehicle can fully recharge.
func (m *Matcher) Match(rng *rand.Rand, rangeMiles, milesPerKWh, maxChargeKW float64) (Schedule, error) {
	usable := rangeMiles * (1 - m.fleet.ReserveSOCPct/100)
	var trip Trip
	found := false
	for i := 0; i < m.MaxDraws; i++ {
		t := m.trips[rng.IntN(len(m.trips))]
		if t.DailyMiles > 0 && t.DailyMiles < usable {
			trip, found = t, true
			break
		}
	}
	if !found {
		return Schedule{}, model.Configf("ev", "", "no surveyed trip fits a %.0f mile usable range after %d draws", usable, m.MaxDraws)
	}
	miles := math.Max(trip.DailyMiles, 0.2*rangeMiles)

	chargeHours := miles * 1.10 / (maxChargeKW * milesPerKWh)
	minHome := chargeHours + 2
	if minHome >= 23 {
		return Schedule{}, model.Configf("ev", "", "%.1f h of charging at %.2f kW cannot fit in a day", chargeHours, maxChargeKW)
	}

	home := DurationBetween(trip.Arrival, trip.Departure)
	if need := int(math.Ceil(minHome*3600 - 1e-6)); home < need {
		home = need
	}
	home = min(home, maxHomeSecs)

	commute := commuteFor(home)
	s := Schedule{
		MaxChargeKW:   maxChargeKW,
		MilesPerKWh:   milesPerKWh,
		RangeMiles:    rangeMiles,
		DailyMiles:    miles,
		HomeDeparture: trip.Departure,
		HomeDuration:  home,
		HomeArrival:   wrap(trip.Departure - home),
		WorkArrival:   wrap(trip.Departure + commute/2),
		WorkDuration:  max(secondsPerDay-home-commute, 1),
	}
	return s, nil
}
