package ev

import (
	"fmt"

	"feeder-populator/internal/model"
)

const (
	secondsPerDay = 24 * 3600
	maxHomeSecs   = 23*3600 - 1
	maxCommute    = 3600
	// Tolerance is how far recomputed schedule fields may drift from the
	// stored ones, in seconds.
	Tolerance = 60
)

// Schedule is one vehicle's daily driving and charging pattern.
// Times are seconds after midnight; durations are seconds.
type Schedule struct {
	Model              string  `json:"model"`
	ChargerLevel       int     `json:"charger_level"`
	MaxChargeKW        float64 `json:"max_charge_kw"`
	MilesPerKWh        float64 `json:"miles_per_kwh"`
	RangeMiles         float64 `json:"range_miles"`
	ChargingEfficiency float64 `json:"charging_efficiency"`

	DailyMiles    float64 `json:"daily_miles"`
	HomeArrival   int     `json:"home_arrival"`
	HomeDeparture int     `json:"home_departure"`
	HomeDuration  int     `json:"home_duration"`
	WorkArrival   int     `json:"work_arrival"`
	WorkDuration  int     `json:"work_duration"`
}

// CommuteDuration is the time on the road between leaving home and coming back.
func (s Schedule) CommuteDuration() int { return commuteFor(s.HomeDuration) }

func commuteFor(home int) int {
	return min(maxCommute, secondsPerDay-home)
}

// SecsFromHHMM converts a clock time like 1730 to seconds after midnight.
func SecsFromHHMM(hhmm int) (int, error) {
	h, m := hhmm/100, hhmm%100
	if hhmm < 0 || h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid HHMM time %d", hhmm)
	}
	return h*3600 + m*60, nil
}

// HHMM renders seconds after midnight as an HHMM clock value, dropping seconds.
func HHMM(secs int) int {
	secs = wrap(secs)
	return (secs/3600)*100 + (secs%3600)/60
}

// DurationBetween returns the time from arrival until the next leave,
// wrapping past midnight when leave is not later than arrival.
func DurationBetween(arrival, leave int) int {
	if leave > arrival {
		return leave - arrival
	}
	return leave - arrival + secondsPerDay
}

func wrap(secs int) int {
	secs %= secondsPerDay
	if secs < 0 {
		secs += secondsPerDay
	}
	return secs
}

// clockDiff is the shortest distance between two clock times.
func clockDiff(a, b int) int {
	d := wrap(a - b)
	if d > secondsPerDay/2 {
		d = secondsPerDay - d
	}
	return d
}

// ValidateSchedule recomputes departure, commute, work arrival and work
// duration from the stored fields and requires them to agree within
// Tolerance. It is a pure function.
func ValidateSchedule(s Schedule) error {
	if s.HomeDuration <= 0 || s.HomeDuration > maxHomeSecs {
		return model.Configf("ev", s.Model, "home duration %d s outside (0, 23h)", s.HomeDuration)
	}
	departure := wrap(s.HomeArrival + s.HomeDuration)
	if clockDiff(departure, s.HomeDeparture) > Tolerance {
		return model.Configf("ev", s.Model, "departure %04d does not follow arrival %04d plus %d s at home",
			HHMM(s.HomeDeparture), HHMM(s.HomeArrival), s.HomeDuration)
	}
	commute := commuteFor(s.HomeDuration)
	workArrival := wrap(departure + commute/2)
	if clockDiff(workArrival, s.WorkArrival) > Tolerance {
		return model.Configf("ev", s.Model, "work arrival %04d inconsistent with departure %04d", HHMM(s.WorkArrival), HHMM(departure))
	}
	work := max(secondsPerDay-s.HomeDuration-commute, 1)
	if abs(work-s.WorkDuration) > Tolerance {
		return model.Configf("ev", s.Model, "work duration %d s, expected %d s", s.WorkDuration, work)
	}
	if total := s.HomeDuration + commute + s.WorkDuration; abs(total-secondsPerDay) > Tolerance {
		return model.Configf("ev", s.Model, "day adds up to %d s", total)
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
