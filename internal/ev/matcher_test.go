package ev

import (
	"testing"

	"feeder-populator/internal/model"
	"feeder-populator/internal/sampling"

	"gotest.tools/v3/assert"
)

func hhmm(t *testing.T, v int) int {
	t.Helper()
	s, err := SecsFromHHMM(v)
	assert.NilError(t, err)
	return s
}

func survey(t *testing.T) []Trip {
	return []Trip{
		{DailyMiles: 32, Departure: hhmm(t, 730), Arrival: hhmm(t, 1745)},
		{DailyMiles: 12, Departure: hhmm(t, 900), Arrival: hhmm(t, 1200)},
		{DailyMiles: 55, Departure: hhmm(t, 2300), Arrival: hhmm(t, 700)},
		{DailyMiles: 400, Departure: hhmm(t, 600), Arrival: hhmm(t, 2100)},
		{DailyMiles: 0, Departure: hhmm(t, 800), Arrival: hhmm(t, 1800)},
	}
}

func TestGeneratedSchedulesAreSelfConsistent(t *testing.T) {
	m, err := NewMatcher(survey(t), DefaultFleet())
	assert.NilError(t, err)
	rng := sampling.Stream(11, "ev")
	for i := 0; i < 500; i++ {
		s, err := m.Assign(rng)
		assert.NilError(t, err)
		assert.NilError(t, ValidateSchedule(s))
		assert.Equal(t, s.HomeDuration+s.CommuteDuration()+s.WorkDuration, 24*3600)
		assert.Equal(t, s.ChargingEfficiency, DefaultFleet().ChargingEfficiency)
		assert.Assert(t, s.DailyMiles <= s.RangeMiles*(1-0.20), "%.1f miles on a %.0f mile range", s.DailyMiles, s.RangeMiles)
		assert.Assert(t, s.DailyMiles >= 0.2*s.RangeMiles)
	}
}

func TestShortHomeStayIsExtended(t *testing.T) {
	trips := []Trip{{DailyMiles: 40, Departure: hhmm(t, 800), Arrival: hhmm(t, 600)}}
	m, err := NewMatcher(trips, DefaultFleet())
	assert.NilError(t, err)

	// 40 miles * 1.1 / (1.0 kW * 4 mi/kWh) = 11 h charging + 2 h buffer.
	s, err := m.Match(sampling.Stream(1, "x"), 200, 4, 1.0)
	assert.NilError(t, err)
	assert.Equal(t, s.HomeDuration, 13*3600)
	assert.Equal(t, HHMM(s.HomeArrival), 1900)
	assert.Equal(t, s.HomeDeparture, hhmm(t, 800))
	assert.Equal(t, s.CommuteDuration(), 3600)
	assert.Equal(t, HHMM(s.WorkArrival), 830)
	assert.Equal(t, s.WorkDuration, 24*3600-13*3600-3600)
	assert.NilError(t, ValidateSchedule(s))
}

func TestHomeStayIsCappedBelow23Hours(t *testing.T) {
	// Arriving at 08:05 and leaving at 08:00 is nearly a full day at home.
	trips := []Trip{{DailyMiles: 30, Departure: hhmm(t, 800), Arrival: hhmm(t, 805)}}
	m, err := NewMatcher(trips, DefaultFleet())
	assert.NilError(t, err)
	s, err := m.Match(sampling.Stream(1, "x"), 200, 4, 7)
	assert.NilError(t, err)
	assert.Equal(t, s.HomeDuration, 23*3600-1)
	assert.Equal(t, s.WorkDuration, 1)
	assert.NilError(t, ValidateSchedule(s))
}

func TestInfeasibleChargingIsFatal(t *testing.T) {
	trips := []Trip{{DailyMiles: 150, Departure: hhmm(t, 800), Arrival: hhmm(t, 1800)}}
	m, err := NewMatcher(trips, DefaultFleet())
	assert.NilError(t, err)
	// 150 * 1.1 / (1.92 * 3) ~ 28.6 h of charging.
	_, err = m.Match(sampling.Stream(1, "x"), 300, 3, 1.92)
	assert.Assert(t, model.IsConfigurationError(err))
	assert.ErrorContains(t, err, "cannot fit in a day")
}

func TestNoUsableTripIsFatal(t *testing.T) {
	trips := []Trip{{DailyMiles: 500, Departure: hhmm(t, 800), Arrival: hhmm(t, 1800)}}
	m, err := NewMatcher(trips, DefaultFleet())
	assert.NilError(t, err)
	m.MaxDraws = 50
	_, err = m.Match(sampling.Stream(1, "x"), 100, 4, 7)
	assert.Assert(t, model.IsConfigurationError(err))
}

func TestValidateScheduleDetectsTampering(t *testing.T) {
	m, err := NewMatcher(survey(t), DefaultFleet())
	assert.NilError(t, err)
	s, err := m.Assign(sampling.Stream(3, "tamper"))
	assert.NilError(t, err)

	within := s
	within.WorkArrival = wrap(within.WorkArrival + 45)
	assert.NilError(t, ValidateSchedule(within))

	shifted := s
	shifted.WorkArrival = wrap(shifted.WorkArrival + 600)
	assert.Assert(t, model.IsConfigurationError(ValidateSchedule(shifted)))

	longer := s
	longer.WorkDuration += 3600
	assert.ErrorContains(t, ValidateSchedule(longer), "work duration")
}

func TestDurationBetweenWrapsMidnight(t *testing.T) {
	assert.Equal(t, DurationBetween(hhmm(t, 1800), hhmm(t, 730)), 13*3600+30*60)
	assert.Equal(t, DurationBetween(hhmm(t, 600), hhmm(t, 800)), 2*3600)
	assert.Equal(t, DurationBetween(hhmm(t, 800), hhmm(t, 800)), 24*3600)
}

func TestSecsFromHHMMRejectsBadClock(t *testing.T) {
	_, err := SecsFromHHMM(2460)
	assert.ErrorContains(t, err, "invalid HHMM")
	_, err = SecsFromHHMM(2400)
	assert.ErrorContains(t, err, "invalid HHMM")
}

func TestSelectModelIsCumulative(t *testing.T) {
	f := DefaultFleet()
	assert.Equal(t, f.SelectModel(0.1).Name, "Tesla Model 3")
	assert.Equal(t, f.SelectModel(0.45).Name, "Chevy Bolt")
	assert.Equal(t, f.SelectModel(0.999).Name, "Hyundai Kona")
}

func TestFleetValidation(t *testing.T) {
	f := DefaultFleet()
	f.Models[0].SaleProbability = 0.9
	assert.Assert(t, model.IsConfigurationError(f.Validate()))

	f = DefaultFleet()
	f.ReserveSOCPct = 85
	assert.ErrorContains(t, f.Validate(), "reserve_soc_pct")
}
