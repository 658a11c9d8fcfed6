package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"feeder-populator/internal/ev"
)

// Purpose code for "home" in the NHTS trip file.
const whyHome = 1

var surveyColumns = []string{"HOUSEID", "VEHID", "WHYFROM", "WHYTO", "STRTTIME", "ENDTIME", "TRPMILES"}

type vehicleKey struct {
	house string
	veh   string
}

type vehicleDay struct {
	departure  int // earliest HHMM leaving home, -1 if none
	arrival    int // latest HHMM arriving home, -1 if none
	miles      float64
	firstIndex int
}

// LoadTripSurveyCSV reads an NHTS trip file and reduces it to one vehicle-day
// per (HOUSEID, VEHID). See ParseTripSurvey.
func LoadTripSurveyCSV(path string, maxRangeMiles float64) ([]ev.Trip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trip survey: %w", err)
	}
	defer f.Close()
	trips, err := ParseTripSurvey(f, maxRangeMiles)
	if err != nil {
		return nil, fmt.Errorf("trip survey %s: %w", path, err)
	}
	log.Printf("[Survey] Loaded %d vehicle-days from %s", len(trips), path)
	return trips, nil
}

// ParseTripSurvey keeps, per vehicle, the earliest departure from home, the
// latest arrival at home and the summed trip miles. Vehicles without both a
// home departure and a home arrival, and vehicles whose daily miles are 0 or
// at least maxRangeMiles, are dropped, as are clock values past 2359. Output
// follows first appearance in the file.
func ParseTripSurvey(r io.Reader, maxRangeMiles float64) ([]ev.Trip, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, name := range surveyColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %s", name)
		}
	}

	days := map[vehicleKey]*vehicleDay{}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		key := vehicleKey{house: field("HOUSEID"), veh: field("VEHID")}
		if strings.HasPrefix(key.veh, "-") {
			// No household vehicle on this trip.
			continue
		}
		whyFrom, err1 := strconv.Atoi(field("WHYFROM"))
		whyTo, err2 := strconv.Atoi(field("WHYTO"))
		start, err3 := strconv.Atoi(field("STRTTIME"))
		end, err4 := strconv.Atoi(field("ENDTIME"))
		miles, err5 := strconv.ParseFloat(field("TRPMILES"), 64)
		if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		d, ok := days[key]
		if !ok {
			d = &vehicleDay{departure: -1, arrival: -1, firstIndex: len(days)}
			days[key] = d
		}
		if miles > 0 {
			d.miles += miles
		}
		if whyFrom == whyHome && (d.departure < 0 || start < d.departure) {
			d.departure = start
		}
		if whyTo == whyHome && end > d.arrival {
			d.arrival = end
		}
	}

	keep := make([]*vehicleDay, 0, len(days))
	for _, d := range days {
		if d.departure < 0 || d.arrival < 0 {
			continue
		}
		if d.miles <= 0 || d.miles >= maxRangeMiles {
			continue
		}
		keep = append(keep, d)
	}
	sort.Slice(keep, func(i, j int) bool { return keep[i].firstIndex < keep[j].firstIndex })

	out := make([]ev.Trip, 0, len(keep))
	for _, d := range keep {
		dep, err1 := ev.SecsFromHHMM(d.departure)
		arr, err2 := ev.SecsFromHHMM(d.arrival)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, ev.Trip{DailyMiles: d.miles, Departure: dep, Arrival: arr})
	}
	return out, nil
}
