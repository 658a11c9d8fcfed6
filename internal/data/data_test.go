package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feeder-populator/internal/ev"

	"gotest.tools/v3/assert"
)

const tripFile = `HOUSEID,VEHID,WHYFROM,WHYTO,STRTTIME,ENDTIME,TRPMILES,TRAVDAY
100,1,1,3,0715,0745,12.5,2
100,1,3,13,1700,1720,4.0,2
100,1,13,1,1730,1800,9.5,2
100,2,1,1,0900,0930,0,2
200,1,1,3,0600,0700,300,3
200,1,3,1,1600,1700,150,3
300,-1,1,1,1000,1100,5,3
400,1,1,3,0800,0830,10,4
500,1,1,5,2300,2330,5,5
500,1,5,1,2340,2355,6,5
`

func TestParseTripSurveyReducesVehicleDays(t *testing.T) {
	trips, err := ParseTripSurvey(strings.NewReader(tripFile), 300)
	assert.NilError(t, err)
	assert.DeepEqual(t, trips, []ev.Trip{
		{DailyMiles: 26, Departure: 7*3600 + 15*60, Arrival: 18 * 3600},
		{DailyMiles: 11, Departure: 23 * 3600, Arrival: 23*3600 + 55*60},
	})
}

func TestParseTripSurveyDropsClockPast2359(t *testing.T) {
	body := tripFile + "600,1,1,3,0700,0730,8,2\n600,1,3,1,2330,2400,8,2\n"
	trips, err := ParseTripSurvey(strings.NewReader(body), 300)
	assert.NilError(t, err)
	assert.Equal(t, len(trips), 2)
	assert.Equal(t, trips[0].DailyMiles, 26.0)
	assert.Equal(t, trips[1].DailyMiles, 11.0)
}

func TestParseTripSurveyRequiresColumns(t *testing.T) {
	_, err := ParseTripSurvey(strings.NewReader("HOUSEID,VEHID\n1,1\n"), 300)
	assert.ErrorContains(t, err, "missing column WHYFROM")
}

func TestParseTripSurveyRejectsBadNumbers(t *testing.T) {
	body := "HOUSEID,VEHID,WHYFROM,WHYTO,STRTTIME,ENDTIME,TRPMILES\n1,1,x,1,0700,0800,3\n"
	_, err := ParseTripSurvey(strings.NewReader(body), 300)
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadModelByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "feeder.json")
	assert.NilError(t, os.WriteFile(jsonPath, []byte(`{"objects":{"substation":{"sub":{"bustype":"SWING"}}}}`), 0o644))
	yamlPath := filepath.Join(dir, "feeder.yaml")
	assert.NilError(t, os.WriteFile(yamlPath, []byte("objects:\n  substation:\n    sub:\n      bustype: SWING\n"), 0o644))

	for _, p := range []string{jsonPath, yamlPath} {
		pm, err := LoadModel(p)
		assert.NilError(t, err, p)
		props, ok := pm.Object("substation", "sub")
		assert.Assert(t, ok)
		assert.Equal(t, props["bustype"], "SWING")
		assert.DeepEqual(t, CountByClass(pm), map[string]int{"substation": 1})
	}
}

func TestDecodeModelRejectsEmpty(t *testing.T) {
	_, err := DecodeModel([]byte(`{"objects":{}}`), "json")
	assert.ErrorContains(t, err, "no objects")
	_, err = DecodeModel([]byte(`{}`), "toml")
	assert.ErrorContains(t, err, "unknown model format")
}

func TestSaveJSONCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "result.json")
	assert.NilError(t, SaveJSON(map[string]int{"houses": 3}, path))
	raw, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(raw), "{\n  \"houses\": 3\n}")
}
