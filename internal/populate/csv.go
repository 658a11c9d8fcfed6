package populate

import (
	"encoding/csv"
	"os"
	"strconv"

	"feeder-populator/internal/catalog"
	"feeder-populator/internal/commercial"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/population"
	"feeder-populator/internal/sizing"
)

// WriteHousesCSV writes one row per dwelling.
func WriteHousesCSV(path string, houses []population.HouseAssignment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"house",
		"parent",
		"transformer",
		"phases",
		"v_nom",
		"building_type",
		"vintage",
		"thermal_integrity",
		"income_level",
		"region",
		"floor_area_sqft",
		"aspect_ratio",
		"ceiling_height_ft",
		"exterior_wall_fraction",
		"exterior_ceiling_fraction",
		"exterior_floor_fraction",
		"window_wall_ratio",
		"r_roof",
		"r_wall",
		"r_floor",
		"r_door",
		"air_change",
		"cop",
		"hvac_oversize",
		"cooling_setpoint",
		"heating_setpoint",
		"cooling_night_diff",
		"heating_night_diff",
		"schedule_skew_secs",
		"ev_model",
		"ev_charger_level",
		"ev_daily_miles",
		"ev_home_arrival",
		"ev_home_departure",
		"ev_work_arrival",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, h := range houses {
		for _, d := range h.Dwellings {
			row := []string{
				d.Name,
				h.Parent,
				h.Transformer,
				h.Phases.String(),
				fmtFloat(h.VNom),
				h.BuildingType,
				h.Vintage,
				h.ThermalIntegrityName,
				h.IncomeLevel,
				h.RegionName,
				fmtFloat(d.FloorAreaSqFt),
				fmtFloat(d.AspectRatio),
				strconv.Itoa(d.CeilingHeightFt),
				fmtFloat(d.ExteriorWallFraction),
				fmtFloat(d.ExteriorCeilFraction),
				fmtFloat(d.ExteriorFloorFraction),
				fmtFloat(d.WindowWallRatio),
				fmtFloat(d.Rroof),
				fmtFloat(d.Rwall),
				fmtFloat(d.Rfloor),
				fmtFloat(d.Rdoor),
				fmtFloat(d.AirChange),
				fmtFloat(d.COP),
				fmtFloat(d.HVACOversize),
				fmtFloat(d.CoolingSetpoint),
				fmtFloat(d.HeatingSetpoint),
				fmtFloat(d.CoolingNightDiff),
				fmtFloat(d.HeatingNightDiff),
				fmtFloat(d.ScheduleSkewSecs),
			}
			row = append(row, drivingColumns(d.Driving)...)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}

func drivingColumns(s *ev.Schedule) []string {
	if s == nil {
		return []string{"", "", "", "", "", ""}
	}
	return []string{
		s.Model,
		strconv.Itoa(s.ChargerLevel),
		fmtFloat(s.DailyMiles),
		fmtClock(s.HomeArrival),
		fmtClock(s.HomeDeparture),
		fmtClock(s.WorkArrival),
	}
}

// WriteEquipmentCSV writes one row per resized transformer or fuse.
func WriteEquipmentCSV(path string, res *sizing.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"edge", "kind", "phases", "load_kva", "target", "rating", "configuration", "oversize"}
	if err := w.Write(header); err != nil {
		return err
	}
	if res == nil {
		return w.Error()
	}
	for _, t := range res.Transformers {
		row := []string{
			t.Edge,
			"transformer",
			t.Phases.String(),
			fmtFloat(t.LoadKVA),
			fmtFloat(t.TargetKVA),
			fmtFloat(t.RatedKVA),
			t.ConfigKey,
			strconv.FormatBool(t.Oversize),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	for _, fu := range res.Fuses {
		row := []string{
			fu.Edge,
			string(fu.Device),
			fu.Phases.String(),
			fmtFloat(fu.LoadKVA),
			fmtFloat(fu.TargetAmps),
			fmtFloat(fu.CurrentLimit),
			"",
			strconv.FormatBool(fu.Device == catalog.DeviceOversize),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteCommercialCSV writes one row per commercial load point.
func WriteCommercialCSV(path string, rows []commercial.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"node", "kva", "phases", "target_sqft", "type", "floor_area_sqft", "zones"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range rows {
		row := []string{
			c.Node,
			fmtFloat(c.KVA),
			c.Phases.String(),
			fmtFloat(c.TargetSqFt),
			c.TypeTag,
			fmtFloat(c.FloorAreaSqFt),
			strconv.Itoa(c.Zones),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func fmtClock(secs int) string {
	return strconv.Itoa(ev.HHMM(secs))
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
