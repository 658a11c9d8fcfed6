package population

import "feeder-populator/internal/sampling"

func bins(probs []float64, diff float64, bounds [][2]float64) []SetpointBin {
	out := make([]SetpointBin, len(probs))
	for i, p := range probs {
		out[i] = SetpointBin{Probability: p, NightDiff: diff, High: bounds[i][0], Low: bounds[i][1]}
	}
	return out
}

var (
	coolingBounds = [][2]float64{{69, 65}, {70, 70}, {73, 71}, {76, 74}, {79, 77}, {85, 80}}
	heatingBounds = [][2]float64{{63, 59}, {66, 64}, {69, 67}, {70, 70}, {73, 71}, {79, 74}}
)

func shell(rroof, rwall, rfloor float64, layers, glass, glazing, frame int, rdoor, ach, copHi, copLo float64) ThermalShell {
	return ThermalShell{
		Rroof: rroof, Rwall: rwall, Rfloor: rfloor,
		WindowLayers: layers, WindowGlass: glass, Glazing: glazing, WindowFrame: frame,
		Rdoor: rdoor, AirChange: ach, COPHigh: copHi, COPLow: copLo,
	}
}

// DefaultMetadata returns the built-in residential statistics.
func DefaultMetadata() Metadata {
	sfShell := []ThermalShell{
		shell(19, 11, 12, 2, 1, 1, 1, 3, .75, 3.0, 2.5),
		shell(19, 14, 16, 2, 1, 1, 1, 3, .5, 3.2, 2.6),
		shell(30, 17, 19, 2, 1, 1, 2, 3, .5, 3.4, 2.8),
		shell(34, 19, 20, 2, 1, 1, 2, 3, .5, 3.6, 3.0),
		shell(36, 22, 22, 2, 2, 1, 2, 5, .25, 3.8, 3.0),
		shell(48, 28, 30, 3, 2, 2, 4, 11, .25, 4.0, 3.0),
		shell(48, 28, 30, 3, 2, 2, 4, 11, .25, 4.0, 3.0),
		shell(50, 30, 32, 3, 2, 2, 4, 13, .25, 4.2, 3.0),
	}
	aptShell := []ThermalShell{
		shell(13.4, 11.7, 9.4, 1, 1, 1, 1, 2.2, .75, 2.8, 1.9),
		shell(13.4, 11.7, 9.4, 1, 1, 1, 1, 2.2, .75, 2.8, 1.9),
		shell(20.3, 11.7, 12.7, 2, 1, 2, 2, 2.7, .25, 3.0, 2.0),
		shell(20.3, 11.7, 12.7, 2, 1, 2, 2, 2.7, .25, 3.0, 2.0),
		shell(20.3, 11.7, 12.7, 2, 1, 2, 2, 2.7, .25, 3.0, 2.0),
		shell(28.7, 14.3, 12.7, 2, 2, 3, 4, 6.3, .125, 3.2, 2.1),
		shell(28.7, 14.3, 12.7, 2, 2, 3, 4, 6.3, .125, 3.2, 2.1),
		shell(32.7, 17.3, 15.7, 2, 2, 3, 4, 10.3, .125, 3.2, 2.1),
	}
	mhOld := shell(13.4, 9.2, 11.7, 1, 1, 1, 1, 2.2, .75, 2.8, 1.9)
	mhMid := shell(24.1, 11.7, 18.1, 2, 2, 1, 2, 3, .75, 3.5, 2.2)
	mhShell := []ThermalShell{
		mhOld, mhOld, mhOld, mhOld, mhOld,
		mhMid, mhMid,
		shell(28.1, 13.7, 22.1, 2, 2, 1, 2, 3, .75, 3.5, 2.2),
	}

	return Metadata{
		IncomeLevels: []IncomeLevel{
			{Name: "Low", Probability: .30, Vintage: PerBuilding[[]float64]{
				SingleFamily: []float64{.05, .05, .05, .06, .06, .06, .05, .02},
				Apartment:    []float64{.05, .04, .05, .06, .06, .05, .04, .03},
				MobileHome:   []float64{.01, .01, .02, .04, .05, .05, .03, .01},
			}},
			{Name: "Middle", Probability: .45, Vintage: PerBuilding[[]float64]{
				SingleFamily: []float64{.07, .06, .07, .09, .09, .10, .10, .05},
				Apartment:    []float64{.03, .02, .03, .05, .05, .04, .04, .02},
				MobileHome:   []float64{0, 0, .01, .02, .02, .02, .01, .01},
			}},
			{Name: "Upper", Probability: .25, Vintage: PerBuilding[[]float64]{
				SingleFamily: []float64{.06, .06, .07, .09, .12, .14, .15, .08},
				Apartment:    []float64{.02, .01, .02, .03, .03, .03, .03, .02},
				MobileHome:   []float64{0, 0, 0, .01, .01, .01, .01, 0},
			}},
		},
		Cooling: PerBuilding[[]SetpointBin]{
			SingleFamily: bins([]float64{.098, .140, .166, .306, .206, .084}, .96, coolingBounds),
			Apartment:    bins([]float64{.155, .207, .103, .310, .155, .069}, .49, coolingBounds),
			MobileHome:   bins([]float64{.138, .172, .172, .276, .138, .103}, .97, coolingBounds),
		},
		Heating: PerBuilding[[]SetpointBin]{
			SingleFamily: bins([]float64{.141, .204, .231, .163, .120, .141}, .80, heatingBounds),
			Apartment:    bins([]float64{.085, .132, .147, .279, .109, .248}, .20, heatingBounds),
			MobileHome:   bins([]float64{.129, .177, .161, .274, .081, .177}, .88, heatingBounds),
		},
		AllowedHeatingBins: []int{1, 3, 4, 5, 6, 6},
		Shell:              PerBuilding[[]ThermalShell]{SingleFamily: sfShell, Apartment: aptShell, MobileHome: mhShell},
		FloorArea: PerBuilding[sampling.TruncNormal]{
			SingleFamily: sampling.TruncNormal{Min: 500, Max: 4000, Mean: 2100, Std: 900},
			Apartment:    sampling.TruncNormal{Min: 300, Max: 2000, Mean: 900, Std: 350},
			MobileHome:   sampling.TruncNormal{Min: 400, Max: 2400, Mean: 1100, Std: 400},
		},
		AspectRatio: PerBuilding[sampling.TruncNormal]{
			SingleFamily: sampling.TruncNormal{Min: 1, Max: 2.5, Mean: 1.5, Std: .3},
			Apartment:    sampling.TruncNormal{Min: 1, Max: 2, Mean: 1.5, Std: .25},
			MobileHome:   sampling.TruncNormal{Min: 3, Max: 4.5, Mean: 3.8, Std: .3},
		},
		MobileHomeDoubleWide: sampling.TruncNormal{Min: 1.5, Max: 2.5, Mean: 2, Std: .2},
		SingleWideMaxSqFt:    1080,
		WindowWallRatio:      PerBuilding[float64]{SingleFamily: .15, Apartment: .10, MobileHome: .10},
		SmallApartmentShare:  .5,
		HVACOversize:         sampling.TruncNormal{Min: 1, Max: 1.5, Mean: 1.1, Std: .1},
		WindowShading:        sampling.TruncNormal{Min: .5, Max: 1, Mean: .7, Std: .1},
		SkewStdSecs:          2700,
		SkewMaxSecs:          8100,
	}
}
