package catalog

// Default returns the standard distribution catalog.
//
// Rows are kVA, %R, %X, %no-load loss, %magnetizing current.
func Default() *Catalog {
	return &Catalog{
		ThreePhase: Table{
			{30, 1.90, 1.77, 0.79, 4.43},
			{45, 1.75, 2.12, 0.70, 3.94},
			{75, 1.60, 2.42, 0.63, 3.24},
			{112.5, 1.45, 2.85, 0.59, 2.99},
			{150, 1.30, 3.25, 0.54, 2.75},
			{225, 1.30, 3.52, 0.50, 2.50},
			{300, 1.30, 4.83, 0.46, 2.25},
			{500, 1.10, 4.88, 0.45, 2.26},
			{750, 0.97, 5.11, 0.44, 1.89},
			{1000, 0.85, 5.69, 0.43, 1.65},
			{1500, 0.78, 5.70, 0.39, 1.51},
			{2000, 0.72, 5.70, 0.36, 1.39},
			{2500, 0.70, 5.71, 0.35, 1.36},
			{3750, 0.62, 5.72, 0.31, 1.20},
			{5000, 0.55, 5.72, 0.28, 1.07},
			{7500, 0.55, 5.72, 0.28, 1.07},
			{10000, 0.55, 5.72, 0.28, 1.07},
		},
		SinglePhase: Table{
			{5, 2.10, 1.53, 0.90, 3.38},
			{10, 1.90, 1.30, 0.68, 2.92},
			{15, 1.70, 1.47, 0.60, 2.53},
			{25, 1.60, 1.51, 0.52, 1.93},
			{37.5, 1.45, 1.65, 0.47, 1.74},
			{50, 1.30, 1.77, 0.45, 1.54},
			{75, 1.25, 1.69, 0.42, 1.49},
			{100, 1.20, 2.19, 0.40, 1.45},
			{167, 1.15, 2.77, 0.38, 1.66},
			{250, 1.10, 3.85, 0.36, 1.81},
			{333, 1.00, 4.90, 0.34, 1.97},
			{500, 1.00, 4.90, 0.29, 1.98},
		},
		Fuses:     []float64{40, 65, 100, 200},
		Reclosers: []float64{280, 400, 560, 630, 800},
		Breakers:  []float64{600, 1200, 2000},
	}
}
