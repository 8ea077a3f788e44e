package domain

// CongestionBand is one classification band of the congestion scale.
// Bands are closed on the upper end.
type CongestionBand struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	Max   float64 `json:"max"`
}

var (
	BandLow      = CongestionBand{Name: "LOW", Label: "Relaxed", Color: "#4CAF50", Max: 0.3}
	BandMedium   = CongestionBand{Name: "MEDIUM", Label: "Moderate", Color: "#FFC107", Max: 0.6}
	BandHigh     = CongestionBand{Name: "HIGH", Label: "Crowded", Color: "#FF9800", Max: 0.8}
	BandVeryHigh = CongestionBand{Name: "VERY_HIGH", Label: "Very crowded", Color: "#F44336", Max: OvercrowdFactor}
)

// CongestionBands returns the bands in ascending order
func CongestionBands() []CongestionBand {
	return []CongestionBand{BandLow, BandMedium, BandHigh, BandVeryHigh}
}

// ClassifyCongestion returns the band a congestion level falls in
func ClassifyCongestion(level float64) CongestionBand {
	switch {
	case level <= BandLow.Max:
		return BandLow
	case level <= BandMedium.Max:
		return BandMedium
	case level <= BandHigh.Max:
		return BandHigh
	default:
		return BandVeryHigh
	}
}

// CongestionLabel returns the human-readable label for a level
func CongestionLabel(level float64) string {
	return ClassifyCongestion(level).Label
}

// CongestionColor returns the display color for a level
func CongestionColor(level float64) string {
	return ClassifyCongestion(level).Color
}
