package domain

import (
	"math"

	"github.com/zooguide/backend/pkg/geo"
)

// Category groups facilities on the map legend
type Category string

const (
	CategoryGate     Category = "GATE"
	CategoryAnimal   Category = "ANIMAL"
	CategoryFun      Category = "FUN"
	CategoryFacility Category = "FACILITY"
	CategoryNature   Category = "NATURE"
)

// Categories lists every known category in legend order
func Categories() []Category {
	return []Category{CategoryGate, CategoryAnimal, CategoryFun, CategoryFacility, CategoryNature}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// OvercrowdFactor bounds how far visitors may exceed capacity
const OvercrowdFactor = 1.3

// LatLng is a WGS84 coordinate pair. Waypoints are plain LatLng values.
type LatLng struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// DistanceTo returns the great-circle distance to other in meters
func (p LatLng) DistanceTo(other LatLng) float64 {
	return geo.DistanceMeters(p.Latitude, p.Longitude, other.Latitude, other.Longitude)
}

// BearingTo returns the initial bearing to other in degrees
func (p LatLng) BearingTo(other LatLng) float64 {
	return geo.BearingDegrees(p.Latitude, p.Longitude, other.Latitude, other.Longitude)
}

// Facility represents a named zoo location with live occupancy
type Facility struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Category        Category `json:"category" yaml:"category"`
	Emoji           string   `json:"emoji,omitempty" yaml:"emoji"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	Latitude        float64  `json:"latitude" yaml:"latitude"`
	Longitude       float64  `json:"longitude" yaml:"longitude"`
	Capacity        int      `json:"capacity" yaml:"capacity"`
	Visitors        int      `json:"visitors" yaml:"visitors"`
	CongestionLevel float64  `json:"congestion_level" yaml:"-"`
}

// Position returns the facility coordinates
func (f Facility) Position() LatLng {
	return LatLng{Latitude: f.Latitude, Longitude: f.Longitude}
}

// MaxVisitors is the upper clamp for the occupancy random walk
func (f Facility) MaxVisitors() int {
	return int(math.Floor(float64(f.Capacity) * OvercrowdFactor))
}

// SetVisitors updates the visitor count and recomputes the congestion level
func (f *Facility) SetVisitors(n int) {
	f.Visitors = n
	f.CongestionLevel = congestionOf(n, f.Capacity)
}

func congestionOf(visitors, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(visitors) / float64(capacity)
}
