package domain

import "github.com/zooguide/backend/pkg/geo"

// PointKind tags what a PathPoint stands for
type PointKind string

const (
	PointOrigin   PointKind = "origin"
	PointWaypoint PointKind = "waypoint"
	PointFacility PointKind = "facility"
)

// PathPoint is one vertex of a walking leg. Facility is set only for
// PointFacility; bare points contribute no congestion.
type PathPoint struct {
	Kind      PointKind `json:"kind"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Local     geo.Vec3  `json:"local_position"`
	Facility  *Facility `json:"facility,omitempty"`
}

// OriginPoint builds the leg start from a visitor position
func OriginPoint(p LatLng) PathPoint {
	return PathPoint{Kind: PointOrigin, Latitude: p.Latitude, Longitude: p.Longitude}
}

// WaypointPoint builds a bare path vertex
func WaypointPoint(p LatLng) PathPoint {
	return PathPoint{Kind: PointWaypoint, Latitude: p.Latitude, Longitude: p.Longitude}
}

// FacilityPoint builds a path vertex that sits on a facility
func FacilityPoint(f Facility) PathPoint {
	fc := f
	return PathPoint{Kind: PointFacility, Latitude: f.Latitude, Longitude: f.Longitude, Facility: &fc}
}

// Position returns the point coordinates
func (p PathPoint) Position() LatLng {
	return LatLng{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Congestion is the slowdown contribution of arriving at this point
func (p PathPoint) Congestion() float64 {
	if p.Kind != PointFacility || p.Facility == nil {
		return 0
	}
	return p.Facility.CongestionLevel
}

// Path is one walkable leg with at least two points
type Path struct {
	Points              []PathPoint `json:"points"`
	TotalDistanceMeters float64     `json:"total_distance_meters"`
	EstimatedMinutes    int         `json:"estimated_minutes"`
}

// Destination returns the last point of the leg
func (p Path) Destination() (PathPoint, bool) {
	if len(p.Points) == 0 {
		return PathPoint{}, false
	}
	return p.Points[len(p.Points)-1], true
}
