package service

import (
	"math"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/pkg/geo"
)

const (
	// congestionSlowdown scales how much an arriving facility's crowd slows a segment
	congestionSlowdown = 0.3
	// detourStretch bounds the ellipse an intermediate facility must lie inside
	detourStretch = 1.5
	// endpointExclusionMeters keeps the fallback from inserting a facility on top of an endpoint
	endpointExclusionMeters = 3.0
)

// PathAssembler turns a destination into a walkable leg
type PathAssembler struct {
	router  WaypointRouter
	metrics *Metrics
}

// NewPathAssembler creates an assembler. A nil router behaves like an
// empty waypoint graph.
func NewPathAssembler(router WaypointRouter, metrics *Metrics) *PathAssembler {
	return &PathAssembler{router: router, metrics: metrics}
}

// BuildLeg returns a leg from the visitor to the facility. The destination is
// re-read from snap so its congestion is current; when snap no longer knows
// it the given copy is used. The result always has at least two points.
func (a *PathAssembler) BuildLeg(from domain.LatLng, to domain.Facility, snap FacilitySnapshot, useWaypoints bool) domain.Path {
	if live, ok := snap.Find(to.ID); ok {
		to = live
	}

	points := []domain.PathPoint{domain.OriginPoint(from)}
	if useWaypoints {
		var hops []domain.LatLng
		if a.router != nil {
			hops = a.router.Route(from, to.Position())
		}
		a.metrics.observeHops(len(hops))
		for _, wp := range hops {
			points = append(points, domain.WaypointPoint(wp))
		}
	} else if via, ok := intermediateFacility(from, to, snap); ok {
		points = append(points, domain.FacilityPoint(via))
	}
	points = append(points, domain.FacilityPoint(to))

	return measure(points)
}

// intermediateFacility picks the least congested facility strictly inside the
// stretch ellipse between from and to.
func intermediateFacility(from domain.LatLng, to domain.Facility, snap FacilitySnapshot) (domain.Facility, bool) {
	target := to.Position()
	direct := from.DistanceTo(target)
	limit := direct * detourStretch

	var best domain.Facility
	found := false
	for _, f := range snap.Facilities {
		if f.ID == to.ID {
			continue
		}
		p := f.Position()
		d1, d2 := from.DistanceTo(p), p.DistanceTo(target)
		if d1 < endpointExclusionMeters || d2 < endpointExclusionMeters {
			continue
		}
		if d1+d2 >= limit {
			continue
		}
		if !found || f.CongestionLevel < best.CongestionLevel {
			best, found = f, true
		}
	}
	return best, found
}

// measure fills in distance, ETA and local planar positions relative to the
// first point.
func measure(points []domain.PathPoint) domain.Path {
	origin := points[0]
	total := 0.0
	minutes := 0.0
	for i := range points {
		points[i].Local = geo.GPSToLocalPlanar(points[i].Latitude, points[i].Longitude, origin.Latitude, origin.Longitude)
		if i == 0 {
			continue
		}
		seg := points[i-1].Position().DistanceTo(points[i].Position())
		total += seg
		minutes += seg / geo.WalkingMetersPerMinute * (1 + points[i].Congestion()*congestionSlowdown)
	}
	return domain.Path{
		Points:              points,
		TotalDistanceMeters: total,
		EstimatedMinutes:    int(math.Ceil(minutes)),
	}
}
