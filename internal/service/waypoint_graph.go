package service

import (
	"math"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zooguide/backend/internal/domain"
)

// GraphOptions tunes the greedy waypoint chaining
type GraphOptions struct {
	MaxHops       int
	MinHopMeters  float64
	MaxHopMeters  float64
	SlackMeters   float64
	ArrivalMeters float64
}

// DefaultGraphOptions returns the tuning used for the park path network
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxHops:       30,
		MinHopMeters:  3,
		MaxHopMeters:  100,
		SlackMeters:   10,
		ArrivalMeters: 30,
	}
}

// WaypointRouter produces intermediate points between two coordinates.
// The result never contains from or to.
type WaypointRouter interface {
	Route(from, to domain.LatLng) []domain.LatLng
}

// WaypointGraph chains curated path points greedily toward a target
type WaypointGraph struct {
	points []domain.LatLng
	opts   GraphOptions
}

// NewWaypointGraph creates a graph over points. Zero-valued options fall
// back to DefaultGraphOptions.
func NewWaypointGraph(points []domain.LatLng, opts GraphOptions) *WaypointGraph {
	if opts == (GraphOptions{}) {
		opts = DefaultGraphOptions()
	}
	return &WaypointGraph{points: slices.Clone(points), opts: opts}
}

// Points returns the curated waypoint set
func (g *WaypointGraph) Points() []domain.LatLng {
	return slices.Clone(g.points)
}

// Options returns the tuning in effect
func (g *WaypointGraph) Options() GraphOptions { return g.opts }

// Route walks from toward to, each hop picking the admissible unvisited
// waypoint with the smallest detour score. It stops when no candidate is
// admissible, when a hop lands within ArrivalMeters of to, or after MaxHops.
// Endpoints closer than MinHopMeters yield no waypoints.
func (g *WaypointGraph) Route(from, to domain.LatLng) []domain.LatLng {
	if from.DistanceTo(to) < g.opts.MinHopMeters {
		return nil
	}
	current := from
	visited := make(map[int]bool)
	var path []domain.LatLng

	for hop := 0; hop < g.opts.MaxHops; hop++ {
		direct := current.DistanceTo(to)
		best := -1
		bestScore := math.Inf(1)

		for i, wp := range g.points {
			if visited[i] {
				continue
			}
			fromCurrent := current.DistanceTo(wp)
			if fromCurrent < g.opts.MinHopMeters || fromCurrent > g.opts.MaxHopMeters {
				continue
			}
			toTarget := wp.DistanceTo(to)
			if toTarget > direct+g.opts.SlackMeters {
				continue
			}
			if score := fromCurrent + toTarget; score < bestScore {
				best, bestScore = i, score
			}
		}

		if best < 0 {
			break
		}
		chosen := g.points[best]
		path = append(path, chosen)
		if chosen.DistanceTo(to) < g.opts.ArrivalMeters {
			break
		}
		visited[best] = true
		current = chosen
	}
	return path
}

type routeKey struct {
	from, to domain.LatLng
}

// CachedRouter memoizes chains for identical endpoints. Results are copied
// in and out so callers may mutate them.
type CachedRouter struct {
	next  WaypointRouter
	cache *lru.Cache[routeKey, []domain.LatLng]
}

// NewCachedRouter wraps next with an LRU of size entries. A size below one
// disables caching and returns next unchanged.
func NewCachedRouter(next WaypointRouter, size int) (WaypointRouter, error) {
	if size < 1 {
		return next, nil
	}
	cache, err := lru.New[routeKey, []domain.LatLng](size)
	if err != nil {
		return nil, err
	}
	return &CachedRouter{next: next, cache: cache}, nil
}

func (c *CachedRouter) Route(from, to domain.LatLng) []domain.LatLng {
	key := routeKey{from: from, to: to}
	if cached, ok := c.cache.Get(key); ok {
		return slices.Clone(cached)
	}
	path := c.next.Route(from, to)
	c.cache.Add(key, slices.Clone(path))
	return path
}

// Len reports how many chains are cached
func (c *CachedRouter) Len() int { return c.cache.Len() }
