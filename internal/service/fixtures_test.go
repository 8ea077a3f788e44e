package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/pkg/geo"
)

var origin = domain.LatLng{Latitude: 37.549252, Longitude: 127.076754}

// offset returns the point meters away from origin along bearing
func offset(from domain.LatLng, bearing, meters float64) domain.LatLng {
	lat, lon := geo.Destination(from.Latitude, from.Longitude, bearing, meters)
	return domain.LatLng{Latitude: lat, Longitude: lon}
}

func facilityAt(id string, p domain.LatLng, capacity, visitors int) domain.Facility {
	f := domain.Facility{
		ID:        id,
		Name:      id,
		Category:  domain.CategoryAnimal,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Capacity:  capacity,
	}
	f.SetVisitors(visitors)
	return f
}

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock(hhmm string) *manualClock {
	c := domain.MustParseClock(hhmm)
	return &manualClock{t: time.Date(2026, 5, 5, 0, c.Minutes(), 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func snapshotOf(facilities ...domain.Facility) FacilitySnapshot {
	return newSnapshot(1, time.Time{}, facilities)
}

func seededRegistry(facilities ...domain.Facility) *FacilityRegistry {
	return NewFacilityRegistry(facilities, WithRand(rand.New(rand.NewSource(7))))
}

// staticSource serves one fixed snapshot
type staticSource struct{ snap FacilitySnapshot }

func (s staticSource) Snapshot() FacilitySnapshot { return s.snap }
